package postgres

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/cupones-api/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate aplica las migraciones embebidas pendientes, en orden de versión
// (prefijo numérico del archivo), registrándolas en schema_migrations.
func Migrate(ctx context.Context, db Querier, log *logger.Logger) error {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("leer migraciones: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		var exists bool
		// Falla si schema_migrations aún no existe: la primera migración la crea.
		if err := db.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
		).Scan(&exists); err != nil {
			exists = false
		}
		if exists {
			continue
		}

		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("leer migración %s: %w", entry.Name(), err)
		}
		log.Info().Str("file", entry.Name()).Int("version", version).Msg("aplicando migración")
		if _, err := db.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("aplicar migración %s: %w", entry.Name(), err)
		}
		if _, err := db.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING", version,
		); err != nil {
			return fmt.Errorf("registrar migración %s: %w", entry.Name(), err)
		}
	}
	return nil
}
