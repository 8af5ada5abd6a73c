// seed crea (si no existen) la empresa inicial y su usuario administrador.
// Es el único camino para obtener un admin: el registro público siempre da rol user.
//
// Uso:
//
//	SEED_ADMIN_PASSWORD=... go run ./cmd/seed -company "Matriz" -cnpj 12.345.678/0001-90 \
//	    -company-email contacto@matriz.com -admin-email admin@matriz.com
//
// Usa la misma configuración de base de datos que la API (DB_*, DATABASE_URL) y aplica
// las migraciones pendientes antes de sembrar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cupones-api/pkg/config"
	"github.com/jhoicas/cupones-api/pkg/logger"
)

func main() {
	var in auth.SeedAdminInput
	flag.StringVar(&in.CompanyName, "company", "", "nombre de la empresa")
	flag.StringVar(&in.CompanyCNPJ, "cnpj", "", "CNPJ de la empresa")
	flag.StringVar(&in.CompanyAddress, "address", "", "dirección de la empresa")
	flag.StringVar(&in.CompanyEmail, "company-email", "", "email de contacto de la empresa")
	flag.StringVar(&in.AdminName, "admin-name", "Administrador", "nombre del admin")
	flag.StringVar(&in.AdminEmail, "admin-email", "", "email del admin")
	flag.Parse()
	// La password no va por flag para que no quede en el historial del shell.
	in.AdminPassword = os.Getenv("SEED_ADMIN_PASSWORD")

	log := logger.New(logger.Config{Env: "development", Level: "info"})

	dbCfg, err := config.LoadDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuración: %v\n", err)
		os.Exit(1)
	}
	if dbCfg.Driver != config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "seed solo tiene sentido con DB_DRIVER=postgres")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	res, err := auth.SeedAdmin(ctx, postgres.NewUserRepository(pool), postgres.NewCompanyRepository(pool), in)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Str("company_id", res.CompanyID).
		Bool("company_created", res.CompanyCreated).
		Str("admin_id", res.AdminID).
		Bool("admin_created", res.AdminCreated).
		Msg("seed completado")
}
