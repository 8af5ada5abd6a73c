package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cupones-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// Deactivate marca la empresa como inactiva. domain.ErrNotFound si no existe.
	Deactivate(ctx context.Context, id string, at time.Time) error
	// Stats cuenta empresas activas y las registradas desde since.
	Stats(ctx context.Context, since time.Time) (*entity.CompanyStats, error)
}
