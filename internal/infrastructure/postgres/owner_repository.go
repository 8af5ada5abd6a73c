package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

var _ repository.OwnerRepository = (*OwnerRepo)(nil)

// ownerQueries consulta de la empresa dueña por tipo de recurso.
var ownerQueries = map[string]string{
	entity.ResourceCompany: `SELECT id FROM companies WHERE id = $1`,
	entity.ResourceCoupon:  `SELECT company_id FROM coupons WHERE id = $1`,
}

// OwnerRepo lookup genérico de propiedad para el guard de ownership.
type OwnerRepo struct {
	db Querier
}

// NewOwnerRepository construye el lookup de propiedad.
func NewOwnerRepository(db Querier) *OwnerRepo {
	return &OwnerRepo{db: db}
}

// FindOwnerRef devuelve el id de la empresa dueña del recurso (kind, id).
func (r *OwnerRepo) FindOwnerRef(ctx context.Context, kind, id string) (string, bool, error) {
	query, ok := ownerQueries[kind]
	if !ok || !validID(id) {
		return "", false, nil
	}
	var ref string
	if err := r.db.QueryRow(ctx, query, id).Scan(&ref); err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find owner %s: %w", kind, err)
	}
	return ref, true, nil
}
