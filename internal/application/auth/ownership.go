package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

// RequireOwnership compara la empresa dueña del recurso con la del principal.
// admin pasa siempre; para el resto igualdad exacta de la forma canónica.
func RequireOwnership(p *Principal, ownerRef string) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}
	if ownerRef == "" || p.CompanyID == "" {
		return domain.ErrForbidden
	}
	if canonicalRef(ownerRef) != canonicalRef(p.CompanyID) {
		return domain.ErrForbidden
	}
	return nil
}

// OwnershipGuard variante genérica: busca la referencia de propiedad por (kind, id)
// antes de comparar.
type OwnershipGuard struct {
	owners  repository.OwnerRepository
	timeout time.Duration
}

// NewOwnershipGuard construye el guard. timeout <= 0 usa DefaultLookupTimeout.
func NewOwnershipGuard(owners repository.OwnerRepository, timeout time.Duration) *OwnershipGuard {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &OwnershipGuard{owners: owners, timeout: timeout}
}

// Check carga el dueño del recurso y aplica RequireOwnership.
// ErrResourceNotFound si el id no existe (también para admin).
func (g *OwnershipGuard) Check(ctx context.Context, p *Principal, kind, id string) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	ownerRef, found, err := g.owners.FindOwnerRef(lookupCtx, kind, id)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
	}
	if !found {
		return domain.ErrResourceNotFound
	}
	return RequireOwnership(p, ownerRef)
}
