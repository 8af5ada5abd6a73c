package repository

import "context"

// OwnerRepository resuelve la referencia de empresa dueña de un recurso.
// Lo usa la variante genérica del guard de ownership.
type OwnerRepository interface {
	// FindOwnerRef devuelve ("", false, nil) si el recurso no existe.
	FindOwnerRef(ctx context.Context, kind, id string) (ownerRef string, found bool, err error)
}
