package repository

import (
	"context"

	"github.com/jhoicas/cupones-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los métodos de lectura devuelven (nil, nil) cuando el registro no existe.
type UserRepository interface {
	// Create persiste el usuario; devuelve domain.ErrEmailAlreadyExists si el email ya existe.
	Create(ctx context.Context, user *entity.User) error
	// FindByID devuelve el usuario sin el hash de password (proyección para auth).
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// FindByEmail devuelve el usuario incluyendo PasswordHash (solo para login).
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
}
