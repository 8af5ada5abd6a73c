package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cupones-api/internal/domain/entity"
)

// CouponRepository define el puerto de persistencia para Coupon (DIP).
type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	GetByID(ctx context.Context, id string) (*entity.Coupon, error)
	Update(ctx context.Context, coupon *entity.Coupon) error
	ListActive(ctx context.Context, limit, offset int) ([]*entity.Coupon, error)
	ListActiveByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Coupon, error)
	// ListExpiring devuelve cupones activos con ValidUntil en [from, to].
	ListExpiring(ctx context.Context, from, to time.Time) ([]*entity.Coupon, error)
	// DeactivateByCompany desactiva todos los cupones de la empresa.
	DeactivateByCompany(ctx context.Context, companyID string, at time.Time) error
}
