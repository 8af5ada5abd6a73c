package usecase

import (
	"context"

	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

// CatalogTxRunner ejecuta fn dentro de una transacción con repos de empresas y cupones
// atados a ella. Commit si fn devuelve nil; rollback en cualquier otro caso.
type CatalogTxRunner interface {
	Run(ctx context.Context, fn func(companies repository.CompanyRepository, coupons repository.CouponRepository) error) error
}

// VoucherGenerator genera el comprobante imprimible (PDF) de un cupón.
type VoucherGenerator interface {
	GenerateCouponVoucher(coupon *entity.Coupon, company *entity.Company) ([]byte, error)
}
