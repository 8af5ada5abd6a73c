package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Ventana por defecto y máxima (días) para cupones próximos a vencer.
const (
	DefaultExpiringDays = 7
	MaxExpiringDays     = 365
)

// CouponUseCase aplica reglas de negocio para cupones.
type CouponUseCase struct {
	repo        repository.CouponRepository
	companyRepo repository.CompanyRepository
	vouchers    VoucherGenerator
	now         func() time.Time
}

// NewCouponUseCase construye el caso de uso. vouchers puede ser nil si no se sirven PDFs.
func NewCouponUseCase(repo repository.CouponRepository, companyRepo repository.CompanyRepository, vouchers VoucherGenerator) *CouponUseCase {
	return &CouponUseCase{repo: repo, companyRepo: companyRepo, vouchers: vouchers, now: time.Now}
}

// Create publica un cupón para la empresa del principal. Un admin puede indicar company_id;
// un usuario que indique otra empresa recibe domain.ErrForbidden.
func (uc *CouponUseCase) Create(ctx context.Context, p *auth.Principal, in dto.CreateCouponRequest) (*dto.CouponResponse, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	if err := validateCouponValues(in.Value, in.ValidUntil, now); err != nil {
		return nil, err
	}

	companyID := p.CompanyID
	if in.CompanyID != "" {
		if err := auth.RequireOwnership(p, in.CompanyID); err != nil {
			return nil, err
		}
		companyID = in.CompanyID
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.Active {
		return nil, fmt.Errorf("%w: empresa inexistente o inactiva", domain.ErrInvalidInput)
	}

	coupon := &entity.Coupon{
		ID:          uuid.New().String(),
		CompanyID:   company.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Value:       in.Value,
		ValidUntil:  in.ValidUntil.UTC(),
		ImagePath:   in.ImagePath,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return entityToCouponResponse(coupon), nil
}

// GetByID obtiene un cupón. domain.ErrNotFound si no existe.
func (uc *CouponUseCase) GetByID(ctx context.Context, id string) (*dto.CouponResponse, error) {
	coupon, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCouponResponse(coupon), nil
}

// ListActive cupones activos, más recientes primero.
func (uc *CouponUseCase) ListActive(ctx context.Context, page dto.PageRequest) (*dto.CouponListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListActive(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return couponList(list, page), nil
}

// ListByCompany cupones activos de una empresa.
func (uc *CouponUseCase) ListByCompany(ctx context.Context, companyID string, page dto.PageRequest) (*dto.CouponListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListActiveByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return couponList(list, page), nil
}

// ListExpiring cupones activos que vencen dentro de los próximos days días.
// days == 0 usa DefaultExpiringDays; fuera de [1, MaxExpiringDays] es un error de validación.
func (uc *CouponUseCase) ListExpiring(ctx context.Context, days int) (*dto.CouponListResponse, error) {
	if days == 0 {
		days = DefaultExpiringDays
	}
	if days < 1 || days > MaxExpiringDays {
		return nil, dto.NewValidationError("days", fmt.Sprintf("between=1..%d", MaxExpiringDays))
	}
	from := uc.now().UTC()
	list, err := uc.repo.ListExpiring(ctx, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	return couponList(list, dto.PageRequest{Limit: len(list)}), nil
}

// Update modifica un cupón. Solo admin o usuarios de la empresa dueña.
func (uc *CouponUseCase) Update(ctx context.Context, p *auth.Principal, id string, in dto.UpdateCouponRequest) (*dto.CouponResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	coupon, err := uc.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		coupon.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		coupon.Description = strings.TrimSpace(*in.Description)
	}
	if in.Value != nil {
		coupon.Value = *in.Value
	}
	if in.ValidUntil != nil {
		coupon.ValidUntil = in.ValidUntil.UTC()
	}
	if in.ImagePath != nil {
		coupon.ImagePath = *in.ImagePath
	}
	now := uc.now().UTC()
	if in.Value != nil || in.ValidUntil != nil {
		if err := validateCouponValues(coupon.Value, coupon.ValidUntil, now); err != nil {
			return nil, err
		}
	}
	coupon.UpdatedAt = now
	if err := uc.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return entityToCouponResponse(coupon), nil
}

// Delete desactiva el cupón (borrado lógico).
func (uc *CouponUseCase) Delete(ctx context.Context, p *auth.Principal, id string) error {
	coupon, err := uc.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	coupon.Active = false
	coupon.UpdatedAt = uc.now().UTC()
	return uc.repo.Update(ctx, coupon)
}

// Voucher genera el PDF imprimible de un cupón activo.
func (uc *CouponUseCase) Voucher(ctx context.Context, id string) ([]byte, error) {
	if uc.vouchers == nil {
		return nil, fmt.Errorf("generador de comprobantes no configurado")
	}
	coupon, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coupon == nil || !coupon.Active {
		return nil, domain.ErrNotFound
	}
	company, err := uc.companyRepo.GetByID(ctx, coupon.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return uc.vouchers.GenerateCouponVoucher(coupon, company)
}

// loadOwned carga el cupón y aplica el guard de ownership con su CompanyID.
func (uc *CouponUseCase) loadOwned(ctx context.Context, p *auth.Principal, id string) (*entity.Coupon, error) {
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	coupon, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}
	if err := auth.RequireOwnership(p, coupon.CompanyID); err != nil {
		return nil, err
	}
	return coupon, nil
}

func validateCouponValues(value decimal.Decimal, validUntil, now time.Time) error {
	if !value.IsPositive() {
		return dto.NewValidationError("value", "gt=0")
	}
	if validUntil.IsZero() {
		return dto.NewValidationError("valid_until", "required")
	}
	if !validUntil.After(now) {
		return dto.NewValidationError("valid_until", "gtfield=now")
	}
	return nil
}

func couponList(list []*entity.Coupon, page dto.PageRequest) *dto.CouponListResponse {
	items := make([]dto.CouponResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCouponResponse(c))
	}
	return &dto.CouponListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}
}

func entityToCouponResponse(c *entity.Coupon) *dto.CouponResponse {
	if c == nil {
		return nil
	}
	return &dto.CouponResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		Title:       c.Title,
		Description: c.Description,
		Value:       c.Value,
		ValidUntil:  c.ValidUntil,
		ImagePath:   c.ImagePath,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
