package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCouponRequest entrada para crear un cupón. CompanyID solo lo respeta un admin;
// para el resto la empresa es la del usuario autenticado.
type CreateCouponRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"required,max=2000"`
	Value       decimal.Decimal `json:"value"`
	ValidUntil  time.Time       `json:"valid_until"`
	ImagePath   string          `json:"image_path" validate:"omitempty,max=500"`
	CompanyID   string          `json:"company_id" validate:"omitempty,uuid"`
}

// UpdateCouponRequest entrada para actualizar un cupón (campos opcionales).
type UpdateCouponRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Value       *decimal.Decimal `json:"value"`
	ValidUntil  *time.Time       `json:"valid_until"`
	ImagePath   *string          `json:"image_path" validate:"omitempty,max=500"`
}

// CouponResponse salida de un cupón.
type CouponResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	ValidUntil  time.Time       `json:"valid_until"`
	ImagePath   string          `json:"image_path,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CouponListResponse lista paginada de cupones.
type CouponListResponse struct {
	Items []CouponResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
