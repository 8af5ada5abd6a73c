package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon representa un cupón de descuento publicado por una Company.
// CompanyID es la referencia de propiedad que usa el guard de ownership.
type Coupon struct {
	ID          string
	CompanyID   string
	Title       string
	Description string
	Value       decimal.Decimal
	ValidUntil  time.Time
	ImagePath   string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tipos de recurso con referencia de propiedad (lookup genérico de ownership).
const (
	ResourceCompany = "company"
	ResourceCoupon  = "coupon"
)
