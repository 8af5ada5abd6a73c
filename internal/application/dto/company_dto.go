package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	CNPJ     string `json:"cnpj" validate:"required,min=1,max=20"`
	Address  string `json:"address" validate:"required,max=300"`
	Email    string `json:"email" validate:"required,email"`
	LogoPath string `json:"logo_path" validate:"omitempty,max=500"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
// CNPJ solo se acepta si coincide con el actual.
type UpdateCompanyRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	CNPJ     *string `json:"cnpj" validate:"omitempty,max=20"`
	Address  *string `json:"address" validate:"omitempty,max=300"`
	Email    *string `json:"email" validate:"omitempty,email"`
	LogoPath *string `json:"logo_path" validate:"omitempty,max=500"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	LogoPath  string    `json:"logo_path,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CompanyStatsResponse estadísticas de empresas activas.
type CompanyStatsResponse struct {
	TotalCompanies      int `json:"total_companies"`
	RegisteredLastMonth int `json:"registered_last_month"`
}
