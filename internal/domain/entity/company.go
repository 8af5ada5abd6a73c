package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant).
// Es la entidad dueña de usuarios y cupones.
type Company struct {
	ID        string
	Name      string
	CNPJ      string // identificador fiscal, único e inmutable
	Address   string
	Email     string
	LogoPath  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompanyStats resumen agregado de empresas activas.
type CompanyStats struct {
	TotalCompanies      int
	RegisteredLastMonth int
}
