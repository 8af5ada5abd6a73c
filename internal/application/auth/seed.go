package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
	"github.com/jhoicas/cupones-api/pkg/cnpj"
	"github.com/jhoicas/cupones-api/pkg/password"
)

// SeedAdminInput datos de la empresa inicial y de su administrador.
type SeedAdminInput struct {
	CompanyName    string `validate:"required"`
	CompanyCNPJ    string `validate:"required,max=20"`
	CompanyAddress string
	CompanyEmail   string `validate:"required,email"`
	AdminName      string `validate:"required"`
	AdminEmail     string `validate:"required,email"`
	AdminPassword  string `validate:"required,min=8,max_bytes=72"`
}

// SeedAdminResult qué se creó en esta ejecución (false = ya existía).
type SeedAdminResult struct {
	CompanyID      string
	AdminID        string
	CompanyCreated bool
	AdminCreated   bool
}

// SeedAdmin crea, si no existen, la empresa (por CNPJ) y el usuario admin (por email).
// Es el único camino para obtener un principal admin. Repetirlo no duplica nada.
func SeedAdmin(ctx context.Context, users repository.UserRepository, companies repository.CompanyRepository, in SeedAdminInput) (*SeedAdminResult, error) {
	in.AdminEmail = entity.NormalizeEmail(in.AdminEmail)
	in.CompanyEmail = entity.NormalizeEmail(in.CompanyEmail)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	normalized, err := cnpj.Normalize(in.CompanyCNPJ)
	if err != nil {
		return nil, dto.NewValidationError("CompanyCNPJ", "cnpj")
	}
	in.CompanyCNPJ = normalized
	now := time.Now().UTC()
	res := &SeedAdminResult{}

	company, err := companies.GetByCNPJ(ctx, in.CompanyCNPJ)
	if err != nil {
		return nil, err
	}
	if company == nil {
		company = &entity.Company{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(in.CompanyName),
			CNPJ:      in.CompanyCNPJ,
			Address:   strings.TrimSpace(in.CompanyAddress),
			Email:     in.CompanyEmail,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := companies.Create(ctx, company); err != nil {
			return nil, fmt.Errorf("crear empresa: %w", err)
		}
		res.CompanyCreated = true
	}
	res.CompanyID = company.ID

	admin, err := users.FindByEmail(ctx, in.AdminEmail)
	if err != nil {
		return nil, err
	}
	if admin != nil {
		if admin.Role != entity.RoleAdmin {
			return nil, fmt.Errorf("%w: %s ya existe con rol %s", domain.ErrEmailAlreadyExists, in.AdminEmail, admin.Role)
		}
		res.AdminID = admin.ID
		return res, nil
	}

	hash, err := password.Hash(in.AdminPassword)
	if err != nil {
		return nil, err
	}
	admin = &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Name:         strings.TrimSpace(in.AdminName),
		Email:        in.AdminEmail,
		PasswordHash: hash,
		Role:         entity.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("crear admin: %w", err)
	}
	res.AdminID = admin.ID
	res.AdminCreated = true
	return res, nil
}
