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
	"github.com/jhoicas/cupones-api/pkg/cnpj"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo repository.CompanyRepository
	tx   CatalogTxRunner
	now  func() time.Time
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia y el runner
// de transacciones (desactivar empresa + cupones).
func NewCompanyUseCase(repo repository.CompanyRepository, tx CatalogTxRunner) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, tx: tx, now: time.Now}
}

// Create crea una nueva empresa activa. Devuelve domain.ErrDuplicate si el CNPJ ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	in.CNPJ = strings.TrimSpace(in.CNPJ)
	in.Email = entity.NormalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	// Se guarda solo con dígitos: "11.222.333/0001-81" y "11222333000181" son el mismo.
	normalized, err := cnpj.Normalize(in.CNPJ)
	if err != nil {
		return nil, dto.NewValidationError("cnpj", "cnpj")
	}
	in.CNPJ = normalized
	existing, err := uc.repo.GetByCNPJ(ctx, in.CNPJ)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now().UTC()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		CNPJ:      in.CNPJ,
		Address:   strings.TrimSpace(in.Address),
		Email:     in.Email,
		LogoPath:  in.LogoPath,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID. domain.ErrNotFound si no existe.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas activas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListActive(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	}, nil
}

// Update modifica los datos de la empresa. Solo admin o usuarios de la misma empresa.
// El CNPJ no se puede cambiar: domain.ErrImmutableField si viene distinto.
func (uc *CompanyUseCase) Update(ctx context.Context, p *auth.Principal, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if err := auth.RequireOwnership(p, company.ID); err != nil {
		return nil, err
	}
	if in.CNPJ != nil && !cnpj.Same(*in.CNPJ, company.CNPJ) {
		return nil, fmt.Errorf("%w: cnpj", domain.ErrImmutableField)
	}

	if in.Name != nil {
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		company.Address = strings.TrimSpace(*in.Address)
	}
	if in.Email != nil {
		company.Email = entity.NormalizeEmail(*in.Email)
	}
	if in.LogoPath != nil {
		company.LogoPath = *in.LogoPath
	}
	company.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Deactivate desactiva la empresa y todos sus cupones en una sola transacción.
func (uc *CompanyUseCase) Deactivate(ctx context.Context, id string) error {
	at := uc.now().UTC()
	return uc.tx.Run(ctx, func(companies repository.CompanyRepository, coupons repository.CouponRepository) error {
		if err := companies.Deactivate(ctx, id, at); err != nil {
			return err
		}
		return coupons.DeactivateByCompany(ctx, id, at)
	})
}

// Stats total de empresas activas y cuántas se registraron en el último mes.
func (uc *CompanyUseCase) Stats(ctx context.Context) (*dto.CompanyStatsResponse, error) {
	st, err := uc.repo.Stats(ctx, uc.now().UTC().AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}
	return &dto.CompanyStatsResponse{
		TotalCompanies:      st.TotalCompanies,
		RegisteredLastMonth: st.RegisteredLastMonth,
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		CNPJ:      c.CNPJ,
		Address:   c.Address,
		Email:     c.Email,
		LogoPath:  c.LogoPath,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
