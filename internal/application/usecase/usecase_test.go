package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cupones-api/internal/application/auth"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
	"github.com/jhoicas/cupones-api/internal/infrastructure/memory"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type stubVouchers struct{ called bool }

func (s *stubVouchers) GenerateCouponVoucher(coupon *entity.Coupon, company *entity.Company) ([]byte, error) {
	s.called = true
	return []byte("%PDF-" + coupon.ID + "-" + company.Name), nil
}

type env struct {
	store     *memory.Store
	companies *CompanyUseCase
	coupons   *CouponUseCase
	users     *UserUseCase
	vouchers  *stubVouchers
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.New()
	e := &env{
		store:     s,
		companies: NewCompanyUseCase(s.Companies(), s),
		vouchers:  &stubVouchers{},
		users:     NewUserUseCase(s.Users()),
	}
	e.coupons = NewCouponUseCase(s.Coupons(), s.Companies(), e.vouchers)
	clock := func() time.Time { return now }
	e.companies.now = clock
	e.coupons.now = clock
	return e
}

func (e *env) createCompany(t *testing.T, cnpj string) string {
	t.Helper()
	out, err := e.companies.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Empresa " + cnpj, CNPJ: cnpj, Address: "Rua 1", Email: "contato@" + cnpj + ".com",
	})
	require.NoError(t, err)
	return out.ID
}

func (e *env) createCoupon(t *testing.T, p *auth.Principal, validUntil time.Time) string {
	t.Helper()
	out, err := e.coupons.Create(context.Background(), p, dto.CreateCouponRequest{
		Title: "10% off", Description: "desc", Value: decimal.NewFromInt(10), ValidUntil: validUntil,
	})
	require.NoError(t, err)
	return out.ID
}

func userOf(companyID string) *auth.Principal {
	return &auth.Principal{ID: "u-" + companyID, Role: entity.RoleUser, CompanyID: companyID}
}

var admin = &auth.Principal{ID: "admin", Role: entity.RoleAdmin}

// ─── Empresas ───────────────────────────────────────────────────────────────

func TestCompany_CreateCNPJDuplicado(t *testing.T) {
	e := newEnv(t)
	e.createCompany(t, "11222333000181")
	_, err := e.companies.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Otra", CNPJ: " 11222333000181 ", Address: "Rua 2", Email: "x@y.com",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// misma empresa con puntuación
	_, err = e.companies.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Otra", CNPJ: "11.222.333/0001-81", Address: "Rua 2", Email: "x@y.com",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCompany_CreateCNPJInvalido(t *testing.T) {
	e := newEnv(t)
	_, err := e.companies.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Otra", CNPJ: "11.222.333/0001-82", Address: "Rua 2", Email: "x@y.com",
	})
	var verr *dto.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cnpj", verr.Fields["cnpj"])
}

func TestCompany_UpdateOwnershipYCNPJInmutable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	y := e.createCompany(t, "04597371000153")

	name := "Nuevo nombre"
	out, err := e.companies.Update(ctx, userOf(x), x, dto.UpdateCompanyRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo nombre", out.Name)

	_, err = e.companies.Update(ctx, userOf(y), x, dto.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	same := "12.345.678/0001-95"
	_, err = e.companies.Update(ctx, admin, x, dto.UpdateCompanyRequest{CNPJ: &same})
	assert.NoError(t, err, "enviar el mismo CNPJ no es un cambio")

	other := "33448307000109"
	_, err = e.companies.Update(ctx, admin, x, dto.UpdateCompanyRequest{CNPJ: &other})
	assert.ErrorIs(t, err, domain.ErrImmutableField)

	_, err = e.companies.Update(ctx, admin, "no-existe", dto.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompany_DeactivateDesactivaCupones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	y := e.createCompany(t, "04597371000153")
	kx := e.createCoupon(t, userOf(x), now.AddDate(0, 1, 0))
	ky := e.createCoupon(t, userOf(y), now.AddDate(0, 1, 0))

	require.NoError(t, e.companies.Deactivate(ctx, x))

	c, err := e.companies.GetByID(ctx, x)
	require.NoError(t, err)
	assert.False(t, c.Active)

	cx, _ := e.coupons.GetByID(ctx, kx)
	cy, _ := e.coupons.GetByID(ctx, ky)
	assert.False(t, cx.Active)
	assert.True(t, cy.Active, "los cupones de otras empresas no cambian")

	list, err := e.companies.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, y, list.Items[0].ID)

	assert.ErrorIs(t, e.companies.Deactivate(ctx, "no-existe"), domain.ErrNotFound)
}

type failingTx struct{}

func (failingTx) Run(context.Context, func(repository.CompanyRepository, repository.CouponRepository) error) error {
	return errors.New("tx caída")
}

func TestCompany_DeactivatePropagaErrorDeTx(t *testing.T) {
	s := memory.New()
	uc := NewCompanyUseCase(s.Companies(), failingTx{})
	assert.Error(t, uc.Deactivate(context.Background(), "x"))
}

func TestCompany_Stats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createCompany(t, "12345678000195")
	require.NoError(t, e.store.Companies().Create(ctx, &entity.Company{
		ID: "vieja", CNPJ: "000", Active: true, CreatedAt: now.AddDate(0, -3, 0),
	}))

	st, err := e.companies.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalCompanies)
	assert.Equal(t, 1, st.RegisteredLastMonth)
}

// ─── Cupones ────────────────────────────────────────────────────────────────

func TestCoupon_CreateEmpresaDelPrincipal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	y := e.createCompany(t, "04597371000153")

	out, err := e.coupons.Create(ctx, userOf(x), dto.CreateCouponRequest{
		Title: "Promo", Description: "d", Value: decimal.RequireFromString("15.50"), ValidUntil: now.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, x, out.CompanyID)
	assert.True(t, out.Value.Equal(decimal.RequireFromString("15.5")))

	_, err = e.coupons.Create(ctx, userOf(x), dto.CreateCouponRequest{
		Title: "Promo", Description: "d", Value: decimal.NewFromInt(1), ValidUntil: now.Add(time.Hour), CompanyID: y,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un usuario no publica cupones de otra empresa")

	out, err = e.coupons.Create(ctx, admin, dto.CreateCouponRequest{
		Title: "Promo", Description: "d", Value: decimal.NewFromInt(1), ValidUntil: now.Add(time.Hour), CompanyID: y,
	})
	require.NoError(t, err)
	assert.Equal(t, y, out.CompanyID)
}

func TestCoupon_CreateValidaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	var verr *dto.ValidationError

	_, err := e.coupons.Create(ctx, userOf(x), dto.CreateCouponRequest{Title: "T", Description: "d", Value: decimal.Zero, ValidUntil: now.Add(time.Hour)})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "value")

	_, err = e.coupons.Create(ctx, userOf(x), dto.CreateCouponRequest{Title: "T", Description: "d", Value: decimal.NewFromInt(5), ValidUntil: now.Add(-time.Hour)})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "valid_until")

	require.NoError(t, e.companies.Deactivate(ctx, x))
	_, err = e.coupons.Create(ctx, userOf(x), dto.CreateCouponRequest{Title: "T", Description: "d", Value: decimal.NewFromInt(5), ValidUntil: now.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCoupon_UpdateDeleteOwnership(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	y := e.createCompany(t, "04597371000153")
	ky := e.createCoupon(t, userOf(y), now.AddDate(0, 0, 10))

	title := "Cambiado"
	_, err := e.coupons.Update(ctx, userOf(x), ky, dto.UpdateCouponRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, e.coupons.Delete(ctx, userOf(x), ky), domain.ErrForbidden)

	out, err := e.coupons.Update(ctx, userOf(y), ky, dto.UpdateCouponRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Cambiado", out.Title)

	require.NoError(t, e.coupons.Delete(ctx, admin, ky))
	got, err := e.coupons.GetByID(ctx, ky)
	require.NoError(t, err)
	assert.False(t, got.Active, "borrado lógico")

	assert.ErrorIs(t, e.coupons.Delete(ctx, admin, "no-existe"), domain.ErrNotFound)
}

func TestCoupon_ListExpiring(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	soon := e.createCoupon(t, userOf(x), now.AddDate(0, 0, 3))
	e.createCoupon(t, userOf(x), now.AddDate(0, 0, 20))

	out, err := e.coupons.ListExpiring(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, soon, out.Items[0].ID)

	out, err = e.coupons.ListExpiring(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	var verr *dto.ValidationError
	_, err = e.coupons.ListExpiring(ctx, 366)
	assert.ErrorAs(t, err, &verr)
	_, err = e.coupons.ListExpiring(ctx, -1)
	assert.ErrorAs(t, err, &verr)
}

func TestCoupon_ListByCompanyYVoucher(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	x := e.createCompany(t, "12345678000195")
	y := e.createCompany(t, "04597371000153")
	kx := e.createCoupon(t, userOf(x), now.AddDate(0, 0, 3))
	e.createCoupon(t, userOf(y), now.AddDate(0, 0, 3))

	list, err := e.coupons.ListByCompany(ctx, x, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, kx, list.Items[0].ID)

	all, err := e.coupons.ListActive(ctx, dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)

	pdf, err := e.coupons.Voucher(ctx, kx)
	require.NoError(t, err)
	assert.True(t, e.vouchers.called)
	assert.Contains(t, string(pdf), "Empresa 111")

	require.NoError(t, e.coupons.Delete(ctx, admin, kx))
	_, err = e.coupons.Voucher(ctx, kx)
	assert.ErrorIs(t, err, domain.ErrNotFound, "cupón inactivo no tiene comprobante")
}

// ─── Usuarios ───────────────────────────────────────────────────────────────

func TestUser_ListAlcancePorEmpresa(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i, c := range []string{"cx", "cx", "cy"} {
		require.NoError(t, e.store.Users().Create(ctx, &entity.User{
			ID: string(rune('a' + i)), CompanyID: c, Email: string(rune('a'+i)) + "@x.com", PasswordHash: "h", Role: entity.RoleUser, Active: true,
		}))
	}

	out, err := e.users.List(ctx, userOf("cx"), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	out, err = e.users.List(ctx, admin, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)

	_, err = e.users.List(ctx, nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
