package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func seedCompany(t *testing.T, s *Store, id, cnpj string) {
	t.Helper()
	require.NoError(t, s.Companies().Create(context.Background(), &entity.Company{
		ID: id, Name: "Empresa " + id, CNPJ: cnpj, Active: true, CreatedAt: t0, UpdatedAt: t0,
	}))
}

func seedCoupon(t *testing.T, s *Store, id, companyID string, validUntil time.Time) {
	t.Helper()
	require.NoError(t, s.Coupons().Create(context.Background(), &entity.Coupon{
		ID: id, CompanyID: companyID, Title: "Cupón " + id, Value: decimal.NewFromInt(10),
		ValidUntil: validUntil, Active: true, CreatedAt: t0, UpdatedAt: t0,
	}))
}

func TestUserRepo_EmailUnicoYSinHash(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &entity.User{ID: "u1", CompanyID: "c1", Email: "a@x.com", PasswordHash: "$2a$hash", Role: entity.RoleUser, Active: true}
	require.NoError(t, s.Users().Create(ctx, u))

	err := s.Users().Create(ctx, &entity.User{ID: "u2", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	byID, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, byID.PasswordHash, "FindByID no debe exponer el hash")

	byEmail, err := s.Users().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", byEmail.PasswordHash)

	missing, err := s.Users().FindByID(ctx, "nadie")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_FindByIDContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Users().FindByID(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompanyRepo_CNPJDuplicadoYStats(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedCompany(t, s, "c1", "111")
	err := s.Companies().Create(ctx, &entity.Company{ID: "c2", CNPJ: "111"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: "c3", CNPJ: "333", Active: true, CreatedAt: t0.AddDate(0, -2, 0)}))
	st, err := s.Companies().Stats(ctx, t0.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalCompanies)
	assert.Equal(t, 1, st.RegisteredLastMonth)
}

func TestCouponRepo_ListExpiringOrdenado(t *testing.T) {
	s := New()
	seedCompany(t, s, "c1", "111")
	seedCoupon(t, s, "k1", "c1", t0.Add(72*time.Hour))
	seedCoupon(t, s, "k2", "c1", t0.Add(24*time.Hour))
	seedCoupon(t, s, "k3", "c1", t0.Add(30*24*time.Hour))
	seedCoupon(t, s, "k4", "c1", t0.Add(-time.Hour))

	out, err := s.Coupons().ListExpiring(context.Background(), t0, t0.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "k2", out[0].ID)
	assert.Equal(t, "k1", out[1].ID)
}

func TestStore_RunRestauraSiFalla(t *testing.T) {
	s := New()
	seedCompany(t, s, "c1", "111")
	seedCoupon(t, s, "k1", "c1", t0.Add(time.Hour))
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(companies repository.CompanyRepository, coupons repository.CouponRepository) error {
		require.NoError(t, coupons.DeactivateByCompany(context.Background(), "c1", t0))
		require.NoError(t, companies.Deactivate(context.Background(), "c1", t0))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, _ := s.Companies().GetByID(context.Background(), "c1")
	k, _ := s.Coupons().GetByID(context.Background(), "k1")
	assert.True(t, c.Active, "la empresa debe seguir activa tras el rollback")
	assert.True(t, k.Active, "el cupón debe seguir activo tras el rollback")
}

// Una escritura concurrente no debe perderse con el rollback de Run.
func TestStore_RunNoPierdeEscriturasConcurrentes(t *testing.T) {
	s := New()
	seedCompany(t, s, "c1", "111")
	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		<-started
		assert.NoError(t, s.Coupons().Create(context.Background(), &entity.Coupon{
			ID: "k2", CompanyID: "c1", Value: decimal.NewFromInt(5), ValidUntil: t0.Add(time.Hour), Active: true,
		}))
		close(done)
	}()

	err := s.Run(context.Background(), func(companies repository.CompanyRepository, coupons repository.CouponRepository) error {
		close(started)
		select {
		case <-done:
			t.Error("la escritura externa no debe intercalarse con la transacción")
		case <-time.After(50 * time.Millisecond):
		}
		require.NoError(t, companies.Deactivate(context.Background(), "c1", t0))
		return errors.New("boom")
	})
	require.Error(t, err)
	<-done

	k, err := s.Coupons().GetByID(context.Background(), "k2")
	require.NoError(t, err)
	require.NotNil(t, k, "el cupón creado fuera de la transacción sobrevive al rollback")
	c, _ := s.Companies().GetByID(context.Background(), "c1")
	assert.True(t, c.Active)
}

func TestOwnerRepo_FindOwnerRef(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedCompany(t, s, "c1", "111")
	seedCoupon(t, s, "k1", "c1", t0)

	ref, found, err := s.Owners().FindOwnerRef(ctx, entity.ResourceCoupon, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "c1", ref)

	ref, found, _ = s.Owners().FindOwnerRef(ctx, entity.ResourceCompany, "c1")
	assert.True(t, found)
	assert.Equal(t, "c1", ref)

	_, found, _ = s.Owners().FindOwnerRef(ctx, entity.ResourceCoupon, "nope")
	assert.False(t, found)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, page(items, 2, 2))
	assert.Empty(t, page(items, 2, 10))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, page(items, 0, 0))
}
