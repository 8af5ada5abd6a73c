// Package memory implementa los puertos de persistencia en memoria.
// Se usa con DB_DRIVER=memory (desarrollo) y en los tests; los datos se pierden
// al reiniciar el proceso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

// Store guarda usuarios, empresas y cupones en mapas protegidos por un RWMutex.
// Las entidades se copian al entrar y al salir: nadie fuera del store comparte punteros internos.
type Store struct {
	mu        sync.RWMutex
	users     map[string]entity.User
	companies map[string]entity.Company
	coupons   map[string]entity.Coupon

	// txMu serializa Run contra las escrituras de empresas y cupones hechas fuera de él.
	txMu sync.Mutex
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		users:     make(map[string]entity.User),
		companies: make(map[string]entity.Company),
		coupons:   make(map[string]entity.Coupon),
	}
}

// Users repositorio de usuarios sobre el store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Companies repositorio de empresas sobre el store.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s: s} }

// Coupons repositorio de cupones sobre el store.
func (s *Store) Coupons() *CouponRepo { return &CouponRepo{s: s} }

// Owners lookup genérico de propiedad sobre el store.
func (s *Store) Owners() *OwnerRepo { return &OwnerRepo{s: s} }

// Run ejecuta fn con los repos de empresas y cupones. Si fn falla, se restauran
// empresas y cupones al estado previo. Mientras corre, las escrituras de fuera esperan.
func (s *Store) Run(ctx context.Context, fn func(companies repository.CompanyRepository, coupons repository.CouponRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	companies := make(map[string]entity.Company, len(s.companies))
	for k, v := range s.companies {
		companies[k] = v
	}
	coupons := make(map[string]entity.Coupon, len(s.coupons))
	for k, v := range s.coupons {
		coupons[k] = v
	}
	s.mu.RUnlock()

	if err := fn(&CompanyRepo{s: s, inTx: true}, &CouponRepo{s: s, inTx: true}); err != nil {
		s.mu.Lock()
		s.companies = companies
		s.coupons = coupons
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite toma el lock de escritura; fuera de Run también txMu, para no
// intercalarse con una transacción que podría restaurar su snapshot.
func (s *Store) lockWrite(inTx bool) (unlock func()) {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// ─── Usuarios ───────────────────────────────────────────────────────────────

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de repository.UserRepository.
type UserRepo struct{ s *Store }

// Create persiste el usuario; el email es único.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.users[user.ID] = *user
	return nil
}

// FindByID devuelve el usuario sin PasswordHash.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u.PasswordHash = ""
	return &u, nil
}

// FindByEmail devuelve el usuario incluyendo PasswordHash.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// List todos los usuarios (sin hash), más recientes primero.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return r.list(func(entity.User) bool { return true }, limit, offset), nil
}

// ListByCompany usuarios de una empresa (sin hash).
func (r *UserRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	return r.list(func(u entity.User) bool { return u.CompanyID == companyID }, limit, offset), nil
}

func (r *UserRepo) list(keep func(entity.User) bool, limit, offset int) []*entity.User {
	r.s.mu.RLock()
	out := make([]*entity.User, 0)
	for _, u := range r.s.users {
		if keep(u) {
			u.PasswordHash = ""
			uu := u
			out = append(out, &uu)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, limit, offset)
}

// ─── Empresas ───────────────────────────────────────────────────────────────

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación en memoria de repository.CompanyRepository.
type CompanyRepo struct {
	s    *Store
	inTx bool
}

// Create persiste la empresa; el CNPJ es único.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	defer r.s.lockWrite(r.inTx)()
	for _, c := range r.s.companies {
		if c.CNPJ == company.CNPJ || c.ID == company.ID {
			return domain.ErrDuplicate
		}
	}
	r.s.companies[company.ID] = *company
	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CompanyRepo) GetByCNPJ(ctx context.Context, cnpj string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.companies {
		if c.CNPJ == cnpj {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

// Update reemplaza la empresa; domain.ErrNotFound si no existe.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.companies[company.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.companies[company.ID] = *company
	return nil
}

func (r *CompanyRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	r.s.mu.RLock()
	out := make([]*entity.Company, 0)
	for _, c := range r.s.companies {
		if c.Active {
			cc := c
			out = append(out, &cc)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, limit, offset), nil
}

func (r *CompanyRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	defer r.s.lockWrite(r.inTx)()
	c, ok := r.s.companies[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = false
	c.UpdatedAt = at
	r.s.companies[id] = c
	return nil
}

func (r *CompanyRepo) Stats(ctx context.Context, since time.Time) (*entity.CompanyStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var st entity.CompanyStats
	for _, c := range r.s.companies {
		if !c.Active {
			continue
		}
		st.TotalCompanies++
		if !c.CreatedAt.Before(since) {
			st.RegisteredLastMonth++
		}
	}
	return &st, nil
}

// ─── Cupones ────────────────────────────────────────────────────────────────

var _ repository.CouponRepository = (*CouponRepo)(nil)

// CouponRepo implementación en memoria de repository.CouponRepository.
type CouponRepo struct {
	s    *Store
	inTx bool
}

func (r *CouponRepo) Create(ctx context.Context, coupon *entity.Coupon) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.coupons[coupon.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.coupons[coupon.ID] = *coupon
	return nil
}

func (r *CouponRepo) GetByID(ctx context.Context, id string) (*entity.Coupon, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.coupons[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CouponRepo) Update(ctx context.Context, coupon *entity.Coupon) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.coupons[coupon.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.coupons[coupon.ID] = *coupon
	return nil
}

func (r *CouponRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Coupon, error) {
	return r.list(func(c entity.Coupon) bool { return c.Active }, limit, offset), nil
}

func (r *CouponRepo) ListActiveByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Coupon, error) {
	return r.list(func(c entity.Coupon) bool { return c.Active && c.CompanyID == companyID }, limit, offset), nil
}

// ListExpiring cupones activos con vencimiento en [from, to], el más próximo primero.
func (r *CouponRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*entity.Coupon, error) {
	r.s.mu.RLock()
	out := make([]*entity.Coupon, 0)
	for _, c := range r.s.coupons {
		if c.Active && !c.ValidUntil.Before(from) && !c.ValidUntil.After(to) {
			cc := c
			out = append(out, &cc)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ValidUntil.Equal(out[j].ValidUntil) {
			return out[i].ID < out[j].ID
		}
		return out[i].ValidUntil.Before(out[j].ValidUntil)
	})
	return out, nil
}

func (r *CouponRepo) DeactivateByCompany(ctx context.Context, companyID string, at time.Time) error {
	defer r.s.lockWrite(r.inTx)()
	for id, c := range r.s.coupons {
		if c.CompanyID == companyID && c.Active {
			c.Active = false
			c.UpdatedAt = at
			r.s.coupons[id] = c
		}
	}
	return nil
}

func (r *CouponRepo) list(keep func(entity.Coupon) bool, limit, offset int) []*entity.Coupon {
	r.s.mu.RLock()
	out := make([]*entity.Coupon, 0)
	for _, c := range r.s.coupons {
		if keep(c) {
			cc := c
			out = append(out, &cc)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return page(out, limit, offset)
}

// ─── Ownership ──────────────────────────────────────────────────────────────

var _ repository.OwnerRepository = (*OwnerRepo)(nil)

// OwnerRepo resuelve la empresa dueña de un recurso.
type OwnerRepo struct{ s *Store }

// FindOwnerRef: una empresa es dueña de sí misma; un cupón, de su CompanyID.
func (r *OwnerRepo) FindOwnerRef(ctx context.Context, kind, id string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	switch kind {
	case entity.ResourceCompany:
		c, ok := r.s.companies[id]
		return c.ID, ok, nil
	case entity.ResourceCoupon:
		c, ok := r.s.coupons[id]
		return c.CompanyID, ok, nil
	default:
		return "", false, nil
	}
}

// newer orden por created_at DESC, id ASC (mismo orden que PostgreSQL).
func newer(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.After(b)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
