package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
)

var _ repository.CouponRepository = (*CouponRepo)(nil)

const couponColumns = `id, company_id, title, description, value, valid_until, image_path, active, created_at, updated_at`

// CouponRepo implementación del puerto CouponRepository sobre PostgreSQL.
// value es NUMERIC y se mapea a decimal.Decimal con el codec registrado en el pool.
type CouponRepo struct {
	db Querier
}

// NewCouponRepository construye el adaptador de persistencia para cupones.
func NewCouponRepository(db Querier) *CouponRepo {
	return &CouponRepo{db: db}
}

func (r *CouponRepo) Create(ctx context.Context, coupon *entity.Coupon) error {
	query := `INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		coupon.ID, coupon.CompanyID, coupon.Title, coupon.Description, coupon.Value,
		coupon.ValidUntil, coupon.ImagePath, coupon.Active, coupon.CreatedAt, coupon.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (r *CouponRepo) GetByID(ctx context.Context, id string) (*entity.Coupon, error) {
	if !validID(id) {
		return nil, nil
	}
	c, err := scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return c, nil
}

// Update actualiza el cupón completo salvo company_id y created_at.
func (r *CouponRepo) Update(ctx context.Context, coupon *entity.Coupon) error {
	query := `
		UPDATE coupons
		SET title = $2, description = $3, value = $4, valid_until = $5, image_path = $6, active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		coupon.ID, coupon.Title, coupon.Description, coupon.Value, coupon.ValidUntil,
		coupon.ImagePath, coupon.Active, coupon.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CouponRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.Coupon, error) {
	return r.query(ctx, `SELECT `+couponColumns+` FROM coupons WHERE active
		ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *CouponRepo) ListActiveByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Coupon, error) {
	if !validID(companyID) {
		return []*entity.Coupon{}, nil
	}
	return r.query(ctx, `SELECT `+couponColumns+` FROM coupons WHERE active AND company_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, companyID, limit, offset)
}

func (r *CouponRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*entity.Coupon, error) {
	return r.query(ctx, `SELECT `+couponColumns+` FROM coupons
		WHERE active AND valid_until BETWEEN $1 AND $2
		ORDER BY valid_until, id`, from, to)
}

func (r *CouponRepo) DeactivateByCompany(ctx context.Context, companyID string, at time.Time) error {
	if !validID(companyID) {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`UPDATE coupons SET active = FALSE, updated_at = $2 WHERE company_id = $1 AND active`, companyID, at)
	if err != nil {
		return fmt.Errorf("deactivate coupons: %w", err)
	}
	return nil
}

func (r *CouponRepo) query(ctx context.Context, sql string, args ...any) ([]*entity.Coupon, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCoupon(row pgx.Row) (*entity.Coupon, error) {
	var c entity.Coupon
	if err := row.Scan(
		&c.ID, &c.CompanyID, &c.Title, &c.Description, &c.Value, &c.ValidUntil,
		&c.ImagePath, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
