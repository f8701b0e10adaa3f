package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
)

var _ repository.CouponRepository = (*CouponRepo)(nil)

type CouponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) *CouponRepo {
	return &CouponRepo{pool: pool}
}

func (r *CouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (code, active, max_uses, used_count, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (code) DO UPDATE SET
  active=$2, max_uses=$3, description=$5;
`
	_, err := execSQL(ctx, r.pool, tx, q, c.Code, c.Active, c.MaxUses, c.UsedCount, c.Description, c.CreatedAt)
	return err
}

func (r *CouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	const q = `
SELECT code, active, max_uses, used_count, description, created_at
  FROM coupons WHERE code=$1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanCoupon(row)
}

func (r *CouponRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Coupon, error) {
	const q = `
SELECT code, active, max_uses, used_count, description, created_at
  FROM coupons ORDER BY created_at DESC;
`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ConsumeUse performs the bound check and the increment as one atomic
// statement. Two concurrent redemptions of a coupon with one use left cannot
// both match the WHERE clause, so used_count never exceeds max_uses.
func (r *CouponRepo) ConsumeUse(ctx context.Context, tx repository.Tx, code string) (int, error) {
	const q = `
UPDATE coupons
   SET used_count = used_count + 1
 WHERE code = $1
   AND active = TRUE
   AND (max_uses IS NULL OR used_count < max_uses)
RETURNING used_count;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing/inactive coupon from an exhausted one.
			c, ferr := r.FindByCode(ctx, tx, code)
			if ferr != nil {
				return 0, domain.ErrInvalidCoupon
			}
			if !c.Active {
				return 0, domain.ErrInvalidCoupon
			}
			return 0, domain.ErrCouponExhausted
		}
		return 0, err
	}
	return n, nil
}

func (r *CouponRepo) SetActive(ctx context.Context, tx repository.Tx, code string, active bool) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE coupons SET active=$2 WHERE code=$1;`, code, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CouponRepo) Delete(ctx context.Context, tx repository.Tx, code string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM coupons WHERE code=$1;`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CouponRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM coupons WHERE active=TRUE;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *CouponRepo) AppendUsage(ctx context.Context, tx repository.Tx, u *model.CouponUsage) error {
	const q = `INSERT INTO coupon_usages (code, email_key, used_at) VALUES ($1,$2,$3);`
	_, err := execSQL(ctx, r.pool, tx, q, u.Code, u.EmailKey, u.UsedAt)
	return err
}

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.Code, &c.Active, &c.MaxUses, &c.UsedCount, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}
