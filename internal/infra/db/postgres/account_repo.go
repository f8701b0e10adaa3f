package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `
  email_key, email, name, role, access_granted, access_type,
  coupon_code, payment_reference, granted_at, revoked_at, created_at, last_active_at`

func (r *AccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const q = `
INSERT INTO accounts (
  email_key, email, name, role, access_granted, access_type,
  coupon_code, payment_reference, granted_at, revoked_at, created_at, last_active_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (email_key) DO UPDATE SET
  email=$2, name=$3, role=$4, access_granted=$5, access_type=$6,
  coupon_code=$7, payment_reference=$8, granted_at=$9, revoked_at=$10, last_active_at=$12;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		a.EmailKey, a.Email, a.Name, string(a.Role), a.AccessGranted, string(a.AccessType),
		nullIfEmpty(a.CouponCode), nullIfEmpty(a.PaymentReference), a.GrantedAt, a.RevokedAt, a.CreatedAt, a.LastActiveAt,
	)
	return err
}

func (r *AccountRepo) FindByEmailKey(ctx context.Context, tx repository.Tx, emailKey string) (*model.Account, error) {
	q := `SELECT` + accountColumns + ` FROM accounts WHERE email_key=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, emailKey)
	if err != nil {
		return nil, err
	}
	return scanAccount(row)
}

func (r *AccountRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT` + accountColumns + ` FROM accounts ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := querySQL(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) CountAccounts(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM accounts;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func (r *AccountRepo) CountByAccessType(ctx context.Context, tx repository.Tx) (map[model.AccessType]int, error) {
	rows, err := querySQL(ctx, r.pool, tx, `SELECT access_type, COUNT(*) FROM accounts GROUP BY access_type;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.AccessType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[model.AccessType(t)] = n
	}
	return out, rows.Err()
}

func (r *AccountRepo) Delete(ctx context.Context, tx repository.Tx, emailKey string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM accounts WHERE email_key=$1;`, emailKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	var role, accessType string
	var coupon, paymentRef *string
	err := row.Scan(
		&a.EmailKey, &a.Email, &a.Name, &role, &a.AccessGranted, &accessType,
		&coupon, &paymentRef, &a.GrantedAt, &a.RevokedAt, &a.CreatedAt, &a.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	a.Role = model.Role(role)
	a.AccessType = model.AccessType(accessType)
	if coupon != nil {
		a.CouponCode = *coupon
	}
	if paymentRef != nil {
		a.PaymentReference = *paymentRef
	}
	return &a, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
