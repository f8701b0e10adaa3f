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

var _ repository.AdminRegistryRepository = (*AdminRegistryRepo)(nil)

type AdminRegistryRepo struct {
	pool *pgxpool.Pool
}

func NewAdminRegistryRepo(pool *pgxpool.Pool) *AdminRegistryRepo {
	return &AdminRegistryRepo{pool: pool}
}

func (r *AdminRegistryRepo) FindByEmailKey(ctx context.Context, tx repository.Tx, emailKey string) (*model.AdminEntry, error) {
	const q = `SELECT email_key, active, role, created_at FROM admins WHERE email_key=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, emailKey)
	if err != nil {
		return nil, err
	}
	var e model.AdminEntry
	var role string
	if err := row.Scan(&e.EmailKey, &e.Active, &role, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	e.Role = model.Role(role)
	return &e, nil
}

func (r *AdminRegistryRepo) Save(ctx context.Context, tx repository.Tx, e *model.AdminEntry) error {
	const q = `
INSERT INTO admins (email_key, active, role, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (email_key) DO UPDATE SET active=$2, role=$3;
`
	_, err := execSQL(ctx, r.pool, tx, q, e.EmailKey, e.Active, string(e.Role), e.CreatedAt)
	return err
}
