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

var _ repository.ConferenceRepository = (*ConferenceRepo)(nil)

type ConferenceRepo struct {
	pool *pgxpool.Pool
}

func NewConferenceRepo(pool *pgxpool.Pool) *ConferenceRepo {
	return &ConferenceRepo{pool: pool}
}

func (r *ConferenceRepo) Save(ctx context.Context, tx repository.Tx, c *model.Conference) error {
	const q = `
INSERT INTO conferences (id, title, speaker, description, video_url, scheduled_at, published, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  title=$2, speaker=$3, description=$4, video_url=$5, scheduled_at=$6, published=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Title, c.Speaker, c.Description, c.VideoURL, c.ScheduledAt, c.Published, c.CreatedAt,
	)
	return err
}

func (r *ConferenceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Conference, error) {
	const q = `
SELECT id, title, speaker, description, video_url, scheduled_at, published, created_at
  FROM conferences WHERE id=$1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanConference(row)
}

func (r *ConferenceRepo) ListPublished(ctx context.Context, tx repository.Tx) ([]*model.Conference, error) {
	const q = `
SELECT id, title, speaker, description, video_url, scheduled_at, published, created_at
  FROM conferences WHERE published=TRUE ORDER BY scheduled_at NULLS LAST, created_at;
`
	return r.list(ctx, tx, q)
}

func (r *ConferenceRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Conference, error) {
	const q = `
SELECT id, title, speaker, description, video_url, scheduled_at, published, created_at
  FROM conferences ORDER BY created_at;
`
	return r.list(ctx, tx, q)
}

func (r *ConferenceRepo) list(ctx context.Context, tx repository.Tx, q string) ([]*model.Conference, error) {
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Conference
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConferenceRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM conferences WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanConference(row rowScanner) (*model.Conference, error) {
	var c model.Conference
	err := row.Scan(&c.ID, &c.Title, &c.Speaker, &c.Description, &c.VideoURL, &c.ScheduledAt, &c.Published, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}
