package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
)

var _ repository.PaymentRecordRepository = (*PaymentRecordRepo)(nil)

type PaymentRecordRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRecordRepo(pool *pgxpool.Pool) *PaymentRecordRepo {
	return &PaymentRecordRepo{pool: pool}
}

// Append inserts one audit row. The unique index on event_id plus
// ON CONFLICT DO NOTHING makes redelivered events a silent no-op.
func (r *PaymentRecordRepo) Append(ctx context.Context, tx repository.Tx, rec *model.PaymentRecord) error {
	const q = `
INSERT INTO payment_records (id, event_id, event_type, email, amount, currency, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (event_id) DO NOTHING;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.EventID, string(rec.EventType), rec.Email, rec.Amount, rec.Currency, rec.CreatedAt,
	)
	return err
}

func (r *PaymentRecordRepo) SumByCurrency(ctx context.Context, tx repository.Tx) (map[string]int64, error) {
	rows, err := querySQL(ctx, r.pool, tx, `SELECT currency, COALESCE(SUM(amount),0) FROM payment_records GROUP BY currency;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var cur string
		var sum int64
		if err := rows.Scan(&cur, &sum); err != nil {
			return nil, err
		}
		out[cur] = sum
	}
	return out, rows.Err()
}
