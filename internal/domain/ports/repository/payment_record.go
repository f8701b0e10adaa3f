package repository

import (
	"context"

	"event-access-platform/internal/domain/model"
)

// PaymentRecordRepository is the append-only audit log of processed payment
// events. Append must be idempotent on EventID: re-appending a record for an
// already-recorded event is a silent no-op, never an error and never a
// duplicate row.
type PaymentRecordRepository interface {
	Append(ctx context.Context, tx Tx, rec *model.PaymentRecord) error
	SumByCurrency(ctx context.Context, tx Tx) (map[string]int64, error)
}
