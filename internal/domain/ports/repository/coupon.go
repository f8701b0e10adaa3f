package repository

import (
	"context"

	"event-access-platform/internal/domain/model"
)

// CouponRepository is the port for coupon definitions and usage counters.
//
// ConsumeUse is the only write path for UsedCount. It must be a single
// store-level check-and-increment: increment by one only while the coupon is
// below its bound, returning the new count, or domain.ErrCouponExhausted when
// the bound is already reached. Concurrent redemptions of a near-exhausted
// coupon must never both succeed past MaxUses.
type CouponRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
	List(ctx context.Context, tx Tx) ([]*model.Coupon, error)
	ConsumeUse(ctx context.Context, tx Tx, code string) (newCount int, err error)
	SetActive(ctx context.Context, tx Tx, code string, active bool) error
	Delete(ctx context.Context, tx Tx, code string) error
	CountActive(ctx context.Context, tx Tx) (int, error)
	AppendUsage(ctx context.Context, tx Tx, u *model.CouponUsage) error
}
