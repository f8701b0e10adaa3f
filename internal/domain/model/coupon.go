package model

import (
	"strings"
	"time"

	"event-access-platform/internal/domain"
)

// Coupon grants access in exchange for one unit of its usage allowance.
// Codes are stored uppercase; lookups normalize first.
type Coupon struct {
	Code        string
	Active      bool
	MaxUses     *int // nil means unlimited
	UsedCount   int
	Description string
	CreatedAt   time.Time
}

func NewCoupon(code string, maxUses *int, description string) (*Coupon, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	if maxUses != nil && *maxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Coupon{
		Code:        code,
		Active:      true,
		MaxUses:     maxUses,
		UsedCount:   0,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// NormalizeCouponCode uppercases and trims a user-supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Exhausted reports whether the coupon is at its usage bound. A coupon at
// the limit is functionally inactive even while Active is still true.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

// Redeemable reports whether one more use may be consumed right now.
func (c *Coupon) Redeemable() bool {
	return c.Active && !c.Exhausted()
}

// CouponUsage is one consumed unit of a coupon's allowance. Append only.
type CouponUsage struct {
	Code     string
	EmailKey string
	UsedAt   time.Time
}
