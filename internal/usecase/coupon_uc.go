package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/metrics"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

// CouponUseCase mediates coupon redemption and the admin-side coupon
// lifecycle.
type CouponUseCase interface {
	// Redeem consumes one unit of the coupon's allowance and grants coupon
	// access to the account for email. Fails with domain.ErrInvalidCoupon
	// or domain.ErrCouponExhausted.
	Redeem(ctx context.Context, email, code string) error
	Create(ctx context.Context, code string, maxUses *int, description, actingAdmin string) (*model.Coupon, error)
	SetActive(ctx context.Context, code string, active bool, actingAdmin string) error
	List(ctx context.Context, actingAdmin string) ([]*model.Coupon, error)
	Delete(ctx context.Context, code, actingAdmin string) error
}

type couponUC struct {
	coupons  repository.CouponRepository
	accounts repository.AccountRepository
	admins   AdminUseCase
	log      *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, accounts repository.AccountRepository, admins AdminUseCase, logger *zerolog.Logger) *couponUC {
	return &couponUC{coupons: coupons, accounts: accounts, admins: admins, log: logger}
}

// Redeem checks the coupon, consumes a use, then grants the account. The
// counter increment and the account grant are two writes on purpose: the
// increment alone must be race-safe at the store level, while the account
// grant is idempotent and converges under any interleaving.
func (u *couponUC) Redeem(ctx context.Context, email, code string) error {
	defer logging.TraceDuration(u.log, "CouponUC.Redeem")()

	code = model.NormalizeCouponCode(code)
	emailKey := model.EmailKey(email)
	if code == "" || emailKey == "" {
		return domain.ErrInvalidArgument
	}

	c, err := u.coupons.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncCouponRedemption("invalid")
			return domain.ErrInvalidCoupon
		}
		return err
	}
	if !c.Active {
		metrics.IncCouponRedemption("invalid")
		return domain.ErrInvalidCoupon
	}
	if c.Exhausted() {
		metrics.IncCouponRedemption("exhausted")
		return domain.ErrCouponExhausted
	}

	// The bound is re-checked inside the store as one atomic
	// check-and-increment; the read above is only a fast path.
	newCount, err := u.coupons.ConsumeUse(ctx, repository.NoTX, code)
	if err != nil {
		if err == domain.ErrCouponExhausted {
			metrics.IncCouponRedemption("exhausted")
		}
		return err
	}

	usage := &model.CouponUsage{Code: code, EmailKey: emailKey, UsedAt: time.Now()}
	if err := u.coupons.AppendUsage(ctx, repository.NoTX, usage); err != nil {
		// The use is already consumed; losing the audit row is logged, not
		// surfaced, so the redeemer is not charged a second use on retry.
		u.log.Error().Err(err).Str("code", code).Msg("coupon usage entry not recorded")
	}

	a, err := u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
	if err == domain.ErrNotFound {
		a, err = model.NewAccount(email, "")
	}
	if err != nil {
		return err
	}
	a.GrantCoupon(code)
	if err := u.accounts.Save(ctx, repository.NoTX, a); err != nil {
		return err
	}

	metrics.IncCouponRedemption("granted")
	u.log.Info().
		Str("code", code).
		Str("email_key", logging.Redact(emailKey, false)).
		Int("used_count", newCount).
		Msg("coupon redeemed")
	return nil
}

func (u *couponUC) Create(ctx context.Context, code string, maxUses *int, description, actingAdmin string) (*model.Coupon, error) {
	defer logging.TraceDuration(u.log, "CouponUC.Create")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return nil, err
	}
	c, err := model.NewCoupon(code, maxUses, description)
	if err != nil {
		return nil, err
	}
	if existing, err := u.coupons.FindByCode(ctx, repository.NoTX, c.Code); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}
	if err := u.coupons.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	u.log.Info().Str("code", c.Code).Msg("coupon created")
	return c, nil
}

func (u *couponUC) SetActive(ctx context.Context, code string, active bool, actingAdmin string) error {
	defer logging.TraceDuration(u.log, "CouponUC.SetActive")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return err
	}
	return u.coupons.SetActive(ctx, repository.NoTX, model.NormalizeCouponCode(code), active)
}

func (u *couponUC) List(ctx context.Context, actingAdmin string) ([]*model.Coupon, error) {
	defer logging.TraceDuration(u.log, "CouponUC.List")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return nil, err
	}
	return u.coupons.List(ctx, repository.NoTX)
}

func (u *couponUC) Delete(ctx context.Context, code, actingAdmin string) error {
	defer logging.TraceDuration(u.log, "CouponUC.Delete")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return err
	}
	return u.coupons.Delete(ctx, repository.NoTX, model.NormalizeCouponCode(code))
}

func (u *couponUC) requireAdmin(ctx context.Context, actingAdmin string) error {
	ok, err := u.admins.IsAdmin(ctx, actingAdmin, nil)
	if err != nil {
		return fmt.Errorf("verify admin: %w", err)
	}
	if !ok {
		return domain.ErrNotAuthorized
	}
	return nil
}
