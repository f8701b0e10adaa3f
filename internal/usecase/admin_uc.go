package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/metrics"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase verifies admin capability with a two-tier lookup: the
// dedicated admins registry first, the account role second.
type AdminUseCase interface {
	// IsAdmin returns true on the first tier that confirms. When both
	// stores are unreachable it fails open only from a non-expired cached
	// positive verdict supplied by the caller; with cached == nil the check
	// fails closed. Grant operations always pass nil.
	IsAdmin(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error)
	// Verdict returns the current cached verdict for the identity so the
	// caller layer can thread it through a later degraded check.
	Verdict(ctx context.Context, emailKey string) *model.CachedVerdict
	// UpsertEntry writes an admins-registry row (bootstrap/maintenance).
	UpsertEntry(ctx context.Context, e *model.AdminEntry) error
}

type adminUC struct {
	registry repository.AdminRegistryRepository
	accounts repository.AccountRepository
	verdicts repository.AdminVerdictCache
	cacheTTL time.Duration
	log      *zerolog.Logger
}

func NewAdminUseCase(registry repository.AdminRegistryRepository, accounts repository.AccountRepository, verdicts repository.AdminVerdictCache, cacheTTL time.Duration, logger *zerolog.Logger) *adminUC {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &adminUC{registry: registry, accounts: accounts, verdicts: verdicts, cacheTTL: cacheTTL, log: logger}
}

func (u *adminUC) IsAdmin(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
	defer logging.TraceDuration(u.log, "AdminUC.IsAdmin")()

	if emailKey == "" {
		return false, nil
	}

	// Tier 1: dedicated admins registry.
	entry, regErr := u.registry.FindByEmailKey(ctx, repository.NoTX, emailKey)
	if regErr == nil && entry != nil && entry.Active {
		u.cachePositive(ctx, emailKey)
		metrics.IncAdminCheck("registry")
		return true, nil
	}

	// Tier 2: account role.
	a, accErr := u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
	if accErr == nil && a != nil && a.HasAdminRole() {
		u.cachePositive(ctx, emailKey)
		metrics.IncAdminCheck("role")
		return true, nil
	}

	regMiss := regErr == nil || regErr == domain.ErrNotFound
	accMiss := accErr == nil || accErr == domain.ErrNotFound
	if regMiss && accMiss {
		// Both sources answered and neither confirmed.
		metrics.IncAdminCheck("denied")
		return false, nil
	}

	// Infrastructure failure. The read path may fall back to an explicit,
	// time-bounded prior positive; everything else fails closed.
	if cached != nil && cached.Usable(time.Now()) {
		u.log.Warn().
			Str("email_key", logging.Redact(emailKey, false)).
			Time("cache_expiry", cached.Expiry).
			Msg("admin check degraded to cached verdict")
		metrics.IncAdminCheck("cached")
		return true, nil
	}
	err := regErr
	if err == nil || err == domain.ErrNotFound {
		err = accErr
	}
	metrics.IncAdminCheck("unavailable")
	return false, err
}

func (u *adminUC) Verdict(ctx context.Context, emailKey string) *model.CachedVerdict {
	if u.verdicts == nil {
		return nil
	}
	v, err := u.verdicts.Get(ctx, emailKey)
	if err != nil || v == nil {
		return nil
	}
	return v
}

func (u *adminUC) UpsertEntry(ctx context.Context, e *model.AdminEntry) error {
	defer logging.TraceDuration(u.log, "AdminUC.UpsertEntry")()
	if e == nil || e.EmailKey == "" {
		return domain.ErrInvalidArgument
	}
	return u.registry.Save(ctx, repository.NoTX, e)
}

func (u *adminUC) cachePositive(ctx context.Context, emailKey string) {
	if u.verdicts == nil {
		return
	}
	v := model.CachedVerdict{Value: true, Expiry: time.Now().Add(u.cacheTTL)}
	if err := u.verdicts.Put(ctx, emailKey, v, u.cacheTTL); err != nil {
		u.log.Debug().Err(err).Msg("admin verdict cache write failed")
	}
}
