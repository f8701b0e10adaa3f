package usecase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/metrics"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

// BulkResult is the outcome of one account inside a bulk access change.
type BulkResult struct {
	EmailKey string
	Err      error
}

// AccessUseCase owns the write path to the account access fields and is the
// single source of truth for content gating.
type AccessUseCase interface {
	// HasAccess is a pure read of the stored gate. No other heuristic may
	// substitute for it.
	HasAccess(ctx context.Context, emailKey string) (bool, error)
	// Status returns the stored account, or domain.ErrNotFound.
	Status(ctx context.Context, emailKey string) (*model.Account, error)
	// SetAccess grants or revokes access on behalf of a verified admin.
	// Granting never overwrites a paid or coupon provenance; revoking
	// preserves AccessType as history and stamps RevokedAt.
	SetAccess(ctx context.Context, emailKey string, grant bool, actingAdmin string) error
	// SetAccessBulk applies SetAccess independently per account. A failure
	// on one account never blocks or rolls back the others.
	SetAccessBulk(ctx context.Context, emailKeys []string, grant bool, actingAdmin string) []BulkResult
	// List pages through stored accounts for the admin dashboard.
	List(ctx context.Context, offset, limit int, actingAdmin string) ([]*model.Account, error)
}

type accessUC struct {
	accounts repository.AccountRepository
	admins   AdminUseCase
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewAccessUseCase(accounts repository.AccountRepository, admins AdminUseCase, tm repository.TransactionManager, logger *zerolog.Logger) *accessUC {
	return &accessUC{accounts: accounts, admins: admins, tm: tm, log: logger}
}

func (u *accessUC) HasAccess(ctx context.Context, emailKey string) (bool, error) {
	defer logging.TraceDuration(u.log, "AccessUC.HasAccess")()

	a, err := u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return a.AccessGranted, nil
}

func (u *accessUC) Status(ctx context.Context, emailKey string) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccessUC.Status")()
	return u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
}

func (u *accessUC) SetAccess(ctx context.Context, emailKey string, grant bool, actingAdmin string) error {
	defer logging.TraceDuration(u.log, "AccessUC.SetAccess")()

	ok, err := u.admins.IsAdmin(ctx, actingAdmin, nil)
	if err != nil {
		// Grants fail closed on infrastructure errors.
		return fmt.Errorf("verify admin: %w", err)
	}
	if !ok {
		return domain.ErrNotAuthorized
	}
	return u.setAccess(ctx, emailKey, grant, actingAdmin)
}

// setAccess runs the read-modify-write inside a transaction so a racing
// grant on the same account cannot be lost.
func (u *accessUC) setAccess(ctx context.Context, emailKey string, grant bool, actingAdmin string) error {
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.accounts.FindByEmailKey(ctx, tx, emailKey)
		if err != nil {
			return err
		}
		if grant {
			a.GrantAdmin()
		} else {
			a.Revoke()
		}
		return u.accounts.Save(ctx, tx, a)
	})
	if err != nil {
		return err
	}

	action := "revoke"
	if grant {
		action = "grant"
	}
	metrics.IncAccessChange(action, "admin")
	u.log.Info().
		Str("email_key", logging.Redact(emailKey, false)).
		Str("acting_admin", logging.Redact(actingAdmin, false)).
		Bool("grant", grant).
		Msg("access changed by admin")
	return nil
}

func (u *accessUC) List(ctx context.Context, offset, limit int, actingAdmin string) ([]*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccessUC.List")()

	ok, err := u.admins.IsAdmin(ctx, actingAdmin, nil)
	if err != nil {
		return nil, fmt.Errorf("verify admin: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotAuthorized
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return u.accounts.List(ctx, repository.NoTX, offset, limit)
}

func (u *accessUC) SetAccessBulk(ctx context.Context, emailKeys []string, grant bool, actingAdmin string) []BulkResult {
	defer logging.TraceDuration(u.log, "AccessUC.SetAccessBulk")()

	results := make([]BulkResult, 0, len(emailKeys))

	ok, err := u.admins.IsAdmin(ctx, actingAdmin, nil)
	if err == nil && !ok {
		err = domain.ErrNotAuthorized
	}
	if err != nil {
		for _, k := range emailKeys {
			results = append(results, BulkResult{EmailKey: k, Err: err})
		}
		return results
	}

	for _, k := range emailKeys {
		e := u.setAccess(ctx, k, grant, actingAdmin)
		if e != nil {
			u.log.Warn().Err(e).Str("email_key", logging.Redact(k, false)).Msg("bulk access change failed for account")
		}
		results = append(results, BulkResult{EmailKey: k, Err: e})
	}
	return results
}
