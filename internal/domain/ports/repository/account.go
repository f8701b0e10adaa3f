package repository

import (
	"context"
	"time"

	"event-access-platform/internal/domain/model"
)

// AccountRepository is the port over the account document store, keyed by
// normalized email. Save upserts the whole record; the access-grant engine
// owns the write path to the access fields.
type AccountRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Account) error
	FindByEmailKey(ctx context.Context, tx Tx, emailKey string) (*model.Account, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Account, error)
	CountAccounts(ctx context.Context, tx Tx) (int, error)
	CountByAccessType(ctx context.Context, tx Tx) (map[model.AccessType]int, error)
	Delete(ctx context.Context, tx Tx, emailKey string) error
}

// AdminRegistryRepository is the port over the dedicated admins registry.
type AdminRegistryRepository interface {
	FindByEmailKey(ctx context.Context, tx Tx, emailKey string) (*model.AdminEntry, error)
	Save(ctx context.Context, tx Tx, e *model.AdminEntry) error
}

// AdminVerdictCache stores time-bounded admin-check results so the check can
// fail open from an explicit cached positive when the registry is down.
type AdminVerdictCache interface {
	Get(ctx context.Context, emailKey string) (*model.CachedVerdict, error)
	Put(ctx context.Context, emailKey string, verdict model.CachedVerdict, ttl time.Duration) error
}
