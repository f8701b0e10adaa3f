package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Totals is the admin dashboard snapshot.
type Totals struct {
	Accounts          int
	ByAccessType      map[model.AccessType]int
	ActiveCoupons     int
	RevenueByCurrency map[string]int64
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*Totals, error)
}

type statsUC struct {
	accounts repository.AccountRepository
	coupons  repository.CouponRepository
	records  repository.PaymentRecordRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(accounts repository.AccountRepository, coupons repository.CouponRepository, records repository.PaymentRecordRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{accounts: accounts, coupons: coupons, records: records, log: logger}
}

func (u *statsUC) Totals(ctx context.Context) (*Totals, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Totals")()

	n, err := u.accounts.CountAccounts(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	byType, err := u.accounts.CountByAccessType(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	activeCoupons, err := u.coupons.CountActive(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	revenue, err := u.records.SumByCurrency(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &Totals{
		Accounts:          n,
		ByAccessType:      byType,
		ActiveCoupons:     activeCoupons,
		RevenueByCurrency: revenue,
	}, nil
}
