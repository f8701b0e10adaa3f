//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/usecase"
)

func TestStatsTotals(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	accounts := newMemAccountRepo()
	coupons := newMemCouponRepo()
	records := newMemRecordRepo()

	paid, _ := model.NewAccount("paid@b.com", "")
	paid.GrantPaid("pi_1")
	accounts.put(paid)

	viaCoupon, _ := model.NewAccount("coupon@b.com", "")
	viaCoupon.GrantCoupon("TEAM")
	accounts.put(viaCoupon)

	fresh, _ := model.NewAccount("fresh@b.com", "")
	accounts.put(fresh)

	active, _ := model.NewCoupon("TEAM", nil, "")
	_ = coupons.Save(ctx, repository.NoTX, active)
	inactive, _ := model.NewCoupon("OLD", nil, "")
	inactive.Active = false
	_ = coupons.Save(ctx, repository.NoTX, inactive)

	_ = records.Append(ctx, repository.NoTX, &model.PaymentRecord{
		ID: "01A", EventID: "evt_1", EventType: model.EventPaymentIntentSucceeded,
		Email: "paid@b.com", Amount: 5000, Currency: "eur", CreatedAt: time.Now(),
	})
	_ = records.Append(ctx, repository.NoTX, &model.PaymentRecord{
		ID: "01B", EventID: "evt_2", EventType: model.EventChargeSucceeded,
		Email: "other@b.com", Amount: 2500, Currency: "eur", CreatedAt: time.Now(),
	})

	uc := usecase.NewStatsUseCase(accounts, coupons, records, testLogger)

	totals, err := uc.Totals(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if totals.Accounts != 3 {
		t.Errorf("expected 3 accounts, got %d", totals.Accounts)
	}
	if totals.ByAccessType[model.AccessPaid] != 1 || totals.ByAccessType[model.AccessCoupon] != 1 || totals.ByAccessType[model.AccessNone] != 1 {
		t.Errorf("unexpected access type breakdown: %+v", totals.ByAccessType)
	}
	if totals.ActiveCoupons != 1 {
		t.Errorf("expected 1 active coupon, got %d", totals.ActiveCoupons)
	}
	if totals.RevenueByCurrency["eur"] != 7500 {
		t.Errorf("expected 7500 eur, got %d", totals.RevenueByCurrency["eur"])
	}
}
