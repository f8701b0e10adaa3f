//go:build !integration

package web

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"event-access-platform/internal/config"
	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/adapter"
	"event-access-platform/internal/infra/i18n"
	"event-access-platform/internal/usecase"
)

// --- Stub use cases ---

type stubAccessUC struct {
	usecase.AccessUseCase

	HasAccessFunc func(ctx context.Context, emailKey string) (bool, error)
	StatusFunc    func(ctx context.Context, emailKey string) (*model.Account, error)
	SetAccessFunc func(ctx context.Context, emailKey string, grant bool, actingAdmin string) error
	BulkFunc      func(ctx context.Context, emailKeys []string, grant bool, actingAdmin string) []usecase.BulkResult
	ListFunc      func(ctx context.Context, offset, limit int, actingAdmin string) ([]*model.Account, error)
}

func (s *stubAccessUC) HasAccess(ctx context.Context, emailKey string) (bool, error) {
	if s.HasAccessFunc != nil {
		return s.HasAccessFunc(ctx, emailKey)
	}
	return false, nil
}

func (s *stubAccessUC) Status(ctx context.Context, emailKey string) (*model.Account, error) {
	if s.StatusFunc != nil {
		return s.StatusFunc(ctx, emailKey)
	}
	return nil, domain.ErrNotFound
}

func (s *stubAccessUC) SetAccess(ctx context.Context, emailKey string, grant bool, actingAdmin string) error {
	if s.SetAccessFunc != nil {
		return s.SetAccessFunc(ctx, emailKey, grant, actingAdmin)
	}
	return nil
}

func (s *stubAccessUC) SetAccessBulk(ctx context.Context, emailKeys []string, grant bool, actingAdmin string) []usecase.BulkResult {
	if s.BulkFunc != nil {
		return s.BulkFunc(ctx, emailKeys, grant, actingAdmin)
	}
	return nil
}

func (s *stubAccessUC) List(ctx context.Context, offset, limit int, actingAdmin string) ([]*model.Account, error) {
	if s.ListFunc != nil {
		return s.ListFunc(ctx, offset, limit, actingAdmin)
	}
	return nil, nil
}

type stubCouponUC struct {
	usecase.CouponUseCase

	RedeemFunc func(ctx context.Context, email, code string) error
	ListFunc   func(ctx context.Context, actingAdmin string) ([]*model.Coupon, error)
}

func (s *stubCouponUC) Redeem(ctx context.Context, email, code string) error {
	if s.RedeemFunc != nil {
		return s.RedeemFunc(ctx, email, code)
	}
	return nil
}

func (s *stubCouponUC) List(ctx context.Context, actingAdmin string) ([]*model.Coupon, error) {
	if s.ListFunc != nil {
		return s.ListFunc(ctx, actingAdmin)
	}
	return nil, nil
}

type stubPaymentUC struct {
	usecase.PaymentUseCase

	ConfirmFunc  func(ctx context.Context, ev *model.PaymentEvent) (*usecase.ConfirmResult, error)
	CheckoutFunc func(ctx context.Context, email, userID string) (*adapter.CheckoutSession, error)
	VerifyFunc   func(ctx context.Context, sessionID, email string) error
}

func (s *stubPaymentUC) ConfirmEvent(ctx context.Context, ev *model.PaymentEvent) (*usecase.ConfirmResult, error) {
	if s.ConfirmFunc != nil {
		return s.ConfirmFunc(ctx, ev)
	}
	return &usecase.ConfirmResult{Granted: true}, nil
}

func (s *stubPaymentUC) CreateCheckout(ctx context.Context, email, userID string) (*adapter.CheckoutSession, error) {
	if s.CheckoutFunc != nil {
		return s.CheckoutFunc(ctx, email, userID)
	}
	return &adapter.CheckoutSession{SessionID: "cs_1", URL: "https://pay.example/cs_1"}, nil
}

func (s *stubPaymentUC) VerifyAndGrant(ctx context.Context, sessionID, email string) error {
	if s.VerifyFunc != nil {
		return s.VerifyFunc(ctx, sessionID, email)
	}
	return nil
}

type stubAdminUC struct {
	usecase.AdminUseCase

	IsAdminFunc func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error)
	VerdictFunc func(ctx context.Context, emailKey string) *model.CachedVerdict
}

func (s *stubAdminUC) IsAdmin(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
	if s.IsAdminFunc != nil {
		return s.IsAdminFunc(ctx, emailKey, cached)
	}
	return false, nil
}

func (s *stubAdminUC) Verdict(ctx context.Context, emailKey string) *model.CachedVerdict {
	if s.VerdictFunc != nil {
		return s.VerdictFunc(ctx, emailKey)
	}
	return nil
}

type stubStatsUC struct {
	TotalsFunc func(ctx context.Context) (*usecase.Totals, error)
}

func (s *stubStatsUC) Totals(ctx context.Context) (*usecase.Totals, error) {
	if s.TotalsFunc != nil {
		return s.TotalsFunc(ctx)
	}
	return &usecase.Totals{}, nil
}

type stubConferenceUC struct {
	usecase.ConferenceUseCase

	ListForAccountFunc func(ctx context.Context, emailKey string) ([]*model.Conference, error)
}

func (s *stubConferenceUC) ListForAccount(ctx context.Context, emailKey string) ([]*model.Conference, error) {
	if s.ListForAccountFunc != nil {
		return s.ListForAccountFunc(ctx, emailKey)
	}
	return nil, nil
}

// --- Server fixture ---

type serverStubs struct {
	access     *stubAccessUC
	coupon     *stubCouponUC
	payment    *stubPaymentUC
	admin      *stubAdminUC
	stats      *stubStatsUC
	conference *stubConferenceUC
}

func newTestServer(t *testing.T) (*Server, *serverStubs) {
	t.Helper()

	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	stubs := &serverStubs{
		access:     &stubAccessUC{},
		coupon:     &stubCouponUC{},
		payment:    &stubPaymentUC{},
		admin:      &stubAdminUC{},
		stats:      &stubStatsUC{},
		conference: &stubConferenceUC{},
	}

	cfg := &config.Config{}
	cfg.Admin.APIKey = "test-api-key"
	cfg.Admin.JWTSecret = "test-jwt-secret"
	cfg.Admin.TokenTTL = time.Hour
	cfg.RateLimit.RedeemPerMinute = 100

	logger := zerolog.New(io.Discard)
	srv := NewServer(stubs.access, stubs.coupon, stubs.payment, stubs.admin, stubs.stats, stubs.conference, nil, translator, cfg, &logger)
	return srv, stubs
}
