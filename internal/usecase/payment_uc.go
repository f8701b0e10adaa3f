package usecase

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/adapter"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// Noop reasons returned by ConfirmEvent. Both are terminal: the provider is
// acknowledged and no retry will change the outcome.
const (
	NoopNoEmail        = "no-email"
	NoopAlreadyGranted = "already-granted"
)

// ConfirmResult reports what a payment event did to the account state.
type ConfirmResult struct {
	Granted    bool
	NoopReason string
	EmailKey   string
}

// PaymentUseCase drives the paid access path: checkout initiation, webhook
// confirmation, and client-initiated session verification.
type PaymentUseCase interface {
	// ConfirmEvent applies one provider event. It is safe under
	// at-least-once delivery: a redelivered or differently-typed event for
	// an already-granted account is a no-op.
	ConfirmEvent(ctx context.Context, ev *model.PaymentEvent) (*ConfirmResult, error)
	// CreateCheckout opens a provider checkout session for the account,
	// rejecting accounts that already paid.
	CreateCheckout(ctx context.Context, email, userID string) (*adapter.CheckoutSession, error)
	// VerifyAndGrant fetches the session from the provider and grants paid
	// access when the session is paid and belongs to email.
	VerifyAndGrant(ctx context.Context, sessionID, email string) error
}

type paymentUC struct {
	accounts   repository.AccountRepository
	records    repository.PaymentRecordRepository
	gateway    adapter.PaymentGateway
	successURL string
	cancelURL  string
	log        *zerolog.Logger
}

func NewPaymentUseCase(accounts repository.AccountRepository, records repository.PaymentRecordRepository, gateway adapter.PaymentGateway, successURL, cancelURL string, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{
		accounts:   accounts,
		records:    records,
		gateway:    gateway,
		successURL: successURL,
		cancelURL:  cancelURL,
		log:        logger,
	}
}

func (u *paymentUC) ConfirmEvent(ctx context.Context, ev *model.PaymentEvent) (*ConfirmResult, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.ConfirmEvent")()

	if ev == nil || !ev.Type.Recognized() {
		return nil, domain.ErrInvalidArgument
	}

	email := ev.CustomerEmail()
	if email == "" {
		u.log.Warn().Str("event_id", ev.EventID).Str("type", string(ev.Type)).Msg("payment event carries no customer email")
		metrics.IncPaymentEvent(string(ev.Type), "no-email")
		return &ConfirmResult{NoopReason: NoopNoEmail}, nil
	}
	emailKey := model.EmailKey(email)

	a, err := u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
	switch {
	case err == domain.ErrNotFound:
		a, err = model.NewAccount(email, "")
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case a.AccessGranted:
		// Idempotent short-circuit: providers redeliver events and two
		// event types can describe the same logical purchase.
		metrics.IncPaymentEvent(string(ev.Type), "already-granted")
		return &ConfirmResult{NoopReason: NoopAlreadyGranted, EmailKey: emailKey}, nil
	}

	a.GrantPaid(ev.Reference())
	if err := u.accounts.Save(ctx, repository.NoTX, a); err != nil {
		return nil, err
	}

	amount, currency := ev.Amount()
	rec := &model.PaymentRecord{
		ID:        ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		EventID:   ev.EventID,
		EventType: ev.Type,
		Email:     email,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: time.Now(),
	}
	if err := u.records.Append(ctx, repository.NoTX, rec); err != nil {
		// Access is already granted; the audit row is append-only and the
		// provider redelivery plus the EventID constraint recover it.
		u.log.Error().Err(err).Str("event_id", ev.EventID).Msg("payment record not appended")
	}

	metrics.IncPaymentEvent(string(ev.Type), "granted")
	metrics.AddPaymentRevenue(currency, amount)
	u.log.Info().
		Str("event_id", ev.EventID).
		Str("type", string(ev.Type)).
		Str("email_key", logging.Redact(emailKey, false)).
		Msg("payment confirmed, access granted")
	return &ConfirmResult{Granted: true, EmailKey: emailKey}, nil
}

func (u *paymentUC) CreateCheckout(ctx context.Context, email, userID string) (*adapter.CheckoutSession, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.CreateCheckout")()

	emailKey := model.EmailKey(email)
	if emailKey == "" {
		return nil, domain.ErrInvalidArgument
	}

	a, err := u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}
	if a != nil && a.AccessGranted && a.AccessType == model.AccessPaid {
		return nil, domain.ErrAlreadyPaid
	}

	sess, err := u.gateway.CreateCheckoutSession(ctx, email, userID, u.successURL, u.cancelURL)
	if err != nil {
		return nil, err
	}
	metrics.IncCheckout("created")
	return sess, nil
}

func (u *paymentUC) VerifyAndGrant(ctx context.Context, sessionID, email string) error {
	defer logging.TraceDuration(u.log, "PaymentUC.VerifyAndGrant")()

	if sessionID == "" || email == "" {
		return domain.ErrInvalidArgument
	}

	st, err := u.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if st.PaymentStatus != "paid" {
		metrics.IncCheckout("not-completed")
		return domain.ErrPaymentNotCompleted
	}
	if !equalEmail(st.CustomerEmail, email) {
		metrics.IncCheckout("email-mismatch")
		return domain.ErrEmailMismatch
	}

	emailKey := model.EmailKey(email)
	a, err := u.accounts.FindByEmailKey(ctx, repository.NoTX, emailKey)
	if err == domain.ErrNotFound {
		a, err = model.NewAccount(email, "")
	}
	if err != nil {
		return err
	}
	if !a.AccessGranted {
		ref := st.PaymentRef
		if ref == "" {
			ref = sessionID
		}
		a.GrantPaid(ref)
		if err := u.accounts.Save(ctx, repository.NoTX, a); err != nil {
			return err
		}
	}

	metrics.IncCheckout("verified")
	u.log.Info().Str("session_id", sessionID).Str("email_key", logging.Redact(emailKey, false)).Msg("payment verified, access granted")
	return nil
}

func equalEmail(a, b string) bool {
	return model.EmailKey(a) == model.EmailKey(b)
}
