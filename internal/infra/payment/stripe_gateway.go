package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"event-access-platform/internal/config"
	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway implements the payment provider port on Stripe Checkout.
type StripeGateway struct {
	priceID string
	log     *zerolog.Logger
}

func NewStripeGateway(cfg config.StripeConfig, logger *zerolog.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, domain.ErrInvalidArgument
	}
	stripe.Key = cfg.SecretKey
	return &StripeGateway{priceID: cfg.PriceID, log: logger}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, email, userID, successURL, cancelURL string) (*adapter.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(g.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id": userID,
			"email":   email,
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, g.wrapErr("create checkout session", err)
	}
	return &adapter.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, g.wrapErr("retrieve session", err)
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	ref := ""
	if sess.PaymentIntent != nil {
		ref = sess.PaymentIntent.ID
	}
	return &adapter.SessionStatus{
		SessionID:     sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: email,
		PaymentRef:    ref,
	}, nil
}

func (g *StripeGateway) wrapErr(op string, err error) error {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		g.log.Error().
			Str("op", op).
			Str("stripe_code", string(sErr.Code)).
			Str("stripe_type", string(sErr.Type)).
			Msg("stripe api error")
	} else {
		g.log.Error().Err(err).Str("op", op).Msg("stripe call failed")
	}
	return fmt.Errorf("%s: %w", op, domain.ErrProviderUnavailable)
}
