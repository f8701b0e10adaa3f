package adapter

import "context"

// CheckoutSession is the provider-hosted payment page for one purchase.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// SessionStatus is the verified state of a checkout session, fetched from
// the provider during the verify-and-grant flow.
type SessionStatus struct {
	SessionID     string
	PaymentStatus string // "paid" | "unpaid" | "no_payment_required"
	CustomerEmail string
	PaymentRef    string
}

// PaymentGateway abstracts the payment provider. Implementations must bound
// every call with the supplied context.
type PaymentGateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, email, userID, successURL, cancelURL string) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}
