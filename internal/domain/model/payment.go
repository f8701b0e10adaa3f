package model

import (
	"time"
)

// PaymentEventType enumerates the provider notifications that grant access.
// All other event types are acknowledged and ignored.
type PaymentEventType string

const (
	EventPaymentIntentSucceeded PaymentEventType = "payment_intent.succeeded"
	EventCheckoutCompleted      PaymentEventType = "checkout.session.completed"
	EventChargeSucceeded        PaymentEventType = "charge.succeeded"
)

// Recognized reports whether the event type participates in access grants.
func (t PaymentEventType) Recognized() bool {
	switch t {
	case EventPaymentIntentSucceeded, EventCheckoutCompleted, EventChargeSucceeded:
		return true
	}
	return false
}

// PaymentEvent is the tagged union over the three recognized provider event
// shapes. Exactly one of the variant fields is non-nil, matching Type. The
// provider delivers at least once; processing must tolerate redelivery.
type PaymentEvent struct {
	EventID string
	Type    PaymentEventType

	PaymentIntent *PaymentIntentPayload
	Checkout      *CheckoutPayload
	Charge        *ChargePayload
}

// PaymentIntentPayload carries the fields read from payment_intent.succeeded.
type PaymentIntentPayload struct {
	IntentID            string
	ReceiptEmail        string
	ChargeBillingEmail  string // billing_details email of the first charge
	Amount              int64
	Currency            string
	CustomerID          string
}

// CheckoutPayload carries the fields read from checkout.session.completed.
type CheckoutPayload struct {
	SessionID            string
	CustomerEmail        string
	CustomerDetailsEmail string
	AmountTotal          int64
	Currency             string
	CustomerID           string
}

// ChargePayload carries the fields read from charge.succeeded.
type ChargePayload struct {
	ChargeID            string
	BillingDetailsEmail string
	ReceiptEmail        string
	Amount              int64
	Currency            string
	CustomerID          string
}

// CustomerEmail extracts the customer email with the per-variant priority the
// provider documents: receipt email before charge billing details for payment
// intents, session customer email before customer details for checkouts, and
// billing details before receipt email for charges. Empty when none present.
func (e *PaymentEvent) CustomerEmail() string {
	switch e.Type {
	case EventPaymentIntentSucceeded:
		if e.PaymentIntent == nil {
			return ""
		}
		if e.PaymentIntent.ReceiptEmail != "" {
			return e.PaymentIntent.ReceiptEmail
		}
		return e.PaymentIntent.ChargeBillingEmail
	case EventCheckoutCompleted:
		if e.Checkout == nil {
			return ""
		}
		if e.Checkout.CustomerEmail != "" {
			return e.Checkout.CustomerEmail
		}
		return e.Checkout.CustomerDetailsEmail
	case EventChargeSucceeded:
		if e.Charge == nil {
			return ""
		}
		if e.Charge.BillingDetailsEmail != "" {
			return e.Charge.BillingDetailsEmail
		}
		return e.Charge.ReceiptEmail
	}
	return ""
}

// Reference returns the provider object id recorded as the account's
// payment reference (intent, session, or charge id).
func (e *PaymentEvent) Reference() string {
	switch e.Type {
	case EventPaymentIntentSucceeded:
		if e.PaymentIntent != nil {
			return e.PaymentIntent.IntentID
		}
	case EventCheckoutCompleted:
		if e.Checkout != nil {
			return e.Checkout.SessionID
		}
	case EventChargeSucceeded:
		if e.Charge != nil {
			return e.Charge.ChargeID
		}
	}
	return ""
}

// Amount returns the monetary amount carried by the event, in the smallest
// currency unit.
func (e *PaymentEvent) Amount() (int64, string) {
	switch e.Type {
	case EventPaymentIntentSucceeded:
		if e.PaymentIntent != nil {
			return e.PaymentIntent.Amount, e.PaymentIntent.Currency
		}
	case EventCheckoutCompleted:
		if e.Checkout != nil {
			return e.Checkout.AmountTotal, e.Checkout.Currency
		}
	case EventChargeSucceeded:
		if e.Charge != nil {
			return e.Charge.Amount, e.Charge.Currency
		}
	}
	return 0, ""
}

// PaymentRecord is one append-only audit entry per processed payment event.
// It is never read back for access decisions. The unique EventID makes the
// append idempotent under provider redelivery.
type PaymentRecord struct {
	ID        string // ULID
	EventID   string
	EventType PaymentEventType
	Email     string
	Amount    int64
	Currency  string
	CreatedAt time.Time
}
