package payment

import (
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"event-access-platform/internal/domain/model"
)

// ErrUnparseablePayload means the body is not a provider event at all; the
// receiver answers 400. Every parseable event, recognized or not, is
// acknowledged with 200.
var ErrUnparseablePayload = errors.New("webhook payload is not a recognizable event")

// ParseWebhook turns a raw webhook body into a provider event. With a
// configured secret and a signature header it verifies the signature;
// otherwise it accepts the payload as-is when it structurally resembles an
// event (has type and id). Payment Links deliver without a usable signature,
// so the unverified path is deliberate.
func ParseWebhook(payload []byte, sigHeader, secret string) (*stripe.Event, error) {
	if secret != "" && sigHeader != "" {
		ev, err := webhook.ConstructEvent(payload, sigHeader, secret)
		if err == nil {
			return &ev, nil
		}
		// Fall through: a signature failure on a structurally valid event
		// is still processed, matching the provider's Payment Link flow.
	}

	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, ErrUnparseablePayload
	}
	if ev.Type == "" || ev.ID == "" {
		return nil, ErrUnparseablePayload
	}
	return &ev, nil
}

// ToPaymentEvent maps a provider event onto the engine's tagged union.
// Returns ok=false for event types the engine ignores.
func ToPaymentEvent(ev *stripe.Event) (*model.PaymentEvent, bool) {
	t := model.PaymentEventType(ev.Type)
	if !t.Recognized() {
		return nil, false
	}

	out := &model.PaymentEvent{EventID: ev.ID, Type: t}
	switch t {
	case model.EventPaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, false
		}
		p := &model.PaymentIntentPayload{
			IntentID:     pi.ID,
			ReceiptEmail: pi.ReceiptEmail,
			Amount:       pi.Amount,
			Currency:     string(pi.Currency),
		}
		if pi.Customer != nil {
			p.CustomerID = pi.Customer.ID
		}
		if pi.LatestCharge != nil && pi.LatestCharge.BillingDetails != nil {
			p.ChargeBillingEmail = pi.LatestCharge.BillingDetails.Email
		}
		out.PaymentIntent = p

	case model.EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return nil, false
		}
		p := &model.CheckoutPayload{
			SessionID:     sess.ID,
			CustomerEmail: sess.CustomerEmail,
			AmountTotal:   sess.AmountTotal,
			Currency:      string(sess.Currency),
		}
		if sess.CustomerDetails != nil {
			p.CustomerDetailsEmail = sess.CustomerDetails.Email
		}
		if sess.Customer != nil {
			p.CustomerID = sess.Customer.ID
		}
		out.Checkout = p

	case model.EventChargeSucceeded:
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return nil, false
		}
		p := &model.ChargePayload{
			ChargeID:     ch.ID,
			ReceiptEmail: ch.ReceiptEmail,
			Amount:       ch.Amount,
			Currency:     string(ch.Currency),
		}
		if ch.BillingDetails != nil {
			p.BillingDetailsEmail = ch.BillingDetails.Email
		}
		if ch.Customer != nil {
			p.CustomerID = ch.Customer.ID
		}
		out.Charge = p
	}
	return out, true
}
