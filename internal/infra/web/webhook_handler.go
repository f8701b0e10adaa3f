package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/payment"
)

const webhookBodyLimit = 1 << 16

// handleWebhook receives provider events. Once an event parses, the response
// is always 200 so the provider does not keep retrying: processing failures
// are logged and picked up out of band. Only an unparseable body earns a 400.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	l := logging.With(ctx, s.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Unable to read payload"})
		return
	}

	ev, err := payment.ParseWebhook(body, r.Header.Get("Stripe-Signature"), s.webhookSecret)
	if err != nil {
		if errors.Is(err, payment.ErrUnparseablePayload) {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
			return
		}
		l.Warn().Err(err).Msg("webhook rejected")
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
		return
	}

	pe, ok := payment.ToPaymentEvent(ev)
	if !ok {
		l.Debug().Str("type", string(ev.Type)).Msg("ignoring unhandled event type")
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	res, err := s.paymentUC.ConfirmEvent(ctx, pe)
	if err != nil {
		l.Error().Err(err).Str("event_id", pe.EventID).Msg("event confirmation failed")
	} else if res.NoopReason != "" {
		l.Info().Str("event_id", pe.EventID).Str("reason", res.NoopReason).Msg("event was a no-op")
	}
	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
