package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	redisinfra "event-access-platform/internal/infra/redis"
	"event-access-platform/internal/retry"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondDomainError maps the error taxonomy onto HTTP statuses. Validation
// errors surface their localized message verbatim; infrastructure errors get
// the generic retry message and never leak internals.
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	msg := s.translator.UserMessage(err)
	switch {
	case errors.Is(err, domain.ErrInvalidCoupon),
		errors.Is(err, domain.ErrCouponExhausted),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrPaymentNotCompleted),
		errors.Is(err, domain.ErrEmailMismatch),
		errors.Is(err, domain.ErrInvalidArgument):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
	case errors.Is(err, domain.ErrNotAuthorized):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": msg})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": msg})
	default:
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	}
}

// withRetry retries transient store failures with bounded backoff. Validation
// errors pass through untouched and are never retried.
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, retry.DefaultPolicy, func(ctx context.Context) error {
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrProviderUnavailable):
			return err
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrInvalidCoupon),
			errors.Is(err, domain.ErrCouponExhausted),
			errors.Is(err, domain.ErrAlreadyPaid),
			errors.Is(err, domain.ErrPaymentNotCompleted),
			errors.Is(err, domain.ErrEmailMismatch),
			errors.Is(err, domain.ErrNotAuthorized),
			errors.Is(err, domain.ErrInvalidArgument):
			return retry.Stop(err)
		default:
			return err
		}
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// handlePaymentStatus reports the stored access state for one account.
func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Email is required"})
		return
	}

	var acct *model.Account
	err := withRetry(ctx, func(ctx context.Context) error {
		var err error
		acct, err = s.accessUC.Status(ctx, model.EmailKey(req.Email))
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		respondJSON(w, http.StatusOK, map[string]any{
			"hasPaid": false,
			"message": "User not found",
		})
		return
	}
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	var paymentDate *int64
	if acct.AccessType == model.AccessPaid && acct.GrantedAt != nil {
		ms := acct.GrantedAt.UnixMilli()
		paymentDate = &ms
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"hasPaid":       acct.AccessType == model.AccessPaid && acct.AccessGranted,
		"accessGranted": acct.AccessGranted,
		"accessType":    acct.AccessType,
		"paymentDate":   paymentDate,
	})
}

type checkoutRequest struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Email is required"})
		return
	}

	sess, err := s.paymentUC.CreateCheckout(ctx, req.Email, req.UserID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"sessionId": sess.SessionID,
		"url":       sess.URL,
	})
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
	Email     string `json:"email"`
}

func (s *Server) handleVerifyAndGrant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" || req.Email == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Session ID and email are required"})
		return
	}

	if err := s.paymentUC.VerifyAndGrant(ctx, req.SessionID, req.Email); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Payment verified and access granted",
	})
}

type redeemRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// handleRedeemCoupon guards the engine with a HasAccess pre-check: an
// account already holding access keeps its existing grant instead of
// consuming another coupon use.
func (s *Server) handleRedeemCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Email and code are required"})
		return
	}
	emailKey := model.EmailKey(req.Email)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, redisinfra.RedeemKey(emailKey), s.redeemLimit, time.Minute)
		if err == nil && !allowed {
			respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": s.translator.T("error.try_again")})
			return
		}
	}

	if granted, err := s.accessUC.HasAccess(ctx, emailKey); err == nil && granted {
		respondJSON(w, http.StatusOK, map[string]any{"granted": true, "alreadyGranted": true})
		return
	}

	if err := s.couponUC.Redeem(ctx, req.Email, req.Code); err != nil {
		s.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"granted": true})
}

// handleListConferences serves the gated catalog to accounts with access.
func (s *Server) handleListConferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Email is required"})
		return
	}

	confs, err := s.conferenceUC.ListForAccount(ctx, model.EmailKey(email))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	out := make([]conferenceDTO, 0, len(confs))
	for _, c := range confs {
		out = append(out, toConferenceDTO(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"conferences": out})
}
