package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/infra/logging"
)

type ctxKey string

const ctxActingAdmin ctxKey = "acting_admin"

// actingAdmin returns the verified admin email key the auth middleware
// stored on the request context.
func actingAdmin(ctx context.Context) string {
	if v := ctx.Value(ctxActingAdmin); v != nil {
		return v.(string)
	}
	return ""
}

type adminLoginRequest struct {
	APIKey string `json:"api_key"`
	Email  string `json:"email"`
}

// handleAdminLogin exchanges the shared API key plus an admin email for a
// short-lived bearer token. The email must pass the two-tier admin check.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if s.adminAPIKey == "" || req.APIKey != s.adminAPIKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	emailKey := model.EmailKey(req.Email)
	ok, err := s.adminUC.IsAdmin(ctx, emailKey, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("admin login check failed")
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   emailKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": claims.ExpiresAt.Unix(),
	})
}

// adminAuth verifies the bearer token and re-checks admin capability on
// every request. The cached verdict from a prior positive check is threaded
// in explicitly, so the check can survive a registry outage without ever
// hiding that it did.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		claims := token.Claims.(*jwt.RegisteredClaims)
		emailKey := claims.Subject

		cached := s.adminUC.Verdict(r.Context(), emailKey)
		ok, err := s.adminUC.IsAdmin(r.Context(), emailKey, cached)
		if err != nil {
			s.log.Warn().Err(err).Str("email_key", logging.Redact(emailKey, false)).Msg("admin re-check unavailable")
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		if !ok {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), ctxActingAdmin, emailKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
