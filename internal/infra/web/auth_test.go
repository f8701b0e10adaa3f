//go:build !integration

package web

import (
	"context"
	"net/http"
	"testing"
	"time"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/usecase"
)

func loginToken(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/admin/login", map[string]string{"api_key": "test-api-key", "email": "boss@b.com"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("no token in login response")
	}
	return token
}

func TestAdminLogin(t *testing.T) {
	t.Run("should issue a token for a valid key and admin email", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			if emailKey != "boss@b_com" {
				t.Errorf("login must normalize the email, got %q", emailKey)
			}
			if cached != nil {
				t.Error("login is a grant-adjacent check and must not use a cached verdict")
			}
			return true, nil
		}

		_ = loginToken(t, srv)
	})

	t.Run("should refuse a wrong api key", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			return true, nil
		}

		rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/admin/login", map[string]string{"api_key": "wrong", "email": "boss@b.com"}, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("should refuse a non-admin email", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/admin/login", map[string]string{"api_key": "test-api-key", "email": "pleb@b.com"}, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("should answer 503 when the check is unavailable", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			return false, domain.ErrStoreUnavailable
		}

		rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/admin/login", map[string]string{"api_key": "test-api-key", "email": "boss@b.com"}, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	t.Run("should pass the acting admin identity to the handler", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			return true, nil
		}
		var sawActor string
		stubs.access.ListFunc = func(ctx context.Context, offset, limit int, actingAdmin string) ([]*model.Account, error) {
			sawActor = actingAdmin
			return nil, nil
		}

		token := loginToken(t, srv)
		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/users", nil, map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if sawActor != "boss@b_com" {
			t.Errorf("acting admin not threaded through, got %q", sawActor)
		}
	})

	t.Run("should refuse a request without a token", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/users", nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("should refuse a garbage token", func(t *testing.T) {
		srv, _ := newTestServer(t)

		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/users", nil, map[string]string{"Authorization": "Bearer not.a.jwt"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("should re-check admin capability on every request", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		admin := true
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			return admin, nil
		}

		token := loginToken(t, srv)
		// Capability revoked after login; the token alone must not suffice.
		admin = false
		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/users", nil, map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403 after revocation, got %d", rec.Code)
		}
	})

	t.Run("should let a cached verdict carry the read path through an outage", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		healthy := true
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			if healthy {
				return true, nil
			}
			if cached != nil && cached.Usable(time.Now()) {
				return true, nil
			}
			return false, domain.ErrStoreUnavailable
		}
		stubs.admin.VerdictFunc = func(ctx context.Context, emailKey string) *model.CachedVerdict {
			return &model.CachedVerdict{Value: true, Expiry: time.Now().Add(time.Minute)}
		}

		token := loginToken(t, srv)
		healthy = false
		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/users", nil, map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusOK {
			t.Errorf("expected the cached verdict to carry the request, got %d", rec.Code)
		}
	})

	t.Run("should answer 503 during an outage without a cached verdict", func(t *testing.T) {
		srv, stubs := newTestServer(t)
		healthy := true
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			if healthy {
				return true, nil
			}
			return false, domain.ErrStoreUnavailable
		}

		token := loginToken(t, srv)
		healthy = false
		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/users", nil, map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestAdminEndpoints(t *testing.T) {
	authed := func(t *testing.T) (*Server, *serverStubs, map[string]string) {
		srv, stubs := newTestServer(t)
		stubs.admin.IsAdminFunc = func(ctx context.Context, emailKey string, cached *model.CachedVerdict) (bool, error) {
			return true, nil
		}
		token := loginToken(t, srv)
		return srv, stubs, map[string]string{"Authorization": "Bearer " + token}
	}

	t.Run("should change access through the engine", func(t *testing.T) {
		srv, stubs, headers := authed(t)
		var gotKey string
		var gotGrant bool
		stubs.access.SetAccessFunc = func(ctx context.Context, emailKey string, grant bool, actingAdmin string) error {
			gotKey, gotGrant = emailKey, grant
			return nil
		}

		rec := doJSON(t, srv.Router(), http.MethodPut, "/api/v1/users/a@b_com/access", map[string]bool{"grant": true}, headers)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotKey != "a@b_com" || !gotGrant {
			t.Errorf("unexpected call: key=%q grant=%v", gotKey, gotGrant)
		}
	})

	t.Run("should report per-account outcomes for a bulk change", func(t *testing.T) {
		srv, stubs, headers := authed(t)
		stubs.access.BulkFunc = func(ctx context.Context, emailKeys []string, grant bool, actingAdmin string) []usecase.BulkResult {
			return []usecase.BulkResult{
				{EmailKey: "a@b_com"},
				{EmailKey: "ghost@b_com", Err: domain.ErrNotFound},
			}
		}

		rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/users/access/bulk", map[string]any{"emailKeys": []string{"a@b_com", "ghost@b_com"}, "grant": true}, headers)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["failed"] != float64(1) {
			t.Errorf("expected one failure, got %v", body["failed"])
		}
	})

	t.Run("should answer 404 when changing access for an unknown account", func(t *testing.T) {
		srv, stubs, headers := authed(t)
		stubs.access.SetAccessFunc = func(ctx context.Context, emailKey string, grant bool, actingAdmin string) error {
			return domain.ErrNotFound
		}

		rec := doJSON(t, srv.Router(), http.MethodPut, "/api/v1/users/ghost@b_com/access", map[string]bool{"grant": true}, headers)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("should serve the stats snapshot", func(t *testing.T) {
		srv, stubs, headers := authed(t)
		stubs.stats.TotalsFunc = func(ctx context.Context) (*usecase.Totals, error) {
			return &usecase.Totals{
				Accounts:          3,
				ByAccessType:      map[model.AccessType]int{model.AccessPaid: 2, model.AccessCoupon: 1},
				ActiveCoupons:     1,
				RevenueByCurrency: map[string]int64{"eur": 7500},
			}, nil
		}

		rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/stats", nil, headers)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["accounts"] != float64(3) {
			t.Errorf("unexpected body: %v", body)
		}
	})
}
