package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"event-access-platform/internal/config"
	"event-access-platform/internal/infra/i18n"
	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/metrics"
	redisinfra "event-access-platform/internal/infra/redis"
	"event-access-platform/internal/usecase"
)

// Server wires every HTTP surface: the public payment/coupon endpoints, the
// provider webhook receiver, and the JWT-guarded admin API.
type Server struct {
	accessUC     usecase.AccessUseCase
	couponUC     usecase.CouponUseCase
	paymentUC    usecase.PaymentUseCase
	adminUC      usecase.AdminUseCase
	statsUC      usecase.StatsUseCase
	conferenceUC usecase.ConferenceUseCase

	limiter       *redisinfra.RateLimiter
	translator    *i18n.Translator
	webhookSecret string
	adminAPIKey   string
	jwtSecret     []byte
	tokenTTL      time.Duration
	redeemLimit   int
	log           *zerolog.Logger
}

func NewServer(
	accessUC usecase.AccessUseCase,
	couponUC usecase.CouponUseCase,
	paymentUC usecase.PaymentUseCase,
	adminUC usecase.AdminUseCase,
	statsUC usecase.StatsUseCase,
	conferenceUC usecase.ConferenceUseCase,
	limiter *redisinfra.RateLimiter,
	translator *i18n.Translator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		accessUC:      accessUC,
		couponUC:      couponUC,
		paymentUC:     paymentUC,
		adminUC:       adminUC,
		statsUC:       statsUC,
		conferenceUC:  conferenceUC,
		limiter:       limiter,
		translator:    translator,
		webhookSecret: cfg.Stripe.WebhookSecret,
		adminAPIKey:   cfg.Admin.APIKey,
		jwtSecret:     []byte(cfg.Admin.JWTSecret),
		tokenTTL:      cfg.Admin.TokenTTL,
		redeemLimit:   cfg.RateLimit.RedeemPerMinute,
		log:           logger,
	}
}

// Router builds the chi router with the shared middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceID)
	r.Use(s.recoverer)
	r.Use(s.requestLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/payment/webhook", s.handleWebhook)
		r.Post("/payment/status", s.handlePaymentStatus)
		r.Post("/payment/checkout", s.handleCreateCheckout)
		r.Post("/payment/verify", s.handleVerifyAndGrant)
		r.Post("/coupon/redeem", s.handleRedeemCoupon)
		r.Get("/conferences", s.handleListConferences)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/admin/login", s.handleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.adminAuth)

			r.Get("/users", s.handleListUsers)
			r.Put("/users/{key}/access", s.handleSetAccess)
			r.Post("/users/access/bulk", s.handleSetAccessBulk)

			r.Get("/coupons", s.handleListCoupons)
			r.Post("/coupons", s.handleCreateCoupon)
			r.Put("/coupons/{code}", s.handleUpdateCoupon)
			r.Delete("/coupons/{code}", s.handleDeleteCoupon)

			r.Get("/conferences", s.handleAdminListConferences)
			r.Post("/conferences", s.handleCreateConference)
			r.Put("/conferences/{id}", s.handleUpdateConference)
			r.Delete("/conferences/{id}", s.handleDeleteConference)

			r.Get("/stats", s.handleStats)
		})
	})

	return r
}

// traceID stamps every request with a trace id carried through the logger
// context.
func (s *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.With(r.Context(), s.log)
		start := time.Now()
		ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(r.URL.Path, ww.status, float64(elapsed.Milliseconds()))
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", elapsed).
			Msg("http_request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
