package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-access-platform/internal/config"
	pg "event-access-platform/internal/infra/db/postgres"
	"event-access-platform/internal/infra/i18n"
	"event-access-platform/internal/infra/logging"
	"event-access-platform/internal/infra/metrics"
	payAdapter "event-access-platform/internal/infra/payment"
	red "event-access-platform/internal/infra/redis"
	"event-access-platform/internal/infra/web"
	"event-access-platform/internal/usecase"

	"event-access-platform/internal/domain/model"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed webhook checks, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	verdictCache := red.NewAdminVerdictCache(redisClient)

	// ---- i18n ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Server.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Repositories ----
	accountRepo := pg.NewAccountRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	recordRepo := pg.NewPaymentRecordRepo(pool)
	adminRepo := pg.NewAdminRegistryRepo(pool)
	conferenceRepo := pg.NewConferenceRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	gateway, err := payAdapter.NewStripeGateway(cfg.Stripe, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("stripe gateway")
	}

	// ---- Use cases ----
	adminUC := usecase.NewAdminUseCase(adminRepo, accountRepo, verdictCache, cfg.Admin.VerdictTTL, logger)
	accessUC := usecase.NewAccessUseCase(accountRepo, adminUC, txManager, logger)
	couponUC := usecase.NewCouponUseCase(couponRepo, accountRepo, adminUC, logger)
	paymentUC := usecase.NewPaymentUseCase(accountRepo, recordRepo, gateway, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL, logger)
	statsUC := usecase.NewStatsUseCase(accountRepo, couponRepo, recordRepo, logger)
	conferenceUC := usecase.NewConferenceUseCase(conferenceRepo, accessUC, adminUC, logger)

	// ---- Admin bootstrap ----
	if cfg.Admin.BootstrapUser != "" {
		entry := &model.AdminEntry{
			EmailKey:  model.EmailKey(cfg.Admin.BootstrapUser),
			Active:    true,
			Role:      model.RoleSuperAdmin,
			CreatedAt: time.Now().UTC(),
		}
		if err := adminUC.UpsertEntry(ctx, entry); err != nil {
			logger.Warn().Err(err).Msg("admin bootstrap failed, continuing")
		}
	}

	// ---- HTTP server ----
	srv := web.NewServer(accessUC, couponUC, paymentUC, adminUC, statsUC, conferenceUC, rateLimiter, translator, cfg, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
