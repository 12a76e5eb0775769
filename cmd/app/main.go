package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inet-marketplace/internal/config"
	pg "inet-marketplace/internal/infra/db/postgres"
	"inet-marketplace/internal/infra/logging"
	"inet-marketplace/internal/infra/metrics"
	"inet-marketplace/internal/infra/notify"
	"inet-marketplace/internal/infra/payment"
	red "inet-marketplace/internal/infra/redis"
	"inet-marketplace/internal/infra/sched"
	"inet-marketplace/internal/infra/security"
	"inet-marketplace/internal/infra/web"
	"inet-marketplace/internal/usecase"
)

// set by the build pipeline via -ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Str("version", version).Str("commit", commit).Bool("dev", cfg.Runtime.Dev).Msg("starting")

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	var intentOpts []pg.IntentRepoOption
	if cfg.Security.CredentialsKey != "" {
		cipher, err := security.NewCipher(cfg.Security.CredentialsKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("credential cipher init failed")
		}
		intentOpts = append(intentOpts, pg.WithCredentialCipher(cipher))
	} else {
		logger.Warn().Msg("credentials_key not set, delivered credentials stored unencrypted")
	}
	intentRepo := pg.NewPurchaseIntentRepo(pool, intentOpts...)
	promoRepo := pg.NewPromoRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	serviceRepo := pg.NewServiceRepo(pool)
	videoRepo := pg.NewVideoRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Payment gateway ----
	gateway := payment.NewFastLipaGateway(
		cfg.Payment.FastLipa.BaseURL,
		cfg.Payment.FastLipa.APIKey,
		cfg.Payment.FastLipa.Timeout,
		logger,
	)

	// ---- Notifications ----
	var alerter notify.AdminAlerter
	if cfg.Notify.Telegram.Token != "" {
		alerter, err = notify.NewTelegramAlerter(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram alerter init failed")
		}
	} else {
		logger.Warn().Msg("telegram token not set, admin alerts disabled")
	}
	dispatcher := notify.NewDispatcher(notifRepo, alerter, cfg.Notify.FeedBuffer, logger)
	defer dispatcher.Close()

	// ---- Use cases ----
	promoUC := usecase.NewPromoUseCase(promoRepo, intentRepo, planRepo, logger)
	purchaseUC := usecase.NewPurchaseUseCase(
		intentRepo, planRepo, serviceRepo, videoRepo,
		promoUC, promoRepo, gateway, txManager, locker, dispatcher, logger,
	)
	reconcileUC := usecase.NewReconcileUseCase(intentRepo, promoRepo, gateway, txManager, dispatcher, logger)
	catalogUC := usecase.NewCatalogUseCase(planRepo, serviceRepo, videoRepo, intentRepo, logger)
	statsUC := usecase.NewStatsUseCase(intentRepo, logger)

	// ---- Background reconciler ----
	worker := sched.NewReconcileWorker(
		cfg.Scheduler.Interval,
		cfg.Scheduler.StaleAfter,
		cfg.Scheduler.BatchSize,
		reconcileUC,
		logger,
	)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("reconcile worker stopped")
		}
	}()

	// ---- HTTP ----
	server := web.NewServer(
		purchaseUC, reconcileUC, promoUC, catalogUC, statsUC, notifRepo,
		web.NewAuthManager(cfg.Web.JWTSecret),
		cfg.Web.AdminAPIKey,
		rateLimiter,
		logger,
	)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Int("port", cfg.Web.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("bye")
}
