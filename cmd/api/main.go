package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/studiora/studiora-api/internal/config"
	"github.com/studiora/studiora-api/internal/domain/cart"
	"github.com/studiora/studiora-api/internal/domain/classpass"
	"github.com/studiora/studiora-api/internal/domain/enrollment"
	"github.com/studiora/studiora-api/internal/domain/profile"
	"github.com/studiora/studiora-api/internal/domain/program"
	"github.com/studiora/studiora-api/internal/domain/transaction"
	"github.com/studiora/studiora-api/internal/domain/webhook"
	"github.com/studiora/studiora-api/internal/middleware"
	"github.com/studiora/studiora-api/internal/pkg/checkout"
	"github.com/studiora/studiora-api/internal/pkg/database"
	"github.com/studiora/studiora-api/internal/pkg/logger"
	"github.com/studiora/studiora-api/internal/pkg/notify"
	pkgresponse "github.com/studiora/studiora-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Studiora reconciliation API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	// ---------- Repositories ----------
	transactionRepo := transaction.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	programRepo := program.NewRepository(db)
	enrollmentRepo := enrollment.NewRepository(db)
	cartRepo := cart.NewRepository(db)
	classPassRepo := classpass.NewRepository(db)

	// ---------- Services ----------
	transactionUpdater := transaction.NewUpdater(transactionRepo)
	profileResolver := profile.NewResolver(profileRepo)
	programResolver := program.NewResolver(programRepo, enrollmentRepo)
	enrollmentReconciler := enrollment.NewReconciler(enrollmentRepo, programResolver)
	creditGranter := classpass.NewGranter(classPassRepo)

	// ---------- Outbound clients ----------
	var detailFetcher webhook.DetailFetcher
	if cfg.CheckoutBaseURL != "" && cfg.CheckoutAPIKey != "" {
		detailFetcher = checkout.NewClient(cfg.CheckoutBaseURL, cfg.CheckoutAPIKey, time.Duration(cfg.CheckoutTimeoutSeconds)*time.Second)
	} else {
		log.Warn().Msg("Checkout API not configured, running without charge enrichment")
	}

	var notifier webhook.Notifier
	if cfg.NotifyEnabled && cfg.NotifyBaseURL != "" {
		notifier = notify.NewClient(cfg.NotifyBaseURL, cfg.NotifyToken, time.Duration(cfg.NotifyTimeoutSeconds)*time.Second)
	} else {
		log.Warn().Msg("Notification dispatch disabled")
	}

	orchestrator := webhook.NewOrchestrator(
		transactionUpdater,
		profileResolver,
		enrollmentReconciler,
		creditGranter,
		cartRepo,
		detailFetcher,
		notifier,
	)

	// ---------- Handlers ----------
	webhookHandler := webhook.NewHandler(orchestrator, webhook.NewDeduper(redis), cfg.CheckoutWebhookSecret)
	transactionHandler := transaction.NewHandler(transactionUpdater)
	enrollmentHandler := enrollment.NewHandler(enrollmentReconciler)
	classPassHandler := classpass.NewHandler(creditGranter)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RequireAdmin()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/webhooks", webhookHandler.Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/transactions", transactionHandler.Routes(authMiddleware, adminOnly))
			r.Mount("/programs", enrollmentHandler.Routes(authMiddleware, adminOnly))
			r.Mount("/users", classPassHandler.Routes(authMiddleware, adminOnly))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
