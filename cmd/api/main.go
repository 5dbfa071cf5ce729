package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/docsmile-suite/cmd/mainconfig"
	"github.com/wolfman30/docsmile-suite/internal/api/router"
	"github.com/wolfman30/docsmile-suite/internal/app/bootstrap"
	"github.com/wolfman30/docsmile-suite/internal/audit"
	appconfig "github.com/wolfman30/docsmile-suite/internal/config"
	"github.com/wolfman30/docsmile-suite/internal/events"
	"github.com/wolfman30/docsmile-suite/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/docsmile-suite/internal/http/middleware"
	"github.com/wolfman30/docsmile-suite/internal/notify"
	"github.com/wolfman30/docsmile-suite/internal/observability/metrics"
	"github.com/wolfman30/docsmile-suite/internal/receipts"
	"github.com/wolfman30/docsmile-suite/internal/session"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting docsmile-suite API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"data_mode", cfg.DataMode,
	)

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	clock, err := bootstrap.BuildClock(cfg)
	if err != nil {
		logger.Error("invalid clinic timezone", "error", err, "zone", cfg.ClinicTimezone)
		os.Exit(1)
	}

	metricsHandler, consoleMetrics := setupMetrics()

	backend, err := bootstrap.BuildBackend(cfg, clock, consoleMetrics, logger)
	if err != nil {
		logger.Error("failed to build backend", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(appCtx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	sessions, err := session.NewManager(
		bootstrap.BuildSessionStore(redisClient, logger),
		sessionSecret(cfg, logger),
		cfg.SessionTTL,
		logger,
	)
	if err != nil {
		logger.Error("failed to build session manager", "error", err)
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(appCtx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Mutation events go through the outbox when Postgres is configured.
	var recorder *events.Recorder
	if pool := connectPostgresPool(appCtx, cfg.DatabaseURL, logger); pool != nil {
		defer pool.Close()
		outbox := events.NewOutboxStore(pool)
		recorder = events.NewRecorder(outbox, logger)
		if publisher := bootstrap.BuildEventPublisher(awsCfg, cfg); publisher != nil {
			deliverer := events.NewDeliverer(outbox, publisher, logger).
				WithBatchSize(int32(cfg.OutboxBatchSize)).
				WithInterval(cfg.OutboxInterval).
				WithObserver(consoleMetrics)
			go deliverer.Start(appCtx)
			logger.Info("outbox delivery enabled", "queue_url", cfg.EventsQueueURL)
		} else {
			logger.Warn("EVENTS_QUEUE_URL not set; events stay in the outbox")
		}
	}

	var trail *audit.Trail
	if auditDB := openAuditDB(cfg, logger); auditDB != nil {
		defer func() { _ = auditDB.Close() }()
		trail = audit.NewTrail(auditDB)
	}

	renderer := receipts.NewRenderer(clock.Location())
	mailer := notify.NewReceiptMailer(bootstrap.BuildEmailSender(awsCfg, cfg, logger), renderer, logger)
	paymentOpts := []handlers.PaymentsOption{handlers.WithReceiptMailer(mailer)}
	if archive := bootstrap.BuildReceiptArchive(awsCfg, cfg, renderer, logger); archive != nil {
		paymentOpts = append(paymentOpts, handlers.WithReceiptArchive(archive))
		logger.Info("receipt archive enabled", "bucket", cfg.ReceiptsBucket)
	}

	// Initialize handlers
	deps := handlers.Deps{
		Clock:                 clock,
		MinAppointmentMinutes: cfg.MinAppointmentMinutes,
		Events:                recorder,
		Audit:                 trail,
		Metrics:               consoleMetrics,
		Logger:                logger,
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	// Setup router
	var auditLog handlers.AuditLog
	if trail != nil {
		auditLog = trail
	}

	r := router.New(&router.Config{
		Logger:             logger,
		DataMode:           cfg.DataMode,
		RequestObserver:    consoleMetrics,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		Sessions:           sessions,
		Auth:               handlers.NewAuthHandler(backend, backend, sessions, deps),
		Patients:           handlers.NewPatientsHandler(backend, deps),
		Appointments:       handlers.NewAppointmentsHandler(backend, deps),
		Services:           handlers.NewServicesHandler(backend, deps),
		Applied:            handlers.NewAppliedHandler(backend, deps),
		Payments:           handlers.NewPaymentsHandler(backend, deps, paymentOpts...),
		Profile:            handlers.NewProfileHandler(backend, deps),
		Audit:              handlers.NewAuditHandler(auditLog, deps),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancelApp()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func setupMetrics() (http.Handler, *metrics.ConsoleMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	consoleMetrics := metrics.NewConsoleMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), consoleMetrics
}

func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		logger.Warn("DATABASE_URL not set; mutation events and audit entries are disabled")
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func openAuditDB(cfg *appconfig.Config, logger *logging.Logger) *sql.DB {
	if cfg.DatabaseURL == "" || !cfg.AuditEnabled {
		return nil
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		return nil
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db
}

// sessionSecret returns SESSION_SECRET, or a per-process secret outside
// production. Sessions signed with a generated secret end on restart.
func sessionSecret(cfg *appconfig.Config, logger *logging.Logger) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	if cfg.Env == "production" {
		logger.Error("SESSION_SECRET is required in production")
		os.Exit(1)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Error("failed to generate session secret", "error", err)
		os.Exit(1)
	}
	logger.Warn("SESSION_SECRET not set; using a generated secret")
	return hex.EncodeToString(buf)
}
