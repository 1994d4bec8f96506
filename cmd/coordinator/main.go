// cmd/coordinator/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hiring-coordinator/internal/api"
	"hiring-coordinator/internal/calendar"
	"hiring-coordinator/internal/common/aws"
	"hiring-coordinator/internal/common/config"
	"hiring-coordinator/internal/common/database"
	"hiring-coordinator/internal/common/logger"
	"hiring-coordinator/internal/common/observability"
	"hiring-coordinator/internal/notify"
	"hiring-coordinator/internal/scoring"
	"hiring-coordinator/internal/store"
	"hiring-coordinator/internal/workflow"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting hiring coordinator",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Analysis capability ---
	analyzer, err := scoring.NewGenAIAnalyzer(ctx, cfg.APIs.GenAI, log)
	if err != nil {
		zapLog.Fatal("genai analyzer init failed", zap.Error(err))
	}
	scorer := scoring.NewCoordinator(analyzer, cfg.Scoring, log)

	// --- Calendar capability ---
	toolClient := calendar.NewToolClient(
		cfg.APIs.CalendarTool.BaseURL,
		cfg.APIs.CalendarTool.APIKey,
		time.Duration(cfg.APIs.CalendarTool.Timeout)*time.Millisecond,
	)
	resolver := calendar.NewResolver(
		toolClient,
		rdb.Client,
		time.Duration(cfg.Scheduling.BusyCacheTTLSecs)*time.Second,
		log,
	)

	// --- Notification delivery ---
	var mailer notify.Mailer
	switch cfg.Notifications.Provider {
	case "ses":
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		from := cfg.Notifications.FromEmail
		if from == "" {
			from = cfg.Integrations.AWS.SES.FromEmail
		}
		mailer = notify.NewSESMailer(sesClient, from, log)
	default:
		mailer = notify.NewSMTPMailer(cfg.Integrations.SMTP, cfg.Notifications, log)
	}

	var alerter notify.Alerter = notify.NopAlerter{}
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		alerter = notify.NewSNSAlerter(snsClient, cfg.Integrations.AWS.SNS.TopicARN, log)
	}

	// --- Persistence and orchestration ---
	candidates := store.NewCandidateStore(pg.DB, log)
	jobSpecs := store.NewJobSpecStore(pg.DB, log)

	orchestrator := workflow.NewOrchestrator(workflow.Dependencies{
		Scorer:           scorer,
		Resolver:         resolver,
		Events:           toolClient,
		Mailer:           mailer,
		Alerter:          alerter,
		Repo:             candidates,
		RetryConfig:      cfg.Retry,
		SchedulingConfig: cfg.Scheduling,
		Observability:    obs,
		Logger:           log,
	})

	// --- HTTP intake ---
	server, err := api.NewServer(candidates, jobSpecs, orchestrator, 10*time.Minute, log)
	if err != nil {
		zapLog.Fatal("api server init failed", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	cancel()

	zapLog.Info("hiring coordinator stopped")
}
