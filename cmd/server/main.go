package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flashstudy/internal/config"
	"flashstudy/internal/database"
	"flashstudy/internal/handlers"
	"flashstudy/internal/logging"
	"flashstudy/internal/notify"
	"flashstudy/internal/security"
	"flashstudy/internal/service"
	"flashstudy/internal/srs"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Run the flashcard study API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (STUDY_AUTH_JWT_SECRET)")
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	log.WithField("type", cfg.Database.Type).Info("Database connection established")

	if err := db.RunMigrations(ctx, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sender, err := newSender(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Initialize services
	scheduler := srs.NewScheduler(cfg.SchedulerConfig())
	studyService := service.NewStudyService(db, scheduler, cfg.Location(), log)
	reminderService := service.NewReminderService(db, sender, cfg.Reminders.AppBaseURL, log)

	jobs := service.NewJobs(studyService, reminderService, cfg.Study.SweepInterval, cfg.Study.SessionMaxAge, log)
	if err := jobs.Start(); err != nil {
		return fmt.Errorf("failed to start background jobs: %w", err)
	}
	defer jobs.Stop()

	// Initialize handlers
	var limiter *security.RateLimiter
	if cfg.Study.RateLimit > 0 {
		limiter = security.NewRateLimiter(cfg.Study.RateLimit, time.Minute)
		defer limiter.Stop()
	}
	middleware := handlers.NewMiddleware(security.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), limiter, log)
	studyHandler := handlers.NewStudyHandler(studyService, reminderService, cfg.Study.MediaBaseURL, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(studyHandler, middleware, cfg.Server.AllowedOrigins, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newSender(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (notify.Sender, error) {
	if !cfg.Reminders.Enabled {
		log.Info("Reminder emails disabled")
		return notify.NopSender{Log: log}, nil
	}
	sender, err := notify.NewSESSender(ctx, cfg.Reminders.AWSRegion, cfg.Reminders.FromEmail, "FlashStudy", log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email sender: %w", err)
	}
	return sender, nil
}
