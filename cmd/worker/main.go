package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	reminderService "github.com/jwalitptl/clinic-api/internal/service/reminder"
	"github.com/jwalitptl/clinic-api/internal/worker"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

const healthAddr = ":8081"

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	zl, err := newZap(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build cron logger")
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	workerMetrics := metrics.NewMetrics(cfg.Metrics.Namespace+"_worker", reg)

	mailer := email.NewService(email.NewSender(cfg.Email), workerMetrics)
	if !mailer.Configured() {
		log.Warn().Msg("email provider is not configured; reminder sweeps will record failures")
	}

	reminders := reminderService.NewService(postgres.NewAppointmentRepository(db), mailer, workerMetrics,
		reminderService.Config{
			Location:          cfg.Reminder.Location,
			Concurrency:       cfg.Reminder.Concurrency,
			DefaultHoursAhead: cfg.Reminder.DefaultHoursAhead,
		})

	// only PurgeExpired is used here
	sessions := authService.NewService(
		postgres.NewUserRepository(db),
		postgres.NewSessionRepository(db),
		auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		cfg.Auth.SessionTTL,
		cfg.Auth.SessionCacheTTL,
	)

	scheduler, err := worker.NewScheduler(reminders, sessions, worker.Schedule{
		Tomorrow: cfg.Reminder.TomorrowSchedule,
		SameDay:  cfg.Reminder.SameDaySchedule,
		Cleanup:  cfg.Reminder.CleanupSchedule,
	}, cfg.Reminder.Location, worker.NewCronLogger(zl))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	srv := healthServer(db, reg)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health check server failed")
			stop()
		}
	}()

	log.Info().
		Str("timezone", cfg.Reminder.Location.String()).
		Str("tomorrow", cfg.Reminder.TomorrowSchedule).
		Str("same_day", cfg.Reminder.SameDaySchedule).
		Str("cleanup", cfg.Reminder.CleanupSchedule).
		Msg("worker started")

	scheduler.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server forced to shutdown")
	}

	log.Info().Msg("worker exited")
}

func newZap(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Pretty {
		zc = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zc.Level = lvl
	}
	return zc.Build()
}

func healthServer(db health.Pinger, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              healthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
