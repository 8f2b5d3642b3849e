package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/clinicctx"
	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/handler"
	authHandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	clinicHandler "github.com/jwalitptl/clinic-api/internal/handler/clinic"
	doctorHandler "github.com/jwalitptl/clinic-api/internal/handler/doctor"
	emailHandler "github.com/jwalitptl/clinic-api/internal/handler/email"
	fileHandler "github.com/jwalitptl/clinic-api/internal/handler/file"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	httpMetrics "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	reminderHandler "github.com/jwalitptl/clinic-api/internal/handler/reminder"
	userHandler "github.com/jwalitptl/clinic-api/internal/handler/user"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	clinicService "github.com/jwalitptl/clinic-api/internal/service/clinic"
	doctorService "github.com/jwalitptl/clinic-api/internal/service/doctor"
	patientService "github.com/jwalitptl/clinic-api/internal/service/patient"
	reminderService "github.com/jwalitptl/clinic-api/internal/service/reminder"
	"github.com/jwalitptl/clinic-api/internal/service/tenant"
	uploadService "github.com/jwalitptl/clinic-api/internal/service/upload"
	"github.com/jwalitptl/clinic-api/internal/storage/s3"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(cfg.Metrics.Namespace, reg)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	// Active clinic selections
	selections, closeSelections := selectionStore(ctx, cfg)
	defer closeSelections()

	// External providers
	mailer := email.NewService(email.NewSender(cfg.Email), appMetrics)
	if !mailer.Configured() {
		log.Warn().Msg("email provider is not configured; sends will fail")
	}

	var store uploadService.Store
	if cfg.StorageEnabled() {
		s, err := s3.New(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		store = s
	} else {
		log.Warn().Msg("object storage is not configured; file endpoints will fail")
	}

	// Initialize services
	guard := tenant.NewGuard(membershipRepo)
	authSvc := authService.NewService(
		userRepo,
		sessionRepo,
		auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		cfg.Auth.SessionTTL,
		cfg.Auth.SessionCacheTTL,
	)
	clinicSvc := clinicService.NewService(clinicRepo, membershipRepo, appointmentRepo, guard, selections)
	doctorSvc := doctorService.NewService(doctorRepo, guard)
	patientSvc := patientService.NewService(patientRepo, clinicRepo, guard, mailer)
	reminderSvc := reminderService.NewService(appointmentRepo, mailer, appMetrics, reminderService.Config{
		Location:          cfg.Reminder.Location,
		Concurrency:       cfg.Reminder.Concurrency,
		DefaultHoursAhead: cfg.Reminder.DefaultHoursAhead,
	})
	uploadSvc := uploadService.NewService(store, uploadService.Config{
		MaxFileSize:  cfg.Storage.MaxFileSize,
		AllowedTypes: cfg.Storage.AllowedTypes,
		PresignTTL:   cfg.Storage.PresignTTL,
	}, appMetrics)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc, cfg.Auth.CookieName)
	trigger := middleware.TriggerSecret(cfg.Reminder.TriggerSecret)
	if cfg.Reminder.TriggerSecret == "" {
		log.Warn().Msg("reminder trigger secret is not set; trigger and email endpoints are open")
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		httpMetrics.New(cfg.Metrics.Namespace, reg),
		[]handler.Handler{
			health.NewHandler(db, reg),
			authHandler.NewHandler(authSvc, authMiddleware, authHandler.CookieConfig{
				Name:   cfg.Auth.CookieName,
				Secure: cfg.Auth.CookieSecure,
			}),
			reminderHandler.NewHandler(reminderSvc, trigger),
			emailHandler.NewHandler(mailer, trigger),
		},
		[]handler.Handler{
			clinicHandler.NewHandler(clinicSvc),
			userHandler.NewHandler(clinicSvc),
			doctorHandler.NewHandler(doctorSvc),
			patientHandler.NewHandler(patientSvc),
			fileHandler.NewHandler(uploadSvc),
		},
		router.RouterConfig{
			RateLimit:      cfg.Server.RateLimit,
			RateBurst:      cfg.Server.RateBurst,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			CORSConfig:     corsConfig,
		},
	)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// let in-flight welcome emails finish
	patientSvc.Wait()

	log.Info().Msg("server exited properly")
}

// selectionStore picks Redis when configured and the in-process store
// otherwise. The returned func releases it.
func selectionStore(ctx context.Context, cfg *config.Config) (clinicctx.Store, func()) {
	if cfg.Redis.Addr == "" {
		return clinicctx.NewMemoryStore(cfg.Redis.TTL), func() {}
	}

	rs, err := clinicctx.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; using in-process clinic selections")
		return clinicctx.NewMemoryStore(cfg.Redis.TTL), func() {}
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
}

