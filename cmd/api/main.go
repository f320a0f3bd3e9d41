package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/frontdesk/internal/bootstrap"
	"github.com/jwalitptl/frontdesk/internal/config"
	appointmentHandler "github.com/jwalitptl/frontdesk/internal/handler/appointment"
	exportHandler "github.com/jwalitptl/frontdesk/internal/handler/export"
	"github.com/jwalitptl/frontdesk/internal/handler/health"
	patientHandler "github.com/jwalitptl/frontdesk/internal/handler/patient"
	"github.com/jwalitptl/frontdesk/internal/handler/slot"
	"github.com/jwalitptl/frontdesk/internal/middleware"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/internal/repository/memory"
	"github.com/jwalitptl/frontdesk/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/frontdesk/internal/repository/redis"
	"github.com/jwalitptl/frontdesk/internal/router"
	appointmentService "github.com/jwalitptl/frontdesk/internal/service/appointment"
	patientService "github.com/jwalitptl/frontdesk/internal/service/patient"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
	"github.com/jwalitptl/frontdesk/pkg/metrics"
	"github.com/jwalitptl/frontdesk/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	appLogger := bootstrap.Logger(cfg.Log)
	loc, _ := cfg.Scheduling.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	checks := map[string]health.Check{"postgres": db.PingContext}

	// Custom slots live in Redis when several API replicas share them
	var slotRepo repository.SlotRepository
	switch cfg.Scheduling.SlotStore {
	case "redis":
		client, err := bootstrap.RedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer client.Close()
		slotRepo = redisrepo.NewSlotRepository(client, cfg.Redis.SlotsKey)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	default:
		slotRepo = memory.NewSlotRepository()
	}

	// Initialize message broker
	broker, err := bootstrap.Broker(ctx, cfg, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize message broker")
	}
	var publisher messaging.Publisher = messaging.NopPublisher()
	if broker != nil {
		defer broker.Close()
		publisher = messaging.NewTopicPublisher(broker, cfg.Messaging.Topic)
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer, "frontdesk")

	// Initialize services
	patientRepo := postgres.NewPatientRepository(db)
	patientSvc := patientService.NewService(patientRepo, appLogger)
	appointmentSvc := appointmentService.NewService(
		postgres.NewAppointmentRepository(db),
		patientRepo,
		slotRepo,
		appointmentService.Options{Logger: appLogger, Metrics: appMetrics, Publisher: publisher},
	)
	if err := appointmentSvc.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load appointments")
	}

	// Keep the cache current with writes made by other replicas
	refresher, err := worker.NewCacheRefresher(appointmentSvc, worker.CacheRefresherConfig{
		PollInterval:  cfg.Scheduling.RefreshInterval,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create cache refresher")
	}
	go refresher.Start(ctx)
	if broker != nil {
		adapter := messaging.NewBrokerAdapter(broker, *appLogger.Component("events").Zerolog())
		if err := refresher.Watch(ctx, adapter, cfg.Messaging.Topic); err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe to appointment events")
		}
	}

	// Setup router
	routerCfg := router.RouterConfig{
		Mode: cfg.Server.Mode,
		CORSConfig: middleware.CORSConfig{
			AllowOrigins:  cfg.Security.AllowedOrigins,
			AllowMethods:  cfg.Security.AllowedMethods,
			AllowHeaders:  cfg.Security.AllowedHeaders,
			ExposeHeaders: middleware.DefaultCORSConfig().ExposeHeaders,
			MaxAge:        86400,
		},
		Metrics: appMetrics,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = &middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		}
	}
	if cfg.Auth.Enabled {
		routerCfg.Auth = middleware.NewAuthMiddleware(cfg.Auth.Secret)
	}
	if cfg.Monitoring.PrometheusEnabled {
		routerCfg.Gatherer = prometheus.DefaultGatherer
		routerCfg.MetricsPath = cfg.Monitoring.MetricsPath
	}

	r := router.NewRouter(router.Handlers{
		Health:      health.NewHandler(checks),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Slot:        slot.NewHandler(appointmentSvc),
		Patient:     patientHandler.NewHandler(patientSvc),
		Export:      exportHandler.NewHandler(appointmentSvc, patientSvc, loc),
	}, routerCfg)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
