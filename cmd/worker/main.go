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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/frontdesk/internal/bootstrap"
	"github.com/jwalitptl/frontdesk/internal/config"
	"github.com/jwalitptl/frontdesk/internal/journal"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
)

func setupHealthCheck(port int, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

// The worker journals every appointment event published by the API replicas.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	appLogger := bootstrap.Logger(cfg.Log)

	if cfg.Messaging.Driver == "none" {
		log.Fatal().Msg("messaging.driver is none, nothing to consume")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := bootstrap.Broker(ctx, cfg, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create message broker")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	j := journal.New(appLogger, reg)

	adapter := messaging.NewBrokerAdapter(broker, *appLogger.Component("events").Zerolog())
	if err := adapter.Subscribe(ctx, cfg.Messaging.Topic, j.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe")
	}

	srv := setupHealthCheck(cfg.Server.Port+1, reg)
	log.Info().Str("topic", cfg.Messaging.Topic).Str("driver", cfg.Messaging.Driver).Msg("Worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
