package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
)

// Refresher reloads a cached view from its source of truth.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type CacheRefresherConfig struct {
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// CacheRefresher keeps a Refresher current by polling and, when a broker is
// attached, by reacting to events published by other writers.
type CacheRefresher struct {
	target Refresher
	config CacheRefresherConfig
	logger *logger.Logger
}

func NewCacheRefresher(target Refresher, config CacheRefresherConfig, log *logger.Logger) (*CacheRefresher, error) {
	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CacheRefresher{
		target: target,
		config: config,
		logger: log.Component("cache-refresher"),
	}, nil
}

// Start polls until ctx is done.
func (p *CacheRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting cache refresher", "interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down cache refresher")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// Watch refreshes whenever a message arrives on topic.
func (p *CacheRefresher) Watch(ctx context.Context, broker messaging.MessageBroker, topic string) error {
	return broker.Subscribe(ctx, topic, func(raw []byte) error {
		msg, err := messaging.Decode(raw)
		if err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		p.logger.Debug("event received, refreshing", "event_type", msg.Type)
		p.refresh(ctx)
		return nil
	})
}

func (p *CacheRefresher) refresh(ctx context.Context) {
	err := retry(ctx, p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.target.Refresh(ctx)
	})
	if err != nil && ctx.Err() == nil {
		p.logger.Error(err, "Failed to refresh cache")
	}
}

// Helper retry function
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
