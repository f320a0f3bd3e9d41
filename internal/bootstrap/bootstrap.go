// Package bootstrap builds the shared infrastructure both binaries start from.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/frontdesk/internal/config"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
	"github.com/jwalitptl/frontdesk/pkg/messaging/kafka"
	"github.com/jwalitptl/frontdesk/pkg/messaging/redis"
)

// Logger builds the component logger and points the global zerolog logger,
// used by the HTTP middleware, at the same output and level.
func Logger(cfg config.LogConfig) *logger.Logger {
	lvl := logger.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(lvl)
	if cfg.JSON {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.NewLogger(&logger.Config{
		Level:      lvl,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	})
}

func RedisClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	return redis.NewClient(ctx, redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

// Broker returns the configured event broker, or nil for driver none.
func Broker(ctx context.Context, cfg *config.Config, log *logger.Logger) (messaging.Broker, error) {
	switch cfg.Messaging.Driver {
	case "redis":
		client, err := RedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redis.NewRedisBroker(client, log.Component("redis-broker").Zerolog()), nil
	case "kafka":
		return kafka.NewKafkaBroker(kafka.Config{
			Brokers: cfg.Messaging.Brokers,
			GroupID: cfg.Messaging.GroupID,
		}, log.Component("kafka-broker").Zerolog())
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown messaging driver %q", cfg.Messaging.Driver)
	}
}
