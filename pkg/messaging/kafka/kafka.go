// Package kafka implements messaging.Broker on Kafka topics. Each Subscribe
// call opens its own reader in the configured consumer group.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/jwalitptl/frontdesk/pkg/messaging"
)

type Config struct {
	Brokers []string
	GroupID string
}

type KafkaBroker struct {
	cfg    Config
	writer *kafka.Writer
	logger *zerolog.Logger
}

func NewKafkaBroker(cfg Config, logger *zerolog.Logger) (messaging.Broker, error) {
	brokers := SplitBrokers(strings.Join(cfg.Brokers, ","))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	cfg.Brokers = brokers

	return &KafkaBroker{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}, nil
}

// Publish writes message as JSON. Envelopes carrying a type get it as the
// event_type header.
func (b *KafkaBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{Topic: channel, Value: payload}
	if env, ok := message.(messaging.Message); ok {
		msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(env.Type)}}
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to %s: %w", channel, err)
	}
	return nil
}

func (b *KafkaBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.cfg.Brokers,
		GroupID:  b.cfg.GroupID,
		Topic:    channel,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	msgChan := make(chan []byte, 100)
	go func() {
		defer func() {
			reader.Close()
			close(msgChan)
		}()

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Error().Err(err).Str("topic", channel).Msg("kafka read error")
				time.Sleep(time.Second)
				continue
			}
			select {
			case msgChan <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgChan, nil
}

func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ReadyCheck dials the first broker.
func ReadyCheck(brokers []string) func(context.Context) error {
	return func(ctx context.Context) error {
		if len(brokers) == 0 {
			return fmt.Errorf("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return err
		}
		return conn.Close()
	}
}
