package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

type BrokerAdapter struct {
	broker Broker
	logger zerolog.Logger
}

func NewBrokerAdapter(broker Broker, logger zerolog.Logger) MessageBroker {
	return &BrokerAdapter{broker: broker, logger: logger}
}

func (a *BrokerAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	return a.broker.Publish(ctx, topic, json.RawMessage(payload))
}

func (a *BrokerAdapter) Close() error {
	return a.broker.Close()
}

// Subscribe runs handler for each message until ctx is done. Handler errors are
// logged and the message is skipped.
func (a *BrokerAdapter) Subscribe(ctx context.Context, topic string, handler func([]byte) error) error {
	msgChan, err := a.broker.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			if err := handler(msg); err != nil {
				a.logger.Warn().Err(err).Str("topic", topic).Msg("message handler failed")
				continue
			}
		}
	}()

	return nil
}

// TopicPublisher wraps events in a Message and writes them to one topic.
type TopicPublisher struct {
	broker Broker
	topic  string
	now    func() time.Time
}

func NewTopicPublisher(broker Broker, topic string) *TopicPublisher {
	return &TopicPublisher{broker: broker, topic: topic, now: time.Now}
}

func (p *TopicPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return p.broker.Publish(ctx, p.topic, Message{
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
}

// DecodedMessage is a Message whose payload is left raw for the consumer.
type DecodedMessage struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode parses an envelope produced by TopicPublisher.
func Decode(raw []byte) (DecodedMessage, error) {
	var msg DecodedMessage
	err := json.Unmarshal(raw, &msg)
	return msg, err
}
