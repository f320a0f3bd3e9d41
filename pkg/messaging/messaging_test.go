package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicPublisherEnvelope(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewMemoryBroker()
	ch, err := broker.Subscribe(ctx, "appointments")
	require.NoError(t, err)

	pub := NewTopicPublisher(broker, "appointments")
	require.NoError(t, pub.Publish(ctx, "appointment.booked", map[string]string{"time": "10:00"}))

	select {
	case raw := <-ch:
		msg, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "appointment.booked", msg.Type)
		assert.False(t, msg.OccurredAt.IsZero())

		var payload map[string]string
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "10:00", payload["time"])
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestAdapterSubscribeSkipsHandlerErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := NewBrokerAdapter(NewMemoryBroker(), zerolog.Nop())
	got := make(chan string, 2)
	require.NoError(t, adapter.Subscribe(ctx, "t", func(b []byte) error {
		got <- string(b)
		if string(b) == `"bad"` {
			return assert.AnError
		}
		return nil
	}))

	require.NoError(t, adapter.Publish(ctx, "t", []byte(`"bad"`)))
	require.NoError(t, adapter.Publish(ctx, "t", []byte(`"good"`)))

	assert.Equal(t, `"bad"`, <-got)
	assert.Equal(t, `"good"`, <-got)
}

func TestMemoryBrokerUnsubscribesOnCancel(t *testing.T) {
	broker := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := broker.Subscribe(ctx, "t")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, broker.Close())
	assert.Error(t, broker.Publish(context.Background(), "t", "late"))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher().Publish(context.Background(), "x", nil))
}
