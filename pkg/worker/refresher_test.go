package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/pkg/messaging"
)

type countingRefresher struct {
	calls    atomic.Int32
	failures atomic.Int32
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	if c.failures.Load() > 0 {
		c.failures.Add(-1)
		return errors.New("backend unavailable")
	}
	return nil
}

func TestNewCacheRefresherRequiresInterval(t *testing.T) {
	_, err := NewCacheRefresher(&countingRefresher{}, CacheRefresherConfig{}, nil)
	assert.Error(t, err)
}

func TestStartPollsUntilCancelled(t *testing.T) {
	target := &countingRefresher{}
	p, err := NewCacheRefresher(target, CacheRefresherConfig{PollInterval: 5 * time.Millisecond}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return target.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestRefreshRetries(t *testing.T) {
	target := &countingRefresher{}
	target.failures.Store(2)
	p, err := NewCacheRefresher(target, CacheRefresherConfig{
		PollInterval:  time.Hour,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, nil)
	require.NoError(t, err)

	p.refresh(context.Background())
	assert.Equal(t, int32(3), target.calls.Load())
}

func TestWatchRefreshesOnEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := messaging.NewMemoryBroker()
	target := &countingRefresher{}
	p, err := NewCacheRefresher(target, CacheRefresherConfig{PollInterval: time.Hour}, nil)
	require.NoError(t, err)

	require.NoError(t, p.Watch(ctx, messaging.NewBrokerAdapter(broker, zerolog.Nop()), "appointments"))
	require.NoError(t, messaging.NewTopicPublisher(broker, "appointments").Publish(ctx, "appointment.booked", nil))

	assert.Eventually(t, func() bool { return target.calls.Load() == 1 }, time.Second, time.Millisecond)
}
