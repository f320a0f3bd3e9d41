//go:build integration

package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/model"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSlotRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	key := "frontdesk:test:slots:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	repo := NewSlotRepository(client, key)

	added, err := repo.Add(ctx, model.Clock(19, 15))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, model.Clock(19, 15))
	require.NoError(t, err)
	assert.False(t, added)

	_, err = repo.Add(ctx, model.Clock(8, 0))
	require.NoError(t, err)

	slots, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TimeOfDay{model.Clock(8, 0), model.Clock(19, 15)}, slots)

	removed, err := repo.Remove(ctx, model.Clock(8, 0))
	require.NoError(t, err)
	assert.True(t, removed)

	client.SAdd(ctx, key, "not-a-time")
	_, err = repo.List(ctx)
	assert.Error(t, err)
}
