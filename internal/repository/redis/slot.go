// Package redis stores custom slots in a Redis set so every desk and API
// replica sees the same grid.
package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
)

type slotRepository struct {
	client *redis.Client
	key    string
}

func NewSlotRepository(client *redis.Client, key string) repository.SlotRepository {
	return &slotRepository{client: client, key: key}
}

func (r *slotRepository) List(ctx context.Context) ([]model.TimeOfDay, error) {
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list custom slots: %w", err)
	}

	slots := make([]model.TimeOfDay, 0, len(members))
	for _, m := range members {
		t, err := model.ParseTimeOfDay(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt custom slot %q in %s: %w", m, r.key, err)
		}
		slots = append(slots, t)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots, nil
}

func (r *slotRepository) Add(ctx context.Context, slot model.TimeOfDay) (bool, error) {
	n, err := r.client.SAdd(ctx, r.key, slot.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add custom slot: %w", err)
	}
	return n == 1, nil
}

func (r *slotRepository) Remove(ctx context.Context, slot model.TimeOfDay) (bool, error) {
	n, err := r.client.SRem(ctx, r.key, slot.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove custom slot: %w", err)
	}
	return n == 1, nil
}
