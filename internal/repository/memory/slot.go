package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
)

type slotRepository struct {
	mu    sync.RWMutex
	slots map[model.TimeOfDay]struct{}
}

func NewSlotRepository(seed ...model.TimeOfDay) repository.SlotRepository {
	r := &slotRepository{slots: make(map[model.TimeOfDay]struct{})}
	for _, s := range seed {
		r.slots[s] = struct{}{}
	}
	return r
}

func (r *slotRepository) List(ctx context.Context) ([]model.TimeOfDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.TimeOfDay, 0, len(r.slots))
	for s := range r.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *slotRepository) Add(ctx context.Context, slot model.TimeOfDay) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[slot]; ok {
		return false, nil
	}
	r.slots[slot] = struct{}{}
	return true, nil
}

func (r *slotRepository) Remove(ctx context.Context, slot model.TimeOfDay) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[slot]; !ok {
		return false, nil
	}
	delete(r.slots, slot)
	return true, nil
}
