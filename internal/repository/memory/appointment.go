// Package memory keeps repositories in process memory. It backs tests and
// single-desk deployments without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/internal/scheduling"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

type appointmentRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]model.Appointment
	now   func() time.Time
}

func NewAppointmentRepository() repository.AppointmentRepository {
	return &appointmentRepository{
		items: make(map[uuid.UUID]model.Appointment),
		now:   time.Now,
	}
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Appointment, 0, len(r.items))
	for _, a := range r.items {
		a := a
		out = append(out, &a)
	}
	scheduling.SortByTime(out)
	return out, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, errors.NewNotFound("appointment", nil)
	}
	return &a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment.ID = uuid.New()
	appointment.CreatedAt = r.now()
	appointment.UpdatedAt = appointment.CreatedAt
	r.items[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, update model.AppointmentUpdate) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return nil, errors.NewNotFound("appointment", nil)
	}
	update.Apply(&a)
	a.UpdatedAt = r.now()
	r.items[id] = a
	return &a, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return errors.NewNotFound("appointment", nil)
	}
	delete(r.items, id)
	return nil
}
