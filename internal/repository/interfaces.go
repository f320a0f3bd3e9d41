package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// Collaborators of the scheduling façade. Implementations report missing rows
// with errors.NotFound so callers can tell them apart from transport failures.
type (
	AppointmentRepository interface {
		// List returns every appointment ordered by date and time.
		List(ctx context.Context) ([]*model.Appointment, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Create assigns the id and timestamps.
		Create(ctx context.Context, appointment *model.Appointment) error
		Update(ctx context.Context, id uuid.UUID, update model.AppointmentUpdate) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	PatientRepository interface {
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Create(ctx context.Context, patient *model.Patient) error
	}

	// SlotRepository stores operator-added slots shared by every date.
	SlotRepository interface {
		List(ctx context.Context) ([]model.TimeOfDay, error)
		// Add reports false when the slot already exists.
		Add(ctx context.Context, slot model.TimeOfDay) (bool, error)
		// Remove reports false when the slot did not exist.
		Remove(ctx context.Context, slot model.TimeOfDay) (bool, error)
	}
)
