package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

func TestAppointmentRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()

	late := &model.Appointment{Date: model.MustParseDate("2024-06-10"), Time: model.Clock(11, 0), Duration: 30}
	early := &model.Appointment{Date: model.MustParseDate("2024-06-10"), Time: model.Clock(9, 0), Duration: 30}
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))
	assert.NotEqual(t, uuid.Nil, late.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)

	notes := "bring reports"
	updated, err := repo.Update(ctx, late.ID, model.AppointmentUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, model.Clock(11, 0), updated.Time)

	list[0].Notes = "mutating a copy"
	got, err := repo.Get(ctx, early.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)

	require.NoError(t, repo.Delete(ctx, early.ID))
	assert.True(t, errors.IsNotFound(repo.Delete(ctx, early.ID)))
	_, err = repo.Update(ctx, early.ID, model.AppointmentUpdate{Notes: &notes})
	assert.True(t, errors.IsNotFound(err))
}

func TestPatientRepositorySearch(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository(
		&model.Patient{SerialNumber: "P-001", Name: "Asha Rao", Phone: "9876500001"},
		&model.Patient{SerialNumber: "P-002", Name: "Vikram Shah", Phone: "9876500002"},
	)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hits, err := repo.List(ctx, &model.PatientFilters{SearchTerm: "asha"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "P-001", hits[0].SerialNumber)

	hits, err = repo.List(ctx, &model.PatientFilters{SearchTerm: "500002"})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, errors.IsNotFound(err))
}

func TestSlotRepositoryRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(model.Clock(19, 0))

	added, err := repo.Add(ctx, model.Clock(8, 30))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, model.Clock(8, 30))
	require.NoError(t, err)
	assert.False(t, added)

	slots, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TimeOfDay{model.Clock(8, 30), model.Clock(19, 0)}, slots)

	removed, err := repo.Remove(ctx, model.Clock(19, 0))
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(ctx, model.Clock(19, 0))
	require.NoError(t, err)
	assert.False(t, removed)
}
