package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

const appointmentColumns = `
	id, patient_id, patient_name, patient_phone,
	"date", "time", duration, COALESCE(notes, '') AS notes, status,
	created_at, updated_at`

type appointmentRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db, dialect: goqu.Dialect("postgres")}
}

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `
		FROM appointments
		ORDER BY "date" ASC, "time" ASC, id ASC
	`
	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, patient_name, patient_phone,
			"date", "time", duration, notes, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	now := time.Now().UTC()
	id := uuid.New()

	_, err := r.db.ExecContext(ctx, query,
		id,
		appointment.PatientID,
		appointment.PatientName,
		appointment.PatientPhone,
		appointment.Date,
		appointment.Time,
		appointment.Duration,
		appointment.Notes,
		appointment.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	appointment.ID = id
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	return nil
}

// Update writes only the fields set in update and returns the stored row.
func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, update model.AppointmentUpdate) (*model.Appointment, error) {
	record := goqu.Record{"updated_at": time.Now().UTC()}
	if update.Date != nil {
		record["date"] = update.Date.String()
	}
	if update.Time != nil {
		record["time"] = update.Time.String()
	}
	if update.Duration != nil {
		record["duration"] = *update.Duration
	}
	if update.Notes != nil {
		record["notes"] = *update.Notes
	}
	if update.Status != nil {
		record["status"] = string(*update.Status)
	}

	query, args, err := r.dialect.Update("appointments").
		Set(record).
		Where(goqu.Ex{"id": id.String()}).
		Returning(
			"id", "patient_id", "patient_name", "patient_phone",
			"date", "time", "duration", goqu.L(`COALESCE(notes, '') AS notes`), "status",
			"created_at", "updated_at",
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build appointment update: %w", err)
	}

	var appointment model.Appointment
	err = r.db.GetContext(ctx, &appointment, query, args...)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errors.NewNotFound("appointment", nil)
	}

	return nil
}
