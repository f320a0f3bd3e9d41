package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

const patientColumns = `
	id, serial_number, patient_name, phone_number, age, sex,
	marital_status, problem, times_of_visit, created_at, updated_at`

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, serial_number, patient_name, phone_number, age, sex,
			marital_status, problem, times_of_visit, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	now := time.Now().UTC()
	if patient.TimesOfVisit == 0 {
		patient.TimesOfVisit = 1
	}
	id := uuid.New()

	_, err := r.db.ExecContext(ctx, query,
		id,
		patient.SerialNumber,
		patient.Name,
		patient.Phone,
		patient.Age,
		patient.Sex,
		patient.MaritalStatus,
		patient.Problem,
		patient.TimesOfVisit,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}

	patient.ID = id
	patient.CreatedAt = now
	patient.UpdatedAt = now
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT` + patientColumns + ` FROM patients`
	var args []interface{}

	if filters != nil && strings.TrimSpace(filters.SearchTerm) != "" {
		query += ` WHERE patient_name ILIKE $1 OR phone_number LIKE $1 OR serial_number ILIKE $1`
		args = append(args, "%"+strings.TrimSpace(filters.SearchTerm)+"%")
	}
	query += ` ORDER BY serial_number ASC`

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
