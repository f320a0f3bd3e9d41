package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

func (c *Client) Appointments() repository.AppointmentRepository { return &appointmentRepository{c} }
func (c *Client) Patients() repository.PatientRepository         { return &patientRepository{c} }
func (c *Client) Slots() repository.SlotRepository               { return &slotRepository{c} }

type appointmentRepository struct{ c *Client }

func (r *appointmentRepository) List(ctx context.Context) ([]*model.Appointment, error) {
	var appts []*model.Appointment
	if err := r.c.do(ctx, http.MethodGet, "/appointments", nil, nil, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	if err := r.c.do(ctx, http.MethodGet, "/appointments/"+id.String(), nil, nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Create books through the API, which repeats the overlap check against the
// authoritative set, and copies the stored record back into appointment.
func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	req := model.CreateAppointmentRequest{
		PatientID: appointment.PatientID.String(),
		Date:      appointment.Date.String(),
		Time:      appointment.Time.String(),
		Duration:  appointment.Duration,
		Notes:     appointment.Notes,
	}
	var created model.Appointment
	if err := r.c.do(ctx, http.MethodPost, "/appointments", nil, req, &created); err != nil {
		return err
	}
	*appointment = created
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, update model.AppointmentUpdate) (*model.Appointment, error) {
	req := model.UpdateAppointmentRequest{
		Duration: update.Duration,
		Notes:    update.Notes,
	}
	if update.Date != nil {
		s := update.Date.String()
		req.Date = &s
	}
	if update.Time != nil {
		s := update.Time.String()
		req.Time = &s
	}
	if update.Status != nil {
		s := string(*update.Status)
		req.Status = &s
	}

	var appt model.Appointment
	if err := r.c.do(ctx, http.MethodPut, "/appointments/"+id.String(), nil, req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.c.do(ctx, http.MethodDelete, "/appointments/"+id.String(), nil, nil, nil)
}

type patientRepository struct{ c *Client }

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := url.Values{}
	if filters != nil && filters.SearchTerm != "" {
		query.Set("search_term", filters.SearchTerm)
	}
	var patients []*model.Patient
	if err := r.c.do(ctx, http.MethodGet, "/patients", query, nil, &patients); err != nil {
		return nil, err
	}
	for _, p := range patients {
		r.c.patients.Set(p.ID.String(), *p, cache.DefaultExpiration)
	}
	return patients, nil
}

// Get serves repeat lookups from the local cache; bookings only need the
// patient's name and phone.
func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if cached, found := r.c.patients.Get(id.String()); found {
		p := cached.(model.Patient)
		return &p, nil
	}

	var p model.Patient
	if err := r.c.do(ctx, http.MethodGet, "/patients/"+id.String(), nil, nil, &p); err != nil {
		return nil, err
	}
	r.c.patients.Set(id.String(), p, cache.DefaultExpiration)
	return &p, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	req := model.CreatePatientRequest{
		SerialNumber:  patient.SerialNumber,
		Name:          patient.Name,
		Phone:         patient.Phone,
		Age:           patient.Age,
		Sex:           patient.Sex,
		MaritalStatus: patient.MaritalStatus,
		Problem:       patient.Problem,
		TimesOfVisit:  patient.TimesOfVisit,
	}
	var created model.Patient
	if err := r.c.do(ctx, http.MethodPost, "/patients", nil, req, &created); err != nil {
		return err
	}
	*patient = created
	r.c.patients.Set(created.ID.String(), created, cache.DefaultExpiration)
	return nil
}

type slotRepository struct{ c *Client }

func (r *slotRepository) List(ctx context.Context) ([]model.TimeOfDay, error) {
	var slots []model.TimeOfDay
	if err := r.c.do(ctx, http.MethodGet, "/slots/custom", nil, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) Add(ctx context.Context, slot model.TimeOfDay) (bool, error) {
	err := r.c.do(ctx, http.MethodPost, "/slots/custom", nil, model.CustomSlotRequest{Time: slot.String()}, nil)
	if errors.IsConflict(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *slotRepository) Remove(ctx context.Context, slot model.TimeOfDay) (bool, error) {
	err := r.c.do(ctx, http.MethodDelete, "/slots/custom/"+url.PathEscape(slot.String()), nil, nil, nil)
	if errors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}
