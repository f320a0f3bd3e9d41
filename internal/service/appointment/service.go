// Package appointment is the scheduling façade: availability, booking and the
// appointment state machine over a cached copy of the appointment set.
package appointment

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/internal/scheduling"
	"github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
	"github.com/jwalitptl/frontdesk/pkg/metrics"
)

type Options struct {
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	Publisher messaging.Publisher
}

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	slots        repository.SlotRepository
	publisher    messaging.Publisher
	metrics      *metrics.Metrics
	logger       *logger.Logger

	// writeMu serialises check, write and refresh within this process.
	writeMu sync.Mutex

	mu     sync.RWMutex
	cache  []*model.Appointment
	loaded bool
}

func NewService(appointments repository.AppointmentRepository, patients repository.PatientRepository, slots repository.SlotRepository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	if opts.Publisher == nil {
		opts.Publisher = messaging.NopPublisher()
	}
	return &Service{
		appointments: appointments,
		patients:     patients,
		slots:        slots,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		logger:       opts.Logger.Component("scheduling"),
	}
}

// BookRequest is a validated booking.
type BookRequest struct {
	PatientID uuid.UUID
	Date      model.Date
	Time      model.TimeOfDay
	Duration  int
	Notes     string
}

// DaySchedule is the rendered grid for one date.
type DaySchedule struct {
	Date  model.Date            `json:"date"`
	Slots []scheduling.TimeSlot `json:"slots"`
	// OffGrid lists blocked times that have no slot in the grid.
	OffGrid      []model.TimeOfDay    `json:"off_grid_blocked"`
	Appointments []*model.Appointment `json:"appointments"`
}

// Refresh reloads the full appointment set. On failure the cache is kept.
// It waits for any write in progress so a reload that started before a
// commit cannot replace the post-write set.
func (s *Service) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.refresh(ctx)
}

// refresh is Refresh for callers already holding writeMu.
func (s *Service) refresh(ctx context.Context) error {
	start := time.Now()
	appts, err := s.appointments.List(ctx)
	s.metrics.CacheRefreshLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.CacheRefreshes.WithLabelValues("error").Inc()
		return s.collaboratorErr("fetch appointments", err)
	}
	scheduling.SortByTime(appts)

	s.mu.Lock()
	s.cache = appts
	s.loaded = true
	s.mu.Unlock()

	s.metrics.CacheRefreshes.WithLabelValues("ok").Inc()
	s.metrics.CachedAppointments.Set(float64(len(appts)))
	return nil
}

func (s *Service) isLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// snapshot returns copies of the cached appointments, loading them on first use.
func (s *Service) snapshot(ctx context.Context) ([]*model.Appointment, error) {
	if !s.isLoaded() {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.copyCache(), nil
}

// lockedSnapshot is snapshot for callers holding writeMu.
func (s *Service) lockedSnapshot(ctx context.Context) ([]*model.Appointment, error) {
	if !s.isLoaded() {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.copyCache(), nil
}

func (s *Service) copyCache() []*model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Appointment, len(s.cache))
	for i, a := range s.cache {
		c := *a
		out[i] = &c
	}
	return out
}

// refreshAfterWrite reloads the cache after a persisted mutation. A failed
// reload marks the cache stale so the next read retries. Callers hold writeMu.
func (s *Service) refreshAfterWrite(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		s.mu.Lock()
		s.loaded = false
		s.mu.Unlock()
		s.logger.Error(err, "refresh after write failed, cache marked stale")
	}
}

func (s *Service) CheckAvailability(ctx context.Context, date model.Date, at model.TimeOfDay, duration int) (bool, error) {
	if err := validateSlot(date, at, duration); err != nil {
		return false, err
	}
	appts, err := s.snapshot(ctx)
	if err != nil {
		return false, err
	}

	available := !scheduling.Overlaps(date, at, duration, scheduling.Scheduled(appts))
	s.metrics.AvailabilityChecks.WithLabelValues(strconv.FormatBool(available)).Inc()
	return available, nil
}

func (s *Service) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	if req.PatientID == uuid.Nil {
		s.metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, errors.NewValidation("patient is required")
	}
	if err := validateSlot(req.Date, req.Time, req.Duration); err != nil {
		s.metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	patient, err := s.patients.Get(ctx, req.PatientID)
	if errors.IsNotFound(err) {
		s.metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, errors.NewValidation(fmt.Sprintf("patient %s not found", req.PatientID))
	}
	if err != nil {
		s.metrics.Bookings.WithLabelValues("error").Inc()
		return nil, s.collaboratorErr("fetch patient", err)
	}

	appts, err := s.lockedSnapshot(ctx)
	if err != nil {
		s.metrics.Bookings.WithLabelValues("error").Inc()
		return nil, err
	}
	if hit := scheduling.FirstOverlap(req.Date, req.Time, req.Duration, scheduling.Scheduled(appts)); hit != nil {
		s.metrics.Bookings.WithLabelValues("conflict").Inc()
		s.logger.Warn("booking conflict",
			"date", req.Date.String(), "time", req.Time.String(), "duration", req.Duration, "existing", hit.ID.String())
		return nil, conflictWith(req.Date, req.Time, hit)
	}

	appt := &model.Appointment{
		PatientID:    patient.ID,
		PatientName:  patient.Name,
		PatientPhone: patient.Phone,
		Date:         req.Date,
		Time:         req.Time,
		Duration:     req.Duration,
		Notes:        req.Notes,
		Status:       model.AppointmentStatusScheduled,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		s.metrics.Bookings.WithLabelValues("error").Inc()
		return nil, s.collaboratorErr("create appointment", err)
	}

	s.metrics.Bookings.WithLabelValues("booked").Inc()
	s.logger.Info("appointment booked",
		"id", appt.ID.String(), "date", appt.Date.String(), "time", appt.Time.String(), "duration", appt.Duration)
	s.refreshAfterWrite(ctx)
	s.publish(ctx, EventAppointmentBooked, newAppointmentEvent(appt))
	return appt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	status := model.AppointmentStatusCancelled
	return s.apply(ctx, "cancel", EventAppointmentCancelled, id, model.AppointmentUpdate{Status: &status})
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	status := model.AppointmentStatusCompleted
	return s.apply(ctx, "complete", EventAppointmentCompleted, id, model.AppointmentUpdate{Status: &status})
}

// Reschedule moves a scheduled appointment, keeping its duration. The
// appointment's own current interval never conflicts with the new one.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, date model.Date, at model.TimeOfDay) (*model.Appointment, error) {
	return s.apply(ctx, "reschedule", EventAppointmentRescheduled, id, model.AppointmentUpdate{Date: &date, Time: &at})
}

// Update applies a partial change. Status may only leave scheduled; moving
// date, time or duration is checked for overlap like Reschedule.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update model.AppointmentUpdate) (*model.Appointment, error) {
	if update.Empty() {
		return nil, errors.NewValidation("nothing to update")
	}
	event := EventAppointmentUpdated
	if update.Date != nil || update.Time != nil || update.Duration != nil {
		event = EventAppointmentRescheduled
	}
	if update.Status != nil {
		switch *update.Status {
		case model.AppointmentStatusCancelled:
			event = EventAppointmentCancelled
		case model.AppointmentStatusCompleted:
			event = EventAppointmentCompleted
		}
	}
	return s.apply(ctx, "update", event, id, update)
}

func (s *Service) apply(ctx context.Context, op, event string, id uuid.UUID, update model.AppointmentUpdate) (*model.Appointment, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	appts, err := s.lockedSnapshot(ctx)
	if err != nil {
		s.countMutation(op, "error")
		return nil, err
	}
	current := find(appts, id)
	if current == nil {
		// The cache may lag behind other writers.
		if current, err = s.appointments.Get(ctx, id); err != nil {
			s.countMutation(op, "error")
			return nil, s.collaboratorErr("fetch appointment", err)
		}
	}

	next := *current
	update.Apply(&next)
	if err := validateTransition(current, &next, update); err != nil {
		s.countMutation(op, "invalid")
		return nil, err
	}

	moved := next.Date != current.Date || next.Time != current.Time || next.Duration != current.Duration
	if next.IsScheduled() && moved {
		others := scheduling.Excluding(scheduling.Scheduled(appts), id)
		if hit := scheduling.FirstOverlap(next.Date, next.Time, next.Duration, others); hit != nil {
			s.countMutation(op, "conflict")
			s.logger.Warn("reschedule conflict",
				"id", id.String(), "date", next.Date.String(), "time", next.Time.String(), "existing", hit.ID.String())
			return nil, conflictWith(next.Date, next.Time, hit)
		}
	}

	updated, err := s.appointments.Update(ctx, id, update)
	if err != nil {
		s.countMutation(op, "error")
		return nil, s.collaboratorErr("update appointment", err)
	}

	s.countMutation(op, "ok")
	s.logger.Info("appointment updated", "op", op, "id", id.String(), "status", string(updated.Status))
	s.refreshAfterWrite(ctx)
	s.publish(ctx, event, newAppointmentEvent(updated))
	return updated, nil
}

// Remove deletes the record outright. Cancel keeps it with status cancelled.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.appointments.Delete(ctx, id); err != nil {
		s.countMutation("remove", "error")
		return s.collaboratorErr("delete appointment", err)
	}

	s.countMutation("remove", "ok")
	s.logger.Info("appointment removed", "id", id.String())
	s.refreshAfterWrite(ctx)
	s.publish(ctx, EventAppointmentRemoved, AppointmentEvent{ID: id})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if a := find(appts, id); a != nil {
		return a, nil
	}
	a, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, s.collaboratorErr("fetch appointment", err)
	}
	return a, nil
}

// All returns every cached appointment ordered by date and time.
func (s *Service) All(ctx context.Context) ([]*model.Appointment, error) {
	return s.snapshot(ctx)
}

func (s *Service) ListForDate(ctx context.Context, date model.Date) ([]*model.Appointment, error) {
	if date.IsZero() {
		return nil, errors.NewValidation("date is required")
	}
	appts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scheduling.OnDate(appts, date), nil
}

func (s *Service) ListForWeek(ctx context.Context, ref model.Date) ([]scheduling.DayBucket, error) {
	if ref.IsZero() {
		return nil, errors.NewValidation("date is required")
	}
	appts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scheduling.Week(appts, ref), nil
}

// DaySlots renders the grid for date with blocked flags from scheduled appointments.
func (s *Service) DaySlots(ctx context.Context, date model.Date) (*DaySchedule, error) {
	if date.IsZero() {
		return nil, errors.NewValidation("date is required")
	}
	appts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	custom, err := s.CustomSlots(ctx)
	if err != nil {
		return nil, err
	}

	slots := scheduling.GenerateGrid(custom)
	offGrid := scheduling.MarkBlocked(slots, scheduling.BlockedSlots(date, scheduling.Scheduled(appts)))
	return &DaySchedule{
		Date:         date,
		Slots:        slots,
		OffGrid:      offGrid,
		Appointments: scheduling.OnDate(appts, date),
	}, nil
}

func (s *Service) AvailableSlots(ctx context.Context, date model.Date) ([]scheduling.TimeSlot, error) {
	day, err := s.DaySlots(ctx, date)
	if err != nil {
		return nil, err
	}
	return scheduling.Available(day.Slots), nil
}

func (s *Service) CustomSlots(ctx context.Context) ([]model.TimeOfDay, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, s.collaboratorErr("fetch custom slots", err)
	}
	return slots, nil
}

// AddCustomSlot rejects times already on the grid, fixed or custom.
func (s *Service) AddCustomSlot(ctx context.Context, at model.TimeOfDay) error {
	if !at.Valid() {
		return errors.NewValidation(fmt.Sprintf("invalid time %d", int(at)))
	}
	for _, fixed := range scheduling.FixedGrid() {
		if fixed == at {
			return errors.NewConflict(fmt.Sprintf("%s is already a regular slot", at))
		}
	}

	added, err := s.slots.Add(ctx, at)
	if err != nil {
		return s.collaboratorErr("add custom slot", err)
	}
	if !added {
		return errors.NewConflict(fmt.Sprintf("custom slot %s already exists", at))
	}

	s.logger.Info("custom slot added", "time", at.String())
	s.publish(ctx, EventCustomSlotAdded, SlotEvent{Time: at})
	return nil
}

func (s *Service) RemoveCustomSlot(ctx context.Context, at model.TimeOfDay) error {
	removed, err := s.slots.Remove(ctx, at)
	if err != nil {
		return s.collaboratorErr("remove custom slot", err)
	}
	if !removed {
		return errors.NewNotFound("custom slot "+at.String(), nil)
	}

	s.logger.Info("custom slot removed", "time", at.String())
	s.publish(ctx, EventCustomSlotRemoved, SlotEvent{Time: at})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		s.metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		s.logger.Error(err, "publish event failed", "event_type", eventType)
		return
	}
	s.metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
}

func (s *Service) countMutation(op, outcome string) {
	s.metrics.AppointmentMutations.WithLabelValues(op, outcome).Inc()
}

// collaboratorErr keeps the kinds a backend reports itself and wraps the rest.
func (s *Service) collaboratorErr(op string, err error) error {
	switch errors.CodeOf(err) {
	case errors.ErrNotFound, errors.ErrConflict, errors.ErrValidation:
		return err
	}
	s.metrics.CollaboratorFailures.WithLabelValues(op).Inc()
	s.logger.Error(err, "collaborator call failed", "op", op)
	return errors.NewCollaborator(op, err)
}

func validateSlot(date model.Date, at model.TimeOfDay, duration int) error {
	switch {
	case date.IsZero():
		return errors.NewValidation("date is required")
	case !at.Valid():
		return errors.NewValidation("time must be between 00:00 and 23:59")
	case duration <= 0:
		return errors.NewValidation("duration must be a positive number of minutes")
	case int(at)+duration > model.MinutesPerDay:
		return errors.NewValidation("appointment must end by midnight")
	}
	return nil
}

func validateTransition(current, next *model.Appointment, update model.AppointmentUpdate) error {
	if !current.IsScheduled() {
		if update.Date != nil || update.Time != nil || update.Duration != nil || update.Status != nil {
			return errors.NewValidation(fmt.Sprintf("appointment is already %s", current.Status))
		}
		return nil
	}
	if update.Status != nil && !update.Status.Valid() {
		return errors.NewValidation(fmt.Sprintf("unknown status %q", *update.Status))
	}
	if update.Date != nil || update.Time != nil || update.Duration != nil {
		return validateSlot(next.Date, next.Time, next.Duration)
	}
	return nil
}

func conflictWith(date model.Date, at model.TimeOfDay, hit *model.Appointment) error {
	return errors.NewConflict(fmt.Sprintf(
		"%s %s overlaps an appointment from %s to %s", date, at, hit.Time, hit.End()))
}

func find(appts []*model.Appointment, id uuid.UUID) *model.Appointment {
	for _, a := range appts {
		if a.ID == id {
			return a
		}
	}
	return nil
}
