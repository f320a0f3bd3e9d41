package appointment

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
)

const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentUpdated     = "appointment.updated"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCompleted   = "appointment.completed"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentRemoved     = "appointment.removed"
	EventCustomSlotAdded        = "slot.custom_added"
	EventCustomSlotRemoved      = "slot.custom_removed"
)

// AppointmentEvent is the payload of every appointment.* event.
type AppointmentEvent struct {
	ID        uuid.UUID               `json:"id"`
	PatientID uuid.UUID               `json:"patient_id"`
	Date      model.Date              `json:"date"`
	Time      model.TimeOfDay         `json:"time"`
	Duration  int                     `json:"duration"`
	Status    model.AppointmentStatus `json:"status"`
}

func newAppointmentEvent(a *model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		ID:        a.ID,
		PatientID: a.PatientID,
		Date:      a.Date,
		Time:      a.Time,
		Duration:  a.Duration,
		Status:    a.Status,
	}
}

// SlotEvent is the payload of slot.* events.
type SlotEvent struct {
	Time model.TimeOfDay `json:"time"`
}
