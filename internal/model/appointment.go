package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// DefaultDurationMinutes applies when a booking does not say how long it takes.
const DefaultDurationMinutes = 30

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName  string            `db:"patient_name" json:"patient_name"`
	PatientPhone string            `db:"patient_phone" json:"patient_phone"`
	Date         Date              `db:"date" json:"date"`
	Time         TimeOfDay         `db:"time" json:"time"`
	Duration     int               `db:"duration" json:"duration"`
	Notes        string            `db:"notes" json:"notes"`
	Status       AppointmentStatus `db:"status" json:"status"`
}

// End is the exclusive end of the appointment on its own date.
func (a *Appointment) End() TimeOfDay {
	return a.Time.Add(a.Duration)
}

func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// AppointmentUpdate carries the fields of a partial update; nil means unchanged.
type AppointmentUpdate struct {
	Date     *Date              `json:"date,omitempty"`
	Time     *TimeOfDay         `json:"time,omitempty"`
	Duration *int               `json:"duration,omitempty"`
	Notes    *string            `json:"notes,omitempty"`
	Status   *AppointmentStatus `json:"status,omitempty"`
}

func (u AppointmentUpdate) Empty() bool {
	return u.Date == nil && u.Time == nil && u.Duration == nil && u.Notes == nil && u.Status == nil
}

// Apply copies the set fields onto a.
func (u AppointmentUpdate) Apply(a *Appointment) {
	if u.Date != nil {
		a.Date = *u.Date
	}
	if u.Time != nil {
		a.Time = *u.Time
	}
	if u.Duration != nil {
		a.Duration = *u.Duration
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
}

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,isodate"`
	Time      string `json:"time" binding:"required,hhmm"`
	Duration  int    `json:"duration" binding:"omitempty,min=1,max=1440"`
	Notes     string `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Date     *string `json:"date" binding:"omitempty,isodate"`
	Time     *string `json:"time" binding:"omitempty,hhmm"`
	Duration *int    `json:"duration" binding:"omitempty,min=1,max=1440"`
	Notes    *string `json:"notes" binding:"omitempty,max=1000"`
	Status   *string `json:"status" binding:"omitempty,oneof=completed cancelled"`
}

// ToUpdate parses the request into a partial update.
func (r UpdateAppointmentRequest) ToUpdate() (AppointmentUpdate, error) {
	var u AppointmentUpdate
	if r.Date != nil {
		d, err := ParseDate(*r.Date)
		if err != nil {
			return u, err
		}
		u.Date = &d
	}
	if r.Time != nil {
		t, err := ParseTimeOfDay(*r.Time)
		if err != nil {
			return u, err
		}
		u.Time = &t
	}
	if r.Status != nil {
		s := AppointmentStatus(*r.Status)
		u.Status = &s
	}
	u.Duration = r.Duration
	u.Notes = r.Notes
	return u, nil
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required,isodate"`
	Time string `json:"time" binding:"required,hhmm"`
}

type CustomSlotRequest struct {
	Time string `json:"time" binding:"required,hhmm"`
}
