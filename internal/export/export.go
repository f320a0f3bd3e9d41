// Package export renders appointments and patients for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/jwalitptl/frontdesk/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	appointmentHeader = []string{
		"Date", "Time", "Patient Name", "Phone", "Duration (min)",
		"Notes", "Status", "Created At", "Updated At",
	}
	patientHeader = []string{
		"Serial Number", "Name", "Phone", "Age", "Sex", "Marital Status",
		"Problem", "Times of Visit", "Created At", "Updated At",
	}
)

// Filename returns the download name for kind on day, e.g. appointments_data_20240610.csv.
func Filename(kind, ext string, day time.Time) string {
	return fmt.Sprintf("%s_data_%s.%s", kind, day.Format("20060102"), ext)
}

// WriteAppointmentsCSV writes appts in the order given.
func WriteAppointmentsCSV(w io.Writer, appts []*model.Appointment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(appointmentHeader); err != nil {
		return err
	}
	for _, a := range appts {
		if err := cw.Write([]string{
			a.Date.String(),
			a.Time.String(),
			a.PatientName,
			a.PatientPhone,
			strconv.Itoa(a.Duration),
			a.Notes,
			string(a.Status),
			formatTimestamp(a.CreatedAt),
			formatTimestamp(a.UpdatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WritePatientsCSV(w io.Writer, patients []*model.Patient) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(patientHeader); err != nil {
		return err
	}
	for _, p := range patients {
		if err := cw.Write([]string{
			p.SerialNumber,
			p.Name,
			p.Phone,
			strconv.Itoa(p.Age),
			p.Sex,
			p.MaritalStatus,
			p.Problem,
			strconv.Itoa(p.TimesOfVisit),
			formatTimestamp(p.CreatedAt),
			formatTimestamp(p.UpdatedAt),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// WriteAppointmentsICS encodes appts as a VCALENDAR. Wall-clock times are
// interpreted in loc and written in UTC.
func WriteAppointmentsICS(w io.Writer, appts []*model.Appointment, loc *time.Location, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//frontdesk//appointments//EN")

	for _, a := range appts {
		cal.Children = append(cal.Children, toICal(a, loc, now))
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode appointments to iCal format: %w", err)
	}
	return nil
}

func toICal(a *model.Appointment, loc *time.Location, now time.Time) *ical.Component {
	start := a.Time.On(a.Date, loc)

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, a.ID.String()+"@frontdesk")
	ve.Props.SetText(ical.PropSummary, fmt.Sprintf("Appointment: %s", a.PatientName))
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Duration(a.Duration)*time.Minute).UTC())
	ve.Props.SetText(ical.PropStatus, icalStatus(a.Status))

	if a.Notes != "" {
		ve.Props.SetText(ical.PropDescription, a.Notes)
	}
	if a.PatientPhone != "" {
		p := ical.NewProp(ical.PropContact)
		p.SetText(a.PatientPhone)
		ve.Props.Add(p)
	}
	return ve
}

func icalStatus(s model.AppointmentStatus) string {
	if s == model.AppointmentStatusCancelled {
		return "CANCELLED"
	}
	return "CONFIRMED"
}
