package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/scheduling"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
)

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func renderAppointments(out io.Writer, appts []*model.Appointment) error {
	if len(appts) == 0 {
		_, err := fmt.Fprintln(out, "No appointments.")
		return err
	}
	w := table(out)
	fmt.Fprintln(w, "TIME\tEND\tPATIENT\tPHONE\tSTATUS\tID")
	for _, a := range appts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.Time, a.End(), a.PatientName, a.PatientPhone, a.Status, a.ID)
	}
	return w.Flush()
}

func renderWeek(out io.Writer, week []scheduling.DayBucket) error {
	w := table(out)
	for _, day := range week {
		fmt.Fprintf(w, "%s %s\t\t\n", day.Weekday[:3], day.Date)
		if len(day.Appointments) == 0 {
			fmt.Fprintln(w, "  -\t\t")
			continue
		}
		for _, a := range day.Appointments {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Time, a.PatientName, a.Status)
		}
	}
	return w.Flush()
}

func renderDay(out io.Writer, day *appointment.DaySchedule) error {
	w := table(out)
	for _, s := range day.Slots {
		state := "free"
		if s.Blocked {
			state = "booked"
		}
		origin := ""
		if s.Origin == scheduling.SlotOriginCustom {
			origin = "custom"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Time, state, origin)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(day.OffGrid) > 0 {
		times := make([]string, len(day.OffGrid))
		for i, t := range day.OffGrid {
			times[i] = t.String()
		}
		_, err := fmt.Fprintf(out, "Also booked outside the grid: %s\n", strings.Join(times, ", "))
		return err
	}
	return nil
}

func renderPatients(out io.Writer, patients []*model.Patient) error {
	if len(patients) == 0 {
		_, err := fmt.Fprintln(out, "No patients found.")
		return err
	}
	w := table(out)
	fmt.Fprintln(w, "SERIAL\tNAME\tPHONE\tAGE\tVISITS\tID")
	for _, p := range patients {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", p.SerialNumber, p.Name, p.Phone, p.Age, p.TimesOfVisit, p.ID)
	}
	return w.Flush()
}
