package scheduling

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// Overlaps reports whether [start, start+duration) on date intersects any
// appointment in existing on the same date. Intervals are half-open, so an
// appointment ending at 09:30 does not collide with one starting at 09:30.
//
// Callers filter existing by status and drop the appointment being edited.
func Overlaps(date model.Date, start model.TimeOfDay, duration int, existing []*model.Appointment) bool {
	return FirstOverlap(date, start, duration, existing) != nil
}

// FirstOverlap returns the first appointment that collides with the candidate, or nil.
func FirstOverlap(date model.Date, start model.TimeOfDay, duration int, existing []*model.Appointment) *model.Appointment {
	end := start.Add(duration)
	for _, a := range existing {
		if a == nil || a.Date != date {
			continue
		}
		if intervalsOverlap(start, end, a.Time, a.End()) {
			return a
		}
	}
	return nil
}

func intervalsOverlap(aStart, aEnd, bStart, bEnd model.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// Excluding returns appts without the appointment identified by id.
func Excluding(appts []*model.Appointment, id uuid.UUID) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

// Scheduled keeps only appointments that still hold their time.
func Scheduled(appts []*model.Appointment) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.IsScheduled() {
			out = append(out, a)
		}
	}
	return out
}
