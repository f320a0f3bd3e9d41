package scheduling

import (
	"sort"
	"time"

	"github.com/jwalitptl/frontdesk/internal/model"
)

const DaysPerWeek = 7

// DayBucket is one day of a weekly view.
type DayBucket struct {
	Date         model.Date           `json:"date"`
	Weekday      string               `json:"weekday"`
	Appointments []*model.Appointment `json:"appointments"`
}

// OnDate returns the appointments on date ordered by start time, ties by id.
func OnDate(appts []*model.Appointment, date model.Date) []*model.Appointment {
	out := make([]*model.Appointment, 0)
	for _, a := range appts {
		if a.Date == date {
			out = append(out, a)
		}
	}
	SortByTime(out)
	return out
}

// SortByTime orders appts by date, then start time, then id.
func SortByTime(appts []*model.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		a, b := appts[i], appts[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID.String() < b.ID.String()
	})
}

// WeekStart returns the Sunday on or before ref.
func WeekStart(ref model.Date) model.Date {
	return ref.AddDays(-int(ref.Weekday() - time.Sunday))
}

// Week splits appts into seven buckets, Sunday through Saturday, for the week
// containing ref.
func Week(appts []*model.Appointment, ref model.Date) []DayBucket {
	start := WeekStart(ref)
	buckets := make([]DayBucket, DaysPerWeek)
	for i := range buckets {
		day := start.AddDays(i)
		buckets[i] = DayBucket{
			Date:         day,
			Weekday:      day.Weekday().String(),
			Appointments: OnDate(appts, day),
		}
	}
	return buckets
}

// Available returns the slots of a grid that are not blocked.
func Available(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, 0, len(slots))
	for _, s := range slots {
		if !s.Blocked {
			out = append(out, s)
		}
	}
	return out
}
