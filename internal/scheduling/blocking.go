package scheduling

import (
	"sort"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// BlockedSet is the set of times of day occupied on one date.
type BlockedSet map[model.TimeOfDay]struct{}

func (b BlockedSet) Has(t model.TimeOfDay) bool {
	_, ok := b[t]
	return ok
}

// Sorted returns the members in ascending order.
func (b BlockedSet) Sorted() []model.TimeOfDay {
	out := make([]model.TimeOfDay, 0, len(b))
	for t := range b {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BlockedSlots samples every appointment on date from its own start in
// StepMinutes increments while the sample is before its end. A 45 minute
// appointment at 09:10 therefore blocks 09:10 and 09:40. Samples that fall
// past midnight belong to the next day and are dropped.
func BlockedSlots(date model.Date, appts []*model.Appointment) BlockedSet {
	blocked := make(BlockedSet)
	for _, a := range appts {
		if a == nil || a.Date != date || a.Duration <= 0 {
			continue
		}
		end := a.End()
		for t := a.Time; t < end && t.Valid(); t = t.Add(StepMinutes) {
			blocked[t] = struct{}{}
		}
	}
	return blocked
}

// MarkBlocked sets Blocked on each slot whose time is in blocked and returns the
// blocked times that have no slot in the grid.
func MarkBlocked(slots []TimeSlot, blocked BlockedSet) []model.TimeOfDay {
	onGrid := make(map[model.TimeOfDay]struct{}, len(slots))
	for i := range slots {
		onGrid[slots[i].Time] = struct{}{}
		slots[i].Blocked = blocked.Has(slots[i].Time)
	}

	var offGrid []model.TimeOfDay
	for _, t := range blocked.Sorted() {
		if _, ok := onGrid[t]; !ok {
			offGrid = append(offGrid, t)
		}
	}
	return offGrid
}
