// Package scheduling holds the pure parts of the appointment engine: the day's
// slot grid, interval overlap and the projection of appointments onto slots.
package scheduling

import (
	"sort"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// StepMinutes is the spacing of the fixed grid and of blocking samples.
const StepMinutes = 30

// The fixed grid runs from GridStart inclusive to GridEnd exclusive.
var (
	GridStart = model.Clock(9, 0)
	GridEnd   = model.Clock(18, 0)
)

type SlotOrigin string

const (
	SlotOriginFixed  SlotOrigin = "fixed"
	SlotOriginCustom SlotOrigin = "custom"
)

// TimeSlot is a bookable point in a day. Blocked is filled in per query.
type TimeSlot struct {
	Time    model.TimeOfDay `json:"time"`
	Origin  SlotOrigin      `json:"origin"`
	Blocked bool            `json:"blocked"`
}

// FixedGrid returns the fixed half-hour slots of a clinic day.
func FixedGrid() []model.TimeOfDay {
	out := make([]model.TimeOfDay, 0, int(GridEnd-GridStart)/StepMinutes)
	for t := GridStart; t < GridEnd; t = t.Add(StepMinutes) {
		out = append(out, t)
	}
	return out
}

// GenerateGrid merges the fixed grid with custom slots, ascending by time.
// A custom slot that repeats a fixed one is dropped; repeated customs collapse.
func GenerateGrid(custom []model.TimeOfDay) []TimeSlot {
	fixed := FixedGrid()
	seen := make(map[model.TimeOfDay]struct{}, len(fixed)+len(custom))
	slots := make([]TimeSlot, 0, len(fixed)+len(custom))

	for _, t := range fixed {
		seen[t] = struct{}{}
		slots = append(slots, TimeSlot{Time: t, Origin: SlotOriginFixed})
	}
	for _, t := range custom {
		if !t.Valid() {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		slots = append(slots, TimeSlot{Time: t, Origin: SlotOriginCustom})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots
}
