package availability

import (
	"time"

	"bookline/models"
)

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries are not an overlap: a slot ending exactly when an event
// starts does not conflict with it.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// GenerateSlots computes the candidate appointment windows for one day.
// It steps through the business-hours window by intervalMin, emitting a
// slot of durationMin at each step; a slot whose end would pass closing
// time is not generated. Each slot is tested against every supplied
// event, with blocking events widened by bufferMin on both sides.
//
// The day anchor is midnight of the target date in its own location.
// Closed days produce an empty sequence. Output is strictly ordered by
// start time ascending. Pure function: no I/O, no mutation of inputs.
func GenerateSlots(
	date time.Time,
	durationMin, intervalMin, bufferMin int,
	hours models.BusinessHours,
	events []models.CalendarEvent,
) []models.TimeSlot {
	dh := hours.HoursFor(date.Weekday())
	if dh == nil {
		return nil
	}
	if durationMin <= 0 || intervalMin <= 0 {
		return nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	buffer := time.Duration(bufferMin) * time.Minute

	var slots []models.TimeSlot
	for startMin := dh.Open; startMin+durationMin <= dh.Close; startMin += intervalMin {
		slotStart := dayStart.Add(time.Duration(startMin) * time.Minute)
		slotEnd := slotStart.Add(time.Duration(durationMin) * time.Minute)

		var conflicts []string
		for _, ev := range events {
			if !ev.Blocks() {
				continue
			}
			if Overlaps(slotStart, slotEnd, ev.Start.Add(-buffer), ev.End.Add(buffer)) {
				conflicts = append(conflicts, ev.ID)
			}
		}

		slots = append(slots, models.TimeSlot{
			Start:       slotStart,
			End:         slotEnd,
			Available:   len(conflicts) == 0,
			ConflictIDs: conflicts,
		})
	}
	return slots
}

// FilterAvailable keeps only the slots without conflicts. The service
// returns all computed slots; user-facing layers apply this filter.
func FilterAvailable(slots []models.TimeSlot) []models.TimeSlot {
	var out []models.TimeSlot
	for _, s := range slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}
