package models

import "time"

// Event status values. Cancellation is a status change, never a deletion.
const (
	EventConfirmed = "confirmed"
	EventTentative = "tentative"
	EventCancelled = "cancelled"
)

// DayHours is the open/close window for a single weekday, in wall-clock
// minutes from midnight (e.g., 540 for 9:00 AM). A nil entry in
// BusinessHours means the business is closed that day.
type DayHours struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// BusinessHours maps weekdays to their open/close windows.
type BusinessHours map[time.Weekday]*DayHours

// HoursFor returns the window for the given weekday, or nil when closed.
func (bh BusinessHours) HoursFor(day time.Weekday) *DayHours {
	return bh[day]
}

// CalendarConfig is the booking policy the availability service enforces.
// It is replaced wholesale, never patched field by field.
type CalendarConfig struct {
	Hours              BusinessHours `json:"businessHours"`
	Timezone           string        `json:"timezone"`
	BufferMinutes      int           `json:"bufferMinutes"`
	AdvanceBookingDays int           `json:"advanceBookingDays"`
	MaxBookingDays     int           `json:"maxBookingDays"`
}

// CalendarEvent is a single appointment held by an event source.
type CalendarEvent struct {
	ID     string    `bson:"id" json:"id"`
	Title  string    `bson:"title" json:"title"`
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	Status string    `bson:"status" json:"status"`
	Source string    `bson:"source" json:"source"`
}

// Blocks reports whether the event should be considered for conflict
// detection. Cancelled events free their window.
func (e CalendarEvent) Blocks() bool {
	return e.Status != EventCancelled
}

// TimeSlot is a derived candidate appointment window. It is recomputed on
// every availability query and never persisted.
type TimeSlot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Available   bool      `json:"available"`
	ConflictIDs []string  `json:"conflictIds,omitempty"`
}

// BookingRequest carries everything needed to create an appointment.
// Date is "2006-01-02", Time is "15:04" wall clock in the calendar timezone.
type BookingRequest struct {
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	DurationMinutes int    `json:"durationMinutes"`
	Title           string `json:"title"`
	ClientEmail     string `json:"clientEmail,omitempty"`
	ClientPhone     string `json:"clientPhone,omitempty"`
	ServiceType     string `json:"serviceType"`
	Notes           string `json:"notes,omitempty"`
}

// BookingResult reports a successful booking, including which configured
// provider ultimately stored the event.
type BookingResult struct {
	EventID  string `json:"eventId"`
	Provider string `json:"provider"`
}
