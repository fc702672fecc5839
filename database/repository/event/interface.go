package eventRepo

import (
	"context"
	"time"

	"bookline/models"
)

// EventRepository defines persistence methods for calendar events.
type EventRepository interface {
	FetchEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error)
	UpdateEventStatus(ctx context.Context, eventID, status string) error
}
