package availability

import (
	"context"
	"sync"
	"time"

	"bookline/models"

	"github.com/google/uuid"
)

// MemoryEventSource is an in-process event store. It backs the internal
// calendar when no external provider is configured, and the tests.
type MemoryEventSource struct {
	mu     sync.RWMutex
	events []models.CalendarEvent
}

func NewMemoryEventSource() *MemoryEventSource {
	return &MemoryEventSource{}
}

// FetchEvents returns every stored event overlapping [from, to).
func (m *MemoryEventSource) FetchEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.CalendarEvent
	for _, ev := range m.events {
		if ev.Start.Before(to) && ev.End.After(from) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// CreateEvent stores the event and returns its id.
func (m *MemoryEventSource) CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Status == "" {
		event.Status = models.EventConfirmed
	}
	m.events = append(m.events, event)
	return event.ID, nil
}

// UpdateEventStatus changes a stored event's status.
func (m *MemoryEventSource) UpdateEventStatus(ctx context.Context, eventID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.events {
		if m.events[i].ID == eventID {
			m.events[i].Status = status
			return nil
		}
	}
	return NewProviderFailureError("event " + eventID + " not found")
}
