package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookline/models"
	"bookline/utils"

	"go.uber.org/zap"
)

// Defaults applied when a caller leaves optional values unset.
const (
	DefaultDurationMinutes = 60
	DefaultIntervalMinutes = 30
	DefaultServiceType     = "general"

	defaultProviderTimeout = 10 * time.Second
)

// EventSource is the capability an event backend must provide. The
// in-memory store, the Mongo repository, and real calendar integrations
// all satisfy it.
type EventSource interface {
	FetchEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event models.CalendarEvent) (string, error)
}

// Service computes bookable slots and creates bookings against the
// configured event sources.
type Service interface {
	GetAvailableSlots(ctx context.Context, date string, durationMin, intervalMin int) ([]models.TimeSlot, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (models.BookingResult, error)
	ConfigureProvider(name string, source EventSource)
	Config() models.CalendarConfig
	UpdateConfig(cfg models.CalendarConfig) error
}

type namedSource struct {
	name   string
	source EventSource
}

// DefaultAvailabilityService is the production implementation.
type DefaultAvailabilityService struct {
	mu        sync.RWMutex
	cfg       models.CalendarConfig
	loc       *time.Location
	providers []namedSource

	locks   *keyedMutex
	timeout time.Duration
}

// NewDefaultAvailabilityService builds a service with the given policy.
// The config is validated the same way UpdateConfig validates it.
func NewDefaultAvailabilityService(cfg models.CalendarConfig) (*DefaultAvailabilityService, error) {
	loc, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &DefaultAvailabilityService{
		cfg:     cfg,
		loc:     loc,
		locks:   newKeyedMutex(),
		timeout: defaultProviderTimeout,
	}, nil
}

// ConfigureProvider registers an event source. Registration order is the
// booking preference order; conflict checks merge events from all
// registered sources.
func (s *DefaultAvailabilityService) ConfigureProvider(name string, source EventSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.providers {
		if p.name == name {
			s.providers[i].source = source
			return
		}
	}
	s.providers = append(s.providers, namedSource{name: name, source: source})
}

// Config returns a copy of the current booking policy.
func (s *DefaultAvailabilityService) Config() models.CalendarConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// UpdateConfig replaces the booking policy wholesale. Partial merges are
// deliberately not offered: a half-applied config could make
// maxBookingDays precede advanceBookingDays.
func (s *DefaultAvailabilityService) UpdateConfig(cfg models.CalendarConfig) error {
	loc, err := validateConfig(cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.loc = loc
	s.mu.Unlock()
	return nil
}

func validateConfig(cfg models.CalendarConfig) (*time.Location, error) {
	if cfg.AdvanceBookingDays < 0 {
		return nil, fmt.Errorf("advanceBookingDays must not be negative")
	}
	if cfg.MaxBookingDays < cfg.AdvanceBookingDays {
		return nil, fmt.Errorf("maxBookingDays %d must not precede advanceBookingDays %d",
			cfg.MaxBookingDays, cfg.AdvanceBookingDays)
	}
	for day, dh := range cfg.Hours {
		if dh == nil {
			continue
		}
		if dh.Open >= dh.Close {
			return nil, fmt.Errorf("%s: open %d must precede close %d", day, dh.Open, dh.Close)
		}
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// GetAvailableSlots fetches the day's events from every configured
// source, merges them, and delegates to the slot calculus. Both available
// and unavailable slots are returned; callers filter as needed.
func (s *DefaultAvailabilityService) GetAvailableSlots(ctx context.Context, date string, durationMin, intervalMin int) ([]models.TimeSlot, error) {
	s.mu.RLock()
	cfg, loc, providers := s.cfg, s.loc, s.providers
	s.mu.RUnlock()

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date))
	}
	if durationMin <= 0 {
		durationMin = DefaultDurationMinutes
	}
	if intervalMin <= 0 {
		intervalMin = DefaultIntervalMinutes
	}

	events, err := s.mergedEvents(ctx, providers, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return GenerateSlots(day, durationMin, intervalMin, cfg.BufferMinutes, cfg.Hours, events), nil
}

// mergedEvents collects events from all sources for [from, to). A fetch
// failure anywhere aborts with a provider failure: conflict decisions
// made on a partial view could double-book.
func (s *DefaultAvailabilityService) mergedEvents(ctx context.Context, providers []namedSource, from, to time.Time) ([]models.CalendarEvent, error) {
	logger := utils.GetLogger()

	var all []models.CalendarEvent
	for _, p := range providers {
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		events, err := p.source.FetchEvents(fetchCtx, from, to)
		cancel()
		if err != nil {
			logger.Error("event fetch failed",
				zap.String("provider", p.name), zap.Error(err))
			return nil, NewProviderFailureError(fmt.Sprintf("provider %s: %v", p.name, err))
		}
		all = append(all, events...)
	}
	return all, nil
}

// CreateBooking validates the request against the booking policy, then
// re-checks conflicts and persists the event under a per-(provider, date)
// lock. The recheck at booking time closes the race between a slot being
// shown as available and the booking being submitted.
func (s *DefaultAvailabilityService) CreateBooking(ctx context.Context, req models.BookingRequest) (models.BookingResult, error) {
	s.mu.RLock()
	cfg, loc, providers := s.cfg, s.loc, s.providers
	s.mu.RUnlock()

	if len(providers) == 0 {
		return models.BookingResult{}, NewProviderFailureError("no event source configured")
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, loc)
	if err != nil {
		return models.BookingResult{}, NewValidationError(
			fmt.Sprintf("invalid date/time %q %q", req.Date, req.Time))
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	if berr := validateWindow(start, end, cfg, time.Now().In(loc)); berr != nil {
		return models.BookingResult{}, berr
	}

	// Serialize check-then-create per provider and date. Locks are taken
	// in registration order, which is fixed, so concurrent bookings
	// cannot deadlock.
	for _, p := range providers {
		unlock := s.locks.Lock(p.name + "|" + req.Date)
		defer unlock()
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	events, err := s.mergedEvents(ctx, providers, day, day.AddDate(0, 0, 1))
	if err != nil {
		return models.BookingResult{}, err
	}

	buffer := time.Duration(cfg.BufferMinutes) * time.Minute
	for _, ev := range events {
		if !ev.Blocks() {
			continue
		}
		if Overlaps(start, end, ev.Start.Add(-buffer), ev.End.Add(buffer)) {
			return models.BookingResult{}, NewConflictError(
				fmt.Sprintf("requested window overlaps event %s", ev.ID))
		}
	}

	serviceType := req.ServiceType
	if serviceType == "" {
		serviceType = DefaultServiceType
	}
	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s appointment", serviceType)
	}

	logger := utils.GetLogger()
	var lastErr error
	for _, p := range providers {
		createCtx, cancel := context.WithTimeout(ctx, s.timeout)
		eventID, err := p.source.CreateEvent(createCtx, models.CalendarEvent{
			Title:  title,
			Start:  start,
			End:    end,
			Status: models.EventConfirmed,
			Source: p.name,
		})
		cancel()
		if err != nil {
			logger.Warn("event creation failed, trying next provider",
				zap.String("provider", p.name), zap.Error(err))
			lastErr = err
			continue
		}
		return models.BookingResult{EventID: eventID, Provider: p.name}, nil
	}
	return models.BookingResult{}, NewProviderFailureError(
		fmt.Sprintf("all providers rejected the booking: %v", lastErr))
}

// validateWindow enforces the booking policy. Checks run in a fixed
// order and the first failure is reported: lead time, horizon, weekday,
// hours.
func validateWindow(start, end time.Time, cfg models.CalendarConfig, now time.Time) *BookingError {
	earliest := now.AddDate(0, 0, cfg.AdvanceBookingDays)
	if start.Before(earliest) {
		return NewInvalidWindowError(fmt.Sprintf(
			"bookings require %d day(s) notice", cfg.AdvanceBookingDays))
	}
	latest := now.AddDate(0, 0, cfg.MaxBookingDays)
	if start.After(latest) {
		return NewInvalidWindowError(fmt.Sprintf(
			"bookings are accepted at most %d day(s) ahead", cfg.MaxBookingDays))
	}

	dh := cfg.Hours.HoursFor(start.Weekday())
	if dh == nil {
		return NewOutOfHoursError(fmt.Sprintf("closed on %s", start.Weekday()))
	}
	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + int(end.Sub(start).Minutes())
	if startMin < dh.Open || endMin > dh.Close {
		return NewOutOfHoursError(fmt.Sprintf(
			"requested window falls outside business hours (%02d:%02d-%02d:%02d)",
			dh.Open/60, dh.Open%60, dh.Close/60, dh.Close%60))
	}
	return nil
}
