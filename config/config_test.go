package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayHours(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		open    int
		close   int
		closed  bool
		wantErr bool
	}{
		{name: "standard day", spec: "09:00-18:00", open: 540, close: 1080},
		{name: "half day", spec: "10:00-13:30", open: 600, close: 810},
		{name: "surrounding whitespace", spec: "  09:00-18:00  ", open: 540, close: 1080},
		{name: "empty means closed", spec: "", closed: true},
		{name: "blank means closed", spec: "   ", closed: true},
		{name: "missing close", spec: "09:00", wantErr: true},
		{name: "open after close", spec: "18:00-09:00", wantErr: true},
		{name: "open equals close", spec: "09:00-09:00", wantErr: true},
		{name: "garbage open", spec: "morning-18:00", wantErr: true},
		{name: "garbage close", spec: "09:00-late", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dh, err := parseDayHours(tc.spec)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.closed {
				assert.Nil(t, dh)
				return
			}
			require.NotNil(t, dh)
			assert.Equal(t, tc.open, dh.Open)
			assert.Equal(t, tc.close, dh.Close)
		})
	}
}

func TestCalendarConfigFromAppConfig(t *testing.T) {
	saved := AppConfig
	defer func() { AppConfig = saved }()

	AppConfig = Config{
		Timezone:           "Europe/Paris",
		BufferMinutes:      10,
		AdvanceBookingDays: 1,
		MaxBookingDays:     14,
		HoursMon:           "09:00-18:00",
		HoursFri:           "09:00-12:00",
	}

	cfg, err := CalendarConfig()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, 10, cfg.BufferMinutes)
	assert.Equal(t, 1, cfg.AdvanceBookingDays)
	assert.Equal(t, 14, cfg.MaxBookingDays)

	require.NotNil(t, cfg.Hours.HoursFor(time.Monday))
	assert.Equal(t, 540, cfg.Hours.HoursFor(time.Monday).Open)
	require.NotNil(t, cfg.Hours.HoursFor(time.Friday))
	assert.Equal(t, 720, cfg.Hours.HoursFor(time.Friday).Close)
	assert.Nil(t, cfg.Hours.HoursFor(time.Saturday), "unset days are closed")
}

func TestCalendarConfigRejectsBadHours(t *testing.T) {
	saved := AppConfig
	defer func() { AppConfig = saved }()

	AppConfig = Config{HoursWed: "18:00-09:00"}
	_, err := CalendarConfig()
	assert.Error(t, err)
}
