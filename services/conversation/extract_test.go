package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday, 2026-02-04, 09:00 UTC.
var extractNow = time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"iso date", "book me on 2026-03-15 please", "2026-03-15"},
		{"today", "can I come in today?", "2026-02-04"},
		{"tomorrow", "tomorrow would be great", "2026-02-05"},
		{"french tomorrow", "je voudrais venir demain", "2026-02-05"},
		{"weekday", "how about friday?", "2026-02-06"},
		{"french weekday", "vendredi si possible", "2026-02-06"},
		{"same weekday rolls a week", "next wednesday", "2026-02-11"},
		{"nothing", "I'd like an appointment", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ExtractSlots(tt.text, extractNow)
			assert.Equal(t, tt.want, slots.Date)
		})
	}
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"24h clock", "at 14:30 works", "14:30"},
		{"am", "9:15 am if you can", "09:15"},
		{"pm", "let's say 2pm", "14:00"},
		{"noon pm", "12pm sharp", "12:00"},
		{"midnight am", "12am is fine", "00:00"},
		{"french hour", "demain à 14h", "14:00"},
		{"french hour minutes", "plutôt 9h45", "09:45"},
		{"none", "whenever you have room", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ExtractSlots(tt.text, extractNow)
			assert.Equal(t, tt.want, slots.Time)
		})
	}
}

func TestExtractContactDetails(t *testing.T) {
	slots := ExtractSlots("reach me at anna.martin+work@example.co.uk or +33 6 12 34 56 78", extractNow)
	assert.Equal(t, "anna.martin+work@example.co.uk", slots.ClientEmail)
	assert.NotEmpty(t, slots.ClientPhone)

	// Email digits must not be misread as a phone number.
	slots = ExtractSlots("mail me at user12345678@example.com", extractNow)
	assert.Equal(t, "user12345678@example.com", slots.ClientEmail)
	assert.Empty(t, slots.ClientPhone)

	// Neither must a date: a fabricated phone would trigger a bogus
	// confirmation promise.
	slots = ExtractSlots("book me on 2026-03-15 please", extractNow)
	assert.Equal(t, "2026-03-15", slots.Date)
	assert.Empty(t, slots.ClientPhone)
}

func TestExtractDuration(t *testing.T) {
	assert.Equal(t, 45, ExtractSlots("45 minutes should do", extractNow).DurationMinutes)
	assert.Equal(t, 120, ExtractSlots("a session of 2 hours", extractNow).DurationMinutes)
	assert.Equal(t, 0, ExtractSlots("the usual", extractNow).DurationMinutes)
}

func TestIsAffirmative(t *testing.T) {
	for _, text := range []string{"yes", "Yes please", "ok, go ahead", "oui", "confirm", "sure!"} {
		assert.True(t, isAffirmative(text), text)
	}
	for _, text := range []string{"no", "not yet", "maybe another day", "what about 15:00"} {
		assert.False(t, isAffirmative(text), text)
	}
}
