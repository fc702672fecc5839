package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookline/models"
)

var (
	emailRe      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe      = regexp.MustCompile(`\+?\d[\d\s.\-()]{7,}\d`)
	isoDateRe    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	clockRe      = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	meridiemRe   = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	frenchTimeRe = regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`)
	durationRe   = regexp.MustCompile(`\b(\d+)\s*(minutes?|mins?|hours?|heures?)\b`)
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
	"dimanche": time.Sunday, "lundi": time.Monday, "mardi": time.Tuesday,
	"mercredi": time.Wednesday, "jeudi": time.Thursday,
	"vendredi": time.Friday, "samedi": time.Saturday,
}

// ExtractSlots pulls structured booking fields out of free text. Fields
// that cannot be found are simply absent, never errors. Relative dates
// ("tomorrow", "demain", weekday names) resolve against now.
func ExtractSlots(text string, now time.Time) models.Slots {
	var slots models.Slots
	lower := strings.ToLower(text)

	if m := emailRe.FindString(text); m != "" {
		slots.ClientEmail = m
	}
	// Strip emails and ISO dates before phone matching so their digits
	// are not mistaken for a number.
	phoneSource := emailRe.ReplaceAllString(text, "")
	phoneSource = isoDateRe.ReplaceAllString(phoneSource, "")
	if m := phoneRe.FindString(phoneSource); m != "" {
		slots.ClientPhone = strings.TrimSpace(m)
	}

	slots.Date = extractDate(lower, now)
	slots.Time = extractTime(lower)
	slots.DurationMinutes = extractDuration(lower)

	return slots
}

func extractDate(lower string, now time.Time) string {
	if m := isoDateRe.FindString(lower); m != "" {
		if _, err := time.Parse("2006-01-02", m); err == nil {
			return m
		}
	}
	switch {
	case strings.Contains(lower, "today") || strings.Contains(lower, "aujourd'hui"):
		return now.Format("2006-01-02")
	case strings.Contains(lower, "tomorrow") || strings.Contains(lower, "demain"):
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	for name, day := range weekdayNames {
		if strings.Contains(lower, name) {
			return nextWeekday(now, day).Format("2006-01-02")
		}
	}
	return ""
}

// nextWeekday returns the next occurrence of day strictly in the future
// (a bare weekday name never means today).
func nextWeekday(now time.Time, day time.Weekday) time.Time {
	delta := (int(day) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return now.AddDate(0, 0, delta)
}

func extractTime(lower string) string {
	if m := meridiemRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}
	if m := clockRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}
	// French wall-clock form: "14h" or "14h30".
	if m := frenchTimeRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}
	return ""
}

func extractDuration(lower string) int {
	m := durationRe.FindStringSubmatch(lower)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	if strings.HasPrefix(m[2], "hour") || strings.HasPrefix(m[2], "heure") {
		return n * 60
	}
	return n
}

var affirmativeWords = []string{"yes", "yeah", "yep", "sure", "confirm", "ok", "okay", "book it", "go ahead", "oui", "d'accord", "parfait", "confirme"}

// isAffirmative reports whether a message confirms a pending proposal.
func isAffirmative(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, w := range affirmativeWords {
		if lower == w || strings.HasPrefix(lower, w+" ") || strings.HasPrefix(lower, w+",") || strings.HasPrefix(lower, w+"!") || strings.HasPrefix(lower, w+".") {
			return true
		}
	}
	return false
}
