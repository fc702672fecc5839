package conversation

import (
	"fmt"
	"strings"
	"time"

	"bookline/models"
)

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Reply texts are a pure function of intent, slots, and what the
// availability lookup produced. Nothing in here touches I/O.

const (
	welcomeReply = "Hello! I can help you book an appointment, check our opening hours, or tell you about our services. What can I do for you?"
	fallbackReply = "I'm not sure I follow. I can book appointments, share our opening hours, or describe our services. What would you like?"
	cancelReply   = "Alright, I've discarded that booking. Let me know if you'd like to start over."
	modifyReply   = "To change an existing appointment, tell me the new date and time you'd prefer."
)

func hoursReply(hours models.BusinessHours) string {
	var b strings.Builder
	b.WriteString("Our opening hours are: ")
	var parts []string
	for _, day := range weekOrder {
		dh := hours.HoursFor(day)
		if dh == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s-%s", day.String()[:3], clockString(dh.Open), clockString(dh.Close)))
	}
	if len(parts) == 0 {
		return "We are currently closed every day."
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(".")
	return b.String()
}

func servicesReply(serviceTypes []string) string {
	if len(serviceTypes) == 0 {
		return "We offer general appointments. Would you like to book one?"
	}
	return "We offer: " + strings.Join(serviceTypes, ", ") + ". Would you like to book one?"
}

func askDateReply() string {
	return "Sure, I can book that. What date works for you?"
}

func askTimeReply(date string, proposals []models.TimeSlot) string {
	if len(proposals) == 0 {
		return fmt.Sprintf("I'm afraid there are no openings on %s. Could you try another day?", date)
	}
	return fmt.Sprintf("Great, on %s we have: %s. Which time works for you?",
		date, formatSlots(proposals))
}

func confirmSlotReply(slots models.Slots) string {
	duration := slots.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	return fmt.Sprintf("I can book you %s at %s for %d minutes. Shall I confirm?",
		slots.Date, slots.Time, duration)
}

func conflictReply(slots models.Slots, alternatives []models.TimeSlot) string {
	if len(alternatives) == 0 {
		return fmt.Sprintf("Unfortunately %s at %s is no longer free and that day is fully booked. Could you try another date?",
			slots.Date, slots.Time)
	}
	return fmt.Sprintf("Unfortunately %s at %s is already taken. Still free: %s. Would one of those work?",
		slots.Date, slots.Time, formatSlots(alternatives))
}

func outOfPolicyReply(message string) string {
	return fmt.Sprintf("That time won't work: %s. Could you pick another date or time?", message)
}

func providerTroubleReply() string {
	return "I'm having trouble reaching the calendar right now. Please try again in a moment."
}

func bookedReply(slots models.Slots) string {
	reply := fmt.Sprintf("All set, I'm booking %s at %s.", slots.Date, slots.Time)
	if slots.ClientEmail != "" || slots.ClientPhone != "" {
		reply += " You'll receive a confirmation shortly."
	}
	return reply
}

func formatSlots(slots []models.TimeSlot) string {
	// Cap the list so replies stay readable.
	const maxShown = 6
	var parts []string
	for i, s := range slots {
		if i == maxShown {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, s.Start.Format("15:04"))
	}
	return strings.Join(parts, ", ")
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
