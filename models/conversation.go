package models

import "time"

// IntentType classifies the purpose of a user message.
type IntentType string

const (
	IntentBook        IntentType = "book"
	IntentModify      IntentType = "modify"
	IntentCancel      IntentType = "cancel"
	IntentServiceInfo IntentType = "service_info"
	IntentHoursInfo   IntentType = "hours_info"
	IntentGreeting    IntentType = "greeting"
	IntentOther       IntentType = "other"
)

// Entity is a structured value a classifier pulled out of free text.
type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Intent is produced fresh each turn; it persists across turns only
// through its effect on the accumulated slots.
type Intent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Entities   []Entity   `json:"entities,omitempty"`
}

// Stage is the derived classification of where a conversation stands.
// It is recomputed every turn and may move backward.
type Stage string

const (
	StageGreeting            Stage = "greeting"
	StageIntentDetection     Stage = "intent_detection"
	StageSlotGathering       Stage = "slot_gathering"
	StageSlotConfirmation    Stage = "slot_confirmation"
	StageProposalGeneration  Stage = "proposal_generation"
	StageBookingConfirmation Stage = "booking_confirmation"
	StageCompletion          Stage = "completion"
)

// Slots accumulates booking fields across turns. New non-empty extractions
// overwrite same-named fields; everything else persists.
type Slots struct {
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	ServiceType     string `json:"serviceType,omitempty"`
	ClientName      string `json:"clientName,omitempty"`
	ClientEmail     string `json:"clientEmail,omitempty"`
	ClientPhone     string `json:"clientPhone,omitempty"`
	Location        string `json:"location,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Merge folds newer extractions into s, keeping existing values where the
// newer extraction is empty.
func (s *Slots) Merge(in Slots) {
	if in.Date != "" {
		s.Date = in.Date
	}
	if in.Time != "" {
		s.Time = in.Time
	}
	if in.DurationMinutes > 0 {
		s.DurationMinutes = in.DurationMinutes
	}
	if in.ServiceType != "" {
		s.ServiceType = in.ServiceType
	}
	if in.ClientName != "" {
		s.ClientName = in.ClientName
	}
	if in.ClientEmail != "" {
		s.ClientEmail = in.ClientEmail
	}
	if in.ClientPhone != "" {
		s.ClientPhone = in.ClientPhone
	}
	if in.Location != "" {
		s.Location = in.Location
	}
	if in.Notes != "" {
		s.Notes = in.Notes
	}
}

// HasRequired reports whether the fields mandatory for a booking action
// are present. Duration and service type default, they never block.
func (s Slots) HasRequired() bool {
	return s.Date != "" && s.Time != ""
}

// Message is one turn in the session history.
type Message struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationContext is the per-session state persisted between turns.
type ConversationContext struct {
	SessionID    string            `json:"sessionId"`
	History      []Message         `json:"history"`
	Intent       Intent            `json:"currentIntent"`
	Slots        Slots             `json:"extractedSlots"`
	Stage        Stage             `json:"conversationStage"`
	AwaitConfirm bool              `json:"awaitingConfirmation"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
	Preferences  map[string]string `json:"userPreferences,omitempty"`
}
