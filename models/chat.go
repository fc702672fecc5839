package models

// Action types the engine may emit for the host to execute.
const (
	ActionCreateBooking    = "create_booking"
	ActionSendConfirmation = "send_confirmation"
)

// ChatRequest is the payload coming into /api/chat/message.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Text      string `json:"text"`
}

// ChatAction is a declarative side effect the host executes on the
// engine's behalf. The engine itself never touches I/O.
type ChatAction struct {
	Type string `json:"type"`
	Data Slots  `json:"data"`
}

// ChatResponse is what a single processed turn returns to the caller.
type ChatResponse struct {
	SessionID string       `json:"sessionId"`
	Reply     string       `json:"reply"`
	Intent    IntentType   `json:"intent"`
	Stage     Stage        `json:"stage"`
	Slots     Slots        `json:"slots"`
	Proposals []TimeSlot   `json:"proposals,omitempty"`
	Actions   []ChatAction `json:"actions,omitempty"`
}

// ConfirmationPayload is the asynq task body for a queued confirmation.
type ConfirmationPayload struct {
	Channel   string `json:"channel"` // "email" or "sms"
	Recipient string `json:"recipient"`
	Template  string `json:"template"`
	EventID   string `json:"eventId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Service   string `json:"service"`
}
