package conversation

import "errors"

var (
	// ErrEmptyMessage is returned for a blank inbound message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a message exceeds the configured
	// maximum. Oversized input is rejected, never truncated.
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)
