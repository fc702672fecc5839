package availability

import "fmt"

// BookingError kinds. Policy violations and infrastructure failures are
// kept distinct so callers can pattern-match instead of parsing messages.
const (
	KindValidation      = "validation"
	KindInvalidWindow   = "invalidWindow"
	KindOutOfHours      = "outOfHours"
	KindConflict        = "conflict"
	KindProviderFailure = "providerFailure"
)

// BookingError is the typed failure result for booking operations.
type BookingError struct {
	Kind    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewValidationError(msg string) *BookingError {
	return &BookingError{Kind: KindValidation, Message: msg}
}

func NewInvalidWindowError(msg string) *BookingError {
	return &BookingError{Kind: KindInvalidWindow, Message: msg}
}

func NewOutOfHoursError(msg string) *BookingError {
	return &BookingError{Kind: KindOutOfHours, Message: msg}
}

func NewConflictError(msg string) *BookingError {
	return &BookingError{Kind: KindConflict, Message: msg}
}

func NewProviderFailureError(msg string) *BookingError {
	return &BookingError{Kind: KindProviderFailure, Message: msg}
}

// AsBookingError unwraps err into a BookingError when possible.
func AsBookingError(err error) (*BookingError, bool) {
	be, ok := err.(*BookingError)
	return be, ok
}
