package notification

import (
	"context"

	"bookline/models"

	"go.uber.org/zap"
)

// NotificationService delivers booking confirmations. The core only
// decides that a confirmation should go out; delivery mechanics live
// behind this interface.
type NotificationService interface {
	SendConfirmation(ctx context.Context, p models.ConfirmationPayload) error
}

// LogNotificationService records confirmations to the log. It stands in
// for a real email/SMS integration.
type LogNotificationService struct {
	Logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) *LogNotificationService {
	return &LogNotificationService{Logger: logger}
}

func (s *LogNotificationService) SendConfirmation(ctx context.Context, p models.ConfirmationPayload) error {
	s.Logger.Info("confirmation dispatched",
		zap.String("channel", p.Channel),
		zap.String("recipient", p.Recipient),
		zap.String("eventID", p.EventID),
		zap.String("date", p.Date),
		zap.String("time", p.Time),
	)
	return nil
}
