package handlers

import (
	"errors"
	"net/http"

	"bookline/models"
	"bookline/services/availability"
	"bookline/services/conversation"
	"bookline/utils"
	"bookline/workers"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ChatHandler owns the conversational endpoint. It runs the engine turn,
// then executes the declarative actions the engine emitted: bookings go
// to the availability service, confirmations to the task queue.
type ChatHandler struct {
	Engine *conversation.Engine
	Avail  availability.Service
	Queue  *asynq.Client
	Logger *zap.Logger
}

func NewChatHandler(engine *conversation.Engine, avail availability.Service, queue *asynq.Client, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Engine: engine, Avail: avail, Queue: queue, Logger: logger}
}

type chatResult struct {
	*models.ChatResponse
	Booking *models.BookingResult `json:"booking,omitempty"`
}

// HandleChatMessage processes one inbound chat turn.
func (h *ChatHandler) HandleChatMessage(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	resp, err := h.Engine.ProcessMessage(c.Request.Context(), req.SessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			utils.JSONError(c, http.StatusBadRequest, "message is empty", "")
		case errors.Is(err, conversation.ErrMessageTooLong):
			utils.JSONError(c, http.StatusBadRequest, "message too long", "messages are limited; please shorten it")
		default:
			h.Logger.Error("chat turn failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "failed to process message", "")
		}
		return
	}

	result := chatResult{ChatResponse: resp}
	for _, action := range resp.Actions {
		switch action.Type {
		case models.ActionCreateBooking:
			booking, berr := h.createBooking(c, action.Data, result.ChatResponse)
			if berr != nil {
				c.JSON(http.StatusOK, result)
				return
			}
			result.Booking = booking

		case models.ActionSendConfirmation:
			h.enqueueConfirmation(action.Data, result.Booking)
		}
	}

	c.JSON(http.StatusOK, result)
}

// createBooking executes a create_booking action. Policy and conflict
// failures are folded back into the conversational reply instead of
// surfacing as HTTP errors.
func (h *ChatHandler) createBooking(c *gin.Context, slots models.Slots, resp *models.ChatResponse) (*models.BookingResult, error) {
	booking, err := h.Avail.CreateBooking(c.Request.Context(), models.BookingRequest{
		Date:            slots.Date,
		Time:            slots.Time,
		DurationMinutes: slots.DurationMinutes,
		ServiceType:     slots.ServiceType,
		ClientEmail:     slots.ClientEmail,
		ClientPhone:     slots.ClientPhone,
		Notes:           slots.Notes,
	})
	if err == nil {
		return &booking, nil
	}

	berr, ok := availability.AsBookingError(err)
	if !ok {
		h.Logger.Error("booking creation failed", zap.Error(err))
		resp.Reply = "Something went wrong while saving the booking. Please try again."
		return nil, err
	}
	switch berr.Kind {
	case availability.KindConflict:
		// The slot was taken between proposal and confirmation.
		// Re-propose what is still free.
		resp.Reply = "That time was just taken. " + h.alternativesText(c, slots)
	case availability.KindProviderFailure:
		resp.Reply = "The calendar is unreachable right now, so nothing was booked. Please try again shortly."
	default:
		resp.Reply = "That time won't work: " + berr.Message + " Could you pick another one?"
	}
	return nil, err
}

func (h *ChatHandler) alternativesText(c *gin.Context, slots models.Slots) string {
	all, err := h.Avail.GetAvailableSlots(c.Request.Context(), slots.Date, slots.DurationMinutes, 0)
	if err != nil {
		return "Could you pick another time?"
	}
	free := availability.FilterAvailable(all)
	if len(free) == 0 {
		return "That day is now fully booked; could you try another date?"
	}
	text := "Still free: "
	for i, s := range free {
		if i == 6 {
			break
		}
		if i > 0 {
			text += ", "
		}
		text += s.Start.Format("15:04")
	}
	return text + ". Would one of those work?"
}

func (h *ChatHandler) enqueueConfirmation(slots models.Slots, booking *models.BookingResult) {
	if h.Queue == nil {
		return
	}
	payload := models.ConfirmationPayload{
		Template: "booking_confirmed",
		Date:     slots.Date,
		Time:     slots.Time,
		Service:  slots.ServiceType,
	}
	if booking != nil {
		payload.EventID = booking.EventID
	}
	switch {
	case slots.ClientEmail != "":
		payload.Channel = "email"
		payload.Recipient = slots.ClientEmail
	case slots.ClientPhone != "":
		payload.Channel = "sms"
		payload.Recipient = slots.ClientPhone
	default:
		return
	}
	if err := workers.EnqueueConfirmation(h.Queue, payload); err != nil {
		h.Logger.Warn("failed to enqueue confirmation", zap.Error(err))
	}
}
