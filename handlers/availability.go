package handlers

import (
	"net/http"
	"strconv"

	"bookline/models"
	"bookline/services/availability"
	"bookline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes slot queries, direct bookings, and the
// calendar configuration.
type AvailabilityHandler struct {
	Avail  availability.Service
	Logger *zap.Logger
}

func NewAvailabilityHandler(avail availability.Service, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Avail: avail, Logger: logger}
}

// GetAvailableSlotsHandler returns the free slots for a day. The engine
// computes both free and taken slots; the public API deliberately
// filters to free ones.
func (h *AvailabilityHandler) GetAvailableSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "expected ?date=YYYY-MM-DD")
		return
	}
	duration, _ := strconv.Atoi(c.DefaultQuery("duration", "0"))
	interval, _ := strconv.Atoi(c.DefaultQuery("interval", "0"))

	slots, err := h.Avail.GetAvailableSlots(c.Request.Context(), date, duration, interval)
	if err != nil {
		if berr, ok := availability.AsBookingError(err); ok && berr.Kind == availability.KindValidation {
			utils.JSONError(c, http.StatusBadRequest, "invalid request", berr.Message)
			return
		}
		h.Logger.Error("slot query failed", zap.String("date", date), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "calendar unavailable", "could not reach the event source")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date,
		"slots": availability.FilterAvailable(slots),
	})
}

// CreateBookingHandler creates a booking directly, outside the chat flow.
func (h *AvailabilityHandler) CreateBookingHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	result, err := h.Avail.CreateBooking(c.Request.Context(), req)
	if err != nil {
		berr, ok := availability.AsBookingError(err)
		if !ok {
			h.Logger.Error("booking failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "booking failed", "")
			return
		}
		switch berr.Kind {
		case availability.KindValidation, availability.KindInvalidWindow, availability.KindOutOfHours:
			utils.JSONError(c, http.StatusUnprocessableEntity, "booking rejected", berr.Message)
		case availability.KindConflict:
			utils.JSONError(c, http.StatusConflict, "slot no longer available", berr.Message)
		default:
			utils.JSONError(c, http.StatusBadGateway, "calendar unavailable", berr.Message)
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetConfigHandler returns the current calendar policy.
func (h *AvailabilityHandler) GetConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Avail.Config())
}

// UpdateConfigHandler replaces the calendar policy wholesale. Partial
// updates are rejected by shape: the full config must be supplied.
func (h *AvailabilityHandler) UpdateConfigHandler(c *gin.Context) {
	var cfg models.CalendarConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := h.Avail.UpdateConfig(cfg); err != nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "invalid configuration", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Avail.Config())
}
