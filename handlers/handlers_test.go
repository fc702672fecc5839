package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookline/models"
	"bookline/services/availability"
	"bookline/services/conversation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter(t *testing.T) (*gin.Engine, *availability.MemoryEventSource) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hours := models.BusinessHours{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		hours[d] = &models.DayHours{Open: 9 * 60, Close: 18 * 60}
	}
	avail, err := availability.NewDefaultAvailabilityService(models.CalendarConfig{
		Hours:          hours,
		Timezone:       "UTC",
		MaxBookingDays: 60,
	})
	require.NoError(t, err)
	events := availability.NewMemoryEventSource()
	avail.ConfigureProvider("internal", events)

	store := conversation.NewMemorySessionStore(2*time.Hour, 30*time.Minute, time.Hour)
	t.Cleanup(store.Close)
	engine := conversation.NewEngine(store, avail, conversation.NewKeywordClassifier(), []string{"consultation"}, 2000)

	logger := zap.NewNop()
	availH := NewAvailabilityHandler(avail, logger)
	chatH := NewChatHandler(engine, avail, nil, logger)

	r := gin.New()
	r.POST("/api/chat/message", chatH.HandleChatMessage)
	r.GET("/api/calendar/slots", availH.GetAvailableSlotsHandler)
	r.POST("/api/calendar/bookings", availH.CreateBookingHandler)
	r.GET("/api/calendar/config", availH.GetConfigHandler)
	r.PUT("/api/calendar/config", availH.UpdateConfigHandler)
	return r, events
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestGetSlotsRequiresDate(t *testing.T) {
	r, _ := testRouter(t)
	w := doJSON(r, http.MethodGet, "/api/calendar/slots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSlotsRejectsMalformedDate(t *testing.T) {
	r, _ := testRouter(t)
	w := doJSON(r, http.MethodGet, "/api/calendar/slots?date=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSlotsReturnsOnlyFreeSlots(t *testing.T) {
	r, events := testRouter(t)
	date := futureDate(7)
	day, _ := time.Parse("2006-01-02", date)
	_, err := events.CreateEvent(context.Background(), models.CalendarEvent{
		Title: "busy",
		Start: time.Date(day.Year(), day.Month(), day.Day(), 14, 0, 0, 0, time.UTC),
		End:   time.Date(day.Year(), day.Month(), day.Day(), 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	w := doJSON(r, http.MethodGet, "/api/calendar/slots?date="+date, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Date  string            `json:"date"`
		Slots []models.TimeSlot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, date, body.Date)
	require.NotEmpty(t, body.Slots)
	for _, s := range body.Slots {
		assert.True(t, s.Available)
		assert.NotEqual(t, "14:00", s.Start.Format("15:04"))
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	r, _ := testRouter(t)
	date := futureDate(7)

	w := doJSON(r, http.MethodPost, "/api/calendar/bookings", models.BookingRequest{
		Date: date, Time: "10:00", DurationMinutes: 60, Title: "checkup",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result models.BookingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.EventID)
	assert.Equal(t, "internal", result.Provider)

	// The same window again is a conflict.
	w = doJSON(r, http.MethodPost, "/api/calendar/bookings", models.BookingRequest{
		Date: date, Time: "10:00", DurationMinutes: 60,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Outside business hours is a policy rejection.
	w = doJSON(r, http.MethodPost, "/api/calendar/bookings", models.BookingRequest{
		Date: date, Time: "22:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestConfigEndpoints(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(r, http.MethodGet, "/api/calendar/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg models.CalendarConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, 60, cfg.MaxBookingDays)

	// A bad replacement is rejected and the old config survives.
	cfg.MaxBookingDays = -1
	w = doJSON(r, http.MethodPut, "/api/calendar/config", cfg)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	cfg.MaxBookingDays = 90
	cfg.AdvanceBookingDays = 1
	w = doJSON(r, http.MethodPut, "/api/calendar/config", cfg)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.CalendarConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 90, updated.MaxBookingDays)
	assert.Equal(t, 1, updated.AdvanceBookingDays)
}

func TestChatEndpointBooksThroughConversation(t *testing.T) {
	r, _ := testRouter(t)
	date := futureDate(7)

	w := doJSON(r, http.MethodPost, "/api/chat/message", models.ChatRequest{
		Text: fmt.Sprintf("I'd like to book an appointment on %s at 14:00", date),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var first struct {
		SessionID string       `json:"sessionId"`
		Stage     models.Stage `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.NotEmpty(t, first.SessionID)
	require.Equal(t, models.StageSlotConfirmation, first.Stage)

	w = doJSON(r, http.MethodPost, "/api/chat/message", models.ChatRequest{
		SessionID: first.SessionID,
		Text:      "yes please",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		Stage   models.Stage          `json:"stage"`
		Booking *models.BookingResult `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, models.StageCompletion, second.Stage)
	require.NotNil(t, second.Booking)
	assert.NotEmpty(t, second.Booking.EventID)
	assert.Equal(t, "internal", second.Booking.Provider)
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	r, _ := testRouter(t)
	w := doJSON(r, http.MethodPost, "/api/chat/message", models.ChatRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
