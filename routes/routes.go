package routes

import (
	"time"

	"bookline/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, chat *handlers.ChatHandler, avail *handlers.AvailabilityHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	chatAPI := r.Group("/api/chat")
	{
		chatAPI.POST("/message", chat.HandleChatMessage)
	}

	calendarAPI := r.Group("/api/calendar")
	{
		calendarAPI.GET("/slots", avail.GetAvailableSlotsHandler)
		calendarAPI.POST("/bookings", avail.CreateBookingHandler)
		calendarAPI.GET("/config", avail.GetConfigHandler)
		calendarAPI.PUT("/config", avail.UpdateConfigHandler)
	}
}
