package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookline/config"
	"bookline/database"
	eventRepo "bookline/database/repository/event"
	"bookline/handlers"
	"bookline/routes"
	"bookline/services/availability"
	"bookline/services/conversation"
	"bookline/services/notification"
	"bookline/utils"
	"bookline/workers"

	"github.com/gin-gonic/gin"
)

var serviceTypes = []string{"consultation", "haircut", "massage", "general"}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	calCfg, err := config.CalendarConfig()
	if err != nil {
		logger.Sugar().Fatalf("main: invalid calendar configuration: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	events := eventRepo.NewMongoEventRepo()
	if err := events.EnsureIndexes(context.Background()); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure event indexes: %v", err)
	}

	// services.
	availService, err := availability.NewDefaultAvailabilityService(calCfg)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build availability service: %v", err)
	}
	availService.ConfigureProvider("internal", events)

	sessionStore := conversation.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMinutes)*time.Minute,
		time.Duration(config.AppConfig.SessionIdleTTLMinutes)*time.Minute,
	)

	var classifier conversation.IntentClassifier
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		classifier, err = conversation.NewGeminiClassifier(key)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to build Gemini classifier: %v", err)
		}
	} else {
		classifier = conversation.NewKeywordClassifier()
	}

	engine := conversation.NewEngine(
		sessionStore,
		availService,
		classifier,
		serviceTypes,
		config.AppConfig.MaxMessageChars,
	)

	notifService := notification.NewLogNotificationService(logger)
	workers.InitConfirmationWorker(notifService)
	queueClient := workers.NewQueueClient()
	defer queueClient.Close()

	chatHandler := handlers.NewChatHandler(engine, availService, queueClient, logger)
	availHandler := handlers.NewAvailabilityHandler(availService, logger)

	routes.RegisterRoutes(router, chatHandler, availHandler)
	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
