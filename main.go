// File: courtpilot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtpilot/config"
	"courtpilot/cron"
	"courtpilot/database"
	runsRepo "courtpilot/database/repository/runs"
	"courtpilot/handlers"
	"courtpilot/middleware"
	"courtpilot/routes"
	"courtpilot/services/booking"
	"courtpilot/services/browser"
	"courtpilot/services/extraction"
	ai "courtpilot/services/intelligence"
	"courtpilot/services/notification"
	"courtpilot/services/request"
	"courtpilot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	artifactStore, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage: %v", err)
	}

	loc, err := time.LoadLocation(config.AppConfig.PortalTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: bad portal timezone %q: %v", config.AppConfig.PortalTimezone, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Browser driver. One Chrome session serves all runs.
	driver, err := browser.NewDriver(browser.Options{
		BaseURL:          config.AppConfig.PortalURL,
		Headless:         config.AppConfig.ChromeHeadless,
		NavigateTimeout:  time.Duration(config.AppConfig.NavigateTimeout) * time.Second,
		InteractionDelay: time.Duration(config.AppConfig.InteractionDelay) * time.Millisecond,
		CourtCount:       config.AppConfig.CourtCount,
	})
	if err != nil {
		logger.Sugar().Fatalf("main: failed to start browser driver: %v", err)
	}

	grid := extraction.GridParams{
		Courts:       config.AppConfig.CourtCount,
		OpeningMin:   config.AppConfig.OpeningMinute,
		ClosingMin:   config.AppConfig.ClosingMinute,
		IncrementMin: config.AppConfig.SlotIncrementMin,
		Location:     loc,
		Now:          time.Now,
	}

	// repositories.
	archive := runsRepo.NewMongoRunRepo()

	// services.
	runStore := booking.NewRedisRunStore()
	parser := request.NewParser(loc, config.AppConfig.OpeningMinute, config.AppConfig.ClosingMinute)
	matcher := booking.NewMatcher(config.AppConfig.MaxAlternatives, config.AppConfig.DefaultDurationMin)
	notifier := notification.NewDefaultOutcomeNotifier()

	var advisor ai.SlotAdvisor
	if config.AppConfig.GeminiAPIKey != "" {
		ctxStore := ai.NewRedisContextStore(utils.GetAdvisorCacheClient(), 30*time.Minute)
		advisor = ai.NewDefaultSlotAdvisor(ai.NewGeminiClient(config.AppConfig.GeminiAPIKey), ctxStore)
	}

	engine := &booking.DefaultBookingEngine{
		Driver:  driver,
		Parser:  parser,
		Matcher: matcher,
		Runs:    runStore,
		Grid:    grid,
		Credentials: booking.PortalCredentials{
			Email:    config.AppConfig.PortalEmail,
			Password: config.AppConfig.PortalPassword,
		},
		Advisor:   advisor,
		Notifier:  notifier,
		Artifacts: artifactStore,
		Archive:   archive,
	}

	// Queue plumbing: the API enqueues runs, the worker drives them.
	queueClient := cron.NewQueueClient()
	defer queueClient.Close()
	enqueue := func(ctx context.Context, runID string) error {
		return cron.EnqueueRun(ctx, queueClient, runID)
	}
	cron.InitRunWorker(engine)
	cron.InitRetentionSweeper(archive, artifactStore)

	// handlers.
	bookingHandler := handlers.NewBookingHandler(engine, enqueue, logger)
	voiceHandler := handlers.NewVoiceHandler(engine, enqueue)
	adminHandler := handlers.NewAdminHandler(archive, artifactStore)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Booking endpoints.
		StartRunHandler:     bookingHandler.StartRun,
		GetRunHandler:       bookingHandler.GetRun,
		AvailabilityHandler: bookingHandler.Availability,
		VoiceRunHandler:     voiceHandler.VoiceRun,

		// Auth endpoints.
		MintTokenHandler: handlers.MintTokenHandler,

		// Admin endpoints.
		AdminHandler: adminHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetRunStoreClient(), utils.GetAdvisorCacheClient()},
		database.MongoClient,
	)

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
	if err := driver.Close(); err != nil {
		logger.Sugar().Warnf("main: browser driver close: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
