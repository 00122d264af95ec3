// File: consultly/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultly/config"
	"consultly/cron"
	"consultly/database"
	bookingRepo "consultly/database/repository/booking"
	savedRepo "consultly/database/repository/saved"
	waitlistRepo "consultly/database/repository/waitlist"
	"consultly/handlers"
	"consultly/middleware"
	"consultly/routes"
	"consultly/services/booking"
	"consultly/services/feed"
	"consultly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	defer database.CloseDB()
	utils.InitCache()
	utils.InitFeedCache()

	// Index creation is not optional: the participant and waitlist
	// uniqueness invariants live in these indexes.
	if err := bookingRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}
	if err := waitlistRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create waitlist indexes: %v", err)
	}
	if err := savedRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create saved-consultant indexes: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	waitlist := waitlistRepo.NewMongoWaitlistRepo()
	saved := savedRepo.NewMongoSavedRepo()

	// services.
	changeFeed := feed.NewDefaultFeed(utils.GetFeedCacheClient(), logger)
	defer changeFeed.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:              bookings,
		Waitlist:          waitlist,
		Saved:             saved,
		Feed:              changeFeed,
		Cache:             utils.GetCacheClient(),
		Logger:            logger,
		ReviewCreditBonus: config.AppConfig.ReviewCreditBonus,
		WaitlistEntryTTL:  time.Duration(config.AppConfig.WaitlistEntryTTL) * time.Hour,
		RetryAttempts:     config.AppConfig.TxnRetryAttempts,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Register routes.
	routes.RegisterRoutes(router, bookingHandler)

	// Background waitlist-expiry sweep.
	cron.InitWaitlistSweeper(bookingService)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetFeedCacheClient()},
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

	logger.Sugar().Info("main: server stopped gracefully")
}
