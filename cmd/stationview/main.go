package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/amsilva/stationview/internal/api/http"
	"github.com/amsilva/stationview/internal/config"
	"github.com/amsilva/stationview/internal/firebase"
	"github.com/amsilva/stationview/internal/scheduler"
	"github.com/amsilva/stationview/internal/station"
	"github.com/amsilva/stationview/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound store calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Remote document store client with circuit breaking.
	db := firebase.NewClient(httpClient, cfg.DatabaseURL, cfg.AuthToken)

	// Optional station-address geocoding for the catalog.
	geo := station.NewGeocoder(cfg.GeocoderAPIKey)

	// Data access layer.
	service := station.NewService(db, geo, cfg.StationAllowlist)

	// Live cache with configured retention, warmed by the refresher.
	cache := store.NewMemoryCache(cfg.CacheMaxHistory, cfg.CacheMaxAge)

	refresher := scheduler.New(service, cache, cfg.RefreshInterval)
	if err := refresher.Start(); err != nil {
		log.Fatalf("failed to start refresher: %v", err)
	}
	defer refresher.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "stationview",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "stationview",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cache, httpapi.Options{
		DefaultLimit:  cfg.FetchLimitDefault,
		MaxLimit:      cfg.FetchLimitMax,
		DefaultWindow: cfg.MovingAvgWindow,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
