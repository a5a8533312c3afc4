package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/yava-code/weatherAI/internal/api/http"
	"github.com/yava-code/weatherAI/internal/cache"
	"github.com/yava-code/weatherAI/internal/config"
	"github.com/yava-code/weatherAI/internal/measurements"
	"github.com/yava-code/weatherAI/internal/ml"
	"github.com/yava-code/weatherAI/internal/scheduler"
	"github.com/yava-code/weatherAI/internal/store"
	"github.com/yava-code/weatherAI/internal/weather"
	"github.com/yava-code/weatherAI/internal/weather/openmeteo"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weatherai",
		Short: "Per-city weather intelligence and temperature forecasting service",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the scheduled monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the measurement history with a week of synthetic hourly data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed()
		},
	}

	rootCmd.AddCommand(serveCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Shared HTTP client for outbound provider calls; its timeout bounds
	// each individual attempt inside the gateway's retry loop.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gateway := openmeteo.NewClient(httpClient)

	modelStore, err := store.New(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}

	history, err := measurements.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open measurement store: %w", err)
	}
	defer history.Close()

	intel := cache.New()

	// Core service orchestrating the analysis pipeline.
	service := weather.NewService(gateway, modelStore, ml.NewTrainer(), history, cfg.RefreshRoster, cfg.LookbackDays)

	monitor := scheduler.New(service, intel, history, scheduler.Config{
		RefreshRoster:   cfg.RefreshRoster,
		RetrainRoster:   cfg.RetrainRoster,
		RefreshInterval: cfg.RefreshInterval,
		RetrainInterval: cfg.RetrainInterval,
		GlobalTrainAt:   cfg.GlobalTrainAt,
		CacheTTL:        cfg.CacheTTL,
		JobTimeout:      60 * time.Second,
	})
	if err := monitor.Start(); err != nil {
		return fmt.Errorf("start monitor: %w", err)
	}
	defer monitor.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherai",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherai",
		})
	})

	httpapi.RegisterRoutes(app, service, history, intel)

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
	return nil
}
