// Package main is the entry point for the pricing service.
//
// The service exposes revenue-optimized nightly price recommendations over HTTP:
// elasticity, competitor and factor analyses run once per request, then a demand
// forecast and a strategy-weighted price search run for every day of the horizon.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/pricing/internal/config"
	"github.com/aristath/pricing/internal/modules/recommendation"
	pricinghandlers "github.com/aristath/pricing/internal/modules/recommendation/handlers"
	"github.com/aristath/pricing/internal/server"
	"github.com/aristath/pricing/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("forecast_days", cfg.ForecastDays).
		Str("strategy", string(cfg.Strategy)).
		Float64("target_occupancy", cfg.TargetOccupancy).
		Msg("Starting pricing service")

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		Service: recommendation.NewService(log),
		Defaults: pricinghandlers.Defaults{
			ForecastDays:    cfg.ForecastDays,
			Strategy:        cfg.Strategy,
			TargetOccupancy: cfg.TargetOccupancy,
		},
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// In-flight recommendation batches get 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
