// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aristath/pricing/internal/modules/optimization"
	"github.com/aristath/pricing/internal/modules/recommendation"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// Request defaults, overridable per call
	ForecastDays    int
	Strategy        optimization.Strategy
	TargetOccupancy float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	strategy, err := optimization.ParseStrategy(getEnv("PRICING_STRATEGY", string(optimization.StrategyBalanced)))
	if err != nil {
		return nil, fmt.Errorf("PRICING_STRATEGY: %w", err)
	}

	cfg := &Config{
		Port:            getEnvAsInt("PRICING_PORT", 8001),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		ForecastDays:    getEnvAsInt("FORECAST_DAYS", 30),
		Strategy:        strategy,
		TargetOccupancy: getEnvAsFloat("TARGET_OCCUPANCY", optimization.DefaultTargetOccupancy),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ForecastDays <= 0 || c.ForecastDays > recommendation.MaxForecastDays {
		return fmt.Errorf("FORECAST_DAYS must be in 1-%d, got %d", recommendation.MaxForecastDays, c.ForecastDays)
	}
	if _, ok := optimization.ProfileFor(c.Strategy); !ok {
		return fmt.Errorf("%w: %q", optimization.ErrUnknownStrategy, c.Strategy)
	}
	if c.TargetOccupancy <= 0 || c.TargetOccupancy > 100 {
		return fmt.Errorf("TARGET_OCCUPANCY must be in (0, 100], got %.1f", c.TargetOccupancy)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
