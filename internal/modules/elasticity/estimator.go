// Package elasticity estimates price elasticity of demand from price/occupancy history.
package elasticity

import (
	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	DefaultElasticity = -1.2 // Hospitality industry default
	MinElasticity     = -3.0
	MaxElasticity     = -0.5
	MinSamples        = 10
)

// Estimate is the estimator output together with how it was obtained.
type Estimate struct {
	Elasticity float64 `json:"elasticity"`
	SampleSize int     `json:"sample_size"`
	Slope      float64 `json:"slope"`      // occupancy points per currency unit
	IsDefault  bool    `json:"is_default"` // true when the industry default was substituted
}

// Estimator derives elasticity as a regression slope scaled to the mean price/occupancy point.
type Estimator struct {
	log zerolog.Logger
}

// NewEstimator creates a new elasticity estimator.
func NewEstimator(log zerolog.Logger) *Estimator {
	return &Estimator{
		log: log.With().Str("component", "elasticity_estimator").Logger(),
	}
}

// CalculatePriceElasticity returns the elasticity clamped to [-3.0, -0.5], or -1.2 when history
// is too thin, has no price variance, or shows demand rising with price.
func (e *Estimator) CalculatePriceElasticity(history []domain.HistoricalObservation) float64 {
	return e.Estimate(history).Elasticity
}

// Estimate is CalculatePriceElasticity with diagnostics.
func (e *Estimator) Estimate(history []domain.HistoricalObservation) Estimate {
	prices, occupancies := pricedOccupancy(history)
	n := len(prices)

	if n < MinSamples {
		e.log.Debug().Int("samples", n).Msg("Not enough priced occupancy rows, using default elasticity")
		return Estimate{Elasticity: DefaultElasticity, SampleSize: n, IsDefault: true}
	}

	if formulas.Variance(prices) == 0 {
		e.log.Debug().Int("samples", n).Msg("No price variance, using default elasticity")
		return Estimate{Elasticity: DefaultElasticity, SampleSize: n, IsDefault: true}
	}

	beta := formulas.Slope(prices, occupancies)
	raw := beta * (formulas.Mean(prices) / formulas.Mean(occupancies))

	if raw > 0 {
		e.log.Warn().
			Float64("raw_elasticity", raw).
			Int("samples", n).
			Msg("Demand rises with price, rejecting estimate")
		return Estimate{Elasticity: DefaultElasticity, SampleSize: n, Slope: beta, IsDefault: true}
	}

	elasticity := formulas.Clamp(raw, MinElasticity, MaxElasticity)
	e.log.Info().
		Float64("raw_elasticity", raw).
		Float64("elasticity", elasticity).
		Int("samples", n).
		Msg("Estimated price elasticity")

	return Estimate{Elasticity: elasticity, SampleSize: n, Slope: beta}
}

func pricedOccupancy(history []domain.HistoricalObservation) (prices, occupancies []float64) {
	prices = make([]float64, 0, len(history))
	occupancies = make([]float64, 0, len(history))
	for _, h := range history {
		if !h.HasPricedOccupancy() {
			continue
		}
		occ, _ := h.OccupancyValue()
		prices = append(prices, h.Price)
		occupancies = append(occupancies, occ)
	}
	return prices, occupancies
}
