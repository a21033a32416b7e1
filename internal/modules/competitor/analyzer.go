// Package competitor scores the property's pricing posture against competitor prices.
package competitor

import (
	"fmt"
	"math"

	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/pkg/formulas"
	"github.com/rs/zerolog"
)

// MarketPosition classifies own price relative to competitors.
type MarketPosition string

const (
	PositionPremium     MarketPosition = "premium"
	PositionCompetitive MarketPosition = "competitive"
	PositionValue       MarketPosition = "value"
)

const (
	MinSamples = 10

	PremiumRatio = 1.10 // own/competitor above this = premium
	ValueRatio   = 0.90 // own/competitor below this = value

	TargetOccupancy      = 75.0
	MinGapElasticity     = 0.1 // below this the gap response is too weak to solve for
	LowOccupancy         = 60.0
	HighOccupancy        = 85.0
	OverpricedRatio      = 1.05
	UnderpricedRatio     = 0.95
	SensitiveCorrelation = 0.5
)

// Analysis is the competitive positioning summary for a batch of history.
type Analysis struct {
	MarketPosition       MarketPosition `json:"market_position"`
	AvgPrice             float64        `json:"avg_price"`
	AvgCompetitorPrice   float64        `json:"avg_competitor_price"`
	AvgOccupancy         float64        `json:"avg_occupancy"`
	PriceRatio           float64        `json:"price_ratio"`
	Correlation          float64        `json:"correlation"`
	CompetitorElasticity float64        `json:"competitor_elasticity"`
	OptimalPriceGap      float64        `json:"optimal_price_gap"`
	Recommendation       string         `json:"recommendation"`
	SampleSize           int            `json:"sample_size"`
}

// Analyzer relates the own-vs-competitor price gap to occupancy.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new competitor position analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("component", "competitor_analyzer").Logger(),
	}
}

type triple struct {
	price, competitor, occupancy float64
}

// Analyze computes market position, gap elasticity and a positioning recommendation.
// Fewer than 10 rows with price, competitor price and occupancy yield a neutral result.
func (a *Analyzer) Analyze(history []domain.HistoricalObservation) Analysis {
	rows := collect(history)
	n := len(rows)

	if n < MinSamples {
		a.log.Debug().Int("samples", n).Msg("Not enough competitor data, returning neutral position")
		return Analysis{
			MarketPosition: PositionCompetitive,
			Recommendation: fmt.Sprintf("Insufficient competitor data: %d overlapping days, need at least %d", n, MinSamples),
			SampleSize:     n,
		}
	}

	prices := make([]float64, n)
	competitors := make([]float64, n)
	occupancies := make([]float64, n)
	gaps := make([]float64, n)
	for i, r := range rows {
		prices[i] = r.price
		competitors[i] = r.competitor
		occupancies[i] = r.occupancy
		gaps[i] = r.price - r.competitor
	}

	avgPrice := formulas.Mean(prices)
	avgCompetitor := formulas.Mean(competitors)
	avgOccupancy := formulas.Mean(occupancies)
	ratio := avgPrice / avgCompetitor

	covariance := formulas.Covariance(gaps, occupancies)
	variance := formulas.Variance(gaps)

	var correlation, gapElasticity float64
	if variance != 0 {
		// Normalised by the gap variance alone, not by both standard deviations.
		correlation = covariance / math.Sqrt(variance*variance)
		gapElasticity = covariance / variance
	}

	optimalGap := avgPrice - avgCompetitor
	if math.Abs(gapElasticity) > MinGapElasticity {
		optimalGap = (TargetOccupancy - avgOccupancy) / gapElasticity
	}

	analysis := Analysis{
		MarketPosition:       positionFor(ratio),
		AvgPrice:             avgPrice,
		AvgCompetitorPrice:   avgCompetitor,
		AvgOccupancy:         avgOccupancy,
		PriceRatio:           ratio,
		Correlation:          correlation,
		CompetitorElasticity: gapElasticity,
		OptimalPriceGap:      optimalGap,
		SampleSize:           n,
	}
	analysis.Recommendation = recommend(analysis)

	a.log.Info().
		Str("position", string(analysis.MarketPosition)).
		Float64("price_ratio", ratio).
		Float64("gap_elasticity", gapElasticity).
		Int("samples", n).
		Msg("Analyzed competitor positioning")

	return analysis
}

// PositionBonus is the competitor-score adjustment for a market position.
func PositionBonus(p MarketPosition) float64 {
	switch p {
	case PositionPremium:
		return 20
	case PositionValue:
		return -10
	default:
		return 0
	}
}

func collect(history []domain.HistoricalObservation) []triple {
	rows := make([]triple, 0, len(history))
	for _, h := range history {
		occ, okOcc := h.OccupancyValue()
		comp, okComp := h.CompetitorPriceValue()
		if h.Price <= 0 || !okOcc || !okComp {
			continue
		}
		rows = append(rows, triple{price: h.Price, competitor: comp, occupancy: occ})
	}
	return rows
}

func positionFor(ratio float64) MarketPosition {
	switch {
	case ratio > PremiumRatio:
		return PositionPremium
	case ratio < ValueRatio:
		return PositionValue
	default:
		return PositionCompetitive
	}
}

func recommend(a Analysis) string {
	pct := (a.PriceRatio - 1) * 100
	switch {
	case a.AvgOccupancy < LowOccupancy && a.PriceRatio > OverpricedRatio:
		return fmt.Sprintf(
			"Occupancy is low (%.1f%%) while pricing %.1f%% above competitors. Consider lowering prices toward the market average of %.2f.",
			a.AvgOccupancy, pct, a.AvgCompetitorPrice)
	case a.AvgOccupancy > HighOccupancy && a.PriceRatio < UnderpricedRatio:
		return fmt.Sprintf(
			"Occupancy is strong (%.1f%%) while pricing %.1f%% below competitors. Consider raising prices toward %.2f.",
			a.AvgOccupancy, -pct, a.AvgCompetitorPrice)
	case math.Abs(a.Correlation) > SensitiveCorrelation:
		return fmt.Sprintf(
			"Occupancy is sensitive to the competitor price gap (%.2f occupancy points per unit). Target a gap of %.2f to reach %.0f%% occupancy.",
			a.CompetitorElasticity, a.OptimalPriceGap, TargetOccupancy)
	default:
		return fmt.Sprintf(
			"Current %s positioning (%.2f vs %.2f competitor average) is holding %.1f%% occupancy.",
			a.MarketPosition, a.AvgPrice, a.AvgCompetitorPrice, a.AvgOccupancy)
	}
}
