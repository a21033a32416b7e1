package recommendation

import (
	"errors"
	"time"

	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/internal/modules/competitor"
	"github.com/aristath/pricing/internal/modules/elasticity"
	"github.com/aristath/pricing/internal/modules/factors"
	"github.com/aristath/pricing/internal/modules/forecast"
	"github.com/aristath/pricing/internal/modules/optimization"
)

// DefaultForecastDays is the horizon used when callers do not choose one.
const DefaultForecastDays = 30

// MaxForecastDays bounds the horizon accepted from request bodies and configuration.
const MaxForecastDays = 365

// Contract violations. These indicate a caller bug, not poor data.
var (
	ErrInvalidForecastDays = errors.New("forecast days must be positive")
	ErrInvalidAveragePrice = errors.New("current average price must be positive")
	ErrMissingToday        = errors.New("today must be set")
	ErrInvalidConstraints  = errors.New("invalid constraints")
)

// Request is one batch of recommendations for a property.
type Request struct {
	History             []domain.HistoricalObservation
	Today               time.Time // injected; the horizon starts the day after
	ForecastDays        int
	CurrentAveragePrice float64
	Constraints         optimization.Constraints

	// Optional per-date inputs keyed by domain.DateKey.
	Weather  map[string]domain.WeatherSnapshot
	Holidays map[string]string // date -> holiday name (may be empty)
}

// FactorScores are the 0-100 transparency scores shown with a recommendation.
type FactorScores struct {
	DemandScore     float64 `json:"demand_score"`
	WeatherScore    float64 `json:"weather_score"`
	HolidayScore    float64 `json:"holiday_score"`
	CompetitorScore float64 `json:"competitor_score"`
	SeasonalScore   float64 `json:"seasonal_score"`
}

// PricingRecommendation is the recommended price for one forecast day.
type PricingRecommendation struct {
	Date               time.Time             `json:"date"`
	CurrentPrice       float64               `json:"current_price"`
	RecommendedPrice   float64               `json:"recommended_price"`
	PredictedOccupancy float64               `json:"predicted_occupancy"`
	PredictedRevenue   float64               `json:"predicted_revenue"`
	Confidence         domain.Confidence     `json:"confidence"`
	Factors            FactorScores          `json:"factors"`
	Explanation        string                `json:"explanation"`
	PriceChange        float64               `json:"price_change"`
	PriceChangePercent float64               `json:"price_change_percent"`
	RevenueImpact      float64               `json:"revenue_impact"` // percent vs flat average price
	Strategy           optimization.Strategy `json:"strategy"`
	IsHoliday          bool                  `json:"is_holiday"`
	HolidayName        string                `json:"holiday_name,omitempty"`
	IsWeekend          bool                  `json:"is_weekend"`
	Components         forecast.Components   `json:"components"`
}

// Analysis bundles the once-per-batch analyzer outputs.
type Analysis struct {
	Elasticity elasticity.Estimate `json:"elasticity"`
	Competitor competitor.Analysis `json:"competitor"`
	Factors    factors.Analysis    `json:"factors"`
}

// Summary aggregates a batch.
type Summary struct {
	Days                      int     `json:"days"`
	AverageRecommendedPrice   float64 `json:"average_recommended_price"`
	MinRecommendedPrice       float64 `json:"min_recommended_price"`
	MaxRecommendedPrice       float64 `json:"max_recommended_price"`
	AveragePredictedOccupancy float64 `json:"average_predicted_occupancy"`
	TotalPredictedRevenue     float64 `json:"total_predicted_revenue"`
	AverageRevenueImpact      float64 `json:"average_revenue_impact"`
	PriceIncreaseDays         int     `json:"price_increase_days"`
	PriceDecreaseDays         int     `json:"price_decrease_days"`
	LowConfidenceDays         int     `json:"low_confidence_days"`
	HolidayDays               int     `json:"holiday_days"`
}

// Result is a full batch: analyses, per-day recommendations in date order, and a summary.
type Result struct {
	RunDate         time.Time               `json:"run_date"`
	Analysis        Analysis                `json:"analysis"`
	Recommendations []PricingRecommendation `json:"recommendations"`
	Summary         Summary                 `json:"summary"`
}
