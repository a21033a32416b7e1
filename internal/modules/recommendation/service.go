// Package recommendation turns property history into per-day price recommendations.
package recommendation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/internal/modules/competitor"
	"github.com/aristath/pricing/internal/modules/elasticity"
	"github.com/aristath/pricing/internal/modules/factors"
	"github.com/aristath/pricing/internal/modules/forecast"
	"github.com/aristath/pricing/internal/modules/optimization"
	"github.com/aristath/pricing/pkg/formulas"
	"github.com/rs/zerolog"
)

// Baseline weights for the date-specific reference price
const (
	BaselineDayOfWeekWeight = 0.4
	BaselineWeekendWeight   = 0.4
	BaselineMonthWeight     = 0.2
	MinBaselineSamples      = 3
)

// Transparency score constants
const (
	NeutralScore             = 50.0
	WeatherScoreScale        = 2.0
	HolidayScore             = 90.0
	RegularDayScore          = 40.0
	CompetitorCorrScale      = 30.0
	ExplainTrendAbove        = 5.0
	ExplainWeatherAbove      = 5.0
	ExplainFactorCorrelation = 0.3
)

// Service runs the analyzers once per batch and the forecaster and optimizer once per day.
type Service struct {
	elasticity *elasticity.Estimator
	competitor *competitor.Analyzer
	factors    *factors.Analyzer
	forecaster *forecast.Forecaster
	optimizer  *optimization.PriceOptimizer
	log        zerolog.Logger
}

// NewService creates a recommendation service with its component analyzers.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		elasticity: elasticity.NewEstimator(log),
		competitor: competitor.NewAnalyzer(log),
		factors:    factors.NewAnalyzer(log),
		forecaster: forecast.NewForecaster(log),
		optimizer:  optimization.NewPriceOptimizer(log),
		log:        log.With().Str("component", "recommendation_service").Logger(),
	}
}

// Optimizer exposes the price optimizer for single-shot optimization.
func (s *Service) Optimizer() *optimization.PriceOptimizer {
	return s.optimizer
}

// Forecaster exposes the demand forecaster.
func (s *Service) Forecaster() *forecast.Forecaster {
	return s.forecaster
}

// Analyze runs the batch-level analyzers: elasticity, competitor position and factor correlations.
func (s *Service) Analyze(history []domain.HistoricalObservation) Analysis {
	return Analysis{
		Elasticity: s.elasticity.Estimate(history),
		Competitor: s.competitor.Analyze(history),
		Factors:    s.factors.Analyze(history),
	}
}

// GenerateRecommendations produces one recommendation per day for ForecastDays days starting the
// day after Today, in chronological order. It is deterministic for identical requests.
func (s *Service) GenerateRecommendations(req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	today := domain.TruncateDay(req.Today)
	analysis := s.Analyze(req.History)

	recs := make([]PricingRecommendation, 0, req.ForecastDays)
	for i := 1; i <= req.ForecastDays; i++ {
		recs = append(recs, s.recommendDay(req, analysis, today.AddDate(0, 0, i)))
	}

	result := &Result{
		RunDate:         today,
		Analysis:        analysis,
		Recommendations: recs,
		Summary:         summarize(recs),
	}

	s.log.Info().
		Str("run_date", domain.DateKey(today)).
		Int("days", len(recs)).
		Int("history", len(req.History)).
		Float64("elasticity", analysis.Elasticity.Elasticity).
		Float64("avg_recommended", result.Summary.AverageRecommendedPrice).
		Msg("Generated pricing recommendations")

	return result, nil
}

func validate(req Request) error {
	if req.ForecastDays <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidForecastDays, req.ForecastDays)
	}
	if req.CurrentAveragePrice <= 0 || math.IsNaN(req.CurrentAveragePrice) || math.IsInf(req.CurrentAveragePrice, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidAveragePrice, req.CurrentAveragePrice)
	}
	if req.Today.IsZero() {
		return ErrMissingToday
	}
	if err := req.Constraints.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConstraints, err)
	}
	return nil
}

func (s *Service) recommendDay(req Request, analysis Analysis, date time.Time) PricingRecommendation {
	key := domain.DateKey(date)
	temporal := domain.TemporalFor(date)
	holidayName, isHoliday := req.Holidays[key]

	var weather *domain.WeatherSnapshot
	if w, ok := req.Weather[key]; ok {
		weather = &w
	}

	baseline := BaselinePrice(req.History, temporal, isHoliday, req.CurrentAveragePrice)
	fc := s.forecaster.Forecast(req.History, date, weather)

	occupancy := fc.PredictedOccupancy
	if isHoliday {
		occupancy = formulas.Clamp(occupancy+fc.Components.HolidayImpact, 0, 100)
	}

	opt := s.optimizer.Optimize(optimization.Input{
		Elasticity:         analysis.Elasticity.Elasticity,
		PredictedOccupancy: occupancy,
		BasePrice:          baseline,
		Constraints:        req.Constraints,
	})

	naiveRevenue := req.CurrentAveragePrice * occupancy / 100
	revenueImpact := 0.0
	if naiveRevenue > 0 {
		revenueImpact = (opt.ExpectedRevenue - naiveRevenue) / naiveRevenue * 100
	}

	change := opt.OptimalPrice - baseline

	return PricingRecommendation{
		Date:               date,
		CurrentPrice:       formulas.Round(baseline, 2),
		RecommendedPrice:   formulas.Round(opt.OptimalPrice, 2),
		PredictedOccupancy: formulas.Round(opt.ExpectedOccupancy, 2),
		PredictedRevenue:   formulas.Round(opt.ExpectedRevenue, 2),
		Confidence:         fc.Confidence,
		Factors:            scores(occupancy, fc, weather != nil, isHoliday, analysis.Competitor),
		Explanation:        explain(fc, weather != nil, isHoliday, holidayName, temporal.IsWeekend, analysis, opt),
		PriceChange:        formulas.Round(change, 2),
		PriceChangePercent: formulas.Round(change/baseline*100, 2),
		RevenueImpact:      formulas.Round(revenueImpact, 2),
		Strategy:           opt.Strategy,
		IsHoliday:          isHoliday,
		HolidayName:        holidayName,
		IsWeekend:          temporal.IsWeekend,
		Components:         fc.Components,
	}
}

// BaselinePrice is the reference price for a date: the mean holiday price on holidays with any
// priced holiday history, a 40/40/20 blend of day-of-week, weekend-status and month means when the
// first two have at least 3 rows each, otherwise the flat average.
func BaselinePrice(history []domain.HistoricalObservation, t domain.Temporal, isHoliday bool, average float64) float64 {
	var holiday, dayOfWeek, weekend, month []float64
	for _, h := range history {
		if h.Price <= 0 {
			continue
		}
		if h.IsHoliday {
			holiday = append(holiday, h.Price)
		}
		if h.DayOfWeek == t.DayOfWeek {
			dayOfWeek = append(dayOfWeek, h.Price)
		}
		if h.IsWeekend == t.IsWeekend {
			weekend = append(weekend, h.Price)
		}
		if h.Month == t.Month {
			month = append(month, h.Price)
		}
	}

	if isHoliday && len(holiday) > 0 {
		return formulas.Mean(holiday)
	}
	if len(dayOfWeek) >= MinBaselineSamples && len(weekend) >= MinBaselineSamples {
		monthMean := average
		if len(month) > 0 {
			monthMean = formulas.Mean(month)
		}
		return BaselineDayOfWeekWeight*formulas.Mean(dayOfWeek) +
			BaselineWeekendWeight*formulas.Mean(weekend) +
			BaselineMonthWeight*monthMean
	}
	return average
}

func scores(occupancy float64, fc forecast.Forecast, hasWeather, isHoliday bool, comp competitor.Analysis) FactorScores {
	weatherScore := NeutralScore
	if hasWeather {
		weatherScore = formulas.Clamp(NeutralScore+WeatherScoreScale*fc.Components.WeatherImpact, 0, 100)
	}
	holidayScore := RegularDayScore
	if isHoliday {
		holidayScore = HolidayScore
	}
	competitorScore := formulas.Clamp(
		NeutralScore+competitor.PositionBonus(comp.MarketPosition)+CompetitorCorrScale*math.Abs(comp.Correlation), 0, 100)

	return FactorScores{
		DemandScore:     formulas.Round(occupancy, 2),
		WeatherScore:    formulas.Round(weatherScore, 2),
		HolidayScore:    holidayScore,
		CompetitorScore: formulas.Round(competitorScore, 2),
		SeasonalScore:   formulas.Round(formulas.Clamp(fc.Components.Seasonality, 0, 100), 2),
	}
}

func explain(
	fc forecast.Forecast,
	hasWeather, isHoliday bool,
	holidayName string,
	isWeekend bool,
	analysis Analysis,
	opt optimization.Result,
) string {
	var parts []string
	c := fc.Components

	if isHoliday {
		name := holidayName
		if name == "" {
			name = "Holiday"
		}
		parts = append(parts, fmt.Sprintf("%s demand surge (%+.1f pts occupancy)", name, c.HolidayImpact))
	}
	if hasWeather && math.Abs(c.WeatherImpact) > ExplainWeatherAbove {
		if c.WeatherImpact > 0 {
			parts = append(parts, fmt.Sprintf("Favorable weather forecast (%+.1f pts)", c.WeatherImpact))
		} else {
			parts = append(parts, fmt.Sprintf("Unfavorable weather forecast (%+.1f pts)", c.WeatherImpact))
		}
	}
	if c.Trend > ExplainTrendAbove {
		parts = append(parts, fmt.Sprintf("Rising demand trend (%+.1f pts vs earlier period)", c.Trend))
	}
	if isWeekend {
		parts = append(parts, "Weekend demand")
	}
	if top, ok := analysis.Factors.Top(); ok && math.Abs(top.RevenueCorrelation) > ExplainFactorCorrelation {
		parts = append(parts, fmt.Sprintf("Top revenue driver: %s (r=%.2f)", top.Name, top.RevenueCorrelation))
	}
	switch analysis.Competitor.MarketPosition {
	case competitor.PositionPremium:
		parts = append(parts, fmt.Sprintf("Premium positioning vs competitors (%.0f%% above)", (analysis.Competitor.PriceRatio-1)*100))
	case competitor.PositionValue:
		parts = append(parts, fmt.Sprintf("Value positioning vs competitors (%.0f%% below)", (1-analysis.Competitor.PriceRatio)*100))
	}

	if len(parts) == 0 {
		return opt.Reasoning
	}
	return strings.Join(parts, ". ") + "."
}

func summarize(recs []PricingRecommendation) Summary {
	summary := Summary{Days: len(recs)}
	if len(recs) == 0 {
		return summary
	}

	var priceSum, occSum, impactSum float64
	summary.MinRecommendedPrice = recs[0].RecommendedPrice
	summary.MaxRecommendedPrice = recs[0].RecommendedPrice
	for _, r := range recs {
		priceSum += r.RecommendedPrice
		occSum += r.PredictedOccupancy
		impactSum += r.RevenueImpact
		summary.TotalPredictedRevenue += r.PredictedRevenue
		summary.MinRecommendedPrice = math.Min(summary.MinRecommendedPrice, r.RecommendedPrice)
		summary.MaxRecommendedPrice = math.Max(summary.MaxRecommendedPrice, r.RecommendedPrice)

		switch {
		case r.PriceChange > 0:
			summary.PriceIncreaseDays++
		case r.PriceChange < 0:
			summary.PriceDecreaseDays++
		}
		if r.Confidence == domain.ConfidenceLow {
			summary.LowConfidenceDays++
		}
		if r.IsHoliday {
			summary.HolidayDays++
		}
	}

	n := float64(len(recs))
	summary.AverageRecommendedPrice = formulas.Round(priceSum/n, 2)
	summary.AveragePredictedOccupancy = formulas.Round(occSum/n, 2)
	summary.AverageRevenueImpact = formulas.Round(impactSum/n, 2)
	summary.TotalPredictedRevenue = formulas.Round(summary.TotalPredictedRevenue, 2)
	return summary
}
