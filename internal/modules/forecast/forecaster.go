// Package forecast predicts a day's occupancy with an additive decomposition of history into
// seasonality, weather, holiday, trend and weekend components.
package forecast

import (
	"sort"
	"time"

	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	MinHistory         = 14
	DefaultOccupancy   = 70.0 // used for the flat forecast and empty seasonal buckets
	MinWeatherSamples  = 10
	ColdBelow          = 15.0 // Celsius
	WarmAbove          = 25.0 // Celsius
	SunnyAdjustment    = 5.0
	RainAdjustment     = -10.0
	StormAdjustment    = -15.0
	HeavyPrecipitation = 10.0 // mm
	WetAdjustment      = -5.0

	MinHolidaySamples    = 3
	MinNonHolidaySamples = 10
	DefaultHolidayImpact = 15.0

	MaxTrendWindow  = 14
	MinTrendSamples = 3

	MinWeekendSamples = 5
	MinWeekdaySamples = 10
)

// Confidence tiers by history length. These are local to the forecaster.
const (
	VeryHighConfidenceDays = 90
	HighConfidenceDays     = 60
	MediumConfidenceDays   = 30
)

// Components is the additive breakdown behind a prediction.
type Components struct {
	Seasonality   float64 `json:"seasonality"`
	WeatherImpact float64 `json:"weather_impact"`
	HolidayImpact float64 `json:"holiday_impact"`
	Trend         float64 `json:"trend"`
	WeekendBoost  float64 `json:"weekend_boost"`
}

// Forecast is the predicted occupancy for one date.
type Forecast struct {
	Date               time.Time         `json:"date"`
	PredictedOccupancy float64           `json:"predicted_occupancy"`
	Confidence         domain.Confidence `json:"confidence"`
	Components         Components        `json:"components"`
	HasWeather         bool              `json:"has_weather"`
	SampleSize         int               `json:"sample_size"`
}

// Forecaster predicts occupancy for a single date from history.
type Forecaster struct {
	log zerolog.Logger
}

// NewForecaster creates a new demand forecaster.
func NewForecaster(log zerolog.Logger) *Forecaster {
	return &Forecaster{
		log: log.With().Str("component", "demand_forecaster").Logger(),
	}
}

// Forecast predicts occupancy for date. weather is the same-day forecast and may be nil.
//
// predicted = seasonality + weatherImpact + weekendBoost + trend, clamped to [0, 100].
// The holiday component is reported but not added; callers apply it for holiday dates.
func (f *Forecaster) Forecast(history []domain.HistoricalObservation, date time.Time, weather *domain.WeatherSnapshot) Forecast {
	n := len(history)
	hasWeather := weather != nil

	if n < MinHistory {
		f.log.Debug().Int("history", n).Msg("Not enough history, returning flat forecast")
		return Forecast{
			Date:               date,
			PredictedOccupancy: DefaultOccupancy,
			Confidence:         domain.ConfidenceLow,
			Components:         Components{Seasonality: DefaultOccupancy},
			HasWeather:         hasWeather,
			SampleSize:         n,
		}
	}

	target := domain.TemporalFor(date)
	valid := withOccupancy(history)
	overall := meanOr(occupancies(valid), DefaultOccupancy)

	c := Components{
		Seasonality:   seasonality(valid, target, overall),
		WeatherImpact: weatherImpact(valid, weather, overall),
		HolidayImpact: holidayImpact(valid),
		Trend:         trend(history),
	}
	if target.IsWeekend {
		c.WeekendBoost = weekendBoost(valid)
	}

	predicted := formulas.Clamp(c.Seasonality+c.WeatherImpact+c.WeekendBoost+c.Trend, 0, 100)
	confidence := ConfidenceFor(n, hasWeather)

	f.log.Debug().
		Str("date", domain.DateKey(date)).
		Float64("predicted", predicted).
		Float64("seasonality", c.Seasonality).
		Float64("weather", c.WeatherImpact).
		Float64("trend", c.Trend).
		Float64("weekend", c.WeekendBoost).
		Str("confidence", string(confidence)).
		Msg("Forecast demand")

	return Forecast{
		Date:               date,
		PredictedOccupancy: predicted,
		Confidence:         confidence,
		Components:         c,
		HasWeather:         hasWeather,
		SampleSize:         n,
	}
}

// ConfidenceFor maps history length and weather availability to a confidence tier.
func ConfidenceFor(historyDays int, hasWeather bool) domain.Confidence {
	switch {
	case historyDays >= VeryHighConfidenceDays && hasWeather:
		return domain.ConfidenceVeryHigh
	case historyDays >= HighConfidenceDays:
		return domain.ConfidenceHigh
	case historyDays >= MediumConfidenceDays:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// TemperatureBucket names the band a temperature falls in.
func TemperatureBucket(celsius float64) string {
	switch {
	case celsius < ColdBelow:
		return "cold"
	case celsius > WarmAbove:
		return "warm"
	default:
		return "mild"
	}
}

func seasonality(valid []domain.HistoricalObservation, target domain.Temporal, overall float64) float64 {
	dayMean := meanOr(occupancies(filter(valid, func(o domain.HistoricalObservation) bool {
		return o.DayOfWeek == target.DayOfWeek
	})), DefaultOccupancy)
	monthMean := meanOr(occupancies(filter(valid, func(o domain.HistoricalObservation) bool {
		return o.Month == target.Month
	})), DefaultOccupancy)

	return ((dayMean/overall + monthMean/overall) / 2) * overall
}

func weatherImpact(valid []domain.HistoricalObservation, weather *domain.WeatherSnapshot, overall float64) float64 {
	if weather == nil {
		return 0
	}
	withTemp := filter(valid, func(o domain.HistoricalObservation) bool {
		_, ok := o.TemperatureValue()
		return ok
	})
	if len(withTemp) < MinWeatherSamples {
		return 0
	}

	bucket := TemperatureBucket(weather.Temperature)
	bucketMean := meanOr(occupancies(filter(withTemp, func(o domain.HistoricalObservation) bool {
		temp, _ := o.TemperatureValue()
		return TemperatureBucket(temp) == bucket
	})), overall)

	impact := bucketMean - overall
	if weather.HasKeyword("sun", "clear") {
		impact += SunnyAdjustment
	}
	if weather.HasKeyword("rain") {
		impact += RainAdjustment
	}
	if weather.HasKeyword("storm") {
		impact += StormAdjustment
	}
	if weather.Precipitation > HeavyPrecipitation {
		impact += WetAdjustment
	}
	return impact
}

func holidayImpact(valid []domain.HistoricalObservation) float64 {
	holiday := occupancies(filter(valid, func(o domain.HistoricalObservation) bool { return o.IsHoliday }))
	regular := occupancies(filter(valid, func(o domain.HistoricalObservation) bool { return !o.IsHoliday }))
	if len(holiday) < MinHolidaySamples || len(regular) < MinNonHolidaySamples {
		return DefaultHolidayImpact
	}
	return formulas.Mean(holiday) - formulas.Mean(regular)
}

// trend compares the most recent window (up to 14 days, a third of history) to everything before it.
func trend(history []domain.HistoricalObservation) float64 {
	sorted := make([]domain.HistoricalObservation, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	window := len(sorted) / 3
	if window > MaxTrendWindow {
		window = MaxTrendWindow
	}
	split := len(sorted) - window

	recent := occupancies(withOccupancy(sorted[split:]))
	older := occupancies(withOccupancy(sorted[:split]))
	if len(recent) < MinTrendSamples || len(older) < MinTrendSamples {
		return 0
	}
	return formulas.Mean(recent) - formulas.Mean(older)
}

func weekendBoost(valid []domain.HistoricalObservation) float64 {
	weekend := occupancies(filter(valid, func(o domain.HistoricalObservation) bool { return o.IsWeekend }))
	weekday := occupancies(filter(valid, func(o domain.HistoricalObservation) bool { return !o.IsWeekend }))
	if len(weekend) < MinWeekendSamples || len(weekday) < MinWeekdaySamples {
		return 0
	}
	return formulas.Mean(weekend) - formulas.Mean(weekday)
}

func withOccupancy(rows []domain.HistoricalObservation) []domain.HistoricalObservation {
	return filter(rows, func(o domain.HistoricalObservation) bool {
		_, ok := o.OccupancyValue()
		return ok
	})
}

func filter(rows []domain.HistoricalObservation, keep func(domain.HistoricalObservation) bool) []domain.HistoricalObservation {
	out := make([]domain.HistoricalObservation, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func occupancies(rows []domain.HistoricalObservation) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if occ, ok := r.OccupancyValue(); ok {
			out = append(out, occ)
		}
	}
	return out
}

func meanOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return formulas.Mean(values)
}
