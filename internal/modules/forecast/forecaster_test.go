package forecast

import (
	"testing"
	"time"

	"github.com/aristath/pricing/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(i int, occ float64) domain.HistoricalObservation {
	row := domain.HistoricalObservation{Date: historyStart.AddDate(0, 0, i), Price: 100}.WithTemporal()
	row.Occupancy = domain.Ptr(occ)
	return row
}

func flatHistory(n int, occ float64) []domain.HistoricalObservation {
	rows := make([]domain.HistoricalObservation, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, day(i, occ))
	}
	return rows
}

// warmMildHistory alternates warm (30C, 80%) and mild (20C, 60%) days: overall mean 70, warm mean 80.
func warmMildHistory(n int) []domain.HistoricalObservation {
	rows := make([]domain.HistoricalObservation, 0, n)
	for i := 0; i < n; i++ {
		occ, temp := 60.0, 20.0
		if i%2 == 0 {
			occ, temp = 80.0, 30.0
		}
		row := day(i, occ)
		row.Temperature = domain.Ptr(temp)
		rows = append(rows, row)
	}
	return rows
}

func TestForecast_InsufficientHistory(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	result := f.Forecast(flatHistory(13, 90), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, 70.0, result.PredictedOccupancy)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence)
	assert.Equal(t, Components{Seasonality: 70}, result.Components)
}

func TestForecast_WarmWeatherImpact(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	weather := &domain.WeatherSnapshot{Temperature: 28, Condition: "Partly cloudy", Precipitation: 0}

	result := f.Forecast(warmMildHistory(100), time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), weather)

	assert.InDelta(t, 10.0, result.Components.WeatherImpact, 1e-9)
	assert.Equal(t, domain.ConfidenceVeryHigh, result.Confidence)
	assert.True(t, result.HasWeather)
}

func TestForecast_WeatherAdjustmentsStack(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	weather := &domain.WeatherSnapshot{Temperature: 20, Condition: "Thunderstorm with RAIN", Precipitation: 22}

	result := f.Forecast(warmMildHistory(100), time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), weather)

	// mild bucket -10, rain -10, storm -15, heavy precipitation -5
	assert.InDelta(t, -40.0, result.Components.WeatherImpact, 1e-9)
}

func TestForecast_SunnyBonus(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	weather := &domain.WeatherSnapshot{Temperature: 31, Condition: "Clear sky"}

	result := f.Forecast(warmMildHistory(40), time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), weather)

	assert.InDelta(t, 15.0, result.Components.WeatherImpact, 1e-9)
	assert.Equal(t, domain.ConfidenceMedium, result.Confidence)
}

func TestForecast_WeatherNeedsTemperatureHistory(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	history := flatHistory(100, 70)
	for i := 0; i < 9; i++ {
		history[i].Temperature = domain.Ptr(30.0)
	}
	weather := &domain.WeatherSnapshot{Temperature: 30, Condition: "sunny"}

	result := f.Forecast(history, time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), weather)
	assert.Equal(t, 0.0, result.Components.WeatherImpact)
	assert.Equal(t, domain.ConfidenceVeryHigh, result.Confidence)
}

func TestForecast_NoWeatherCapsConfidenceAtHigh(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	result := f.Forecast(warmMildHistory(100), time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, 0.0, result.Components.WeatherImpact)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence)
}

func TestForecast_HolidayImpactDefault(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	result := f.Forecast(flatHistory(30, 65), time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, 15.0, result.Components.HolidayImpact)
}

func TestForecast_HolidayImpactFromHistory(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	history := flatHistory(30, 60)
	for i := 0; i < 3; i++ {
		history[i*7].IsHoliday = true
		history[i*7].Occupancy = domain.Ptr(95.0)
	}

	result := f.Forecast(history, time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), nil)
	assert.InDelta(t, 35.0, result.Components.HolidayImpact, 1e-9)
}

func TestForecast_TrendUsesChronologicalOrder(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	history := make([]domain.HistoricalObservation, 0, 30)
	for i := 29; i >= 0; i-- {
		occ := 60.0
		if i >= 20 {
			occ = 80
		}
		history = append(history, day(i, occ))
	}

	result := f.Forecast(history, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), nil)
	assert.InDelta(t, 20.0, result.Components.Trend, 1e-9)
}

func TestForecast_TrendWindowCappedAtFourteen(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	history := make([]domain.HistoricalObservation, 0, 60)
	for i := 0; i < 60; i++ {
		occ := 50.0
		if i >= 46 {
			occ = 70
		}
		history = append(history, day(i, occ))
	}

	result := f.Forecast(history, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), nil)
	assert.InDelta(t, 20.0, result.Components.Trend, 1e-9)
}

func TestForecast_WeekendBoost(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	history := make([]domain.HistoricalObservation, 0, 28)
	for i := 0; i < 28; i++ {
		row := day(i, 60)
		if row.IsWeekend {
			row.Occupancy = domain.Ptr(90.0)
		}
		history = append(history, row)
	}

	saturday := time.Date(2025, 2, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, saturday.Weekday())
	weekend := f.Forecast(history, saturday, nil)
	assert.InDelta(t, 30.0, weekend.Components.WeekendBoost, 1e-9)

	wednesday := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	weekday := f.Forecast(history, wednesday, nil)
	assert.Equal(t, 0.0, weekday.Components.WeekendBoost)
}

func TestForecast_SeasonalityFromBuckets(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	// Constant history: every bucket equals the overall mean.
	result := f.Forecast(flatHistory(30, 64), time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), nil)
	assert.InDelta(t, 64.0, result.Components.Seasonality, 1e-9)

	// Unseen month falls back to 70 for that bucket.
	result = f.Forecast(flatHistory(30, 64), time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC), nil)
	assert.InDelta(t, (64.0+70.0)/2, result.Components.Seasonality, 1e-9)
}

func TestForecast_PredictionClamped(t *testing.T) {
	f := NewForecaster(zerolog.Nop())
	history := make([]domain.HistoricalObservation, 0, 30)
	for i := 0; i < 30; i++ {
		occ := 40.0
		if i >= 20 {
			occ = 100
		}
		history = append(history, day(i, occ))
	}
	result := f.Forecast(history, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), nil)
	assert.LessOrEqual(t, result.PredictedOccupancy, 100.0)
	assert.GreaterOrEqual(t, result.PredictedOccupancy, 0.0)
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		days       int
		hasWeather bool
		expected   domain.Confidence
	}{
		{120, true, domain.ConfidenceVeryHigh},
		{90, true, domain.ConfidenceVeryHigh},
		{90, false, domain.ConfidenceHigh},
		{89, true, domain.ConfidenceHigh},
		{60, false, domain.ConfidenceHigh},
		{59, true, domain.ConfidenceMedium},
		{30, false, domain.ConfidenceMedium},
		{29, true, domain.ConfidenceLow},
		{0, false, domain.ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ConfidenceFor(tt.days, tt.hasWeather), "days=%d weather=%v", tt.days, tt.hasWeather)
	}
}

func TestTemperatureBucket(t *testing.T) {
	assert.Equal(t, "cold", TemperatureBucket(14.9))
	assert.Equal(t, "mild", TemperatureBucket(15))
	assert.Equal(t, "mild", TemperatureBucket(25))
	assert.Equal(t, "warm", TemperatureBucket(25.1))
}
