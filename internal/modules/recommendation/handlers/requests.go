package handlers

import (
	"fmt"
	"time"

	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/internal/modules/optimization"
	"github.com/aristath/pricing/internal/modules/recommendation"
)

// Defaults are applied to requests that leave a field unset.
type Defaults struct {
	ForecastDays    int
	Strategy        optimization.Strategy
	TargetOccupancy float64
}

func (d Defaults) withFallbacks() Defaults {
	if d.ForecastDays <= 0 {
		d.ForecastDays = recommendation.DefaultForecastDays
	}
	if d.Strategy == "" {
		d.Strategy = optimization.StrategyBalanced
	}
	if d.TargetOccupancy <= 0 {
		d.TargetOccupancy = optimization.DefaultTargetOccupancy
	}
	return d
}

// ObservationRow is one history row on the wire. Temporal fields are derived from Date.
type ObservationRow struct {
	Date             string   `json:"date" yaml:"date"`
	Price            float64  `json:"price" yaml:"price"`
	Occupancy        *float64 `json:"occupancy,omitempty" yaml:"occupancy,omitempty"`
	Bookings         *int     `json:"bookings,omitempty" yaml:"bookings,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Precipitation    *float64 `json:"precipitation,omitempty" yaml:"precipitation,omitempty"`
	WeatherCondition string   `json:"weather_condition,omitempty" yaml:"weather_condition,omitempty"`
	SunshineHours    *float64 `json:"sunshine_hours,omitempty" yaml:"sunshine_hours,omitempty"`
	IsHoliday        bool     `json:"is_holiday" yaml:"is_holiday"`
	HolidayName      string   `json:"holiday_name,omitempty" yaml:"holiday_name,omitempty"`
	CompetitorPrice  *float64 `json:"competitor_price,omitempty" yaml:"competitor_price,omitempty"`
}

// ConstraintsBody bounds the price search. Zero values take the configured defaults.
type ConstraintsBody struct {
	MinPrice        float64 `json:"min_price,omitempty" yaml:"min_price,omitempty"`
	MaxPrice        float64 `json:"max_price,omitempty" yaml:"max_price,omitempty"`
	TargetOccupancy float64 `json:"target_occupancy,omitempty" yaml:"target_occupancy,omitempty"`
	Strategy        string  `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// WeatherBody is a same-day weather forecast on the wire.
type WeatherBody struct {
	Temperature   float64 `json:"temperature" yaml:"temperature"`
	Condition     string  `json:"condition" yaml:"condition"`
	Precipitation float64 `json:"precipitation" yaml:"precipitation"`
}

// RecommendationsBody is the request for a recommendation batch.
type RecommendationsBody struct {
	History             []ObservationRow       `json:"history" yaml:"history"`
	Today               string                 `json:"today,omitempty" yaml:"today,omitempty"`
	ForecastDays        *int                   `json:"forecast_days,omitempty" yaml:"forecast_days,omitempty"`
	CurrentAveragePrice float64                `json:"current_average_price" yaml:"current_average_price"`
	Constraints         ConstraintsBody        `json:"constraints" yaml:"constraints"`
	Weather             map[string]WeatherBody `json:"weather,omitempty" yaml:"weather,omitempty"`
	Holidays            map[string]string      `json:"holidays,omitempty" yaml:"holidays,omitempty"`
}

// AnalysisBody is the request for the batch-level analyses.
type AnalysisBody struct {
	History []ObservationRow `json:"history" yaml:"history"`
}

// OptimizeBody is the request for a single optimizer run.
type OptimizeBody struct {
	Elasticity         float64         `json:"elasticity" yaml:"elasticity"`
	PredictedOccupancy float64         `json:"predicted_occupancy" yaml:"predicted_occupancy"`
	BasePrice          float64         `json:"base_price" yaml:"base_price"`
	Constraints        ConstraintsBody `json:"constraints" yaml:"constraints"`
}

// Request converts a wire body to a core request. now supplies today when the body omits it.
func (d Defaults) Request(body RecommendationsBody, now time.Time) (recommendation.Request, error) {
	d = d.withFallbacks()

	history, err := History(body.History)
	if err != nil {
		return recommendation.Request{}, err
	}

	today := now.UTC()
	if body.Today != "" {
		today, err = parseDate(body.Today)
		if err != nil {
			return recommendation.Request{}, fmt.Errorf("today: %w", err)
		}
	}

	days := d.ForecastDays
	if body.ForecastDays != nil {
		days = *body.ForecastDays
	}
	if days > recommendation.MaxForecastDays {
		return recommendation.Request{}, fmt.Errorf("%w: got %d, maximum is %d",
			recommendation.ErrInvalidForecastDays, days, recommendation.MaxForecastDays)
	}

	constraints, err := d.Constraints(body.Constraints)
	if err != nil {
		return recommendation.Request{}, err
	}

	weather := make(map[string]domain.WeatherSnapshot, len(body.Weather))
	for key, w := range body.Weather {
		date, err := parseDate(key)
		if err != nil {
			return recommendation.Request{}, fmt.Errorf("weather: %w", err)
		}
		weather[domain.DateKey(date)] = domain.WeatherSnapshot{
			Temperature:   w.Temperature,
			Condition:     w.Condition,
			Precipitation: w.Precipitation,
		}
	}

	holidays := make(map[string]string, len(body.Holidays))
	for key, name := range body.Holidays {
		date, err := parseDate(key)
		if err != nil {
			return recommendation.Request{}, fmt.Errorf("holidays: %w", err)
		}
		holidays[domain.DateKey(date)] = name
	}

	return recommendation.Request{
		History:             history,
		Today:               today,
		ForecastDays:        days,
		CurrentAveragePrice: body.CurrentAveragePrice,
		Constraints:         constraints,
		Weather:             weather,
		Holidays:            holidays,
	}, nil
}

// Constraints resolves a constraints body against the defaults and validates it.
func (d Defaults) Constraints(body ConstraintsBody) (optimization.Constraints, error) {
	d = d.withFallbacks()

	strategy := d.Strategy
	if body.Strategy != "" {
		parsed, err := optimization.ParseStrategy(body.Strategy)
		if err != nil {
			return optimization.Constraints{}, err
		}
		strategy = parsed
	}

	target := body.TargetOccupancy
	if target == 0 {
		target = d.TargetOccupancy
	}

	c := optimization.Constraints{
		MinPrice:        body.MinPrice,
		MaxPrice:        body.MaxPrice,
		TargetOccupancy: target,
		Strategy:        strategy,
	}
	if err := c.Validate(); err != nil {
		return optimization.Constraints{}, err
	}
	return c, nil
}

// History converts wire rows to observations with derived calendar fields.
func History(rows []ObservationRow) ([]domain.HistoricalObservation, error) {
	history := make([]domain.HistoricalObservation, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: %w", i, err)
		}
		history = append(history, domain.HistoricalObservation{
			Date:             date,
			Price:            row.Price,
			Occupancy:        row.Occupancy,
			Bookings:         row.Bookings,
			Temperature:      row.Temperature,
			Precipitation:    row.Precipitation,
			WeatherCondition: row.WeatherCondition,
			SunshineHours:    row.SunshineHours,
			IsHoliday:        row.IsHoliday,
			HolidayName:      row.HolidayName,
			CompetitorPrice:  row.CompetitorPrice,
		}.WithTemporal())
	}
	return history, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}
