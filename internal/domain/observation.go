// Package domain holds the pricing engine's input and output value types.
//
// Optional numeric fields are pointers: nil means "not observed". Each analyzer
// documents which fields a row needs to count as valid for its statistic; rows
// missing a required field are skipped, never rejected.
package domain

import (
	"strings"
	"time"
)

// HistoricalObservation is one day of property history as delivered by ingestion.
// The engine never mutates observations.
type HistoricalObservation struct {
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	Occupancy *float64  `json:"occupancy,omitempty"` // 0-100
	Bookings  *int      `json:"bookings,omitempty"`

	// Temporal
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday
	Month     int    `json:"month"`       // 0 = January
	Season    Season `json:"season"`
	IsWeekend bool   `json:"is_weekend"`

	// Weather
	Temperature      *float64 `json:"temperature,omitempty"`   // Celsius
	Precipitation    *float64 `json:"precipitation,omitempty"` // mm
	WeatherCondition string   `json:"weather_condition,omitempty"`
	SunshineHours    *float64 `json:"sunshine_hours,omitempty"`

	// Holiday
	IsHoliday   bool   `json:"is_holiday"`
	HolidayName string `json:"holiday_name,omitempty"`

	CompetitorPrice *float64 `json:"competitor_price,omitempty"`
}

// OccupancyValue returns the occupancy and whether it is present and positive.
func (o HistoricalObservation) OccupancyValue() (float64, bool) {
	if o.Occupancy == nil || *o.Occupancy <= 0 {
		return 0, false
	}
	return *o.Occupancy, true
}

// HasPricedOccupancy reports whether the row carries a positive price and occupancy.
func (o HistoricalObservation) HasPricedOccupancy() bool {
	_, ok := o.OccupancyValue()
	return ok && o.Price > 0
}

// CompetitorPriceValue returns the competitor price and whether it is present and positive.
func (o HistoricalObservation) CompetitorPriceValue() (float64, bool) {
	if o.CompetitorPrice == nil || *o.CompetitorPrice <= 0 {
		return 0, false
	}
	return *o.CompetitorPrice, true
}

// TemperatureValue returns the temperature and whether it was observed.
func (o HistoricalObservation) TemperatureValue() (float64, bool) {
	if o.Temperature == nil {
		return 0, false
	}
	return *o.Temperature, true
}

// WeatherSnapshot is a same-day weather forecast for a horizon date.
type WeatherSnapshot struct {
	Temperature   float64 `json:"temperature"`
	Condition     string  `json:"condition"`
	Precipitation float64 `json:"precipitation"`
}

// HasKeyword reports whether the condition text mentions any of the keywords, case-insensitively.
func (w WeatherSnapshot) HasKeyword(keywords ...string) bool {
	condition := strings.ToLower(w.Condition)
	for _, k := range keywords {
		if strings.Contains(condition, k) {
			return true
		}
	}
	return false
}

// Confidence is the coarse reliability label attached to a forecast.
type Confidence string

const (
	ConfidenceVeryHigh Confidence = "very_high"
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceLow      Confidence = "low"
)

// Ptr returns a pointer to v. Handy for building observations with optional fields.
func Ptr[T any](v T) *T {
	return &v
}
