// Package testing provides shared fixtures for pricing tests.
package testing

import (
	"time"

	"github.com/aristath/pricing/internal/domain"
)

// HistoryOptions shape a synthetic property history. Zero fields take the defaults noted.
type HistoryOptions struct {
	Start            time.Time // 2025-03-01
	Days             int       // 90
	WeekdayPrice     float64   // 100
	WeekendPrice     float64   // 135
	WeekdayOccupancy float64   // 65, plus a 0-3 point wobble
	WeekendOccupancy float64   // 82
	CompetitorPrice  float64   // 105; negative omits the column
	NoTemperature    bool
	HolidayDates     map[string]string
}

func (o HistoryOptions) withDefaults() HistoryOptions {
	if o.Start.IsZero() {
		o.Start = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	if o.Days <= 0 {
		o.Days = 90
	}
	if o.WeekdayPrice == 0 {
		o.WeekdayPrice = 100
	}
	if o.WeekendPrice == 0 {
		o.WeekendPrice = 135
	}
	if o.WeekdayOccupancy == 0 {
		o.WeekdayOccupancy = 65
	}
	if o.WeekendOccupancy == 0 {
		o.WeekendOccupancy = 82
	}
	if o.CompetitorPrice == 0 {
		o.CompetitorPrice = 105
	}
	return o
}

// NewHistoryFixtures returns one observation per day with temporal fields derived.
func NewHistoryFixtures(opts HistoryOptions) []domain.HistoricalObservation {
	opts = opts.withDefaults()

	rows := make([]domain.HistoricalObservation, 0, opts.Days)
	for i := 0; i < opts.Days; i++ {
		row := domain.HistoricalObservation{Date: opts.Start.AddDate(0, 0, i)}.WithTemporal()

		price, occ := opts.WeekdayPrice, opts.WeekdayOccupancy+float64(i%4)
		if row.IsWeekend {
			price, occ = opts.WeekendPrice, opts.WeekendOccupancy
		}
		row.Price = price
		row.Occupancy = domain.Ptr(occ)

		if !opts.NoTemperature {
			row.Temperature = domain.Ptr(10 + float64(i%15))
		}
		if opts.CompetitorPrice > 0 {
			row.CompetitorPrice = domain.Ptr(opts.CompetitorPrice)
		}
		if name, ok := opts.HolidayDates[domain.DateKey(row.Date)]; ok {
			row.IsHoliday = true
			row.HolidayName = name
		}
		rows = append(rows, row)
	}
	return rows
}

// NewHistoryRows returns the same history as NewHistoryFixtures in request-body form.
func NewHistoryRows(opts HistoryOptions) []map[string]interface{} {
	history := NewHistoryFixtures(opts)
	rows := make([]map[string]interface{}, 0, len(history))
	for _, h := range history {
		row := map[string]interface{}{
			"date":       domain.DateKey(h.Date),
			"price":      h.Price,
			"occupancy":  *h.Occupancy,
			"is_holiday": h.IsHoliday,
		}
		if h.Temperature != nil {
			row["temperature"] = *h.Temperature
		}
		if h.CompetitorPrice != nil {
			row["competitor_price"] = *h.CompetitorPrice
		}
		if h.HolidayName != "" {
			row["holiday_name"] = h.HolidayName
		}
		rows = append(rows, row)
	}
	return rows
}
