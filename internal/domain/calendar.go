package domain

import "time"

// DateLayout is the wire format for dates (forecast keys, request bodies).
const DateLayout = "2006-01-02"

// Season is a meteorological season (northern hemisphere).
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// Temporal carries the calendar fields derived from a date.
type Temporal struct {
	DayOfWeek int
	Month     int
	Season    Season
	IsWeekend bool
}

// TemporalFor derives calendar fields for a date. Saturday and Sunday are weekend days.
func TemporalFor(date time.Time) Temporal {
	weekday := date.Weekday()
	month := int(date.Month()) - 1
	return Temporal{
		DayOfWeek: int(weekday),
		Month:     month,
		Season:    seasonForMonth(month),
		IsWeekend: weekday == time.Saturday || weekday == time.Sunday,
	}
}

// WithTemporal returns a copy of the observation with calendar fields derived from its date.
func (o HistoricalObservation) WithTemporal() HistoricalObservation {
	t := TemporalFor(o.Date)
	o.DayOfWeek = t.DayOfWeek
	o.Month = t.Month
	o.Season = t.Season
	o.IsWeekend = t.IsWeekend
	return o
}

// DateKey formats a date as the lookup key used for weather and holiday maps.
func DateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// TruncateDay drops the clock part of a date, keeping its location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func seasonForMonth(month int) Season {
	switch month {
	case 11, 0, 1:
		return SeasonWinter
	case 2, 3, 4:
		return SeasonSpring
	case 5, 6, 7:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}
