// Package factors ranks engineered demand drivers by their correlation with revenue and occupancy.
package factors

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/pricing/internal/domain"
	"github.com/aristath/pricing/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	MinSamples         = 20
	MinFactorSamples   = 10 // temperature and competitor gap need this many bearing rows
	TopDriverCount     = 3
	StrongCorrelation  = 0.3
	NotableCorrelation = 0.2
)

// Factor names
const (
	FactorWeekend       = "weekend"
	FactorTemperature   = "temperature"
	FactorHoliday       = "holiday"
	FactorCompetitorGap = "competitor_price_gap"
	FactorDayOfWeek     = "day_of_week"
)

// Factor is one candidate driver with its correlations.
type Factor struct {
	Name                 string  `json:"name"`
	RevenueCorrelation   float64 `json:"revenue_correlation"`
	OccupancyCorrelation float64 `json:"occupancy_correlation"`
	Importance           float64 `json:"importance"`
	SampleSize           int     `json:"sample_size"`
	Insight              string  `json:"insight"`
}

// Analysis is the ranked factor list. Factors is empty when history is too thin.
type Analysis struct {
	Factors    []Factor `json:"factors"`
	TopDrivers []string `json:"top_drivers"`
	SampleSize int      `json:"sample_size"`
	Summary    string   `json:"summary"`
}

// Top returns the highest-ranked factor, if any.
func (a Analysis) Top() (Factor, bool) {
	if len(a.Factors) == 0 {
		return Factor{}, false
	}
	return a.Factors[0], true
}

// Analyzer runs the correlation battery.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new factor correlation analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("component", "factor_analyzer").Logger(),
	}
}

type sample struct {
	obs       domain.HistoricalObservation
	occupancy float64
	revenue   float64
}

// Analyze correlates weekend, temperature, holiday, competitor gap and day of week with revenue
// (price x occupancy / 100) and occupancy, sorted by importance.
func (a *Analyzer) Analyze(history []domain.HistoricalObservation) Analysis {
	samples := make([]sample, 0, len(history))
	for _, h := range history {
		if !h.HasPricedOccupancy() {
			continue
		}
		occ, _ := h.OccupancyValue()
		samples = append(samples, sample{obs: h, occupancy: occ, revenue: h.Price * occ / 100})
	}

	if len(samples) < MinSamples {
		a.log.Debug().Int("samples", len(samples)).Msg("Not enough data for factor analysis")
		return Analysis{
			Factors:    []Factor{},
			TopDrivers: []string{},
			SampleSize: len(samples),
			Summary:    fmt.Sprintf("Insufficient data for factor analysis: %d valid days, need at least %d", len(samples), MinSamples),
		}
	}

	result := []Factor{
		correlate(FactorWeekend, samples, func(s sample) (float64, bool) {
			return indicator(s.obs.IsWeekend), true
		}),
	}

	if f, ok := correlateIfEnough(FactorTemperature, samples, func(s sample) (float64, bool) {
		return s.obs.TemperatureValue()
	}); ok {
		result = append(result, f)
	}

	result = append(result, correlate(FactorHoliday, samples, func(s sample) (float64, bool) {
		return indicator(s.obs.IsHoliday), true
	}))

	if f, ok := correlateIfEnough(FactorCompetitorGap, samples, func(s sample) (float64, bool) {
		comp, ok := s.obs.CompetitorPriceValue()
		return s.obs.Price - comp, ok
	}); ok {
		result = append(result, f)
	}

	result = append(result, correlate(FactorDayOfWeek, samples, func(s sample) (float64, bool) {
		return float64(s.obs.DayOfWeek), true
	}))

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Importance > result[j].Importance
	})

	top := make([]string, 0, TopDriverCount)
	for i := 0; i < len(result) && i < TopDriverCount; i++ {
		top = append(top, result[i].Name)
	}

	a.log.Info().
		Int("samples", len(samples)).
		Strs("top_drivers", top).
		Msg("Ranked demand factors")

	return Analysis{
		Factors:    result,
		TopDrivers: top,
		SampleSize: len(samples),
		Summary:    fmt.Sprintf("Analyzed %d factors over %d days", len(result), len(samples)),
	}
}

func correlateIfEnough(name string, samples []sample, value func(sample) (float64, bool)) (Factor, bool) {
	f := correlate(name, samples, value)
	return f, f.SampleSize >= MinFactorSamples
}

func correlate(name string, samples []sample, value func(sample) (float64, bool)) Factor {
	xs := make([]float64, 0, len(samples))
	revenue := make([]float64, 0, len(samples))
	occupancy := make([]float64, 0, len(samples))
	for _, s := range samples {
		x, ok := value(s)
		if !ok {
			continue
		}
		xs = append(xs, x)
		revenue = append(revenue, s.revenue)
		occupancy = append(occupancy, s.occupancy)
	}

	f := Factor{
		Name:                 name,
		RevenueCorrelation:   formulas.Correlation(xs, revenue),
		OccupancyCorrelation: formulas.Correlation(xs, occupancy),
		SampleSize:           len(xs),
	}
	f.Importance = math.Abs(f.RevenueCorrelation) + math.Abs(f.OccupancyCorrelation)
	f.Insight = insightFor(f)
	return f
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func insightFor(f Factor) string {
	switch f.Name {
	case FactorWeekend:
		return signed(f.RevenueCorrelation, StrongCorrelation,
			"Weekends generate more revenue; apply a weekend premium.",
			"Weekdays out-earn weekends; weekend promotions could lift occupancy.",
			"Weekend status has little effect on revenue.")
	case FactorTemperature:
		return signed(f.OccupancyCorrelation, StrongCorrelation,
			"Warmer days bring more guests; raise prices when warm weather is forecast.",
			"Cooler days bring more guests; warm spells call for softer pricing.",
			"Temperature has little effect on occupancy.")
	case FactorHoliday:
		return signed(f.RevenueCorrelation, NotableCorrelation,
			"Holidays lift revenue; price holiday dates higher.",
			"Holidays underperform regular days; avoid holiday surcharges.",
			"Holidays have little effect on revenue.")
	case FactorCompetitorGap:
		return signed(f.OccupancyCorrelation, StrongCorrelation,
			"Guests accept pricing above competitors; there is room for a premium.",
			"Occupancy drops as you price above competitors; track competitor rates closely.",
			"The competitor price gap has little effect on occupancy.")
	case FactorDayOfWeek:
		return signed(f.RevenueCorrelation, NotableCorrelation,
			"Revenue builds toward the end of the week; stagger prices upward from Sunday to Saturday.",
			"Revenue is strongest early in the week; front-load higher rates.",
			"Day of week has little linear effect on revenue.")
	default:
		return ""
	}
}

func signed(corr, threshold float64, positive, negative, weak string) string {
	switch {
	case corr > threshold:
		return positive
	case corr < -threshold:
		return negative
	default:
		return weak
	}
}
