package optimization

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy names a pricing posture.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyBalanced     Strategy = "balanced"
	StrategyAggressive   Strategy = "aggressive"
)

// ErrUnknownStrategy is returned by ParseStrategy for names outside the profile table.
var ErrUnknownStrategy = errors.New("unknown pricing strategy")

// StrategyProfile tunes the optimizer's feasibility floor and scoring blend.
type StrategyProfile struct {
	Name            Strategy `json:"name"`
	PriceAggression float64  `json:"price_aggression"`
	OccupancyTarget float64  `json:"occupancy_target"` // percent
	OccupancyWeight float64  `json:"occupancy_weight"` // share of the composite score given to occupancy
}

var strategyProfiles = map[Strategy]StrategyProfile{
	StrategyConservative: {Name: StrategyConservative, PriceAggression: 0.3, OccupancyTarget: 90, OccupancyWeight: 0.7},
	StrategyBalanced:     {Name: StrategyBalanced, PriceAggression: 0.7, OccupancyTarget: 80, OccupancyWeight: 0.6},
	StrategyAggressive:   {Name: StrategyAggressive, PriceAggression: 1.2, OccupancyTarget: 70, OccupancyWeight: 0.5},
}

// ProfileFor returns the profile for a strategy and whether it was known.
func ProfileFor(s Strategy) (StrategyProfile, bool) {
	p, ok := strategyProfiles[s]
	return p, ok
}

// Profiles lists every profile from most to least occupancy-focused.
func Profiles() []StrategyProfile {
	return []StrategyProfile{
		strategyProfiles[StrategyConservative],
		strategyProfiles[StrategyBalanced],
		strategyProfiles[StrategyAggressive],
	}
}

// ParseStrategy resolves a strategy name. An empty name selects balanced.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if s == "" {
		return StrategyBalanced, nil
	}
	if _, ok := strategyProfiles[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}
