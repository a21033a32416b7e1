// Package optimization searches a price grid for the strategy-weighted revenue/occupancy optimum.
package optimization

import "fmt"

// Default bounds relative to the base price
const (
	MinPriceFactor         = 0.7
	MaxPriceFactor         = 1.5
	DefaultTargetOccupancy = 75.0
	PriceStep              = 5.0  // currency units between grid candidates
	FeasibilityMargin      = 10.0 // candidates may fall this many points short of the strategy target
)

// Constraints bound the price search. Zero values are filled by WithDefaults.
type Constraints struct {
	MinPrice        float64  `json:"min_price"`
	MaxPrice        float64  `json:"max_price"`
	TargetOccupancy float64  `json:"target_occupancy"`
	Strategy        Strategy `json:"strategy"`
}

// WithDefaults fills unset bounds from the base price: 0.7x and 1.5x, target occupancy 75, balanced strategy.
// A defaulted bound never crosses an explicit one.
func (c Constraints) WithDefaults(basePrice float64) Constraints {
	explicitMin, explicitMax := c.MinPrice > 0, c.MaxPrice > 0
	if !explicitMin {
		c.MinPrice = MinPriceFactor * basePrice
		if explicitMax && c.MinPrice > c.MaxPrice {
			c.MinPrice = c.MaxPrice
		}
	}
	if !explicitMax {
		c.MaxPrice = MaxPriceFactor * basePrice
		if explicitMin && c.MaxPrice < c.MinPrice {
			c.MaxPrice = c.MinPrice
		}
	}
	if c.TargetOccupancy <= 0 {
		c.TargetOccupancy = DefaultTargetOccupancy
	}
	if c.Strategy == "" {
		c.Strategy = StrategyBalanced
	}
	return c
}

// Validate checks the bounds are usable.
func (c Constraints) Validate() error {
	if c.MinPrice < 0 || c.MaxPrice < 0 {
		return fmt.Errorf("price bounds must not be negative: min=%.2f max=%.2f", c.MinPrice, c.MaxPrice)
	}
	if c.MinPrice > 0 && c.MaxPrice > 0 && c.MinPrice > c.MaxPrice {
		return fmt.Errorf("invalid price bounds: min=%.2f > max=%.2f", c.MinPrice, c.MaxPrice)
	}
	if c.TargetOccupancy < 0 || c.TargetOccupancy > 100 {
		return fmt.Errorf("target occupancy %.1f outside 0-100", c.TargetOccupancy)
	}
	if c.Strategy != "" {
		if _, ok := ProfileFor(c.Strategy); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
		}
	}
	return nil
}
