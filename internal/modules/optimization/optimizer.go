package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/pricing/pkg/formulas"
	"github.com/rs/zerolog"
)

// Input is everything one optimization needs.
type Input struct {
	Elasticity         float64
	PredictedOccupancy float64 // percent, at BasePrice
	BasePrice          float64
	Constraints        Constraints
}

// Candidate is one evaluated grid price.
type Candidate struct {
	Price             float64 `json:"price"`
	ExpectedOccupancy float64 `json:"expected_occupancy"`
	ExpectedRevenue   float64 `json:"expected_revenue"`
	Score             float64 `json:"score"`
}

// Result is the selected price and how it was chosen.
type Result struct {
	OptimalPrice        float64     `json:"optimal_price"`
	ExpectedOccupancy   float64     `json:"expected_occupancy"`
	ExpectedRevenue     float64     `json:"expected_revenue"`
	Score               float64     `json:"score"`
	Strategy            Strategy    `json:"strategy"`
	OccupancyWeight     float64     `json:"occupancy_weight"`
	Feasible            bool        `json:"feasible"`
	CandidatesEvaluated int         `json:"candidates_evaluated"`
	FeasibleCandidates  int         `json:"feasible_candidates"`
	Constraints         Constraints `json:"constraints"`
	Reasoning           string      `json:"reasoning"`
}

// PriceOptimizer grid-searches prices along a constant-elasticity demand curve.
type PriceOptimizer struct {
	log zerolog.Logger
}

// NewPriceOptimizer creates a new price optimizer.
func NewPriceOptimizer(log zerolog.Logger) *PriceOptimizer {
	return &PriceOptimizer{
		log: log.With().Str("component", "price_optimizer").Logger(),
	}
}

// Optimize evaluates prices from MinPrice to MaxPrice in steps of 5, keeps those whose expected
// occupancy is within 10 points of the strategy target, and picks the best composite score:
//
//	score = w*occupancy + (1-w)*100*revenue/maxFeasibleRevenue
//
// Conservative strategies prefer candidates meeting the full target when any exist. When nothing
// is feasible the minimum price is returned with Feasible=false.
func (o *PriceOptimizer) Optimize(in Input) Result {
	c := in.Constraints.WithDefaults(in.BasePrice)
	profile, ok := ProfileFor(c.Strategy)
	if !ok {
		o.log.Warn().Str("strategy", string(c.Strategy)).Msg("Unknown strategy, using balanced")
		profile, _ = ProfileFor(StrategyBalanced)
		c.Strategy = StrategyBalanced
	}

	candidates := o.evaluateGrid(in, c)
	floor := profile.OccupancyTarget - FeasibilityMargin

	feasible := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ExpectedOccupancy >= floor {
			feasible = append(feasible, cand)
		}
	}

	result := Result{
		Strategy:            profile.Name,
		OccupancyWeight:     profile.OccupancyWeight,
		CandidatesEvaluated: len(candidates),
		FeasibleCandidates:  len(feasible),
		Constraints:         c,
	}

	if len(feasible) == 0 {
		occ := formulas.Clamp(in.PredictedOccupancy, 0, 100)
		result.OptimalPrice = c.MinPrice
		result.ExpectedOccupancy = occ
		result.ExpectedRevenue = c.MinPrice * occ / 100
		result.Reasoning = fmt.Sprintf(
			"No price between %.2f and %.2f keeps occupancy above %.0f%% (%s target %.0f%% minus %.0f); using minimum price %.2f",
			c.MinPrice, c.MaxPrice, floor, profile.Name, profile.OccupancyTarget, FeasibilityMargin, c.MinPrice)

		o.log.Warn().
			Float64("predicted_occupancy", in.PredictedOccupancy).
			Float64("floor", floor).
			Int("candidates", len(candidates)).
			Msg("No feasible price, falling back to minimum")
		return result
	}

	scoreCandidates(feasible, profile.OccupancyWeight)
	best := bestScoring(feasible)

	if profile.Name == StrategyConservative {
		strict := make([]Candidate, 0, len(feasible))
		for _, cand := range feasible {
			if cand.ExpectedOccupancy >= profile.OccupancyTarget {
				strict = append(strict, cand)
			}
		}
		if len(strict) > 0 {
			best = bestScoring(strict)
		}
	}

	result.OptimalPrice = best.Price
	result.ExpectedOccupancy = best.ExpectedOccupancy
	result.ExpectedRevenue = best.ExpectedRevenue
	result.Score = best.Score
	result.Feasible = true
	result.Reasoning = fmt.Sprintf(
		"Optimal price %.2f yields expected revenue %.2f at %.1f%% occupancy (%.0f%% occupancy weight, %s strategy)",
		best.Price, best.ExpectedRevenue, best.ExpectedOccupancy, profile.OccupancyWeight*100, profile.Name)

	o.log.Debug().
		Float64("price", best.Price).
		Float64("occupancy", best.ExpectedOccupancy).
		Float64("revenue", best.ExpectedRevenue).
		Int("feasible", len(feasible)).
		Str("strategy", string(profile.Name)).
		Msg("Selected optimal price")

	return result
}

// Grid returns the evaluated candidates without feasibility filtering or scoring.
func (o *PriceOptimizer) Grid(in Input) []Candidate {
	return o.evaluateGrid(in, in.Constraints.WithDefaults(in.BasePrice))
}

func (o *PriceOptimizer) evaluateGrid(in Input, c Constraints) []Candidate {
	if in.BasePrice <= 0 {
		return nil
	}
	const epsilon = 1e-9

	candidates := make([]Candidate, 0)
	for i := 0; ; i++ {
		price := c.MinPrice + PriceStep*float64(i)
		if price > c.MaxPrice+epsilon {
			break
		}
		if price <= 0 {
			continue
		}
		occ := ExpectedOccupancy(in.PredictedOccupancy, price, in.BasePrice, in.Elasticity)
		candidates = append(candidates, Candidate{
			Price:             price,
			ExpectedOccupancy: occ,
			ExpectedRevenue:   price * occ / 100,
		})
	}
	return candidates
}

// ExpectedOccupancy moves predicted occupancy along the demand curve occ * (price/base)^elasticity.
func ExpectedOccupancy(predicted, price, basePrice, elasticity float64) float64 {
	return formulas.Clamp(predicted*math.Pow(price/basePrice, elasticity), 0, 100)
}

func scoreCandidates(candidates []Candidate, occupancyWeight float64) {
	maxRevenue := 0.0
	for _, c := range candidates {
		maxRevenue = math.Max(maxRevenue, c.ExpectedRevenue)
	}
	for i := range candidates {
		normalized := 0.0
		if maxRevenue > 0 {
			normalized = 100 * candidates[i].ExpectedRevenue / maxRevenue
		}
		candidates[i].Score = occupancyWeight*candidates[i].ExpectedOccupancy + (1-occupancyWeight)*normalized
	}
}

// bestScoring returns the highest score; ties keep the lower price.
func bestScoring(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best
}
