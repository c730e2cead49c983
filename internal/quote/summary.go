package quote

import (
	"movequote/internal/catalog"
	"movequote/internal/rate"
)

// Summary is a quick sizing of an order without any pricing.
type Summary struct {
	TotalWeightLbs      float64                `json:"total_weight_lbs"`
	MoversNeeded        int                    `json:"movers_needed"`
	TrucksNeeded        int                    `json:"trucks_needed"`
	EstimatedLaborHours float64                `json:"estimated_labor_hours"`
	MovementRate        float64                `json:"movement_rate_lbs_per_mover_hour"`
	Profile             rate.Profile           `json:"profile"`
	Items               []catalog.ResolvedLine `json:"items"`
}

// Summarize sizes the crew and on-site time for order at a site of the given
// profile.
func (e *Engine) Summarize(order catalog.Order, profile rate.Profile) (Summary, error) {
	total, lines, err := e.catalog.Aggregate(order)
	if err != nil {
		return Summary{}, err
	}
	movers := MoversNeeded(total)
	movementRate := rate.MovementRate(profile)
	return Summary{
		TotalWeightLbs:      total,
		MoversNeeded:        movers,
		TrucksNeeded:        TrucksNeeded(total),
		EstimatedLaborHours: OnsiteHours(total, movementRate, movers),
		MovementRate:        movementRate,
		Profile:             profile,
		Items:               lines,
	}, nil
}
