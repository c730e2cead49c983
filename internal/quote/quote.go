// Package quote turns a shipment weight and move parameters into crew size,
// hours and an itemized price.
package quote

import (
	"movequote/internal/catalog"
	"movequote/internal/rate"
)

// MoveSpec is everything needed to price a move once the weight is known.
type MoveSpec struct {
	TotalWeightLbs     float64
	Profile            rate.Profile
	FridayOrSaturday   bool
	LongDistance       bool
	Travel             Travel
	DisassembledBeds   int
	SleepNumberBeds    int
	DesksToDisassemble int
	Boxes              BoxOrder
	// MoverOverride replaces the weight-based crew size when set.
	MoverOverride *int
}

func (s MoveSpec) tasks() int {
	return max(0, s.DisassembledBeds) + max(0, s.SleepNumberBeds) + max(0, s.DesksToDisassemble)
}

// Costs breaks the subtotal down by source.
type Costs struct {
	Mover           float64  `json:"mover_cost"`
	Truck           float64  `json:"truck_cost"`
	BoxesAndPacking BoxCosts `json:"boxes_and_packing"`
	Protective      float64  `json:"protective_materials"`
}

// Notes records which time rules shaped the quote.
type Notes struct {
	LocalMinimumHours   *float64 `json:"local_minimum_hours"`
	LocalMinimumApplied bool     `json:"local_minimum_applied"`
	QuarterHourRounding bool     `json:"quarter_hour_rounding"`
}

// Quote is a priced move. Money and hours are rounded to cents and
// hundredths.
type Quote struct {
	WeightLbs    float64      `json:"weight_lbs"`
	Profile      rate.Profile `json:"location_profile"`
	Tier         string       `json:"tier"`
	MovementRate float64      `json:"movement_rate_lbs_per_mover_hour"`
	Movers       int          `json:"movers"`
	Trucks       int          `json:"trucks"`
	OnsiteHours  float64      `json:"onsite_hours"`
	TravelHours  float64      `json:"travel_hours"`
	TotalHours   float64      `json:"total_hours"`
	HourlyRates  rate.Hourly  `json:"hourly_rates"`
	Costs        Costs        `json:"costs"`
	Subtotal     float64      `json:"subtotal"`
	Notes        Notes        `json:"notes"`
}

// Compute prices spec against the given tables.
func Compute(spec MoveSpec, rates *rate.Table, pricing *Pricing) Quote {
	spec.TotalWeightLbs = max(0, spec.TotalWeightLbs)
	movers := MoversNeeded(spec.TotalWeightLbs)
	if spec.MoverOverride != nil {
		movers = max(0, *spec.MoverOverride)
	}
	trucks := TrucksNeeded(spec.TotalWeightLbs)
	movementRate := rate.MovementRate(spec.Profile)

	d := EstimateDuration(spec, movementRate, movers)
	hourly := rates.Select(spec.LongDistance, spec.FridayOrSaturday)

	moverCost := hourly.Mover * float64(movers) * d.Total
	truckCost := hourly.Truck * float64(trucks) * d.Total
	boxes := pricing.BoxCosts(spec.Boxes)
	protective := pricing.ProtectiveCost(spec.TotalWeightLbs)

	q := Quote{
		WeightLbs:    spec.TotalWeightLbs,
		Profile:      spec.Profile,
		Tier:         rate.TierName(spec.LongDistance),
		MovementRate: movementRate,
		Movers:       movers,
		Trucks:       trucks,
		OnsiteHours:  round2(d.Onsite),
		TravelHours:  round2(d.Travel),
		TotalHours:   round2(d.Total),
		HourlyRates:  hourly,
		Costs: Costs{
			Mover:           round2(moverCost),
			Truck:           round2(truckCost),
			BoxesAndPacking: boxes.rounded(),
			Protective:      round2(protective),
		},
		Subtotal: round2(moverCost + truckCost + boxes.Total + protective),
		Notes: Notes{
			LocalMinimumApplied: d.LocalMinimumApplied,
			QuarterHourRounding: spec.LongDistance,
		},
	}
	if !spec.LongDistance {
		minimum := localMinimumHours
		q.Notes.LocalMinimumHours = &minimum
	}
	return q
}

// Engine prices orders against a fixed catalog and fixed rate and price
// tables. It holds no mutable state and may be shared between goroutines.
type Engine struct {
	catalog *catalog.Index
	rates   *rate.Table
	pricing *Pricing
}

// NewEngine returns an Engine. Nil tables fall back to the defaults.
func NewEngine(idx *catalog.Index, rates *rate.Table, pricing *Pricing) *Engine {
	if rates == nil {
		rates = rate.DefaultTable()
	}
	if pricing == nil {
		pricing = DefaultPricing()
	}
	return &Engine{catalog: idx, rates: rates, pricing: pricing}
}

// Catalog returns the index the engine resolves items against.
func (e *Engine) Catalog() *catalog.Index { return e.catalog }

// Compute prices a move whose weight is already known.
func (e *Engine) Compute(spec MoveSpec) Quote {
	return Compute(spec, e.rates, e.pricing)
}

// Estimate is a quote together with the item breakdown that produced its
// weight.
type Estimate struct {
	Quote Quote                  `json:"quote"`
	Items []catalog.ResolvedLine `json:"items"`
}

// Estimate resolves order, sets the spec weight from it and prices the move.
func (e *Engine) Estimate(order catalog.Order, spec MoveSpec) (Estimate, error) {
	total, lines, err := e.catalog.Aggregate(order)
	if err != nil {
		return Estimate{}, err
	}
	spec.TotalWeightLbs = total
	return Estimate{Quote: e.Compute(spec), Items: lines}, nil
}

// Price quotes a move from an item list or from a known weight. A non-nil
// weightLbs wins over order; the order is then still resolved so callers can
// check the matches. The bool reports whether the location profile was known.
func (e *Engine) Price(order catalog.Order, weightLbs *float64, p Params) (Estimate, bool, error) {
	total, lines, err := e.catalog.Aggregate(order)
	if err != nil {
		return Estimate{}, false, err
	}
	if weightLbs != nil {
		total = *weightLbs
	}
	spec, known := p.Spec(total)
	return Estimate{Quote: e.Compute(spec), Items: lines}, known, nil
}
