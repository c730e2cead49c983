package quote

import "math"

const (
	// Flat local allowance: an hour on the road plus 20 minutes between sites.
	localTravelHours  = 1.0 + 20.0/60.0
	localMinimumHours = 3.0
	minDepotLegHours  = 0.5
	hoursPerTask      = 0.5
)

// Travel holds drive times in minutes for the three legs of a long-distance
// move. Local moves ignore it.
type Travel struct {
	OriginToDestinationMinutes    float64 `json:"origin_to_destination_minutes" yaml:"origin_to_destination_minutes"`
	WarehouseToOriginMinutes      float64 `json:"warehouse_to_origin_minutes" yaml:"warehouse_to_origin_minutes"`
	DestinationToWarehouseMinutes float64 `json:"destination_to_warehouse_minutes" yaml:"destination_to_warehouse_minutes"`
}

// DefaultTravel is used when the caller has no drive times yet.
func DefaultTravel() Travel {
	return Travel{
		OriginToDestinationMinutes:    20,
		WarehouseToOriginMinutes:      30,
		DestinationToWarehouseMinutes: 30,
	}
}

// Duration is the time side of a quote, unrounded except for on-site hours.
type Duration struct {
	Onsite              float64
	Travel              float64
	Total               float64
	LocalMinimumApplied bool
}

// RoundUpQuarter rounds hours up to the next quarter hour.
func RoundUpQuarter(hours float64) float64 {
	return math.Ceil(hours*4) / 4
}

// OnsiteHours is the loading and unloading time for weightLbs at the given
// per-mover rate, rounded to hundredths.
func OnsiteHours(weightLbs, lbsPerMoverHour float64, movers int) float64 {
	if movers <= 0 || weightLbs <= 0 || lbsPerMoverHour <= 0 {
		return 0
	}
	return round2(weightLbs / (lbsPerMoverHour * float64(movers)))
}

// TaskHours spreads half an hour of one-mover work per disassembly task
// across the crew.
func TaskHours(tasks, movers int) float64 {
	if movers <= 0 || tasks <= 0 {
		return 0
	}
	return hoursPerTask * float64(tasks) / float64(movers)
}

// TravelHours returns the billable drive time. Local moves get the flat
// allowance; long-distance legs are rounded up to quarter hours, and the two
// depot legs are billed at least half an hour each.
func TravelHours(t Travel, longDistance bool) float64 {
	if !longDistance {
		return localTravelHours
	}
	toOrigin := RoundUpQuarter(max(minDepotLegHours, t.WarehouseToOriginMinutes/60))
	toWarehouse := RoundUpQuarter(max(minDepotLegHours, t.DestinationToWarehouseMinutes/60))
	between := RoundUpQuarter(max(0, t.OriginToDestinationMinutes/60))
	return toOrigin + toWarehouse + between
}

// EstimateDuration computes on-site, travel and total hours for spec with the
// given crew. Local totals never drop below three hours.
func EstimateDuration(spec MoveSpec, lbsPerMoverHour float64, movers int) Duration {
	d := Duration{
		Onsite: OnsiteHours(spec.TotalWeightLbs, lbsPerMoverHour, movers) + TaskHours(spec.tasks(), movers),
		Travel: TravelHours(spec.Travel, spec.LongDistance),
	}
	d.Total = d.Onsite + d.Travel
	if !spec.LongDistance && d.Total < localMinimumHours {
		d.Total = localMinimumHours
		d.LocalMinimumApplied = true
	}
	return d
}
