package quote

import "math"

const (
	baseCrew           = 2
	baseCrewMaxLbs     = 4000.0
	extraMoverEveryLbs = 2500.0
	truckCapacityLbs   = 8000.0
)

// MoversNeeded returns the crew size for a shipment: two movers up to
// 4000 lb, then one more for each started 2500 lb beyond that.
func MoversNeeded(weightLbs float64) int {
	if weightLbs <= 0 {
		return 0
	}
	if weightLbs <= baseCrewMaxLbs {
		return baseCrew
	}
	return baseCrew + int(math.Ceil((weightLbs-baseCrewMaxLbs)/extraMoverEveryLbs))
}

// TrucksNeeded returns how many trucks to dispatch; any positive weight gets
// at least one.
func TrucksNeeded(weightLbs float64) int {
	if weightLbs <= 0 {
		return 0
	}
	return max(1, int(math.Ceil(weightLbs/truckCapacityLbs)))
}
