package rate

import (
	"errors"
	"fmt"
	"strings"
)

// Profile is a location-difficulty tag that decides how many pounds a mover
// can carry per hour.
type Profile string

const (
	MultiFloor     Profile = "multi_floor"
	HeavyStairs    Profile = "heavy_stairs"
	SecondFloorApt Profile = "second_floor_apt"
	FirstFloorHome Profile = "first_floor_home"
	GroundStorage  Profile = "ground_storage"
	DockJob        Profile = "dock_job"
)

var profileRates = map[Profile]float64{
	MultiFloor:     310,
	HeavyStairs:    295,
	SecondFloorApt: 270,
	FirstFloorHome: 325,
	GroundStorage:  370,
	DockJob:        420,
}

// Profiles lists the known profiles from hardest to easiest site.
func Profiles() []Profile {
	return []Profile{SecondFloorApt, HeavyStairs, MultiFloor, FirstFloorHome, GroundStorage, DockJob}
}

// MovementRate returns pounds per mover per hour for p.
// Unknown profiles get the multi-floor rate.
func MovementRate(p Profile) float64 {
	if r, ok := profileRates[p]; ok {
		return r
	}
	return profileRates[MultiFloor]
}

// ParseProfile maps a loosely written tag ("First Floor Home", "dock-job")
// onto a Profile. Empty input means multi-floor. The second result is false
// when the tag is not one of the known profiles; the returned Profile then
// carries the normalized tag and MovementRate falls back for it.
func ParseProfile(name string) (Profile, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return MultiFloor, true
	}
	n = strings.NewReplacer("-", "_", " ", "_").Replace(n)
	p := Profile(n)
	_, ok := profileRates[p]
	return p, ok
}

// Hourly is the dollar rate per mover-hour and per truck-hour.
type Hourly struct {
	Mover float64 `json:"mover_rate" mapstructure:"mover"`
	Truck float64 `json:"truck_rate" mapstructure:"truck"`
}

// Tier holds weekday and Friday/Saturday rates for one distance class.
type Tier struct {
	Weekday Hourly `mapstructure:"weekday"`
	Weekend Hourly `mapstructure:"weekend"`
}

// Table is the 2×2 hourly rate table: local vs long distance, weekday vs
// weekend.
type Table struct {
	Local        Tier `mapstructure:"local"`
	LongDistance Tier `mapstructure:"long_distance"`
}

// ErrRateOrdering is returned by Validate when a premium rate does not exceed
// its base rate.
var ErrRateOrdering = errors.New("rate table ordering")

// DefaultTable returns the standard rates.
func DefaultTable() *Table {
	return &Table{
		Local: Tier{
			Weekday: Hourly{Mover: 50, Truck: 50},
			Weekend: Hourly{Mover: 55, Truck: 55},
		},
		LongDistance: Tier{
			Weekday: Hourly{Mover: 55, Truck: 55},
			Weekend: Hourly{Mover: 60, Truck: 60},
		},
	}
}

// Select returns the hourly rates for a move.
func (t *Table) Select(longDistance, weekend bool) Hourly {
	tier := t.Local
	if longDistance {
		tier = t.LongDistance
	}
	if weekend {
		return tier.Weekend
	}
	return tier.Weekday
}

// Validate checks that weekend rates exceed weekday rates and long-distance
// rates exceed local ones, for both movers and trucks.
func (t *Table) Validate() error {
	checks := []struct {
		name      string
		base, top Hourly
	}{
		{"local weekend", t.Local.Weekday, t.Local.Weekend},
		{"long distance weekend", t.LongDistance.Weekday, t.LongDistance.Weekend},
		{"long distance weekday", t.Local.Weekday, t.LongDistance.Weekday},
		{"long distance weekend over local", t.Local.Weekend, t.LongDistance.Weekend},
	}
	for _, c := range checks {
		if c.top.Mover <= c.base.Mover || c.top.Truck <= c.base.Truck {
			return fmt.Errorf("%w: %s %+v must exceed %+v", ErrRateOrdering, c.name, c.top, c.base)
		}
	}
	return nil
}

// TierName labels a move for reports and metrics.
func TierName(longDistance bool) string {
	if longDistance {
		return "intrastate"
	}
	return "local"
}
