package quote

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movequote/internal/catalog"
	"movequote/internal/rate"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	idx, err := catalog.Default()
	require.NoError(t, err)
	return NewEngine(idx, nil, nil)
}

func TestComputeLocalWeekday(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{
		TotalWeightLbs: 4000,
		Profile:        rate.FirstFloorHome,
	})

	assert.Equal(t, "local", q.Tier)
	assert.Equal(t, 325.0, q.MovementRate)
	assert.Equal(t, 2, q.Movers)
	assert.Equal(t, 1, q.Trucks)
	assert.Equal(t, 6.15, q.OnsiteHours)
	assert.Equal(t, 1.33, q.TravelHours)
	assert.Equal(t, 7.48, q.TotalHours)
	assert.Equal(t, rate.Hourly{Mover: 50, Truck: 50}, q.HourlyRates)
	assert.Equal(t, 748.33, q.Costs.Mover)
	assert.Equal(t, 374.17, q.Costs.Truck)
	assert.Equal(t, 20.0, q.Costs.Protective)
	assert.Equal(t, 1142.5, q.Subtotal)

	require.NotNil(t, q.Notes.LocalMinimumHours)
	assert.Equal(t, 3.0, *q.Notes.LocalMinimumHours)
	assert.False(t, q.Notes.LocalMinimumApplied)
	assert.False(t, q.Notes.QuarterHourRounding)
}

func TestComputeLocalMinimumFires(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: 100, Profile: rate.MultiFloor})

	assert.Equal(t, 3.0, q.TotalHours)
	assert.True(t, q.Notes.LocalMinimumApplied)
	assert.Equal(t, 300.0, q.Costs.Mover)
	assert.Equal(t, 150.0, q.Costs.Truck)
	assert.Equal(t, 455.0, q.Subtotal)
}

func TestComputeLongDistanceWeekend(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{
		TotalWeightLbs:   3000,
		Profile:          rate.GroundStorage,
		FridayOrSaturday: true,
		LongDistance:     true,
		Travel: Travel{
			WarehouseToOriginMinutes:      10,
			DestinationToWarehouseMinutes: 50,
			OriginToDestinationMinutes:    100,
		},
	})

	assert.Equal(t, "intrastate", q.Tier)
	assert.Equal(t, 4.05, q.OnsiteHours)
	assert.Equal(t, 3.25, q.TravelHours)
	assert.Equal(t, 7.3, q.TotalHours)
	assert.Equal(t, rate.Hourly{Mover: 60, Truck: 60}, q.HourlyRates)
	assert.Equal(t, 876.0, q.Costs.Mover)
	assert.Equal(t, 438.0, q.Costs.Truck)
	assert.Equal(t, 15.0, q.Costs.Protective)
	assert.Equal(t, 1329.0, q.Subtotal)
	assert.Nil(t, q.Notes.LocalMinimumHours)
	assert.True(t, q.Notes.QuarterHourRounding)
}

func TestComputeLongDistanceShortMoveNotClamped(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: 100, LongDistance: true})
	assert.Equal(t, 1.16, q.TotalHours)
	assert.False(t, q.Notes.LocalMinimumApplied)
}

func TestComputeMoverOverride(t *testing.T) {
	zero := 0
	q := newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: 4000, MoverOverride: &zero})
	assert.Equal(t, 0, q.Movers)
	assert.Equal(t, 1, q.Trucks)
	assert.Zero(t, q.OnsiteHours)
	assert.Equal(t, 3.0, q.TotalHours)
	assert.Zero(t, q.Costs.Mover)
	assert.Equal(t, 150.0, q.Costs.Truck)

	four := 4
	q = newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: 4000, Profile: rate.FirstFloorHome, MoverOverride: &four})
	assert.Equal(t, 4, q.Movers)
	assert.Equal(t, 3.08, q.OnsiteHours)
}

func TestComputeClampsNegativeWeight(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: -500})
	assert.Zero(t, q.WeightLbs)
	assert.Zero(t, q.Movers)
	assert.Zero(t, q.Trucks)
	assert.Zero(t, q.OnsiteHours)
	assert.Zero(t, q.Costs.Protective)
	assert.Zero(t, q.Subtotal)
}

func TestComputeUnknownProfileUsesMultiFloor(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: 620, Profile: "treehouse"})
	assert.Equal(t, 310.0, q.MovementRate)
	assert.Equal(t, 1.0, q.OnsiteHours)
	assert.Equal(t, rate.Profile("treehouse"), q.Profile)
}

func TestComputeIncludesBoxes(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{
		TotalWeightLbs: 4000,
		Profile:        rate.FirstFloorHome,
		Boxes: BoxOrder{
			Purchase:        map[string]int{"Dishpak": 2, "Mirror": 1},
			PackingServices: map[string]int{"Dishpak": 2},
		},
	})
	assert.Equal(t, 71.84, q.Costs.BoxesAndPacking.Total)
	assert.Equal(t, 1214.34, q.Subtotal)
}

func TestComputeWithCustomRates(t *testing.T) {
	rates := rate.DefaultTable()
	rates.Local.Weekday = rate.Hourly{Mover: 40, Truck: 30}
	e := NewEngine(nil, rates, DefaultPricing())

	q := e.Compute(MoveSpec{TotalWeightLbs: 100})
	assert.Equal(t, 240.0, q.Costs.Mover)
	assert.Equal(t, 90.0, q.Costs.Truck)
}

func TestEstimateFromOrder(t *testing.T) {
	est, err := newTestEngine(t).Estimate(catalog.Order{
		{Name: "Sofa - 3 Seater", Quantity: 1},
		{Name: "Dresser - Double", Quantity: 1},
	}, MoveSpec{Profile: rate.FirstFloorHome})
	require.NoError(t, err)

	assert.Equal(t, 490.0, est.Quote.WeightLbs)
	assert.Equal(t, 2, est.Quote.Movers)
	assert.Equal(t, 1, est.Quote.Trucks)
	require.Len(t, est.Items, 2)
	assert.Equal(t, "Sofa - 3 Seater", est.Items[0].MatchedName)
}

func TestEstimateEmptyCatalog(t *testing.T) {
	_, err := NewEngine(catalog.NewIndex(nil), nil, nil).Estimate(catalog.Order{{Name: "sofa", Quantity: 1}}, MoveSpec{})
	assert.ErrorIs(t, err, catalog.ErrCatalogEmpty)
}

func TestSummarize(t *testing.T) {
	s, err := newTestEngine(t).Summarize(catalog.Order{
		{Name: "Sofa - 3 Seater", Quantity: 1},
		{Name: "Dresser - Double", Quantity: 1},
	}, rate.FirstFloorHome)
	require.NoError(t, err)

	assert.Equal(t, 490.0, s.TotalWeightLbs)
	assert.Equal(t, 2, s.MoversNeeded)
	assert.Equal(t, 1, s.TrucksNeeded)
	assert.Equal(t, 0.75, s.EstimatedLaborHours)
	assert.Equal(t, 325.0, s.MovementRate)
	assert.Len(t, s.Items, 2)
}

func TestQuoteJSONShape(t *testing.T) {
	q := newTestEngine(t).Compute(MoveSpec{TotalWeightLbs: 4000, Profile: rate.FirstFloorHome})
	raw, err := json.Marshal(q)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "first_floor_home", m["location_profile"])
	assert.Contains(t, m, "subtotal")
	costs := m["costs"].(map[string]any)
	assert.Contains(t, costs, "boxes_and_packing")
	assert.Equal(t, 3.0, m["notes"].(map[string]any)["local_minimum_hours"])
}

func TestEngineConcurrentQuotes(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			est, err := e.Estimate(catalog.Order{{Name: "sofa 3 seater", Quantity: 2}}, MoveSpec{})
			assert.NoError(t, err)
			assert.Equal(t, 700.0, est.Quote.WeightLbs)
		}()
	}
	wg.Wait()
}

func TestParamsSpecDefaults(t *testing.T) {
	spec, known := Params{LocationProfile: "First Floor Home"}.Spec(1200)
	assert.True(t, known)
	assert.Equal(t, rate.FirstFloorHome, spec.Profile)
	assert.Equal(t, 1200.0, spec.TotalWeightLbs)
	assert.Equal(t, DefaultTravel(), spec.Travel)

	minutes := 95.0
	spec, known = Params{LocationProfile: "attic", OriginToDestinationMinutes: &minutes}.Spec(0)
	assert.False(t, known)
	assert.Equal(t, 95.0, spec.Travel.OriginToDestinationMinutes)
	assert.Equal(t, 30.0, spec.Travel.WarehouseToOriginMinutes)
}

func TestPriceFromItems(t *testing.T) {
	est, known, err := newTestEngine(t).Price(catalog.Order{
		{Name: "Sofa - 3 Seater", Quantity: 1},
		{Name: "Dresser - Double", Quantity: 1},
	}, nil, Params{})
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 490.0, est.Quote.WeightLbs)
	assert.Equal(t, 455.0, est.Quote.Subtotal)
	assert.Len(t, est.Items, 2)
}

func TestPriceWeightWins(t *testing.T) {
	w := 4000.0
	est, known, err := newTestEngine(t).Price(catalog.Order{{Name: "Cooler", Quantity: 1}}, &w, Params{LocationProfile: "first-floor home"})
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, 4000.0, est.Quote.WeightLbs)
	assert.Equal(t, 1142.5, est.Quote.Subtotal)
	require.Len(t, est.Items, 1)
	assert.Equal(t, "Cooler", est.Items[0].MatchedName)
}

func TestPriceUnknownProfile(t *testing.T) {
	w := 620.0
	est, known, err := NewEngine(nil, nil, nil).Price(nil, &w, Params{LocationProfile: "treehouse"})
	require.NoError(t, err)
	assert.False(t, known)
	assert.Equal(t, 310.0, est.Quote.MovementRate)
	assert.Empty(t, est.Items)
}
