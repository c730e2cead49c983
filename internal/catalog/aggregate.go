package catalog

import "math"

// ResolvedLine is an order line after matching against the catalog.
type ResolvedLine struct {
	Requested   string  `json:"requested"`
	MatchedName string  `json:"matched_name"`
	Quantity    int     `json:"quantity"`
	WeightEach  float64 `json:"weight_each"`
	WeightTotal float64 `json:"weight_total"`
	Confidence  float64 `json:"confidence"`
	Handling    *string `json:"handling"`
	Surcharge   *string `json:"surcharge"`

	// RawConfidence is the unrounded score; threshold checks use it.
	RawConfidence float64 `json:"-"`
	Match         Item    `json:"-"`
}

// Aggregate resolves every line of order and sums unit weight × quantity.
// Lines come back in input order; none are dropped.
func (x *Index) Aggregate(order Order) (float64, []ResolvedLine, error) {
	total := 0.0
	lines := make([]ResolvedLine, 0, len(order))
	for _, ol := range order {
		it, confidence, err := x.Resolve(ol.Name)
		if err != nil {
			return 0, nil, err
		}
		w := it.Weight * float64(max(0, ol.Quantity))
		total += w
		lines = append(lines, ResolvedLine{
			Requested:     ol.Name,
			MatchedName:   it.Name,
			Quantity:      ol.Quantity,
			WeightEach:    it.Weight,
			WeightTotal:   w,
			Confidence:    math.Round(confidence*1000) / 1000,
			Handling:      it.Handling,
			Surcharge:     it.Surcharge,
			RawConfidence: confidence,
			Match:         it,
		})
	}
	return total, lines, nil
}

// LowConfidence returns the lines whose unrounded confidence falls below
// threshold.
func LowConfidence(lines []ResolvedLine, threshold float64) []ResolvedLine {
	var out []ResolvedLine
	for _, l := range lines {
		if l.RawConfidence < threshold {
			out = append(out, l)
		}
	}
	return out
}
