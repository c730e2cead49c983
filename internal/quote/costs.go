package quote

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// BoxRate is the per-unit price of a box or material and the packing labor
// charged per unit packed.
type BoxRate struct {
	Unit  float64 `json:"unit"`
	Labor float64 `json:"labor"`
}

// Pricing holds the material price lists. Purchase-side charges are taxed;
// rental-side charges are not.
type Pricing struct {
	Purchase             map[string]BoxRate
	Rental               map[string]BoxRate
	SalesTax             float64
	ProtectivePer1000Lbs float64
}

// DefaultPricing returns the standard price lists.
func DefaultPricing() *Pricing {
	return &Pricing{
		Purchase: map[string]BoxRate{
			"Dishpak":                        {7.75, 16.67},
			"1.5":                            {2.25, 8.33},
			"30":                             {3.50, 8.33},
			"4.5":                            {5.00, 8.33},
			"6":                              {6.75, 8.33},
			"Mirror":                         {17.99, 12.50},
			"Flat Sceen TV":                  {80.00, 25.00},
			"Wardrobe":                       {22.00, 6.25},
			"Twin mattress bag":              {11.99, 8.33},
			"King/Queen/double mattress bag": {16.99, 12.00},
		},
		Rental: map[string]BoxRate{
			"Flat Sceen TV": {50.00, 25.00},
			"Wardrobe":      {7.00, 6.25},
		},
		SalesTax:             0.075,
		ProtectivePer1000Lbs: 5.0,
	}
}

// BoxOrder lists materials by type name: units bought, units rented, and
// units the crew should pack.
type BoxOrder struct {
	Purchase        map[string]int `json:"purchase" yaml:"purchase" validate:"omitempty,dive,gte=0"`
	Rental          map[string]int `json:"rental" yaml:"rental" validate:"omitempty,dive,gte=0"`
	PackingServices map[string]int `json:"packing_services" yaml:"packing_services" validate:"omitempty,dive,gte=0"`
}

// BoxCosts is the materials and packing part of a quote.
type BoxCosts struct {
	PurchaseBoxes        float64 `json:"purchase_boxes"`
	PurchasePackingLabor float64 `json:"purchase_packing_labor"`
	RentalBoxes          float64 `json:"rental_boxes"`
	RentalPackingLabor   float64 `json:"rental_packing_labor"`
	SalesTax             float64 `json:"sales_tax"`
	Total                float64 `json:"total"`
}

// BoxCosts prices o. Packing labor is charged for every type with a packing
// service count whether or not any units of that type were bought or rented,
// once at the purchase labor rate and once at the rental labor rate. A type
// missing from a list adds nothing on that side.
func (p *Pricing) BoxCosts(o BoxOrder) BoxCosts {
	var c BoxCosts
	for _, name := range sortedKeys(o.Purchase) {
		if n := o.Purchase[name]; n > 0 {
			c.PurchaseBoxes += p.Purchase[name].Unit * float64(n)
		}
	}
	for _, name := range sortedKeys(o.Rental) {
		if n := o.Rental[name]; n > 0 {
			c.RentalBoxes += p.Rental[name].Unit * float64(n)
		}
	}
	for _, name := range sortedKeys(o.PackingServices) {
		n := o.PackingServices[name]
		if n <= 0 {
			continue
		}
		c.PurchasePackingLabor += p.Purchase[name].Labor * float64(n)
		c.RentalPackingLabor += p.Rental[name].Labor * float64(n)
	}
	c.SalesTax = (c.PurchaseBoxes + c.PurchasePackingLabor) * p.SalesTax
	c.Total = c.PurchaseBoxes + c.PurchasePackingLabor + c.RentalBoxes + c.RentalPackingLabor + c.SalesTax
	return c
}

// ProtectiveCost bills padding and wrap per started 1000 lb.
func (p *Pricing) ProtectiveCost(weightLbs float64) float64 {
	units := math.Ceil(max(weightLbs, 0) / 1000)
	return units * p.ProtectivePer1000Lbs
}

func (c BoxCosts) rounded() BoxCosts {
	return BoxCosts{
		PurchaseBoxes:        round2(c.PurchaseBoxes),
		PurchasePackingLabor: round2(c.PurchasePackingLabor),
		RentalBoxes:          round2(c.RentalBoxes),
		RentalPackingLabor:   round2(c.RentalPackingLabor),
		SalesTax:             round2(c.SalesTax),
		Total:                round2(c.Total),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
