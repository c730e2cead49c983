package quote

import "movequote/internal/rate"

// Params are move parameters as callers send them: loose profile tag,
// optional drive times. Omitted drive times take DefaultTravel values.
type Params struct {
	LocationProfile               string   `json:"location_profile" yaml:"location_profile"`
	FridayOrSaturday              bool     `json:"friday_or_saturday" yaml:"friday_or_saturday"`
	LongDistance                  bool     `json:"long_distance" yaml:"long_distance"`
	OriginToDestinationMinutes    *float64 `json:"origin_to_destination_minutes" yaml:"origin_to_destination_minutes" validate:"omitempty,gte=0"`
	WarehouseToOriginMinutes      *float64 `json:"warehouse_to_origin_minutes" yaml:"warehouse_to_origin_minutes" validate:"omitempty,gte=0"`
	DestinationToWarehouseMinutes *float64 `json:"destination_to_warehouse_minutes" yaml:"destination_to_warehouse_minutes" validate:"omitempty,gte=0"`
	DisassembledBeds              int      `json:"disassembled_beds" yaml:"disassembled_beds" validate:"gte=0"`
	SleepNumberBeds               int      `json:"sleep_number_beds" yaml:"sleep_number_beds" validate:"gte=0"`
	DesksToDisassemble            int      `json:"desks_to_disassemble" yaml:"desks_to_disassemble" validate:"gte=0"`
	Boxes                         BoxOrder `json:"boxes" yaml:"boxes"`
	MoverOverride                 *int     `json:"mover_override" yaml:"mover_override" validate:"omitempty,gte=0"`
}

// Spec builds a MoveSpec for a shipment of weightLbs. The second result is
// false when the location profile was not recognized.
func (p Params) Spec(weightLbs float64) (MoveSpec, bool) {
	profile, known := rate.ParseProfile(p.LocationProfile)
	travel := DefaultTravel()
	if p.OriginToDestinationMinutes != nil {
		travel.OriginToDestinationMinutes = *p.OriginToDestinationMinutes
	}
	if p.WarehouseToOriginMinutes != nil {
		travel.WarehouseToOriginMinutes = *p.WarehouseToOriginMinutes
	}
	if p.DestinationToWarehouseMinutes != nil {
		travel.DestinationToWarehouseMinutes = *p.DestinationToWarehouseMinutes
	}
	return MoveSpec{
		TotalWeightLbs:     weightLbs,
		Profile:            profile,
		FridayOrSaturday:   p.FridayOrSaturday,
		LongDistance:       p.LongDistance,
		Travel:             travel,
		DisassembledBeds:   p.DisassembledBeds,
		SleepNumberBeds:    p.SleepNumberBeds,
		DesksToDisassemble: p.DesksToDisassemble,
		Boxes:              p.Boxes,
		MoverOverride:      p.MoverOverride,
	}, known
}
