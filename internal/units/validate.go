package units

import (
	"fmt"

	"go.uber.org/multierr"
)

// Bounds are inclusive plausible ranges, defined per unit with exact
// round numbers rather than derived from a canonical bound at validation
// time, so boundary values match what users actually type.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// OutOfRangeError is recoverable and user facing: the value lies outside
// the plausible bounds for its unit. It is never silently clamped.
type OutOfRangeError struct {
	Value  float64
	Unit   string
	Bounds Bounds
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value %g %s out of plausible range [%g, %g]", e.Value, e.Unit, e.Bounds.Min, e.Bounds.Max)
}

var weightBounds = map[WeightUnit]Bounds{
	WeightKG:  {Min: 1, Max: 500},
	WeightLBS: {Min: 2, Max: 1100},
}

var heightBounds = map[HeightUnit]Bounds{
	HeightCM: {Min: 30, Max: 300},
	// compound feet-inches heights validate as total inches
	HeightInches:     {Min: 12, Max: 120},
	HeightFeetInches: {Min: 12, Max: 120},
}

var distanceBounds = map[DistanceUnit]Bounds{
	DistanceKM:     {Min: 0, Max: 1000},
	DistanceMiles:  {Min: 0, Max: 620},
	DistanceMeters: {Min: 0, Max: 1000000},
}

var speedBounds = map[SpeedUnit]Bounds{
	SpeedKMH: {Min: 0, Max: 100},
	SpeedMPH: {Min: 0, Max: 62},
}

func ValidateWeight(v float64, unit WeightUnit) error {
	b, ok := weightBounds[unit]
	if !ok {
		return fmt.Errorf("%w: validate weight in %q", ErrUnitMismatch, unit)
	}
	if !b.contains(v) {
		return &OutOfRangeError{Value: v, Unit: unit.String(), Bounds: b}
	}
	return nil
}

func ValidateHeight(v float64, unit HeightUnit) error {
	b, ok := heightBounds[unit]
	if !ok {
		return fmt.Errorf("%w: validate height in %q", ErrUnitMismatch, unit)
	}
	if !b.contains(v) {
		return &OutOfRangeError{Value: v, Unit: unit.String(), Bounds: b}
	}
	return nil
}

func ValidateDistance(v float64, unit DistanceUnit) error {
	b, ok := distanceBounds[unit]
	if !ok {
		return fmt.Errorf("%w: validate distance in %q", ErrUnitMismatch, unit)
	}
	if !b.contains(v) {
		return &OutOfRangeError{Value: v, Unit: unit.String(), Bounds: b}
	}
	return nil
}

func ValidateSpeed(v float64, unit SpeedUnit) error {
	b, ok := speedBounds[unit]
	if !ok {
		return fmt.Errorf("%w: validate speed in %q", ErrUnitMismatch, unit)
	}
	if !b.contains(v) {
		return &OutOfRangeError{Value: v, Unit: unit.String(), Bounds: b}
	}
	return nil
}

// ValidateWeightSetList range checks every present element of a per-set
// weight list. Errors are aggregated so one bad element does not hide
// the others, absent elements are skipped.
func ValidateWeightSetList(sl SetList, unit WeightUnit) error {
	var errs error
	for i, v := range sl {
		if v == nil {
			continue
		}
		if err := ValidateWeight(*v, unit); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("set %d: %w", i+1, err))
		}
	}
	return errs
}
