package units

import (
	"fmt"
	"math"
)

// A single defining constant per unit pair, with division for the reverse
// direction, so conversion round trips are exact multiplicative inverses.
const (
	lbsToKgRatio    = 0.45359237 // international avoirdupois pound, exact
	inchesToCmRatio = 2.54       // international inch, exact
	milesToKmRatio  = 1.609344   // international mile, exact
	inchesPerFoot   = 12
	metersPerKm     = 1000
)

func LbsToKg(lbs float64) float64 {
	return lbs * lbsToKgRatio
}

func KgToLbs(kg float64) float64 {
	return kg / lbsToKgRatio
}

func InchesToCm(inches float64) float64 {
	return inches * inchesToCmRatio
}

func CmToInches(cm float64) float64 {
	return cm / inchesToCmRatio
}

func MilesToKm(miles float64) float64 {
	return miles * milesToKmRatio
}

func KmToMiles(km float64) float64 {
	return km / milesToKmRatio
}

// FeetInchesToCm combines the compound imperial height into centimeters.
func FeetInchesToCm(feet, inches int) float64 {
	totalInches := float64(feet*inchesPerFoot) + float64(inches)
	return InchesToCm(totalInches)
}

// CmToFeetInches splits centimeters into whole feet and remainder inches.
// The total is rounded at the ninth decimal before truncation so that an
// exact foot boundary does not come out as e.g. 5' 12".
func CmToFeetInches(cm float64) (feet, inches int) {
	totalInches := int(math.Round(CmToInches(cm)*1e9) / 1e9)
	feet = totalInches / inchesPerFoot
	inches = totalInches % inchesPerFoot
	return feet, inches
}

// ConvertWeight converts a scalar weight between units of the mass kind.
// Zero and negative values pass through unchanged in sign, clamping is
// the job of the validation layer.
func ConvertWeight(v float64, from, to WeightUnit) float64 {
	if from == to {
		return v
	}
	if from == WeightLBS {
		return LbsToKg(v)
	}
	return KgToLbs(v)
}

// ConvertHeight converts a scalar height between units of the length kind.
// FEET_INCHES values are represented as total inches.
func ConvertHeight(v float64, from, to HeightUnit) float64 {
	cm := v
	if from == HeightInches || from == HeightFeetInches {
		cm = InchesToCm(v)
	}
	if to == HeightInches || to == HeightFeetInches {
		return CmToInches(cm)
	}
	return cm
}

func ConvertDistance(v float64, from, to DistanceUnit) float64 {
	km := v
	switch from {
	case DistanceMiles:
		km = MilesToKm(v)
	case DistanceMeters:
		km = v / metersPerKm
	}
	switch to {
	case DistanceMiles:
		return KmToMiles(km)
	case DistanceMeters:
		return km * metersPerKm
	default:
		return km
	}
}

// ConvertSpeed is composed from the distance conversion, the time unit
// (hours) is unchanged.
func ConvertSpeed(v float64, from, to SpeedUnit) float64 {
	if from == to {
		return v
	}
	if from == SpeedMPH {
		return MilesToKm(v)
	}
	return KmToMiles(v)
}

// Convert is the dynamic conversion path for call sites that hold units
// behind the Unit interface. Mismatched kinds fail with ErrUnitMismatch,
// the per-kind functions above reject that at compile time instead.
func Convert(v float64, from, to Unit) (float64, error) {
	if !from.IsValid() || !to.IsValid() {
		return 0, fmt.Errorf("%w: convert %s -> %s", ErrUnitMismatch, from, to)
	}
	if from.Kind() != to.Kind() {
		return 0, fmt.Errorf("%w: convert %s (%s) -> %s (%s)", ErrUnitMismatch, from, from.Kind(), to, to.Kind())
	}

	switch f := from.(type) {
	case WeightUnit:
		if t, ok := to.(WeightUnit); ok {
			return ConvertWeight(v, f, t), nil
		}
	case HeightUnit:
		if t, ok := to.(HeightUnit); ok {
			return ConvertHeight(v, f, t), nil
		}
	case DistanceUnit:
		if t, ok := to.(DistanceUnit); ok {
			return ConvertDistance(v, f, t), nil
		}
	case SpeedUnit:
		if t, ok := to.(SpeedUnit); ok {
			return ConvertSpeed(v, f, t), nil
		}
	}
	return 0, fmt.Errorf("%w: convert %T -> %T", ErrUnitMismatch, from, to)
}

// ConvertOptional propagates an absent measurement as absent instead of
// converting a zero sentinel.
func ConvertOptional(v *float64, from, to Unit) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	converted, err := Convert(*v, from, to)
	if err != nil {
		return nil, err
	}
	return &converted, nil
}
