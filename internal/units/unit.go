package units

import "errors"

// ErrUnitMismatch is returned by the dynamic conversion path when the
// source and target units belong to different quantity kinds. It marks a
// programming error at the call site, never bad user input.
var ErrUnitMismatch = errors.New("unit mismatch: units belong to different quantity kinds")

// Kind is the physical dimension of a measurement. Conversions only
// happen within a kind.
type Kind string

const (
	KindMass     Kind = "mass"
	KindLength   Kind = "length"
	KindDistance Kind = "distance"
	KindSpeed    Kind = "speed"
)

func (k Kind) String() string {
	return string(k)
}

// Unit is implemented by every per-kind unit type, so generic code
// (e.g. the dynamic Convert path) can reason about them uniformly.
type Unit interface {
	Kind() Kind
	String() string
	IsValid() bool
}

// System can be one of:
//   - METRIC
//   - IMPERIAL
type System string

const (
	SystemMetric   System = "METRIC"
	SystemImperial System = "IMPERIAL"
)

func (s System) String() string {
	return string(s)
}

func (s System) IsValid() bool {
	switch s {
	case SystemMetric, SystemImperial:
		return true
	default:
		return false
	}
}

type WeightUnit string

const (
	WeightKG  WeightUnit = "KG"
	WeightLBS WeightUnit = "LBS"
)

func (u WeightUnit) Kind() Kind {
	return KindMass
}

func (u WeightUnit) String() string {
	return string(u)
}

func (u WeightUnit) IsValid() bool {
	switch u {
	case WeightKG, WeightLBS:
		return true
	default:
		return false
	}
}

// OrDefault returns the metric unit when u is empty or unknown.
func (u WeightUnit) OrDefault() WeightUnit {
	if u.IsValid() {
		return u
	}
	return WeightKG
}

// HeightUnit can be one of:
//   - CM
//   - INCHES
//   - FEET_INCHES (compound display unit, stored as total inches)
type HeightUnit string

const (
	HeightCM         HeightUnit = "CM"
	HeightInches     HeightUnit = "INCHES"
	HeightFeetInches HeightUnit = "FEET_INCHES"
)

func (u HeightUnit) Kind() Kind {
	return KindLength
}

func (u HeightUnit) String() string {
	return string(u)
}

func (u HeightUnit) IsValid() bool {
	switch u {
	case HeightCM, HeightInches, HeightFeetInches:
		return true
	default:
		return false
	}
}

// OrDefault returns the metric unit when u is empty or unknown.
func (u HeightUnit) OrDefault() HeightUnit {
	if u.IsValid() {
		return u
	}
	return HeightCM
}

type DistanceUnit string

const (
	DistanceKM     DistanceUnit = "KM"
	DistanceMiles  DistanceUnit = "MILES"
	DistanceMeters DistanceUnit = "METERS"
)

func (u DistanceUnit) Kind() Kind {
	return KindDistance
}

func (u DistanceUnit) String() string {
	return string(u)
}

func (u DistanceUnit) IsValid() bool {
	switch u {
	case DistanceKM, DistanceMiles, DistanceMeters:
		return true
	default:
		return false
	}
}

type SpeedUnit string

const (
	SpeedKMH SpeedUnit = "KMH"
	SpeedMPH SpeedUnit = "MPH"
)

func (u SpeedUnit) Kind() Kind {
	return KindSpeed
}

func (u SpeedUnit) String() string {
	return string(u)
}

func (u SpeedUnit) IsValid() bool {
	switch u {
	case SpeedKMH, SpeedMPH:
		return true
	default:
		return false
	}
}
