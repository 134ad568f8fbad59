package units

import (
	"errors"
	"fmt"
)

// ErrMissingPreference marks a user without a recorded unit preference.
// Read paths fall back to the metric default instead of failing.
var ErrMissingPreference = errors.New("no unit preference recorded")

var ErrInconsistentPreference = errors.New("unit preference inconsistent with unit system")

// Preference holds a user's chosen unit system and the specific units for
// height and weight. Distance and speed units derive from the system. It
// is threaded explicitly into every conversion and formatting call, never
// read from shared state.
type Preference struct {
	System     System     `json:"unitSystem"`
	HeightUnit HeightUnit `json:"heightUnit"`
	WeightUnit WeightUnit `json:"weightUnit"`
}

// DefaultPreference is the documented fallback for users without a
// recorded preference.
func DefaultPreference() Preference {
	return Preference{
		System:     SystemMetric,
		HeightUnit: HeightCM,
		WeightUnit: WeightKG,
	}
}

func ImperialPreference() Preference {
	return Preference{
		System:     SystemImperial,
		HeightUnit: HeightFeetInches,
		WeightUnit: WeightLBS,
	}
}

// Validate enforces that height and weight units pair up with the chosen
// system: METRIC implies CM and KG, IMPERIAL implies INCHES or
// FEET_INCHES and LBS.
func (p Preference) Validate() error {
	if p.System == "" && p.HeightUnit == "" && p.WeightUnit == "" {
		return ErrMissingPreference
	}
	if !p.System.IsValid() {
		return fmt.Errorf("invalid unit system: %q", p.System)
	}
	if !p.HeightUnit.IsValid() {
		return fmt.Errorf("invalid height unit: %q", p.HeightUnit)
	}
	if !p.WeightUnit.IsValid() {
		return fmt.Errorf("invalid weight unit: %q", p.WeightUnit)
	}

	switch p.System {
	case SystemMetric:
		if p.HeightUnit != HeightCM {
			return fmt.Errorf("%w: height unit %s with system %s", ErrInconsistentPreference, p.HeightUnit, p.System)
		}
		if p.WeightUnit != WeightKG {
			return fmt.Errorf("%w: weight unit %s with system %s", ErrInconsistentPreference, p.WeightUnit, p.System)
		}
	case SystemImperial:
		if p.HeightUnit != HeightInches && p.HeightUnit != HeightFeetInches {
			return fmt.Errorf("%w: height unit %s with system %s", ErrInconsistentPreference, p.HeightUnit, p.System)
		}
		if p.WeightUnit != WeightLBS {
			return fmt.Errorf("%w: weight unit %s with system %s", ErrInconsistentPreference, p.WeightUnit, p.System)
		}
	}
	return nil
}

// DistanceUnit is derived from the unit system.
func (p Preference) DistanceUnit() DistanceUnit {
	if p.System == SystemImperial {
		return DistanceMiles
	}
	return DistanceKM
}

// SpeedUnit is derived from the unit system.
func (p Preference) SpeedUnit() SpeedUnit {
	if p.System == SystemImperial {
		return SpeedMPH
	}
	return SpeedKMH
}

// OrSystemDefaults fills missing height and weight units from the chosen
// system, so a request carrying only the system still validates.
func (p Preference) OrSystemDefaults() Preference {
	if p.System == "" {
		return p
	}
	base := DefaultPreference()
	if p.System == SystemImperial {
		base = ImperialPreference()
	}
	if p.HeightUnit == "" {
		p.HeightUnit = base.HeightUnit
	}
	if p.WeightUnit == "" {
		p.WeightUnit = base.WeightUnit
	}
	return p
}

// OrDefault returns the preference itself when usable, or the metric
// default when empty or invalid, so a missing preference never fails a
// read path.
func (p Preference) OrDefault() Preference {
	if p.Validate() != nil {
		return DefaultPreference()
	}
	return p
}
