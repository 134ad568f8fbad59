package units

import (
	"fmt"
	"math"
)

// Display is a measurement converted and rounded for presentation in the
// viewing user's preferred unit. The underlying stored and canonical
// values are never mutated by formatting.
type Display struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Formatted string  `json:"formatted"`
}

// DisplayWeight formats a canonical weight (kilograms) in the user's
// preferred weight unit, rounded to one decimal.
func DisplayWeight(kg *float64, pref Preference) Display {
	if kg == nil {
		return Display{Formatted: "N/A"}
	}
	pref = pref.OrDefault()

	v := ConvertWeight(*kg, WeightKG, pref.WeightUnit)
	v = roundTo(v, 1)
	label := "kg"
	if pref.WeightUnit == WeightLBS {
		label = "lbs"
	}
	return Display{
		Value:     v,
		Unit:      pref.WeightUnit.String(),
		Formatted: fmt.Sprintf("%.1f %s", v, label),
	}
}

// DisplayHeight formats a canonical height (centimeters) in the user's
// preferred height unit. FEET_INCHES is rendered as whole feet and
// inches (5' 10"), the others to one decimal.
func DisplayHeight(cm *float64, pref Preference) Display {
	if cm == nil {
		return Display{Formatted: "N/A"}
	}
	pref = pref.OrDefault()

	switch pref.HeightUnit {
	case HeightInches:
		v := roundTo(CmToInches(*cm), 1)
		return Display{
			Value:     v,
			Unit:      HeightInches.String(),
			Formatted: fmt.Sprintf("%.1f inches", v),
		}
	case HeightFeetInches:
		feet, inches := CmToFeetInches(*cm)
		return Display{
			Value:     CmToInches(*cm),
			Unit:      HeightFeetInches.String(),
			Formatted: fmt.Sprintf("%d' %d\"", feet, inches),
		}
	default:
		v := roundTo(*cm, 1)
		return Display{
			Value:     v,
			Unit:      HeightCM.String(),
			Formatted: fmt.Sprintf("%.1f cm", v),
		}
	}
}

// DisplayDistance formats a canonical distance (kilometers) in the user's
// preferred distance unit: km and miles to two decimals, meters whole.
func DisplayDistance(km *float64, pref Preference) Display {
	if km == nil {
		return Display{Formatted: "N/A"}
	}
	pref = pref.OrDefault()

	switch pref.DistanceUnit() {
	case DistanceMiles:
		v := roundTo(KmToMiles(*km), 2)
		return Display{
			Value:     v,
			Unit:      DistanceMiles.String(),
			Formatted: fmt.Sprintf("%.2f miles", v),
		}
	default:
		v := roundTo(*km, 2)
		return Display{
			Value:     v,
			Unit:      DistanceKM.String(),
			Formatted: fmt.Sprintf("%.2f km", v),
		}
	}
}

// DisplaySpeed formats a canonical speed (km/h) per preference.
func DisplaySpeed(kmh *float64, pref Preference) Display {
	if kmh == nil {
		return Display{Formatted: "N/A"}
	}
	pref = pref.OrDefault()

	if pref.SpeedUnit() == SpeedMPH {
		v := roundTo(KmToMiles(*kmh), 1)
		return Display{
			Value:     v,
			Unit:      SpeedMPH.String(),
			Formatted: fmt.Sprintf("%.1f mph", v),
		}
	}
	v := roundTo(*kmh, 1)
	return Display{
		Value:     v,
		Unit:      SpeedKMH.String(),
		Formatted: fmt.Sprintf("%.1f km/h", v),
	}
}

// WeightFromInput maps a user-entered weight to the value and unit tag to
// store. The stored unit is the preference's unit at the time of input,
// stored values keep the user's authoring unit.
func WeightFromInput(value float64, pref Preference) (float64, WeightUnit) {
	pref = pref.OrDefault()
	return value, pref.WeightUnit
}

// HeightFromInput maps a user-entered height to the value and unit tag to
// store. FEET_INCHES input arrives as total inches.
func HeightFromInput(value float64, pref Preference) (float64, HeightUnit) {
	pref = pref.OrDefault()
	return value, pref.HeightUnit
}

// DistanceFromInput maps a user-entered distance to the value and unit
// tag to store.
func DistanceFromInput(value float64, pref Preference) (float64, DistanceUnit) {
	pref = pref.OrDefault()
	return value, pref.DistanceUnit()
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
