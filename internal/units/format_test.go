package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workoutbuddy/internal/units"
)

func ptr(v float64) *float64 {
	return &v
}

func TestDisplayWeight(t *testing.T) {
	d := units.DisplayWeight(ptr(82.55), units.DefaultPreference())
	assert.Equal(t, 82.6, d.Value)
	assert.Equal(t, "82.6 kg", d.Formatted)

	d = units.DisplayWeight(ptr(68.0389), units.ImperialPreference())
	assert.Equal(t, 150.0, d.Value)
	assert.Equal(t, "150.0 lbs", d.Formatted)

	assert.Equal(t, "N/A", units.DisplayWeight(nil, units.DefaultPreference()).Formatted)
}

func TestDisplayHeight(t *testing.T) {
	d := units.DisplayHeight(ptr(177.8), units.DefaultPreference())
	assert.Equal(t, 177.8, d.Value)
	assert.Equal(t, "177.8 cm", d.Formatted)

	d = units.DisplayHeight(ptr(177.8), units.Preference{
		System:     units.SystemImperial,
		HeightUnit: units.HeightInches,
		WeightUnit: units.WeightLBS,
	})
	assert.Equal(t, 70.0, d.Value)
	assert.Equal(t, "70.0 inches", d.Formatted)

	d = units.DisplayHeight(ptr(177.8), units.ImperialPreference())
	assert.Equal(t, `5' 10"`, d.Formatted)

	assert.Equal(t, "N/A", units.DisplayHeight(nil, units.ImperialPreference()).Formatted)
}

func TestDisplayDistance(t *testing.T) {
	d := units.DisplayDistance(ptr(5.0), units.DefaultPreference())
	assert.Equal(t, "5.00 km", d.Formatted)

	d = units.DisplayDistance(ptr(units.MilesToKm(3)), units.ImperialPreference())
	assert.Equal(t, 3.0, d.Value)
	assert.Equal(t, "3.00 miles", d.Formatted)
}

func TestDisplaySpeed(t *testing.T) {
	d := units.DisplaySpeed(ptr(10.0), units.DefaultPreference())
	assert.Equal(t, "10.0 km/h", d.Formatted)

	d = units.DisplaySpeed(ptr(units.MilesToKm(6)), units.ImperialPreference())
	assert.Equal(t, 6.0, d.Value)
	assert.Equal(t, "6.0 mph", d.Formatted)
}

func TestDisplay_MissingPreferenceFallsBackToMetric(t *testing.T) {
	d := units.DisplayWeight(ptr(70), units.Preference{})
	assert.Equal(t, "70.0 kg", d.Formatted)
}

func TestFromInput_StoresAuthoringUnit(t *testing.T) {
	v, unit := units.WeightFromInput(150, units.ImperialPreference())
	assert.Equal(t, 150.0, v)
	assert.Equal(t, units.WeightLBS, unit)

	hv, heightUnit := units.HeightFromInput(70, units.Preference{
		System:     units.SystemImperial,
		HeightUnit: units.HeightInches,
		WeightUnit: units.WeightLBS,
	})
	assert.Equal(t, 70.0, hv)
	assert.Equal(t, units.HeightInches, heightUnit)

	dv, distUnit := units.DistanceFromInput(3, units.ImperialPreference())
	assert.Equal(t, 3.0, dv)
	assert.Equal(t, units.DistanceMiles, distUnit)

	// missing preference defaults to metric units
	_, wu := units.WeightFromInput(70, units.Preference{})
	assert.Equal(t, units.WeightKG, wu)
}

// A user with imperial preference enters a height of 70 inches: it is
// stored untouched with its authoring unit, canonical reads give
// ~177.8 cm, and displaying it back yields 70 again without drift.
func TestImperialHeightScenario(t *testing.T) {
	inputPref := units.Preference{
		System:     units.SystemImperial,
		HeightUnit: units.HeightInches,
		WeightUnit: units.WeightLBS,
	}

	stored, storedUnit := units.HeightFromInput(70, inputPref)
	assert.Equal(t, 70.0, stored)
	assert.Equal(t, units.HeightInches, storedUnit)

	canonicalCm := units.ConvertHeight(stored, storedUnit, units.HeightCM)
	assert.InDelta(t, 177.8, canonicalCm, 0.0001)

	d := units.DisplayHeight(&canonicalCm, inputPref)
	require.Equal(t, 70.0, d.Value)
	assert.Equal(t, "70.0 inches", d.Formatted)
}
