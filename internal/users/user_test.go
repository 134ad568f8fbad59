package users_test

import (
	"testing"

	"github.com/2beens/workoutbuddy/internal/units"
	"github.com/2beens/workoutbuddy/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestUser_CanonicalAccessors(t *testing.T) {
	metricUser := users.User{
		Height:     ptr(180),
		HeightUnit: units.HeightCM,
		Weight:     ptr(80),
		WeightUnit: units.WeightKG,
		UnitSystem: units.SystemMetric,
	}
	require.NotNil(t, metricUser.HeightCm())
	assert.InDelta(t, 180, *metricUser.HeightCm(), 1e-9)
	require.NotNil(t, metricUser.WeightKg())
	assert.InDelta(t, 80, *metricUser.WeightKg(), 1e-9)

	imperialUser := users.User{
		Height:     ptr(70), // inches
		HeightUnit: units.HeightFeetInches,
		Weight:     ptr(176), // lbs
		WeightUnit: units.WeightLBS,
		UnitSystem: units.SystemImperial,
	}
	require.NotNil(t, imperialUser.HeightCm())
	assert.InDelta(t, 177.8, *imperialUser.HeightCm(), 1e-9)
	require.NotNil(t, imperialUser.WeightKg())
	assert.InDelta(t, 79.83225712, *imperialUser.WeightKg(), 1e-6)

	// accessors do not mutate the stored values
	assert.InDelta(t, 70, *imperialUser.Height, 1e-9)
	assert.InDelta(t, 176, *imperialUser.Weight, 1e-9)

	// repeated calls yield the same result
	assert.Equal(t, *imperialUser.HeightCm(), *imperialUser.HeightCm())
	assert.Equal(t, *imperialUser.WeightKg(), *imperialUser.WeightKg())
}

func TestUser_CanonicalAccessors_Absent(t *testing.T) {
	var u users.User
	assert.Nil(t, u.HeightCm())
	assert.Nil(t, u.WeightKg())
}

func TestUser_Preference(t *testing.T) {
	u := users.User{
		HeightUnit: units.HeightInches,
		WeightUnit: units.WeightLBS,
		UnitSystem: units.SystemImperial,
	}
	pref := u.Preference()
	assert.NoError(t, pref.Validate())
	assert.Equal(t, units.SystemImperial, pref.System)
	assert.Equal(t, units.DistanceMiles, pref.DistanceUnit())

	// user without a recorded preference falls back to metric
	var noPrefUser users.User
	pref = noPrefUser.Preference()
	assert.Equal(t, units.DefaultPreference(), pref)
}

func TestFitnessGoal_IsValid(t *testing.T) {
	assert.True(t, users.GoalLoseWeight.IsValid())
	assert.True(t, users.GoalBuildMuscle.IsValid())
	assert.True(t, users.GoalEndurance.IsValid())
	assert.True(t, users.GoalGeneral.IsValid())
	assert.False(t, users.FitnessGoal("get_swole").IsValid())
	assert.False(t, users.FitnessGoal("").IsValid())
}

func TestExperienceLevel_IsValid(t *testing.T) {
	assert.True(t, users.ExperienceBeginner.IsValid())
	assert.True(t, users.ExperienceIntermediate.IsValid())
	assert.True(t, users.ExperienceAdvanced.IsValid())
	assert.False(t, users.ExperienceLevel("pro").IsValid())
}
