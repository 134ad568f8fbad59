package features

import (
	"github.com/2beens/workoutbuddy/internal/users"
)

// Defaults used for users who never filled in their measurements, so
// the models always get a complete vector.
const (
	defaultHeightCm = 170.0
	defaultWeightKg = 70.0
	defaultAge      = 30.0
)

// FeatureVector is the model input derived from a user profile. All
// measurements are canonical (cm, kg) no matter what unit system the
// user tracks in, so vectors of metric and imperial users are directly
// comparable.
type FeatureVector struct {
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
	Age      float64 `json:"age"`

	// fitness goal, one-hot
	GoalLoseWeight  float64 `json:"goalLoseWeight"`
	GoalBuildMuscle float64 `json:"goalBuildMuscle"`
	GoalEndurance   float64 `json:"goalEndurance"`
	GoalGeneral     float64 `json:"goalGeneral"`

	// experience level, one-hot
	ExpBeginner     float64 `json:"expBeginner"`
	ExpIntermediate float64 `json:"expIntermediate"`
	ExpAdvanced     float64 `json:"expAdvanced"`
}

// Values flattens the vector in a fixed order.
func (fv FeatureVector) Values() []float64 {
	return []float64{
		fv.HeightCm, fv.WeightKg, fv.Age,
		fv.GoalLoseWeight, fv.GoalBuildMuscle, fv.GoalEndurance, fv.GoalGeneral,
		fv.ExpBeginner, fv.ExpIntermediate, fv.ExpAdvanced,
	}
}

// Extract builds the feature vector for a user. Missing measurements
// fall back to population defaults instead of zeros.
func Extract(u *users.User) FeatureVector {
	fv := FeatureVector{
		HeightCm: defaultHeightCm,
		WeightKg: defaultWeightKg,
		Age:      defaultAge,
	}

	if heightCm := u.HeightCm(); heightCm != nil {
		fv.HeightCm = *heightCm
	}
	if weightKg := u.WeightKg(); weightKg != nil {
		fv.WeightKg = *weightKg
	}
	if u.Age != nil {
		fv.Age = float64(*u.Age)
	}

	switch u.FitnessGoal {
	case users.GoalLoseWeight:
		fv.GoalLoseWeight = 1
	case users.GoalBuildMuscle:
		fv.GoalBuildMuscle = 1
	case users.GoalEndurance:
		fv.GoalEndurance = 1
	default:
		fv.GoalGeneral = 1
	}

	switch u.ExperienceLevel {
	case users.ExperienceIntermediate:
		fv.ExpIntermediate = 1
	case users.ExperienceAdvanced:
		fv.ExpAdvanced = 1
	default:
		fv.ExpBeginner = 1
	}

	return fv
}
