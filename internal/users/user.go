package users

import (
	"time"

	"github.com/2beens/workoutbuddy/internal/units"
)

type FitnessGoal string

const (
	GoalLoseWeight  FitnessGoal = "lose_weight"
	GoalBuildMuscle FitnessGoal = "build_muscle"
	GoalEndurance   FitnessGoal = "endurance"
	GoalGeneral     FitnessGoal = "general_fitness"
)

func (g FitnessGoal) String() string {
	return string(g)
}

func (g FitnessGoal) IsValid() bool {
	switch g {
	case GoalLoseWeight, GoalBuildMuscle, GoalEndurance, GoalGeneral:
		return true
	default:
		return false
	}
}

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

func (l ExperienceLevel) String() string {
	return string(l)
}

func (l ExperienceLevel) IsValid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	default:
		return false
	}
}

// User profile. Height and Weight are stored in the unit the user
// authored them in, tagged by HeightUnit / WeightUnit. Both are
// optional.
type User struct {
	ID              int              `json:"id"`
	Email           string           `json:"email"`
	Username        string           `json:"username"`
	PasswordHash    string           `json:"-"`
	FullName        string           `json:"fullName"`
	Age             *int             `json:"age,omitempty"`
	Height          *float64         `json:"height,omitempty"`
	HeightUnit      units.HeightUnit `json:"heightUnit"`
	Weight          *float64         `json:"weight,omitempty"`
	WeightUnit      units.WeightUnit `json:"weightUnit"`
	UnitSystem      units.System     `json:"unitSystem"`
	FitnessGoal     FitnessGoal      `json:"fitnessGoal"`
	ExperienceLevel ExperienceLevel  `json:"experienceLevel"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Preference reconstructs the unit preference from the profile fields.
func (u *User) Preference() units.Preference {
	return units.Preference{
		System:     u.UnitSystem,
		HeightUnit: u.HeightUnit,
		WeightUnit: u.WeightUnit,
	}.OrDefault()
}

// HeightCm returns the height in centimeters regardless of the unit it
// was stored in. Nil when the user never set a height.
func (u *User) HeightCm() *float64 {
	if u.Height == nil {
		return nil
	}
	cm := units.ConvertHeight(*u.Height, u.HeightUnit.OrDefault(), units.HeightCM)
	return &cm
}

// WeightKg returns the weight in kilograms regardless of the unit it
// was stored in. Nil when the user never set a weight.
func (u *User) WeightKg() *float64 {
	if u.Weight == nil {
		return nil
	}
	kg := units.ConvertWeight(*u.Weight, u.WeightUnit.OrDefault(), units.WeightKG)
	return &kg
}
