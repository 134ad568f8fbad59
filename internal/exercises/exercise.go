package exercises

import "time"

type ExerciseType string

const (
	TypeStrength ExerciseType = "strength"
	TypeCardio   ExerciseType = "cardio"
	TypeMobility ExerciseType = "mobility"
)

func (t ExerciseType) String() string {
	return string(t)
}

func (t ExerciseType) IsValid() bool {
	switch t {
	case TypeStrength, TypeCardio, TypeMobility:
		return true
	default:
		return false
	}
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) String() string {
	return string(d)
}

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// Exercise is a library entry describing a movement, not a performed
// set. Mets is the metabolic equivalent used for calorie estimates.
type Exercise struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	MuscleGroup string       `json:"muscleGroup"`
	Equipment   string       `json:"equipment,omitempty"`
	Type        ExerciseType `json:"type"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Mets        *float64     `json:"mets,omitempty"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}
