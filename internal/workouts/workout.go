package workouts

import (
	"time"

	"github.com/2beens/workoutbuddy/internal/units"
)

type Workout struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Exercises []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise is one exercise performed within a workout. Weight and
// ActualWeight are delimited per-set lists ("60,65,70"), both tagged by
// WeightUnit. Reps and ActualReps are per-set lists too. Distance and
// speed apply to cardio entries only.
type WorkoutExercise struct {
	ID           int                `json:"id"`
	WorkoutID    int                `json:"workoutId"`
	ExerciseID   int                `json:"exerciseId"`
	Position     int                `json:"position"`
	Reps         string             `json:"reps,omitempty"`
	Weight       string             `json:"weight,omitempty"`
	ActualReps   string             `json:"actualReps,omitempty"`
	ActualWeight string             `json:"actualWeight,omitempty"`
	WeightUnit   units.WeightUnit   `json:"weightUnit"`
	Distance     *float64           `json:"distance,omitempty"`
	DistanceUnit units.DistanceUnit `json:"distanceUnit,omitempty"`
	Speed        *float64           `json:"speed,omitempty"`
	SpeedUnit    units.SpeedUnit    `json:"speedUnit,omitempty"`
	Incline      *float64           `json:"incline,omitempty"`
	RestSeconds  *int               `json:"restSeconds,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// WeightsKg returns the planned per-set weights in kilograms regardless
// of the unit they were authored in.
func (we *WorkoutExercise) WeightsKg() (units.SetList, error) {
	return we.setListKg(we.Weight)
}

// ActualWeightsKg returns the performed per-set weights in kilograms.
func (we *WorkoutExercise) ActualWeightsKg() (units.SetList, error) {
	return we.setListKg(we.ActualWeight)
}

func (we *WorkoutExercise) setListKg(weights string) (units.SetList, error) {
	list, err := units.ParseSetList(weights)
	if err != nil {
		return list.ConvertWeights(we.WeightUnit.OrDefault(), units.WeightKG), err
	}
	return list.ConvertWeights(we.WeightUnit.OrDefault(), units.WeightKG), nil
}

// DistanceKm returns the distance in kilometers, nil when not set.
func (we *WorkoutExercise) DistanceKm() *float64 {
	if we.Distance == nil {
		return nil
	}
	from := we.DistanceUnit
	if !from.IsValid() {
		from = units.DistanceKM
	}
	km := units.ConvertDistance(*we.Distance, from, units.DistanceKM)
	return &km
}

// SpeedKmh returns the speed in km/h, nil when not set.
func (we *WorkoutExercise) SpeedKmh() *float64 {
	if we.Speed == nil {
		return nil
	}
	from := we.SpeedUnit
	if !from.IsValid() {
		from = units.SpeedKMH
	}
	kmh := units.ConvertSpeed(*we.Speed, from, units.SpeedKMH)
	return &kmh
}

// VolumeKg is the total volume of the exercise in kilograms: each set's
// weight times its reps. Sets without a parseable weight or reps count
// contribute nothing. Reps fall back to the planned list when actuals
// are missing, weights likewise.
func (we *WorkoutExercise) VolumeKg() float64 {
	weights, _ := we.ActualWeightsKg()
	if we.ActualWeight == "" {
		weights, _ = we.WeightsKg()
	}
	repsStr := we.ActualReps
	if repsStr == "" {
		repsStr = we.Reps
	}
	reps, _ := units.ParseSetList(repsStr)

	var volume float64
	for i, w := range weights {
		if w == nil || i >= len(reps) || reps[i] == nil {
			continue
		}
		volume += *w * *reps[i]
	}
	return volume
}
