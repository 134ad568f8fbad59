package workouts

import (
	"context"
	"time"

	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// TrainingStats aggregates a user's training history. All weights are in
// kilograms, display formatting happens at the edge.
type TrainingStats struct {
	TotalWorkouts  int                    `json:"totalWorkouts"`
	TotalExercises int                    `json:"totalExercises"`
	TotalVolumeKg  float64                `json:"totalVolumeKg"`
	VolumePerDay   map[time.Time]float64  `json:"volumePerDay"`
	WorkoutsPerDay map[time.Time]int      `json:"workoutsPerDay"`
}

type Analyzer struct {
	repo workoutsRepo
}

func NewAnalyzer(repo workoutsRepo) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

// Stats walks all workouts matching the params and sums up the volume.
// Exercises with unparseable weight tokens contribute their parseable
// sets only.
func (a *Analyzer) Stats(ctx context.Context, params WorkoutParams) (_ *TrainingStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.workouts.stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", params.UserID))

	workouts, err := a.repo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}

	stats := &TrainingStats{
		TotalWorkouts:  len(workouts),
		VolumePerDay:   make(map[time.Time]float64),
		WorkoutsPerDay: make(map[time.Time]int),
	}

	for _, w := range workouts {
		day := w.CreatedAt.Truncate(24 * time.Hour)
		stats.WorkoutsPerDay[day]++

		var workoutVolume float64
		for i := range w.Exercises {
			workoutVolume += w.Exercises[i].VolumeKg()
		}
		stats.TotalExercises += len(w.Exercises)
		stats.TotalVolumeKg += workoutVolume
		stats.VolumePerDay[day] += workoutVolume
	}

	return stats, nil
}
