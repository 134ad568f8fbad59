package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/internal/units"
	"github.com/2beens/workoutbuddy/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrUnknownExercise = errors.New("unknown exercise")
)

type WorkoutParams struct {
	UserID int
	From   *time.Time
	To     *time.Time
}

type ListParams struct {
	WorkoutParams
	Page int
	Size int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores a workout together with its exercises in one transaction.
func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				log.Errorf("add workout, rollback: %s", rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	row := tx.QueryRow(
		ctx,
		`INSERT INTO workout (user_id, name, notes, created_at)
				VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		workout.UserID, workout.Name, workout.Notes, workout.CreatedAt,
	)
	if err := row.Scan(&workout.ID); err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))

	for i := range workout.Exercises {
		we := &workout.Exercises[i]
		we.WorkoutID = workout.ID
		we.Position = i
		if we.CreatedAt.IsZero() {
			we.CreatedAt = workout.CreatedAt
		}

		row := tx.QueryRow(
			ctx,
			`INSERT INTO workout_exercise
					(workout_id, exercise_id, position, reps, weight, actual_reps, actual_weight,
					 weight_unit, distance, distance_unit, speed, speed_unit,
					 incline, rest_seconds, notes, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
				RETURNING id;`,
			we.WorkoutID, we.ExerciseID, we.Position, we.Reps, we.Weight, we.ActualReps, we.ActualWeight,
			we.WeightUnit, we.Distance, nullableUnit(we.DistanceUnit), we.Speed, nullableUnit(we.SpeedUnit),
			we.Incline, we.RestSeconds, we.Notes, we.CreatedAt,
		)
		if err := row.Scan(&we.ID); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownExercise, we.ExerciseID)
			}
			return nil, fmt.Errorf("insert workout exercise: %w", err)
		}
	}

	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	row := r.db.QueryRow(
		ctx,
		`SELECT id, user_id, name, notes, created_at FROM workout WHERE id = $1;`,
		id,
	)

	var w Workout
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Notes, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	w.Exercises, err = r.exercisesForWorkout(ctx, w.ID)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// List returns one page of workouts for a user, newest first, together
// with the total workout count for the same filter.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", params.UserID))
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))

	total, err = r.Count(ctx, params.WorkoutParams)
	if err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	limit := params.Size
	offset := (params.Page - 1) * params.Size

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, notes, created_at
			FROM workout
			WHERE user_id = $1
				AND ($2::timestamp IS NULL OR created_at >= $2)
				AND ($3::timestamp IS NULL OR created_at <= $3)
			ORDER BY created_at DESC
			LIMIT $4 OFFSET $5;`,
		params.UserID, params.From, params.To, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Notes, &w.CreatedAt); err != nil {
			return nil, 0, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range workouts {
		workouts[i].Exercises, err = r.exercisesForWorkout(ctx, workouts[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}

	return workouts, total, nil
}

// ListAll returns all workouts matching the filter, with exercises.
func (r *Repo) ListAll(ctx context.Context, params WorkoutParams) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", params.UserID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name, notes, created_at
			FROM workout
			WHERE user_id = $1
				AND ($2::timestamp IS NULL OR created_at >= $2)
				AND ($3::timestamp IS NULL OR created_at <= $3)
			ORDER BY created_at DESC;`,
		params.UserID, params.From, params.To,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Notes, &w.CreatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range workouts {
		workouts[i].Exercises, err = r.exercisesForWorkout(ctx, workouts[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return workouts, nil
}

func (r *Repo) Count(ctx context.Context, params WorkoutParams) (count int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout
			WHERE user_id = $1
				AND ($2::timestamp IS NULL OR created_at >= $2)
				AND ($3::timestamp IS NULL OR created_at <= $3);`,
		params.UserID, params.From, params.To,
	)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) exercisesForWorkout(ctx context.Context, workoutID int) ([]WorkoutExercise, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT
				id, workout_id, exercise_id, position, reps, weight, actual_reps, actual_weight,
				weight_unit, distance, distance_unit, speed, speed_unit,
				incline, rest_seconds, notes, created_at
			FROM workout_exercise
			WHERE workout_id = $1
			ORDER BY position;`,
		workoutID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WorkoutExercise
	for rows.Next() {
		var (
			we                      WorkoutExercise
			weightUnit              *string
			distanceUnit, speedUnit *string
		)
		if err := rows.Scan(
			&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Position, &we.Reps, &we.Weight, &we.ActualReps, &we.ActualWeight,
			&weightUnit, &we.Distance, &distanceUnit, &we.Speed, &speedUnit,
			&we.Incline, &we.RestSeconds, &we.Notes, &we.CreatedAt,
		); err != nil {
			return nil, err
		}
		if weightUnit != nil {
			we.WeightUnit = units.WeightUnit(*weightUnit)
		}
		if distanceUnit != nil {
			we.DistanceUnit = units.DistanceUnit(*distanceUnit)
		}
		if speedUnit != nil {
			we.SpeedUnit = units.SpeedUnit(*speedUnit)
		}
		result = append(result, we)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// nullableUnit maps an empty unit tag to NULL instead of an empty string.
func nullableUnit[T ~string](u T) *string {
	if u == "" {
		return nil
	}
	s := string(u)
	return &s
}
