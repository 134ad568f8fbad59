package exercises

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise with that name already exists")
)

type GetExercisesParams struct {
	MuscleGroup string
	Type        ExerciseType
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO exercise
				(name, muscle_group, equipment, type, difficulty, mets, description, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id;`,
		exercise.Name, exercise.MuscleGroup, exercise.Equipment, exercise.Type,
		exercise.Difficulty, exercise.Mets, exercise.Description, exercise.CreatedAt,
	)
	if err := row.Scan(&exercise.ID); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var exercise Exercise
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, muscle_group, equipment, type, difficulty, mets, description, created_at
			FROM exercise
			WHERE id = $1;`,
		id,
	).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.MuscleGroup,
		&exercise.Equipment,
		&exercise.Type,
		&exercise.Difficulty,
		&exercise.Mets,
		&exercise.Description,
		&exercise.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("exercise [query row]: %w", err)
	}

	return &exercise, nil
}

func (r *Repo) List(ctx context.Context, params GetExercisesParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscle_group", params.MuscleGroup))
	span.SetAttributes(attribute.String("type", params.Type.String()))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, muscle_group, equipment, type, difficulty, mets, description, created_at
			FROM exercise
			WHERE ($1::text = '' OR muscle_group = $1)
				AND ($2::text = '' OR type = $2)
			ORDER BY name;`,
		params.MuscleGroup, params.Type,
	)
	if err != nil {
		return nil, fmt.Errorf("exercises [query]: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var exercise Exercise
		if err := rows.Scan(
			&exercise.ID,
			&exercise.Name,
			&exercise.MuscleGroup,
			&exercise.Equipment,
			&exercise.Type,
			&exercise.Difficulty,
			&exercise.Mets,
			&exercise.Description,
			&exercise.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("exercises [rows scan]: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *Repo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercise SET
				name = $1, muscle_group = $2, equipment = $3, type = $4,
				difficulty = $5, mets = $6, description = $7
			WHERE id = $8;`,
		exercise.Name, exercise.MuscleGroup, exercise.Equipment, exercise.Type,
		exercise.Difficulty, exercise.Mets, exercise.Description, exercise.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}
