package users

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
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user with that email or username already exists")
)

const userColumns = `
	id, email, username, password_hash, full_name, age,
	height, height_unit, weight, weight_unit, unit_system,
	fitness_goal, experience_level, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO wb_user
				(email, username, password_hash, full_name, age,
				 height, height_unit, weight, weight_unit, unit_system,
				 fitness_goal, experience_level, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id;`,
		user.Email, user.Username, user.PasswordHash, user.FullName, user.Age,
		user.Height, user.HeightUnit, user.Weight, user.WeightUnit, user.UnitSystem,
		user.FitnessGoal, user.ExperienceLevel, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", id))

	user.ID = id
	return &user, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM wb_user WHERE id = $1;`,
		id,
	)
	return scanUser(row)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("username", username))

	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM wb_user WHERE username = $1;`,
		username,
	)
	return scanUser(row)
}

// GetCredentials implements the auth service user provider.
func (r *Repo) GetCredentials(ctx context.Context, username string) (userID int, passwordHash string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getCredentials")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := r.GetByUsername(ctx, username)
	if err != nil {
		return 0, "", err
	}
	return user.ID, user.PasswordHash, nil
}

// GetPreference loads just the unit preference of a user, falling back
// to the metric default when the stored one is unusable.
func (r *Repo) GetPreference(ctx context.Context, userID int) (_ units.Preference, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getPreference")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	row := r.db.QueryRow(
		ctx,
		`SELECT unit_system, height_unit, weight_unit FROM wb_user WHERE id = $1;`,
		userID,
	)

	var system, heightUnit, weightUnit *string
	if err := row.Scan(&system, &heightUnit, &weightUnit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return units.Preference{}, ErrUserNotFound
		}
		return units.Preference{}, err
	}

	var pref units.Preference
	if system != nil {
		pref.System = units.System(*system)
	}
	if heightUnit != nil {
		pref.HeightUnit = units.HeightUnit(*heightUnit)
	}
	if weightUnit != nil {
		pref.WeightUnit = units.WeightUnit(*weightUnit)
	}
	return pref.OrDefault(), nil
}

func (r *Repo) Update(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", user.ID))

	user.UpdatedAt = time.Now()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE wb_user SET
				email = $1, full_name = $2, age = $3,
				height = $4, height_unit = $5, weight = $6, weight_unit = $7,
				fitness_goal = $8, experience_level = $9, updated_at = $10
			WHERE id = $11;`,
		user.Email, user.FullName, user.Age,
		user.Height, user.HeightUnit, user.Weight, user.WeightUnit,
		user.FitnessGoal, user.ExperienceLevel, user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM wb_user WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u           User
		heightUnit  *string
		weightUnit  *string
		unitSystem  *string
		goal, level *string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FullName, &u.Age,
		&u.Height, &heightUnit, &u.Weight, &weightUnit, &unitSystem,
		&goal, &level, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if heightUnit != nil {
		u.HeightUnit = units.HeightUnit(*heightUnit)
	}
	if weightUnit != nil {
		u.WeightUnit = units.WeightUnit(*weightUnit)
	}
	if unitSystem != nil {
		u.UnitSystem = units.System(*unitSystem)
	}
	if goal != nil {
		u.FitnessGoal = FitnessGoal(*goal)
	}
	if level != nil {
		u.ExperienceLevel = ExperienceLevel(*level)
	}
	return &u, nil
}
