package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workoutbuddy/internal/telemetry/metrics"
	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/internal/units"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// PreferenceService switches a user to a different unit system and
// converts all their stored measurements in place, in one transaction.
// Either everything converts or nothing does.
type PreferenceService struct {
	db             *pgxpool.Pool
	metricsManager *metrics.Manager
}

func NewPreferenceService(db *pgxpool.Pool, metricsManager *metrics.Manager) *PreferenceService {
	return &PreferenceService{
		db:             db,
		metricsManager: metricsManager,
	}
}

// exerciseUnitRow is the slice of a workout exercise row that carries
// unit-tagged measurements.
type exerciseUnitRow struct {
	ID           int
	Weight       string
	ActualWeight string
	WeightUnit   units.WeightUnit
	Distance     *float64
	DistanceUnit units.DistanceUnit
	Speed        *float64
	SpeedUnit    units.SpeedUnit
}

// convertProfile rewrites the user's height and weight into the units of
// the target preference. The user struct is modified in place.
func convertProfile(u *User, to units.Preference) error {
	if u.Height != nil {
		fromUnit := u.HeightUnit
		if !fromUnit.IsValid() {
			return fmt.Errorf("user %d: stored height unit invalid: %q", u.ID, fromUnit)
		}
		converted := units.ConvertHeight(*u.Height, fromUnit, to.HeightUnit)
		u.Height = &converted
	}
	u.HeightUnit = to.HeightUnit

	if u.Weight != nil {
		fromUnit := u.WeightUnit
		if !fromUnit.IsValid() {
			return fmt.Errorf("user %d: stored weight unit invalid: %q", u.ID, fromUnit)
		}
		converted := units.ConvertWeight(*u.Weight, fromUnit, to.WeightUnit)
		u.Weight = &converted
	}
	u.WeightUnit = to.WeightUnit

	u.UnitSystem = to.System
	return nil
}

// convertExerciseRows converts every row to the target preference. It
// returns the full converted batch or an error, never a partial result:
// a single bad row aborts the whole conversion.
func convertExerciseRows(rows []exerciseUnitRow, to units.Preference) ([]exerciseUnitRow, error) {
	converted := make([]exerciseUnitRow, 0, len(rows))
	for _, row := range rows {
		if !row.WeightUnit.IsValid() {
			return nil, fmt.Errorf("exercise %d: stored weight unit invalid: %q", row.ID, row.WeightUnit)
		}

		weight, err := units.ConvertSetListString(row.Weight, row.WeightUnit, to.WeightUnit)
		if err != nil {
			// malformed tokens survive as empty positions, log and move on
			log.Warnf("exercise %d weight list: %s", row.ID, err)
		}
		actualWeight, err := units.ConvertSetListString(row.ActualWeight, row.WeightUnit, to.WeightUnit)
		if err != nil {
			log.Warnf("exercise %d actual weight list: %s", row.ID, err)
		}
		row.Weight = weight
		row.ActualWeight = actualWeight
		row.WeightUnit = to.WeightUnit

		if row.Distance != nil {
			if !row.DistanceUnit.IsValid() {
				return nil, fmt.Errorf("exercise %d: stored distance unit invalid: %q", row.ID, row.DistanceUnit)
			}
			d := units.ConvertDistance(*row.Distance, row.DistanceUnit, to.DistanceUnit())
			row.Distance = &d
		}
		row.DistanceUnit = to.DistanceUnit()

		if row.Speed != nil {
			if !row.SpeedUnit.IsValid() {
				return nil, fmt.Errorf("exercise %d: stored speed unit invalid: %q", row.ID, row.SpeedUnit)
			}
			s := units.ConvertSpeed(*row.Speed, row.SpeedUnit, to.SpeedUnit())
			row.Speed = &s
		}
		row.SpeedUnit = to.SpeedUnit()

		converted = append(converted, row)
	}
	return converted, nil
}

// Change switches the user to newPref and converts the profile plus all
// workout exercise measurements. The user row is locked for the duration
// of the transaction so concurrent changes for the same user serialize.
func (s *PreferenceService) Change(ctx context.Context, userID int, newPref units.Preference) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "users.preferenceService.change")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("unit.system", newPref.System.String()))

	newPref = newPref.OrSystemDefaults()
	if err := newPref.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				log.Errorf("change unit preference, rollback: %s", rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	row := tx.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM wb_user WHERE id = $1 FOR UPDATE;`,
		userID,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if err := convertProfile(user, newPref); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now()
	if _, err := tx.Exec(
		ctx,
		`UPDATE wb_user SET
				height = $1, height_unit = $2, weight = $3, weight_unit = $4,
				unit_system = $5, updated_at = $6
			WHERE id = $7;`,
		user.Height, user.HeightUnit, user.Weight, user.WeightUnit,
		user.UnitSystem, user.UpdatedAt, user.ID,
	); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	exerciseRows, err := s.exerciseRowsForUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}

	converted, err := convertExerciseRows(exerciseRows, newPref)
	if err != nil {
		return nil, err
	}

	for _, er := range converted {
		if _, err := tx.Exec(
			ctx,
			`UPDATE workout_exercise SET
					weight = $1, actual_weight = $2, weight_unit = $3,
					distance = $4, distance_unit = $5,
					speed = $6, speed_unit = $7
				WHERE id = $8;`,
			er.Weight, er.ActualWeight, er.WeightUnit,
			er.Distance, er.DistanceUnit,
			er.Speed, er.SpeedUnit,
			er.ID,
		); err != nil {
			return nil, fmt.Errorf("update exercise %d: %w", er.ID, err)
		}
	}

	span.SetAttributes(attribute.Int("exercises.converted", len(converted)))
	s.metricsManager.CounterPrefBulkConverts.Inc()
	s.metricsManager.CounterUnitConversions.Add(float64(len(converted)))

	return user, nil
}

func (s *PreferenceService) exerciseRowsForUser(ctx context.Context, tx pgx.Tx, userID int) ([]exerciseUnitRow, error) {
	rows, err := tx.Query(
		ctx,
		`SELECT
				we.id, we.weight, we.actual_weight, we.weight_unit,
				we.distance, we.distance_unit, we.speed, we.speed_unit
			FROM workout_exercise we
			JOIN workout w ON we.workout_id = w.id
			WHERE w.user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []exerciseUnitRow
	for rows.Next() {
		var (
			er                       exerciseUnitRow
			weightUnit               *string
			distanceUnit, speedUnit  *string
			weight, actualWeight     *string
		)
		if err := rows.Scan(
			&er.ID, &weight, &actualWeight, &weightUnit,
			&er.Distance, &distanceUnit, &er.Speed, &speedUnit,
		); err != nil {
			return nil, err
		}
		if weight != nil {
			er.Weight = *weight
		}
		if actualWeight != nil {
			er.ActualWeight = *actualWeight
		}
		if weightUnit != nil {
			er.WeightUnit = units.WeightUnit(*weightUnit)
		} else {
			er.WeightUnit = units.WeightKG
		}
		if distanceUnit != nil {
			er.DistanceUnit = units.DistanceUnit(*distanceUnit)
		}
		if speedUnit != nil {
			er.SpeedUnit = units.SpeedUnit(*speedUnit)
		}
		result = append(result, er)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
