package features

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/internal/units"
	"github.com/2beens/workoutbuddy/internal/workouts"

	"github.com/coocood/freecache"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// LeaderboardEntry ranks a user by total lifted volume. Volume is always
// in kilograms so metric and imperial users compete on the same scale.
type LeaderboardEntry struct {
	UserID        int     `json:"userId"`
	Username      string  `json:"username"`
	Workouts      int     `json:"workouts"`
	TotalVolumeKg float64 `json:"totalVolumeKg"`
}

type Leaderboard struct {
	db         *pgxpool.Pool
	cache      *freecache.Cache
	cacheTTL   int // seconds
}

func NewLeaderboard(db *pgxpool.Pool, cacheSizeMb, cacheTTLSeconds int) *Leaderboard {
	megabyte := 1024 * 1024
	return &Leaderboard{
		db:       db,
		cache:    freecache.NewCache(cacheSizeMb * megabyte),
		cacheTTL: cacheTTLSeconds,
	}
}

type volumeRow struct {
	UserID       int
	Username     string
	WorkoutID    int
	Reps         string
	Weight       string
	ActualReps   string
	ActualWeight string
	WeightUnit   units.WeightUnit
}

// Top returns the highest volume users, recomputed at most once per
// cache TTL.
func (l *Leaderboard) Top(ctx context.Context, limit int) (_ []LeaderboardEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "features.leaderboard.top")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("limit", limit))

	cacheKey := fmt.Sprintf("leaderboard::%d", limit)
	if cachedBytes, err := l.cache.Get([]byte(cacheKey)); err == nil {
		var entries []LeaderboardEntry
		if err = json.Unmarshal(cachedBytes, &entries); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return entries, nil
		}
		log.Errorf("failed to unmarshal cached leaderboard: %s", err)
	}

	rows, err := l.volumeRows(ctx)
	if err != nil {
		return nil, err
	}

	entries := rankByVolume(rows, limit)

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal leaderboard: %w", err)
	}
	if err := l.cache.Set([]byte(cacheKey), entriesJson, l.cacheTTL); err != nil {
		// cache miss next time, not an error for the caller
		log.Errorf("failed to cache leaderboard: %s", err)
	}

	return entries, nil
}

func (l *Leaderboard) volumeRows(ctx context.Context) ([]volumeRow, error) {
	rows, err := l.db.Query(
		ctx,
		`SELECT
				u.id, u.username, w.id,
				we.reps, we.weight, we.actual_reps, we.actual_weight, we.weight_unit
			FROM workout_exercise we
			JOIN workout w ON we.workout_id = w.id
			JOIN wb_user u ON w.user_id = u.id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []volumeRow
	for rows.Next() {
		var (
			vr         volumeRow
			weightUnit *string
		)
		if err := rows.Scan(
			&vr.UserID, &vr.Username, &vr.WorkoutID,
			&vr.Reps, &vr.Weight, &vr.ActualReps, &vr.ActualWeight, &weightUnit,
		); err != nil {
			return nil, err
		}
		if weightUnit != nil {
			vr.WeightUnit = units.WeightUnit(*weightUnit)
		}
		result = append(result, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// rankByVolume aggregates raw exercise rows into per-user totals. Rows
// with unparseable weights contribute their parseable sets only.
func rankByVolume(rows []volumeRow, limit int) []LeaderboardEntry {
	type userAgg struct {
		entry    LeaderboardEntry
		workouts map[int]struct{}
	}
	userTotals := make(map[int]*userAgg)

	for _, row := range rows {
		agg, ok := userTotals[row.UserID]
		if !ok {
			agg = &userAgg{
				entry:    LeaderboardEntry{UserID: row.UserID, Username: row.Username},
				workouts: make(map[int]struct{}),
			}
			userTotals[row.UserID] = agg
		}

		we := workouts.WorkoutExercise{
			Reps:         row.Reps,
			Weight:       row.Weight,
			ActualReps:   row.ActualReps,
			ActualWeight: row.ActualWeight,
			WeightUnit:   row.WeightUnit,
		}
		agg.entry.TotalVolumeKg += we.VolumeKg()
		agg.workouts[row.WorkoutID] = struct{}{}
	}

	entries := make([]LeaderboardEntry, 0, len(userTotals))
	for _, agg := range userTotals {
		agg.entry.Workouts = len(agg.workouts)
		entries = append(entries, agg.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalVolumeKg == entries[j].TotalVolumeKg {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].TotalVolumeKg > entries[j].TotalVolumeKg
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
