package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/workoutbuddy/internal/telemetry/metrics"
	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/internal/units"
	"github.com/2beens/workoutbuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id int) (*Workout, error)
	List(ctx context.Context, params ListParams) (_ []Workout, total int, err error)
	ListAll(ctx context.Context, params WorkoutParams) ([]Workout, error)
	Count(ctx context.Context, params WorkoutParams) (int, error)
	Delete(ctx context.Context, id, userID int) error
}

type sessionResolver interface {
	LoggedUserID(ctx context.Context, token string) (int, error)
}

type preferenceProvider interface {
	GetPreference(ctx context.Context, userID int) (units.Preference, error)
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type DeleteWorkoutResponse struct {
	DeletedID int `json:"deletedId"`
}

// StatsResponse carries the aggregated stats plus the total volume
// formatted in the user's preferred weight unit.
type StatsResponse struct {
	*TrainingStats
	TotalVolumeDisplay units.Display `json:"totalVolumeDisplay"`
}

type Handler struct {
	repo           workoutsRepo
	analyzer       *Analyzer
	sessions       sessionResolver
	prefs          preferenceProvider
	metricsManager *metrics.Manager
}

func NewHandler(
	repo workoutsRepo,
	sessions sessionResolver,
	prefs preferenceProvider,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		analyzer:       NewAnalyzer(repo),
		sessions:       sessions,
		prefs:          prefs,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	workoutsRouter := router.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-workout")
	workoutsRouter.HandleFunc("", handler.HandleList).Methods("GET").Name("list-workouts")
	workoutsRouter.HandleFunc("/stats", handler.HandleStats).Methods("GET").Name("workout-stats")
	workoutsRouter.HandleFunc("/{id}", handler.HandleGet).Methods("GET").Name("get-workout")
	workoutsRouter.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, ok := handler.loggedUserID(ctx, w, r)
	if !ok {
		return
	}

	var workout Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if workout.Name == "" {
		http.Error(w, "error, workout name empty", http.StatusBadRequest)
		return
	}
	workout.UserID = userID
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = time.Now()
	}

	pref, err := handler.prefs.GetPreference(ctx, userID)
	if err != nil {
		log.Errorf("failed to get preference for user %d: %s", userID, err)
		http.Error(w, "add workout failed", http.StatusInternalServerError)
		return
	}

	for i := range workout.Exercises {
		we := &workout.Exercises[i]
		// measurements are stored in the unit the user authored them in
		if we.WeightUnit == "" {
			we.WeightUnit = pref.WeightUnit
		}
		if we.Distance != nil && !we.DistanceUnit.IsValid() {
			we.DistanceUnit = pref.DistanceUnit()
		}
		if we.Speed != nil && !we.SpeedUnit.IsValid() {
			we.SpeedUnit = pref.SpeedUnit()
		}

		if err := validateExercise(we); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	addedWorkout, err := handler.repo.Add(ctx, workout)
	if err != nil {
		if errors.Is(err, ErrUnknownExercise) {
			http.Error(w, "error, unknown exercise", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add workout for user %d: %s", userID, err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterWorkoutsAdded.Inc()
	log.Debugf("new workout added: %d [user %d]", addedWorkout.ID, userID)

	workoutJson, err := json.Marshal(addedWorkout)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := handler.loggedUserID(ctx, w, r)
	if !ok {
		return
	}

	page, size, err := pageAndSize(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workouts, total, err := handler.repo.List(ctx, ListParams{
		WorkoutParams: WorkoutParams{UserID: userID},
		Page:          page,
		Size:          size,
	})
	if err != nil {
		log.Errorf("failed to list workouts for user %d: %s", userID, err)
		http.Error(w, "list workouts failed", http.StatusInternalServerError)
		return
	}

	if workouts == nil {
		workouts = []Workout{}
	}
	listJson, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    total,
	})
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		http.Error(w, "list workouts failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, listJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := handler.loggedUserID(ctx, w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, workout id invalid", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "get workout failed", http.StatusInternalServerError)
		return
	}
	if workout.UserID != userID {
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "get workout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := handler.loggedUserID(ctx, w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, workout id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "delete workout failed", http.StatusInternalServerError)
		return
	}

	deletedJson, err := json.Marshal(DeleteWorkoutResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete workout response: %s", err)
		http.Error(w, "delete workout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, deletedJson)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.stats")
	defer span.End()

	userID, ok := handler.loggedUserID(ctx, w, r)
	if !ok {
		return
	}

	params := WorkoutParams{UserID: userID}
	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		from, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			http.Error(w, "error, from param invalid", http.StatusBadRequest)
			return
		}
		params.From = &from
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		to, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			http.Error(w, "error, to param invalid", http.StatusBadRequest)
			return
		}
		params.To = &to
	}

	stats, err := handler.analyzer.Stats(ctx, params)
	if err != nil {
		log.Errorf("failed to get stats for user %d: %s", userID, err)
		http.Error(w, "get stats failed", http.StatusInternalServerError)
		return
	}

	pref, err := handler.prefs.GetPreference(ctx, userID)
	if err != nil {
		log.Errorf("failed to get preference for user %d: %s", userID, err)
		pref = units.DefaultPreference()
	}

	statsJson, err := json.Marshal(StatsResponse{
		TrainingStats:      stats,
		TotalVolumeDisplay: units.DisplayWeight(&stats.TotalVolumeKg, pref),
	})
	if err != nil {
		log.Errorf("failed to marshal stats: %s", err)
		http.Error(w, "get stats failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}

func validateExercise(we *WorkoutExercise) error {
	weights, err := units.ParseSetList(we.Weight)
	if err != nil {
		return err
	}
	if err := units.ValidateWeightSetList(weights, we.WeightUnit.OrDefault()); err != nil {
		return err
	}

	actualWeights, err := units.ParseSetList(we.ActualWeight)
	if err != nil {
		return err
	}
	if err := units.ValidateWeightSetList(actualWeights, we.WeightUnit.OrDefault()); err != nil {
		return err
	}

	if we.Distance != nil {
		if err := units.ValidateDistance(*we.Distance, we.DistanceUnit); err != nil {
			return err
		}
	}
	if we.Speed != nil {
		if err := units.ValidateSpeed(*we.Speed, we.SpeedUnit); err != nil {
			return err
		}
	}
	return nil
}

func pageAndSize(r *http.Request) (page, size int, err error) {
	page, size = 1, 25
	query := r.URL.Query()
	if pageParam := query.Get("page"); pageParam != "" {
		page, err = strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return 0, 0, errors.New("error, page param invalid")
		}
	}
	if sizeParam := query.Get("size"); sizeParam != "" {
		size, err = strconv.Atoi(sizeParam)
		if err != nil || size < 1 || size > 100 {
			return 0, 0, errors.New("error, size param invalid")
		}
	}
	return page, size, nil
}

func (handler *Handler) loggedUserID(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, bool) {
	token := r.Header.Get("X-WB-TOKEN")
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return 0, false
	}

	userID, err := handler.sessions.LoggedUserID(ctx, token)
	if err != nil {
		log.Tracef("[failed session check] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return 0, false
	}

	return userID, true
}
