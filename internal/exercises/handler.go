package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	List(ctx context.Context, params GetExercisesParams) ([]Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id int) error
}

type DeleteExerciseResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	exercisesRouter := router.PathPrefix("/exercises").Subrouter()
	exercisesRouter.HandleFunc("", handler.HandleList).Methods("GET").Name("list-exercises")
	exercisesRouter.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.HandleGet).Methods("GET").Name("get-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	params := GetExercisesParams{
		MuscleGroup: r.URL.Query().Get("muscleGroup"),
		Type:        ExerciseType(r.URL.Query().Get("type")),
	}
	if params.Type != "" && !params.Type.IsValid() {
		http.Error(w, "error, exercise type invalid", http.StatusBadRequest)
		return
	}

	exercises, err := handler.repo.List(ctx, params)
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		http.Error(w, "list exercises failed", http.StatusInternalServerError)
		return
	}

	if exercises == nil {
		exercises = []Exercise{}
	}
	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		http.Error(w, "list exercises failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exercisesJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, exercise id invalid", http.StatusBadRequest)
		return
	}

	exercise, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get exercise %d: %s", id, err)
		http.Error(w, "get exercise failed", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "get exercise failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	if exercise.Name == "" || exercise.MuscleGroup == "" {
		http.Error(w, "error, exercise name or muscle group empty", http.StatusBadRequest)
		return
	}
	if !exercise.Type.IsValid() {
		http.Error(w, "error, exercise type invalid", http.StatusBadRequest)
		return
	}
	if exercise.Difficulty != "" && !exercise.Difficulty.IsValid() {
		http.Error(w, "error, exercise difficulty invalid", http.StatusBadRequest)
		return
	}

	addedExercise, err := handler.repo.Add(ctx, exercise)
	if err != nil {
		if errors.Is(err, ErrExerciseExists) {
			http.Error(w, "error, exercise already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to add exercise [%s]: %s", exercise.Name, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: %s [id %d]", addedExercise.Name, addedExercise.ID)

	exerciseJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("failed to marshal new exercise: %s", err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, exercise id invalid", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Tracef("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}
	exercise.ID = id

	if err := handler.repo.Update(ctx, &exercise); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update exercise %d: %s", id, err)
		http.Error(w, "update exercise failed", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal updated exercise: %s", err)
		http.Error(w, "update exercise failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, exercise id invalid", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete exercise %d: %s", id, err)
		http.Error(w, "delete exercise failed", http.StatusInternalServerError)
		return
	}

	deletedJson, err := json.Marshal(DeleteExerciseResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete exercise response: %s", err)
		http.Error(w, "delete exercise failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, deletedJson)
}
