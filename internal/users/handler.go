package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/workoutbuddy/internal/telemetry/metrics"
	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/internal/units"
	"github.com/2beens/workoutbuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int) error
}

type preferenceChanger interface {
	Change(ctx context.Context, userID int, newPref units.Preference) (*User, error)
}

type sessionResolver interface {
	LoggedUserID(ctx context.Context, token string) (int, error)
}

type RegisterRequest struct {
	Email           string           `json:"email"`
	Username        string           `json:"username"`
	Password        string           `json:"password"`
	FullName        string           `json:"fullName"`
	Age             *int             `json:"age,omitempty"`
	Height          *float64         `json:"height,omitempty"`
	Weight          *float64         `json:"weight,omitempty"`
	UnitSystem      units.System     `json:"unitSystem,omitempty"`
	HeightUnit      units.HeightUnit `json:"heightUnit,omitempty"`
	WeightUnit      units.WeightUnit `json:"weightUnit,omitempty"`
	FitnessGoal     FitnessGoal      `json:"fitnessGoal,omitempty"`
	ExperienceLevel ExperienceLevel  `json:"experienceLevel,omitempty"`
}

type UpdateProfileRequest struct {
	Email           *string          `json:"email,omitempty"`
	FullName        *string          `json:"fullName,omitempty"`
	Age             *int             `json:"age,omitempty"`
	Height          *float64         `json:"height,omitempty"`
	Weight          *float64         `json:"weight,omitempty"`
	FitnessGoal     *FitnessGoal     `json:"fitnessGoal,omitempty"`
	ExperienceLevel *ExperienceLevel `json:"experienceLevel,omitempty"`
}

type ChangePreferenceRequest struct {
	units.Preference
}

// ProfileResponse is the user profile plus measurements formatted for
// the user's unit preference.
type ProfileResponse struct {
	User          *User         `json:"user"`
	HeightDisplay units.Display `json:"heightDisplay"`
	WeightDisplay units.Display `json:"weightDisplay"`
}

type Handler struct {
	repo           usersRepo
	prefService    preferenceChanger
	sessions       sessionResolver
	metricsManager *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	prefService preferenceChanger,
	sessions sessionResolver,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		prefService:    prefService,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	usersRouter := router.PathPrefix("/users").Subrouter()
	usersRouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register-user")
	usersRouter.HandleFunc("/me", handler.HandleGetProfile).Methods("GET").Name("get-profile")
	usersRouter.HandleFunc("/me", handler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")
	usersRouter.HandleFunc("/me", handler.HandleDeleteProfile).Methods("DELETE", "OPTIONS").Name("delete-profile")
	usersRouter.HandleFunc("/me/preference", handler.HandleChangePreference).Methods("POST", "OPTIONS").Name("change-preference")
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("register user, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Username == "" {
		http.Error(w, "error, email or username empty", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "error, password too short", http.StatusBadRequest)
		return
	}

	pref := units.Preference{
		System:     req.UnitSystem,
		HeightUnit: req.HeightUnit,
		WeightUnit: req.WeightUnit,
	}.OrSystemDefaults()
	if err := pref.Validate(); err != nil {
		if errors.Is(err, units.ErrMissingPreference) {
			pref = units.DefaultPreference()
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if req.Height != nil {
		if err := units.ValidateHeight(*req.Height, pref.HeightUnit); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Weight != nil {
		if err := units.ValidateWeight(*req.Weight, pref.WeightUnit); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.FitnessGoal != "" && !req.FitnessGoal.IsValid() {
		http.Error(w, "error, invalid fitness goal", http.StatusBadRequest)
		return
	}
	if req.ExperienceLevel != "" && !req.ExperienceLevel.IsValid() {
		http.Error(w, "error, invalid experience level", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register user, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	user := User{
		Email:           req.Email,
		Username:        req.Username,
		PasswordHash:    passwordHash,
		FullName:        req.FullName,
		Age:             req.Age,
		HeightUnit:      pref.HeightUnit,
		WeightUnit:      pref.WeightUnit,
		UnitSystem:      pref.System,
		FitnessGoal:     req.FitnessGoal,
		ExperienceLevel: req.ExperienceLevel,
	}
	if req.Height != nil {
		height, heightUnit := units.HeightFromInput(*req.Height, pref)
		user.Height, user.HeightUnit = &height, heightUnit
	}
	if req.Weight != nil {
		weight, weightUnit := units.WeightFromInput(*req.Weight, pref)
		user.Weight, user.WeightUnit = &weight, weightUnit
	}

	addedUser, err := handler.repo.Add(ctx, user)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, "error, user already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to register user [%s]: %s", req.Username, err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterUsersRegistered.Inc()
	log.Debugf("new user registered: %s [id %d]", addedUser.Username, addedUser.ID)

	userJson, err := json.Marshal(addedUser)
	if err != nil {
		log.Errorf("failed to marshal registered user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.getProfile")
	defer span.End()

	user, ok := handler.loggedUser(ctx, w, r)
	if !ok {
		return
	}

	pref := user.Preference()
	profile := ProfileResponse{
		User:          user,
		HeightDisplay: units.DisplayHeight(user.HeightCm(), pref),
		WeightDisplay: units.DisplayWeight(user.WeightKg(), pref),
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("failed to marshal user profile: %s", err)
		http.Error(w, "get profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateProfile")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	user, ok := handler.loggedUser(ctx, w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Height != nil {
		if err := units.ValidateHeight(*req.Height, user.HeightUnit.OrDefault()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user.Height = req.Height
	}
	if req.Weight != nil {
		if err := units.ValidateWeight(*req.Weight, user.WeightUnit.OrDefault()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user.Weight = req.Weight
	}
	if req.FitnessGoal != nil {
		if !req.FitnessGoal.IsValid() {
			http.Error(w, "error, invalid fitness goal", http.StatusBadRequest)
			return
		}
		user.FitnessGoal = *req.FitnessGoal
	}
	if req.ExperienceLevel != nil {
		if !req.ExperienceLevel.IsValid() {
			http.Error(w, "error, invalid experience level", http.StatusBadRequest)
			return
		}
		user.ExperienceLevel = *req.ExperienceLevel
	}

	if err := handler.repo.Update(ctx, user); err != nil {
		log.Errorf("failed to update user %d: %s", user.ID, err)
		http.Error(w, "update profile failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("failed to marshal updated user: %s", err)
		http.Error(w, "update profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *Handler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.deleteProfile")
	defer span.End()

	user, ok := handler.loggedUser(ctx, w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, user.ID); err != nil {
		log.Errorf("failed to delete user %d: %s", user.ID, err)
		http.Error(w, "delete profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"deleted": true}`)
}

func (handler *Handler) HandleChangePreference(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.changePreference")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	user, ok := handler.loggedUser(ctx, w, r)
	if !ok {
		return
	}

	var req ChangePreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("change preference, unmarshal json params: %s", err)
		http.Error(w, "change preference failed", http.StatusBadRequest)
		return
	}

	req.Preference = req.Preference.OrSystemDefaults()
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updatedUser, err := handler.prefService.Change(ctx, user.ID, req.Preference)
	if err != nil {
		log.Errorf("failed to change unit preference for user %d: %s", user.ID, err)
		http.Error(w, "change preference failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(updatedUser)
	if err != nil {
		log.Errorf("failed to marshal user after preference change: %s", err)
		http.Error(w, "change preference failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

// loggedUser resolves the session token to a full user. Writes the error
// response itself when that fails.
func (handler *Handler) loggedUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*User, bool) {
	token := r.Header.Get("X-WB-TOKEN")
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	userID, err := handler.sessions.LoggedUserID(ctx, token)
	if err != nil {
		log.Tracef("[failed session check] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("failed to get user %d: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	return user, true
}
