package features

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/2beens/workoutbuddy/internal/telemetry/tracing"
	"github.com/2beens/workoutbuddy/internal/users"
	"github.com/2beens/workoutbuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const defaultLeaderboardLimit = 10

type usersGetter interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type sessionResolver interface {
	LoggedUserID(ctx context.Context, token string) (int, error)
}

type leaderboardProvider interface {
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type Handler struct {
	usersRepo   usersGetter
	sessions    sessionResolver
	leaderboard leaderboardProvider
}

func NewHandler(
	usersRepo usersGetter,
	sessions sessionResolver,
	leaderboard leaderboardProvider,
) *Handler {
	return &Handler{
		usersRepo:   usersRepo,
		sessions:    sessions,
		leaderboard: leaderboard,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/features/me", handler.HandleGetFeatures).Methods("GET").Name("get-features")
	router.HandleFunc("/leaderboard", handler.HandleLeaderboard).Methods("GET").Name("leaderboard")
}

// HandleGetFeatures serves the model input vector for the logged user.
func (handler *Handler) HandleGetFeatures(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.features.get")
	defer span.End()

	token := r.Header.Get("X-WB-TOKEN")
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	userID, err := handler.sessions.LoggedUserID(ctx, token)
	if err != nil {
		log.Tracef("[failed session check] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	user, err := handler.usersRepo.Get(ctx, userID)
	if err != nil {
		log.Errorf("failed to get user %d: %s", userID, err)
		http.Error(w, "get features failed", http.StatusInternalServerError)
		return
	}

	featuresJson, err := json.Marshal(Extract(user))
	if err != nil {
		log.Errorf("failed to marshal features: %s", err)
		http.Error(w, "get features failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, featuresJson)
}

func (handler *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.features.leaderboard")
	defer span.End()

	limit := defaultLeaderboardLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		var err error
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit < 1 || limit > 100 {
			http.Error(w, "error, limit param invalid", http.StatusBadRequest)
			return
		}
	}

	entries, err := handler.leaderboard.Top(ctx, limit)
	if err != nil {
		log.Errorf("failed to get leaderboard: %s", err)
		http.Error(w, "get leaderboard failed", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to marshal leaderboard: %s", err)
		http.Error(w, "get leaderboard failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesJson)
}
