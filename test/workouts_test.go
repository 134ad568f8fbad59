package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/workoutbuddy/internal/units"
	"github.com/2beens/workoutbuddy/internal/users"
	"github.com/2beens/workoutbuddy/internal/workouts"
)

func (s *IntegrationTestSuite) TestWorkoutsFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	login := doLogin(ctx, t)

	newReq := func(method, path string, body any) *http.Request {
		var reqBody *bytes.Buffer
		if body != nil {
			reqJson, err := json.Marshal(body)
			require.NoError(t, err)
			reqBody = bytes.NewBuffer(reqJson)
		} else {
			reqBody = &bytes.Buffer{}
		}
		req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-WB-TOKEN", login.Token)
		return req
	}

	var addedWorkout workouts.Workout
	t.Run("add workout", func(t *testing.T) {
		workout := workouts.Workout{
			Name: "push day",
			Exercises: []workouts.WorkoutExercise{
				{
					ExerciseID: 1,
					Position:   1,
					Reps:       "10,8,6",
					Weight:     "60,65,70",
				},
			},
		}

		resp, err := http.DefaultClient.Do(newReq("POST", "/workouts", workout))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		require.NoError(t, json.NewDecoder(resp.Body).Decode(&addedWorkout))
		assert.Positive(t, addedWorkout.ID)
		assert.Equal(t, login.UserID, addedWorkout.UserID)
		require.Len(t, addedWorkout.Exercises, 1)
		// authored without a unit, stored in the user's preferred one
		assert.Equal(t, units.WeightKG, addedWorkout.Exercises[0].WeightUnit)
	})

	t.Run("get workout", func(t *testing.T) {
		resp, err := http.DefaultClient.Do(newReq("GET", fmt.Sprintf("/workouts/%d", addedWorkout.ID), nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var gotten workouts.Workout
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&gotten))
		assert.Equal(t, addedWorkout.ID, gotten.ID)
		assert.Equal(t, "push day", gotten.Name)
		require.Len(t, gotten.Exercises, 1)
		assert.Equal(t, "60,65,70", gotten.Exercises[0].Weight)
	})

	t.Run("list workouts", func(t *testing.T) {
		resp, err := http.DefaultClient.Do(newReq("GET", "/workouts", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listResp workouts.ListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
		require.GreaterOrEqual(t, listResp.Total, 1)
	})

	t.Run("unknown exercise is rejected", func(t *testing.T) {
		workout := workouts.Workout{
			Name: "ghost day",
			Exercises: []workouts.WorkoutExercise{
				{ExerciseID: 42000, Reps: "10", Weight: "60"},
			},
		}

		resp, err := http.DefaultClient.Do(newReq("POST", "/workouts", workout))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete workout", func(t *testing.T) {
		resp, err := http.DefaultClient.Do(newReq("DELETE", fmt.Sprintf("/workouts/%d", addedWorkout.ID), nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var deleteResp workouts.DeleteWorkoutResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleteResp))
		assert.Equal(t, addedWorkout.ID, deleteResp.DeletedID)
	})
}

func (s *IntegrationTestSuite) TestRegisterAndProfile() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerReq := map[string]any{
		"email":      "imp@example.com",
		"username":   "imperialist",
		"password":   "super-secret",
		"fullName":   "Imp User",
		"height":     70,
		"weight":     180,
		"unitSystem": "IMPERIAL",
	}
	reqJson, err := json.Marshal(registerReq)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", serverEndpoint+"/users/register", bytes.NewBuffer(reqJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered users.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	assert.Positive(t, registered.ID)
	// units derive from the chosen system when not given explicitly
	assert.Equal(t, units.SystemImperial, registered.UnitSystem)
	assert.Equal(t, units.HeightFeetInches, registered.HeightUnit)
	assert.Equal(t, units.WeightLBS, registered.WeightUnit)

	t.Run("profile of logged user", func(t *testing.T) {
		login := doLogin(ctx, t)

		req, err := http.NewRequestWithContext(ctx, "GET", serverEndpoint+"/users/me", nil)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-WB-TOKEN", login.Token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile users.ProfileResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
		require.NotNil(t, profile.User)
		assert.Equal(t, testUsername, profile.User.Username)
		assert.Equal(t, "CM", profile.HeightDisplay.Unit)
		assert.NotEmpty(t, profile.HeightDisplay.Formatted)
	})
}
