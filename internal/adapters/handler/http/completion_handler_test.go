package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

func TestToggleCompletion(t *testing.T) {
	t.Run("Toggle twice flips back", func(t *testing.T) {
		api := setupAPI()
		h := api.seedHabit(t, "user-1", "Read", domain.Everyday())
		api.seedCompletions(t, h, "2024-03-08", "2024-03-09")
		path := "/api/v1/habits/" + h.ID + "/completions"
		body := `{"date": "2024-03-10", "today": "2024-03-10"}`

		w := api.do(http.MethodPost, path, "user-1", body)
		require.Equal(t, http.StatusOK, w.Code)

		var result services.ToggleResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Completed)
		assert.Equal(t, 3, result.CurrentStreak)
		assert.Equal(t, 3, result.BestStreak)

		w = api.do(http.MethodPost, path, "user-1", body)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.Completed)
		assert.Equal(t, 2, result.CurrentStreak, "an open today does not break the streak")
		assert.Equal(t, 3, result.BestStreak, "best streak never decreases")
	})

	t.Run("Challenge progress is reported", func(t *testing.T) {
		api := setupAPI()
		h := api.seedHabit(t, "user-1", "Cold showers", domain.Challenge(10))

		w := api.do(http.MethodPost, "/api/v1/habits/"+h.ID+"/completions", "user-1", `{"date": "2024-03-10", "today": "2024-03-10"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var result services.ToggleResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.NotNil(t, result.Challenge)
		assert.Equal(t, domain.ChallengeProgress{Completed: 1, Remaining: 9, Percent: 10}, *result.Challenge)
	})

	t.Run("Errors", func(t *testing.T) {
		api := setupAPI()
		h := api.seedHabit(t, "user-1", "Read", domain.Everyday())
		path := "/api/v1/habits/" + h.ID + "/completions"

		tests := []struct {
			name   string
			path   string
			userID string
			body   string
			want   int
		}{
			{"future date", path, "user-1", `{"date": "2024-03-11", "today": "2024-03-10"}`, http.StatusBadRequest},
			{"malformed date", path, "user-1", `{"date": "10/03/2024", "today": "2024-03-10"}`, http.StatusBadRequest},
			{"today far from server date", path, "user-1", `{"date": "2099-12-31", "today": "2099-12-31"}`, http.StatusBadRequest},
			{"foreign habit", path, "user-2", `{"date": "2024-03-10", "today": "2024-03-10"}`, http.StatusForbidden},
			{"unknown habit", "/api/v1/habits/nope/completions", "user-1", `{}`, http.StatusNotFound},
			{"no user", path, "", `{}`, http.StatusUnauthorized},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := api.do(http.MethodPost, tt.path, tt.userID, tt.body)
				assert.Equal(t, tt.want, w.Code, w.Body.String())
			})
		}
	})
}

func TestListCompletions(t *testing.T) {
	api := setupAPI()
	h := api.seedHabit(t, "user-1", "Read", domain.Everyday())
	api.seedCompletions(t, h, "2024-03-03", "2024-03-01", "2024-03-02")
	path := "/api/v1/habits/" + h.ID + "/completions"

	var resp struct {
		HabitID string               `json:"habit_id"`
		Dates   []domain.CalendarKey `json:"dates"`
	}

	w := api.do(http.MethodGet, path, "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []domain.CalendarKey{"2024-03-01", "2024-03-02", "2024-03-03"}, resp.Dates)

	w = api.do(http.MethodGet, path+"?from=2024-03-02&to=2024-03-31", "user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []domain.CalendarKey{"2024-03-02", "2024-03-03"}, resp.Dates)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, path+"?from=2024-03-02", "user-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, path+"?from=2024-03-05&to=2024-03-01", "user-1", "").Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, path, "user-2", "").Code)
}
