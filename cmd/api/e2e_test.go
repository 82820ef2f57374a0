package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/config"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := newApp(ctx, &config.Config{
		Env:     "test",
		Storage: "memory",
		Auth: config.Auth{
			Secret:   "e2e-secret",
			Issuer:   "kanso-e2e",
			TokenTTL: time.Hour,
		},
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func call(a *app, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_HabitLifecycle(t *testing.T) {
	a := newTestApp(t)

	var token, habitID string
	today := domain.KeyOf(time.Now().UTC())

	t.Run("1. Register", func(t *testing.T) {
		w := call(a, http.MethodPost, "/api/v1/auth/register", "", `{"email":"e2e@kanso.app","password":"password123"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("2. Login", func(t *testing.T) {
		w := call(a, http.MethodPost, "/api/v1/auth/login", "", `{"email":"e2e@kanso.app","password":"password123"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)
		token = resp.Token
	})

	t.Run("3. Create Habit", func(t *testing.T) {
		require.NotEmpty(t, token, "login step failed")

		payload := `{
			"title": "Morning Run",
			"schedule": {"kind": "everyday"},
			"start_date": "` + today.AddDays(-30).String() + `"
		}`
		w := call(a, http.MethodPost, "/api/v1/habits", token, payload)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.ID)
		habitID = resp.ID
	})

	t.Run("4. Toggle Completions", func(t *testing.T) {
		require.NotEmpty(t, habitID, "create step failed")

		for _, date := range []domain.CalendarKey{today.AddDays(-2), today.AddDays(-1), today} {
			w := call(a, http.MethodPost, "/api/v1/habits/"+habitID+"/completions", token,
				`{"date":"`+date.String()+`","today":"`+today.String()+`"}`)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}

		w := call(a, http.MethodPost, "/api/v1/habits/"+habitID+"/completions", token,
			`{"date":"`+today.AddDays(1).String()+`","today":"`+today.String()+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = call(a, http.MethodPost, "/api/v1/habits/"+habitID+"/completions", token,
			`{"date":"2099-12-31","today":"2099-12-31"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, "a client date far from the server date is rejected")
	})

	t.Run("5. Metrics", func(t *testing.T) {
		w := call(a, http.MethodGet, "/api/v1/habits/"+habitID+"/metrics?today="+today.String(), token, "")
		require.Equal(t, http.StatusOK, w.Code)

		var m struct {
			CurrentStreak  int  `json:"current_streak"`
			BestStreak     int  `json:"best_streak"`
			CompletedToday bool `json:"completed_today"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
		assert.Equal(t, 3, m.CurrentStreak)
		assert.Equal(t, 3, m.BestStreak)
		assert.True(t, m.CompletedToday)
	})

	t.Run("6. Foreign Access", func(t *testing.T) {
		w := call(a, http.MethodPost, "/api/v1/auth/register", "", `{"email":"other@kanso.app","password":"password123"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = call(a, http.MethodPost, "/api/v1/auth/login", "", `{"email":"other@kanso.app","password":"password123"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		w = call(a, http.MethodGet, "/api/v1/habits/"+habitID, resp.Token, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("7. Delete Habit", func(t *testing.T) {
		w := call(a, http.MethodDelete, "/api/v1/habits/"+habitID, token, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = call(a, http.MethodGet, "/api/v1/habits", token, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), habitID)
	})

	t.Run("8. Auth Error", func(t *testing.T) {
		w := call(a, http.MethodGet, "/api/v1/habits", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHealth_MemoryStorage(t *testing.T) {
	a := newTestApp(t)

	w := call(a, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"disabled"`)
}
