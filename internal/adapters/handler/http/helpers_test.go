package http_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

// serverClock pins the server date to 2024-03-10.
func serverClock() time.Time {
	return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
}

type testAPI struct {
	router      *gin.Engine
	habits      *repository.InMemoryHabitRepository
	completions *repository.InMemoryCompletionRepository
}

// setupAPI wires the real services over in-memory stores. The caller is
// identified by the X-User-ID header instead of a token.
func setupAPI() *testAPI {
	gin.SetMode(gin.TestMode)

	habits := repository.NewInMemoryHabitRepository()
	completions := repository.NewInMemoryCompletionRepository()

	habitHandler := adapterHTTP.NewHabitHandler(services.NewHabitService(habits, nil))
	completionHandler := adapterHTTP.NewCompletionHandler(services.NewCompletionService(completions, habits, nil).WithClock(serverClock))
	statsHandler := adapterHTTP.NewStatsHandler(services.NewStatsService(habits, completions).WithClock(serverClock))

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})
	habitHandler.RegisterRoutes(api)
	completionHandler.RegisterRoutes(api)
	statsHandler.RegisterRoutes(api)

	return &testAPI{router: r, habits: habits, completions: completions}
}

func (a *testAPI) do(method, path, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) seedHabit(t *testing.T, userID, title string, schedule domain.Schedule) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, title, schedule)
	require.NoError(t, err)
	require.NoError(t, a.habits.Create(context.Background(), h))
	return h
}

func (a *testAPI) seedCompletions(t *testing.T, h *domain.Habit, dates ...domain.CalendarKey) {
	t.Helper()
	for _, d := range dates {
		_, err := a.completions.Add(context.Background(), domain.NewCompletion(h.ID, h.UserID, d))
		require.NoError(t, err)
	}
}
