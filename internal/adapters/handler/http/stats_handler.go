package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/habits/:id/metrics", h.Metrics)
	r.GET("/habits/:id/heatmap", h.Heatmap)
	r.GET("/habits/:id/consistency", h.Consistency)
	r.GET("/insights", h.Insights)
}

// windowParam reads an optional week|month|year query parameter.
func windowParam(c *gin.Context, name string) (domain.WindowKind, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	kind, err := domain.ParseWindowKind(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

// Metrics godoc
// @Summary  Streaks, consistency and productivity of one habit
// @Tags     stats
// @Produce  json
// @Param    id     path  string true  "Habit ID"
// @Param    today  query string false "Caller's local date, YYYY-MM-DD"
// @Param    window query string false "week, month or year"
// @Success  200 {object} domain.HabitMetrics
// @Security BearerAuth
// @Router   /habits/{id}/metrics [get]
func (h *StatsHandler) Metrics(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	kind, ok := windowParam(c, "window")
	if !ok {
		return
	}

	m, err := h.svc.HabitMetrics(c.Request.Context(), c.Param("id"), userID, domain.CalendarKey(c.Query("today")), kind)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Heatmap godoc
// @Summary  Per-day scheduled/completed cells, at most 366 days
// @Tags     stats
// @Produce  json
// @Param    id   path  string true "Habit ID"
// @Param    from query string true "YYYY-MM-DD"
// @Param    to   query string true "YYYY-MM-DD"
// @Success  200 {array} domain.HeatmapCell
// @Security BearerAuth
// @Router   /habits/{id}/heatmap [get]
func (h *StatsHandler) Heatmap(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required (YYYY-MM-DD)"})
		return
	}

	cells, err := h.svc.Heatmap(c.Request.Context(), c.Param("id"), userID, domain.CalendarKey(from), domain.CalendarKey(to))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

// Consistency godoc
// @Summary  Consistency of the calendar week, month or year containing date
// @Tags     stats
// @Produce  json
// @Param    id     path  string true  "Habit ID"
// @Param    period query string false "week, month or year"
// @Param    date   query string false "YYYY-MM-DD"
// @Success  200 {object} domain.PeriodConsistency
// @Security BearerAuth
// @Router   /habits/{id}/consistency [get]
func (h *StatsHandler) Consistency(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	kind, ok := windowParam(c, "period")
	if !ok {
		return
	}

	pc, err := h.svc.Consistency(c.Request.Context(), c.Param("id"), userID, kind, domain.CalendarKey(c.Query("date")))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pc)
}

// Insights godoc
// @Summary  Metrics of every active habit plus the aggregate productivity
// @Tags     stats
// @Produce  json
// @Param    window query string false "week, month or year"
// @Param    today  query string false "YYYY-MM-DD"
// @Success  200 {object} domain.InsightsReport
// @Security BearerAuth
// @Router   /insights [get]
func (h *StatsHandler) Insights(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	kind, ok := windowParam(c, "window")
	if !ok {
		return
	}

	report, err := h.svc.Insights(c.Request.Context(), userID, domain.CalendarKey(c.Query("today")), kind)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
