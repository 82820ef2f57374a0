package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

type CompletionHandler struct {
	svc *services.CompletionService
}

func NewCompletionHandler(svc *services.CompletionService) *CompletionHandler {
	return &CompletionHandler{svc: svc}
}

type toggleRequest struct {
	Date  domain.CalendarKey `json:"date"`
	Today domain.CalendarKey `json:"today"`
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	completions := router.Group("/habits/:id/completions")
	{
		completions.GET("", h.List)
		completions.POST("", h.Toggle)
	}
}

// Toggle godoc
// @Summary  Flip the completion of a date (defaults to today)
// @Tags     completions
// @Accept   json
// @Produce  json
// @Param    id   path string        true  "Habit ID"
// @Param    body body toggleRequest false "Date and the caller's local today"
// @Success  200 {object} services.ToggleResult
// @Failure  400 {object} map[string]string
// @Failure  403 {object} map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/completions [post]
func (h *CompletionHandler) Toggle(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req toggleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.svc.Toggle(c.Request.Context(), services.ToggleInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		Date:    req.Date,
		Today:   req.Today,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// List godoc
// @Summary  Completed dates of a habit, optionally within [from, to]
// @Tags     completions
// @Produce  json
// @Param    id   path  string true  "Habit ID"
// @Param    from query string false "YYYY-MM-DD"
// @Param    to   query string false "YYYY-MM-DD"
// @Security BearerAuth
// @Router   /habits/{id}/completions [get]
func (h *CompletionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	dates, err := h.svc.ListDates(c.Request.Context(), habitID, userID,
		domain.CalendarKey(c.Query("from")), domain.CalendarKey(c.Query("to")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id": habitID,
		"dates":    dates,
	})
}
