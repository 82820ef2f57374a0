package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

var badRequestErrors = []error{
	domain.ErrHabitTitleEmpty,
	domain.ErrHabitTitleTooLong,
	domain.ErrHabitDescTooLong,
	domain.ErrInvalidColor,
	domain.ErrHabitInvalidUserID,
	domain.ErrInvalidScheduleKind,
	domain.ErrEmptyWeekdays,
	domain.ErrInvalidChallengeDuration,
	domain.ErrInvalidCalendarKey,
	domain.ErrInvalidWeekday,
	domain.ErrInvalidWindowKind,
	domain.ErrInvalidDateRange,
	domain.ErrInvalidCompletion,
	domain.ErrFutureCompletion,
	domain.ErrTodayOutOfRange,
	domain.ErrNotChallenge,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError maps domain errors to status codes. Anything unknown is logged
// and hidden behind a 500.
func handleError(c *gin.Context, err error) {
	switch {
	case isBadRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})

	case errors.Is(err, domain.ErrHabitNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrHabitConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "version conflict",
			"message": "data has been modified elsewhere, please sync",
		})

	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})

	case errors.Is(err, domain.ErrHabitArchived):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}
