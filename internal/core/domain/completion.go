package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCompletion = errors.New("invalid completion data")
	ErrFutureCompletion  = errors.New("cannot complete a habit on a future date")
)

// Completion marks one calendar date of a habit as done. A habit has at most
// one completion per date.
type Completion struct {
	HabitID   string      `json:"habit_id" db:"habit_id"`
	UserID    string      `json:"user_id" db:"user_id"`
	Date      CalendarKey `json:"date" db:"completion_date"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

func NewCompletion(habitID, userID string, date CalendarKey) *Completion {
	return &Completion{
		HabitID:   habitID,
		UserID:    userID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return errors.Join(ErrInvalidCompletion, errors.New("habit_id is required"))
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.Join(ErrInvalidCompletion, errors.New("user_id is required"))
	}
	if _, err := ParseCalendarKey(string(c.Date)); err != nil {
		return errors.Join(ErrInvalidCompletion, err)
	}
	return nil
}
