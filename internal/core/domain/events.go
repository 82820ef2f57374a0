package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventCompletionToggled = "habit.completion.toggled"
	EventStreakChanged     = "habit.streak.changed"
)

// HabitEvent is published after a completion toggle or a streak
// recalculation. The event type doubles as the routing key.
type HabitEvent struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	HabitID       string      `json:"habit_id"`
	UserID        string      `json:"user_id"`
	Date          CalendarKey `json:"date,omitempty"`
	Completed     bool        `json:"completed"`
	CurrentStreak int         `json:"current_streak"`
	BestStreak    int         `json:"best_streak"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

func NewHabitEvent(eventType string, h *Habit) HabitEvent {
	return HabitEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		HabitID:       h.ID,
		UserID:        h.UserID,
		CurrentStreak: h.CurrentStreak,
		BestStreak:    h.BestStreak,
		OccurredAt:    time.Now().UTC(),
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event HabitEvent) error
}
