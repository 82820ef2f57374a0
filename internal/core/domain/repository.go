package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrUnauthorized  = errors.New("resource belongs to another user")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListActiveIDs returns the ids of every non-archived, non-deleted habit.
	ListActiveIDs(ctx context.Context) ([]string, error)

	// Update modifies the state of an existing habit.
	// Implementations must reject stale versions with ErrHabitConflict.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] Returns only the deltas (changes) occurring after a specific date.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	// UpdateStreaks stores derived streak values without bumping the version.
	UpdateStreaks(ctx context.Context, id string, current, best int) error

	// UpdateChallengeCount stores the challenge counter without bumping the version.
	UpdateChallengeCount(ctx context.Context, id string, count int) error
}

type CompletionRepository interface {
	// Toggle flips the membership of completion.Date in one transaction and
	// reports whether the date is completed afterwards.
	Toggle(ctx context.Context, completion *Completion) (bool, error)

	// Add inserts the completion. Adding an existing date is a no-op and
	// reports false.
	Add(ctx context.Context, completion *Completion) (bool, error)

	// Remove deletes the completion for date. It reports whether a row existed.
	Remove(ctx context.Context, habitID string, date CalendarKey) (bool, error)

	Exists(ctx context.Context, habitID string, date CalendarKey) (bool, error)

	// ListDates returns every completed date of the habit, oldest first.
	ListDates(ctx context.Context, habitID string) ([]CalendarKey, error)

	// ListDatesInRange returns completed dates in [from, to], oldest first.
	ListDatesInRange(ctx context.Context, habitID string, from, to CalendarKey) ([]CalendarKey, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
