package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/metrics"
)

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
	publisher domain.EventPublisher
	now       func() time.Time
}

func NewCompletionService(repo domain.CompletionRepository, habitRepo domain.HabitRepository, publisher domain.EventPublisher) *CompletionService {
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to derive the server date.
func (s *CompletionService) WithClock(now func() time.Time) *CompletionService {
	s.now = now
	return s
}

type ToggleInput struct {
	HabitID string
	UserID  string
	// Date defaults to Today when empty.
	Date domain.CalendarKey
	// Today is the caller's local date. It defaults to the server's UTC date.
	Today domain.CalendarKey
}

type ToggleResult struct {
	HabitID       string                    `json:"habit_id"`
	Date          domain.CalendarKey        `json:"date"`
	Completed     bool                      `json:"completed"`
	CurrentStreak int                       `json:"current_streak"`
	BestStreak    int                       `json:"best_streak"`
	Challenge     *domain.ChallengeProgress `json:"challenge,omitempty"`
}

// Toggle flips the completion of one date and refreshes the derived state
// of the habit from a fresh snapshot.
func (s *CompletionService) Toggle(ctx context.Context, input ToggleInput) (*ToggleResult, error) {
	today, err := resolveToday(s.now(), input.Today)
	if err != nil {
		return nil, err
	}

	date := today
	if !input.Date.IsZero() {
		if date, err = domain.ParseCalendarKey(string(input.Date)); err != nil {
			return nil, err
		}
	}
	if date.After(today) {
		return nil, domain.ErrFutureCompletion
	}

	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}
	if habit.IsArchived() {
		return nil, domain.ErrHabitArchived
	}

	completion := domain.NewCompletion(habit.ID, input.UserID, date)
	if err := completion.Validate(); err != nil {
		return nil, err
	}

	completed, err := s.repo.Toggle(ctx, completion)
	if err != nil {
		return nil, err
	}

	if habit.Schedule.IsChallenge() {
		delta := -1
		if completed {
			delta = 1
		}
		habit.CreditChallengeDay(delta)
		if err := s.habitRepo.UpdateChallengeCount(ctx, habit.ID, habit.ChallengeCompletedCount); err != nil {
			s.revertToggle(ctx, completion)
			return nil, err
		}
	}

	dates, err := s.repo.ListDates(ctx, habit.ID)
	if err != nil {
		return nil, err
	}
	snapshot := habit.Snapshot(dates)

	if habit.RecordStreak(metrics.CurrentStreak(snapshot, today), metrics.BestStreak(snapshot, today)) {
		if err := s.habitRepo.UpdateStreaks(ctx, habit.ID, habit.CurrentStreak, habit.BestStreak); err != nil {
			return nil, err
		}
	}

	result := &ToggleResult{
		HabitID:       habit.ID,
		Date:          date,
		Completed:     completed,
		CurrentStreak: habit.CurrentStreak,
		BestStreak:    habit.BestStreak,
	}
	if habit.Schedule.IsChallenge() {
		progress := metrics.ChallengeProgress(snapshot)
		result.Challenge = &progress
	}

	s.publish(ctx, habit, date, completed)

	return result, nil
}

// ListDates returns the completed dates of a habit. Empty bounds return the
// whole history.
func (s *CompletionService) ListDates(ctx context.Context, habitID, userID string, from, to domain.CalendarKey) ([]domain.CalendarKey, error) {
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return nil, err
	}

	if from.IsZero() && to.IsZero() {
		return s.repo.ListDates(ctx, habitID)
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}

	return s.repo.ListDatesInRange(ctx, habitID, from, to)
}

func (s *CompletionService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

// revertToggle undoes a toggle whose follow-up write failed so the
// completion set and the challenge count stay in step.
func (s *CompletionService) revertToggle(ctx context.Context, completion *domain.Completion) {
	if _, err := s.repo.Toggle(context.WithoutCancel(ctx), completion); err != nil {
		log.Printf("[ERROR] could not revert toggle of habit %s on %s: %v", completion.HabitID, completion.Date, err)
	}
}

func (s *CompletionService) publish(ctx context.Context, habit *domain.Habit, date domain.CalendarKey, completed bool) {
	if s.publisher == nil {
		return
	}

	event := domain.NewHabitEvent(domain.EventCompletionToggled, habit)
	event.Date = date
	event.Completed = completed

	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[EVENTS] failed to publish %s for habit %s: %v", event.Type, habit.ID, err)
	}
}
