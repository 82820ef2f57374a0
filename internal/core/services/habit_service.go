package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

// StreakQueue schedules an asynchronous streak recomputation for a habit.
type StreakQueue interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo    domain.HabitRepository
	streaks StreakQueue
}

func NewHabitService(repo domain.HabitRepository, streaks StreakQueue) *HabitService {
	return &HabitService{
		repo:    repo,
		streaks: streaks,
	}
}

type CreateHabitInput struct {
	// ID is set by offline clients that mint their own identifiers.
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Schedule    domain.Schedule
	StartDate   domain.CalendarKey
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Schedule    *domain.Schedule
	SortOrder   *int
	Version     int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if input.Schedule.Kind == "" {
		input.Schedule = domain.Everyday()
	}

	if input.ID != "" {
		existing, err := s.repo.GetByID(ctx, input.ID)
		switch {
		case err == nil && existing.UserID == input.UserID:
			return existing, nil
		case err == nil:
			return nil, domain.ErrHabitConflict
		case !errors.Is(err, domain.ErrHabitNotFound):
			return nil, err
		}
	}

	habit, err := domain.NewHabit(input.UserID, input.Title, input.Schedule)
	if err != nil {
		return nil, err
	}

	err = habit.Update(
		input.Title,
		input.Description,
		input.Color,
		input.Icon,
		input.Schedule,
	)
	if err != nil {
		return nil, err
	}

	if input.ID != "" {
		habit.ID = input.ID
	}

	if !input.StartDate.IsZero() {
		if _, err := domain.ParseCalendarKey(string(input.StartDate)); err != nil {
			return nil, err
		}
		habit.StartDate = input.StartDate
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.Habit, error) {
	return s.owned(ctx, id, userID)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.owned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	schedule := habit.Schedule
	if input.Schedule != nil {
		schedule = *input.Schedule
	}
	scheduleChanged := schedule.Normalize() != habit.Schedule

	err = habit.Update(
		mergeString(input.Title, habit.Title),
		mergeString(input.Description, habit.Description),
		mergeString(input.Color, habit.Color),
		mergeString(input.Icon, habit.Icon),
		schedule,
	)
	if err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		if err := habit.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	if scheduleChanged {
		s.recompute(habit.ID)
	}

	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if habit.IsArchived() {
		return habit, nil
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !habit.IsArchived() {
		return habit, nil
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	// Days missed while archived may have broken the stored streak.
	s.recompute(habit.ID)
	return habit, nil
}

// ResetChallenge zeroes the challenge counter and keeps completion history.
func (s *HabitService) ResetChallenge(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := habit.ResetChallenge(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateChallengeCount(ctx, habit.ID, habit.ChallengeCompletedCount); err != nil {
		return nil, err
	}
	return habit, nil
}

// owned loads a habit and hides habits of other users behind ErrHabitNotFound.
func (s *HabitService) owned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) recompute(habitID string) {
	if s.streaks != nil {
		s.streaks.Enqueue(habitID)
	}
}
