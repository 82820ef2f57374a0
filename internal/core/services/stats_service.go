package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/metrics"
)

type StatsService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	now            func() time.Time
}

func NewStatsService(habitRepo domain.HabitRepository, completionRepo domain.CompletionRepository) *StatsService {
	return &StatsService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		now:            time.Now,
	}
}

// WithClock replaces the clock used to derive the server date.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

func (s *StatsService) HabitMetrics(ctx context.Context, habitID, userID string, today domain.CalendarKey, kind domain.WindowKind) (*domain.HabitMetrics, error) {
	today, err := resolveToday(s.now(), today)
	if err != nil {
		return nil, err
	}

	habit, snapshot, err := s.load(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	m := metrics.Summarize(snapshot, today, kindOrDefault(kind))
	// The stored best may be ahead of what the fresh snapshot can prove.
	m.BestStreak = max(m.BestStreak, habit.BestStreak)
	return &m, nil
}

// Consistency reports the share of completed scheduled days in the calendar
// week, month or year containing date.
func (s *StatsService) Consistency(ctx context.Context, habitID, userID string, kind domain.WindowKind, date domain.CalendarKey) (*domain.PeriodConsistency, error) {
	date, err := resolveDate(s.now(), date)
	if err != nil {
		return nil, err
	}

	_, snapshot, err := s.load(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	pc := metrics.PeriodConsistency(snapshot, kindOrDefault(kind), date)
	return &pc, nil
}

func (s *StatsService) Heatmap(ctx context.Context, habitID, userID string, from, to domain.CalendarKey) ([]domain.HeatmapCell, error) {
	if _, err := domain.ParseCalendarKey(string(from)); err != nil {
		return nil, err
	}
	if _, err := domain.ParseCalendarKey(string(to)); err != nil {
		return nil, err
	}

	span := domain.DaysBetween(from, to)
	if span == 0 || span > domain.MaxHeatmapDays {
		return nil, fmt.Errorf("%w: %s..%s spans %d days (max %d)", domain.ErrInvalidDateRange, from, to, span, domain.MaxHeatmapDays)
	}

	_, snapshot, err := s.load(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	return metrics.Heatmap(snapshot, from, to), nil
}

// Insights scores every active habit of the user and aggregates the scores
// into a single productivity figure.
func (s *StatsService) Insights(ctx context.Context, userID string, today domain.CalendarKey, kind domain.WindowKind) (*domain.InsightsReport, error) {
	today, err := resolveToday(s.now(), today)
	if err != nil {
		return nil, err
	}
	kind = kindOrDefault(kind)

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &domain.InsightsReport{
		Today:  today,
		Window: kind,
		Habits: make([]domain.HabitInsight, 0, len(habits)),
	}

	scores := make([]int, 0, len(habits))
	for _, h := range habits {
		if h.IsArchived() {
			continue
		}

		dates, err := s.completionRepo.ListDates(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("stats service: failed to load completions for %s: %w", h.ID, err)
		}

		m := metrics.Summarize(h.Snapshot(dates), today, kind)
		m.BestStreak = max(m.BestStreak, h.BestStreak)

		report.Habits = append(report.Habits, domain.HabitInsight{
			HabitID:  h.ID,
			Title:    h.Title,
			Color:    h.Color,
			Icon:     h.Icon,
			Schedule: h.Schedule,
			Metrics:  m,
		})
		scores = append(scores, m.ProductivityScore)
	}

	report.Productivity = metrics.AggregateProductivity(scores)
	return report, nil
}

func (s *StatsService) load(ctx context.Context, habitID, userID string) (*domain.Habit, domain.HabitSnapshot, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, domain.HabitSnapshot{}, err
	}
	if habit.UserID != userID {
		return nil, domain.HabitSnapshot{}, domain.ErrUnauthorized
	}

	dates, err := s.completionRepo.ListDates(ctx, habitID)
	if err != nil {
		return nil, domain.HabitSnapshot{}, err
	}

	return habit, habit.Snapshot(dates), nil
}

func kindOrDefault(kind domain.WindowKind) domain.WindowKind {
	if kind == "" {
		return domain.WindowWeek
	}
	return kind
}
