package metrics

import "github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"

// Summarize computes every per-habit metric in one pass so callers render
// them without re-deriving anything. The productivity score uses kind.
func Summarize(s domain.HabitSnapshot, today domain.CalendarKey, kind domain.WindowKind) domain.HabitMetrics {
	m := domain.HabitMetrics{
		Today:              today,
		CurrentStreak:      CurrentStreak(s, today),
		BestStreak:         BestStreak(s, today),
		WeeklyConsistency:  TrailingConsistency(s, today, domain.WindowWeek.Days()),
		MonthlyConsistency: TrailingConsistency(s, today, domain.WindowMonth.Days()),
		SuccessRate:        LifetimeConsistency(s, today),
		ProductivityScore:  ProductivityScore(s, today, kind),
		ScheduledToday:     s.IsScheduled(today),
		CompletedToday:     s.IsCompleted(today),
	}

	if s.Schedule.IsChallenge() {
		progress := ChallengeProgress(s)
		m.Challenge = &progress
	}

	return m
}
