package metrics

import (
	"math"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

const (
	successWeight     = 0.4
	streakWeight      = 0.3
	consistencyWeight = 0.3

	streakPointsPerDay = 10
	maxScore           = 100
)

// ProductivityScore blends the lifetime success rate, the current streak
// (saturating at 10 days) and the trailing consistency of kind into a
// 0..100 score. A habit with no completed scheduled day inside the window
// scores 0.
func ProductivityScore(s domain.HabitSnapshot, today domain.CalendarKey, kind domain.WindowKind) int {
	start := today.AddDays(-(kind.Days() - 1))
	scheduled, completed := windowCounts(s, start, today)
	if completed == 0 {
		return 0
	}

	successRate := float64(LifetimeConsistency(s, today))
	streakTerm := float64(min(CurrentStreak(s, today)*streakPointsPerDay, maxScore))
	windowTerm := float64(percent(completed, scheduled))

	score := successWeight*successRate + streakWeight*streakTerm + consistencyWeight*windowTerm
	return clamp(int(math.Round(score)), 0, maxScore)
}

// AggregateProductivity averages per-habit scores with equal weight. An
// empty input is reported as no data, an all-zero result as no progress.
func AggregateProductivity(scores []int) domain.ProductivityAggregate {
	if len(scores) == 0 {
		return domain.ProductivityAggregate{State: domain.AggregateNoData}
	}

	total := 0
	for _, sc := range scores {
		total += clamp(sc, 0, maxScore)
	}
	mean := clamp(int(math.Round(float64(total)/float64(len(scores)))), 0, maxScore)

	state := domain.AggregateProgressing
	if mean == 0 {
		state = domain.AggregateNoProgress
	}

	return domain.ProductivityAggregate{
		Score:      mean,
		State:      state,
		HabitCount: len(scores),
	}
}
