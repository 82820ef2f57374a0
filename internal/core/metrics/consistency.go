package metrics

import (
	"math"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

// WindowConsistency is the share of scheduled days in [start, end] that were
// completed, rounded to a whole percent. A window without scheduled days, or
// with reversed bounds, yields 0.
func WindowConsistency(s domain.HabitSnapshot, start, end domain.CalendarKey) int {
	scheduled, completed := windowCounts(s, start, end)
	return percent(completed, scheduled)
}

// TrailingConsistency covers the last days dates ending today.
func TrailingConsistency(s domain.HabitSnapshot, today domain.CalendarKey, days int) int {
	if days <= 0 {
		return 0
	}
	return WindowConsistency(s, today.AddDays(-(days - 1)), today)
}

// WeekConsistency covers the Monday..Sunday week containing date.
func WeekConsistency(s domain.HabitSnapshot, date domain.CalendarKey) int {
	start, end := domain.WeekOf(date)
	return WindowConsistency(s, start, end)
}

func MonthConsistency(s domain.HabitSnapshot, date domain.CalendarKey) int {
	start, end := domain.MonthOf(date)
	return WindowConsistency(s, start, end)
}

func YearConsistency(s domain.HabitSnapshot, date domain.CalendarKey) int {
	start, end := domain.YearOf(date)
	return WindowConsistency(s, start, end)
}

// LifetimeConsistency is the success rate over the whole history, from the
// habit's start (or first completion) through today.
func LifetimeConsistency(s domain.HabitSnapshot, today domain.CalendarKey) int {
	start := s.HistoryStart()
	if start.IsZero() {
		return 0
	}
	return WindowConsistency(s, start, today)
}

// CalendarWindow returns the calendar week, month or year containing date.
func CalendarWindow(kind domain.WindowKind, date domain.CalendarKey) (domain.CalendarKey, domain.CalendarKey) {
	switch kind {
	case domain.WindowMonth:
		return domain.MonthOf(date)
	case domain.WindowYear:
		return domain.YearOf(date)
	default:
		return domain.WeekOf(date)
	}
}

func PeriodConsistency(s domain.HabitSnapshot, kind domain.WindowKind, date domain.CalendarKey) domain.PeriodConsistency {
	start, end := CalendarWindow(kind, date)
	return domain.PeriodConsistency{
		Period:      string(kind),
		Start:       start,
		End:         end,
		Consistency: WindowConsistency(s, start, end),
	}
}

func windowCounts(s domain.HabitSnapshot, start, end domain.CalendarKey) (scheduled, completed int) {
	domain.EachDay(start, end, func(key domain.CalendarKey) {
		if !s.IsScheduled(key) {
			return
		}
		scheduled++
		if s.IsCompleted(key) {
			completed++
		}
	})
	return scheduled, completed
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return clamp(int(math.Round(100*float64(part)/float64(whole))), 0, 100)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
