package metrics

import (
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

const (
	// anchorLookbackDays bounds how far back a live streak may end.
	anchorLookbackDays = 7
	// maxStreakDays stops the backward walk on malformed data (~10 years).
	maxStreakDays = 3650
)

// CurrentStreak counts consecutive completed scheduled days ending at or
// before today. Unscheduled days are skipped; a scheduled day without a
// completion ends the streak. Today never breaks the streak since the day
// is not over yet.
func CurrentStreak(s domain.HabitSnapshot, today domain.CalendarKey) int {
	if s.Completed.Len() == 0 {
		return 0
	}

	anchor, alive := findAnchor(s, today.Time())
	if !alive {
		return 0
	}

	return countBackward(s, anchor)
}

// BestStreak is the candidate high-water mark. Persisting it is up to the
// caller.
func BestStreak(s domain.HabitSnapshot, today domain.CalendarKey) int {
	return max(s.BestStreakRecorded, CurrentStreak(s, today))
}

func findAnchor(s domain.HabitSnapshot, today time.Time) (time.Time, bool) {
	day := today
	for i := 0; i < anchorLookbackDays; i++ {
		key := domain.KeyOf(day)

		if s.IsCompleted(key) {
			return day, true
		}
		if i > 0 && s.IsScheduled(key) {
			return time.Time{}, false
		}

		day = day.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}

func countBackward(s domain.HabitSnapshot, anchor time.Time) int {
	streak := 0
	day := anchor
	for i := 0; i < maxStreakDays; i++ {
		key := domain.KeyOf(day)

		switch {
		case s.IsCompleted(key):
			streak++
		case s.IsScheduled(key):
			return streak
		}

		day = day.AddDate(0, 0, -1)
	}
	return streak
}
