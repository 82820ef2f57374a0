package metrics

import "github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"

// ChallengeProgress reports credited, remaining and percent-complete days of
// a fixed-length challenge. Habits without a duration get zeros.
func ChallengeProgress(s domain.HabitSnapshot) domain.ChallengeProgress {
	completed := max(0, s.ChallengeCompletedCount)
	if s.ChallengeDurationDays <= 0 {
		return domain.ChallengeProgress{Completed: completed}
	}

	return domain.ChallengeProgress{
		Completed: completed,
		Remaining: max(0, s.ChallengeDurationDays-completed),
		Percent:   percent(completed, s.ChallengeDurationDays),
	}
}
