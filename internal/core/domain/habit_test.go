package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates valid habit with defaults AND Sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Drink Water", domain.Everyday())

		assert.Nil(t, err)
		assert.NotNil(t, h)
		assert.Equal(t, "Drink Water", h.Title)
		assert.Equal(t, "u1", h.UserID)
		assert.NotEmpty(t, h.ID)
		assert.Equal(t, domain.ScheduleEveryday, h.Schedule.Kind)
		assert.Equal(t, domain.DefaultIcon, h.Icon)

		assert.Equal(t, 0, h.CurrentStreak)
		assert.Equal(t, 0, h.BestStreak)
		assert.Equal(t, domain.KeyOf(time.Now().UTC()), h.StartDate)

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.Nil(t, h.DeletedAt, "New habits MUST NOT be marked as deleted")

		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Error: Empty Title", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "  ", domain.Everyday())
		assert.Equal(t, domain.ErrHabitTitleEmpty, err)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit("", "Title", domain.Everyday())
		assert.Equal(t, domain.ErrHabitInvalidUserID, err)
	})

	t.Run("Error: Weekday schedule without days", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "Gym", domain.SpecificWeekdays())
		assert.Equal(t, domain.ErrEmptyWeekdays, err)
	})
}

func TestHabit_Validation(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		color       string
		schedule    domain.Schedule
		wantErr     error
	}{
		{
			name:     "Success: Everyday",
			title:    "Leggere",
			schedule: domain.Everyday(),
		},
		{
			name:     "Success: Weekend only",
			title:    "Weekend",
			schedule: domain.SpecificWeekdays(domain.Saturday, domain.Sunday),
		},
		{
			name:     "Success: Short Hex Color",
			title:    "Color",
			color:    "#FFF",
			schedule: domain.Everyday(),
		},
		{
			name:     "Success: Challenge",
			title:    "30 days of yoga",
			schedule: domain.Challenge(30),
		},
		{
			name:     "Error: Title Too Long",
			title:    strings.Repeat("a", 101),
			schedule: domain.Everyday(),
			wantErr:  domain.ErrHabitTitleTooLong,
		},
		{
			name:        "Error: Description Too Long",
			title:       "Long",
			description: strings.Repeat("d", 501),
			schedule:    domain.Everyday(),
			wantErr:     domain.ErrHabitDescTooLong,
		},
		{
			name:     "Error: Color Invalid Chars",
			title:    "Bad Color",
			color:    "#ZZZZZZ",
			schedule: domain.Everyday(),
			wantErr:  domain.ErrInvalidColor,
		},
		{
			name:     "Error: Color Wrong Length",
			title:    "Bad Color",
			color:    "#1234",
			schedule: domain.Everyday(),
			wantErr:  domain.ErrInvalidColor,
		},
		{
			name:     "Error: Zero-length challenge",
			title:    "Bad Challenge",
			schedule: domain.Challenge(0),
			wantErr:  domain.ErrInvalidChallengeDuration,
		},
		{
			name:     "Error: Unknown schedule kind",
			title:    "Magic",
			schedule: domain.Schedule{Kind: "fortnightly"},
			wantErr:  domain.ErrInvalidScheduleKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			habit, err := domain.NewHabit("u1", "Base Title", domain.Everyday())
			require.NoError(t, err)

			err = habit.Update(tt.title, tt.description, tt.color, "icon", tt.schedule)

			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Equal(t, "Base Title", habit.Title, "failed update must not touch the habit")
				return
			}

			assert.Nil(t, err)
			assert.Equal(t, strings.TrimSpace(tt.title), habit.Title)
			assert.Equal(t, tt.schedule.Kind, habit.Schedule.Kind)
		})
	}
}

func TestHabit_Lifecycle(t *testing.T) {
	createStandardHabit := func() *domain.Habit {
		h, _ := domain.NewHabit("u1", "Original Title", domain.Everyday())
		_ = h.Update("Original Title", "Desc", "#000", "icon", domain.Everyday())
		time.Sleep(1 * time.Millisecond)
		return h
	}

	t.Run("Success: Update changes UpdatedAt BUT NOT Version", func(t *testing.T) {
		habit := createStandardHabit()
		originalTime := habit.UpdatedAt
		originalVersion := habit.Version

		err := habit.Update("New Title", "New Desc", "#FFF", "new_icon", domain.SpecificWeekdays(domain.Monday))

		assert.Nil(t, err)
		assert.Equal(t, "New Title", habit.Title)
		assert.True(t, habit.UpdatedAt.After(originalTime))

		assert.Equal(t, originalVersion, habit.Version, "Domain Update must NOT increment version manually")
	})

	t.Run("Hygiene: Fields of other schedule kinds are dropped", func(t *testing.T) {
		habit := createStandardHabit()

		err := habit.Update("T", "", "", "", domain.Schedule{
			Kind:         domain.ScheduleEveryday,
			Days:         domain.NewWeekdaySet(domain.Monday),
			DurationDays: 10,
		})

		assert.Nil(t, err)
		assert.Equal(t, domain.Everyday(), habit.Schedule)
	})

	t.Run("Archive: Soft Delete Flow", func(t *testing.T) {
		habit := createStandardHabit()

		habit.Archive()

		assert.NotNil(t, habit.ArchivedAt)
		assert.True(t, habit.IsArchived())

		err := habit.Update("Fail", "", "", "", domain.Everyday())
		assert.Equal(t, domain.ErrHabitArchived, err)

		habit.Restore()
		assert.Nil(t, habit.ArchivedAt)

		err = habit.Update("Success", "", "", "", domain.Everyday())
		assert.Nil(t, err)
	})
}

func TestHabit_Challenge(t *testing.T) {
	t.Run("Credit is floored at zero", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Cold showers", domain.Challenge(30))

		h.CreditChallengeDay(1)
		h.CreditChallengeDay(1)
		assert.Equal(t, 2, h.ChallengeCompletedCount)

		h.CreditChallengeDay(-5)
		assert.Equal(t, 0, h.ChallengeCompletedCount)
	})

	t.Run("Credit ignores non-challenge habits", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Read", domain.Everyday())

		h.CreditChallengeDay(1)

		assert.Equal(t, 0, h.ChallengeCompletedCount)
	})

	t.Run("Reset keeps nothing but the schedule", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Cold showers", domain.Challenge(30))
		h.ChallengeCompletedCount = 12

		require.NoError(t, h.ResetChallenge())
		assert.Equal(t, 0, h.ChallengeCompletedCount)
		assert.Equal(t, 30, h.Schedule.DurationDays)
	})

	t.Run("Reset on a plain habit fails", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Read", domain.Everyday())
		assert.Equal(t, domain.ErrNotChallenge, h.ResetChallenge())
	})

	t.Run("Switching away from a challenge clears the counter", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Cold showers", domain.Challenge(30))
		h.ChallengeCompletedCount = 9

		require.NoError(t, h.Update("Cold showers", "", "", "", domain.Everyday()))
		assert.Equal(t, 0, h.ChallengeCompletedCount)
	})
}

func TestHabit_RecordStreak(t *testing.T) {
	h, _ := domain.NewHabit("u1", "Streak Test", domain.Everyday())

	assert.True(t, h.RecordStreak(5, 5))
	assert.Equal(t, 5, h.CurrentStreak)
	assert.Equal(t, 5, h.BestStreak)

	assert.True(t, h.RecordStreak(0, 0), "current streak drop is a change")
	assert.Equal(t, 0, h.CurrentStreak)
	assert.Equal(t, 5, h.BestStreak, "best streak never decreases")

	assert.False(t, h.RecordStreak(0, 3))
}

func TestHabit_ChangePosition(t *testing.T) {
	h, _ := domain.NewHabit("u1", "Sort Me", domain.Everyday())
	originalUpdate := h.UpdatedAt
	time.Sleep(1 * time.Millisecond)

	t.Run("Success: Change Sort Order", func(t *testing.T) {
		err := h.ChangePosition(5)

		assert.Nil(t, err)
		assert.Equal(t, 5, h.SortOrder)
		assert.True(t, h.UpdatedAt.After(originalUpdate))
	})

	t.Run("Error: Cannot Change Position of Archived", func(t *testing.T) {
		h.Archive()
		err := h.ChangePosition(10)
		assert.Equal(t, domain.ErrHabitArchived, err)
	})
}

func TestHabit_Snapshot(t *testing.T) {
	h, _ := domain.NewHabit("u1", "Snap", domain.Challenge(21))
	h.ChallengeCompletedCount = 4
	h.BestStreak = 9
	h.StartDate = "2024-01-01"

	snap := h.Snapshot([]domain.CalendarKey{"2024-01-02", "2024-01-02", "2024-01-03"})

	assert.Equal(t, 2, snap.Completed.Len(), "duplicates collapse")
	assert.Equal(t, 21, snap.ChallengeDurationDays)
	assert.Equal(t, 4, snap.ChallengeCompletedCount)
	assert.Equal(t, 9, snap.BestStreakRecorded)
	assert.Equal(t, domain.CalendarKey("2024-01-01"), snap.HistoryStart())
}
