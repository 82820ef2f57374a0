package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/metrics"
)

func TestHeatmap(t *testing.T) {
	mwf := domain.SpecificWeekdays(domain.Monday, domain.Wednesday, domain.Friday)
	snap := snapshot(mwf, "2024-03-04", "2024-03-05")

	cells := metrics.Heatmap(snap, "2024-03-04", "2024-03-06")

	require.Len(t, cells, 3)
	assert.Equal(t, domain.HeatmapCell{Date: "2024-03-04", Scheduled: true, Completed: true}, cells[0])
	assert.Equal(t, domain.HeatmapCell{Date: "2024-03-05", Scheduled: false, Completed: true}, cells[1])
	assert.Equal(t, domain.HeatmapCell{Date: "2024-03-06", Scheduled: true, Completed: false}, cells[2])

	assert.Empty(t, metrics.Heatmap(snap, "2024-03-06", "2024-03-04"))
}

func TestSummarize(t *testing.T) {
	today := domain.CalendarKey("2024-03-10")

	t.Run("Everyday habit", func(t *testing.T) {
		snap := snapshot(domain.Everyday(), "2024-03-08", "2024-03-09", "2024-03-10")
		snap.BestStreakRecorded = 7

		m := metrics.Summarize(snap, today, domain.WindowWeek)

		assert.Equal(t, today, m.Today)
		assert.Equal(t, 3, m.CurrentStreak)
		assert.Equal(t, 7, m.BestStreak)
		assert.Equal(t, 43, m.WeeklyConsistency)
		assert.Equal(t, 10, m.MonthlyConsistency)
		assert.Equal(t, 100, m.SuccessRate)
		assert.True(t, m.ScheduledToday)
		assert.True(t, m.CompletedToday)
		assert.Nil(t, m.Challenge)
	})

	t.Run("Challenge habit carries progress", func(t *testing.T) {
		snap := snapshot(domain.Challenge(30), today)
		snap.ChallengeCompletedCount = 12

		m := metrics.Summarize(snap, today, domain.WindowMonth)

		require.NotNil(t, m.Challenge)
		assert.Equal(t, 40, m.Challenge.Percent)
	})

	t.Run("Identical snapshots give identical results", func(t *testing.T) {
		snap := snapshot(weekdaysOnly, lastDays(today, 20)...)
		snap.Since = "2024-01-01"

		first := metrics.Summarize(snap, today, domain.WindowYear)
		second := metrics.Summarize(snap, today, domain.WindowYear)

		assert.Equal(t, first, second)
	})
}
