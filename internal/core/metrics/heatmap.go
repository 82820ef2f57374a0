package metrics

import "github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"

// Heatmap returns one cell per date in [start, end].
func Heatmap(s domain.HabitSnapshot, start, end domain.CalendarKey) []domain.HeatmapCell {
	cells := make([]domain.HeatmapCell, 0, domain.DaysBetween(start, end))
	domain.EachDay(start, end, func(key domain.CalendarKey) {
		cells = append(cells, domain.HeatmapCell{
			Date:      key,
			Scheduled: s.IsScheduled(key),
			Completed: s.IsCompleted(key),
		})
	})
	return cells
}
