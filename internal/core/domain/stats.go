package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidWindowKind = errors.New("invalid window (must be week, month, or year)")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrTodayOutOfRange   = errors.New("today is more than one day away from the server date")
)

// MaxHeatmapDays bounds a single heatmap request.
const MaxHeatmapDays = 366

// WindowKind selects the trailing consistency window used by the
// productivity score.
type WindowKind string

const (
	WindowWeek  WindowKind = "week"
	WindowMonth WindowKind = "month"
	WindowYear  WindowKind = "year"
)

// Days is the length of the trailing window ending today.
func (w WindowKind) Days() int {
	switch w {
	case WindowMonth:
		return 30
	case WindowYear:
		return 365
	default:
		return 7
	}
}

func ParseWindowKind(input string) (WindowKind, error) {
	w := WindowKind(strings.ToLower(strings.TrimSpace(input)))
	switch w {
	case WindowWeek, WindowMonth, WindowYear:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWindowKind, input)
	}
}

type ChallengeProgress struct {
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
	Percent   int `json:"percent"`
}

// HabitMetrics is every derived value the presentation layer shows for one
// habit. Percentages are in [0,100], streaks are >= 0.
type HabitMetrics struct {
	Today              CalendarKey        `json:"today"`
	CurrentStreak      int                `json:"current_streak"`
	BestStreak         int                `json:"best_streak"`
	WeeklyConsistency  int                `json:"weekly_consistency"`
	MonthlyConsistency int                `json:"monthly_consistency"`
	SuccessRate        int                `json:"success_rate"`
	ProductivityScore  int                `json:"productivity_score"`
	ScheduledToday     bool               `json:"scheduled_today"`
	CompletedToday     bool               `json:"completed_today"`
	Challenge          *ChallengeProgress `json:"challenge,omitempty"`
}

type HeatmapCell struct {
	Date      CalendarKey `json:"date"`
	Scheduled bool        `json:"scheduled"`
	Completed bool        `json:"completed"`
}

type AggregateState string

const (
	// AggregateNoData means there were no habits to score.
	AggregateNoData AggregateState = "no_data"
	// AggregateNoProgress means habits exist but every score was zero.
	AggregateNoProgress  AggregateState = "no_progress"
	AggregateProgressing AggregateState = "progressing"
)

type ProductivityAggregate struct {
	Score      int            `json:"score"`
	State      AggregateState `json:"state"`
	HabitCount int            `json:"habit_count"`
}

type PeriodConsistency struct {
	Period      string      `json:"period"`
	Start       CalendarKey `json:"start"`
	End         CalendarKey `json:"end"`
	Consistency int         `json:"consistency"`
}

type HabitInsight struct {
	HabitID  string       `json:"habit_id"`
	Title    string       `json:"title"`
	Color    string       `json:"color"`
	Icon     string       `json:"icon"`
	Schedule Schedule     `json:"schedule"`
	Metrics  HabitMetrics `json:"metrics"`
}

type InsightsReport struct {
	Today        CalendarKey           `json:"today"`
	Window       WindowKind            `json:"window"`
	Habits       []HabitInsight        `json:"habits"`
	Productivity ProductivityAggregate `json:"productivity"`
}
