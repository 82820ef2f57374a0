package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

func exactlyOneID(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("habit id is required")
	}
	return nil
}

func newDoneCmd(s *session) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "done <habit-id>",
		Short: "Toggle the completion of a habit for today or --date",
		Args:  exactlyOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := s.completions.Toggle(cmd.Context(), services.ToggleInput{
				HabitID: args[0],
				UserID:  s.cfg.UserID,
				Date:    domain.CalendarKey(date),
				Today:   s.today(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Completed {
				fmt.Fprintln(out, s.ui.Good(iconDone+" Done for "+result.Date.String()))
			} else {
				fmt.Fprintln(out, s.ui.Warn(iconTodo+" Unmarked "+result.Date.String()))
			}
			fmt.Fprintln(out, s.ui.LabelValue("streak", s.ui.Streak(result.CurrentStreak)))
			fmt.Fprintln(out, s.ui.LabelValue("best", result.BestStreak))
			if result.Challenge != nil {
				fmt.Fprintln(out, s.ui.LabelValue("challenge",
					fmt.Sprintf("%d done, %d left (%d%%)", result.Challenge.Completed, result.Challenge.Remaining, result.Challenge.Percent)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Date to toggle (YYYY-MM-DD), defaults to today")
	return cmd
}

func newStatsCmd(s *session) *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "stats <habit-id>",
		Short: "Show streaks and consistency of a habit",
		Args:  exactlyOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseWindowKind(window)
			if err != nil {
				return err
			}

			habit, err := s.habits.Get(cmd.Context(), args[0], s.cfg.UserID)
			if err != nil {
				return err
			}

			m, err := s.stats.HabitMetrics(cmd.Context(), habit.ID, s.cfg.UserID, s.today(), kind)
			if err != nil {
				return err
			}

			lines := []string{
				s.ui.Title(habit.Title) + "  " + s.ui.Muted(habit.Schedule.String()),
				s.ui.LabelValue("current streak", s.ui.Streak(m.CurrentStreak)),
				s.ui.LabelValue("best streak", m.BestStreak),
				s.ui.LabelValue("last 7 days", s.ui.Percent(m.WeeklyConsistency)),
				s.ui.LabelValue("last 30 days", s.ui.Percent(m.MonthlyConsistency)),
				s.ui.LabelValue("success rate", s.ui.Percent(m.SuccessRate)),
				s.ui.LabelValue("productivity ("+string(kind)+")", s.ui.Percent(m.ProductivityScore)),
			}
			if m.ScheduledToday {
				status := s.ui.Warn("pending")
				if m.CompletedToday {
					status = s.ui.Good("done")
				}
				lines = append(lines, s.ui.LabelValue("today", status))
			}
			if m.Challenge != nil {
				lines = append(lines, s.ui.LabelValue("challenge",
					fmt.Sprintf("%d/%d (%d%%)", m.Challenge.Completed, m.Challenge.Completed+m.Challenge.Remaining, m.Challenge.Percent)))
			}

			fmt.Fprintln(cmd.OutOrStdout(), s.ui.Panel(lines...))
			return nil
		},
	}

	cmd.Flags().StringVar(&window, "window", string(domain.WindowWeek), "Productivity window (week|month|year)")
	return cmd
}

func newInsightsCmd(s *session) *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Score every active habit and the overall productivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := domain.ParseWindowKind(window)
			if err != nil {
				return err
			}

			report, err := s.stats.Insights(cmd.Context(), s.cfg.UserID, s.today(), kind)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.ui.Title(fmt.Sprintf("Insights for the %s ending %s", report.Window, report.Today)))

			for _, hi := range report.Habits {
				fmt.Fprintf(out, "  %s  %s  %s\n",
					s.ui.Percent(hi.Metrics.ProductivityScore),
					hi.Title,
					s.ui.Streak(hi.Metrics.CurrentStreak))
			}

			agg := report.Productivity
			switch agg.State {
			case domain.AggregateNoData:
				fmt.Fprintln(out, s.ui.Muted("No active habits to score."))
			default:
				fmt.Fprintln(out, s.ui.LabelValue("overall", s.ui.Percent(agg.Score)+" "+s.ui.Muted(strings.ReplaceAll(string(agg.State), "_", " "))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", string(domain.WindowWeek), "Scoring window (week|month|year)")
	return cmd
}
