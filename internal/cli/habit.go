package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

func newHabitCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits",
	}
	cmd.AddCommand(newHabitAddCmd(s), newHabitListCmd(s))
	return cmd
}

// scheduleFromFlags picks the schedule described by --weekdays and
// --challenge. The two flags are exclusive; neither means every day.
func scheduleFromFlags(weekdays string, challenge int) (domain.Schedule, error) {
	if weekdays != "" && challenge > 0 {
		return domain.Schedule{}, errors.New("--weekdays and --challenge cannot be combined")
	}

	if challenge > 0 {
		return domain.Challenge(challenge), nil
	}

	if weekdays == "" {
		return domain.Everyday(), nil
	}

	days, err := domain.ParseWeekdaySet(strings.Split(weekdays, ","))
	if err != nil {
		return domain.Schedule{}, err
	}
	return domain.Schedule{Kind: domain.ScheduleWeekdays, Days: days}, nil
}

func newHabitAddCmd(s *session) *cobra.Command {
	var weekdays, color, icon string
	var challenge int

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := scheduleFromFlags(weekdays, challenge)
			if err != nil {
				return err
			}

			habit, err := s.habits.Create(cmd.Context(), services.CreateHabitInput{
				UserID:    s.cfg.UserID,
				Title:     args[0],
				Color:     color,
				Icon:      icon,
				Schedule:  schedule,
				StartDate: s.today(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), s.ui.Good(iconDone+" Added ")+s.ui.Title(habit.Title))
			fmt.Fprintln(cmd.OutOrStdout(), s.ui.LabelValue("id", habit.ID))
			fmt.Fprintln(cmd.OutOrStdout(), s.ui.LabelValue("schedule", habit.Schedule))
			return nil
		},
	}

	cmd.Flags().StringVarP(&weekdays, "weekdays", "w", "", "Comma separated weekdays (mon,tue,...)")
	cmd.Flags().IntVarP(&challenge, "challenge", "c", 0, "Make a challenge lasting N days")
	cmd.Flags().StringVar(&color, "color", "", "Display color")
	cmd.Flags().StringVar(&icon, "icon", "", "Display icon")

	return cmd
}

func newHabitListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			habits, err := s.habits.ListByUserID(cmd.Context(), s.cfg.UserID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(habits) == 0 {
				fmt.Fprintln(out, s.ui.Muted("No habits yet. Add one with `kanso habit add <title>`."))
				return nil
			}

			// The stored streak is only refreshed by toggles, so a habit left
			// alone for days would still show its old run.
			today := s.today()
			for _, h := range habits {
				m, err := s.stats.HabitMetrics(cmd.Context(), h.ID, s.cfg.UserID, today, domain.WindowWeek)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s.ui.HabitLine(h, m.CurrentStreak))
			}
			return nil
		},
	}
}
