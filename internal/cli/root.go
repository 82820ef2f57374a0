package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/services"
)

const Version = "0.1.0"

// session is the state shared by every command of one invocation.
type session struct {
	configPath string
	dbPath     string
	clock      func() time.Time

	cfg   *FileConfig
	store *repository.SQLiteStore
	ui    *theme

	habits      *services.HabitService
	completions *services.CompletionService
	stats       *services.StatsService
}

func (s *session) open(out io.Writer) error {
	cfg, err := LoadFileConfig(s.configPath)
	if err != nil {
		return fmt.Errorf("config %s: %w", s.configPath, err)
	}
	if s.dbPath != "" {
		cfg.DBPath = s.dbPath
	}
	s.cfg = cfg

	store, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	s.store = store

	habitRepo := store.Habits()
	completionRepo := store.Completions()

	// Toggles refresh streaks inline, so the CLI needs no background worker.
	s.habits = services.NewHabitService(habitRepo, nil)
	s.completions = services.NewCompletionService(completionRepo, habitRepo, nil)
	s.stats = services.NewStatsService(habitRepo, completionRepo)
	s.ui = newTheme(out, cfg.ColorEnabled())
	return nil
}

// today is the user's local date. The services would otherwise fall back to
// the UTC date, which is a different day for part of every day.
func (s *session) today() domain.CalendarKey {
	return domain.KeyOf(s.clock())
}

func (s *session) close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// NewRootCmd builds the kanso command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(clock func() time.Time) *cobra.Command {
	s := &session{clock: clock}

	root := &cobra.Command{
		Use:           "kanso",
		Short:         "Kanso: offline habit tracking with streaks",
		Long:          "Kanso tracks habits on a local SQLite file and reports streaks, consistency and productivity.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.open(cmd.OutOrStdout())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return s.close()
		},
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	root.PersistentFlags().StringVar(&s.configPath, "config", DefaultConfigPath(), "Path to the TOML config file")
	root.PersistentFlags().StringVar(&s.dbPath, "db", "", "SQLite database path (overrides db_path)")

	root.AddCommand(
		newInitCmd(s),
		newHabitCmd(s),
		newDoneCmd(s),
		newStatsCmd(s),
		newInsightsCmd(s),
	)

	return root
}

func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, iconError+" "+err.Error())
		os.Exit(1)
	}
}
