package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(s *session) *cobra.Command {
	var userID string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(s.configPath); err == nil {
				return fmt.Errorf("%s already exists", s.configPath)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := *s.cfg
			if userID != "" {
				cfg.UserID = userID
			}
			if noColor {
				off := false
				cfg.Color = &off
			}

			if err := SaveFileConfig(s.configPath, &cfg); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), s.ui.Good(iconDone+" Wrote "+s.configPath))
			fmt.Fprintln(cmd.OutOrStdout(), s.ui.LabelValue("database", cfg.DBPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner id for habits created by this CLI")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable styled output")
	return cmd
}
