package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDiskSpaceCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diskspace",
		Short: "Check free disk space under the game directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			report, err := app.orchestrator.CheckDiskSpace(settings.GamePath)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.1f GB free, %.1f GB required\n",
				report.AvailableGB, report.RequiredGB)
			if !report.HasSpace {
				return fmt.Errorf("insufficient disk space under %s", settings.GamePath)
			}

			return nil
		},
	}
}
