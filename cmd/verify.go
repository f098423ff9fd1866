package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd(app *app) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "verify <version>",
		Short: "Verify an installed version, optionally repairing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			versionID := args[0]
			if repair {
				err := runTaskSpinner(cmd.Context(), cmd.OutOrStdout(),
					fmt.Sprintf("Verifying %s...", versionID),
					func(ctx context.Context) error {
						return app.repairer.EnsureInstallable(ctx, settings.GamePath, versionID)
					})
				if err != nil {
					return fmt.Errorf("repair %q: %w", versionID, err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is installed and valid.\n", versionID)
				return nil
			}

			if installErr := app.repairer.Verify(settings.GamePath, versionID); installErr != nil {
				return fmt.Errorf("installation is broken: %w", installErr)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid.\n", versionID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Download missing or corrupted files")

	return cmd
}
