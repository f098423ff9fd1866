package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	statusrender "github.com/turkuazz/launcher/internal/adapters/render/status"
)

func newStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored accounts, disk headroom, and running instances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := statusrender.Report{
				Identities: app.orchestrator.Identities(),
				Instances:  app.orchestrator.LiveInstances(),
			}
			if active, ok := app.orchestrator.ActiveIdentity(); ok {
				report.ActiveKey = active.DedupKey()
			}

			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if disk, err := app.orchestrator.CheckDiskSpace(settings.GamePath); err == nil {
				report.Disk = &disk
			}

			rendered, err := statusrender.Render(report, statusrender.RenderOptions{Now: time.Now()})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}
