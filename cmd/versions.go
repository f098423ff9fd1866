package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turkuazz/launcher/internal/ports"
)

func newVersionsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Inspect available game versions",
	}

	cmd.AddCommand(
		newVersionsRemoteCmd(app),
		newVersionsInstalledCmd(app),
	)

	return cmd
}

func newVersionsRemoteCmd(app *app) *cobra.Command {
	var versionType string

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "List versions from the remote manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var manifest []ports.ManifestVersion
			err := runTaskSpinner(cmd.Context(), cmd.OutOrStdout(), "Fetching version manifest...",
				func(ctx context.Context) error {
					var fetchErr error
					manifest, fetchErr = app.versions.Manifest(ctx)
					return fetchErr
				})
			if err != nil {
				return fmt.Errorf("fetch version manifest: %w", err)
			}

			for _, version := range manifest {
				if versionType != "" && version.Type != versionType {
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", version.ID, version.Type)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&versionType, "type", "", "Only show versions of this type (release, snapshot, ...)")

	return cmd
}

func newVersionsInstalledCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "installed",
		Short: "List versions installed under the game directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			versionsDir := filepath.Join(settings.GamePath, "versions")
			entries, err := os.ReadDir(versionsDir)
			if err != nil {
				if os.IsNotExist(err) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No versions installed.")
					return nil
				}
				return fmt.Errorf("read versions directory: %w", err)
			}

			for _, entry := range entries {
				if !entry.IsDir() {
					continue
				}

				// A version counts as installed once its descriptor exists.
				descriptor := filepath.Join(versionsDir, entry.Name(), entry.Name()+".json")
				if _, err := os.Stat(descriptor); err != nil {
					continue
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), entry.Name())
			}

			return nil
		},
	}
}
