package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turkuazz/launcher/internal/domain"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage launch profiles",
	}

	cmd.AddCommand(
		newProfileListCmd(app),
		newProfileAddCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List launch profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.orchestrator.Profiles(cmd.Context())
			if err != nil {
				return err
			}

			for _, profile := range profiles {
				kind := "release"
				if profile.IsCustomInstallation {
					kind = "custom"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					profile.Name, profile.VersionID, kind)
			}

			return nil
		},
	}
}

func newProfileAddCmd(app *app) *cobra.Command {
	var (
		custom   bool
		ramMB    int
		javaPath string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <version>",
		Short: "Add or replace a launch profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := domain.Profile{
				Name:                 args[0],
				VersionID:            args[1],
				IsCustomInstallation: custom,
			}
			if ramMB > 0 || javaPath != "" {
				profile.Overrides = &domain.ProfileOverrides{RAMMB: ramMB, JavaPath: javaPath}
			}

			profiles, err := app.orchestrator.Profiles(cmd.Context())
			if err != nil {
				return err
			}

			replaced := false
			for i := range profiles {
				if profiles[i].Name == profile.Name {
					profiles[i] = profile
					replaced = true
					break
				}
			}
			if !replaced {
				profiles = append(profiles, profile)
			}

			if err := app.orchestrator.SaveProfiles(cmd.Context(), profiles); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s (%s)\n", profile.Name, profile.VersionID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&custom, "custom", false, "Mark the profile as a custom installation")
	cmd.Flags().IntVar(&ramMB, "ram", 0, "RAM override in MB (0 uses settings)")
	cmd.Flags().StringVar(&javaPath, "java", "", "Java executable override")

	return cmd
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a launch profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.orchestrator.Profiles(cmd.Context())
			if err != nil {
				return err
			}

			kept := profiles[:0]
			found := false
			for _, profile := range profiles {
				if profile.Name == args[0] {
					found = true
					continue
				}
				kept = append(kept, profile)
			}
			if !found {
				return fmt.Errorf("%w: %q", domain.ErrProfileNotFound, args[0])
			}

			if err := app.orchestrator.SaveProfiles(cmd.Context(), kept); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s\n", args[0])
			return nil
		},
	}
}
