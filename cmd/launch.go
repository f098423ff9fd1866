package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/turkuazz/launcher/internal/application"
	"github.com/turkuazz/launcher/internal/domain"
)

const launchEventBuffer = 256

func newLaunchCmd(app *app) *cobra.Command {
	var (
		instanceID string
		follow     bool
	)

	cmd := &cobra.Command{
		Use:   "launch <profile>",
		Short: "Launch a game instance for the named profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := findProfile(cmd, app, args[0])
			if err != nil {
				return err
			}

			events := make(chan domain.InstanceEvent, launchEventBuffer)
			sink := application.InstanceSinkFunc(func(event domain.InstanceEvent) {
				events <- event
			})

			var result application.LaunchResult
			err = runTaskSpinner(cmd.Context(), cmd.OutOrStdout(),
				fmt.Sprintf("Preparing %s...", profile.Name),
				func(ctx context.Context) error {
					result = app.orchestrator.Launch(ctx, profile, instanceID, sink)
					if !result.Success {
						return errors.New(result.Error)
					}
					return nil
				})
			if err != nil {
				return fmt.Errorf("launch %q: %w", profile.Name, err)
			}

			return streamInstance(cmd, app, events, follow)
		},
	}

	cmd.Flags().StringVar(&instanceID, "instance-id", "", "Instance ID (empty generates one)")
	cmd.Flags().BoolVar(&follow, "follow", false, "Stream game stdout to the terminal")

	return cmd
}

// findProfile resolves name against the stored profiles, suggesting close
// matches on a miss.
func findProfile(cmd *cobra.Command, app *app, name string) (domain.Profile, error) {
	profiles, err := app.orchestrator.Profiles(cmd.Context())
	if err != nil {
		return domain.Profile{}, err
	}

	names := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		if profile.Name == name {
			return profile, nil
		}
		names = append(names, profile.Name)
	}

	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		return domain.Profile{}, fmt.Errorf("%w: %q (did you mean %q?)",
			domain.ErrProfileNotFound, name, matches[0].Str)
	}

	return domain.Profile{}, fmt.Errorf("%w: %q", domain.ErrProfileNotFound, name)
}

// streamInstance relays instance events until the game exits, the session
// quits, or the command context is cancelled.
func streamInstance(cmd *cobra.Command, app *app, events <-chan domain.InstanceEvent, follow bool) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-app.quit:
			return nil
		case event := <-events:
			switch event.Kind {
			case domain.EventTokenRefreshed:
				_, _ = fmt.Fprintln(out, "Session token refreshed.")
			case domain.EventReady:
				_, _ = fmt.Fprintln(out, "Game is ready.")
			case domain.EventStdoutLine:
				if follow {
					_, _ = fmt.Fprintln(out, event.Line)
				}
			case domain.EventStderrLine:
				_, _ = fmt.Fprintln(errOut, event.Line)
			case domain.EventExit:
				if event.CrashReportPath != "" {
					_, _ = fmt.Fprintf(errOut, "Crash report: %s\n", event.CrashReportPath)
				}
				if event.ExitCode != 0 {
					return fmt.Errorf("game exited with code %d", event.ExitCode)
				}
				_, _ = fmt.Fprintln(out, "Game exited.")
				return nil
			}
		}
	}
}
