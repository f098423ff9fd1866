package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turkuazz/launcher/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in through the account provider's browser flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Ctrl-C cancels the pending login instead of killing the
			// process mid-flow.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			identity, err := app.orchestrator.InteractiveLogin(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrLoginCancelled) || errors.Is(err, context.Canceled) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Login cancelled.")
					return nil
				}
				return fmt.Errorf("login: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", identity.DisplayName)
			return nil
		},
	}
}
