package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turkuazz/launcher/internal/domain"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage stored accounts",
	}

	cmd.AddCommand(
		newAccountListCmd(app),
		newAccountAddCmd(app),
		newAccountRemoveCmd(app),
		newAccountUseCmd(app),
	)

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			active, hasActive := app.orchestrator.ActiveIdentity()

			for _, identity := range app.orchestrator.Identities() {
				marker := " "
				if hasActive && identity.DedupKey() == active.DedupKey() {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n",
					marker, identity.DisplayName, identity.Kind, identity.UUID())
			}

			return nil
		},
	}
}

func newAccountAddCmd(app *app) *cobra.Command {
	var randomUUID bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an offline account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := domain.NewOfflineIdentity(args[0], randomUUID)
			if err := app.orchestrator.UpsertIdentity(cmd.Context(), identity); err != nil {
				return fmt.Errorf("add account: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added offline account %s (%s)\n",
				identity.DisplayName, identity.UUID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&randomUUID, "random-uuid", false, "Assign a random UUID instead of the nil UUID")

	return cmd
}

func newAccountRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := findIdentity(app, args[0])
			if err != nil {
				return err
			}

			if err := app.orchestrator.RemoveIdentity(cmd.Context(), identity); err != nil {
				return fmt.Errorf("remove account: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed account %s\n", identity.DisplayName)
			return nil
		},
	}
}

func newAccountUseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a stored account the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := findIdentity(app, args[0])
			if err != nil {
				return err
			}

			if err := app.orchestrator.SetActiveIdentity(cmd.Context(), identity); err != nil {
				return fmt.Errorf("activate account: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Active account is now %s\n", identity.DisplayName)
			return nil
		},
	}
}

func findIdentity(app *app, name string) (domain.Identity, error) {
	for _, identity := range app.orchestrator.Identities() {
		if identity.DisplayName == name {
			return identity, nil
		}
	}

	return domain.Identity{}, fmt.Errorf("%w: %q", domain.ErrIdentityNotFound, name)
}
