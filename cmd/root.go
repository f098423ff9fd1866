package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "turkuazz",
		Short:         "Turkuazz launcher: manage accounts, profiles, and game sessions",
		Long:          "turkuazz verifies game installations, keeps account tokens fresh, and supervises running game instances from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(app),
		newLaunchCmd(app),
		newLoginCmd(app),
		newAccountCmd(app),
		newProfileCmd(app),
		newVersionsCmd(app),
		newVerifyCmd(app),
		newDiskSpaceCmd(app),
	)

	return rootCmd
}
