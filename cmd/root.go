package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "parkfee",
		Short:         "parkfee: settle parking fees against the gate backend",
		Long:          "parkfee talks to the parking gate backend over its line protocol to look up tickets, quote fees for one of the eight billing scenarios, and settle payments.",
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

	rootCmd.AddCommand(
		newVersionCmd(),
		newCheckCmd(app),
		newTicketCmd(app),
		newTicketsCmd(app),
		newSecretCmd(app),
		newWebhookCmd(app),
	)

	return rootCmd
}
