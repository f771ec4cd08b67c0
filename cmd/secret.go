package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSecretCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage gate credentials kept outside the config file",
	}

	cmd.AddCommand(newSecretSetCmd(app), newSecretRemoveCmd(app))

	return cmd
}

func newSecretSetCmd(app *app) *cobra.Command {
	var key string
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a credential (e.g. gate/pin, gate/password)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.secretStore.Put(cmd.Context(), key, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Secret key")
	cmd.Flags().StringVar(&value, "value", "", "Secret value")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newSecretRemoveCmd(app *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.secretStore.Delete(cmd.Context(), key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Secret key")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
