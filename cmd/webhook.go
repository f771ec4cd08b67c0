package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tzander/parkfee-cli/internal/adapters/webhook"
)

func newWebhookCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Payment gateway webhook",
	}

	cmd.AddCommand(newWebhookServeCmd(app))

	return cmd
}

func newWebhookServeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the payment-gateway webhook endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfg.Webhook.Secret == "" {
				return errors.New("webhook.secret is not configured")
			}

			ctx := cmd.Context()
			if _, outcome := app.settlement.Login(ctx); !outcome.OK {
				return fmt.Errorf("login failed: %s", outcome.Message)
			}
			defer app.settlement.Logout(ctx)

			handler := webhook.NewHandler([]byte(app.cfg.Webhook.Secret), app.settlement, app.logger)

			app.logger.Info("payment webhook listening", "addr", app.cfg.Webhook.ListenAddr)
			server := &http.Server{Addr: app.cfg.Webhook.ListenAddr, Handler: handler}
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve webhook: %w", err)
			}
			return nil
		},
	}
}
