package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzander/parkfee-cli/internal/domain"
)

func newTicketCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Look up, quote and pay parking tickets",
	}

	cmd.AddCommand(newTicketInfoCmd(app), newTicketQuoteCmd(app), newTicketPayCmd(app))

	return cmd
}

func newTicketInfoCmd(app *app) *cobra.Command {
	var barcode string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Probe a ticket's billing configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, outcome := app.settlement.Login(ctx); !outcome.OK {
				return fmt.Errorf("login failed: %s", outcome.Message)
			}
			defer app.settlement.Logout(ctx)

			now := time.Now()
			lookup, outcome := app.settlement.QueryTicket(ctx, domain.Barcode(barcode), now, now)
			if !outcome.OK {
				return fmt.Errorf("ticket lookup failed: %s", outcome.Message)
			}

			if lookup.NewSessionCandidate {
				fmt.Fprintf(cmd.OutOrStdout(), "no ticket for %s: a new parking session can be started\n", barcode)
				return nil
			}

			record := lookup.Record
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ticket %s\n", record.Barcode)
			if record.RegistrationNumber != "" {
				fmt.Fprintf(out, "  plate:    %s\n", record.RegistrationNumber)
			}
			fmt.Fprintf(out, "  entry:    %s\n", domain.FormatBackendTime(record.ValidFrom))
			if !record.ValidTo.IsZero() {
				fmt.Fprintf(out, "  valid to: %s\n", domain.FormatBackendTime(record.ValidTo))
			}
			fmt.Fprintf(out, "  billing:  %s\n", describeScenario(record.Scenario))
			return nil
		},
	}

	cmd.Flags().StringVar(&barcode, "barcode", "", "Ticket id or vehicle plate")
	_ = cmd.MarkFlagRequired("barcode")

	return cmd
}

func newTicketQuoteCmd(app *app) *cobra.Command {
	var barcode string
	var days int
	var minutes int

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the fee for a ticket's exit window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, outcome := app.settlement.Login(ctx); !outcome.OK {
				return fmt.Errorf("login failed: %s", outcome.Message)
			}
			defer app.settlement.Logout(ctx)

			quote, outcome := app.settlement.QuoteTicket(ctx, domain.Barcode(barcode), domain.ExitSelection{
				Days:    days,
				Minutes: minutes,
			})
			if !outcome.OK {
				return fmt.Errorf("quote failed: %s", outcome.Message)
			}

			out := cmd.OutOrStdout()
			if quote.NewSession {
				fmt.Fprintf(out, "no ticket for %s: a new parking session can be started\n", barcode)
				fmt.Fprintf(out, "billing: %s\n", describeScenario(quote.Scenario))
				return nil
			}

			tariff := app.settlement.Tariff()
			fmt.Fprintf(out, "ticket %s\n", quote.Barcode)
			fmt.Fprintf(out, "  entry:    %s\n", domain.FormatBackendTime(quote.Record.ValidFrom))
			fmt.Fprintf(out, "  exit:     %s\n", domain.FormatBackendTime(quote.Record.ValidTo))
			fmt.Fprintf(out, "  billing:  %s\n", describeScenario(quote.Scenario))
			if quote.FreePeriod {
				fmt.Fprintln(out, "  fee:      0 (within free period)")
			} else {
				fmt.Fprintf(out, "  fee:      %s\n", tariff.FormatAmount(quote.FeeMinor))
			}
			if quote.OverrideApplied {
				fmt.Fprintln(out, "  note:     test-mode scenario override active")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&barcode, "barcode", "", "Ticket id or vehicle plate")
	cmd.Flags().IntVar(&days, "days", 0, "Days past the entry day (multi-day scenarios)")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Parking duration in minutes (hourly scenarios)")
	_ = cmd.MarkFlagRequired("barcode")

	return cmd
}

func newTicketPayCmd(app *app) *cobra.Command {
	var barcode string
	var from string
	var to string
	var amountMinor int64

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Settle the fee for a validity window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			fromTime, err := domain.ParseBackendTime(from)
			if err != nil {
				return fmt.Errorf("invalid --from (want %s): %w", domain.BackendTimeLayout, err)
			}
			toTime, err := domain.ParseBackendTime(to)
			if err != nil {
				return fmt.Errorf("invalid --to (want %s): %w", domain.BackendTimeLayout, err)
			}

			if _, outcome := app.settlement.Login(ctx); !outcome.OK {
				return fmt.Errorf("login failed: %s", outcome.Message)
			}
			defer app.settlement.Logout(ctx)

			receipt, outcome := app.settlement.PayTicket(ctx, domain.Barcode(barcode), fromTime, toTime, amountMinor)
			if !outcome.OK {
				return fmt.Errorf("payment failed: %s", outcome.Message)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "paid %s for %s (receipt %s)\n",
				app.settlement.Tariff().FormatAmount(receipt.AmountMinor), barcode, receipt.ReceiptNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&barcode, "barcode", "", "Ticket id or vehicle plate")
	cmd.Flags().StringVar(&from, "from", "", "Window start (YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().StringVar(&to, "to", "", "Window end (YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().Int64Var(&amountMinor, "amount", 0, "Fee in minor currency units")
	_ = cmd.MarkFlagRequired("barcode")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func describeScenario(s domain.Scenario) string {
	mode := "daily"
	if s.Hourly {
		mode = "hourly"
	}
	span := "single-day"
	if s.MultiDay {
		span = "multi-day"
	}
	anchor := "from entry"
	if s.FromMidnight {
		anchor = "until midnight"
	}
	return fmt.Sprintf("%s, %s, %s", mode, span, anchor)
}
