package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// newTicketsCmd lists the locally recorded ticket history; it never
// contacts the gate backend.
func newTicketsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tickets",
		Short: "List locally recorded lookups and receipts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, receipts, outcome := app.settlement.History(cmd.Context())
			if !outcome.OK {
				return fmt.Errorf("read ticket history: %s", outcome.Message)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 && len(receipts) == 0 {
				fmt.Fprintln(out, "no tickets recorded")
				return nil
			}

			tariff := app.settlement.Tariff()
			for _, record := range records {
				fmt.Fprintf(out, "ticket %s  %s -> %s  owed %s\n",
					record.Barcode,
					domain.FormatBackendTime(record.ValidFrom),
					domain.FormatBackendTime(record.ValidTo),
					tariff.FormatAmount(record.FeeMinor-record.FeePaidMinor))
			}
			for _, receipt := range receipts {
				fmt.Fprintf(out, "receipt %s  %s  paid %s at %s\n",
					receipt.ReceiptNumber,
					receipt.Barcode,
					tariff.FormatAmount(receipt.AmountMinor),
					domain.FormatBackendTime(receipt.PaidAt))
			}
			return nil
		},
	}
}
