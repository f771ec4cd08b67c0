package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Tickets  []ticketSchema  `toml:"tickets"`
	Receipts []receiptSchema `toml:"receipts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported tickets schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type ticketSchema struct {
	Barcode            string `toml:"barcode"`
	RegistrationNumber string `toml:"registration_number,omitempty"`
	ValidFrom          string `toml:"valid_from"`
	ValidTo            string `toml:"valid_to"`
	FeeMinor           int64  `toml:"fee_minor"`
	FeePaidMinor       int64  `toml:"fee_paid_minor"`
	Hourly             bool   `toml:"hourly"`
	MultiDay           bool   `toml:"multi_day"`
	FromMidnight       bool   `toml:"from_midnight"`
}

type receiptSchema struct {
	ID            string `toml:"id"`
	Barcode       string `toml:"barcode"`
	ValidFrom     string `toml:"valid_from"`
	ValidTo       string `toml:"valid_to"`
	AmountMinor   int64  `toml:"amount_minor"`
	ReceiptNumber string `toml:"receipt_number,omitempty"`
	PaidAt        string `toml:"paid_at"`
}
