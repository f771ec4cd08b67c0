package domain

import "time"

// BackendTimeLayout is the timestamp format the gate backend uses in
// DATE_FROM/DATE_TO request fields and VALID_FROM/VALID_TO responses.
const BackendTimeLayout = "2006-01-02 15:04:05"

// Barcode identifies a ticket on the gate backend. The backend treats it
// polymorphically: either a literal ticket id or a vehicle plate.
type Barcode string

type TicketRecord struct {
	Barcode            Barcode
	Exists             bool
	RegistrationNumber string
	ValidFrom          time.Time
	ValidTo            time.Time
	FeeMinor           int64
	FeePaidMinor       int64
	Scenario           Scenario
}

// TicketLookup is the outcome of a single PARK_TICKET_GET_INFO exchange.
// NewSessionCandidate is set when the backend knows no ticket for the
// barcode; Record then carries whatever defaults the backend returned.
type TicketLookup struct {
	Exists              bool
	NewSessionCandidate bool
	Record              TicketRecord
}

type LoginInfo struct {
	User string
}

// Receipt is produced by a successful PARK_TICKET_PAY and persisted by
// the ticket store and, when configured, the receipt journal.
type Receipt struct {
	ID            string
	Barcode       Barcode
	ValidFrom     time.Time
	ValidTo       time.Time
	AmountMinor   int64
	ReceiptNumber string
	PaidAt        time.Time
}

func ParseBackendTime(value string) (time.Time, error) {
	return time.ParseInLocation(BackendTimeLayout, value, time.Local)
}

func FormatBackendTime(t time.Time) string {
	return t.Format(BackendTimeLayout)
}
