package application

import (
	"context"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// Quote is the outcome of the probe/refetch flow for one ticket.
type Quote struct {
	Barcode domain.Barcode

	// NewSession means the backend knows no ticket for the barcode; the
	// caller may start a fresh parking session.
	NewSession bool

	Scenario domain.Scenario

	// Record is the ticket as last seen, with ValidTo set to the quoted
	// exit time.
	Record domain.TicketRecord

	FeeMinor   int64
	FreePeriod bool

	// Refetched is set when a second authoritative lookup for the real
	// window was issued.
	Refetched bool

	// OverrideApplied marks a quote computed under a forced test-mode
	// scenario, bypassing the backend's flags and fee.
	OverrideApplied bool
}

// QuoteTicket runs the two-phase lookup: a probe with from=to=now to
// discover the billing configuration without accruing a fee, then, when
// the computed target exit lies strictly after the true entry, a
// refetch for the real window to obtain the authoritative fee.
func (s *Settlement) QuoteTicket(ctx context.Context, barcode domain.Barcode, sel domain.ExitSelection) (Quote, Outcome) {
	now := s.clock.Now()

	probe, err := s.gate.GetTicketInfo(ctx, barcode, now, now)
	if err != nil {
		return Quote{}, failure(err)
	}

	scenario := probe.Record.Scenario
	overrideApplied := false
	if s.override != nil {
		if forced, ok := s.override.Scenario(); ok {
			scenario = forced
			overrideApplied = true
		}
	}

	if probe.NewSessionCandidate {
		return Quote{
			Barcode:         barcode,
			NewSession:      true,
			Scenario:        scenario,
			OverrideApplied: overrideApplied,
		}, success()
	}

	record := probe.Record
	entry := record.ValidFrom

	target, err := scenario.ExitTime(entry, sel)
	if err != nil {
		return Quote{}, failure(err)
	}

	quote := Quote{
		Barcode:         barcode,
		Scenario:        scenario,
		Record:          record,
		OverrideApplied: overrideApplied,
	}

	if overrideApplied {
		// Test mode recomputes the window locally with the same policy
		// table and rates; the live backend fee is not consulted.
		fee := s.tariff.ComputeFee(scenario, domain.FeeInput{
			Entry:          entry,
			Exit:           target,
			OverrideActive: true,
		})
		quote.Record.ValidTo = fee.ValidTo
		quote.FeeMinor = fee.AmountMinor
		s.saveLookup(ctx, quote.Record)
		return quote, success()
	}

	if target.After(entry) {
		refetch, err := s.gate.GetTicketInfo(ctx, barcode, entry, target)
		if err != nil {
			return Quote{}, failure(err)
		}
		if refetch.Exists {
			record = refetch.Record
		}
		quote.Refetched = true
	}

	validTo := record.ValidTo
	if validTo.IsZero() {
		validTo = target
	}

	fee := s.tariff.ComputeFee(scenario, domain.FeeInput{
		Entry:            entry,
		Exit:             validTo,
		BackendFeeMinor:  record.FeeMinor,
		BackendPaidMinor: record.FeePaidMinor,
	})

	quote.Record = record
	quote.Record.ValidTo = fee.ValidTo
	quote.FeeMinor = fee.AmountMinor
	quote.FreePeriod = fee.IsFreePeriod

	s.saveLookup(ctx, quote.Record)
	return quote, success()
}
