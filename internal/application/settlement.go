package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

// Outcome is the structured result every facade operation returns. No
// operation panics or leaks raw errors to callers; failures carry a
// human-readable message and, when the backend produced one, the
// numeric status.
type Outcome struct {
	OK      bool
	Message string
	Status  int
}

func success() Outcome { return Outcome{OK: true} }

func failure(err error) Outcome {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		return Outcome{Message: statusErr.Error(), Status: statusErr.Code}
	}

	var connErr *domain.ConnectionError
	if errors.As(err, &connErr) {
		return Outcome{Message: "cannot reach the parking backend, please try again later"}
	}

	var protoErr *domain.ProtocolError
	if errors.As(err, &protoErr) {
		return Outcome{Message: "unexpected response from the parking backend"}
	}

	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return Outcome{Message: "not logged in"}
	case errors.Is(err, domain.ErrSelectionRequired):
		return Outcome{Message: "please choose an exit date and/or time for this ticket"}
	}

	return Outcome{Message: err.Error()}
}

// Settlement is the ticket-settlement facade: session control, ticket
// lookup, fee quoting and payment, with local history and optional
// journaling behind it.
type Settlement struct {
	gate     ports.GateSession
	store    ports.TicketStore
	journal  ports.ReceiptJournal
	override ports.ScenarioOverride
	tariff   domain.Tariff
	clock    ports.Clock
	logger   *slog.Logger
}

func NewSettlement(
	gate ports.GateSession,
	store ports.TicketStore,
	journal ports.ReceiptJournal,
	override ports.ScenarioOverride,
	tariff domain.Tariff,
	clock ports.Clock,
	logger *slog.Logger,
) *Settlement {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Settlement{
		gate:     gate,
		store:    store,
		journal:  journal,
		override: override,
		tariff:   tariff,
		clock:    clock,
		logger:   logger,
	}
}

func (s *Settlement) Tariff() domain.Tariff { return s.tariff }

func (s *Settlement) Login(ctx context.Context) (domain.LoginInfo, Outcome) {
	info, err := s.gate.Login(ctx)
	if err != nil {
		return domain.LoginInfo{}, failure(err)
	}
	return info, success()
}

func (s *Settlement) Heartbeat(ctx context.Context) Outcome {
	if err := s.gate.HeartBeat(ctx); err != nil {
		return failure(err)
	}
	return success()
}

func (s *Settlement) Logout(ctx context.Context) Outcome {
	if err := s.gate.Logout(ctx); err != nil {
		return failure(err)
	}
	return success()
}

// QueryTicket performs a single lookup for an explicit window and
// records the result in the local history.
func (s *Settlement) QueryTicket(ctx context.Context, barcode domain.Barcode, from, to time.Time) (domain.TicketLookup, Outcome) {
	lookup, err := s.gate.GetTicketInfo(ctx, barcode, from, to)
	if err != nil {
		return domain.TicketLookup{}, failure(err)
	}

	if lookup.Exists {
		s.saveLookup(ctx, lookup.Record)
	}
	return lookup, success()
}

// PayTicket settles the fee for a window, then persists the receipt in
// the local history and, when configured, the receipt journal.
// Persistence failures do not undo a payment the backend accepted; they
// are logged and the receipt is still returned.
func (s *Settlement) PayTicket(ctx context.Context, barcode domain.Barcode, from, to time.Time, amountMinor int64) (domain.Receipt, Outcome) {
	receipt, err := s.gate.PayTicket(ctx, barcode, from, to, amountMinor)
	if err != nil {
		return domain.Receipt{}, failure(err)
	}

	receipt.ID = uuid.NewString()
	receipt.PaidAt = s.clock.Now()

	if s.store != nil {
		if err := s.store.SaveReceipt(ctx, receipt); err != nil {
			s.logger.Warn("save receipt to ticket store", "barcode", barcode, "error", err)
		}
	}
	if s.journal != nil {
		if err := s.journal.Record(ctx, receipt); err != nil {
			s.logger.Warn("record receipt in journal", "barcode", barcode, "error", err)
		}
	}

	return receipt, success()
}

// History lists the locally recorded lookups and receipts.
func (s *Settlement) History(ctx context.Context) ([]domain.TicketRecord, []domain.Receipt, Outcome) {
	if s.store == nil {
		return nil, nil, success()
	}

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, nil, failure(err)
	}
	receipts, err := s.store.ListReceipts(ctx)
	if err != nil {
		return nil, nil, failure(err)
	}
	return records, receipts, success()
}

func (s *Settlement) saveLookup(ctx context.Context, record domain.TicketRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveLookup(ctx, record); err != nil {
		s.logger.Warn("save lookup to ticket store", "barcode", record.Barcode, "error", err)
	}
}
