package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

type infoCall struct {
	barcode  domain.Barcode
	from, to time.Time
}

type payCall struct {
	barcode     domain.Barcode
	from, to    time.Time
	amountMinor int64
}

// fakeGate scripts the gate session port: lookups are popped in order,
// one per GetTicketInfo call.
type fakeGate struct {
	loginInfo  domain.LoginInfo
	loginErr   error
	heartErr   error
	logoutErr  error
	lookups    []domain.TicketLookup
	lookupErr  error
	payReceipt domain.Receipt
	payErr     error

	infoCalls []infoCall
	payCalls  []payCall
}

func (f *fakeGate) Login(context.Context) (domain.LoginInfo, error) { return f.loginInfo, f.loginErr }
func (f *fakeGate) HeartBeat(context.Context) error                 { return f.heartErr }
func (f *fakeGate) Logout(context.Context) error                    { return f.logoutErr }
func (f *fakeGate) LoggedIn() bool                                  { return true }

func (f *fakeGate) GetTicketInfo(_ context.Context, barcode domain.Barcode, from, to time.Time) (domain.TicketLookup, error) {
	f.infoCalls = append(f.infoCalls, infoCall{barcode: barcode, from: from, to: to})
	if f.lookupErr != nil {
		return domain.TicketLookup{}, f.lookupErr
	}
	if len(f.lookups) == 0 {
		return domain.TicketLookup{}, errors.New("no scripted lookup left")
	}
	lookup := f.lookups[0]
	f.lookups = f.lookups[1:]
	return lookup, nil
}

func (f *fakeGate) PayTicket(_ context.Context, barcode domain.Barcode, from, to time.Time, amountMinor int64) (domain.Receipt, error) {
	f.payCalls = append(f.payCalls, payCall{barcode: barcode, from: from, to: to, amountMinor: amountMinor})
	if f.payErr != nil {
		return domain.Receipt{}, f.payErr
	}
	receipt := f.payReceipt
	receipt.Barcode = barcode
	receipt.ValidFrom = from
	receipt.ValidTo = to
	receipt.AmountMinor = amountMinor
	return receipt, nil
}

type fakeStore struct {
	saveErr  error
	records  []domain.TicketRecord
	receipts []domain.Receipt
}

func (f *fakeStore) SaveLookup(_ context.Context, record domain.TicketRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) SaveReceipt(_ context.Context, receipt domain.Receipt) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.receipts = append(f.receipts, receipt)
	return nil
}

func (f *fakeStore) ListRecords(context.Context) ([]domain.TicketRecord, error) {
	return f.records, nil
}

func (f *fakeStore) ListReceipts(context.Context) ([]domain.Receipt, error) {
	return f.receipts, nil
}

type fakeJournal struct {
	recorded []domain.Receipt
	err      error
}

func (f *fakeJournal) Record(_ context.Context, receipt domain.Receipt) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, receipt)
	return nil
}

func (f *fakeJournal) List(context.Context, int) ([]domain.Receipt, error) {
	return f.recorded, nil
}

type fixedOverride struct {
	scenario domain.Scenario
	active   bool
}

func (f fixedOverride) Scenario() (domain.Scenario, bool) { return f.scenario, f.active }

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

var testNow = time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)

func testTariff() domain.Tariff {
	return domain.Tariff{DailyRateMinor: 2400, HourlyRateMinor: 300, FreeMinutes: 15}
}

func newTestSettlement(gate *fakeGate, store *fakeStore) *Settlement {
	var ts ports.TicketStore
	if store != nil {
		ts = store
	}
	return NewSettlement(gate, ts, nil, nil, testTariff(), fixedClock{now: testNow}, nil)
}

func TestLoginSuccess(t *testing.T) {
	gate := &fakeGate{loginInfo: domain.LoginInfo{User: "gate-operator"}}
	svc := newTestSettlement(gate, nil)

	info, outcome := svc.Login(context.Background())
	assert.True(t, outcome.OK)
	assert.Equal(t, "gate-operator", info.User)
}

func TestLoginFailureCarriesStatus(t *testing.T) {
	gate := &fakeGate{loginErr: domain.NewStatusError(-12)}
	svc := newTestSettlement(gate, nil)

	_, outcome := svc.Login(context.Background())
	assert.False(t, outcome.OK)
	assert.Equal(t, -12, outcome.Status)
	assert.Contains(t, outcome.Message, "please contact support")
}

func TestHeartbeatConnectionFailureIsFriendly(t *testing.T) {
	gate := &fakeGate{heartErr: &domain.ConnectionError{Op: "connect", Err: errors.New("refused")}}
	svc := newTestSettlement(gate, nil)

	outcome := svc.Heartbeat(context.Background())
	assert.False(t, outcome.OK)
	assert.Equal(t, "cannot reach the parking backend, please try again later", outcome.Message)
}

func TestFailureMapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "not logged in", err: domain.ErrNotLoggedIn, want: "not logged in"},
		{
			name: "selection required",
			err:  domain.ErrSelectionRequired,
			want: "please choose an exit date and/or time for this ticket",
		},
		{
			name: "protocol error",
			err:  &domain.ProtocolError{Want: "HEART_BEAT", Got: "LOGIN"},
			want: "unexpected response from the parking backend",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gate := &fakeGate{heartErr: tc.err}
			outcome := newTestSettlement(gate, nil).Heartbeat(context.Background())
			assert.False(t, outcome.OK)
			assert.Equal(t, tc.want, outcome.Message)
		})
	}
}

func TestQueryTicketSavesExistingRecord(t *testing.T) {
	record := domain.TicketRecord{
		Barcode:   "T-100",
		Exists:    true,
		ValidFrom: testNow.Add(-time.Hour),
		FeeMinor:  600,
	}
	gate := &fakeGate{lookups: []domain.TicketLookup{{Exists: true, Record: record}}}
	store := &fakeStore{}
	svc := newTestSettlement(gate, store)

	lookup, outcome := svc.QueryTicket(context.Background(), "T-100", testNow, testNow)
	require.True(t, outcome.OK)
	assert.True(t, lookup.Exists)
	require.Len(t, store.records, 1)
	assert.Equal(t, record, store.records[0])
}

func TestQueryTicketUnknownTicketIsNotSaved(t *testing.T) {
	gate := &fakeGate{lookups: []domain.TicketLookup{{NewSessionCandidate: true}}}
	store := &fakeStore{}
	svc := newTestSettlement(gate, store)

	lookup, outcome := svc.QueryTicket(context.Background(), "T-404", testNow, testNow)
	require.True(t, outcome.OK)
	assert.True(t, lookup.NewSessionCandidate)
	assert.Empty(t, store.records)
}

func TestPayTicketPersistsReceipt(t *testing.T) {
	gate := &fakeGate{payReceipt: domain.Receipt{ReceiptNumber: "R-2024-0042"}}
	store := &fakeStore{}
	journal := &fakeJournal{}
	svc := NewSettlement(gate, store, journal, nil, testTariff(), fixedClock{now: testNow}, nil)

	from := testNow.Add(-2 * time.Hour)
	receipt, outcome := svc.PayTicket(context.Background(), "T-100", from, testNow, 600)
	require.True(t, outcome.OK)

	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, testNow, receipt.PaidAt)
	assert.Equal(t, "R-2024-0042", receipt.ReceiptNumber)
	assert.Equal(t, int64(600), receipt.AmountMinor)

	require.Len(t, store.receipts, 1)
	assert.Equal(t, receipt, store.receipts[0])
	require.Len(t, journal.recorded, 1)
	assert.Equal(t, receipt, journal.recorded[0])
}

func TestPayTicketSurvivesPersistenceFailure(t *testing.T) {
	gate := &fakeGate{payReceipt: domain.Receipt{ReceiptNumber: "R-2024-0042"}}
	store := &fakeStore{saveErr: errors.New("disk full")}
	journal := &fakeJournal{err: errors.New("db down")}
	svc := NewSettlement(gate, store, journal, nil, testTariff(), fixedClock{now: testNow}, nil)

	receipt, outcome := svc.PayTicket(context.Background(), "T-100", testNow.Add(-time.Hour), testNow, 600)
	assert.True(t, outcome.OK, "an accepted payment is never undone by persistence failures")
	assert.NotEmpty(t, receipt.ID)
}

func TestPayTicketRejection(t *testing.T) {
	gate := &fakeGate{payErr: domain.NewStatusError(-14)}
	svc := newTestSettlement(gate, nil)

	_, outcome := svc.PayTicket(context.Background(), "T-100", testNow.Add(-time.Hour), testNow, 600)
	assert.False(t, outcome.OK)
	assert.Equal(t, -14, outcome.Status)
}

func TestHistoryWithoutStoreIsEmpty(t *testing.T) {
	svc := newTestSettlement(&fakeGate{}, nil)

	records, receipts, outcome := svc.History(context.Background())
	assert.True(t, outcome.OK)
	assert.Empty(t, records)
	assert.Empty(t, receipts)
}

func TestHistoryListsStoreContents(t *testing.T) {
	store := &fakeStore{
		records:  []domain.TicketRecord{{Barcode: "T-100", Exists: true}},
		receipts: []domain.Receipt{{ID: "rcpt-1", Barcode: "T-100"}},
	}
	svc := newTestSettlement(&fakeGate{}, store)

	records, receipts, outcome := svc.History(context.Background())
	require.True(t, outcome.OK)
	assert.Len(t, records, 1)
	assert.Len(t, receipts, 1)
}
