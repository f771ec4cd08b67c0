package ports

import (
	"context"
	"time"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// GateSession is the authenticated protocol client against the gate
// backend. One value owns one session (token plus sequence counter);
// implementations must be safe for concurrent use by guarding that
// state internally.
type GateSession interface {
	Login(ctx context.Context) (domain.LoginInfo, error)
	HeartBeat(ctx context.Context) error
	Logout(ctx context.Context) error
	LoggedIn() bool

	GetTicketInfo(ctx context.Context, barcode domain.Barcode, from, to time.Time) (domain.TicketLookup, error)
	PayTicket(ctx context.Context, barcode domain.Barcode, from, to time.Time, amountMinor int64) (domain.Receipt, error)
}
