package ports

import (
	"context"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// TicketStore is the local flat-file history consumed by the auxiliary
// listing endpoints. It is an observability aid, not the source of
// truth; the gate backend stays authoritative.
type TicketStore interface {
	SaveLookup(ctx context.Context, record domain.TicketRecord) error
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error
	ListRecords(ctx context.Context) ([]domain.TicketRecord, error)
	ListReceipts(ctx context.Context) ([]domain.Receipt, error)
}
