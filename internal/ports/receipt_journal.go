package ports

import (
	"context"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// ReceiptJournal is the durable payment journal (Postgres when
// configured). Optional: a nil journal disables journaling.
type ReceiptJournal interface {
	Record(ctx context.Context, receipt domain.Receipt) error
	List(ctx context.Context, limit int) ([]domain.Receipt, error)
}
