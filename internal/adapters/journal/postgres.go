package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

// Postgres is the durable receipt journal. The schema is managed by the
// parkfee-migrate binary (see migrations/).
type Postgres struct {
	db *sql.DB
}

var _ ports.ReceiptJournal = (*Postgres)(nil)

func Open(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping journal database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection, mainly for tests.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Record(ctx context.Context, receipt domain.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO receipts (id, barcode, valid_from, valid_to, amount_minor, receipt_number, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, receipt.ID, string(receipt.Barcode), receipt.ValidFrom, receipt.ValidTo,
		receipt.AmountMinor, receipt.ReceiptNumber, receipt.PaidAt)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}

	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]domain.Receipt, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, barcode, valid_from, valid_to, amount_minor, receipt_number, paid_at
		FROM receipts
		ORDER BY paid_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		var r domain.Receipt
		var barcode string
		if err := rows.Scan(&r.ID, &barcode, &r.ValidFrom, &r.ValidTo,
			&r.AmountMinor, &r.ReceiptNumber, &r.PaidAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		r.Barcode = domain.Barcode(barcode)
		receipts = append(receipts, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}

	return receipts, nil
}
