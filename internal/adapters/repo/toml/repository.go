package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

const (
	ticketsFileMode = 0o600
	ticketsDirMode  = 0o700
	tempFilePattern = ".tickets-*.toml.tmp"
)

// Repository is the flat-file ticket history behind the auxiliary
// listing endpoints. Writes go through a temp file plus rename so a
// crash never leaves a half-written history, and a per-path lock
// registry serializes access when several repositories share one file.
type Repository struct {
	ticketsPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.TicketStore = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("tickets path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve tickets path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{ticketsPath: absPath, mu: lockForPath(absPath)}, nil
}

// SaveLookup upserts a ticket record, keyed by barcode. A refetched
// record replaces the earlier probe result.
func (r *Repository) SaveLookup(ctx context.Context, record domain.TicketRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	encoded := toTicketSchema(record)
	updated := false
	for i := range file.Tickets {
		if file.Tickets[i].Barcode == encoded.Barcode {
			file.Tickets[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Tickets = append(file.Tickets, encoded)
	}

	return r.writeSchema(file)
}

// SaveReceipt appends a payment receipt. Receipts are never rewritten.
func (r *Repository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	file.Receipts = append(file.Receipts, toReceiptSchema(receipt))

	return r.writeSchema(file)
}

func (r *Repository) ListRecords(ctx context.Context) ([]domain.TicketRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	records := make([]domain.TicketRecord, 0, len(file.Tickets))
	for _, entry := range file.Tickets {
		records = append(records, fromTicketSchema(entry))
	}
	return records, nil
}

func (r *Repository) ListReceipts(ctx context.Context) ([]domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	receipts := make([]domain.Receipt, 0, len(file.Receipts))
	for _, entry := range file.Receipts {
		receipts = append(receipts, fromReceiptSchema(entry))
	}
	return receipts, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.ticketsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read tickets file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode tickets file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.ticketsPath), ticketsDirMode); err != nil {
		return fmt.Errorf("create tickets directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode tickets file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.ticketsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp tickets file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp tickets file: %w", err)
	}

	if err := tempFile.Chmod(ticketsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp tickets file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp tickets file: %w", err)
	}

	if err := os.Rename(tempName, r.ticketsPath); err != nil {
		return fmt.Errorf("replace tickets file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toTicketSchema(record domain.TicketRecord) ticketSchema {
	return ticketSchema{
		Barcode:            string(record.Barcode),
		RegistrationNumber: record.RegistrationNumber,
		ValidFrom:          formatTime(record.ValidFrom),
		ValidTo:            formatTime(record.ValidTo),
		FeeMinor:           record.FeeMinor,
		FeePaidMinor:       record.FeePaidMinor,
		Hourly:             record.Scenario.Hourly,
		MultiDay:           record.Scenario.MultiDay,
		FromMidnight:       record.Scenario.FromMidnight,
	}
}

func fromTicketSchema(entry ticketSchema) domain.TicketRecord {
	return domain.TicketRecord{
		Barcode:            domain.Barcode(entry.Barcode),
		Exists:             true,
		RegistrationNumber: entry.RegistrationNumber,
		ValidFrom:          parseTime(entry.ValidFrom),
		ValidTo:            parseTime(entry.ValidTo),
		FeeMinor:           entry.FeeMinor,
		FeePaidMinor:       entry.FeePaidMinor,
		Scenario: domain.Scenario{
			Hourly:       entry.Hourly,
			MultiDay:     entry.MultiDay,
			FromMidnight: entry.FromMidnight,
		},
	}
}

func toReceiptSchema(receipt domain.Receipt) receiptSchema {
	return receiptSchema{
		ID:            receipt.ID,
		Barcode:       string(receipt.Barcode),
		ValidFrom:     formatTime(receipt.ValidFrom),
		ValidTo:       formatTime(receipt.ValidTo),
		AmountMinor:   receipt.AmountMinor,
		ReceiptNumber: receipt.ReceiptNumber,
		PaidAt:        formatTime(receipt.PaidAt),
	}
}

func fromReceiptSchema(entry receiptSchema) domain.Receipt {
	return domain.Receipt{
		ID:            entry.ID,
		Barcode:       domain.Barcode(entry.Barcode),
		ValidFrom:     parseTime(entry.ValidFrom),
		ValidTo:       parseTime(entry.ValidTo),
		AmountMinor:   entry.AmountMinor,
		ReceiptNumber: entry.ReceiptNumber,
		PaidAt:        parseTime(entry.PaidAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
