package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzander/parkfee-cli/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "nested", "tickets.toml"))
	require.NoError(t, err)
	return repo
}

func sampleRecord(barcode string) domain.TicketRecord {
	return domain.TicketRecord{
		Barcode:            domain.Barcode(barcode),
		Exists:             true,
		RegistrationNumber: "KA-123-AB",
		ValidFrom:          time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		ValidTo:            time.Date(2024, 1, 11, 8, 30, 0, 0, time.UTC),
		FeeMinor:           2400,
		FeePaidMinor:       400,
		Scenario:           domain.Scenario{MultiDay: true},
	}
}

func TestNewRepositoryRejectsEmptyPath(t *testing.T) {
	_, err := NewRepository("")
	require.Error(t, err)
}

func TestListRecordsMissingFileIsEmpty(t *testing.T) {
	repo := newTestRepository(t)

	records, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	receipts, err := repo.ListReceipts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestSaveLookupRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	record := sampleRecord("T-100")
	require.NoError(t, repo.SaveLookup(ctx, record))

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record, records[0])
}

func TestSaveLookupUpsertsByBarcode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLookup(ctx, sampleRecord("T-100")))
	require.NoError(t, repo.SaveLookup(ctx, sampleRecord("T-200")))

	refreshed := sampleRecord("T-100")
	refreshed.FeeMinor = 4800
	refreshed.ValidTo = refreshed.ValidTo.Add(24 * time.Hour)
	require.NoError(t, repo.SaveLookup(ctx, refreshed))

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, refreshed, records[0])
	assert.Equal(t, domain.Barcode("T-200"), records[1].Barcode)
}

func TestSaveReceiptAppends(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := domain.Receipt{
		ID:            "rcpt-1",
		Barcode:       "T-100",
		ValidFrom:     time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
		ValidTo:       time.Date(2024, 1, 11, 8, 30, 0, 0, time.UTC),
		AmountMinor:   800,
		ReceiptNumber: "R-2024-0042",
		PaidAt:        time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
	}
	second := first
	second.ID = "rcpt-2"
	second.ReceiptNumber = "R-2024-0043"

	require.NoError(t, repo.SaveReceipt(ctx, first))
	require.NoError(t, repo.SaveReceipt(ctx, second))

	receipts, err := repo.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, first, receipts[0])
	assert.Equal(t, second, receipts[1])
}

func TestReadRejectsNewerSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 99\n"), 0o600))

	repo, err := NewRepository(path)
	require.NoError(t, err)

	_, err = repo.ListRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

func TestWriteKeepsRestrictivePermissions(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.SaveLookup(context.Background(), sampleRecord("T-100")))

	info, err := os.Stat(repo.ticketsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCancelledContextShortCircuits(t *testing.T) {
	repo := newTestRepository(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, repo.SaveLookup(ctx, sampleRecord("T-100")))
	_, err := repo.ListRecords(ctx)
	assert.Error(t, err)
}
