package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cardledger/internal/usecase"
)

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	queries *generated.Queries
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(db generated.DBTX) *LedgerEntryRepository {
	return &LedgerEntryRepository{queries: generated.New(db)}
}

// InsertIfAbsent inserts entry unless (card, idempotency key) is taken.
func (r *LedgerEntryRepository) InsertIfAbsent(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	n, err := queries.InsertLedgerEntry(ctx, generated.InsertLedgerEntryParams{
		LedgerEntryID:        entry.ID,
		CardID:               entry.CardID,
		IdempotencyKey:       entry.IdempotencyKey,
		Description:          entry.Description,
		TransactionDate:      timeToPgDate(entry.TransactionDate),
		Amount:               decimalToNumeric(entry.AmountInBase.Amount()),
		OriginalAmount:       decimalToNumeric(entry.OriginalAmount.Amount()),
		OriginalCurrencyCode: entry.OriginalAmount.Currency(),
		EntryType:            entry.EntryType,
		CreatedAt:            timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		if pgErrorCode(err) == pgErrForeignKeyViolation {
			return false, domain.ErrCardNotFound
		}
		return false, err
	}
	return n == 1, nil
}

// GetByIdempotencyKey returns the entry recorded for (card, key).
func (r *LedgerEntryRepository) GetByIdempotencyKey(ctx context.Context, tx usecase.Transaction, cardID, key string) (*domain.LedgerEntry, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetLedgerEntryByIdempotencyKey(ctx, generated.GetLedgerEntryByIdempotencyKeyParams{
		CardID:         cardID,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, entryLookupError(err)
	}
	return rowToLedgerEntry(row)
}

// GetPurchase retrieves a purchase by ID.
func (r *LedgerEntryRepository) GetPurchase(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetLedgerEntryByID(ctx, id)
	if err != nil {
		return nil, entryLookupError(err)
	}
	return rowToLedgerEntry(row)
}

// ListByCard lists a card's entries, newest transaction date first.
func (r *LedgerEntryRepository) ListByCard(ctx context.Context, cardID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByCard(ctx, generated.ListLedgerEntriesByCardParams{
		CardID: cardID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := rowToLedgerEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SumByCard adds up the base amounts of a card's entries.
func (r *LedgerEntryRepository) SumByCard(ctx context.Context, cardID string) (decimal.Decimal, error) {
	total, err := r.queries.SumLedgerEntriesByCard(ctx, cardID)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}

func entryLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == pgErrInvalidTextRepr {
		return domain.ErrPurchaseNotFound
	}
	return err
}

func rowToLedgerEntry(row generated.LedgerEntry) (*domain.LedgerEntry, error) {
	original, err := domain.NewMoney(numericToDecimal(row.OriginalAmount), row.OriginalCurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("ledger entry %s: %w", row.LedgerEntryID, err)
	}
	return &domain.LedgerEntry{
		ID:              row.LedgerEntryID,
		CardID:          row.CardID,
		IdempotencyKey:  row.IdempotencyKey,
		Description:     row.Description,
		TransactionDate: domain.DateOnly(row.TransactionDate.Time),
		OriginalAmount:  original,
		AmountInBase:    domain.USD(numericToDecimal(row.Amount)),
		EntryType:       row.EntryType,
		CreatedAt:       row.CreatedAt.Time.UTC(),
	}, nil
}
