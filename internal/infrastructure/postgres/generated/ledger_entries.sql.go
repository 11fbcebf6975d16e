package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getLedgerEntryByID = `-- name: GetLedgerEntryByID :one
SELECT ledger_entry_id, card_id, idempotency_key, description, transaction_date, amount, original_amount, original_currency_code, entry_type, created_at FROM ledger_entries
WHERE ledger_entry_id = $1
`

func (q *Queries) GetLedgerEntryByID(ctx context.Context, ledgerEntryID string) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByID, ledgerEntryID)
	var i LedgerEntry
	err := row.Scan(
		&i.LedgerEntryID,
		&i.CardID,
		&i.IdempotencyKey,
		&i.Description,
		&i.TransactionDate,
		&i.Amount,
		&i.OriginalAmount,
		&i.OriginalCurrencyCode,
		&i.EntryType,
		&i.CreatedAt,
	)
	return i, err
}

const getLedgerEntryByIdempotencyKey = `-- name: GetLedgerEntryByIdempotencyKey :one
SELECT ledger_entry_id, card_id, idempotency_key, description, transaction_date, amount, original_amount, original_currency_code, entry_type, created_at FROM ledger_entries
WHERE card_id = $1 AND idempotency_key = $2
`

type GetLedgerEntryByIdempotencyKeyParams struct {
	CardID         string `json:"card_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (q *Queries) GetLedgerEntryByIdempotencyKey(ctx context.Context, arg GetLedgerEntryByIdempotencyKeyParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByIdempotencyKey, arg.CardID, arg.IdempotencyKey)
	var i LedgerEntry
	err := row.Scan(
		&i.LedgerEntryID,
		&i.CardID,
		&i.IdempotencyKey,
		&i.Description,
		&i.TransactionDate,
		&i.Amount,
		&i.OriginalAmount,
		&i.OriginalCurrencyCode,
		&i.EntryType,
		&i.CreatedAt,
	)
	return i, err
}

const insertLedgerEntry = `-- name: InsertLedgerEntry :execrows
INSERT INTO ledger_entries (ledger_entry_id, card_id, idempotency_key, description, transaction_date, amount, original_amount, original_currency_code, entry_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (card_id, idempotency_key) DO NOTHING
`

type InsertLedgerEntryParams struct {
	LedgerEntryID        string             `json:"ledger_entry_id"`
	CardID               string             `json:"card_id"`
	IdempotencyKey       string             `json:"idempotency_key"`
	Description          string             `json:"description"`
	TransactionDate      pgtype.Date        `json:"transaction_date"`
	Amount               pgtype.Numeric     `json:"amount"`
	OriginalAmount       pgtype.Numeric     `json:"original_amount"`
	OriginalCurrencyCode string             `json:"original_currency_code"`
	EntryType            string             `json:"entry_type"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) InsertLedgerEntry(ctx context.Context, arg InsertLedgerEntryParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertLedgerEntry,
		arg.LedgerEntryID,
		arg.CardID,
		arg.IdempotencyKey,
		arg.Description,
		arg.TransactionDate,
		arg.Amount,
		arg.OriginalAmount,
		arg.OriginalCurrencyCode,
		arg.EntryType,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listLedgerEntriesByCard = `-- name: ListLedgerEntriesByCard :many
SELECT ledger_entry_id, card_id, idempotency_key, description, transaction_date, amount, original_amount, original_currency_code, entry_type, created_at FROM ledger_entries
WHERE card_id = $1
ORDER BY transaction_date DESC, created_at DESC
LIMIT $2 OFFSET $3
`

type ListLedgerEntriesByCardParams struct {
	CardID string `json:"card_id"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (q *Queries) ListLedgerEntriesByCard(ctx context.Context, arg ListLedgerEntriesByCardParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntriesByCard, arg.CardID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(
			&i.LedgerEntryID,
			&i.CardID,
			&i.IdempotencyKey,
			&i.Description,
			&i.TransactionDate,
			&i.Amount,
			&i.OriginalAmount,
			&i.OriginalCurrencyCode,
			&i.EntryType,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumLedgerEntriesByCard = `-- name: SumLedgerEntriesByCard :one
SELECT COALESCE(SUM(amount), 0)::NUMERIC AS total FROM ledger_entries WHERE card_id = $1
`

func (q *Queries) SumLedgerEntriesByCard(ctx context.Context, cardID string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumLedgerEntriesByCard, cardID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
