package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSpendProjection = `-- name: GetSpendProjection :one
SELECT card_id, total_spend, last_entry_at, updated_at FROM card_spend_projection WHERE card_id = $1
`

func (q *Queries) GetSpendProjection(ctx context.Context, cardID string) (CardSpendProjection, error) {
	row := q.db.QueryRow(ctx, getSpendProjection, cardID)
	var i CardSpendProjection
	err := row.Scan(
		&i.CardID,
		&i.TotalSpend,
		&i.LastEntryAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTotalSpend = `-- name: GetTotalSpend :one
SELECT COALESCE((SELECT total_spend FROM card_spend_projection WHERE card_id = $1), 0)::NUMERIC AS total_spend
`

func (q *Queries) GetTotalSpend(ctx context.Context, cardID string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getTotalSpend, cardID)
	var total_spend pgtype.Numeric
	err := row.Scan(&total_spend)
	return total_spend, err
}

const upsertSpendProjection = `-- name: UpsertSpendProjection :exec
INSERT INTO card_spend_projection (card_id, total_spend, last_entry_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (card_id) DO UPDATE
SET total_spend = EXCLUDED.total_spend,
    last_entry_at = EXCLUDED.last_entry_at,
    updated_at = EXCLUDED.updated_at
`

type UpsertSpendProjectionParams struct {
	CardID      string             `json:"card_id"`
	TotalSpend  pgtype.Numeric     `json:"total_spend"`
	LastEntryAt pgtype.Timestamptz `json:"last_entry_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertSpendProjection(ctx context.Context, arg UpsertSpendProjectionParams) error {
	_, err := q.db.Exec(ctx, upsertSpendProjection,
		arg.CardID,
		arg.TotalSpend,
		arg.LastEntryAt,
		arg.UpdatedAt,
	)
	return err
}
