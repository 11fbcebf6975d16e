package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createCard = `-- name: CreateCard :exec
INSERT INTO cards (card_id, card_number, credit_limit, currency_code, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateCardParams struct {
	CardID       string             `json:"card_id"`
	CardNumber   string             `json:"card_number"`
	CreditLimit  pgtype.Numeric     `json:"credit_limit"`
	CurrencyCode string             `json:"currency_code"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) error {
	_, err := q.db.Exec(ctx, createCard,
		arg.CardID,
		arg.CardNumber,
		arg.CreditLimit,
		arg.CurrencyCode,
		arg.CreatedAt,
	)
	return err
}

const getCardByID = `-- name: GetCardByID :one
SELECT card_id, card_number, credit_limit, currency_code, created_at FROM cards WHERE card_id = $1
`

func (q *Queries) GetCardByID(ctx context.Context, cardID string) (Card, error) {
	row := q.db.QueryRow(ctx, getCardByID, cardID)
	var i Card
	err := row.Scan(
		&i.CardID,
		&i.CardNumber,
		&i.CreditLimit,
		&i.CurrencyCode,
		&i.CreatedAt,
	)
	return i, err
}

const getCardByIDForUpdate = `-- name: GetCardByIDForUpdate :one
SELECT card_id, card_number, credit_limit, currency_code, created_at FROM cards WHERE card_id = $1 FOR UPDATE
`

func (q *Queries) GetCardByIDForUpdate(ctx context.Context, cardID string) (Card, error) {
	row := q.db.QueryRow(ctx, getCardByIDForUpdate, cardID)
	var i Card
	err := row.Scan(
		&i.CardID,
		&i.CardNumber,
		&i.CreditLimit,
		&i.CurrencyCode,
		&i.CreatedAt,
	)
	return i, err
}

const setLocalLockTimeout = `-- name: SetLocalLockTimeout :exec
SELECT set_config('lock_timeout', $1, true)
`

func (q *Queries) SetLocalLockTimeout(ctx context.Context, timeout string) error {
	_, err := q.db.Exec(ctx, setLocalLockTimeout, timeout)
	return err
}
