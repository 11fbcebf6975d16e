package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Card struct {
	CardID       string             `json:"card_id"`
	CardNumber   string             `json:"card_number"`
	CreditLimit  pgtype.Numeric     `json:"credit_limit"`
	CurrencyCode string             `json:"currency_code"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type CardSpendProjection struct {
	CardID      string             `json:"card_id"`
	TotalSpend  pgtype.Numeric     `json:"total_spend"`
	LastEntryAt pgtype.Timestamptz `json:"last_entry_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type LedgerEntry struct {
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

type OutboxEvent struct {
	OutboxEventID string             `json:"outbox_event_id"`
	AggregateType string             `json:"aggregate_type"`
	AggregateID   string             `json:"aggregate_id"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}
