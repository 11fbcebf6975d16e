package domain

import "time"

// EntryTypePurchase is the only entry type the ledger records today.
const EntryTypePurchase = "PURCHASE"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// LedgerEntry is an immutable record of one purchase.
type LedgerEntry struct {
	ID              string
	CardID          string
	IdempotencyKey  string
	Description     string
	TransactionDate time.Time
	OriginalAmount  Money
	AmountInBase    Money
	EntryType       string
	CreatedAt       time.Time
}

// SameRecord reports whether two entries describe the same stored row.
func (e *LedgerEntry) SameRecord(o *LedgerEntry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.ID == o.ID && e.CardID == o.CardID && e.IdempotencyKey == o.IdempotencyKey
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
