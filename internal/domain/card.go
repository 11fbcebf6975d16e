package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card is a credit-limited account that purchases are recorded against.
// It never changes after creation; spend lives in SpendProjection.
type Card struct {
	ID          string
	Number      string
	CreditLimit Money
	CreatedAt   time.Time
}

// NewCard validates the input and builds a card in the base currency.
func NewCard(id, number string, limit decimal.Decimal, code string, now time.Time) (*Card, error) {
	if err := ValidateCardNumber(number); err != nil {
		return nil, err
	}
	if err := ValidateCreditLimit(limit, code); err != nil {
		return nil, err
	}
	return &Card{
		ID:          id,
		Number:      number,
		CreditLimit: USD(limit).ForLedger(),
		CreatedAt:   now.UTC(),
	}, nil
}

// MaskedNumber hides all but the last four digits.
func (c *Card) MaskedNumber() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	masked := make([]byte, len(c.Number))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(masked)-4:], c.Number[len(c.Number)-4:])
	return string(masked)
}

// Available returns max(0, limit - spent) at ledger scale.
func (c *Card) Available(spent Money) (Money, error) {
	remaining, err := c.CreditLimit.Sub(spent)
	if err != nil {
		return Money{}, err
	}
	zero := USD(decimal.Zero)
	available, err := Max(remaining, zero)
	if err != nil {
		return Money{}, err
	}
	return available.ForLedger(), nil
}
