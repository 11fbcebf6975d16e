package domain

import "time"

// SpendProjection is the running total of a card's purchases in the base currency.
type SpendProjection struct {
	CardID      string
	TotalSpend  Money
	LastEntryAt *time.Time
}

// EmptyProjection is the state of a card that has no purchases yet.
func EmptyProjection(cardID string) *SpendProjection {
	return &SpendProjection{CardID: cardID, TotalSpend: Money{currency: BaseCurrency}}
}

// Apply returns the projection after adding amount, or ErrCreditLimitExceeded
// when the new total would pass limit. The receiver is not modified.
func (p *SpendProjection) Apply(amount, limit Money, at time.Time) (*SpendProjection, error) {
	total, err := p.TotalSpend.Add(amount)
	if err != nil {
		return nil, err
	}
	over, err := total.GreaterThan(limit)
	if err != nil {
		return nil, err
	}
	if over {
		return nil, ErrCreditLimitExceeded
	}
	last := at
	return &SpendProjection{CardID: p.CardID, TotalSpend: total.ForLedger(), LastEntryAt: &last}, nil
}
