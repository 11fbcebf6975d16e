package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

// CardReader looks up cards.
type CardReader interface {
	GetCard(ctx context.Context, id string) (*domain.Card, error)
}

// BalanceUseCase answers spend and available balance queries.
type BalanceUseCase struct {
	cards          CardReader
	projectionRepo SpendProjectionRepository
	rates          RateResolver
	clock          Clock
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(cards CardReader, projectionRepo SpendProjectionRepository, rates RateResolver) *BalanceUseCase {
	return &BalanceUseCase{
		cards:          cards,
		projectionRepo: projectionRepo,
		rates:          rates,
		clock:          SystemClock,
	}
}

// BalanceView is a card's available credit, also shown in a target currency.
type BalanceView struct {
	CardID      string
	CreditLimit domain.Money
	TotalSpend  domain.Money
	Available   domain.Money
	Converted   domain.Money
	Rate        decimal.Decimal
	RateDate    time.Time
}

// GetTotalSpend returns the card's spend in the base currency, zero if it has none.
func (uc *BalanceUseCase) GetTotalSpend(ctx context.Context, cardID string) (domain.Money, error) {
	if _, err := uc.cards.GetCard(ctx, cardID); err != nil {
		return domain.Money{}, err
	}
	total, err := uc.projectionRepo.GetTotalSpend(ctx, cardID)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.USD(total).ForLedger(), nil
}

// GetAvailableBalance returns max(0, limit - spend) converted into target at
// today's rate. An empty target means the base currency.
func (uc *BalanceUseCase) GetAvailableBalance(ctx context.Context, cardID, target string) (*BalanceView, error) {
	target, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	card, err := uc.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	total, err := uc.projectionRepo.GetTotalSpend(ctx, cardID)
	if err != nil {
		return nil, err
	}
	spend := domain.USD(total).ForLedger()

	available, err := card.Available(spend)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(uc.clock.Now())
	rate, err := uc.rates.GetRate(target, today)
	if err != nil {
		return nil, err
	}
	converted, err := available.MulRate(rate).In(target)
	if err != nil {
		return nil, err
	}

	return &BalanceView{
		CardID:      card.ID,
		CreditLimit: card.CreditLimit,
		TotalSpend:  spend,
		Available:   available,
		Converted:   converted.ForLedger(),
		Rate:        rate,
		RateDate:    today,
	}, nil
}

func normalizeTarget(target string) (string, error) {
	target = domain.NormalizeCurrency(target)
	if target == "" {
		return domain.BaseCurrency, nil
	}
	if err := domain.ValidateCurrency(target); err != nil {
		return "", err
	}
	return target, nil
}

// WithClock replaces the wall clock, mainly for tests.
func (uc *BalanceUseCase) WithClock(c Clock) *BalanceUseCase {
	uc.clock = c
	return uc
}
