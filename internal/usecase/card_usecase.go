package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

// CardUseCase handles card creation and lookup.
type CardUseCase struct {
	cardRepo CardRepository
	cache    CardCache
	idGen    IDGenerator
	clock    Clock
}

// NewCardUseCase creates a new CardUseCase. cache may be nil.
func NewCardUseCase(cardRepo CardRepository, cache CardCache, idGen IDGenerator) *CardUseCase {
	return &CardUseCase{
		cardRepo: cardRepo,
		cache:    cache,
		idGen:    idGen,
		clock:    SystemClock,
	}
}

// CreateCardInput represents input for creating a card.
type CreateCardInput struct {
	Number      string
	CreditLimit decimal.Decimal
	Currency    string
}

// CreateCard validates and stores a new card.
func (uc *CardUseCase) CreateCard(ctx context.Context, input CreateCardInput) (*domain.Card, error) {
	card, err := domain.NewCard(uc.idGen.Generate(), input.Number, input.CreditLimit, input.Currency, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.cardRepo.Create(ctx, card); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, card)
	}
	return card, nil
}

// GetCard retrieves a card by ID. Cards never change, so a cached copy is
// always current.
func (uc *CardUseCase) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	if uc.cache != nil {
		if card, err := uc.cache.Get(ctx, id); err == nil && card != nil {
			return card, nil
		}
	}

	card, err := uc.cardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, card)
	}
	return card, nil
}

// WithClock replaces the wall clock, mainly for tests.
func (uc *CardUseCase) WithClock(c Clock) *CardUseCase {
	uc.clock = c
	return uc
}
