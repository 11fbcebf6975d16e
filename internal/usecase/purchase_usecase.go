package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

// PurchaseAppender records normalized purchases.
type PurchaseAppender interface {
	AppendPurchase(ctx context.Context, input AppendPurchaseInput) (*domain.LedgerEntry, error)
}

// PurchaseUseCase normalizes incoming purchases and answers purchase queries.
type PurchaseUseCase struct {
	appender  PurchaseAppender
	cards     CardReader
	entryRepo LedgerEntryRepository
	rates     RateResolver
}

// NewPurchaseUseCase creates a new PurchaseUseCase.
func NewPurchaseUseCase(
	appender PurchaseAppender,
	cards CardReader,
	entryRepo LedgerEntryRepository,
	rates RateResolver,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		appender:  appender,
		cards:     cards,
		entryRepo: entryRepo,
		rates:     rates,
	}
}

// CreatePurchaseInput is a purchase as submitted, in any currency.
type CreatePurchaseInput struct {
	CardID          string
	IdempotencyKey  string
	Description     string
	TransactionDate time.Time
	Amount          decimal.Decimal
	Currency        string
}

// CreatePurchase validates the purchase, converts it to the base currency
// at the rate in force on the transaction date and appends it.
func (uc *PurchaseUseCase) CreatePurchase(ctx context.Context, input CreatePurchaseInput) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if input.TransactionDate.IsZero() {
		return nil, domain.ErrInvalidTransactionDate
	}

	original, err := domain.NewMoney(input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	original = original.ForLedger()

	inBase, err := uc.toBase(original, input.TransactionDate)
	if err != nil {
		return nil, err
	}

	return uc.appender.AppendPurchase(ctx, AppendPurchaseInput{
		CardID:          input.CardID,
		IdempotencyKey:  input.IdempotencyKey,
		Description:     input.Description,
		TransactionDate: input.TransactionDate,
		OriginalAmount:  original,
		AmountInBase:    inBase,
	})
}

func (uc *PurchaseUseCase) toBase(original domain.Money, date time.Time) (domain.Money, error) {
	if original.Currency() == domain.BaseCurrency {
		return original, nil
	}

	rate, err := uc.rates.GetRate(original.Currency(), domain.DateOnly(date))
	if err != nil {
		return domain.Money{}, err
	}
	converted, err := original.DivRate(rate)
	if err != nil {
		return domain.Money{}, err
	}
	inBase, err := converted.In(domain.BaseCurrency)
	if err != nil {
		return domain.Money{}, err
	}
	inBase = inBase.ForLedger()
	if !inBase.IsPositive() {
		return domain.Money{}, fmt.Errorf("%w: %s is less than 0.01 %s", domain.ErrInvalidAmount, original, domain.BaseCurrency)
	}
	return inBase, nil
}

// PurchaseView is a stored purchase shown in a target currency.
type PurchaseView struct {
	Entry     *domain.LedgerEntry
	Converted domain.Money
	Rate      decimal.Decimal
}

// GetPurchase loads a purchase and converts it into target. The original
// currency and the base currency are answered from stored amounts; any other
// currency uses the rate as of the transaction date.
func (uc *PurchaseUseCase) GetPurchase(ctx context.Context, purchaseID, target string) (*PurchaseView, error) {
	target, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	entry, err := uc.entryRepo.GetPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	one := decimal.NewFromInt(1)
	switch target {
	case entry.OriginalAmount.Currency():
		return &PurchaseView{Entry: entry, Converted: entry.OriginalAmount, Rate: one}, nil
	case domain.BaseCurrency:
		return &PurchaseView{Entry: entry, Converted: entry.AmountInBase, Rate: one}, nil
	}

	rate, err := uc.rates.GetRate(target, entry.TransactionDate)
	if err != nil {
		return nil, err
	}
	converted, err := entry.AmountInBase.MulRate(rate).In(target)
	if err != nil {
		return nil, err
	}
	return &PurchaseView{Entry: entry, Converted: converted.ForLedger(), Rate: rate}, nil
}

// ListPurchases returns a page of a card's purchases, newest first.
func (uc *PurchaseUseCase) ListPurchases(ctx context.Context, cardID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if _, err := uc.cards.GetCard(ctx, cardID); err != nil {
		return nil, err
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.entryRepo.ListByCard(ctx, cardID, limit, offset)
}
