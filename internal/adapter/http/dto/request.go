package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// CreateCardRequest represents a request to create a card.
type CreateCardRequest struct {
	CardNumber   string          `json:"cardNumber"`
	CreditLimit  decimal.Decimal `json:"creditLimit"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
}

// ToUseCaseInput converts to use case input. The currency defaults to USD.
func (r *CreateCardRequest) ToUseCaseInput() usecase.CreateCardInput {
	code := r.CurrencyCode
	if strings.TrimSpace(code) == "" {
		code = domain.BaseCurrency
	}
	return usecase.CreateCardInput{
		Number:      strings.TrimSpace(r.CardNumber),
		CreditLimit: r.CreditLimit,
		Currency:    code,
	}
}

// CreatePurchaseRequest represents a purchase as submitted by a client.
type CreatePurchaseRequest struct {
	Description     string          `json:"description"`
	TransactionDate string          `json:"transactionDate"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
}

// ToUseCaseInput converts to use case input. The transaction date may be a
// calendar date or an RFC 3339 timestamp; only its date part is kept.
func (r *CreatePurchaseRequest) ToUseCaseInput(cardID, idempotencyKey string) (usecase.CreatePurchaseInput, error) {
	date, err := ParseDate(r.TransactionDate)
	if err != nil {
		return usecase.CreatePurchaseInput{}, err
	}
	return usecase.CreatePurchaseInput{
		CardID:          cardID,
		IdempotencyKey:  idempotencyKey,
		Description:     r.Description,
		TransactionDate: date,
		Amount:          r.Amount,
		Currency:        r.CurrencyCode,
	}, nil
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.DateOnly(t.UTC()), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTransactionDate, s)
}
