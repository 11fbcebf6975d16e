package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// ErrorResponse represents an error response. RateUnavailable errors also
// carry the searched window.
type ErrorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	Currency    string `json:"currency,omitempty"`
	AsOf        string `json:"asOf,omitempty"`
	WindowStart string `json:"windowStart,omitempty"`
}

// CardResponse represents a card in API responses.
type CardResponse struct {
	CardID               string    `json:"cardId"`
	CardNumber           string    `json:"cardNumber"`
	CreditLimit          string    `json:"creditLimit"`
	CreditLimitFormatted string    `json:"creditLimitFormatted"`
	Currency             string    `json:"currency"`
	CreatedAt            time.Time `json:"createdAt"`
}

// CardFromDomain converts a domain card to a response. The number is masked.
func CardFromDomain(c *domain.Card) *CardResponse {
	return &CardResponse{
		CardID:               c.ID,
		CardNumber:           c.MaskedNumber(),
		CreditLimit:          amount(c.CreditLimit),
		CreditLimitFormatted: c.CreditLimit.Format(),
		Currency:             c.CreditLimit.Currency(),
		CreatedAt:            c.CreatedAt,
	}
}

// PurchaseCreatedResponse is returned by POST /cards/{cardID}/purchases.
type PurchaseCreatedResponse struct {
	PurchaseID     string `json:"purchaseId"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// PurchaseSummary is one row of a purchase listing.
type PurchaseSummary struct {
	PurchaseID       string    `json:"purchaseId"`
	Description      string    `json:"description"`
	TransactionDate  string    `json:"transactionDate"`
	OriginalAmount   string    `json:"originalAmount"`
	OriginalCurrency string    `json:"originalCurrency"`
	AmountInBase     string    `json:"amountUsd"`
	CreatedAt        time.Time `json:"createdAt"`
}

// PurchaseSummaryFromDomain converts a ledger entry to a listing row.
func PurchaseSummaryFromDomain(e *domain.LedgerEntry) PurchaseSummary {
	return PurchaseSummary{
		PurchaseID:       e.ID,
		Description:      e.Description,
		TransactionDate:  e.TransactionDate.Format(domain.DateLayout),
		OriginalAmount:   amount(e.OriginalAmount),
		OriginalCurrency: e.OriginalAmount.Currency(),
		AmountInBase:     amount(e.AmountInBase),
		CreatedAt:        e.CreatedAt,
	}
}

// ListPurchasesResponse represents a page of purchases, newest first.
type ListPurchasesResponse struct {
	CardID    string            `json:"cardId"`
	Purchases []PurchaseSummary `json:"purchases"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// PurchasesFromDomain converts ledger entries to listing rows.
func PurchasesFromDomain(entries []*domain.LedgerEntry) []PurchaseSummary {
	result := make([]PurchaseSummary, len(entries))
	for i, e := range entries {
		result[i] = PurchaseSummaryFromDomain(e)
	}
	return result
}

// PurchaseResponse is a purchase shown in a requested currency.
type PurchaseResponse struct {
	PurchaseSummary
	CardID                  string          `json:"cardId"`
	OriginalAmountFormatted string          `json:"originalAmountFormatted"`
	TargetCurrency          string          `json:"targetCurrency"`
	ExchangeRateUsed        decimal.Decimal `json:"exchangeRateUsed"`
	ConvertedAmount         string          `json:"convertedAmount"`
	ConvertedFormatted      string          `json:"convertedAmountFormatted"`
	AmountInWords           string          `json:"amountInWords"`
}

// PurchaseFromView converts a use case view to a response.
func PurchaseFromView(v *usecase.PurchaseView) *PurchaseResponse {
	return &PurchaseResponse{
		PurchaseSummary:         PurchaseSummaryFromDomain(v.Entry),
		CardID:                  v.Entry.CardID,
		OriginalAmountFormatted: v.Entry.OriginalAmount.Format(),
		TargetCurrency:          v.Converted.Currency(),
		ExchangeRateUsed:        v.Rate,
		ConvertedAmount:         amount(v.Converted),
		ConvertedFormatted:      v.Converted.Format(),
		AmountInWords:           domain.SpellOut(v.Converted),
	}
}

// TotalSpendResponse represents a card's total spend.
type TotalSpendResponse struct {
	CardID              string `json:"cardId"`
	TotalSpend          string `json:"totalSpend"`
	TotalSpendFormatted string `json:"totalSpendFormatted"`
	Currency            string `json:"currency"`
}

// TotalSpendFromDomain builds a TotalSpendResponse.
func TotalSpendFromDomain(cardID string, total domain.Money) *TotalSpendResponse {
	return &TotalSpendResponse{
		CardID:              cardID,
		TotalSpend:          amount(total),
		TotalSpendFormatted: total.Format(),
		Currency:            total.Currency(),
	}
}

// AvailableBalanceResponse represents a card's remaining credit.
type AvailableBalanceResponse struct {
	CardID                             string          `json:"cardId"`
	CreditLimitFormatted               string          `json:"creditLimitFormatted"`
	TotalSpendFormatted                string          `json:"totalSpendFormatted"`
	Available                          string          `json:"available"`
	AvailableFormatted                 string          `json:"availableFormatted"`
	TargetCurrency                     string          `json:"targetCurrency"`
	ExchangeRateUsed                   decimal.Decimal `json:"exchangeRateUsed"`
	RateDate                           string          `json:"rateDate"`
	AvailableInTargetCurrency          string          `json:"availableInTargetCurrency"`
	AvailableInTargetCurrencyFormatted string          `json:"availableInTargetCurrencyFormatted"`
}

// BalanceFromView converts a use case view to a response.
func BalanceFromView(v *usecase.BalanceView) *AvailableBalanceResponse {
	return &AvailableBalanceResponse{
		CardID:                             v.CardID,
		CreditLimitFormatted:               v.CreditLimit.Format(),
		TotalSpendFormatted:                v.TotalSpend.Format(),
		Available:                          amount(v.Available),
		AvailableFormatted:                 v.Available.Format(),
		TargetCurrency:                     v.Converted.Currency(),
		ExchangeRateUsed:                   v.Rate,
		RateDate:                           v.RateDate.Format(domain.DateLayout),
		AvailableInTargetCurrency:          amount(v.Converted),
		AvailableInTargetCurrencyFormatted: v.Converted.Format(),
	}
}

// ReconciliationResponse reports projection drift for a card.
type ReconciliationResponse struct {
	CardID          string    `json:"cardId"`
	ProjectedSpend  string    `json:"projectedSpend"`
	CalculatedSpend string    `json:"calculatedSpend"`
	Difference      string    `json:"difference"`
	IsReconciled    bool      `json:"isReconciled"`
	CheckedAt       time.Time `json:"checkedAt"`
}

// ReconciliationFromResult converts a use case result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		CardID:          r.CardID,
		ProjectedSpend:  r.ProjectedSpend.StringFixed(domain.LedgerScale),
		CalculatedSpend: r.CalculatedSpend.StringFixed(domain.LedgerScale),
		Difference:      r.Difference.StringFixed(domain.LedgerScale),
		IsReconciled:    r.IsReconciled,
		CheckedAt:       r.CheckedAt,
	}
}

// FXRate is one row of the rate table.
type FXRate struct {
	Currency      string          `json:"currency"`
	RateDate      string          `json:"rateDate"`
	USDToCurrency decimal.Decimal `json:"usdToCurrency"`
}

// FXRatesResponse lists the loaded rate table.
type FXRatesResponse struct {
	Base  string   `json:"base"`
	Rates []FXRate `json:"rates"`
}

// FXRatesFromDomain converts rate rows to a response.
func FXRatesFromDomain(base string, rows []domain.RateRow) *FXRatesResponse {
	rates := make([]FXRate, len(rows))
	for i, r := range rows {
		rates[i] = FXRate{
			Currency:      r.Currency,
			RateDate:      r.RateDate.Format(domain.DateLayout),
			USDToCurrency: r.USDToCurrency,
		}
	}
	return &FXRatesResponse{Base: base, Rates: rates}
}

func amount(m domain.Money) string {
	return m.Amount().StringFixed(domain.LedgerScale)
}
