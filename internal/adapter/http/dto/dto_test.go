package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-03-31", want: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
		{in: " 2025-03-31 ", want: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-31T23:15:00Z", want: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-01T23:30:00-05:00", want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-02T01:00:00+03:00", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "", wantErr: true},
		{in: "31/03/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTransactionDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestCreateCardRequestDefaultsCurrency(t *testing.T) {
	req := CreateCardRequest{CardNumber: " 4111111111111111 ", CreditLimit: decimal.NewFromInt(10)}
	input := req.ToUseCaseInput()

	assert.Equal(t, "USD", input.Currency)
	assert.Equal(t, "4111111111111111", input.Number)
}

func TestPurchaseFromView(t *testing.T) {
	entry := &domain.LedgerEntry{
		ID:              "entry-1",
		CardID:          "card-1",
		Description:     "Hotel",
		TransactionDate: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		OriginalAmount:  domain.MustMoney("100", "EUR"),
		AmountInBase:    domain.MustMoney("125", "USD"),
	}
	view := &usecase.PurchaseView{
		Entry:     entry,
		Converted: domain.MustMoney("123.45", "USD"),
		Rate:      decimal.NewFromInt(1),
	}

	resp := PurchaseFromView(view)

	assert.Equal(t, "100.00", resp.OriginalAmount)
	assert.Equal(t, "100,00 €", resp.OriginalAmountFormatted)
	assert.Equal(t, "125.00", resp.AmountInBase)
	assert.Equal(t, "USD", resp.TargetCurrency)
	assert.Equal(t, "$123.45", resp.ConvertedFormatted)
	assert.Equal(t, "One Hundred And Twenty Three Dollars And Forty Five Cents", resp.AmountInWords)
}

func TestBalanceFromView(t *testing.T) {
	resp := BalanceFromView(&usecase.BalanceView{
		CardID:      "card-1",
		CreditLimit: domain.MustMoney("1000", "USD"),
		TotalSpend:  domain.MustMoney("250.5", "USD"),
		Available:   domain.MustMoney("749.5", "USD"),
		Converted:   domain.MustMoney("112425", "JPY"),
		Rate:        decimal.NewFromInt(150),
		RateDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "749.50", resp.Available)
	assert.Equal(t, "JPY", resp.TargetCurrency)
	assert.Equal(t, "112425.00", resp.AvailableInTargetCurrency)
	assert.Equal(t, "¥112,425", resp.AvailableInTargetCurrencyFormatted)
	assert.Equal(t, "2025-04-01", resp.RateDate)
}
