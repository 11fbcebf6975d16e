package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
	"github.com/iho/cardledger/internal/usecase/mocks"
)

func TestBalanceUseCase_GetAvailableBalance(t *testing.T) {
	f := newLedgerFixture(t, time.Second)
	f.addCard(t, "card-1", "100")
	_, err := f.uc.AppendPurchase(context.Background(), purchase("card-1", "k", "33.33"))
	require.NoError(t, err)

	clock := mocks.NewFixedClock(time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC))
	cards := usecase.NewCardUseCase(f.cards, nil, nil)
	uc := usecase.NewBalanceUseCase(cards, f.projections, testRates(t)).WithClock(clock)

	view, err := uc.GetAvailableBalance(context.Background(), "card-1", "aud")
	require.NoError(t, err)
	assert.True(t, view.Available.Amount().Equal(decimal.RequireFromString("66.67")))
	assert.True(t, view.TotalSpend.Amount().Equal(decimal.RequireFromString("33.33")))
	assert.Equal(t, "AUD", view.Converted.Currency())
	// 66.67 * 1.5 = 100.005, rounded half away from zero
	assert.True(t, view.Converted.Amount().Equal(decimal.RequireFromString("100.01")), "got %s", view.Converted.Amount())
	assert.Equal(t, day("2025-03-15"), view.RateDate)

	base, err := uc.GetAvailableBalance(context.Background(), "card-1", "")
	require.NoError(t, err)
	assert.Equal(t, "USD", base.Converted.Currency())
	assert.True(t, base.Rate.Equal(decimal.NewFromInt(1)))
}

func TestBalanceUseCase_UsesTodayForRates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cards := mocks.NewMockCardRepository(ctrl)
	cards.EXPECT().GetByID(gomock.Any(), "card-1").Return(&domain.Card{ID: "card-1", CreditLimit: domain.MustMoney("100", "USD")}, nil)
	projections := mocks.NewMockSpendProjectionRepository(ctrl)
	projections.EXPECT().GetTotalSpend(gomock.Any(), "card-1").Return(decimal.NewFromInt(20), nil)
	rates := mocks.NewMockRateResolver(ctrl)
	rates.EXPECT().GetRate("EUR", day("2026-01-10")).Return(decimal.RequireFromString("0.5"), nil)

	uc := usecase.NewBalanceUseCase(usecase.NewCardUseCase(cards, nil, nil), projections, rates).
		WithClock(mocks.NewFixedClock(time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)))

	view, err := uc.GetAvailableBalance(context.Background(), "card-1", "EUR")
	require.NoError(t, err)
	assert.True(t, view.Converted.Amount().Equal(decimal.NewFromInt(40)))
}

func TestBalanceUseCase_NeverNegative(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cards := mocks.NewMockCardRepository(ctrl)
	cards.EXPECT().GetByID(gomock.Any(), "card-1").Return(&domain.Card{ID: "card-1", CreditLimit: domain.MustMoney("100", "USD")}, nil)
	projections := mocks.NewMockSpendProjectionRepository(ctrl)
	// spend above the limit after a manual data correction
	projections.EXPECT().GetTotalSpend(gomock.Any(), "card-1").Return(decimal.NewFromInt(130), nil)

	uc := usecase.NewBalanceUseCase(usecase.NewCardUseCase(cards, nil, nil), projections, testRates(t))

	view, err := uc.GetAvailableBalance(context.Background(), "card-1", "USD")
	require.NoError(t, err)
	assert.True(t, view.Available.IsZero())
	assert.False(t, view.Converted.IsNegative())
}

func TestBalanceUseCase_Errors(t *testing.T) {
	f := newLedgerFixture(t, time.Second)
	f.addCard(t, "card-1", "100")
	clock := mocks.NewFixedClock(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	uc := usecase.NewBalanceUseCase(usecase.NewCardUseCase(f.cards, nil, nil), f.projections, testRates(t)).WithClock(clock)
	ctx := context.Background()

	_, err := uc.GetAvailableBalance(ctx, "missing", "USD")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = uc.GetAvailableBalance(ctx, "card-1", "GBP")
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)

	_, err = uc.GetAvailableBalance(ctx, "card-1", "E1R")
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestBalanceUseCase_GetTotalSpend(t *testing.T) {
	f := newLedgerFixture(t, time.Second)
	f.addCard(t, "card-1", "100")
	uc := usecase.NewBalanceUseCase(usecase.NewCardUseCase(f.cards, nil, nil), f.projections, testRates(t))
	ctx := context.Background()

	total, err := uc.GetTotalSpend(ctx, "card-1")
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "cards without purchases have zero spend")
	assert.Equal(t, "USD", total.Currency())

	_, err = f.uc.AppendPurchase(ctx, purchase("card-1", "k", "42.5"))
	require.NoError(t, err)

	total, err = uc.GetTotalSpend(ctx, "card-1")
	require.NoError(t, err)
	assert.True(t, total.Amount().Equal(decimal.RequireFromString("42.50")))

	_, err = uc.GetTotalSpend(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}
