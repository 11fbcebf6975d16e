package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	card, err := NewCard("c1", "4111111111111111", decimal.RequireFromString("1000.005"), "usd", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.CreditLimit.Currency() != BaseCurrency {
		t.Errorf("expected USD, got %s", card.CreditLimit.Currency())
	}
	if !card.CreditLimit.Amount().Equal(decimal.RequireFromString("1000.01")) {
		t.Errorf("expected limit rounded to 1000.01, got %s", card.CreditLimit.Amount())
	}
	if card.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC created_at")
	}
	if card.MaskedNumber() != "************1111" {
		t.Errorf("unexpected mask %s", card.MaskedNumber())
	}

	if _, err := NewCard("c2", "123", decimal.NewFromInt(1), "USD", now); !errors.Is(err, ErrInvalidCardNumber) {
		t.Errorf("expected ErrInvalidCardNumber, got %v", err)
	}
	if _, err := NewCard("c3", "4111111111111111", decimal.NewFromInt(1), "EUR", now); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("expected ErrUnsupportedCurrency, got %v", err)
	}
	if card, err := NewCard("c4", "4111111111111111", decimal.RequireFromString("0.004"), "USD", now); !errors.Is(err, ErrInvalidCreditLimit) {
		t.Errorf("expected ErrInvalidCreditLimit for 0.004, got card %v err %v", card, err)
	}
}

func TestCardAvailable(t *testing.T) {
	t.Parallel()

	card := &Card{ID: "c1", CreditLimit: MustMoney("100", "USD")}

	tests := []struct {
		spent string
		want  string
	}{
		{"0", "100"},
		{"80", "20"},
		{"100", "0"},
		{"150", "0"},
		{"33.333", "66.67"},
	}
	for _, tt := range tests {
		got, err := card.Available(MustMoney(tt.spent, "USD"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Amount().Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("spent %s: expected %s, got %s", tt.spent, tt.want, got.Amount())
		}
		if got.IsNegative() {
			t.Errorf("spent %s: available must never be negative", tt.spent)
		}
	}

	if _, err := card.Available(MustMoney("1", "EUR")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestSpendProjectionApply(t *testing.T) {
	t.Parallel()

	limit := MustMoney("100", "USD")
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	p := EmptyProjection("c1")
	p, err := p.Apply(MustMoney("80", "USD"), limit, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := p.Apply(MustMoney("25", "USD"), limit, at); !errors.Is(err, ErrCreditLimitExceeded) {
		t.Fatalf("expected ErrCreditLimitExceeded, got %v", err)
	}
	if !p.TotalSpend.Amount().Equal(decimal.NewFromInt(80)) {
		t.Errorf("projection must be unchanged after rejection, got %s", p.TotalSpend.Amount())
	}

	full, err := p.Apply(MustMoney("20", "USD"), limit, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !full.TotalSpend.Amount().Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100, got %s", full.TotalSpend.Amount())
	}
	if full.LastEntryAt == nil || !full.LastEntryAt.Equal(at) {
		t.Errorf("expected last entry at %s", at)
	}
	if _, err := full.Apply(MustMoney("0.01", "USD"), limit, at); !errors.Is(err, ErrCreditLimitExceeded) {
		t.Errorf("expected ErrCreditLimitExceeded, got %v", err)
	}
}

func TestNewPurchaseCreatedEvent(t *testing.T) {
	t.Parallel()

	entry := &LedgerEntry{
		ID:              "p1",
		CardID:          "c1",
		TransactionDate: date("2025-03-01"),
		AmountInBase:    MustMoney("12.5", "USD"),
		CreatedAt:       time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	ev := NewPurchaseCreatedEvent("e1", entry)

	if ev.AggregateType != AggregateTypeCard || ev.EventType != EventTypePurchaseCreated || ev.AggregateID != "c1" {
		t.Errorf("unexpected envelope %+v", ev)
	}
	if ev.Payload["amount"] != "12.50" || ev.Payload["transactionDate"] != "2025-03-01" || ev.Payload["purchaseId"] != "p1" {
		t.Errorf("unexpected payload %v", ev.Payload)
	}
}
