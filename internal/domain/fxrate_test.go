package domain

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestRateTable(t *testing.T) *RateTable {
	t.Helper()
	table, err := NewRateTable("USD", []RateRow{
		{Currency: "AUD", RateDate: date("2025-01-01"), USDToCurrency: decimal.RequireFromString("1.5")},
		{Currency: "eur", RateDate: date("2024-12-31"), USDToCurrency: decimal.RequireFromString("0.9")},
		{Currency: "EUR", RateDate: date("2025-03-31"), USDToCurrency: decimal.RequireFromString("0.92")},
		{Currency: "EUR", RateDate: date("2025-06-30"), USDToCurrency: decimal.RequireFromString("0.95")},
	})
	if err != nil {
		t.Fatalf("NewRateTable: %v", err)
	}
	return table
}

func TestRateTableGetRate(t *testing.T) {
	t.Parallel()
	table := newTestRateTable(t)

	tests := []struct {
		name     string
		currency string
		asOf     string
		want     string
	}{
		{"base currency", "USD", "1999-01-01", "1"},
		{"base currency lowercase", " usd ", "2025-01-01", "1"},
		{"within window", "AUD", "2025-03-01", "1.5"},
		{"same day", "AUD", "2025-01-01", "1.5"},
		{"window edge", "AUD", "2025-07-01", "1.5"},
		{"latest qualifying", "EUR", "2025-05-15", "0.92"},
		{"ignores future rows", "eur", "2025-03-30", "0.9"},
		{"newest", "EUR", "2025-12-01", "0.95"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.GetRate(tt.currency, date(tt.asOf))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRateTableUnavailable(t *testing.T) {
	t.Parallel()
	table := newTestRateTable(t)

	tests := []struct {
		name      string
		currency  string
		asOf      string
		wantStart string
	}{
		{"outside window", "AUD", "2025-08-01", "2025-02-01"},
		{"before first rate", "AUD", "2024-12-31", "2024-06-30"},
		{"unknown currency", "GBP", "2025-01-01", "2024-07-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.GetRate(tt.currency, date(tt.asOf))
			if !errors.Is(err, ErrRateUnavailable) {
				t.Fatalf("expected ErrRateUnavailable, got %v", err)
			}
			var rue *RateUnavailableError
			if !errors.As(err, &rue) {
				t.Fatalf("expected *RateUnavailableError, got %T", err)
			}
			if rue.Currency != tt.currency {
				t.Errorf("currency: expected %s, got %s", tt.currency, rue.Currency)
			}
			if !rue.WindowStart.Equal(date(tt.wantStart)) {
				t.Errorf("window start: expected %s, got %s", tt.wantStart, rue.WindowStart.Format(DateLayout))
			}
			if !rue.AsOf.Equal(date(tt.asOf)) {
				t.Errorf("as of: expected %s, got %s", tt.asOf, rue.AsOf.Format(DateLayout))
			}
		})
	}
}

func TestRateTableInvalidCurrency(t *testing.T) {
	t.Parallel()
	table := newTestRateTable(t)

	for _, code := range []string{"", "US", "EURO", "12A"} {
		if _, err := table.GetRate(code, date("2025-01-01")); !errors.Is(err, ErrInvalidCurrency) {
			t.Errorf("%q: expected ErrInvalidCurrency, got %v", code, err)
		}
	}
}

func TestNewRateTableRejectsBadRows(t *testing.T) {
	t.Parallel()

	_, err := NewRateTable("USD", []RateRow{{Currency: "AUD", RateDate: date("2025-01-01"), USDToCurrency: decimal.Zero}})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = NewRateTable("USD", []RateRow{{Currency: "A1D", RateDate: date("2025-01-01"), USDToCurrency: decimal.NewFromInt(1)}})
	if !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestRateTableListing(t *testing.T) {
	t.Parallel()
	table := newTestRateTable(t)

	codes := table.Currencies()
	if len(codes) != 2 || codes[0] != "AUD" || codes[1] != "EUR" {
		t.Fatalf("unexpected currencies %v", codes)
	}

	rates := table.Rates()
	if len(rates) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rates))
	}
	if rates[1].Currency != "EUR" || !rates[1].RateDate.Equal(date("2024-12-31")) {
		t.Errorf("expected EUR 2024-12-31 second, got %s %s", rates[1].Currency, rates[1].RateDate)
	}
}

func TestRateTableConcurrentReads(t *testing.T) {
	t.Parallel()
	table := newTestRateTable(t)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := table.GetRate("AUD", date("2025-03-01")); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestSubtractMonths(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"2025-08-31", "2025-02-28"},
		{"2024-08-31", "2024-02-29"},
		{"2025-03-01", "2024-09-01"},
		{"2025-07-15", "2025-01-15"},
	}
	for _, tt := range tests {
		if got := SubtractMonths(date(tt.in), 6); !got.Equal(date(tt.want)) {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.want, got.Format(DateLayout))
		}
	}
}
