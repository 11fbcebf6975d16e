package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RateLookbackMonths bounds how stale a usable exchange rate may be.
const RateLookbackMonths = 6

// RateRow is one published exchange rate: 1 USD buys USDToCurrency units.
type RateRow struct {
	Currency      string
	RateDate      time.Time
	USDToCurrency decimal.Decimal
}

// RateTable answers as-of rate lookups. It is immutable once built and safe
// for concurrent readers.
type RateTable struct {
	base   string
	byCode map[string][]RateRow // sorted by RateDate ascending
}

// NewRateTable indexes rows by currency. Rows must have a 3-letter code and a
// positive rate; on duplicate (currency, date) pairs the last row wins.
func NewRateTable(base string, rows []RateRow) (*RateTable, error) {
	base = NormalizeCurrency(base)
	if !isAlpha3(base) {
		return nil, fmt.Errorf("%w: base %q", ErrInvalidCurrency, base)
	}

	byDate := make(map[string]map[time.Time]RateRow)
	for i, r := range rows {
		code := NormalizeCurrency(r.Currency)
		if !isAlpha3(code) {
			return nil, fmt.Errorf("%w: row %d has %q", ErrInvalidCurrency, i, r.Currency)
		}
		if !r.USDToCurrency.IsPositive() {
			return nil, fmt.Errorf("%w: row %d (%s) has non-positive rate %s", ErrInvalidAmount, i, code, r.USDToCurrency)
		}
		if byDate[code] == nil {
			byDate[code] = make(map[time.Time]RateRow)
		}
		date := DateOnly(r.RateDate)
		byDate[code][date] = RateRow{Currency: code, RateDate: date, USDToCurrency: r.USDToCurrency}
	}

	t := &RateTable{base: base, byCode: make(map[string][]RateRow, len(byDate))}
	for code, dates := range byDate {
		list := make([]RateRow, 0, len(dates))
		for _, r := range dates {
			list = append(list, r)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].RateDate.Before(list[j].RateDate) })
		t.byCode[code] = list
	}
	return t, nil
}

// Base returns the currency whose rate is always 1.
func (t *RateTable) Base() string { return t.base }

// GetRate returns how many units of currency one base unit bought on asOf,
// using the newest rate dated within the lookback window ending at asOf.
func (t *RateTable) GetRate(currency string, asOf time.Time) (decimal.Decimal, error) {
	code := NormalizeCurrency(currency)
	if !isAlpha3(code) {
		return decimal.Zero, fmt.Errorf("%w: %q must be 3 letters", ErrInvalidCurrency, currency)
	}
	if code == t.base {
		return decimal.NewFromInt(1), nil
	}

	asOf = DateOnly(asOf)
	from := SubtractMonths(asOf, RateLookbackMonths)
	rows := t.byCode[code]

	// first row dated after asOf; the candidate is the one before it
	i := sort.Search(len(rows), func(i int) bool { return rows[i].RateDate.After(asOf) })
	if i == 0 || rows[i-1].RateDate.Before(from) {
		return decimal.Zero, &RateUnavailableError{Currency: code, AsOf: asOf, WindowStart: from}
	}
	return rows[i-1].USDToCurrency, nil
}

// Rates lists every row ordered by currency then date.
func (t *RateTable) Rates() []RateRow {
	codes := t.Currencies()
	var out []RateRow
	for _, c := range codes {
		out = append(out, t.byCode[c]...)
	}
	return out
}

// Currencies lists the currencies that have at least one rate, sorted.
func (t *RateTable) Currencies() []string {
	codes := make([]string, 0, len(t.byCode))
	for c := range t.byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// SubtractMonths moves d back by n calendar months, clamping the day to the
// end of the target month (Aug 31 minus 6 months is Feb 28 or 29).
func SubtractMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, d.Location()).AddDate(0, -n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}
