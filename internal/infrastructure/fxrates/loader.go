// Package fxrates loads published exchange rates into a domain.RateTable.
package fxrates

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

type row struct {
	Currency      string          `json:"currency"`
	RateDate      string          `json:"rateDate"`
	USDToCurrency decimal.Decimal `json:"usdToCurrency"`
}

// LoadFile reads a JSON array of {currency, rateDate, usdToCurrency} rows.
func LoadFile(path string) (*domain.RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fx rates: %w", err)
	}
	defer f.Close()

	table, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Load parses rows from r. One bad row rejects the whole document.
func Load(r io.Reader) (*domain.RateTable, error) {
	var raw []row
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode fx rates: %w", err)
	}

	rows := make([]domain.RateRow, 0, len(raw))
	for i, rr := range raw {
		date, err := time.Parse(domain.DateLayout, strings.TrimSpace(rr.RateDate))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad rateDate %q: %w", i, rr.RateDate, err)
		}
		rows = append(rows, domain.RateRow{
			Currency:      rr.Currency,
			RateDate:      date,
			USDToCurrency: rr.USDToCurrency,
		})
	}

	return domain.NewRateTable(domain.BaseCurrency, rows)
}
