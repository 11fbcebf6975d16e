package handler

import (
	"net/http"

	"github.com/iho/cardledger/internal/adapter/http/dto"
	"github.com/iho/cardledger/internal/domain"
)

// RateLister exposes the loaded rate table.
type RateLister interface {
	Base() string
	Rates() []domain.RateRow
}

// FXRateHandler serves the exchange rate table.
type FXRateHandler struct {
	rates RateLister
}

// NewFXRateHandler creates a new FXRateHandler.
func NewFXRateHandler(rates RateLister) *FXRateHandler {
	return &FXRateHandler{rates: rates}
}

// List returns all rates, or those of ?currency= only.
func (h *FXRateHandler) List(w http.ResponseWriter, r *http.Request) {
	rows := h.rates.Rates()

	if code := domain.NormalizeCurrency(r.URL.Query().Get("currency")); code != "" {
		filtered := rows[:0:0]
		for _, row := range rows {
			if row.Currency == code {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	writeJSON(w, http.StatusOK, dto.FXRatesFromDomain(h.rates.Base(), rows))
}
