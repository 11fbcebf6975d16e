package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cardledger/internal/adapter/http/dto"
	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// CardService defines the card operations needed by CardHandler.
type CardService interface {
	CreateCard(ctx context.Context, input usecase.CreateCardInput) (*domain.Card, error)
	GetCard(ctx context.Context, id string) (*domain.Card, error)
}

// BalanceService answers spend and balance queries.
type BalanceService interface {
	GetTotalSpend(ctx context.Context, cardID string) (domain.Money, error)
	GetAvailableBalance(ctx context.Context, cardID, target string) (*usecase.BalanceView, error)
}

// Reconciler compares a card's projection with its ledger.
type Reconciler interface {
	ReconcileCard(ctx context.Context, cardID string) (*usecase.ReconciliationResult, error)
}

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	cards      CardService
	balances   BalanceService
	reconciler Reconciler
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cards CardService, balances BalanceService, reconciler Reconciler) *CardHandler {
	return &CardHandler{cards: cards, balances: balances, reconciler: reconciler}
}

// Create creates a new card.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body: "+err.Error())
		return
	}

	card, err := h.cards.CreateCard(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/cards/"+card.ID)
	writeJSON(w, http.StatusCreated, dto.CardFromDomain(card))
}

// Get retrieves a card by ID.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CardFromDomain(card))
}

// TotalSpend returns the card's spend in USD.
func (h *CardHandler) TotalSpend(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	total, err := h.balances.GetTotalSpend(r.Context(), cardID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TotalSpendFromDomain(cardID, total))
}

// AvailableBalance returns the remaining credit in ?currency= (USD by default).
func (h *CardHandler) AvailableBalance(w http.ResponseWriter, r *http.Request) {
	view, err := h.balances.GetAvailableBalance(r.Context(), chi.URLParam(r, "cardID"), r.URL.Query().Get("currency"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromView(view))
}

// Reconcile recomputes the card's spend from its ledger entries.
func (h *CardHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.ReconcileCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
