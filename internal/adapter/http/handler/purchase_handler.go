package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cardledger/internal/adapter/http/dto"
	"github.com/iho/cardledger/internal/adapter/http/middleware"
	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// PurchaseService defines the purchase operations needed by PurchaseHandler.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, input usecase.CreatePurchaseInput) (*domain.LedgerEntry, error)
	GetPurchase(ctx context.Context, purchaseID, target string) (*usecase.PurchaseView, error)
	ListPurchases(ctx context.Context, cardID string, limit, offset int) ([]*domain.LedgerEntry, error)
}

// PurchaseHandler handles purchase-related HTTP requests.
type PurchaseHandler struct {
	purchases PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchases PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Create records a purchase. It must run behind middleware.IdempotencyKey;
// replays with the same key answer 201 with the original purchase ID.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	key, ok := middleware.IdempotencyKeyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "validation", "missing idempotency key")
		return
	}

	var req dto.CreatePurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body: "+err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "cardID"), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entry, err := h.purchases.CreatePurchase(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/purchases/"+entry.ID)
	writeJSON(w, http.StatusCreated, dto.PurchaseCreatedResponse{
		PurchaseID:     entry.ID,
		IdempotencyKey: entry.IdempotencyKey,
	})
}

// Get returns a purchase converted into ?currency= (USD by default).
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.purchases.GetPurchase(r.Context(), chi.URLParam(r, "purchaseID"), r.URL.Query().Get("currency"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PurchaseFromView(view))
}

// ListByCard lists a card's purchases, newest first.
func (h *PurchaseHandler) ListByCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	limit, offset := domain.ValidatePagination(
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)

	entries, err := h.purchases.ListPurchases(r.Context(), cardID, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListPurchasesResponse{
		CardID:    cardID,
		Purchases: dto.PurchasesFromDomain(entries),
		Limit:     limit,
		Offset:    offset,
	})
}
