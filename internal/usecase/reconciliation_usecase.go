package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

// ReconciliationUseCase checks that spend projections match their ledgers.
type ReconciliationUseCase struct {
	cardRepo       CardRepository
	entryRepo      LedgerEntryRepository
	projectionRepo SpendProjectionRepository
	clock          Clock
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	cardRepo CardRepository,
	entryRepo LedgerEntryRepository,
	projectionRepo SpendProjectionRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		cardRepo:       cardRepo,
		entryRepo:      entryRepo,
		projectionRepo: projectionRepo,
		clock:          SystemClock,
	}
}

// ReconciliationResult compares the projected total with the ledger sum.
type ReconciliationResult struct {
	CardID          string
	ProjectedSpend  decimal.Decimal
	CalculatedSpend decimal.Decimal
	Difference      decimal.Decimal
	IsReconciled    bool
	CheckedAt       time.Time
}

// ReconcileCard recomputes a card's spend from its entries.
func (uc *ReconciliationUseCase) ReconcileCard(ctx context.Context, cardID string) (*ReconciliationResult, error) {
	if _, err := uc.cardRepo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}

	projected, err := uc.projectionRepo.GetTotalSpend(ctx, cardID)
	if err != nil {
		return nil, err
	}
	calculated, err := uc.entryRepo.SumByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	diff := projected.Sub(calculated)
	return &ReconciliationResult{
		CardID:          cardID,
		ProjectedSpend:  projected.Round(domain.LedgerScale),
		CalculatedSpend: calculated.Round(domain.LedgerScale),
		Difference:      diff.Round(domain.LedgerScale),
		IsReconciled:    diff.IsZero(),
		CheckedAt:       uc.clock.Now(),
	}, nil
}

// WithClock replaces the wall clock, mainly for tests.
func (uc *ReconciliationUseCase) WithClock(c Clock) *ReconciliationUseCase {
	uc.clock = c
	return uc
}
