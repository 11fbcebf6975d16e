package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cardledger/internal/usecase"
)

// SpendProjectionRepository implements usecase.SpendProjectionRepository.
type SpendProjectionRepository struct {
	queries *generated.Queries
}

// NewSpendProjectionRepository creates a new SpendProjectionRepository.
func NewSpendProjectionRepository(db generated.DBTX) *SpendProjectionRepository {
	return &SpendProjectionRepository{queries: generated.New(db)}
}

// Get reads the projection inside tx. A card without purchases has an
// empty projection rather than no projection.
func (r *SpendProjectionRepository) Get(ctx context.Context, tx usecase.Transaction, cardID string) (*domain.SpendProjection, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetSpendProjection(ctx, cardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EmptyProjection(cardID), nil
		}
		return nil, err
	}

	p := &domain.SpendProjection{
		CardID:     row.CardID,
		TotalSpend: domain.USD(numericToDecimal(row.TotalSpend)),
	}
	if row.LastEntryAt.Valid {
		t := row.LastEntryAt.Time.UTC()
		p.LastEntryAt = &t
	}
	return p, nil
}

// Upsert writes the projection inside tx.
func (r *SpendProjectionRepository) Upsert(ctx context.Context, tx usecase.Transaction, p *domain.SpendProjection) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	updatedAt := timeToPgTimestamptz(time.Now().UTC())
	if p.LastEntryAt != nil {
		updatedAt = timeToPgTimestamptz(*p.LastEntryAt)
	}
	return queries.UpsertSpendProjection(ctx, generated.UpsertSpendProjectionParams{
		CardID:      p.CardID,
		TotalSpend:  decimalToNumeric(p.TotalSpend.Amount()),
		LastEntryAt: optionalTimestamptz(p.LastEntryAt),
		UpdatedAt:   updatedAt,
	})
}

// GetTotalSpend returns the committed total, zero for cards without purchases.
func (r *SpendProjectionRepository) GetTotalSpend(ctx context.Context, cardID string) (decimal.Decimal, error) {
	total, err := r.queries.GetTotalSpend(ctx, cardID)
	if err != nil {
		if pgErrorCode(err) == pgErrInvalidTextRepr {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return numericToDecimal(total), nil
}
