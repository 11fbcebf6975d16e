package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cardledger/internal/usecase"
)

// CardRepository implements usecase.CardRepository.
type CardRepository struct {
	queries     *generated.Queries
	lockTimeout time.Duration
}

// NewCardRepository creates a new CardRepository. lockTimeout bounds how long
// LockForAppend waits for another append on the same card; zero waits forever.
func NewCardRepository(db generated.DBTX, lockTimeout time.Duration) *CardRepository {
	return &CardRepository{
		queries:     generated.New(db),
		lockTimeout: lockTimeout,
	}
}

// Create stores a new card.
func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	return r.queries.CreateCard(ctx, generated.CreateCardParams{
		CardID:       card.ID,
		CardNumber:   card.Number,
		CreditLimit:  decimalToNumeric(card.CreditLimit.Amount()),
		CurrencyCode: card.CreditLimit.Currency(),
		CreatedAt:    timeToPgTimestamptz(card.CreatedAt),
	})
}

// GetByID retrieves a card by ID.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	row, err := r.queries.GetCardByID(ctx, id)
	if err != nil {
		return nil, cardLookupError(err)
	}
	return rowToCard(row)
}

// LockForAppend takes the card's row lock for the rest of tx. Appends to the
// same card queue here; a wait longer than the lock timeout fails with
// domain.ErrCardBusy.
func (r *CardRepository) LockForAppend(ctx context.Context, tx usecase.Transaction, id string) (*domain.Card, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	if r.lockTimeout > 0 {
		if err := queries.SetLocalLockTimeout(ctx, lockTimeoutSetting(r.lockTimeout)); err != nil {
			return nil, fmt.Errorf("set lock timeout: %w", err)
		}
	}

	row, err := queries.GetCardByIDForUpdate(ctx, id)
	if err != nil {
		if pgErrorCode(err) == pgErrLockNotAvailable {
			return nil, fmt.Errorf("%w: card %s", domain.ErrCardBusy, id)
		}
		return nil, cardLookupError(err)
	}
	return rowToCard(row)
}

func cardLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || pgErrorCode(err) == pgErrInvalidTextRepr {
		return domain.ErrCardNotFound
	}
	return err
}

func rowToCard(row generated.Card) (*domain.Card, error) {
	limit, err := domain.NewMoney(numericToDecimal(row.CreditLimit), row.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", row.CardID, err)
	}
	return &domain.Card{
		ID:          row.CardID,
		Number:      row.CardNumber,
		CreditLimit: limit,
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}, nil
}

// lockTimeoutSetting renders d for Postgres' lock_timeout in whole
// milliseconds, rounding up. "0ms" would disable the bound.
func lockTimeoutSetting(d time.Duration) string {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return fmt.Sprintf("%dms", int64(ms))
}
