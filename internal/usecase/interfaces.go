package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// CardRepository defines data access for cards.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	// LockForAppend acquires exclusive append intent on the card for the
	// lifetime of tx. It returns domain.ErrCardNotFound for unknown cards and
	// domain.ErrCardBusy when the lock cannot be taken in time.
	LockForAppend(ctx context.Context, tx Transaction, id string) (*domain.Card, error)
}

// LedgerEntryRepository defines data access for ledger entries.
type LedgerEntryRepository interface {
	// InsertIfAbsent stores entry unless (card_id, idempotency_key) already
	// exists. The uniqueness constraint decides, not a prior read.
	InsertIfAbsent(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) (bool, error)
	GetByIdempotencyKey(ctx context.Context, tx Transaction, cardID, key string) (*domain.LedgerEntry, error)
	GetPurchase(ctx context.Context, id string) (*domain.LedgerEntry, error)
	ListByCard(ctx context.Context, cardID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByCard(ctx context.Context, cardID string) (decimal.Decimal, error)
}

// SpendProjectionRepository defines data access for per-card running totals.
type SpendProjectionRepository interface {
	// Get returns the projection as seen by tx, or an empty one for cards
	// without purchases.
	Get(ctx context.Context, tx Transaction, cardID string) (*domain.SpendProjection, error)
	Upsert(ctx context.Context, tx Transaction, projection *domain.SpendProjection) error
	GetTotalSpend(ctx context.Context, cardID string) (decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	FetchBatch(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Delete(ctx context.Context, id string) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier reruns an operation on transient concurrency failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// RateResolver answers as-of exchange rate lookups.
type RateResolver interface {
	GetRate(currency string, asOf time.Time) (decimal.Decimal, error)
}

// CardCache caches immutable card records.
type CardCache interface {
	Get(ctx context.Context, id string) (*domain.Card, error)
	Set(ctx context.Context, card *domain.Card) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// LedgerMetrics records append outcomes.
type LedgerMetrics interface {
	ObserveAppend(outcome string, duration time.Duration)
}
