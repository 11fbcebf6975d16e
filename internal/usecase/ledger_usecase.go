package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/cardledger/internal/domain"
)

// LedgerUseCase appends purchases to a card's ledger. Each append locks the
// card, checks the credit limit, inserts the entry, moves the spend
// projection and writes an outbox event in one transaction.
type LedgerUseCase struct {
	txManager      TransactionManager
	cardRepo       CardRepository
	entryRepo      LedgerEntryRepository
	projectionRepo SpendProjectionRepository
	outboxRepo     OutboxRepository
	idGen          IDGenerator

	retrier   Retrier
	clock     Clock
	metrics   LedgerMetrics
	txTimeout time.Duration
}

// LedgerOption customises a LedgerUseCase.
type LedgerOption func(*LedgerUseCase)

// WithRetrier reruns appends that fail with deadlocks or serialization errors.
func WithRetrier(r Retrier) LedgerOption {
	return func(uc *LedgerUseCase) { uc.retrier = r }
}

func WithClock(c Clock) LedgerOption {
	return func(uc *LedgerUseCase) { uc.clock = c }
}

func WithMetrics(m LedgerMetrics) LedgerOption {
	return func(uc *LedgerUseCase) { uc.metrics = m }
}

// WithTransactionTimeout bounds a single append attempt, lock wait included.
func WithTransactionTimeout(d time.Duration) LedgerOption {
	return func(uc *LedgerUseCase) { uc.txTimeout = d }
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	cardRepo CardRepository,
	entryRepo LedgerEntryRepository,
	projectionRepo SpendProjectionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...LedgerOption,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txManager:      txManager,
		cardRepo:       cardRepo,
		entryRepo:      entryRepo,
		projectionRepo: projectionRepo,
		outboxRepo:     outboxRepo,
		idGen:          idGen,
		retrier:        noopRetrier{},
		clock:          SystemClock,
		metrics:        noopMetrics{},
		txTimeout:      DefaultTransactionTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AppendPurchaseInput is a purchase already normalized to the base currency.
type AppendPurchaseInput struct {
	CardID          string
	IdempotencyKey  string
	Description     string
	TransactionDate time.Time
	OriginalAmount  domain.Money
	AmountInBase    domain.Money
}

// AppendPurchase records a purchase exactly once per (card, idempotency key).
// Replays return the stored entry, whether they race the first call or come
// after it.
func (uc *LedgerUseCase) AppendPurchase(ctx context.Context, input AppendPurchaseInput) (*domain.LedgerEntry, error) {
	input, err := normalizeAppendInput(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	entry, outcome := (*domain.LedgerEntry)(nil), OutcomeError
	err = uc.retrier.Retry(ctx, func() error {
		var attemptErr error
		entry, outcome, attemptErr = uc.appendOnce(ctx, input)
		return attemptErr
	})
	uc.metrics.ObserveAppend(outcome, time.Since(start))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (uc *LedgerUseCase) appendOnce(ctx context.Context, input AppendPurchaseInput) (*domain.LedgerEntry, string, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	// 1. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	// 2. Lock the card
	card, err := uc.cardRepo.LockForAppend(ctx, tx, input.CardID)
	if err != nil {
		return nil, outcomeOf(err), err
	}

	// 3. A replay gets the recorded entry even if the card is now at its limit
	existing, err := uc.entryRepo.GetByIdempotencyKey(ctx, tx, card.ID, input.IdempotencyKey)
	switch {
	case err == nil:
		return existing, OutcomeReplayed, nil
	case !errors.Is(err, domain.ErrPurchaseNotFound):
		return nil, OutcomeError, fmt.Errorf("lookup idempotency key: %w", err)
	}

	// 4. Credit check against the locked projection
	projection, err := uc.projectionRepo.Get(ctx, tx, card.ID)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("read spend projection: %w", err)
	}

	now := uc.clock.Now()
	next, err := projection.Apply(input.AmountInBase, card.CreditLimit, now)
	if err != nil {
		return nil, outcomeOf(err), fmt.Errorf("%w: card %s", err, card.ID)
	}

	// 5. Insert; the unique (card_id, idempotency_key) index has the last word
	entry := &domain.LedgerEntry{
		ID:              uc.idGen.Generate(),
		CardID:          card.ID,
		IdempotencyKey:  input.IdempotencyKey,
		Description:     input.Description,
		TransactionDate: input.TransactionDate,
		OriginalAmount:  input.OriginalAmount,
		AmountInBase:    input.AmountInBase,
		EntryType:       domain.EntryTypePurchase,
		CreatedAt:       now,
	}
	inserted, err := uc.entryRepo.InsertIfAbsent(ctx, tx, entry)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("insert ledger entry: %w", err)
	}
	if !inserted {
		existing, err := uc.entryRepo.GetByIdempotencyKey(ctx, tx, card.ID, input.IdempotencyKey)
		if err != nil {
			return nil, OutcomeError, fmt.Errorf("load existing entry: %w", err)
		}
		return existing, OutcomeReplayed, nil
	}

	// 6. Move the projection
	if err := uc.projectionRepo.Upsert(ctx, tx, next); err != nil {
		return nil, OutcomeError, fmt.Errorf("upsert spend projection: %w", err)
	}

	// 7. Outbox
	if err := uc.outboxRepo.Create(ctx, tx, domain.NewPurchaseCreatedEvent(uc.idGen.Generate(), entry)); err != nil {
		return nil, OutcomeError, fmt.Errorf("write outbox event: %w", err)
	}

	// 8. Commit
	if err := tx.Commit(ctx); err != nil {
		return nil, OutcomeError, fmt.Errorf("commit append: %w", err)
	}

	return entry, OutcomeRecorded, nil
}

func normalizeAppendInput(input AppendPurchaseInput) (AppendPurchaseInput, error) {
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return input, err
	}
	description, err := domain.ValidateDescription(input.Description)
	if err != nil {
		return input, err
	}
	if input.TransactionDate.IsZero() {
		return input, domain.ErrInvalidTransactionDate
	}
	if input.OriginalAmount.Currency() == "" || input.AmountInBase.Currency() == "" {
		return input, domain.ErrMissingCurrencyCode
	}
	if input.AmountInBase.Currency() != domain.BaseCurrency {
		return input, fmt.Errorf("%w: amount in base must be %s, got %s",
			domain.ErrUnsupportedCurrency, domain.BaseCurrency, input.AmountInBase.Currency())
	}

	input.Description = description
	input.TransactionDate = domain.DateOnly(input.TransactionDate)
	input.OriginalAmount = input.OriginalAmount.ForLedger()
	input.AmountInBase = input.AmountInBase.ForLedger()
	if !input.AmountInBase.IsPositive() || !input.OriginalAmount.IsPositive() {
		return input, domain.ErrInvalidAmount
	}
	return input, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, domain.ErrCreditLimitExceeded) {
		return OutcomeLimitExceeded
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return OutcomeNotFound
	case domain.KindBusy:
		return OutcomeBusy
	default:
		return OutcomeError
	}
}
