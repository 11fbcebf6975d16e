package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cardledger/internal/domain"
	infra "github.com/iho/cardledger/internal/infrastructure/postgres"
	"github.com/iho/cardledger/internal/usecase"
)

const integrationMigrations = "../../../../migrations"

// newIntegrationPool connects to TEST_DATABASE_URL, migrates it and empties
// every table. Tests are skipped when the variable is unset.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, infra.RunMigrations(dbURL, integrationMigrations, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.NewPool(ctx, dbURL, 20, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "TRUNCATE outbox_events, card_spend_projection, ledger_entries, cards")
	require.NoError(t, err)
	return pool
}

type integrationStack struct {
	pool    *pgxpool.Pool
	cards   *CardRepository
	entries *LedgerEntryRepository
	proj    *SpendProjectionRepository
	outbox  *OutboxRepository
	ledger  *usecase.LedgerUseCase
}

func newIntegrationStack(t *testing.T, lockTimeout time.Duration) *integrationStack {
	pool := newIntegrationPool(t)
	s := &integrationStack{
		pool:    pool,
		cards:   NewCardRepository(pool, lockTimeout),
		entries: NewLedgerEntryRepository(pool),
		proj:    NewSpendProjectionRepository(pool),
		outbox:  NewOutboxRepository(pool),
	}
	s.ledger = usecase.NewLedgerUseCase(
		NewTxManager(pool), s.cards, s.entries, s.proj, s.outbox, NewUUIDGenerator(),
		usecase.WithRetrier(NewRetrier(zerolog.Nop())),
		usecase.WithTransactionTimeout(10*time.Second),
	)
	return s
}

func (s *integrationStack) createCard(t *testing.T, limit string) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(NewUUIDGenerator().Generate(), "4111111111111111",
		decimal.RequireFromString(limit), domain.BaseCurrency, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.cards.Create(context.Background(), card))
	return card
}

func purchase(cardID, key, amount string) usecase.AppendPurchaseInput {
	m := domain.MustMoney(amount, domain.BaseCurrency)
	return usecase.AppendPurchaseInput{
		CardID:          cardID,
		IdempotencyKey:  key,
		Description:     "integration purchase",
		TransactionDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		OriginalAmount:  m,
		AmountInBase:    m,
	}
}

func TestIntegration_ConcurrentAppendsNeverExceedLimit(t *testing.T) {
	s := newIntegrationStack(t, 5*time.Second)
	ctx := context.Background()
	card := s.createCard(t, "100")

	const attempts = 50
	var (
		wg        sync.WaitGroup
		recorded  atomic.Int32
		exceeded  atomic.Int32
		unexpected atomic.Int32
	)
	wg.Add(attempts)
	for i := range attempts {
		go func() {
			defer wg.Done()
			_, err := s.ledger.AppendPurchase(ctx, purchase(card.ID, NewUUIDGenerator().Generate(), "10.00"))
			switch {
			case err == nil:
				recorded.Add(1)
			case errors.Is(err, domain.ErrCreditLimitExceeded):
				exceeded.Add(1)
			default:
				t.Logf("append %d: %v", i, err)
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), recorded.Load())
	assert.Equal(t, int32(attempts-10), exceeded.Load())
	assert.Zero(t, unexpected.Load())

	total, err := s.proj.GetTotalSpend(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(100)), "total %s", total)

	sum, err := s.entries.SumByCard(ctx, card.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(total), "ledger sum %s, projection %s", sum, total)
}

func TestIntegration_ConcurrentReplaysRecordOnce(t *testing.T) {
	s := newIntegrationStack(t, 5*time.Second)
	ctx := context.Background()
	card := s.createCard(t, "1000")
	key := NewUUIDGenerator().Generate()

	const callers = 20
	ids := make(chan string, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			entry, err := s.ledger.AppendPurchase(ctx, purchase(card.ID, key, "25.00"))
			if assert.NoError(t, err) {
				ids <- entry.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	entries, err := s.entries.ListByCard(ctx, card.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	events, err := s.outbox.FetchBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestIntegration_LockTimeoutReportsBusy(t *testing.T) {
	s := newIntegrationStack(t, 200*time.Millisecond)
	ctx := context.Background()
	card := s.createCard(t, "100")

	holder, err := s.pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(ctx) }()
	_, err = holder.Exec(ctx, "SELECT 1 FROM cards WHERE card_id = $1 FOR UPDATE", card.ID)
	require.NoError(t, err)

	_, err = s.ledger.AppendPurchase(ctx, purchase(card.ID, NewUUIDGenerator().Generate(), "1.00"))
	require.ErrorIs(t, err, domain.ErrCardBusy)
}

func TestIntegration_OutboxDrain(t *testing.T) {
	s := newIntegrationStack(t, 5*time.Second)
	ctx := context.Background()
	card := s.createCard(t, "1000")

	for i := range 3 {
		_, err := s.ledger.AppendPurchase(ctx, purchase(card.ID, fmt.Sprintf("key-%d", i), "1.00"))
		require.NoError(t, err)
	}

	events, err := s.outbox.FetchBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, card.ID, e.AggregateID)
		require.NoError(t, s.outbox.Delete(ctx, e.ID))
	}

	rest, err := s.outbox.FetchBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
