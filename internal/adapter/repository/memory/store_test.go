package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

func seedCard(t *testing.T, store *Store, id string) {
	t.Helper()
	card := &domain.Card{ID: id, Number: "4111111111111111", CreditLimit: domain.MustMoney("100", "USD"), CreatedAt: time.Now().UTC()}
	if err := NewCardRepository(store).Create(context.Background(), card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
}

func testEntry(cardID, key string) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:              "e-" + key,
		CardID:          cardID,
		IdempotencyKey:  key,
		Description:     "coffee",
		TransactionDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		OriginalAmount:  domain.MustMoney("5", "USD"),
		AmountInBase:    domain.MustMoney("5", "USD"),
		EntryType:       domain.EntryTypePurchase,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestCommitAppliesStagedWrites(t *testing.T) {
	store := NewStore(time.Second)
	seedCard(t, store, "c1")
	ctx := context.Background()

	entries := NewLedgerEntryRepository(store)
	projections := NewSpendProjectionRepository(store)
	outbox := NewOutboxRepository(store)

	tx, _ := NewTxManager(store).Begin(ctx)
	if _, err := NewCardRepository(store).LockForAppend(ctx, tx, "c1"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	e := testEntry("c1", "k1")
	if ok, err := entries.InsertIfAbsent(ctx, tx, e); err != nil || !ok {
		t.Fatalf("insert: ok=%v err=%v", ok, err)
	}
	if ok, _ := entries.InsertIfAbsent(ctx, tx, testEntry("c1", "k1")); ok {
		t.Fatalf("second insert with same key must be skipped")
	}
	if err := projections.Upsert(ctx, tx, &domain.SpendProjection{CardID: "c1", TotalSpend: domain.MustMoney("5", "USD")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := outbox.Create(ctx, tx, domain.NewPurchaseCreatedEvent("ev1", e)); err != nil {
		t.Fatalf("outbox: %v", err)
	}

	// uncommitted writes are invisible
	if _, err := entries.GetPurchase(ctx, e.ID); !errors.Is(err, domain.ErrPurchaseNotFound) {
		t.Fatalf("expected entry to be invisible before commit, got %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback after commit should be a no-op, got %v", err)
	}

	if _, err := entries.GetPurchase(ctx, e.ID); err != nil {
		t.Fatalf("expected committed entry, got %v", err)
	}
	total, _ := projections.GetTotalSpend(ctx, "c1")
	if !total.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected total 5, got %s", total)
	}
	events, _ := outbox.FetchBatch(ctx, 10)
	if len(events) != 1 || events[0].ID != "ev1" {
		t.Fatalf("expected one outbox event, got %v", events)
	}
	if err := outbox.Delete(ctx, "ev1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if events, _ := outbox.FetchBatch(ctx, 10); len(events) != 0 {
		t.Fatalf("expected empty outbox, got %d", len(events))
	}
}

func TestRollbackDiscardsAndReleasesLock(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	seedCard(t, store, "c1")
	ctx := context.Background()
	cards := NewCardRepository(store)
	entries := NewLedgerEntryRepository(store)
	mgr := NewTxManager(store)

	tx, _ := mgr.Begin(ctx)
	if _, err := cards.LockForAppend(ctx, tx, "c1"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := entries.InsertIfAbsent(ctx, tx, testEntry("c1", "k1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	tx2, _ := mgr.Begin(ctx)
	defer tx2.Rollback(ctx)
	if _, err := cards.LockForAppend(ctx, tx2, "c1"); err != nil {
		t.Fatalf("lock must be free after rollback, got %v", err)
	}
	if _, err := entries.GetByIdempotencyKey(ctx, tx2, "c1", "k1"); !errors.Is(err, domain.ErrPurchaseNotFound) {
		t.Fatalf("rolled back entry must not exist, got %v", err)
	}
}

func TestLockForAppendTimesOutAsBusy(t *testing.T) {
	store := NewStore(30 * time.Millisecond)
	seedCard(t, store, "c1")
	seedCard(t, store, "c2")
	ctx := context.Background()
	cards := NewCardRepository(store)
	mgr := NewTxManager(store)

	holder, _ := mgr.Begin(ctx)
	defer holder.Rollback(ctx)
	if _, err := cards.LockForAppend(ctx, holder, "c1"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	waiter, _ := mgr.Begin(ctx)
	defer waiter.Rollback(ctx)
	if _, err := cards.LockForAppend(ctx, waiter, "c1"); !errors.Is(err, domain.ErrCardBusy) {
		t.Fatalf("expected ErrCardBusy, got %v", err)
	}

	other, _ := mgr.Begin(ctx)
	defer other.Rollback(ctx)
	if _, err := cards.LockForAppend(ctx, other, "c2"); err != nil {
		t.Fatalf("other cards must not be blocked, got %v", err)
	}
}

func TestLockForAppendHonoursCancellation(t *testing.T) {
	store := NewStore(0)
	seedCard(t, store, "c1")
	cards := NewCardRepository(store)
	mgr := NewTxManager(store)

	holder, _ := mgr.Begin(context.Background())
	defer holder.Rollback(context.Background())
	if _, err := cards.LockForAppend(context.Background(), holder, "c1"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	waiter, _ := mgr.Begin(ctx)
	_, err := cards.LockForAppend(ctx, waiter, "c1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCommitWithCancelledContextWritesNothing(t *testing.T) {
	store := NewStore(time.Second)
	seedCard(t, store, "c1")
	entries := NewLedgerEntryRepository(store)

	ctx, cancel := context.WithCancel(context.Background())
	tx, _ := NewTxManager(store).Begin(ctx)
	if _, err := entries.InsertIfAbsent(ctx, tx, testEntry("c1", "k1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	cancel()

	if err := tx.Commit(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := entries.GetPurchase(context.Background(), "e-k1"); !errors.Is(err, domain.ErrPurchaseNotFound) {
		t.Fatalf("expected nothing persisted, got %v", err)
	}
}

func TestLockForAppendUnknownCard(t *testing.T) {
	store := NewStore(time.Second)
	tx, _ := NewTxManager(store).Begin(context.Background())
	defer tx.Rollback(context.Background())

	if _, err := NewCardRepository(store).LockForAppend(context.Background(), tx, "nope"); !errors.Is(err, domain.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestListByCardOrdersNewestFirst(t *testing.T) {
	store := NewStore(time.Second)
	seedCard(t, store, "c1")
	ctx := context.Background()
	entries := NewLedgerEntryRepository(store)

	tx, _ := NewTxManager(store).Begin(ctx)
	for i, d := range []int{3, 1, 2} {
		e := testEntry("c1", string(rune('a'+i)))
		e.TransactionDate = time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
		if _, err := entries.InsertIfAbsent(ctx, tx, e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	list, _ := entries.ListByCard(ctx, "c1", 2, 0)
	if len(list) != 2 || list[0].TransactionDate.Day() != 3 || list[1].TransactionDate.Day() != 2 {
		t.Fatalf("unexpected order: %v", list)
	}
	rest, _ := entries.ListByCard(ctx, "c1", 2, 2)
	if len(rest) != 1 || rest[0].TransactionDate.Day() != 1 {
		t.Fatalf("unexpected second page: %v", rest)
	}

	sum, _ := entries.SumByCard(ctx, "c1")
	if !sum.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected sum 15, got %s", sum)
	}
}
