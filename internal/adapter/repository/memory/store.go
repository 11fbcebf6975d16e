// Package memory keeps cards, ledger entries, projections and outbox events
// in process memory. It honours the same transaction and locking contract as
// the Postgres repositories and backs STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/usecase"
)

// ErrTxClosed is returned when committing a finished transaction.
var ErrTxClosed = errors.New("memory: transaction already closed")

type entryKey struct {
	cardID string
	key    string
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu          sync.RWMutex
	cards       map[string]*domain.Card
	entries     map[string]*domain.LedgerEntry
	byKey       map[entryKey]string
	byCard      map[string][]string
	projections map[string]*domain.SpendProjection
	outbox      []*domain.OutboxEvent

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore creates an empty store. lockTimeout bounds the wait for a card
// lock; zero waits until the context ends.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		cards:       make(map[string]*domain.Card),
		entries:     make(map[string]*domain.LedgerEntry),
		byKey:       make(map[entryKey]string),
		byCard:      make(map[string][]string),
		projections: make(map[string]*domain.SpendProjection),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func (s *Store) lockFor(cardID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[cardID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[cardID] = ch
	}
	return ch
}

func (s *Store) acquire(ctx context.Context, cardID string) error {
	ch := s.lockFor(cardID)

	waitCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wait for card lock: %w", err)
		}
		return fmt.Errorf("%w: lock wait on card %s timed out", domain.ErrCardBusy, cardID)
	}
}

func (s *Store) release(cardID string) {
	<-s.lockFor(cardID)
}

// Tx stages writes until Commit. Locks taken through it are held until it ends.
type Tx struct {
	store       *Store
	held        []string
	entries     []*domain.LedgerEntry
	projections map[string]*domain.SpendProjection
	outbox      []*domain.OutboxEvent
	done        bool
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, projections: make(map[string]*domain.SpendProjection)}, nil
}

// Commit applies staged writes atomically. A cancelled context discards them.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	defer t.finish()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range t.entries {
		if _, exists := s.byKey[entryKey{e.CardID, e.IdempotencyKey}]; exists {
			return fmt.Errorf("commit: duplicate idempotency key %q for card %s", e.IdempotencyKey, e.CardID)
		}
	}
	for _, e := range t.entries {
		s.entries[e.ID] = e
		s.byKey[entryKey{e.CardID, e.IdempotencyKey}] = e.ID
		s.byCard[e.CardID] = append(s.byCard[e.CardID], e.ID)
	}
	for id, p := range t.projections {
		s.projections[id] = p
	}
	s.outbox = append(s.outbox, t.outbox...)
	return nil
}

// Rollback discards staged writes. It is safe to call after Commit.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	for _, id := range t.held {
		t.store.release(id)
	}
	t.held = nil
	t.entries = nil
	t.projections = nil
	t.outbox = nil
}

func unwrap(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", tx)
	}
	if t.done {
		return nil, ErrTxClosed
	}
	return t, nil
}

// CardRepository implements usecase.CardRepository.
type CardRepository struct {
	store *Store
}

func NewCardRepository(store *Store) *CardRepository {
	return &CardRepository{store: store}
}

func (r *CardRepository) Create(_ context.Context, card *domain.Card) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.cards[card.ID]; exists {
		return fmt.Errorf("card %s already exists", card.ID)
	}
	c := *card
	r.store.cards[card.ID] = &c
	return nil
}

func (r *CardRepository) GetByID(_ context.Context, id string) (*domain.Card, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.cards[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	card := *c
	return &card, nil
}

func (r *CardRepository) LockForAppend(ctx context.Context, tx usecase.Transaction, id string) (*domain.Card, error) {
	t, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	card, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, held := range t.held {
		if held == id {
			return card, nil
		}
	}
	if err := r.store.acquire(ctx, id); err != nil {
		return nil, err
	}
	t.held = append(t.held, id)
	return card, nil
}

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	store *Store
}

func NewLedgerEntryRepository(store *Store) *LedgerEntryRepository {
	return &LedgerEntryRepository{store: store}
}

func (r *LedgerEntryRepository) InsertIfAbsent(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) (bool, error) {
	t, err := unwrap(tx)
	if err != nil {
		return false, err
	}
	if _, err := r.GetByIdempotencyKey(ctx, tx, entry.CardID, entry.IdempotencyKey); err == nil {
		return false, nil
	}
	e := *entry
	t.entries = append(t.entries, &e)
	return true, nil
}

func (r *LedgerEntryRepository) GetByIdempotencyKey(_ context.Context, tx usecase.Transaction, cardID, key string) (*domain.LedgerEntry, error) {
	t, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	for _, e := range t.entries {
		if e.CardID == cardID && e.IdempotencyKey == key {
			c := *e
			return &c, nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.byKey[entryKey{cardID, key}]
	if !ok {
		return nil, domain.ErrPurchaseNotFound
	}
	c := *r.store.entries[id]
	return &c, nil
}

func (r *LedgerEntryRepository) GetPurchase(_ context.Context, id string) (*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.entries[id]
	if !ok || e.EntryType != domain.EntryTypePurchase {
		return nil, domain.ErrPurchaseNotFound
	}
	c := *e
	return &c, nil
}

func (r *LedgerEntryRepository) ListByCard(_ context.Context, cardID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	ids := r.store.byCard[cardID]
	list := make([]*domain.LedgerEntry, 0, len(ids))
	for _, id := range ids {
		c := *r.store.entries[id]
		list = append(list, &c)
	}
	r.store.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].TransactionDate.Equal(list[j].TransactionDate) {
			return list[i].TransactionDate.After(list[j].TransactionDate)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if offset >= len(list) {
		return []*domain.LedgerEntry{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *LedgerEntryRepository) SumByCard(_ context.Context, cardID string) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	total := decimal.Zero
	for _, id := range r.store.byCard[cardID] {
		total = total.Add(r.store.entries[id].AmountInBase.Amount())
	}
	return total, nil
}

// SpendProjectionRepository implements usecase.SpendProjectionRepository.
type SpendProjectionRepository struct {
	store *Store
}

func NewSpendProjectionRepository(store *Store) *SpendProjectionRepository {
	return &SpendProjectionRepository{store: store}
}

func (r *SpendProjectionRepository) Get(_ context.Context, tx usecase.Transaction, cardID string) (*domain.SpendProjection, error) {
	t, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	if p, ok := t.projections[cardID]; ok {
		c := *p
		return &c, nil
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if p, ok := r.store.projections[cardID]; ok {
		c := *p
		return &c, nil
	}
	return domain.EmptyProjection(cardID), nil
}

func (r *SpendProjectionRepository) Upsert(_ context.Context, tx usecase.Transaction, projection *domain.SpendProjection) error {
	t, err := unwrap(tx)
	if err != nil {
		return err
	}
	p := *projection
	t.projections[projection.CardID] = &p
	return nil
}

func (r *SpendProjectionRepository) GetTotalSpend(_ context.Context, cardID string) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if p, ok := r.store.projections[cardID]; ok {
		return p.TotalSpend.Amount(), nil
	}
	return decimal.Zero, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := unwrap(tx)
	if err != nil {
		return err
	}
	e := *event
	t.outbox = append(t.outbox, &e)
	return nil
}

// FetchBatch returns the oldest events first.
func (r *OutboxRepository) FetchBatch(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := len(r.store.outbox)
	if limit < 0 {
		limit = 0
	}
	if limit < n {
		n = limit
	}
	out := make([]*domain.OutboxEvent, 0, n)
	for _, e := range r.store.outbox[:n] {
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

func (r *OutboxRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, e := range r.store.outbox {
		if e.ID == id {
			r.store.outbox = append(r.store.outbox[:i], r.store.outbox[i+1:]...)
			return nil
		}
	}
	return nil
}
