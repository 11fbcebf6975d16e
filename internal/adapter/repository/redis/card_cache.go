package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/cardledger/internal/domain"
)

// DefaultCardTTL bounds how long a card stays cached.
const DefaultCardTTL = time.Hour

// CardCache implements usecase.CardCache using Redis. Cards are immutable,
// so entries are never invalidated, only expired.
type CardCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCardCache creates a new CardCache. A non-positive ttl uses DefaultCardTTL.
func NewCardCache(client *redis.Client, ttl time.Duration) *CardCache {
	if ttl <= 0 {
		ttl = DefaultCardTTL
	}
	return &CardCache{
		client: client,
		prefix: "card:",
		ttl:    ttl,
	}
}

type cachedCard struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Get returns the cached card, or nil without error on a miss.
func (c *CardCache) Get(ctx context.Context, id string) (*domain.Card, error) {
	raw, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cc cachedCard
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode cached card %s: %w", id, err)
	}
	limit, err := domain.NewMoney(cc.CreditLimit, cc.Currency)
	if err != nil {
		return nil, fmt.Errorf("decode cached card %s: %w", id, err)
	}

	return &domain.Card{
		ID:          cc.ID,
		Number:      cc.Number,
		CreditLimit: limit,
		CreatedAt:   cc.CreatedAt,
	}, nil
}

// Set stores card with the cache TTL.
func (c *CardCache) Set(ctx context.Context, card *domain.Card) error {
	raw, err := json.Marshal(cachedCard{
		ID:          card.ID,
		Number:      card.Number,
		CreditLimit: card.CreditLimit.Amount(),
		Currency:    card.CreditLimit.Currency(),
		CreatedAt:   card.CreatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+card.ID, raw, c.ttl).Err()
}

// Delete evicts a card.
func (c *CardCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.prefix+id).Err()
}
