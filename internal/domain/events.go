package domain

import "time"

// Event types
const (
	EventTypePurchaseCreated = "PurchaseCreated"
)

// Aggregate types
const (
	AggregateTypeCard = "Card"
)

// OutboxEvent is a durable record of something downstream consumers must hear about.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
}

// NewPurchaseCreatedEvent builds the outbox record for a freshly appended entry.
func NewPurchaseCreatedEvent(id string, e *LedgerEntry) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   e.CardID,
		AggregateType: AggregateTypeCard,
		EventType:     EventTypePurchaseCreated,
		Payload: map[string]any{
			"purchaseId":      e.ID,
			"cardId":          e.CardID,
			"amount":          e.AmountInBase.Amount().StringFixed(LedgerScale),
			"currency":        e.AmountInBase.Currency(),
			"transactionDate": e.TransactionDate.Format(DateLayout),
		},
		CreatedAt: e.CreatedAt,
	}
}
