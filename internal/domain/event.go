package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventTypeProductCreated = "product.created"

// ProductCreated is announced after a product has been stored
type ProductCreated struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	ProductID  string          `json:"product_id"`
	RewardRate decimal.Decimal `json:"reward_rate"`
	Status     Status          `json:"status"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewProductCreated builds the event for a stored product
func NewProductCreated(p *Product, at time.Time) ProductCreated {
	return ProductCreated{
		EventID:    uuid.New(),
		EventType:  EventTypeProductCreated,
		ProductID:  p.ID,
		RewardRate: p.RewardRate,
		Status:     p.Status,
		OccurredAt: at.UTC(),
	}
}

// EventPublisher delivers domain events to interested parties
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, event ProductCreated) error
	Close() error
}
