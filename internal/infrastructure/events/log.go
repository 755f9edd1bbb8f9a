package events

import (
	"context"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/domain"
)

// LogPublisher writes events to the structured log instead of a broker
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishProductCreated(ctx context.Context, event domain.ProductCreated) error {
	p.logger.InfoContext(ctx, "Product created event",
		slog.String("event_id", event.EventID.String()),
		slog.String("event_type", event.EventType),
		slog.String("product_id", event.ProductID),
		slog.String("reward_rate", event.RewardRate.String()),
		slog.String("status", string(event.Status)),
		slog.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
