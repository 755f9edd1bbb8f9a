package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQPublisher publishes product events to an exchange using the
// configured routing key
type RabbitMQPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

// NewRabbitMQPublisher dials RabbitMQ and opens a channel
func NewRabbitMQPublisher(url, exchange, routingKey string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

// PublishProductCreated sends the event as a persistent JSON message
func (p *RabbitMQPublisher) PublishProductCreated(ctx context.Context, event domain.ProductCreated) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType, err)
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID.String(),
			Type:         event.EventType,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		slog.String("routing_key", p.routingKey),
		slog.String("event_id", event.EventID.String()),
	)
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
