package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes product events to a JetStream subject
type NATSPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
	logger  *slog.Logger
}

// NewNATSPublisher connects to NATS and enables JetStream
func NewNATSPublisher(url, subject, service string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name(service))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to open JetStream context: %w", err)
	}

	return &NATSPublisher{nc: nc, js: js, subject: subject, service: service, logger: logger}, nil
}

// PublishProductCreated serializes the event and publishes it with
// the event id as the JetStream dedup id
func (p *NATSPublisher) PublishProductCreated(ctx context.Context, event domain.ProductCreated) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType, err)
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{event.EventType},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
		},
	}
	msg.Header.Set(nats.MsgIdHdr, event.EventID.String())

	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.EventType, p.subject, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		slog.String("subject", p.subject),
		slog.String("event_id", event.EventID.String()),
	)
	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
