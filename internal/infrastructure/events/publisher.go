package events

import (
	"fmt"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
)

// NewPublisher builds the publisher selected by cfg.Driver.
// The "none" driver returns nil, which disables event publishing.
func NewPublisher(cfg *config.EventsConfig, service string, logger *slog.Logger) (domain.EventPublisher, error) {
	switch cfg.Driver {
	case "none", "":
		return nil, nil
	case "log":
		return NewLogPublisher(logger), nil
	case "nats":
		return NewNATSPublisher(cfg.NATSURL, cfg.Subject, service, logger)
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.Exchange, cfg.Subject, logger)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}
