package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/api/domain"
)

// ContentType of every published event body
const ContentType = "application/json"

// Broker is the part of the RabbitMQ client the publisher uses
type Broker interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// RabbitPublisher publishes application events as JSON
type RabbitPublisher struct {
	broker Broker
	logger *slog.Logger
}

func NewRabbitPublisher(broker Broker, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{broker: broker, logger: logger}
}

func (p *RabbitPublisher) PublishApplicationSubmitted(ctx context.Context, event domain.ApplicationSubmitted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal application event: %w", err)
	}

	if err := p.broker.PublishWithRetry(ctx, body, ContentType); err != nil {
		return fmt.Errorf("failed to publish application event: %w", err)
	}

	p.logger.Debug("Application event published",
		slog.String("event_id", event.EventID),
		slog.Int64("application_id", event.ApplicationID),
	)

	return nil
}

// NopPublisher drops events. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishApplicationSubmitted(context.Context, domain.ApplicationSubmitted) error {
	return nil
}
