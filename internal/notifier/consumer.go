package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/notifier/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer sets QoS so the broker never hands out more unacknowledged
// messages than the pool can hold, then starts consuming
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	if err := w.consumer.Qos(w.prefetchCount); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.consumer.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
	)

	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the pool. It
// returns true when the broker closed the delivery channel.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) bool {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			if err := w.consumer.Cancel(w.workerID); err != nil {
				w.logger.Warn("Failed to cancel consumer",
					slog.String("error", err.Error()),
				)
			}
			return false

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return true
			}

			var event domain.ApplicationEvent
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				w.reject(delivery, fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err))
				continue
			}

			if err := event.Validate(); err != nil {
				w.reject(delivery, err)
				continue
			}

			select {
			case w.messages <- &message{event: event, delivery: delivery}:
				w.logger.Debug("Event dispatched to worker pool",
					slog.String("event_id", event.EventID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching event")
				// requeue so another consumer picks it up
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return false
			}
		}
	}
}

// reject drops a message that can never be processed
func (w *Worker) reject(delivery amqp.Delivery, reason error) {
	w.logger.Error("Dropping malformed message",
		slog.String("error", reason.Error()),
		slog.String("body", string(delivery.Body)),
	)
	if err := delivery.Nack(false, false); err != nil {
		w.logger.Error("Failed to NACK malformed message",
			slog.String("error", err.Error()),
		)
	}
}
