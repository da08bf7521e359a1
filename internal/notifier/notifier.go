package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard/internal/notifier/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer is the part of the RabbitMQ client the worker consumes through
type Consumer interface {
	Qos(prefetch int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Cancel(consumerTag string) error
}

// Store is the persistence the worker needs
type Store interface {
	GetConfirmation(ctx context.Context, applicationID int64) (*domain.Confirmation, error)
	IsNotified(ctx context.Context, applicationID int64) (bool, error)
	RecordNotification(ctx context.Context, n domain.Notification) (bool, error)
}

// Sender delivers a confirmation to the candidate
type Sender interface {
	Channel() string
	Send(ctx context.Context, c domain.Confirmation) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Consumer      Consumer
	Store         Store
	Sender        Sender
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
}

// message is one decoded delivery waiting for a pool goroutine
type message struct {
	event    domain.ApplicationEvent
	delivery amqp.Delivery
}

// Worker consumes application events and sends confirmations with a
// bounded pool of goroutines
type Worker struct {
	logger        *slog.Logger
	consumer      Consumer
	store         Store
	sender        Sender
	workerID      string
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	messages      chan *message
	wg            sync.WaitGroup
	now           func() time.Time
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency * 2
	}

	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Worker{
		logger:        cfg.Logger,
		consumer:      cfg.Consumer,
		store:         cfg.Store,
		sender:        cfg.Sender,
		workerID:      "notifier-" + uuid.NewString()[:8],
		concurrency:   concurrency,
		prefetchCount: prefetch,
		jobTimeout:    timeout,
		messages:      make(chan *message),
		now:           time.Now,
	}
}

// Start consumes until ctx is canceled or the broker closes the delivery
// channel. Messages already handed to the pool are finished; call Stop to
// wait for them.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting notifier worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	closed := w.startMessageDispatcher(ctx, deliveries)
	close(w.messages)

	if closed {
		return fmt.Errorf("delivery channel closed by broker")
	}
	return nil
}

// Stop waits for the pool goroutines to finish in-flight messages
func (w *Worker) Stop() {
	w.logger.Info("Stopping notifier worker...")
	w.wg.Wait()
	w.logger.Info("Notifier worker stopped")
}
