package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	apimodel "github.com/cuongbtq/jobboard/internal/api/model"
	apistorage "github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/notifier/domain"
	"github.com/cuongbtq/jobboard/internal/notifier/storage"
	"github.com/cuongbtq/jobboard/shared/database"
	"github.com/cuongbtq/jobboard/shared/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome of a delivery as seen by the broker
const (
	acked    = "ack"
	dropped  = "drop"
	requeued = "requeue"
)

type fakeAcknowledger struct {
	mu       sync.Mutex
	outcomes map[uint64]string
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{outcomes: map[uint64]string{}}
}

func (a *fakeAcknowledger) set(tag uint64, outcome string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes[tag] = outcome
	return nil
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error { return a.set(tag, acked) }

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	if requeue {
		return a.set(tag, requeued)
	}
	return a.set(tag, dropped)
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

func (a *fakeAcknowledger) outcome(tag uint64) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outcomes[tag]
}

func (a *fakeAcknowledger) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.outcomes)
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
	prefetch   int
	qosErr     error
}

func (c *fakeConsumer) Qos(prefetch int) error {
	c.prefetch = prefetch
	return c.qosErr
}

func (c *fakeConsumer) Consume(string) (<-chan amqp.Delivery, error) { return c.deliveries, nil }
func (c *fakeConsumer) Cancel(string) error                         { return nil }

type fakeStore struct {
	mu           sync.Mutex
	applications map[int64]domain.Confirmation
	notified     map[int64]domain.Notification
	err          error
}

func (s *fakeStore) GetConfirmation(_ context.Context, id int64) (*domain.Confirmation, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.applications[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return &c, nil
}

func (s *fakeStore) IsNotified(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notified[id]
	return ok, nil
}

func (s *fakeStore) RecordNotification(_ context.Context, n domain.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notified[n.ApplicationID]; ok {
		return false, nil
	}
	s.notified[n.ApplicationID] = n
	return true, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []domain.Confirmation
}

func (s *fakeSender) Channel() string { return "test" }

func (s *fakeSender) Send(_ context.Context, c domain.Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return nil
}

func eventBody(t *testing.T, eventID string, applicationID int64) []byte {
	t.Helper()
	body, err := json.Marshal(domain.ApplicationEvent{
		EventID:       eventID,
		ApplicationID: applicationID,
		JobID:         3,
		FullName:      "Jane Doe",
		Email:         "jane@x.com",
		AppliedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return body
}

// runWorker starts w, waits until every delivery is settled and shuts it down
func runWorker(t *testing.T, w *Worker, ack *fakeAcknowledger, want int) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return ack.count() == want }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	w.Stop()
}

func TestWorker_Outcomes(t *testing.T) {
	ack := newFakeAcknowledger()
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 8)}
	store := &fakeStore{
		applications: map[int64]domain.Confirmation{
			1: {ApplicationID: 1, JobID: 3, JobTitle: "Product Manager", Email: "jane@x.com"},
		},
		notified: map[int64]domain.Notification{},
	}
	sender := &fakeSender{}

	w := NewWorker(&Config{
		Logger:      logger.NewNop(),
		Consumer:    consumer,
		Store:       store,
		Sender:      sender,
		Concurrency: 1,
	})

	deliveries := []struct {
		tag  uint64
		body []byte
		want string
	}{
		{1, eventBody(t, "evt-1", 1), acked},
		{2, eventBody(t, "evt-1-redelivered", 1), acked},
		{3, []byte(`{not json`), dropped},
		{4, eventBody(t, "evt-bad", 0), dropped},
		{5, eventBody(t, "", 1), dropped},
		{6, eventBody(t, "evt-unknown", 99), dropped},
	}
	for _, d := range deliveries {
		consumer.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: d.tag, Body: d.body}
	}

	runWorker(t, w, ack, len(deliveries))

	for _, d := range deliveries {
		assert.Equal(t, d.want, ack.outcome(d.tag), "delivery %d", d.tag)
	}

	assert.Equal(t, 2, consumer.prefetch, "prefetch defaults to twice the concurrency")
	require.Len(t, sender.sent, 1, "redelivery does not send twice")
	assert.Equal(t, "Product Manager", sender.sent[0].JobTitle)
	assert.Equal(t, "evt-1", store.notified[1].EventID)
	assert.Equal(t, "test", store.notified[1].Channel)
}

func TestWorker_StoreFailureRequeues(t *testing.T) {
	ack := newFakeAcknowledger()
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 1)}
	store := &fakeStore{notified: map[int64]domain.Notification{}, err: errors.New("connection reset")}
	sender := &fakeSender{}

	w := NewWorker(&Config{Logger: logger.NewNop(), Consumer: consumer, Store: store, Sender: sender, Concurrency: 2})

	consumer.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: eventBody(t, "evt-7", 1)}
	runWorker(t, w, ack, 1)

	assert.Equal(t, requeued, ack.outcome(7))
	assert.Empty(t, sender.sent)
}

func TestWorker_BrokerClosesDeliveries(t *testing.T) {
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery)}
	w := NewWorker(&Config{Logger: logger.NewNop(), Consumer: consumer, Store: &fakeStore{}, Sender: &fakeSender{}})

	close(consumer.deliveries)
	err := w.Start(context.Background())
	assert.Error(t, err)
	w.Stop()
}

func TestWorker_QosFailure(t *testing.T) {
	consumer := &fakeConsumer{qosErr: errors.New("channel closed")}
	w := NewWorker(&Config{Logger: logger.NewNop(), Consumer: consumer})

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set QoS")
}

func TestShouldRequeue(t *testing.T) {
	assert.True(t, shouldRequeue(domain.NewRetryableError(errors.New("timeout"))))
	assert.False(t, shouldRequeue(domain.ErrApplicationNotFound))
	assert.False(t, shouldRequeue(domain.ErrInvalidEvent))
	assert.False(t, shouldRequeue(errors.New("unknown")))
}

func TestWorker_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	client, err := database.NewClient(&database.Config{Driver: database.DriverSQLite, Path: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	api := apistorage.NewStorage(client)
	require.NoError(t, api.Migrate(ctx))
	_, err = api.SeedJobs(ctx, apistorage.DefaultJobs)
	require.NoError(t, err)

	app := apimodel.Application{JobID: 5, FullName: "Sam Lee", Email: "sam@x.com", AppliedAt: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, api.CreateApplication(ctx, &app))

	store := storage.NewStorage(client.GetDB(), log)
	require.NoError(t, store.Migrate(ctx))

	ack := newFakeAcknowledger()
	consumer := &fakeConsumer{deliveries: make(chan amqp.Delivery, 2)}
	w := NewWorker(&Config{Logger: log, Consumer: consumer, Store: store, Sender: NewLogSender(log), Concurrency: 1})

	consumer.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: eventBody(t, "evt-a", app.ID)}
	consumer.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: eventBody(t, "evt-b", app.ID)}
	runWorker(t, w, ack, 2)

	assert.Equal(t, acked, ack.outcome(1))
	assert.Equal(t, acked, ack.outcome(2))

	notified, err := store.IsNotified(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, notified)

	var n int
	require.NoError(t, client.GetDB().GetContext(ctx, &n, `SELECT COUNT(*) FROM application_notifications`))
	assert.Equal(t, 1, n)
}
