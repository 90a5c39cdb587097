package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/interpretly/booking-be/internal/booking/notify"
	"github.com/interpretly/booking-be/shared/rabbitmq"
)

// Config holds delivery worker configuration
type Config struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Dispatcher    *notify.Dispatcher
	Concurrency   int
	PrefetchCount int
	QueueName     string
	WorkerID      string
}

// Worker consumes notification requests from RabbitMQ and hands them to the
// dispatcher. Delivery is at-least-once; a request carries its full payload,
// so processing needs no booking state.
type Worker struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	dispatcher    *notify.Dispatcher
	concurrency   int
	prefetchCount int
	queueName     string
	workerID      string
	jobsChan      chan *deliveryMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// deliveryMessage pairs a parsed request with its broker delivery tag.
type deliveryMessage struct {
	Request     *notify.Request
	DeliveryTag uint64
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		dispatcher:    cfg.Dispatcher,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		queueName:     cfg.QueueName,
		workerID:      cfg.WorkerID,
		jobsChan:      make(chan *deliveryMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming notification requests. It blocks until the context
// is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting delivery worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.String("queue", w.queueName),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping delivery worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Delivery worker stopped")
}
