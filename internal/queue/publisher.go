package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/interpretly/booking-be/internal/booking/notify"
	"github.com/interpretly/booking-be/shared/rabbitmq"
)

// Publisher hands notification requests to RabbitMQ for the delivery worker.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// Publish serializes the request and publishes it with retry. The request is
// self-contained, so the worker needs no further context to deliver it.
func (p *Publisher) Publish(ctx context.Context, req *notify.Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal notification request: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish notification request: %w", err)
	}

	p.logger.Debug("Notification request published",
		slog.String("job_id", req.JobID),
		slog.String("kind", string(req.Kind)),
		slog.String("channel", string(req.Channel)),
		slog.Int("recipients", len(req.Recipients)),
	)

	return nil
}
