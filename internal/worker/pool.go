package worker

import (
	"context"
	"fmt"
	"log/slog"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned successfully",
		slog.Int("worker_count", w.concurrency),
	)
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
		slog.Int("worker_num", workerNum),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				w.logger.Info("Worker goroutine stopping - jobsChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.logger.Info("Worker received notification request",
				slog.String("worker_name", workerName),
				slog.String("job_id", msg.Request.JobID),
				slog.String("kind", string(msg.Request.Kind)),
				slog.Uint64("delivery_tag", msg.DeliveryTag),
			)

			err := w.processRequest(ctx, msg.Request)

			channel := w.rabbitClient.Channel()
			if channel == nil {
				w.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.Request.JobID),
				)
				continue
			}

			if err != nil {
				w.logger.Error("Notification processing failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.Request.JobID),
					slog.String("error", err.Error()),
				)

				// Never requeue: successful recipients must not receive the
				// message twice, and per-recipient failures are already
				// recorded in the dispatch result.
				if nackErr := channel.Nack(msg.DeliveryTag, false, false); nackErr != nil {
					w.logger.Error("Failed to NACK message",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.Request.JobID),
						slog.String("error", nackErr.Error()),
					)
				}
			} else {
				if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
					w.logger.Error("Failed to ACK message",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.Request.JobID),
						slog.String("error", ackErr.Error()),
					)
				} else {
					w.logger.Info("Notification request completed",
						slog.String("worker_name", workerName),
						slog.String("job_id", msg.Request.JobID),
					)
				}
			}
		}
	}
}
