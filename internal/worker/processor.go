package worker

import (
	"context"
	"log/slog"

	"github.com/interpretly/booking-be/internal/booking/notify"
)

// processRequest delivers one notification request. Failed recipients never
// abort the rest of the batch; when nothing at all went out the error is
// surfaced for the NACK decision.
func (w *Worker) processRequest(ctx context.Context, req *notify.Request) error {
	result := w.dispatcher.Dispatch(ctx, req)

	if len(result.Failures) > 0 {
		w.logger.Warn("Notification delivered with failures",
			slog.String("job_id", req.JobID),
			slog.String("kind", string(req.Kind)),
			slog.String("channel", string(req.Channel)),
			slog.Int("sent", result.Sent),
			slog.Int("failed", len(result.Failures)),
		)
	}

	if result.Sent == 0 && len(result.Failures) > 0 {
		return result.Err()
	}

	return nil
}
