package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
)

// Config tunes dispatch fan-out.
type Config struct {
	AppTitle         string // push title
	SMSFromNumber    string
	Concurrency      int           // bounded parallelism per request
	RecipientTimeout time.Duration // per-recipient delivery deadline
}

// Dispatcher delivers composed notifications. It holds no booking state; a
// Request carries everything a delivery needs, so the dispatcher is safe for
// concurrent use.
type Dispatcher struct {
	mailer Mailer
	sms    SMSGateway
	push   PushGateway
	cfg    Config
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(mailer Mailer, sms SMSGateway, push PushGateway, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RecipientTimeout <= 0 {
		cfg.RecipientTimeout = 5 * time.Second
	}
	return &Dispatcher{
		mailer: mailer,
		sms:    sms,
		push:   push,
		cfg:    cfg,
		logger: logger,
	}
}

// Dispatch delivers one request. It never mutates booking state; the outcome
// is reported in the result and a failed recipient never aborts the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) DispatchResult {
	switch req.Channel {
	case ChannelEmail:
		return d.dispatchEmail(ctx, req)
	case ChannelSMS:
		return d.dispatchSMS(ctx, req)
	case ChannelPush:
		return d.dispatchPush(ctx, req)
	}

	d.logger.Error("Unknown dispatch channel",
		slog.String("channel", string(req.Channel)),
		slog.String("job_id", req.JobID),
	)
	return DispatchResult{Failures: []*domain.RecipientError{
		{Recipient: "-", Err: fmt.Errorf("unknown channel %q", req.Channel)},
	}}
}

// dispatchEmail mails every recipient concurrently, bounded by the configured
// parallelism, each under its own timeout.
func (d *Dispatcher) dispatchEmail(ctx context.Context, req *Request) DispatchResult {
	subject := Subject(req.Kind, req.Context)

	var (
		mu     sync.Mutex
		result DispatchResult
		wg     sync.WaitGroup
		sem    = make(chan struct{}, d.cfg.Concurrency)
	)

	for _, rcpt := range req.Recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(rcpt Recipient) {
			defer wg.Done()
			defer func() { <-sem }()

			sendCtx, cancel := context.WithTimeout(ctx, d.cfg.RecipientTimeout)
			defer cancel()

			err := d.mailer.Send(sendCtx, rcpt.Email, rcpt.Name, subject, req.Kind, req.Context)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.logger.Error("Mail delivery failed",
					slog.String("job_id", req.JobID),
					slog.String("kind", string(req.Kind)),
					slog.String("recipient", rcpt.Email),
					slog.Any("error", err),
				)
				result.Failures = append(result.Failures, &domain.RecipientError{Recipient: rcpt.Email, Err: err})
				return
			}
			result.Sent++
		}(rcpt)
	}

	wg.Wait()
	return result
}

// dispatchSMS texts every recipient. SMS is best effort: failures are logged
// and counted, never escalated by callers.
func (d *Dispatcher) dispatchSMS(ctx context.Context, req *Request) DispatchResult {
	body := SMSBody(req.Context, domain.MinutesToHoursMins(req.Context.Duration))

	var (
		mu     sync.Mutex
		result DispatchResult
		wg     sync.WaitGroup
		sem    = make(chan struct{}, d.cfg.Concurrency)
	)

	for _, rcpt := range req.Recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(rcpt Recipient) {
			defer wg.Done()
			defer func() { <-sem }()

			sendCtx, cancel := context.WithTimeout(ctx, d.cfg.RecipientTimeout)
			defer cancel()

			status, err := d.sms.Send(sendCtx, d.cfg.SMSFromNumber, rcpt.Mobile, body)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.logger.Warn("SMS delivery failed",
					slog.String("job_id", req.JobID),
					slog.String("recipient", rcpt.Mobile),
					slog.Any("error", err),
				)
				result.Failures = append(result.Failures, &domain.RecipientError{Recipient: rcpt.Mobile, Err: err})
				return
			}
			d.logger.Info("SMS sent",
				slog.String("job_id", req.JobID),
				slog.String("recipient", rcpt.Mobile),
				slog.String("status", status),
			)
			result.Sent++
		}(rcpt)
	}

	wg.Wait()
	return result
}

// dispatchPush sends one gateway call for the whole batch, tagged with the
// recipients' user ids.
func (d *Dispatcher) dispatchPush(ctx context.Context, req *Request) DispatchResult {
	tags := make([]string, 0, len(req.Recipients))
	for _, rcpt := range req.Recipients {
		tags = append(tags, rcpt.UserID)
	}

	android, ios := sounds(req.Kind, req.Context.Immediate)
	payload := PushPayload{
		Title:        d.cfg.AppTitle,
		Contents:     PushContents(req.Kind, req.Context),
		JobID:        req.JobID,
		Type:         req.Kind,
		AndroidSound: android,
		IOSSound:     ios,
		SendAfter:    req.SendAfter,
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.RecipientTimeout)
	defer cancel()

	if err := d.push.Send(sendCtx, tags, payload); err != nil {
		d.logger.Error("Push delivery failed",
			slog.String("job_id", req.JobID),
			slog.String("kind", string(req.Kind)),
			slog.Int("recipients", len(tags)),
			slog.Any("error", err),
		)
		result := DispatchResult{}
		for _, tag := range tags {
			result.Failures = append(result.Failures, &domain.RecipientError{Recipient: tag, Err: err})
		}
		return result
	}

	d.logger.Info("Push sent",
		slog.String("job_id", req.JobID),
		slog.String("kind", string(req.Kind)),
		slog.Int("recipients", len(tags)),
		slog.Bool("delayed", req.SendAfter != nil),
	)
	return DispatchResult{Sent: len(tags)}
}
