// Package service orchestrates the booking use cases: each method loads
// state, validates preconditions, delegates the transition to the lifecycle
// engine, persists the outcome, and forwards the produced events to the
// notification pipeline. Precondition failures abort before any mutation;
// notification failures after the commit are logged, never rolled back.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/lifecycle"
	"github.com/interpretly/booking-be/internal/booking/matcher"
	"github.com/interpretly/booking-be/internal/clock"
)

// Config tunes booking behavior.
type Config struct {
	// ImmediateLead is how far ahead an immediate booking is due.
	ImmediateLead time.Duration
}

// BookingService is the end-to-end orchestrator for booking use cases.
type BookingService struct {
	store     Store
	engine    *lifecycle.Engine
	matcher   *matcher.Matcher
	publisher Publisher
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger
}

// New creates a BookingService.
func New(store Store, engine *lifecycle.Engine, m *matcher.Matcher, publisher Publisher, clk clock.Clock, cfg Config, logger *slog.Logger) *BookingService {
	if cfg.ImmediateLead <= 0 {
		cfg.ImmediateLead = 5 * time.Minute
	}
	return &BookingService{
		store:     store,
		engine:    engine,
		matcher:   m,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
	}
}

// Result is the outcome handed back to the API layer. Validation failures
// carry the offending field name for field-level UI feedback.
type Result struct {
	Status    string      `json:"status"` // success | fail
	Message   string      `json:"message,omitempty"`
	FieldName string      `json:"field_name,omitempty"`
	Job       *domain.Job `json:"job,omitempty"`
}

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

func success(job *domain.Job, message string) *Result {
	return &Result{Status: statusSuccess, Message: message, Job: job}
}

func fail(message string) *Result {
	return &Result{Status: statusFail, Message: message}
}

// resultFromError maps the domain error taxonomy onto the result contract.
// Unknown errors pass through for the transport layer to turn into a 500.
func resultFromError(err error) (*Result, error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return &Result{Status: statusFail, Message: vErr.Message, FieldName: vErr.Field}, nil
	}
	var cErr *domain.ConflictError
	if errors.As(err, &cErr) {
		return fail(cErr.Message), nil
	}
	if errors.Is(err, domain.ErrJobAlreadyTaken) {
		return fail("Jobbet kunde inte accepteras."), nil
	}
	if errors.Is(err, domain.ErrJobNotFound) || errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return nil, err
}

// persist writes the engine's outcome: job first, then any closed or fresh
// assignment rows.
func (s *BookingService) persist(ctx context.Context, job *domain.Job, res *lifecycle.Result) error {
	if err := s.store.SaveJob(ctx, job); err != nil {
		return err
	}
	for _, a := range res.UpdatedAssignments {
		if err := s.store.SaveAssignment(ctx, a); err != nil {
			return err
		}
	}
	if res.NewAssignment != nil {
		if err := s.store.CreateAssignment(ctx, res.NewAssignment); err != nil {
			return err
		}
	}
	return nil
}

// publishEvents converts engine events to notification requests and hands
// them to the delivery pipeline. The transition is already durable at this
// point, so failures only get logged.
func (s *BookingService) publishEvents(ctx context.Context, events []domain.Event) {
	for _, event := range events {
		requests, err := s.buildRequests(ctx, event)
		if err != nil {
			s.logger.Error("Failed to compose notifications for event",
				slog.String("event", string(event.Kind())),
				slog.String("job_id", event.Job().ID),
				slog.Any("error", err),
			)
			continue
		}
		for _, req := range requests {
			if err := s.publisher.Publish(ctx, req); err != nil {
				s.logger.Error("Failed to publish notification request",
					slog.String("kind", string(req.Kind)),
					slog.String("channel", string(req.Channel)),
					slog.String("job_id", req.JobID),
					slog.Any("error", err),
				)
			}
		}
	}
}
