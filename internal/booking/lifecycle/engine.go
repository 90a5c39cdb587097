// Package lifecycle implements the booking status state machine. The engine
// is stateless: it validates a requested transition against the loaded job
// and active assignment, mutates them in place, and returns the typed events
// the transition produced. Persistence and notification delivery happen in
// the calling service, after the engine has decided.
package lifecycle

import (
	"time"

	"github.com/google/uuid"
	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/clock"
)

// Result is what a transition decided: the events to publish once the
// mutation is committed, plus any assignment rows to insert or update. The
// job and active assignment passed in are mutated in place.
type Result struct {
	Events             []domain.Event
	NewAssignment      *domain.Assignment
	UpdatedAssignments []*domain.Assignment
}

// Engine validates and applies booking transitions.
type Engine struct {
	clock clock.Clock
}

// New creates an Engine.
func New(clk clock.Clock) *Engine {
	return &Engine{clock: clk}
}

// Accept moves a pending job to assigned for the given translator. The
// caller must already have won the store's conditional status write and
// checked double booking; Accept enforces the status precondition again on
// the loaded row.
func (e *Engine) Accept(job *domain.Job, translator *domain.User) (*Result, error) {
	if job.Status != domain.StatusPending && job.Status != domain.StatusTimedOut {
		return nil, domain.NewConflictError("job %s cannot be accepted from status %s", job.ID, job.Status)
	}

	now := e.clock.Now()
	job.Status = domain.StatusAssigned

	assignment := &domain.Assignment{
		ID:           uuid.New().String(),
		JobID:        job.ID,
		TranslatorID: translator.ID,
		AssignedAt:   now,
	}

	return &Result{
		Events: []domain.Event{
			domain.JobAccepted{Base: domain.Base{Booking: job}, TranslatorID: translator.ID},
		},
		NewAssignment: assignment,
	}, nil
}

// Start marks an assigned job as started. No notification fires.
func (e *Engine) Start(job *domain.Job) (*Result, error) {
	if job.Status != domain.StatusAssigned {
		return nil, domain.NewConflictError("job %s cannot start from status %s", job.ID, job.Status)
	}
	job.Status = domain.StatusStarted
	return &Result{}, nil
}

// Expire moves a pending job to timedout once its match window elapsed. The
// external scheduler drives this; the only effect is the status write.
func (e *Engine) Expire(job *domain.Job) (*Result, error) {
	if job.Status != domain.StatusPending {
		return nil, domain.NewConflictError("job %s cannot expire from status %s", job.ID, job.Status)
	}
	job.Status = domain.StatusTimedOut
	return &Result{}, nil
}

// CancelByCustomer withdraws a job on the customer's request. The
// before/after-24h split is decided by the lead time left at cancel time.
// The active assignment, when present, is closed and its translator
// notified.
func (e *Engine) CancelByCustomer(job *domain.Job, active *domain.Assignment) (*Result, error) {
	if job.Status.IsTerminal() || job.Status == domain.StatusTimedOut {
		return nil, domain.NewConflictError("job %s cannot be cancelled from status %s", job.ID, job.Status)
	}

	now := e.clock.Now()
	withdraw := now
	job.WithdrawAt = &withdraw

	if job.Due.Sub(now) >= 24*time.Hour {
		job.Status = domain.StatusWithdrawBefore24
	} else {
		job.Status = domain.StatusWithdrawAfter24
	}

	result := &Result{}
	var translatorID string
	if active != nil && active.Active() {
		cancelAt := now
		active.CancelAt = &cancelAt
		translatorID = active.TranslatorID
		result.UpdatedAssignments = append(result.UpdatedAssignments, active)
	}

	result.Events = append(result.Events, domain.CancelledByCustomer{
		Base:         domain.Base{Booking: job},
		TranslatorID: translatorID,
	})
	return result, nil
}

// CancelByTranslator lets the assigned translator back out, but only with
// more than 24 hours of lead time. The job returns to pending with a fresh
// match window and the candidate pool is re-notified without the canceller.
func (e *Engine) CancelByTranslator(job *domain.Job, active *domain.Assignment) (*Result, error) {
	if active == nil || !active.Active() {
		return nil, domain.NewConflictError("job %s has no active assignment to cancel", job.ID)
	}

	now := e.clock.Now()
	if job.Due.Sub(now) <= 24*time.Hour {
		return nil, domain.NewConflictError("bookings within 24 hours cannot be cancelled by the translator")
	}

	cancelAt := now
	active.CancelAt = &cancelAt

	job.Status = domain.StatusPending
	job.CreatedAt = now
	job.WillExpireAt = domain.WillExpireAt(job.Due, now)

	return &Result{
		Events: []domain.Event{
			domain.CancelledByTranslator{Base: domain.Base{Booking: job}, TranslatorID: active.TranslatorID},
			domain.CandidatesWanted{Base: domain.Base{Booking: job}, ExcludeTranslatorID: active.TranslatorID},
		},
		UpdatedAssignments: []*domain.Assignment{active},
	}, nil
}

// End completes a started session. Calling End on an already completed job
// is a no-op success; any other status is a conflict. Session time is the
// wall time from due to now, recorded as HH:MM:SS.
func (e *Engine) End(job *domain.Job, active *domain.Assignment, completedBy string) (*Result, error) {
	if job.Status == domain.StatusCompleted {
		return &Result{}, nil
	}
	if job.Status != domain.StatusStarted {
		return nil, domain.NewConflictError("job %s cannot end from status %s", job.ID, job.Status)
	}

	now := e.clock.Now()
	endAt := now
	job.EndAt = &endAt
	job.Status = domain.StatusCompleted
	if job.SessionTime == "" {
		job.SessionTime = domain.FormatSessionTime(now.Sub(job.Due))
	}

	result := &Result{}
	var translatorID string
	if active != nil && active.Active() {
		completedAt := now
		active.CompletedAt = &completedAt
		active.CompletedBy = completedBy
		translatorID = active.TranslatorID
		result.UpdatedAssignments = append(result.UpdatedAssignments, active)
	}

	result.Events = append(result.Events, domain.SessionEnded{
		Base:         domain.Base{Booking: job},
		TranslatorID: translatorID,
		SessionTime:  job.SessionTime,
		CompletedBy:  completedBy,
	})
	return result, nil
}

// Reopen resets a non-terminal job back to pending with a fresh match
// window, closing any active assignment, and asks for the candidate pool to
// be re-notified. This is the only way out of timedout.
func (e *Engine) Reopen(job *domain.Job, active *domain.Assignment) (*Result, error) {
	if job.Status.IsTerminal() {
		return nil, domain.NewConflictError("job %s cannot be reopened from status %s", job.ID, job.Status)
	}

	now := e.clock.Now()
	job.Status = domain.StatusPending
	job.CreatedAt = now
	job.WillExpireAt = domain.WillExpireAt(job.Due, now)

	result := &Result{
		Events: []domain.Event{
			domain.JobReopened{Base: domain.Base{Booking: job}},
			domain.CandidatesWanted{Base: domain.Base{Booking: job}},
		},
	}

	if active != nil && active.Active() {
		cancelAt := now
		active.CancelAt = &cancelAt
		result.UpdatedAssignments = append(result.UpdatedAssignments, active)
	}

	return result, nil
}

// Reassign replaces the job's translator by admin decision. The prior active
// assignment, when present, is closed; old translator, new translator and
// customer are all notified, and the new translator gets a session-start
// reminder.
func (e *Engine) Reassign(job *domain.Job, active *domain.Assignment, newTranslator *domain.User) (*Result, error) {
	switch job.Status {
	case domain.StatusPending, domain.StatusAssigned, domain.StatusTimedOut:
	default:
		return nil, domain.NewConflictError("job %s cannot be reassigned from status %s", job.ID, job.Status)
	}

	if active != nil && active.Active() && active.TranslatorID == newTranslator.ID {
		return nil, domain.NewConflictError("job %s is already assigned to translator %s", job.ID, newTranslator.ID)
	}

	now := e.clock.Now()
	result := &Result{}

	var oldTranslatorID string
	if active != nil && active.Active() {
		cancelAt := now
		active.CancelAt = &cancelAt
		oldTranslatorID = active.TranslatorID
		result.UpdatedAssignments = append(result.UpdatedAssignments, active)
	}

	job.Status = domain.StatusAssigned
	result.NewAssignment = &domain.Assignment{
		ID:           uuid.New().String(),
		JobID:        job.ID,
		TranslatorID: newTranslator.ID,
		AssignedAt:   now,
	}

	result.Events = append(result.Events, domain.TranslatorChanged{
		Base:            domain.Base{Booking: job},
		OldTranslatorID: oldTranslatorID,
		NewTranslatorID: newTranslator.ID,
	})
	return result, nil
}
