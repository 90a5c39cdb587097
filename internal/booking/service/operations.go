package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/lifecycle"
)

// Accept lets a translator take a pending job. The double-booking guard runs
// first; the store's conditional write then decides the race, so two
// concurrent accepts produce exactly one winner.
func (s *BookingService) Accept(ctx context.Context, jobID, translatorID string) (*Result, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	translator, err := s.store.GetUser(ctx, translatorID)
	if err != nil {
		return nil, err
	}
	if translator.Role != domain.RoleTranslator {
		return fail("Jobbet kunde inte accepteras."), nil
	}

	booked, err := s.store.IsDoubleBooked(ctx, translator.ID, job.Due, job.Duration)
	if err != nil {
		return nil, err
	}
	if booked {
		return fail("Du har redan en bokning den tiden! Bokningen är inte accepterad."), nil
	}

	res, err := s.engine.Accept(job, translator)
	if err != nil {
		return resultFromError(err)
	}

	// The conditional write is the arbiter: the loser of a race gets
	// ErrJobAlreadyTaken here, with nothing mutated.
	if err := s.store.AcceptJob(ctx, res.NewAssignment); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyTaken) {
			return resultFromError(err)
		}
		return nil, err
	}

	s.logger.Info("Booking accepted",
		slog.String("job_id", job.ID),
		slog.String("translator_id", translator.ID),
	)

	s.publishEvents(ctx, res.Events)
	return success(job, fmt.Sprintf("Du har nu accepterat och fått bokningen %s", job.DueString())), nil
}

// Cancel withdraws a booking. Customers (and admins acting for them) fall
// into the before/after-24h split; translators can only back out with more
// than 24 hours of lead, which resets the job to pending and re-notifies the
// remaining candidates.
func (s *BookingService) Cancel(ctx context.Context, jobID, actorID string) (*Result, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	actor, err := s.store.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var res *lifecycle.Result
	switch actor.Role {
	case domain.RoleTranslator:
		if active == nil || active.TranslatorID != actor.ID {
			return fail("Du kan inte avboka en bokning som inte är din."), nil
		}
		res, err = s.engine.CancelByTranslator(job, active)
	default:
		res, err = s.engine.CancelByCustomer(job, active)
	}
	if err != nil {
		return resultFromError(err)
	}

	if err := s.persist(ctx, job, res); err != nil {
		return nil, err
	}

	s.logger.Info("Booking cancelled",
		slog.String("job_id", job.ID),
		slog.String("actor_id", actor.ID),
		slog.String("actor_role", string(actor.Role)),
		slog.String("status", string(job.Status)),
	)

	s.publishEvents(ctx, res.Events)
	return success(job, ""), nil
}

// End completes a started session, recording the elapsed wall time between
// due and now. Ending an already completed job is an idempotent no-op
// success: nothing is persisted and nothing fires twice.
func (s *BookingService) End(ctx context.Context, jobID, actorID string) (*Result, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.End(job, active, actorID)
	if err != nil {
		return resultFromError(err)
	}
	if len(res.Events) == 0 && res.NewAssignment == nil && len(res.UpdatedAssignments) == 0 {
		// already completed
		return success(job, ""), nil
	}

	if err := s.persist(ctx, job, res); err != nil {
		return nil, err
	}

	s.logger.Info("Session ended",
		slog.String("job_id", job.ID),
		slog.String("session_time", job.SessionTime),
		slog.String("completed_by", actorID),
	)

	s.publishEvents(ctx, res.Events)
	return success(job, ""), nil
}

// Reopen resets a job (typically timed out) back to pending and re-notifies
// the candidate pool. Admin only.
func (s *BookingService) Reopen(ctx context.Context, jobID, adminID string) (*Result, error) {
	admin, err := s.store.GetUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != domain.RoleAdmin {
		return fail("Only admins may reopen bookings."), nil
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Reopen(job, active)
	if err != nil {
		return resultFromError(err)
	}

	if err := s.persist(ctx, job, res); err != nil {
		return nil, err
	}

	s.logger.Info("Booking reopened",
		slog.String("job_id", job.ID),
		slog.String("admin_id", adminID),
	)

	s.publishEvents(ctx, res.Events)
	return success(job, "Job reopened successfully"), nil
}

// Reassign replaces the job's translator by admin decision, closing the old
// assignment and notifying all three parties.
func (s *BookingService) Reassign(ctx context.Context, jobID, newTranslatorID, adminID string) (*Result, error) {
	admin, err := s.store.GetUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != domain.RoleAdmin {
		return fail("Only admins may reassign bookings."), nil
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	translator, err := s.store.GetUser(ctx, newTranslatorID)
	if err != nil {
		return nil, err
	}
	if translator.Role != domain.RoleTranslator {
		return fail("The chosen user is not a translator."), nil
	}

	booked, err := s.store.IsDoubleBooked(ctx, translator.ID, job.Due, job.Duration)
	if err != nil {
		return nil, err
	}
	if booked {
		return fail("Du har redan en bokning den tiden! Bokningen är inte accepterad."), nil
	}

	active, err := s.store.GetActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Reassign(job, active, translator)
	if err != nil {
		return resultFromError(err)
	}

	if err := s.persist(ctx, job, res); err != nil {
		return nil, err
	}

	s.logger.Info("Booking reassigned",
		slog.String("job_id", job.ID),
		slog.String("new_translator_id", translator.ID),
		slog.String("admin_id", adminID),
	)

	s.publishEvents(ctx, res.Events)
	return success(job, ""), nil
}

// Update applies an admin edit. Due and language moves are themselves
// notified in addition to whatever status change fires; the edit is logged
// with the acting admin, which is the audit trail for due reschedules.
func (s *BookingService) Update(ctx context.Context, jobID string, upd lifecycle.Update, adminID string) (*Result, error) {
	admin, err := s.store.GetUser(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != domain.RoleAdmin {
		return fail("Only admins may edit bookings."), nil
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.GetActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, err
	}

	oldStatus, oldDue := job.Status, job.Due

	res, err := s.engine.ApplyUpdate(job, active, upd)
	if err != nil {
		return resultFromError(err)
	}

	if err := s.persist(ctx, job, res); err != nil {
		return nil, err
	}

	s.logger.Info("Booking updated",
		slog.String("job_id", job.ID),
		slog.String("admin_id", adminID),
		slog.String("old_status", string(oldStatus)),
		slog.String("new_status", string(job.Status)),
		slog.Time("old_due", oldDue),
		slog.Time("new_due", job.Due),
	)

	s.publishEvents(ctx, res.Events)
	return success(job, ""), nil
}

// Expire is the external scheduler's entry point for jobs past their match
// window: pending flips to timedout with no further side effect.
func (s *BookingService) Expire(ctx context.Context, jobID string) (*Result, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Expire(job)
	if err != nil {
		return resultFromError(err)
	}

	if err := s.persist(ctx, job, res); err != nil {
		return nil, err
	}

	s.logger.Info("Booking timed out",
		slog.String("job_id", job.ID),
	)
	return success(job, ""), nil
}

// NotifyExpired pushes the no-translator-found message to the customer of a
// timed-out booking. Separate from Expire so the scheduler controls when,
// and whether, the customer is told.
func (s *BookingService) NotifyExpired(ctx context.Context, jobID string) (*Result, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.StatusTimedOut {
		return resultFromError(domain.NewConflictError("job %s is not timed out", job.ID))
	}

	s.publishEvents(ctx, []domain.Event{
		domain.JobExpired{Base: domain.Base{Booking: job}},
	})
	return success(job, ""), nil
}

// NotifyCandidates re-runs matching for a job and notifies the eligible
// translators, optionally excluding one (the translator who just cancelled).
func (s *BookingService) NotifyCandidates(ctx context.Context, jobID, excludeTranslatorID string) (*Result, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, []domain.Event{
		domain.CandidatesWanted{Base: domain.Base{Booking: job}, ExcludeTranslatorID: excludeTranslatorID},
	})
	return success(job, ""), nil
}
