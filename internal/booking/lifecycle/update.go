package lifecycle

import (
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
)

// Update is an admin edit of a booking. Nil fields are left untouched.
type Update struct {
	Status         *domain.Status
	Due            *time.Time
	FromLanguageID *string
	AdminComments  *string
	Reference      *string
	// SessionTime (HH:MM:SS) is required when moving started to completed.
	SessionTime *string
}

// ApplyUpdate applies an admin edit: due and language moves always produce
// their own change events, in addition to (never instead of) whatever the
// status transition fires. Status moves follow the transition table; a move
// that needs an admin comment fails with a ValidationError when the comment
// is empty rather than silently doing nothing.
func (e *Engine) ApplyUpdate(job *domain.Job, active *domain.Assignment, upd Update) (*Result, error) {
	now := e.clock.Now()
	result := &Result{}

	comments := job.AdminComments
	if upd.AdminComments != nil {
		comments = *upd.AdminComments
	}

	if upd.Status != nil && *upd.Status != job.Status {
		if err := e.applyStatusChange(job, active, upd, comments, now, result); err != nil {
			return nil, err
		}
	}

	var dateChanged *domain.DateChanged
	if upd.Due != nil && !upd.Due.Equal(job.Due) {
		dateChanged = &domain.DateChanged{Base: domain.Base{Booking: job}, OldTime: job.Due}
		job.Due = *upd.Due
	}

	var langChanged *domain.LanguageChanged
	if upd.FromLanguageID != nil && *upd.FromLanguageID != job.FromLanguageID {
		langChanged = &domain.LanguageChanged{Base: domain.Base{Booking: job}, OldLanguageID: job.FromLanguageID}
		job.FromLanguageID = *upd.FromLanguageID
	}

	if upd.AdminComments != nil {
		job.AdminComments = *upd.AdminComments
	}
	if upd.Reference != nil {
		job.Reference = *upd.Reference
	}

	// Change notifications are pointless once the session time has passed;
	// the mutation itself still goes through.
	if job.Due.After(now) {
		if dateChanged != nil {
			result.Events = append(result.Events, *dateChanged)
		}
		if langChanged != nil {
			result.Events = append(result.Events, *langChanged)
		}
	}

	return result, nil
}

// applyStatusChange validates and applies the admin status move per the
// transition table for the job's current status.
func (e *Engine) applyStatusChange(job *domain.Job, active *domain.Assignment, upd Update, comments string, now time.Time, result *Result) error {
	target := *upd.Status

	switch job.Status {
	case domain.StatusTimedOut:
		if target != domain.StatusPending {
			return e.illegal(job, target)
		}
		job.Status = domain.StatusPending
		job.CreatedAt = now
		job.WillExpireAt = domain.WillExpireAt(job.Due, now)
		result.Events = append(result.Events,
			domain.JobReopened{Base: domain.Base{Booking: job}},
			domain.CandidatesWanted{Base: domain.Base{Booking: job}},
		)
		return nil

	case domain.StatusPending:
		if target != domain.StatusTimedOut {
			return e.illegal(job, target)
		}
		if comments == "" {
			return domain.NewValidationError("admin_comments", "an admin comment is required to time out a booking")
		}
		job.Status = domain.StatusTimedOut
		return nil

	case domain.StatusAssigned:
		switch target {
		case domain.StatusStarted:
			job.Status = domain.StatusStarted
			return nil
		case domain.StatusWithdrawBefore24, domain.StatusWithdrawAfter24, domain.StatusTimedOut:
			if target == domain.StatusTimedOut && comments == "" {
				return domain.NewValidationError("admin_comments", "an admin comment is required to time out a booking")
			}
			job.Status = target
			var translatorID string
			if active != nil && active.Active() {
				cancelAt := now
				active.CancelAt = &cancelAt
				translatorID = active.TranslatorID
				result.UpdatedAssignments = append(result.UpdatedAssignments, active)
			}
			result.Events = append(result.Events, domain.CancelledFromStatus{
				Base:         domain.Base{Booking: job},
				TranslatorID: translatorID,
			})
			return nil
		}
		return e.illegal(job, target)

	case domain.StatusStarted:
		if target != domain.StatusCompleted {
			return e.illegal(job, target)
		}
		if comments == "" {
			return domain.NewValidationError("admin_comments", "an admin comment is required to complete a booking")
		}
		if upd.SessionTime == nil || *upd.SessionTime == "" {
			return domain.NewValidationError("session_time", "session time is required to complete a booking")
		}
		endAt := now
		job.Status = domain.StatusCompleted
		job.EndAt = &endAt
		job.SessionTime = *upd.SessionTime

		var translatorID string
		if active != nil && active.Active() {
			completedAt := now
			active.CompletedAt = &completedAt
			translatorID = active.TranslatorID
			result.UpdatedAssignments = append(result.UpdatedAssignments, active)
		}
		result.Events = append(result.Events, domain.SessionEnded{
			Base:         domain.Base{Booking: job},
			TranslatorID: translatorID,
			SessionTime:  job.SessionTime,
		})
		return nil

	case domain.StatusWithdrawAfter24:
		if target != domain.StatusTimedOut {
			return e.illegal(job, target)
		}
		if comments == "" {
			return domain.NewValidationError("admin_comments", "an admin comment is required to time out a booking")
		}
		// status rewrite only, no notification
		job.Status = domain.StatusTimedOut
		return nil
	}

	return e.illegal(job, target)
}

func (e *Engine) illegal(job *domain.Job, target domain.Status) error {
	return domain.NewConflictError("job %s: illegal transition %s -> %s", job.ID, job.Status, target)
}
