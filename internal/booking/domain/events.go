package domain

import "time"

// EventKind identifies a domain event produced by a lifecycle transition.
type EventKind string

const (
	EventJobCreated            EventKind = "job.created"
	EventJobAccepted           EventKind = "job.accepted"
	EventJobReopened           EventKind = "job.reopened"
	EventJobExpired            EventKind = "job.expired"
	EventTranslatorChanged     EventKind = "job.translator_changed"
	EventDateChanged           EventKind = "job.date_changed"
	EventLanguageChanged       EventKind = "job.language_changed"
	EventCancelledByCustomer   EventKind = "job.cancelled_by_customer"
	EventCancelledByTranslator EventKind = "job.cancelled_by_translator"
	EventCancelledFromStatus   EventKind = "job.cancelled_by_admin"
	EventSessionEnded          EventKind = "job.session_ended"
	EventCandidatesWanted      EventKind = "job.candidates_wanted"
)

// Event is a typed record of something a lifecycle transition decided. The
// engine returns the full list for a transition; the service forwards it to
// the notification pipeline after the mutation is committed.
type Event interface {
	Kind() EventKind
	Job() *Job
}

// Base carries the job an event is scoped to.
type Base struct {
	Booking *Job
}

func (b Base) Job() *Job { return b.Booking }

// JobCreated fires on booking creation.
type JobCreated struct{ Base }

func (JobCreated) Kind() EventKind { return EventJobCreated }

// JobAccepted fires when a translator takes a pending job.
type JobAccepted struct {
	Base
	TranslatorID string
}

func (JobAccepted) Kind() EventKind { return EventJobAccepted }

// JobReopened fires when an admin resets a timed-out booking to pending.
type JobReopened struct{ Base }

func (JobReopened) Kind() EventKind { return EventJobReopened }

// JobExpired fires when the match window elapsed with no acceptance.
type JobExpired struct{ Base }

func (JobExpired) Kind() EventKind { return EventJobExpired }

// TranslatorChanged fires on an admin reassignment. OldTranslatorID is empty
// when the job had no active assignment before.
type TranslatorChanged struct {
	Base
	OldTranslatorID string
	NewTranslatorID string
}

func (TranslatorChanged) Kind() EventKind { return EventTranslatorChanged }

// DateChanged fires whenever due moves, independent of any status change.
type DateChanged struct {
	Base
	OldTime time.Time
}

func (DateChanged) Kind() EventKind { return EventDateChanged }

// LanguageChanged fires whenever the booked language moves, independent of
// any status change.
type LanguageChanged struct {
	Base
	OldLanguageID string
}

func (LanguageChanged) Kind() EventKind { return EventLanguageChanged }

// CancelledByCustomer fires on a customer-initiated withdraw.
type CancelledByCustomer struct {
	Base
	TranslatorID string // active translator at cancel time, empty if none
}

func (CancelledByCustomer) Kind() EventKind { return EventCancelledByCustomer }

// CancelledByTranslator fires when the assigned translator backs out and the
// job returns to pending.
type CancelledByTranslator struct {
	Base
	TranslatorID string
}

func (CancelledByTranslator) Kind() EventKind { return EventCancelledByTranslator }

// CancelledFromStatus fires when an admin edit moves an assigned or pending
// job into a withdrawn/timedout status.
type CancelledFromStatus struct {
	Base
	TranslatorID string // active translator, empty if none
}

func (CancelledFromStatus) Kind() EventKind { return EventCancelledFromStatus }

// SessionEnded fires when an interpretation session completes.
type SessionEnded struct {
	Base
	TranslatorID string
	SessionTime  string // HH:MM:SS
	CompletedBy  string
}

func (SessionEnded) Kind() EventKind { return EventSessionEnded }

// CandidatesWanted asks the matching pipeline to re-notify eligible
// translators, excluding ExcludeTranslatorID when set.
type CandidatesWanted struct {
	Base
	ExcludeTranslatorID string
}

func (CandidatesWanted) Kind() EventKind { return EventCandidatesWanted }
