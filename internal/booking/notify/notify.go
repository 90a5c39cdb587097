// Package notify composes and delivers channel-specific booking
// notifications. Composition is pure; delivery goes through the mail, SMS and
// push gateway interfaces with bounded parallelism and per-recipient
// isolation.
package notify

import (
	"context"
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
)

// Channel is a delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// TemplateKind selects the message builder for a notification.
type TemplateKind string

const (
	TemplateJobCreated                TemplateKind = "job-created"
	TemplateJobAccepted               TemplateKind = "job-accepted"
	TemplateJobAcceptedPush           TemplateKind = "job-accepted-push"
	TemplateChangedTranslatorCustomer TemplateKind = "job-changed-translator-customer"
	TemplateChangedTranslatorOld      TemplateKind = "job-changed-translator-old-translator"
	TemplateChangedTranslatorNew      TemplateKind = "job-changed-translator-new-translator"
	TemplateChangedDate               TemplateKind = "job-changed-date"
	TemplateChangedLanguage           TemplateKind = "job-changed-lang"
	TemplateCancelledCustomer         TemplateKind = "job-cancelled-by-customer"
	TemplateCancelledTranslator       TemplateKind = "job-cancelled-by-translator"
	TemplateSessionEnded              TemplateKind = "session-ended"
	TemplateSessionReminder           TemplateKind = "session-reminder"
	TemplateJobExpired                TemplateKind = "job-expired"
	TemplateJobReopened               TemplateKind = "job-reopened"
	TemplateNewSuitableJob            TemplateKind = "new-suitable-job"
)

// Recipient is one target of a dispatch.
type Recipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// Context carries the job snapshot and transition details a template needs.
// It is the only input to message composition; the dispatcher never reads
// store state.
type Context struct {
	JobID        string `json:"job_id"`
	LanguageName string `json:"language"`
	Due          string `json:"due"`      // "2006-01-02 15:04:05"
	DueDate      string `json:"due_date"` // date part of Due
	DueTime      string `json:"due_time"` // clock part of Due
	Duration     int    `json:"duration"` // minutes
	Town         string `json:"town,omitempty"`
	Physical     bool   `json:"physical"`
	Phone        bool   `json:"phone"`
	Immediate    bool   `json:"immediate"`
	OldTime      string `json:"old_time,omitempty"`
	OldLanguage  string `json:"old_lang,omitempty"`
	SessionTime  string `json:"session_time,omitempty"` // "H tim M min"
	ForText      string `json:"for_text,omitempty"`     // faktura | lön
}

// Request is one channel dispatch: a template applied to a recipient set.
// Requests are what the API service publishes and the delivery worker
// consumes.
type Request struct {
	Channel    Channel      `json:"channel"`
	Kind       TemplateKind `json:"kind"`
	JobID      string       `json:"job_id"`
	Recipients []Recipient  `json:"recipients"`
	Context    Context      `json:"context"`
	// SendAfter schedules a delayed push batch for the next business-day
	// start; unset for the immediate batch and for other channels.
	SendAfter *time.Time `json:"send_after,omitempty"`
}

// DispatchResult reports a fan-out outcome. A failed recipient never blocks
// the rest.
type DispatchResult struct {
	Sent     int
	Failures []*domain.RecipientError
}

// Err folds the failures into a DispatchError, or nil when all deliveries
// succeeded.
func (r DispatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &domain.DispatchError{Failures: r.Failures}
}

// Mailer delivers a rendered booking mail. Transport and templating live
// behind this boundary.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject string, kind TemplateKind, tctx Context) error
}

// SMSGateway delivers a single text message and reports the carrier status.
type SMSGateway interface {
	Send(ctx context.Context, from, to, body string) (string, error)
}

// PushPayload is the push-notification body handed to the gateway.
type PushPayload struct {
	Title        string            `json:"title"`
	Contents     map[string]string `json:"contents"` // localized body, "en" primary
	JobID        string            `json:"job_id"`
	Type         TemplateKind      `json:"type"`
	AndroidSound string            `json:"android_sound"`
	IOSSound     string            `json:"ios_sound"`
	SendAfter    *time.Time        `json:"send_after,omitempty"`
}

// PushGateway fans a payload out to the devices registered under the given
// user tags.
type PushGateway interface {
	Send(ctx context.Context, userTags []string, payload PushPayload) error
}
