package service

import (
	"context"
	"fmt"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/notify"
)

// jobContext snapshots the job into the template context. The language name
// is resolved here so the delivery worker never needs store access.
func (s *BookingService) jobContext(ctx context.Context, job *domain.Job) (notify.Context, error) {
	var languageName string
	if lang, err := s.store.GetLanguage(ctx, job.FromLanguageID); err == nil {
		languageName = lang.Name
	} else {
		languageName = job.FromLanguageID
	}

	date, clock := job.SplitDue()
	return notify.Context{
		JobID:        job.ID,
		LanguageName: languageName,
		Due:          job.DueString(),
		DueDate:      date,
		DueTime:      clock,
		Duration:     job.Duration,
		Town:         job.Town,
		Physical:     job.CustomerPhysicalType,
		Phone:        job.CustomerPhoneType,
		Immediate:    job.Immediate,
	}, nil
}

// customerRecipient resolves the booking's contact address, honoring the
// per-job email override.
func (s *BookingService) customerRecipient(ctx context.Context, job *domain.Job) (notify.Recipient, error) {
	customer, err := s.store.GetUser(ctx, job.CustomerID)
	if err != nil {
		return notify.Recipient{}, err
	}
	email := customer.Email
	if job.UserEmail != "" {
		email = job.UserEmail
	}
	return notify.Recipient{UserID: customer.ID, Name: customer.Name, Email: email, Mobile: customer.Mobile}, nil
}

func (s *BookingService) translatorRecipient(ctx context.Context, translatorID string) (notify.Recipient, error) {
	translator, err := s.store.GetUser(ctx, translatorID)
	if err != nil {
		return notify.Recipient{}, err
	}
	return notify.Recipient{UserID: translator.ID, Name: translator.Name, Email: translator.Email, Mobile: translator.Mobile}, nil
}

func emailReq(kind notify.TemplateKind, job *domain.Job, tctx notify.Context, recipients ...notify.Recipient) *notify.Request {
	return &notify.Request{
		Channel:    notify.ChannelEmail,
		Kind:       kind,
		JobID:      job.ID,
		Recipients: recipients,
		Context:    tctx,
	}
}

func pushReq(kind notify.TemplateKind, job *domain.Job, tctx notify.Context, recipients ...notify.Recipient) *notify.Request {
	return &notify.Request{
		Channel:    notify.ChannelPush,
		Kind:       kind,
		JobID:      job.ID,
		Recipients: recipients,
		Context:    tctx,
	}
}

// buildRequests maps one domain event onto its channel dispatches. This is
// the complete who-gets-notified contract for every transition.
func (s *BookingService) buildRequests(ctx context.Context, event domain.Event) ([]*notify.Request, error) {
	job := event.Job()
	tctx, err := s.jobContext(ctx, job)
	if err != nil {
		return nil, err
	}

	switch ev := event.(type) {
	case domain.JobCreated:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		return []*notify.Request{emailReq(notify.TemplateJobCreated, job, tctx, customer)}, nil

	case domain.JobAccepted:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		translator, err := s.translatorRecipient(ctx, ev.TranslatorID)
		if err != nil {
			return nil, err
		}
		requests := []*notify.Request{
			emailReq(notify.TemplateJobAccepted, job, tctx, customer, translator),
		}
		if customerUser, err := s.store.GetUser(ctx, job.CustomerID); err == nil && s.matcher.CanSendPush(customerUser) {
			req := pushReq(notify.TemplateJobAcceptedPush, job, tctx, customer)
			if s.matcher.NeedDelayPush(customerUser) {
				at := s.matcher.NextBusinessTime()
				req.SendAfter = &at
			}
			requests = append(requests, req)
		}
		return requests, nil

	case domain.JobReopened:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		return []*notify.Request{emailReq(notify.TemplateJobReopened, job, tctx, customer)}, nil

	case domain.JobExpired:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		customerUser, err := s.store.GetUser(ctx, job.CustomerID)
		if err != nil {
			return nil, err
		}
		if !s.matcher.CanSendPush(customerUser) {
			return nil, nil
		}
		req := pushReq(notify.TemplateJobExpired, job, tctx, customer)
		if s.matcher.NeedDelayPush(customerUser) {
			at := s.matcher.NextBusinessTime()
			req.SendAfter = &at
		}
		return []*notify.Request{req}, nil

	case domain.TranslatorChanged:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		newTranslator, err := s.translatorRecipient(ctx, ev.NewTranslatorID)
		if err != nil {
			return nil, err
		}
		requests := []*notify.Request{
			emailReq(notify.TemplateChangedTranslatorCustomer, job, tctx, customer),
			emailReq(notify.TemplateChangedTranslatorNew, job, tctx, newTranslator),
		}
		if ev.OldTranslatorID != "" {
			oldTranslator, err := s.translatorRecipient(ctx, ev.OldTranslatorID)
			if err != nil {
				return nil, err
			}
			requests = append(requests, emailReq(notify.TemplateChangedTranslatorOld, job, tctx, oldTranslator))
		}
		// session-start reminder so the incoming translator knows the slot
		if newUser, err := s.store.GetUser(ctx, ev.NewTranslatorID); err == nil && s.matcher.CanSendPush(newUser) {
			req := pushReq(notify.TemplateSessionReminder, job, tctx, newTranslator)
			if s.matcher.NeedDelayPush(newUser) {
				at := s.matcher.NextBusinessTime()
				req.SendAfter = &at
			}
			requests = append(requests, req)
		}
		return requests, nil

	case domain.DateChanged:
		changed := tctx
		changed.OldTime = ev.OldTime.Format("2006-01-02 15:04:05")
		return s.changeRequests(ctx, notify.TemplateChangedDate, job, changed)

	case domain.LanguageChanged:
		changed := tctx
		if lang, err := s.store.GetLanguage(ctx, ev.OldLanguageID); err == nil {
			changed.OldLanguage = lang.Name
		} else {
			changed.OldLanguage = ev.OldLanguageID
		}
		return s.changeRequests(ctx, notify.TemplateChangedLanguage, job, changed)

	case domain.CancelledByCustomer:
		return s.cancellationRequests(ctx, notify.TemplateCancelledCustomer, job, tctx, ev.TranslatorID)

	case domain.CancelledFromStatus:
		return s.cancellationRequests(ctx, notify.TemplateCancelledCustomer, job, tctx, ev.TranslatorID)

	case domain.CancelledByTranslator:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		requests := []*notify.Request{
			emailReq(notify.TemplateCancelledTranslator, job, tctx, customer),
		}
		if customerUser, err := s.store.GetUser(ctx, job.CustomerID); err == nil && s.matcher.CanSendPush(customerUser) {
			req := pushReq(notify.TemplateCancelledTranslator, job, tctx, customer)
			if s.matcher.NeedDelayPush(customerUser) {
				at := s.matcher.NextBusinessTime()
				req.SendAfter = &at
			}
			requests = append(requests, req)
		}
		return requests, nil

	case domain.SessionEnded:
		customer, err := s.customerRecipient(ctx, job)
		if err != nil {
			return nil, err
		}
		session := domain.HumanSessionTime(ev.SessionTime)

		customerCtx := tctx
		customerCtx.SessionTime = session
		customerCtx.ForText = "faktura"
		requests := []*notify.Request{
			emailReq(notify.TemplateSessionEnded, job, customerCtx, customer),
		}

		if ev.TranslatorID != "" {
			translator, err := s.translatorRecipient(ctx, ev.TranslatorID)
			if err != nil {
				return nil, err
			}
			translatorCtx := tctx
			translatorCtx.SessionTime = session
			translatorCtx.ForText = "lön"
			requests = append(requests, emailReq(notify.TemplateSessionEnded, job, translatorCtx, translator))
		}
		return requests, nil

	case domain.CandidatesWanted:
		return s.candidateRequests(ctx, job, tctx, ev.ExcludeTranslatorID)
	}

	return nil, fmt.Errorf("no notification mapping for event %s", event.Kind())
}

// changeRequests notifies the customer and, when assigned, the active
// translator about a date or language move.
func (s *BookingService) changeRequests(ctx context.Context, kind notify.TemplateKind, job *domain.Job, tctx notify.Context) ([]*notify.Request, error) {
	customer, err := s.customerRecipient(ctx, job)
	if err != nil {
		return nil, err
	}
	requests := []*notify.Request{emailReq(kind, job, tctx, customer)}

	active, err := s.store.GetActiveAssignment(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		translator, err := s.translatorRecipient(ctx, active.TranslatorID)
		if err != nil {
			return nil, err
		}
		requests = append(requests, emailReq(kind, job, tctx, translator))
	}
	return requests, nil
}

// cancellationRequests mails the customer, and mails plus pushes the
// translator who held the booking, if any.
func (s *BookingService) cancellationRequests(ctx context.Context, kind notify.TemplateKind, job *domain.Job, tctx notify.Context, translatorID string) ([]*notify.Request, error) {
	customer, err := s.customerRecipient(ctx, job)
	if err != nil {
		return nil, err
	}
	requests := []*notify.Request{emailReq(kind, job, tctx, customer)}

	if translatorID == "" {
		return requests, nil
	}

	translator, err := s.translatorRecipient(ctx, translatorID)
	if err != nil {
		return nil, err
	}
	requests = append(requests, emailReq(kind, job, tctx, translator))

	if translatorUser, err := s.store.GetUser(ctx, translatorID); err == nil && s.matcher.CanSendPush(translatorUser) {
		req := pushReq(kind, job, tctx, translator)
		if s.matcher.NeedDelayPush(translatorUser) {
			at := s.matcher.NextBusinessTime()
			req.SendAfter = &at
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// candidateRequests runs the matcher and builds the new-suitable-job fan-out:
// an immediate push batch, a delayed push batch scheduled for the next
// business-day start, and a best-effort SMS to every candidate.
func (s *BookingService) candidateRequests(ctx context.Context, job *domain.Job, tctx notify.Context, excludeID string) ([]*notify.Request, error) {
	candidates, err := s.matcher.FindCandidates(ctx, job, excludeID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var immediate, delayed, texted []notify.Recipient
	for _, t := range candidates {
		rcpt := notify.Recipient{UserID: t.ID, Name: t.Name, Email: t.Email, Mobile: t.Mobile}
		if t.Mobile != "" {
			texted = append(texted, rcpt)
		}
		if !s.matcher.CanSendPush(t) {
			continue
		}
		if s.matcher.NeedDelayPush(t) {
			delayed = append(delayed, rcpt)
		} else {
			immediate = append(immediate, rcpt)
		}
	}

	var requests []*notify.Request
	if len(immediate) > 0 {
		requests = append(requests, pushReq(notify.TemplateNewSuitableJob, job, tctx, immediate...))
	}
	if len(delayed) > 0 {
		req := pushReq(notify.TemplateNewSuitableJob, job, tctx, delayed...)
		at := s.matcher.NextBusinessTime()
		req.SendAfter = &at
		requests = append(requests, req)
	}
	if len(texted) > 0 {
		requests = append(requests, &notify.Request{
			Channel:    notify.ChannelSMS,
			Kind:       notify.TemplateNewSuitableJob,
			JobID:      job.ID,
			Recipients: texted,
			Context:    tctx,
		})
	}
	return requests, nil
}
