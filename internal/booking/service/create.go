package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/interpretly/booking-be/internal/booking/domain"
)

// CreateBooking is the create-booking payload. Due is submitted split into
// date and time parts, the way the booking form posts it.
type CreateBooking struct {
	CustomerID           string
	Immediate            bool
	DueDate              string // "2006-01-02", ignored for immediate jobs
	DueTime              string // "15:04:05"
	Duration             int    // minutes
	FromLanguageID       string
	JobFor               []string // male|female|normal|certified|certified_in_law|certified_in_health
	CustomerPhoneType    bool
	CustomerPhysicalType bool
	UserEmail            string
	Reference            string
	Address              string
	Instructions         string
	Town                 string
	ByAdmin              bool
}

const messageFillAllFields = "Du måste fylla in alla fält"

// Create validates the payload, derives the booking attributes, stores the
// job and notifies the eligible translators. Only customers may create
// bookings. Validation failures return a fail result naming the field; no
// mutation happens on failure.
func (s *BookingService) Create(ctx context.Context, customerID string, payload CreateBooking) (*Result, error) {
	customer, err := s.store.GetUser(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Role != domain.RoleCustomer {
		return fail("Translator cannot create booking"), nil
	}

	if res := validateBooking(payload); res != nil {
		return res, nil
	}

	now := s.clock.Now()

	job := &domain.Job{
		ID:                   uuid.New().String(),
		Status:               domain.StatusPending,
		Immediate:            payload.Immediate,
		Duration:             payload.Duration,
		FromLanguageID:       payload.FromLanguageID,
		Gender:               genderFromJobFor(payload.JobFor),
		Certification:        certificationFromJobFor(payload.JobFor),
		JobType:              domain.JobTypeForConsumer(customer.ConsumerType),
		CustomerPhoneType:    payload.CustomerPhoneType,
		CustomerPhysicalType: payload.CustomerPhysicalType,
		CustomerID:           customer.ID,
		UserEmail:            payload.UserEmail,
		Reference:            payload.Reference,
		Address:              payload.Address,
		Instructions:         payload.Instructions,
		Town:                 payload.Town,
		ByAdmin:              payload.ByAdmin,
		CreatedAt:            now,
	}
	if job.Town == "" {
		job.Town = customer.City
	}

	if payload.Immediate {
		job.Due = now.Add(s.cfg.ImmediateLead)
	} else {
		due, err := domain.JoinDue(payload.DueDate, payload.DueTime)
		if err != nil {
			return &Result{Status: statusFail, Message: messageFillAllFields, FieldName: "due_date"}, nil
		}
		if !due.After(now) {
			return fail("Can't create booking in past"), nil
		}
		job.Due = due
	}
	job.WillExpireAt = domain.WillExpireAt(job.Due, now)

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("Booking created",
		slog.String("job_id", job.ID),
		slog.String("customer_id", customer.ID),
		slog.String("job_type", string(job.JobType)),
		slog.Bool("immediate", job.Immediate),
		slog.Time("due", job.Due),
	)

	s.publishEvents(ctx, []domain.Event{
		domain.JobCreated{Base: domain.Base{Booking: job}},
		domain.CandidatesWanted{Base: domain.Base{Booking: job}},
	})

	return success(job, ""), nil
}

// validateBooking checks the required create fields and returns a field-level
// fail result for the first violation.
func validateBooking(p CreateBooking) *Result {
	if p.FromLanguageID == "" {
		return &Result{Status: statusFail, Message: messageFillAllFields, FieldName: "from_language_id"}
	}
	if !p.Immediate {
		if p.DueDate == "" {
			return &Result{Status: statusFail, Message: messageFillAllFields, FieldName: "due_date"}
		}
		if p.DueTime == "" {
			return &Result{Status: statusFail, Message: messageFillAllFields, FieldName: "due_time"}
		}
	}
	if p.Duration < 1 {
		return &Result{Status: statusFail, Message: messageFillAllFields, FieldName: "duration"}
	}
	if !p.CustomerPhoneType && !p.CustomerPhysicalType {
		return &Result{Status: statusFail, Message: "Du måste göra ett val här", FieldName: "customer_phone_type"}
	}
	return nil
}

func genderFromJobFor(jobFor []string) domain.Gender {
	for _, v := range jobFor {
		switch v {
		case "male":
			return domain.GenderMale
		case "female":
			return domain.GenderFemale
		}
	}
	return ""
}

// certificationFromJobFor collapses the job_for checkboxes into the single
// certification value, mirroring the booking form's combinations.
func certificationFromJobFor(jobFor []string) domain.Certification {
	has := func(want string) bool {
		for _, v := range jobFor {
			if v == want {
				return true
			}
		}
		return false
	}

	normal := has("normal")
	switch {
	case normal && has("certified"):
		return domain.CertificationBoth
	case normal && has("certified_in_law"):
		return domain.CertificationNLaw
	case normal && has("certified_in_health"):
		return domain.CertificationNHealth
	case has("certified"):
		return domain.CertificationYes
	case has("certified_in_law"):
		return domain.CertificationLaw
	case has("certified_in_health"):
		return domain.CertificationHealth
	case normal:
		return domain.CertificationNormal
	}
	return ""
}
