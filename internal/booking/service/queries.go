package service

import (
	"context"

	"github.com/interpretly/booking-be/internal/booking/domain"
)

// Get loads one booking together with its active assignment, if any.
func (s *BookingService) Get(ctx context.Context, jobID string) (*domain.Job, *domain.Assignment, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	active, err := s.store.GetActiveAssignment(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	return job, active, nil
}

// List pages through bookings, newest first.
func (s *BookingService) List(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return s.store.ListJobs(ctx, filter)
}
