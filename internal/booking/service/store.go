package service

import (
	"context"
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/notify"
)

// Store is the persistence boundary the service drives. Implementations must
// make AcceptJob atomic: when two translators race for the same pending job,
// exactly one wins and the loser gets domain.ErrJobAlreadyTaken.
type Store interface {
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	CreateJob(ctx context.Context, job *domain.Job) error
	SaveJob(ctx context.Context, job *domain.Job) error

	// AcceptJob flips the job to assigned iff it is still pending, and
	// inserts the assignment in the same transaction. Returns
	// domain.ErrJobAlreadyTaken when the conditional write matches no row.
	AcceptJob(ctx context.Context, assignment *domain.Assignment) error

	GetActiveAssignment(ctx context.Context, jobID string) (*domain.Assignment, error)
	CreateAssignment(ctx context.Context, a *domain.Assignment) error
	SaveAssignment(ctx context.Context, a *domain.Assignment) error

	// ListJobs pages through bookings, newest first, using a keyset cursor.
	ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error)

	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetLanguage(ctx context.Context, id string) (*domain.Language, error)
	ListActiveTranslators(ctx context.Context) ([]*domain.User, error)

	// IsDoubleBooked reports whether the translator already holds an active
	// assignment whose job overlaps the given due time.
	IsDoubleBooked(ctx context.Context, translatorID string, due time.Time, duration int) (bool, error)
}

// JobFilter narrows a booking listing. PageSize is the caller's page; the
// store fetches one extra row so the caller can detect a next page.
type JobFilter struct {
	CustomerID string
	Status     string
	PageSize   int
	Cursor     *JobCursor
}

// JobCursor is the keyset position of the last row on the previous page.
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// Publisher hands a composed notification request to the delivery pipeline.
// The API service publishes to RabbitMQ; tests use an in-memory fake.
type Publisher interface {
	Publish(ctx context.Context, req *notify.Request) error
}
