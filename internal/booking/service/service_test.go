package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/lifecycle"
	"github.com/interpretly/booking-be/internal/booking/matcher"
	"github.com/interpretly/booking-be/internal/booking/notify"
	"github.com/interpretly/booking-be/internal/clock"
)

// fakeStore is an in-memory Store. GetJob and GetActiveAssignment hand out
// copies so concurrent callers race on the conditional AcceptJob write, the
// same way they would against the database.
type fakeStore struct {
	mu           sync.Mutex
	jobs         map[string]domain.Job
	users        map[string]*domain.User
	languages    map[string]*domain.Language
	assignments  map[string]domain.Assignment
	doubleBooked bool

	savedJobs        int
	savedAssignments int
	acceptCalls      int
	lastFilter       JobFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:        make(map[string]domain.Job),
		users:       make(map[string]*domain.User),
		languages:   make(map[string]*domain.Language),
		assignments: make(map[string]domain.Assignment),
	}
}

func (f *fakeStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := job
	return &copied, nil
}

func (f *fakeStore) CreateJob(ctx context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = *job
	return nil
}

func (f *fakeStore) SaveJob(ctx context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	f.jobs[job.ID] = *job
	f.savedJobs++
	return nil
}

func (f *fakeStore) AcceptJob(ctx context.Context, assignment *domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptCalls++

	job, ok := f.jobs[assignment.JobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.Status != domain.StatusPending && job.Status != domain.StatusTimedOut {
		return domain.ErrJobAlreadyTaken
	}
	job.Status = domain.StatusAssigned
	f.jobs[job.ID] = job
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeStore) GetActiveAssignment(ctx context.Context, jobID string) (*domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.JobID == jobID && a.Active() {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID] = *a
	return nil
}

func (f *fakeStore) SaveAssignment(ctx context.Context, a *domain.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID] = *a
	f.savedAssignments++
	return nil
}

func (f *fakeStore) ListJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	var jobs []domain.Job
	for _, job := range f.jobs {
		if filter.CustomerID != "" && job.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && string(job.Status) != filter.Status {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetLanguage(ctx context.Context, id string) (*domain.Language, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lang, ok := f.languages[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return lang, nil
}

func (f *fakeStore) ListActiveTranslators(ctx context.Context) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var translators []*domain.User
	for _, u := range f.users {
		if u.Role == domain.RoleTranslator && !u.Suspended {
			translators = append(translators, u)
		}
	}
	return translators, nil
}

func (f *fakeStore) IsDoubleBooked(ctx context.Context, translatorID string, due time.Time, duration int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doubleBooked, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	requests []*notify.Request
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, req *notify.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakePublisher) byKind(kind notify.TemplateKind) []*notify.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notify.Request
	for _, req := range f.requests {
		if req.Kind == kind {
			out = append(out, req)
		}
	}
	return out
}

func (f *fakePublisher) byChannel(channel notify.Channel) []*notify.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notify.Request
	for _, req := range f.requests {
		if req.Channel == channel {
			out = append(out, req)
		}
	}
	return out
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore) (*BookingService, *fakePublisher, *clock.Fake) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFake(testNow)
	publisher := &fakePublisher{}
	engine := lifecycle.New(clk)
	m := matcher.New(store, clk, matcher.Config{Hours: matcher.DefaultBusinessHours()}, logger)
	svc := New(store, engine, m, publisher, clk, Config{ImmediateLead: 5 * time.Minute}, logger)
	return svc, publisher, clk
}

func seedCustomer(store *fakeStore) *domain.User {
	customer := &domain.User{
		ID:           "cust-1",
		Role:         domain.RoleCustomer,
		Name:         "Eva Svensson",
		Email:        "eva@example.com",
		Mobile:       "+46700000001",
		City:         "Stockholm",
		ConsumerType: domain.ConsumerPaid,
	}
	store.users[customer.ID] = customer
	return customer
}

func seedTranslator(store *fakeStore, id string) *domain.User {
	translator := &domain.User{
		ID:               id,
		Role:             domain.RoleTranslator,
		Name:             "Omar Ali",
		Email:            id + "@example.com",
		Mobile:           "+4670000" + id,
		City:             "Stockholm",
		TranslatorType:   domain.TranslatorProfessional,
		TranslatorLevels: []domain.TranslatorLevel{domain.LevelCertified, domain.LevelLayman},
		Languages:        []string{"lang-ar"},
	}
	store.users[translator.ID] = translator
	return translator
}

func seedAdmin(store *fakeStore) *domain.User {
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin, Name: "Admin"}
	store.users[admin.ID] = admin
	return admin
}

func seedJob(store *fakeStore, status domain.Status, due time.Time) *domain.Job {
	job := &domain.Job{
		ID:                "job-1",
		Status:            status,
		Due:               due,
		Duration:          60,
		FromLanguageID:    "lang-ar",
		JobType:           domain.JobTypePaid,
		CustomerPhoneType: true,
		CustomerID:        "cust-1",
		Town:              "Stockholm",
		CreatedAt:         testNow.Add(-time.Hour),
		WillExpireAt:      testNow.Add(30 * time.Minute),
	}
	store.jobs[job.ID] = *job
	return job
}

func seedAssignment(store *fakeStore, jobID, translatorID string) *domain.Assignment {
	a := &domain.Assignment{
		ID:           "asg-1",
		JobID:        jobID,
		TranslatorID: translatorID,
		AssignedAt:   testNow.Add(-30 * time.Minute),
	}
	store.assignments[a.ID] = *a
	return a
}
