package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/notify"
)

func TestCandidateRequests_NightSplitsPushBatches(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store)
	awake := seedTranslator(store, "trans-awake")
	asleep := seedTranslator(store, "trans-asleep")
	asleep.SuppressNighttime = true
	silent := seedTranslator(store, "trans-silent")
	silent.SuppressAll = true
	job := seedJob(store, domain.StatusPending, testNow.Add(48*time.Hour))

	svc, publisher, clk := newTestService(store)
	clk.Current = time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	result, err := svc.NotifyCandidates(context.Background(), job.ID, "")
	require.NoError(t, err)
	require.Equal(t, "success", result.Status)

	pushes := publisher.byChannel(notify.ChannelPush)
	require.Len(t, pushes, 2)

	var immediate, delayed *notify.Request
	for _, req := range pushes {
		if req.SendAfter == nil {
			immediate = req
		} else {
			delayed = req
		}
	}

	require.NotNil(t, immediate)
	require.Len(t, immediate.Recipients, 1)
	assert.Equal(t, awake.ID, immediate.Recipients[0].UserID)

	require.NotNil(t, delayed)
	require.Len(t, delayed.Recipients, 1)
	assert.Equal(t, asleep.ID, delayed.Recipients[0].UserID)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), *delayed.SendAfter)

	// the push-suppressed translator still gets the SMS
	sms := publisher.byChannel(notify.ChannelSMS)
	require.Len(t, sms, 1)
	assert.Len(t, sms[0].Recipients, 3)
}

func TestCandidateRequests_NoCandidates(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store)
	job := seedJob(store, domain.StatusPending, testNow.Add(48*time.Hour))
	svc, publisher, _ := newTestService(store)

	result, err := svc.NotifyCandidates(context.Background(), job.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Empty(t, publisher.requests)
}

func TestCandidateRequests_SkipsTranslatorsWithoutMobile(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store)
	translator := seedTranslator(store, "trans-1")
	translator.Mobile = ""
	job := seedJob(store, domain.StatusPending, testNow.Add(48*time.Hour))
	svc, publisher, _ := newTestService(store)

	_, err := svc.NotifyCandidates(context.Background(), job.ID, "")
	require.NoError(t, err)

	assert.Empty(t, publisher.byChannel(notify.ChannelSMS))
	assert.Len(t, publisher.byChannel(notify.ChannelPush), 1)
}

func TestJobContext_LanguageFallsBackToID(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store)
	seedJob(store, domain.StatusTimedOut, testNow.Add(time.Hour))
	svc, publisher, _ := newTestService(store)

	_, err := svc.NotifyExpired(context.Background(), "job-1")
	require.NoError(t, err)

	expired := publisher.byKind(notify.TemplateJobExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, "lang-ar", expired[0].Context.LanguageName)
}

func TestCustomerRecipient_EmailOverride(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store)
	job := seedJob(store, domain.StatusTimedOut, testNow.Add(72*time.Hour))
	job.UserEmail = "reception@clinic.se"
	store.jobs[job.ID] = *job
	seedAdmin(store)
	svc, publisher, _ := newTestService(store)

	result, err := svc.Reopen(context.Background(), "job-1", "admin-1")
	require.NoError(t, err)
	require.Equal(t, "success", result.Status)

	reopened := publisher.byKind(notify.TemplateJobReopened)
	require.Len(t, reopened, 1)
	assert.Equal(t, "reception@clinic.se", reopened[0].Recipients[0].Email)
}

func TestGet(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store)
	seedJob(store, domain.StatusAssigned, testNow.Add(48*time.Hour))
	seedAssignment(store, "job-1", "trans-1")
	svc, _, _ := newTestService(store)

	job, active, err := svc.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	require.NotNil(t, active)
	assert.Equal(t, "trans-1", active.TranslatorID)

	_, _, err = svc.Get(context.Background(), "job-404")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestList_ClampsPageSize(t *testing.T) {
	store := newFakeStore()
	seedJob(store, domain.StatusPending, testNow.Add(time.Hour))
	svc, _, _ := newTestService(store)

	jobs, err := svc.List(context.Background(), JobFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 100, store.lastFilter.PageSize)

	_, err = svc.List(context.Background(), JobFilter{})
	require.NoError(t, err)
	assert.Equal(t, 20, store.lastFilter.PageSize)
}

func TestList_Filters(t *testing.T) {
	store := newFakeStore()
	seedJob(store, domain.StatusPending, testNow.Add(time.Hour))
	store.jobs["job-2"] = domain.Job{
		ID:         "job-2",
		Status:     domain.StatusCompleted,
		Due:        testNow.Add(2 * time.Hour),
		CustomerID: "cust-2",
	}
	svc, _, _ := newTestService(store)

	jobs, err := svc.List(context.Background(), JobFilter{CustomerID: "cust-2"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-2", jobs[0].ID)

	jobs, err = svc.List(context.Background(), JobFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}
