package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/clock"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(now time.Time) (*Engine, *clock.Fake) {
	clk := clock.NewFake(now)
	return New(clk), clk
}

func pendingJob(due time.Time) *domain.Job {
	return &domain.Job{
		ID:             "job-1",
		Status:         domain.StatusPending,
		Due:            due,
		Duration:       60,
		FromLanguageID: "lang-sv",
		CustomerID:     "cust-1",
		CreatedAt:      baseTime.Add(-time.Hour),
		WillExpireAt:   baseTime.Add(30 * time.Minute),
	}
}

func activeAssignment(translatorID string) *domain.Assignment {
	return &domain.Assignment{
		ID:           "asg-1",
		JobID:        "job-1",
		TranslatorID: translatorID,
		AssignedAt:   baseTime.Add(-30 * time.Minute),
	}
}

func TestEngine_Accept(t *testing.T) {
	translator := &domain.User{ID: "trans-1", Role: domain.RoleTranslator}

	tests := []struct {
		name    string
		status  domain.Status
		wantErr bool
	}{
		{name: "from pending", status: domain.StatusPending},
		{name: "from timedout", status: domain.StatusTimedOut},
		{name: "from assigned", status: domain.StatusAssigned, wantErr: true},
		{name: "from started", status: domain.StatusStarted, wantErr: true},
		{name: "from completed", status: domain.StatusCompleted, wantErr: true},
		{name: "from withdrawbefore24", status: domain.StatusWithdrawBefore24, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(48 * time.Hour))
			job.Status = tt.status

			result, err := engine.Accept(job, translator)

			if tt.wantErr {
				require.Error(t, err)
				var conflict *domain.ConflictError
				assert.ErrorAs(t, err, &conflict)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.StatusAssigned, job.Status)

			require.NotNil(t, result.NewAssignment)
			assert.Equal(t, job.ID, result.NewAssignment.JobID)
			assert.Equal(t, translator.ID, result.NewAssignment.TranslatorID)
			assert.Equal(t, baseTime, result.NewAssignment.AssignedAt)
			assert.NotEmpty(t, result.NewAssignment.ID)
			assert.True(t, result.NewAssignment.Active())

			require.Len(t, result.Events, 1)
			accepted, ok := result.Events[0].(domain.JobAccepted)
			require.True(t, ok)
			assert.Equal(t, translator.ID, accepted.TranslatorID)
			assert.Same(t, job, accepted.Job())
		})
	}
}

func TestEngine_Start(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(time.Hour))
	job.Status = domain.StatusAssigned

	result, err := engine.Start(job)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStarted, job.Status)
	assert.Empty(t, result.Events)

	// started jobs cannot start again
	_, err = engine.Start(job)
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestEngine_Expire(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(time.Hour))
	result, err := engine.Expire(job)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTimedOut, job.Status)
	assert.Empty(t, result.Events)

	job.Status = domain.StatusAssigned
	_, err = engine.Expire(job)
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestEngine_CancelByCustomer_24HourSplit(t *testing.T) {
	tests := []struct {
		name       string
		lead       time.Duration
		wantStatus domain.Status
	}{
		{name: "exactly 24 hours before due", lead: 24 * time.Hour, wantStatus: domain.StatusWithdrawBefore24},
		{name: "more than 24 hours before due", lead: 48 * time.Hour, wantStatus: domain.StatusWithdrawBefore24},
		{name: "less than 24 hours before due", lead: 23 * time.Hour, wantStatus: domain.StatusWithdrawAfter24},
		{name: "due already passed", lead: -time.Hour, wantStatus: domain.StatusWithdrawAfter24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(tt.lead))

			result, err := engine.CancelByCustomer(job, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, job.Status)
			require.NotNil(t, job.WithdrawAt)
			assert.Equal(t, baseTime, *job.WithdrawAt)

			require.Len(t, result.Events, 1)
			cancelled, ok := result.Events[0].(domain.CancelledByCustomer)
			require.True(t, ok)
			assert.Empty(t, cancelled.TranslatorID)
			assert.Empty(t, result.UpdatedAssignments)
		})
	}
}

func TestEngine_CancelByCustomer_ClosesActiveAssignment(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-1")

	result, err := engine.CancelByCustomer(job, active)
	require.NoError(t, err)

	require.NotNil(t, active.CancelAt)
	assert.Equal(t, baseTime, *active.CancelAt)
	assert.False(t, active.Active())
	require.Len(t, result.UpdatedAssignments, 1)
	assert.Same(t, active, result.UpdatedAssignments[0])

	require.Len(t, result.Events, 1)
	cancelled := result.Events[0].(domain.CancelledByCustomer)
	assert.Equal(t, "trans-1", cancelled.TranslatorID)
}

func TestEngine_CancelByCustomer_IllegalStatuses(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusCompleted,
		domain.StatusWithdrawBefore24,
		domain.StatusWithdrawAfter24,
		domain.StatusTimedOut,
	} {
		t.Run(string(status), func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(48 * time.Hour))
			job.Status = status

			_, err := engine.CancelByCustomer(job, nil)
			require.Error(t, err)
			var conflict *domain.ConflictError
			assert.ErrorAs(t, err, &conflict)
		})
	}
}

func TestEngine_CancelByTranslator(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-1")

	result, err := engine.CancelByTranslator(job, active)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Equal(t, baseTime, job.CreatedAt)
	assert.Equal(t, domain.WillExpireAt(job.Due, baseTime), job.WillExpireAt)

	require.NotNil(t, active.CancelAt)
	require.Len(t, result.UpdatedAssignments, 1)

	require.Len(t, result.Events, 2)
	cancelled, ok := result.Events[0].(domain.CancelledByTranslator)
	require.True(t, ok)
	assert.Equal(t, "trans-1", cancelled.TranslatorID)

	wanted, ok := result.Events[1].(domain.CandidatesWanted)
	require.True(t, ok)
	assert.Equal(t, "trans-1", wanted.ExcludeTranslatorID)
}

func TestEngine_CancelByTranslator_Within24Hours(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(24 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-1")

	_, err := engine.CancelByTranslator(job, active)
	require.Error(t, err)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "24 hours")

	// untouched on failure
	assert.Equal(t, domain.StatusAssigned, job.Status)
	assert.Nil(t, active.CancelAt)
}

func TestEngine_CancelByTranslator_NoActiveAssignment(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))

	_, err := engine.CancelByTranslator(job, nil)
	require.Error(t, err)

	cancelled := activeAssignment("trans-1")
	cancelAt := baseTime.Add(-time.Minute)
	cancelled.CancelAt = &cancelAt
	_, err = engine.CancelByTranslator(job, cancelled)
	require.Error(t, err)
}

func TestEngine_End(t *testing.T) {
	engine, clk := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(-90 * time.Minute))
	job.Status = domain.StatusStarted
	active := activeAssignment("trans-1")

	clk.Advance(30 * time.Minute)
	result, err := engine.End(job, active, "cust-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, job.Status)
	require.NotNil(t, job.EndAt)
	assert.Equal(t, clk.Now(), *job.EndAt)
	assert.Equal(t, "02:00:00", job.SessionTime)

	require.NotNil(t, active.CompletedAt)
	assert.Equal(t, "cust-1", active.CompletedBy)
	require.Len(t, result.UpdatedAssignments, 1)

	require.Len(t, result.Events, 1)
	ended, ok := result.Events[0].(domain.SessionEnded)
	require.True(t, ok)
	assert.Equal(t, "trans-1", ended.TranslatorID)
	assert.Equal(t, "02:00:00", ended.SessionTime)
	assert.Equal(t, "cust-1", ended.CompletedBy)
}

func TestEngine_End_AlreadyCompleted(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(-time.Hour))
	job.Status = domain.StatusCompleted
	job.SessionTime = "01:00:00"

	result, err := engine.End(job, nil, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Empty(t, result.UpdatedAssignments)
	assert.Nil(t, result.NewAssignment)

	// not overwritten on the repeat call
	assert.Equal(t, "01:00:00", job.SessionTime)
}

func TestEngine_End_IllegalStatuses(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusPending,
		domain.StatusAssigned,
		domain.StatusTimedOut,
		domain.StatusWithdrawAfter24,
	} {
		t.Run(string(status), func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(-time.Hour))
			job.Status = status

			_, err := engine.End(job, nil, "cust-1")
			require.Error(t, err)
			var conflict *domain.ConflictError
			assert.ErrorAs(t, err, &conflict)
		})
	}
}

func TestEngine_Reopen(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(72 * time.Hour))
	job.Status = domain.StatusTimedOut
	job.CreatedAt = baseTime.Add(-48 * time.Hour)

	result, err := engine.Reopen(job, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Equal(t, baseTime, job.CreatedAt)
	assert.Equal(t, domain.WillExpireAt(job.Due, baseTime), job.WillExpireAt)

	require.Len(t, result.Events, 2)
	_, ok := result.Events[0].(domain.JobReopened)
	require.True(t, ok)
	wanted, ok := result.Events[1].(domain.CandidatesWanted)
	require.True(t, ok)
	assert.Empty(t, wanted.ExcludeTranslatorID)
}

func TestEngine_Reopen_ClosesActiveAssignment(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(72 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-1")

	result, err := engine.Reopen(job, active)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, job.Status)
	require.NotNil(t, active.CancelAt)
	require.Len(t, result.UpdatedAssignments, 1)
}

func TestEngine_Reopen_TerminalStatuses(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusCompleted,
		domain.StatusWithdrawBefore24,
		domain.StatusWithdrawAfter24,
	} {
		t.Run(string(status), func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(72 * time.Hour))
			job.Status = status

			_, err := engine.Reopen(job, nil)
			require.Error(t, err)
			var conflict *domain.ConflictError
			assert.ErrorAs(t, err, &conflict)
		})
	}
}

func TestEngine_Reassign(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-old")
	newTranslator := &domain.User{ID: "trans-new", Role: domain.RoleTranslator}

	result, err := engine.Reassign(job, active, newTranslator)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAssigned, job.Status)

	require.NotNil(t, active.CancelAt)
	require.Len(t, result.UpdatedAssignments, 1)

	require.NotNil(t, result.NewAssignment)
	assert.Equal(t, "trans-new", result.NewAssignment.TranslatorID)
	assert.Equal(t, job.ID, result.NewAssignment.JobID)
	assert.True(t, result.NewAssignment.Active())

	require.Len(t, result.Events, 1)
	changed, ok := result.Events[0].(domain.TranslatorChanged)
	require.True(t, ok)
	assert.Equal(t, "trans-old", changed.OldTranslatorID)
	assert.Equal(t, "trans-new", changed.NewTranslatorID)
}

func TestEngine_Reassign_UnassignedJob(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	newTranslator := &domain.User{ID: "trans-new", Role: domain.RoleTranslator}

	result, err := engine.Reassign(job, nil, newTranslator)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAssigned, job.Status)
	assert.Empty(t, result.UpdatedAssignments)

	require.Len(t, result.Events, 1)
	changed := result.Events[0].(domain.TranslatorChanged)
	assert.Empty(t, changed.OldTranslatorID)
}

func TestEngine_Reassign_SameTranslator(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-1")
	sameTranslator := &domain.User{ID: "trans-1", Role: domain.RoleTranslator}

	_, err := engine.Reassign(job, active, sameTranslator)
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestEngine_Reassign_IllegalStatuses(t *testing.T) {
	newTranslator := &domain.User{ID: "trans-new", Role: domain.RoleTranslator}

	for _, status := range []domain.Status{
		domain.StatusStarted,
		domain.StatusCompleted,
		domain.StatusWithdrawBefore24,
		domain.StatusWithdrawAfter24,
	} {
		t.Run(string(status), func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(48 * time.Hour))
			job.Status = status

			_, err := engine.Reassign(job, nil, newTranslator)
			require.Error(t, err)
		})
	}
}
