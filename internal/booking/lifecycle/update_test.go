package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interpretly/booking-be/internal/booking/domain"
)

func statusPtr(s domain.Status) *domain.Status { return &s }
func strPtr(s string) *string                  { return &s }
func timePtr(t time.Time) *time.Time           { return &t }

func TestApplyUpdate_StatusTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       domain.Status
		to         domain.Status
		comments   string
		wantErr    string
		wantField  string
		wantStatus domain.Status
		wantEvents []domain.EventKind
	}{
		{
			name:       "timedout back to pending",
			from:       domain.StatusTimedOut,
			to:         domain.StatusPending,
			wantStatus: domain.StatusPending,
			wantEvents: []domain.EventKind{domain.EventJobReopened, domain.EventCandidatesWanted},
		},
		{
			name:    "timedout to completed is illegal",
			from:    domain.StatusTimedOut,
			to:      domain.StatusCompleted,
			wantErr: "illegal transition",
		},
		{
			name:       "pending to timedout with comment",
			from:       domain.StatusPending,
			to:         domain.StatusTimedOut,
			comments:   "no translator found",
			wantStatus: domain.StatusTimedOut,
		},
		{
			name:      "pending to timedout without comment",
			from:      domain.StatusPending,
			to:        domain.StatusTimedOut,
			wantField: "admin_comments",
		},
		{
			name:    "pending to assigned is illegal",
			from:    domain.StatusPending,
			to:      domain.StatusAssigned,
			wantErr: "illegal transition",
		},
		{
			name:       "assigned to started",
			from:       domain.StatusAssigned,
			to:         domain.StatusStarted,
			wantStatus: domain.StatusStarted,
		},
		{
			name:       "assigned to withdrawbefore24",
			from:       domain.StatusAssigned,
			to:         domain.StatusWithdrawBefore24,
			wantStatus: domain.StatusWithdrawBefore24,
			wantEvents: []domain.EventKind{domain.EventCancelledFromStatus},
		},
		{
			name:       "assigned to withdrawafter24",
			from:       domain.StatusAssigned,
			to:         domain.StatusWithdrawAfter24,
			wantStatus: domain.StatusWithdrawAfter24,
			wantEvents: []domain.EventKind{domain.EventCancelledFromStatus},
		},
		{
			name:       "assigned to timedout with comment",
			from:       domain.StatusAssigned,
			to:         domain.StatusTimedOut,
			comments:   "customer unreachable",
			wantStatus: domain.StatusTimedOut,
			wantEvents: []domain.EventKind{domain.EventCancelledFromStatus},
		},
		{
			name:      "assigned to timedout without comment",
			from:      domain.StatusAssigned,
			to:        domain.StatusTimedOut,
			wantField: "admin_comments",
		},
		{
			name:    "assigned to completed is illegal",
			from:    domain.StatusAssigned,
			to:      domain.StatusCompleted,
			wantErr: "illegal transition",
		},
		{
			name:    "started to pending is illegal",
			from:    domain.StatusStarted,
			to:      domain.StatusPending,
			wantErr: "illegal transition",
		},
		{
			name:       "withdrawafter24 to timedout with comment",
			from:       domain.StatusWithdrawAfter24,
			to:         domain.StatusTimedOut,
			comments:   "billing correction",
			wantStatus: domain.StatusTimedOut,
		},
		{
			name:      "withdrawafter24 to timedout without comment",
			from:      domain.StatusWithdrawAfter24,
			to:        domain.StatusTimedOut,
			wantField: "admin_comments",
		},
		{
			name:    "completed is frozen",
			from:    domain.StatusCompleted,
			to:      domain.StatusPending,
			wantErr: "illegal transition",
		},
		{
			name:    "withdrawbefore24 is frozen",
			from:    domain.StatusWithdrawBefore24,
			to:      domain.StatusTimedOut,
			wantErr: "illegal transition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(48 * time.Hour))
			job.Status = tt.from

			upd := Update{Status: statusPtr(tt.to)}
			if tt.comments != "" {
				upd.AdminComments = strPtr(tt.comments)
			}

			result, err := engine.ApplyUpdate(job, nil, upd)

			if tt.wantErr != "" {
				require.Error(t, err)
				var conflict *domain.ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			if tt.wantField != "" {
				require.Error(t, err)
				var validation *domain.ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, tt.wantField, validation.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, job.Status)

			kinds := make([]domain.EventKind, 0, len(result.Events))
			for _, ev := range result.Events {
				kinds = append(kinds, ev.Kind())
			}
			assert.Equal(t, tt.wantEvents, append([]domain.EventKind(nil), kinds...))
		})
	}
}

func TestApplyUpdate_ExistingCommentSatisfiesRequirement(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	job.AdminComments = "escalated earlier"

	_, err := engine.ApplyUpdate(job, nil, Update{Status: statusPtr(domain.StatusTimedOut)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTimedOut, job.Status)
}

func TestApplyUpdate_StartedToCompleted(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(-2 * time.Hour))
	job.Status = domain.StatusStarted
	active := activeAssignment("trans-1")

	result, err := engine.ApplyUpdate(job, active, Update{
		Status:        statusPtr(domain.StatusCompleted),
		AdminComments: strPtr("session confirmed by phone"),
		SessionTime:   strPtr("01:30:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, job.Status)
	assert.Equal(t, "01:30:00", job.SessionTime)
	require.NotNil(t, job.EndAt)
	require.NotNil(t, active.CompletedAt)

	require.Len(t, result.Events, 1)
	ended, ok := result.Events[0].(domain.SessionEnded)
	require.True(t, ok)
	assert.Equal(t, "trans-1", ended.TranslatorID)
	assert.Equal(t, "01:30:00", ended.SessionTime)
}

func TestApplyUpdate_StartedToCompleted_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		upd       Update
		wantField string
	}{
		{
			name:      "missing comment",
			upd:       Update{Status: statusPtr(domain.StatusCompleted), SessionTime: strPtr("01:00:00")},
			wantField: "admin_comments",
		},
		{
			name:      "missing session time",
			upd:       Update{Status: statusPtr(domain.StatusCompleted), AdminComments: strPtr("done")},
			wantField: "session_time",
		},
		{
			name:      "empty session time",
			upd:       Update{Status: statusPtr(domain.StatusCompleted), AdminComments: strPtr("done"), SessionTime: strPtr("")},
			wantField: "session_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(baseTime)
			job := pendingJob(baseTime.Add(-time.Hour))
			job.Status = domain.StatusStarted

			_, err := engine.ApplyUpdate(job, nil, tt.upd)
			require.Error(t, err)
			var validation *domain.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.wantField, validation.Field)
		})
	}
}

func TestApplyUpdate_DateAndLanguageChanges(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	oldDue := job.Due
	newDue := baseTime.Add(72 * time.Hour)

	result, err := engine.ApplyUpdate(job, nil, Update{
		Due:            timePtr(newDue),
		FromLanguageID: strPtr("lang-ar"),
	})
	require.NoError(t, err)

	assert.Equal(t, newDue, job.Due)
	assert.Equal(t, "lang-ar", job.FromLanguageID)

	require.Len(t, result.Events, 2)
	dateChanged, ok := result.Events[0].(domain.DateChanged)
	require.True(t, ok)
	assert.Equal(t, oldDue, dateChanged.OldTime)

	langChanged, ok := result.Events[1].(domain.LanguageChanged)
	require.True(t, ok)
	assert.Equal(t, "lang-sv", langChanged.OldLanguageID)
}

func TestApplyUpdate_UnchangedFieldsFireNoEvents(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))

	result, err := engine.ApplyUpdate(job, nil, Update{
		Due:            timePtr(job.Due),
		FromLanguageID: strPtr(job.FromLanguageID),
		Reference:      strPtr("REF-9"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Equal(t, "REF-9", job.Reference)
}

func TestApplyUpdate_PastDueSuppressesChangeEvents(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(-time.Hour))
	newDue := baseTime.Add(-30 * time.Minute)

	result, err := engine.ApplyUpdate(job, nil, Update{
		Due:            timePtr(newDue),
		FromLanguageID: strPtr("lang-ar"),
	})
	require.NoError(t, err)

	// mutations still land, only the notifications are dropped
	assert.Equal(t, newDue, job.Due)
	assert.Equal(t, "lang-ar", job.FromLanguageID)
	assert.Empty(t, result.Events)
}

func TestApplyUpdate_CommentsAndReference(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))

	result, err := engine.ApplyUpdate(job, nil, Update{
		AdminComments: strPtr("follow up with customer"),
		Reference:     strPtr("REF-1"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Equal(t, "follow up with customer", job.AdminComments)
	assert.Equal(t, "REF-1", job.Reference)
	assert.Equal(t, domain.StatusPending, job.Status)
}

func TestApplyUpdate_AdminCancelClosesAssignment(t *testing.T) {
	engine, _ := newTestEngine(baseTime)

	job := pendingJob(baseTime.Add(48 * time.Hour))
	job.Status = domain.StatusAssigned
	active := activeAssignment("trans-1")

	result, err := engine.ApplyUpdate(job, active, Update{Status: statusPtr(domain.StatusWithdrawAfter24)})
	require.NoError(t, err)

	require.NotNil(t, active.CancelAt)
	require.Len(t, result.UpdatedAssignments, 1)

	require.Len(t, result.Events, 1)
	cancelled, ok := result.Events[0].(domain.CancelledFromStatus)
	require.True(t, ok)
	assert.Equal(t, "trans-1", cancelled.TranslatorID)
}
