// Package matcher produces the ordered candidate set of translators eligible
// for a job, and owns the push delay/suppression rules tied to translator
// notification preferences.
package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/clock"
)

// Directory is the slice of the store the matcher reads translators from.
type Directory interface {
	ListActiveTranslators(ctx context.Context) ([]*domain.User, error)
}

// Config tunes matching behavior.
type Config struct {
	Hours BusinessHours
	// SkipTownCheck disables the same-town requirement for on-site jobs.
	SkipTownCheck bool
}

// Matcher filters translators down to the candidates eligible for a job.
// Candidates keep directory order; no ranking is applied among equally
// eligible translators.
type Matcher struct {
	directory Directory
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger
}

// New creates a Matcher.
func New(directory Directory, clk clock.Clock, cfg Config, logger *slog.Logger) *Matcher {
	return &Matcher{
		directory: directory,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
	}
}

// FindCandidates returns the translators eligible for the job, in directory
// order. excludeID, when non-empty, drops that translator (used when the
// previous translator just cancelled).
func (m *Matcher) FindCandidates(ctx context.Context, job *domain.Job, excludeID string) ([]*domain.User, error) {
	translators, err := m.directory.ListActiveTranslators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list translators: %w", err)
	}

	var candidates []*domain.User
	for _, t := range translators {
		if t.ID == excludeID {
			continue
		}
		if m.eligible(job, t) {
			candidates = append(candidates, t)
		}
	}

	m.logger.Debug("Candidate search finished",
		slog.String("job_id", job.ID),
		slog.Int("translators", len(translators)),
		slog.Int("candidates", len(candidates)),
	)

	return candidates, nil
}

// eligible applies the full filter chain. All conditions must hold.
func (m *Matcher) eligible(job *domain.Job, t *domain.User) bool {
	if t.Role != domain.RoleTranslator || t.Suspended {
		return false
	}
	if !t.Speaks(job.FromLanguageID) {
		return false
	}
	if !t.HasLevel(domain.LevelsForCertification(job.Certification)) {
		return false
	}
	if t.TranslatorType != domain.TranslatorTypeForJob(job.JobType) {
		return false
	}
	if t.Blacklists(job.CustomerID) {
		return false
	}
	if job.Gender != "" && t.Gender != job.Gender {
		return false
	}
	if job.Immediate && t.SuppressEmergency {
		return false
	}
	// On-site jobs with no phone fallback require the translator in town.
	if job.CustomerPhysicalType && !job.CustomerPhoneType && !m.cfg.SkipTownCheck {
		if job.Town != "" && t.City != job.Town {
			return false
		}
	}
	return true
}

// NeedDelayPush reports whether a push to this translator must wait for the
// next business-day start: current local time is in the night window and the
// translator opted out of night-time pushes.
func (m *Matcher) NeedDelayPush(t *domain.User) bool {
	return m.cfg.Hours.IsNight(m.clock.Now()) && t.SuppressNighttime
}

// CanSendPush reports whether the translator accepts push notifications at
// all.
func (m *Matcher) CanSendPush(t *domain.User) bool {
	return !t.SuppressAll
}

// NextBusinessTime returns the send-after instant for the delayed push batch.
func (m *Matcher) NextBusinessTime() time.Time {
	return m.cfg.Hours.NextBusinessTime(m.clock.Now())
}
