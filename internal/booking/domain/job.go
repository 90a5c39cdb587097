package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending          Status = "pending"
	StatusAssigned         Status = "assigned"
	StatusStarted          Status = "started"
	StatusCompleted        Status = "completed"
	StatusWithdrawBefore24 Status = "withdrawbefore24"
	StatusWithdrawAfter24  Status = "withdrawafter24"
	StatusTimedOut         Status = "timedout"
)

// ParseStatus validates a raw status value coming in over the API boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAssigned, StatusStarted, StatusCompleted,
		StatusWithdrawBefore24, StatusWithdrawAfter24, StatusTimedOut:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// IsTerminal reports whether no further transition may leave this status.
// Timedout is semi-terminal: it leaves only through an explicit reopen.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusWithdrawBefore24, StatusWithdrawAfter24:
		return true
	}
	return false
}

// Gender restricts matching when the customer requested one.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// Certification is the customer's requested certification level, using the
// wire values the booking form submits.
type Certification string

const (
	CertificationNormal  Certification = "normal"
	CertificationYes     Certification = "yes" // certified, no specialisation required
	CertificationBoth    Certification = "both"
	CertificationLaw     Certification = "law"
	CertificationNLaw    Certification = "n_law"
	CertificationHealth  Certification = "health"
	CertificationNHealth Certification = "n_health"
)

func ParseCertification(s string) (Certification, error) {
	switch Certification(s) {
	case CertificationNormal, CertificationYes, CertificationBoth,
		CertificationLaw, CertificationNLaw, CertificationHealth, CertificationNHealth:
		return Certification(s), nil
	}
	return "", fmt.Errorf("unknown certification %q", s)
}

// JobType classifies the booking by the owning customer's consumer category.
type JobType string

const (
	JobTypePaid    JobType = "paid"
	JobTypeUnpaid  JobType = "unpaid"
	JobTypeRWS     JobType = "rws"
	JobTypeUnknown JobType = "unknown"
)

// JobTypeForConsumer derives the job type from the customer's consumer category.
func JobTypeForConsumer(c ConsumerType) JobType {
	switch c {
	case ConsumerRWS:
		return JobTypeRWS
	case ConsumerNGO:
		return JobTypeUnpaid
	case ConsumerPaid:
		return JobTypePaid
	}
	return JobTypeUnknown
}

// Job is a single interpretation booking.
type Job struct {
	ID                   string        `db:"id"`
	Status               Status        `db:"status"`
	Immediate            bool          `db:"immediate"`
	Due                  time.Time     `db:"due"`
	Duration             int           `db:"duration"` // minutes
	FromLanguageID       string        `db:"from_language_id"`
	Gender               Gender        `db:"gender"`    // empty when not restricted
	Certification        Certification `db:"certified"` // empty when not restricted
	JobType              JobType       `db:"job_type"`
	CustomerPhoneType    bool          `db:"customer_phone_type"`
	CustomerPhysicalType bool          `db:"customer_physical_type"`
	CustomerID           string        `db:"customer_id"`
	UserEmail            string        `db:"user_email"` // contact override, falls back to the customer's address
	Reference            string        `db:"reference"`
	Address              string        `db:"address"`
	Instructions         string        `db:"instructions"`
	Town                 string        `db:"town"`
	AdminComments        string        `db:"admin_comments"`
	ByAdmin              bool          `db:"by_admin"`
	SessionTime          string        `db:"session_time"` // HH:MM:SS, set on completion
	CreatedAt            time.Time     `db:"created_at"`
	WillExpireAt         time.Time     `db:"will_expire_at"`
	EndAt                *time.Time    `db:"end_at"`
	WithdrawAt           *time.Time    `db:"withdraw_at"`
}

const dueLayout = "2006-01-02 15:04:05"

// SplitDue splits the due timestamp into its date and time parts, the shape
// the booking form and the push texts use.
func (j *Job) SplitDue() (date, clock string) {
	s := j.Due.Format(dueLayout)
	return s[:10], s[11:]
}

// JoinDue is the inverse of SplitDue.
func JoinDue(date, clock string) (time.Time, error) {
	return time.Parse(dueLayout, date+" "+clock)
}

// DueString renders due the way it appears in notifications.
func (j *Job) DueString() string {
	return j.Due.Format(dueLayout)
}

// JobFor renders the gender/certification requirements as the display tags
// returned with a freshly created booking.
func (j *Job) JobFor() []string {
	var tags []string
	switch j.Gender {
	case GenderMale:
		tags = append(tags, "Man")
	case GenderFemale:
		tags = append(tags, "Kvinna")
	}
	switch j.Certification {
	case CertificationBoth:
		tags = append(tags, "normal", "certified")
	case CertificationYes:
		tags = append(tags, "certified")
	case "":
	default:
		tags = append(tags, string(j.Certification))
	}
	return tags
}

// Assignment links a job to the translator performing it. At most one
// assignment per job may have both CompletedAt and CancelAt unset.
type Assignment struct {
	ID           string     `db:"id"`
	JobID        string     `db:"job_id"`
	TranslatorID string     `db:"translator_id"`
	AssignedAt   time.Time  `db:"assigned_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	CancelAt     *time.Time `db:"cancel_at"`
	CompletedBy  string     `db:"completed_by"`
}

// Active reports whether the assignment is still the live job-translator link.
func (a *Assignment) Active() bool {
	return a.CompletedAt == nil && a.CancelAt == nil
}

// Language is a bookable interpretation language.
type Language struct {
	ID     string `db:"id"`
	Name   string `db:"language"`
	Active bool   `db:"active"`
}

// WillExpireAt computes the match-window expiry for a job, after which an
// unaccepted booking times out. The window widens with the lead time between
// creation and due.
func WillExpireAt(due, createdAt time.Time) time.Time {
	diff := due.Sub(createdAt)
	switch {
	case diff <= 90*time.Minute:
		return due
	case diff <= 24*time.Hour:
		return createdAt.Add(90 * time.Minute)
	case diff <= 72*time.Hour:
		return createdAt.Add(16 * time.Hour)
	default:
		return due.Add(-48 * time.Hour)
	}
}

// FormatSessionTime renders an elapsed session as HH:MM:SS.
func FormatSessionTime(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// HumanSessionTime renders a HH:MM:SS session time the way the session-ended
// mails spell it out.
func HumanSessionTime(sessionTime string) string {
	var h, m, s int
	if _, err := fmt.Sscanf(sessionTime, "%d:%d:%d", &h, &m, &s); err != nil {
		return sessionTime
	}
	return fmt.Sprintf("%d tim %d min", h, m)
}

// MinutesToHoursMins renders a duration in minutes for SMS texts.
func MinutesToHoursMins(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	if minutes == 60 {
		return "1h"
	}
	return fmt.Sprintf("%02dh %02dmin", minutes/60, minutes%60)
}
