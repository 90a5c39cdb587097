package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/interpretly/booking-be/internal/booking/domain"
	"github.com/interpretly/booking-be/internal/booking/service"
	"github.com/interpretly/booking-be/shared/postgresql"
)

const jobColumns = `
	id, status, immediate, due, duration, from_language_id,
	gender, certified, job_type, customer_phone_type, customer_physical_type,
	customer_id, user_email, reference, address, instructions, town,
	admin_comments, by_admin, session_time, created_at, will_expire_at,
	end_at, withdraw_at
`

// Storage handles all database operations for bookings
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.DB(),
		logger: logger,
	}
}

func (s *Storage) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	var job domain.Job
	err := s.db.GetContext(ctx, &job, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (s *Storage) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (
			id, status, immediate, due, duration, from_language_id,
			gender, certified, job_type, customer_phone_type, customer_physical_type,
			customer_id, user_email, reference, address, instructions, town,
			admin_comments, by_admin, session_time, created_at, will_expire_at,
			end_at, withdraw_at
		) VALUES (
			:id, :status, :immediate, :due, :duration, :from_language_id,
			:gender, :certified, :job_type, :customer_phone_type, :customer_physical_type,
			:customer_id, :user_email, :reference, :address, :instructions, :town,
			:admin_comments, :by_admin, :session_time, :created_at, :will_expire_at,
			:end_at, :withdraw_at
		)
	`

	_, err := s.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) SaveJob(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET
			status = :status,
			immediate = :immediate,
			due = :due,
			duration = :duration,
			from_language_id = :from_language_id,
			gender = :gender,
			certified = :certified,
			job_type = :job_type,
			customer_phone_type = :customer_phone_type,
			customer_physical_type = :customer_physical_type,
			user_email = :user_email,
			reference = :reference,
			address = :address,
			instructions = :instructions,
			town = :town,
			admin_comments = :admin_comments,
			session_time = :session_time,
			created_at = :created_at,
			will_expire_at = :will_expire_at,
			end_at = :end_at,
			withdraw_at = :withdraw_at
		WHERE id = :id
	`

	result, err := s.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

func (s *Storage) ListJobs(ctx context.Context, filter service.JobFilter) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.CustomerID != "" {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)
		args = append(args, filter.CustomerID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	// Order by created_at DESC, id DESC for consistent pagination
	query += " ORDER BY created_at DESC, id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []domain.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// AcceptJob flips the job to assigned only while it still awaits a
// translator, and inserts the assignment in the same transaction. The
// conditional update is the arbiter when two translators race for one job.
func (s *Storage) AcceptJob(ctx context.Context, assignment *domain.Assignment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claim := `
		UPDATE jobs
		SET status = $1
		WHERE id = $2
		  AND status IN ($3, $4)
	`

	result, err := tx.ExecContext(ctx, claim,
		domain.StatusAssigned,
		assignment.JobID,
		domain.StatusPending,
		domain.StatusTimedOut,
	)
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		s.logger.Warn("Failed to claim job - already taken or not found",
			slog.String("job_id", assignment.JobID),
			slog.String("translator_id", assignment.TranslatorID),
		)
		return domain.ErrJobAlreadyTaken
	}

	insert := `
		INSERT INTO assignments (id, job_id, translator_id, assigned_at, completed_at, cancel_at, completed_by)
		VALUES (:id, :job_id, :translator_id, :assigned_at, :completed_at, :cancel_at, :completed_by)
	`

	if _, err := tx.NamedExecContext(ctx, insert, assignment); err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accept: %w", err)
	}

	s.logger.Info("Job claimed successfully",
		slog.String("job_id", assignment.JobID),
		slog.String("translator_id", assignment.TranslatorID),
	)

	return nil
}

func (s *Storage) GetActiveAssignment(ctx context.Context, jobID string) (*domain.Assignment, error) {
	query := `
		SELECT id, job_id, translator_id, assigned_at, completed_at, cancel_at, completed_by
		FROM assignments
		WHERE job_id = $1
		  AND completed_at IS NULL
		  AND cancel_at IS NULL
	`

	var a domain.Assignment
	err := s.db.GetContext(ctx, &a, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}

	return &a, nil
}

func (s *Storage) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	query := `
		INSERT INTO assignments (id, job_id, translator_id, assigned_at, completed_at, cancel_at, completed_by)
		VALUES (:id, :job_id, :translator_id, :assigned_at, :completed_at, :cancel_at, :completed_by)
	`

	if _, err := s.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	return nil
}

func (s *Storage) SaveAssignment(ctx context.Context, a *domain.Assignment) error {
	query := `
		UPDATE assignments SET
			completed_at = :completed_at,
			cancel_at = :cancel_at,
			completed_by = :completed_by
		WHERE id = :id
	`

	if _, err := s.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, role, name, email, mobile, city, gender, suspended,
		       consumer_type, translator_type,
		       suppress_emergency, suppress_nighttime, suppress_all
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == domain.RoleTranslator {
		if err := s.loadTranslatorRelations(ctx, []*domain.User{&user}); err != nil {
			return nil, err
		}
	}

	return &user, nil
}

func (s *Storage) GetLanguage(ctx context.Context, id string) (*domain.Language, error) {
	query := `SELECT id, language, active FROM languages WHERE id = $1`

	var lang domain.Language
	err := s.db.GetContext(ctx, &lang, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("language %s not found", id)
		}
		return nil, fmt.Errorf("failed to get language: %w", err)
	}

	return &lang, nil
}

func (s *Storage) ListActiveTranslators(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, role, name, email, mobile, city, gender, suspended,
		       consumer_type, translator_type,
		       suppress_emergency, suppress_nighttime, suppress_all
		FROM users
		WHERE role = $1
		  AND suspended = FALSE
		ORDER BY created_at ASC
	`

	var translators []*domain.User
	if err := s.db.SelectContext(ctx, &translators, query, domain.RoleTranslator); err != nil {
		return nil, fmt.Errorf("failed to list translators: %w", err)
	}

	if err := s.loadTranslatorRelations(ctx, translators); err != nil {
		return nil, err
	}

	return translators, nil
}

// loadTranslatorRelations stitches spoken languages, certification levels and
// customer blacklists onto the given translators with one query per relation.
func (s *Storage) loadTranslatorRelations(ctx context.Context, translators []*domain.User) error {
	if len(translators) == 0 {
		return nil
	}

	byID := make(map[string]*domain.User, len(translators))
	ids := make([]string, 0, len(translators))
	for _, t := range translators {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	type link struct {
		UserID string `db:"user_id"`
		Value  string `db:"value"`
	}

	load := func(query string, assign func(t *domain.User, value string)) error {
		query, args, err := sqlx.In(query, ids)
		if err != nil {
			return fmt.Errorf("failed to build relation query: %w", err)
		}

		var rows []link
		if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to load translator relations: %w", err)
		}

		for _, r := range rows {
			if t, ok := byID[r.UserID]; ok {
				assign(t, r.Value)
			}
		}
		return nil
	}

	err := load(
		`SELECT user_id, language_id AS value FROM user_languages WHERE user_id IN (?)`,
		func(t *domain.User, v string) { t.Languages = append(t.Languages, v) },
	)
	if err != nil {
		return err
	}

	err = load(
		`SELECT user_id, level AS value FROM user_levels WHERE user_id IN (?)`,
		func(t *domain.User, v string) { t.TranslatorLevels = append(t.TranslatorLevels, domain.TranslatorLevel(v)) },
	)
	if err != nil {
		return err
	}

	return load(
		`SELECT translator_id AS user_id, customer_id AS value FROM translator_blacklist WHERE translator_id IN (?)`,
		func(t *domain.User, v string) { t.Blacklist = append(t.Blacklist, v) },
	)
}

// IsDoubleBooked reports whether the translator already holds an active
// assignment whose session window overlaps [due, due+duration).
func (s *Storage) IsDoubleBooked(ctx context.Context, translatorID string, due time.Time, duration int) (bool, error) {
	end := due.Add(time.Duration(duration) * time.Minute)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM assignments a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.translator_id = $1
			  AND a.completed_at IS NULL
			  AND a.cancel_at IS NULL
			  AND j.status IN ($2, $3)
			  AND j.due < $4
			  AND j.due + make_interval(mins => j.duration) > $5
		)
	`

	var booked bool
	err := s.db.GetContext(ctx, &booked, query,
		translatorID,
		domain.StatusAssigned,
		domain.StatusStarted,
		end,
		due,
	)
	if err != nil {
		return false, fmt.Errorf("failed to check double booking: %w", err)
	}

	return booked, nil
}
