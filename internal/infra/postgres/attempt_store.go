package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lms-grading-service/internal/domain"
)

// AttemptStore persists attempts and their reports in Postgres.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) Create(ctx context.Context, attempt domain.Attempt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attempts (id, test_id, user_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		attempt.ID, attempt.TestID, attempt.UserID, string(attempt.Status), attempt.StartedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, attemptID string) (domain.Attempt, error) {
	var (
		attempt     domain.Attempt
		status      string
		submittedAt *time.Time
		report      []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, test_id, user_id, status, started_at, submitted_at, report
		FROM attempts WHERE id = $1`, attemptID).
		Scan(&attempt.ID, &attempt.TestID, &attempt.UserID, &status, &attempt.StartedAt, &submittedAt, &report)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("load attempt: %w", err)
	}
	attempt.Status = domain.AttemptStatus(status)
	attempt.SubmittedAt = submittedAt
	if len(report) > 0 {
		var r domain.AttemptReport
		if err := json.Unmarshal(report, &r); err != nil {
			return domain.Attempt{}, fmt.Errorf("unmarshal report: %w", err)
		}
		attempt.Report = &r
	}
	return attempt, nil
}

// MarkSubmitted only updates attempts still in progress, so concurrent
// submissions of the same attempt store exactly one report.
func (s *AttemptStore) MarkSubmitted(ctx context.Context, attempt domain.Attempt) error {
	var report *string
	if attempt.Report != nil {
		data, err := json.Marshal(attempt.Report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		r := string(data)
		report = &r
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE attempts
		SET status = $2, submitted_at = $3, report = $4::jsonb
		WHERE id = $1 AND status = $5`,
		attempt.ID, string(attempt.Status), attempt.SubmittedAt, report, string(domain.AttemptInProgress))
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attempts WHERE id = $1)`, attempt.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check attempt: %w", err)
	}
	if !exists {
		return domain.ErrAttemptNotFound
	}
	return domain.ErrAttemptNotSubmittable
}
