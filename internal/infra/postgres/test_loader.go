package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lms-grading-service/internal/domain"
)

// TestLoader loads test JSONB from Postgres.
type TestLoader struct {
	pool *pgxpool.Pool
}

func NewTestLoader(pool *pgxpool.Pool) *TestLoader {
	return &TestLoader{pool: pool}
}

func (l *TestLoader) LoadTest(ctx context.Context, testID string) (domain.Test, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM tests WHERE id=$1`, testID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Test{}, domain.ErrTestNotFound
	}
	if err != nil {
		return domain.Test{}, fmt.Errorf("load test: %w", err)
	}
	var test domain.Test
	if err := json.Unmarshal(raw, &test); err != nil {
		return domain.Test{}, fmt.Errorf("unmarshal test: %w", err)
	}
	test.ID = testID
	return test, nil
}

// AppendQuestions adds committed imports to the test document.
func (l *TestLoader) AppendQuestions(ctx context.Context, testID string, questions []domain.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := l.pool.Exec(ctx, `
		UPDATE tests
		SET data = jsonb_set(data, '{questions}', COALESCE(data->'questions', '[]'::jsonb) || $2::jsonb)
		WHERE id = $1`, testID, string(data))
	if err != nil {
		return fmt.Errorf("append questions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTestNotFound
	}
	return nil
}

// SaveTest inserts or replaces a whole test document.
func (l *TestLoader) SaveTest(ctx context.Context, test domain.Test) error {
	data, err := json.Marshal(test)
	if err != nil {
		return fmt.Errorf("marshal test: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO tests (id, data) VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`, test.ID, string(data))
	if err != nil {
		return fmt.Errorf("save test: %w", err)
	}
	return nil
}
