package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lms-grading-service/internal/domain"
)

// UploadSessionStore holds staged question uploads between requests.
// Implementations must be shareable across server instances (e.g. Redis).
type UploadSessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.ImportSession, error)
	Put(ctx context.Context, session domain.ImportSession, ttl time.Duration) error
	Expire(ctx context.Context, sessionID string) error
}

// QuestionWriter appends questions to a stored test.
type QuestionWriter interface {
	AppendQuestions(ctx context.Context, testID string, questions []domain.Question) error
}

// QuestionError reports why one uploaded question was rejected.
type QuestionError struct {
	Index      int    `json:"index"`
	QuestionID string `json:"questionId,omitempty"`
	Message    string `json:"message"`
}

// ImportService stages bulk question uploads and commits them to a test.
type ImportService struct {
	sessions UploadSessionStore
	writer   QuestionWriter
	tests    TestRepository
	validate *validator.Validate
	ttl      time.Duration
	now      func() time.Time
}

func NewImportService(sessions UploadSessionStore, writer QuestionWriter, tests TestRepository, ttl time.Duration) *ImportService {
	return &ImportService{
		sessions: sessions,
		writer:   writer,
		tests:    tests,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Begin opens an import session for an existing test.
func (s *ImportService) Begin(ctx context.Context, testID string) (domain.ImportSession, error) {
	if _, err := s.tests.GetTest(ctx, testID); err != nil {
		return domain.ImportSession{}, err
	}
	session := domain.ImportSession{
		ID:        uuid.NewString(),
		TestID:    testID,
		Questions: []domain.Question{},
		CreatedAt: s.now(),
	}
	if err := s.sessions.Put(ctx, session, s.ttl); err != nil {
		return domain.ImportSession{}, fmt.Errorf("store import session: %w", err)
	}
	return session, nil
}

// Stage validates questions and adds the valid ones to the session.
// Rejected questions are reported and do not block the rest.
func (s *ImportService) Stage(ctx context.Context, sessionID string, questions []domain.Question) (domain.ImportSession, []QuestionError, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.ImportSession{}, nil, err
	}

	test, err := s.tests.GetTest(ctx, session.TestID)
	if err != nil {
		return domain.ImportSession{}, nil, err
	}

	seen := make(map[string]struct{}, len(test.Questions)+len(session.Questions)+len(questions))
	for _, q := range test.Questions {
		seen[q.ID] = struct{}{}
	}
	for _, q := range session.Questions {
		seen[q.ID] = struct{}{}
	}

	rejected := []QuestionError{}
	for i, q := range questions {
		if msg := s.checkQuestion(q); msg != "" {
			rejected = append(rejected, QuestionError{Index: i, QuestionID: q.ID, Message: msg})
			continue
		}
		if _, dup := seen[q.ID]; dup {
			rejected = append(rejected, QuestionError{Index: i, QuestionID: q.ID, Message: "duplicate question id"})
			continue
		}
		seen[q.ID] = struct{}{}
		session.Questions = append(session.Questions, q)
	}

	if err := s.sessions.Put(ctx, session, s.ttl); err != nil {
		return domain.ImportSession{}, nil, fmt.Errorf("store import session: %w", err)
	}
	return session, rejected, nil
}

// Commit writes the staged questions to the test and closes the session.
func (s *ImportService) Commit(ctx context.Context, sessionID string) (int, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if len(session.Questions) > 0 {
		if err := s.writer.AppendQuestions(ctx, session.TestID, session.Questions); err != nil {
			return 0, fmt.Errorf("append questions: %w", err)
		}
		if err := s.tests.Invalidate(ctx, session.TestID); err != nil {
			log.Printf("[imports] cache invalidation for test %s failed: %v", session.TestID, err)
		}
	}
	if err := s.sessions.Expire(ctx, sessionID); err != nil {
		log.Printf("[imports] expire session %s failed: %v", sessionID, err)
	}
	log.Printf("[imports] committed %d questions to test %s", len(session.Questions), session.TestID)
	return len(session.Questions), nil
}

// Discard drops an import session without writing anything.
func (s *ImportService) Discard(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return err
	}
	return s.sessions.Expire(ctx, sessionID)
}

// checkQuestion returns an empty string for a gradeable question.
func (s *ImportService) checkQuestion(q domain.Question) string {
	if err := s.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return strings.Join(msgs, ", ")
		}
		return err.Error()
	}

	correct := len(q.CorrectOptions())
	switch q.Type {
	case domain.SingleChoice, domain.TrueFalse:
		if correct != 1 {
			return "single-choice questions need exactly one correct option"
		}
	case domain.MultipleChoice:
		if correct == 0 {
			return "multiple-choice questions need at least one correct option"
		}
	}
	return ""
}
