package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"lms-grading-service/internal/domain"
	"lms-grading-service/internal/grading"
)

// MsgDuplicateAnswer rejects a second answer to the same question.
const MsgDuplicateAnswer = "Duplicate answer for question"

// TestRepository loads test content (from cache/backing store).
type TestRepository interface {
	GetTest(ctx context.Context, testID string) (domain.Test, error)
	// Invalidate drops any cached copy so the next GetTest reloads it.
	Invalidate(ctx context.Context, testID string) error
}

// AttemptRepository persists attempts.
type AttemptRepository interface {
	Create(ctx context.Context, attempt domain.Attempt) error
	Get(ctx context.Context, attemptID string) (domain.Attempt, error)
	// MarkSubmitted stores the graded attempt, failing with
	// domain.ErrAttemptNotSubmittable if it was submitted concurrently.
	MarkSubmitted(ctx context.Context, attempt domain.Attempt) error
}

// AttemptService contains the attempt submission use cases.
type AttemptService struct {
	tests    TestRepository
	attempts AttemptRepository
	feeds    FeedRepository
	now      func() time.Time
	newID    func() string
}

func NewAttemptService(tests TestRepository, attempts AttemptRepository, feeds FeedRepository) *AttemptService {
	return NewAttemptServiceWithClock(tests, attempts, feeds, time.Now)
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(tests TestRepository, attempts AttemptRepository, feeds FeedRepository, now func() time.Time) *AttemptService {
	return &AttemptService{
		tests:    tests,
		attempts: attempts,
		feeds:    feeds,
		now:      now,
		newID:    uuid.NewString,
	}
}

// Start opens a new attempt for a user on a test.
func (s *AttemptService) Start(ctx context.Context, testID, userID string) (domain.Attempt, error) {
	// Users cannot start unknown tests; this also warms the cache.
	if _, err := s.tests.GetTest(ctx, testID); err != nil {
		return domain.Attempt{}, err
	}

	attempt := domain.Attempt{
		ID:        s.newID(),
		TestID:    testID,
		UserID:    userID,
		Status:    domain.AttemptInProgress,
		StartedAt: s.now(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return domain.Attempt{}, err
	}
	log.Printf("[attempts] user %s started attempt %s on test %s", userID, attempt.ID, testID)
	return attempt, nil
}

// Submit validates and grades the answers of an in-progress attempt and stores the report.
// If any answer is malformed nothing is graded and a *domain.ValidationError is returned.
func (s *AttemptService) Submit(ctx context.Context, attemptID, userID string, answers []domain.RawAnswer) (domain.AttemptReport, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.AttemptReport{}, err
	}
	if attempt.UserID != userID {
		return domain.AttemptReport{}, domain.ErrAttemptForbidden
	}
	if attempt.Status != domain.AttemptInProgress {
		return domain.AttemptReport{}, domain.ErrAttemptNotSubmittable
	}

	test, err := s.tests.GetTest(ctx, attempt.TestID)
	if err != nil {
		return domain.AttemptReport{}, err
	}

	now := s.now()
	if test.TimeLimitSec > 0 && now.Sub(attempt.StartedAt) > time.Duration(test.TimeLimitSec)*time.Second {
		return domain.AttemptReport{}, domain.ErrAttemptTimeLimitExceeded
	}

	report, err := buildReport(test, answers)
	if err != nil {
		return domain.AttemptReport{}, err
	}

	report.AttemptID = attempt.ID
	report.WallClockSeconds = now.Sub(attempt.StartedAt).Seconds()

	attempt.Status = domain.AttemptSubmitted
	attempt.SubmittedAt = &now
	attempt.Report = &report
	if err := s.attempts.MarkSubmitted(ctx, attempt); err != nil {
		return domain.AttemptReport{}, err
	}

	log.Printf("[attempts] attempt %s graded: %.2f/%.2f (%.1f%%) passed=%v",
		attempt.ID, report.Result.TotalMarksEarned, report.Result.TotalMarks, report.Result.Percentage, report.Passed)

	s.publish(test.ID, domain.SubmissionSummary{
		AttemptID:   attempt.ID,
		UserID:      attempt.UserID,
		Percentage:  report.Result.Percentage,
		Grade:       report.Analytics.Grade,
		Passed:      report.Passed,
		SubmittedAt: now,
	})
	return report, nil
}

// Result returns the stored report of a submitted attempt.
func (s *AttemptService) Result(ctx context.Context, attemptID, userID string) (domain.AttemptReport, error) {
	attempt, err := s.attempts.Get(ctx, attemptID)
	if err != nil {
		return domain.AttemptReport{}, err
	}
	if attempt.UserID != userID {
		return domain.AttemptReport{}, domain.ErrAttemptForbidden
	}
	if attempt.Status != domain.AttemptSubmitted || attempt.Report == nil {
		return domain.AttemptReport{}, domain.ErrAttemptNotGraded
	}
	return *attempt.Report, nil
}

// Grade scores answers against a stored test without recording an attempt.
func (s *AttemptService) Grade(ctx context.Context, testID string, answers []domain.RawAnswer) (domain.AttemptReport, error) {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return domain.AttemptReport{}, err
	}
	return buildReport(test, answers)
}

// Subscribe returns a channel that receives result feed updates for a test.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AttemptService) Subscribe(ctx context.Context, testID string) (<-chan domain.ResultFeed, func(), error) {
	if _, err := s.tests.GetTest(ctx, testID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feeds.Subscribe(testID)
	return ch, cancel, nil
}

func (s *AttemptService) publish(testID string, summary domain.SubmissionSummary) {
	feed, ok := s.feeds.Get(testID)
	if !ok {
		return
	}
	feed.record(summary)
}

// BuildReport grades a test directly; exported for offline tooling.
func BuildReport(test domain.Test, answers []domain.RawAnswer) (domain.AttemptReport, error) {
	return buildReport(test, answers)
}

func buildReport(test domain.Test, answers []domain.RawAnswer) (domain.AttemptReport, error) {
	if len(answers) == 0 {
		return domain.AttemptReport{}, domain.ErrNoAnswers
	}

	valid := make([]domain.SubmittedAnswer, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	var verr domain.ValidationError
	for i, raw := range answers {
		res := grading.ValidateAnswer(raw)
		if !res.Valid {
			verr.Errors = append(verr.Errors, domain.AnswerError{Index: i, QuestionID: raw.QuestionID, Message: res.Error})
			continue
		}
		// each question is graded once per submission
		if _, dup := seen[res.Answer.QuestionID]; dup {
			verr.Errors = append(verr.Errors, domain.AnswerError{Index: i, QuestionID: raw.QuestionID, Message: MsgDuplicateAnswer})
			continue
		}
		seen[res.Answer.QuestionID] = struct{}{}
		valid = append(valid, res.Answer)
	}
	if len(verr.Errors) > 0 {
		return domain.AttemptReport{}, &verr
	}

	result := grading.GradeTestAttempt(test.Questions, valid)
	return domain.AttemptReport{
		TestID:          test.ID,
		Result:          result,
		Analytics:       grading.GeneratePerformanceAnalytics(result),
		Recommendations: grading.GenerateStudyRecommendations(result, test.Questions),
		Passed:          grading.Passed(result, test.PassingPercentage),
	}, nil
}
