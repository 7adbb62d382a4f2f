package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTestNotFound indicates the test content could not be loaded.
	ErrTestNotFound = errors.New("test not found")
	// ErrAttemptNotFound is returned for unknown attempt IDs.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptForbidden is returned when a user acts on someone else's attempt.
	ErrAttemptForbidden = errors.New("attempt belongs to another user")
	// ErrAttemptNotSubmittable is returned when the attempt was already submitted.
	ErrAttemptNotSubmittable = errors.New("attempt is not in a submittable state")
	// ErrAttemptTimeLimitExceeded is returned when a timed attempt is submitted too late.
	ErrAttemptTimeLimitExceeded = errors.New("attempt time limit exceeded")
	// ErrAttemptNotGraded is returned when a result is requested before submission.
	ErrAttemptNotGraded = errors.New("attempt has not been graded yet")
	// ErrNoAnswers is returned when a submission carries no answers at all.
	ErrNoAnswers = errors.New("no answers submitted")
	// ErrImportSessionNotFound is returned for unknown or expired import sessions.
	ErrImportSessionNotFound = errors.New("import session not found")
)

// AnswerError reports why one submitted answer was rejected.
type AnswerError struct {
	Index      int    `json:"index"`
	QuestionID string `json:"questionId,omitempty"`
	Message    string `json:"message"`
}

// ValidationError collects every rejected answer of a submission.
type ValidationError struct {
	Errors []AnswerError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ae := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("answer %d: %s", ae.Index, ae.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
