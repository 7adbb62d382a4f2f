package domain

import "time"

// QuestionType identifies the grading rule applied to a question.
type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	// TrueFalse is graded with the single-choice rule.
	TrueFalse QuestionType = "true-false"
)

// Option represents a possible answer for a question.
type Option struct {
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"isCorrect"`
}

// Question models a choice question; options are addressed by zero-based index.
type Question struct {
	ID          string       `json:"id" validate:"required"`
	Type        QuestionType `json:"questionType" validate:"required,oneof=single-choice multiple-choice true-false"`
	Prompt      string       `json:"prompt"`
	Options     []Option     `json:"options" validate:"min=2,dive"`
	Marks       float64      `json:"marks" validate:"gt=0"`
	Topic       string       `json:"topic,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
}

// CorrectOptions returns the indices of options flagged correct.
func (q Question) CorrectOptions() []int {
	out := make([]int, 0, 1)
	for i, opt := range q.Options {
		if opt.Correct {
			out = append(out, i)
		}
	}
	return out
}

// Test is a collection of questions plus its pass threshold.
type Test struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	PassingPercentage float64    `json:"passingPercentage"`
	TimeLimitSec      int        `json:"timeLimitSec,omitempty"`
	Questions         []Question `json:"questions"`
}

// RawAnswer is an answer as decoded from a client payload, before validation.
type RawAnswer struct {
	QuestionID      string `json:"questionId"`
	SelectedOptions any    `json:"selectedOptions"`
	TimeTaken       any    `json:"timeTaken"`
}

// SubmittedAnswer is a validated answer ready for grading.
type SubmittedAnswer struct {
	QuestionID      string  `json:"questionId"`
	SelectedOptions []int   `json:"selectedOptions"`
	TimeTaken       float64 `json:"timeTaken"`
}

// GradedAnswer pairs a submission with its computed score.
type GradedAnswer struct {
	QuestionID      string  `json:"questionId"`
	SelectedOptions []int   `json:"selectedOptions"`
	TimeTaken       float64 `json:"timeTaken"`
	IsCorrect       bool    `json:"isCorrect"`
	MarksEarned     float64 `json:"marksEarned"`
	CorrectOptions  []int   `json:"correctOptions"`
	Explanation     string  `json:"explanation,omitempty"`
}

// TestGradingResult aggregates every graded answer of one attempt.
type TestGradingResult struct {
	Answers          []GradedAnswer `json:"answers"`
	TotalMarksEarned float64        `json:"totalMarksEarned"`
	TotalMarks       float64        `json:"totalMarks"`
	Percentage       float64        `json:"percentage"`
	CorrectAnswers   int            `json:"correctAnswers"`
	IncorrectAnswers int            `json:"incorrectAnswers"`
	TotalTimeTaken   float64        `json:"totalTimeTaken"`
}

// QuestionTiming points at one answer by question and time spent.
type QuestionTiming struct {
	QuestionID string  `json:"questionId"`
	TimeTaken  float64 `json:"timeTaken"`
}

// AnswerBreakdown counts answers by outcome.
type AnswerBreakdown struct {
	Correct       int `json:"correct"`
	Incorrect     int `json:"incorrect"`
	PartialCredit int `json:"partialCredit"`
}

// PerformanceAnalytics is derived from a TestGradingResult.
type PerformanceAnalytics struct {
	AverageTimePerQuestion float64         `json:"averageTimePerQuestion"`
	FastestQuestion        *QuestionTiming `json:"fastestQuestion,omitempty"`
	SlowestQuestion        *QuestionTiming `json:"slowestQuestion,omitempty"`
	Grade                  string          `json:"grade"`
	AccuracyRate           float64         `json:"accuracyRate"`
	Strengths              []string        `json:"strengths"`
	ImprovementAreas       []string        `json:"improvementAreas"`
	Breakdown              AnswerBreakdown `json:"breakdown"`
}

// RecommendationType classifies a study recommendation.
type RecommendationType string

const (
	RecommendationOverallReview  RecommendationType = "overall_review"
	RecommendationTimeManagement RecommendationType = "time_management"
	RecommendationTopicReview    RecommendationType = "topic_review"
)

// Priority ranks recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Recommendation is a study hint derived from a grading result.
type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Priority    Priority           `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Topic       string             `json:"topic,omitempty"`
}

// AttemptStatus tracks the lifecycle of an attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// Attempt is one student's run through a test.
type Attempt struct {
	ID          string         `json:"id"`
	TestID      string         `json:"testId"`
	UserID      string         `json:"userId"`
	Status      AttemptStatus  `json:"status"`
	StartedAt   time.Time      `json:"startedAt"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
	Report      *AttemptReport `json:"report,omitempty"`
}

// AttemptReport is everything computed when an attempt is submitted.
type AttemptReport struct {
	AttemptID       string               `json:"attemptId"`
	TestID          string               `json:"testId"`
	Result          TestGradingResult    `json:"result"`
	Analytics       PerformanceAnalytics `json:"analytics"`
	Recommendations []Recommendation     `json:"recommendations"`
	Passed          bool                 `json:"passed"`
	// WallClockSeconds is measured from attempt start to submission.
	WallClockSeconds float64 `json:"wallClockSeconds"`
}

// SubmissionSummary is a feed-friendly view of one submitted attempt.
type SubmissionSummary struct {
	AttemptID   string    `json:"attemptId"`
	UserID      string    `json:"userId"`
	Percentage  float64   `json:"percentage"`
	Grade       string    `json:"grade"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ResultFeed is the live snapshot pushed to instructors watching a test.
type ResultFeed struct {
	TestID            string              `json:"testId"`
	Submissions       int                 `json:"submissions"`
	Passed            int                 `json:"passed"`
	AveragePercentage float64             `json:"averagePercentage"`
	Recent            []SubmissionSummary `json:"recent"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// ImportSession stages questions for a bulk upload before they are committed.
type ImportSession struct {
	ID        string     `json:"id"`
	TestID    string     `json:"testId"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}
