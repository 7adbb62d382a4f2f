package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-grading-service/internal/domain"
)

func singleChoice(id string, marks float64, correct int, n int) domain.Question {
	opts := make([]domain.Option, n)
	for i := range opts {
		opts[i] = domain.Option{Text: string(rune('A' + i)), Correct: i == correct}
	}
	return domain.Question{ID: id, Type: domain.SingleChoice, Options: opts, Marks: marks}
}

func multipleChoice(id string, marks float64, n int, correct ...int) domain.Question {
	opts := make([]domain.Option, n)
	for i := range opts {
		opts[i] = domain.Option{Text: string(rune('A' + i))}
	}
	for _, c := range correct {
		opts[c].Correct = true
	}
	return domain.Question{ID: id, Type: domain.MultipleChoice, Options: opts, Marks: marks}
}

func TestGradeQuestionSingleChoice(t *testing.T) {
	q := singleChoice("q1", 2, 1, 4)

	tests := []struct {
		name     string
		selected []int
		correct  bool
		marks    float64
	}{
		{name: "correct pick", selected: []int{1}, correct: true, marks: 2},
		{name: "wrong pick", selected: []int{0}},
		{name: "two picks including correct", selected: []int{0, 1}},
		{name: "nothing selected", selected: []int{}},
		{name: "out of range", selected: []int{9}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GradeQuestion(q, tc.selected)
			assert.Equal(t, tc.correct, got.IsCorrect)
			assert.Equal(t, tc.marks, got.MarksEarned)
		})
	}
}

func TestGradeQuestionMultipleChoice(t *testing.T) {
	q := multipleChoice("q1", 4, 4, 0, 2)

	tests := []struct {
		name     string
		selected []int
		correct  bool
		marks    float64
	}{
		{name: "exact set", selected: []int{0, 2}, correct: true, marks: 4},
		{name: "exact set reordered", selected: []int{2, 0}, correct: true, marks: 4},
		{name: "partial subset", selected: []int{0}, marks: 2},
		{name: "one wrong pick", selected: []int{0, 1}},
		{name: "all correct plus wrong", selected: []int{0, 1, 2}},
		{name: "only wrong", selected: []int{3}},
		{name: "nothing selected", selected: []int{}},
		{name: "duplicate correct index", selected: []int{0, 0}, marks: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GradeQuestion(q, tc.selected)
			assert.Equal(t, tc.correct, got.IsCorrect)
			assert.InDelta(t, tc.marks, got.MarksEarned, 1e-9)
		})
	}
}

func TestGradeQuestionPartialCreditIsProportional(t *testing.T) {
	q := multipleChoice("q1", 3, 5, 0, 1, 2)

	got := GradeQuestion(q, []int{0, 2})
	assert.False(t, got.IsCorrect)
	assert.InDelta(t, 2.0, got.MarksEarned, 1e-9)
}

func TestGradeQuestionMarksStayInRange(t *testing.T) {
	questions := []domain.Question{
		singleChoice("s", 2.5, 2, 4),
		multipleChoice("m", 7, 5, 1, 3, 4),
	}
	selections := [][]int{{}, {0}, {1}, {2}, {3}, {4}, {1, 3}, {1, 3, 4}, {0, 1, 2, 3, 4}, {4, 3}}
	for _, q := range questions {
		for _, sel := range selections {
			got := GradeQuestion(q, sel)
			assert.GreaterOrEqual(t, got.MarksEarned, 0.0)
			assert.LessOrEqual(t, got.MarksEarned, q.Marks)
			if got.IsCorrect {
				assert.Equal(t, q.Marks, got.MarksEarned)
			}
		}
	}
}

func TestGradeQuestionWithoutCorrectOptionNeverScores(t *testing.T) {
	single := singleChoice("s", 2, -1, 3)
	multi := multipleChoice("m", 2, 3)

	for _, sel := range [][]int{{}, {0}, {0, 1, 2}} {
		assert.Equal(t, QuestionScore{}, GradeQuestion(single, sel))
		assert.Equal(t, QuestionScore{}, GradeQuestion(multi, sel))
	}
}

func TestGradeQuestionTrueFalseUsesSingleChoiceRule(t *testing.T) {
	q := domain.Question{
		ID:      "tf",
		Type:    domain.TrueFalse,
		Options: []domain.Option{{Text: "True", Correct: true}, {Text: "False"}},
		Marks:   1,
	}
	assert.True(t, GradeQuestion(q, []int{0}).IsCorrect)
	assert.False(t, GradeQuestion(q, []int{0, 1}).IsCorrect)
}

func TestGradeQuestionUnknownTypeScoresZero(t *testing.T) {
	q := singleChoice("q", 2, 0, 2)
	q.Type = "essay"
	assert.Equal(t, QuestionScore{}, GradeQuestion(q, []int{0}))
}

func TestGradeTestAttemptAggregates(t *testing.T) {
	questions := []domain.Question{
		singleChoice("q1", 2, 1, 4),
		multipleChoice("q2", 3, 4, 0, 2),
	}
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedOptions: []int{1}, TimeTaken: 10},
		{QuestionID: "q2", SelectedOptions: []int{0, 1}, TimeTaken: 20},
	}

	result := GradeTestAttempt(questions, answers)

	assert.Equal(t, 2.0, result.TotalMarksEarned)
	assert.Equal(t, 5.0, result.TotalMarks)
	assert.InDelta(t, 40.0, result.Percentage, 1e-9)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 1, result.IncorrectAnswers)
	assert.Equal(t, 30.0, result.TotalTimeTaken)
	require.Len(t, result.Answers, 2)
	assert.Equal(t, []int{0, 2}, result.Answers[1].CorrectOptions)
}

func TestGradeTestAttemptSkipsUnknownQuestions(t *testing.T) {
	questions := []domain.Question{singleChoice("q1", 2, 0, 2)}
	answers := []domain.SubmittedAnswer{
		{QuestionID: "missing", SelectedOptions: []int{0}, TimeTaken: 4},
		{QuestionID: "q1", SelectedOptions: []int{0}, TimeTaken: 6},
	}

	result := GradeTestAttempt(questions, answers)

	require.Len(t, result.Answers, 1)
	assert.Equal(t, "q1", result.Answers[0].QuestionID)
	assert.Equal(t, 2.0, result.TotalMarks)
	assert.Equal(t, 6.0, result.TotalTimeTaken)
	assert.Equal(t, 100.0, result.Percentage)
}

func TestGradeTestAttemptEmptyInput(t *testing.T) {
	result := GradeTestAttempt(nil, nil)

	assert.Zero(t, result.TotalMarks)
	assert.Zero(t, result.TotalMarksEarned)
	assert.Zero(t, result.Percentage)
	assert.Zero(t, result.CorrectAnswers)
	assert.Zero(t, result.IncorrectAnswers)
	assert.Empty(t, result.Answers)
}

func TestGradeTestAttemptOrderIndependentTotals(t *testing.T) {
	questions := []domain.Question{
		singleChoice("q1", 2, 1, 4),
		multipleChoice("q2", 4, 4, 0, 2),
		multipleChoice("q3", 1, 3, 1),
	}
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedOptions: []int{1}, TimeTaken: 5},
		{QuestionID: "q2", SelectedOptions: []int{2}, TimeTaken: 7},
		{QuestionID: "q3", SelectedOptions: []int{0}, TimeTaken: 9},
	}
	reversed := []domain.SubmittedAnswer{answers[2], answers[1], answers[0]}

	a := GradeTestAttempt(questions, answers)
	b := GradeTestAttempt(questions, reversed)

	assert.Equal(t, a.TotalMarksEarned, b.TotalMarksEarned)
	assert.Equal(t, a.TotalMarks, b.TotalMarks)
	assert.Equal(t, a.CorrectAnswers, b.CorrectAnswers)
	assert.Equal(t, a.Percentage, b.Percentage)
	assert.Equal(t, "q3", b.Answers[0].QuestionID)
}

func TestGradeTestAttemptIsIdempotent(t *testing.T) {
	questions := []domain.Question{multipleChoice("q1", 3, 4, 0, 1, 3)}
	answers := []domain.SubmittedAnswer{{QuestionID: "q1", SelectedOptions: []int{3}, TimeTaken: 1.5}}

	assert.Equal(t, GradeTestAttempt(questions, answers), GradeTestAttempt(questions, answers))
}

func TestGradeTestAttemptDoesNotAliasInput(t *testing.T) {
	questions := []domain.Question{singleChoice("q1", 1, 0, 2)}
	selected := []int{0}
	result := GradeTestAttempt(questions, []domain.SubmittedAnswer{{QuestionID: "q1", SelectedOptions: selected}})

	selected[0] = 1
	assert.Equal(t, []int{0}, result.Answers[0].SelectedOptions)
}

func TestPassed(t *testing.T) {
	assert.True(t, Passed(domain.TestGradingResult{Percentage: 60}, 60))
	assert.False(t, Passed(domain.TestGradingResult{Percentage: 59.9}, 60))
}
