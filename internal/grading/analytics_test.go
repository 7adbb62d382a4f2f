package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-grading-service/internal/domain"
)

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		pct   float64
		grade string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.999, "A"},
		{85, "A"},
		{80, "A-"},
		{79.99, "B+"},
		{75, "B+"},
		{70, "B"},
		{65, "B-"},
		{60, "C+"},
		{55, "C"},
		{50, "C-"},
		{45, "D"},
		{44.99, "F"},
		{0, "F"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.grade, LetterGrade(tc.pct), "percentage %v", tc.pct)
	}
}

func TestGeneratePerformanceAnalytics(t *testing.T) {
	result := domain.TestGradingResult{
		Percentage:     62.5,
		CorrectAnswers: 2,
		Answers: []domain.GradedAnswer{
			{QuestionID: "q1", TimeTaken: 10, IsCorrect: true, MarksEarned: 2},
			{QuestionID: "q2", TimeTaken: 10, IsCorrect: true, MarksEarned: 1},
			{QuestionID: "q3", TimeTaken: 60, MarksEarned: 1.5},
			{QuestionID: "q4", TimeTaken: 0},
		},
	}

	a := GeneratePerformanceAnalytics(result)

	assert.Equal(t, 20.0, a.AverageTimePerQuestion)
	require.NotNil(t, a.FastestQuestion)
	assert.Equal(t, "q4", a.FastestQuestion.QuestionID)
	require.NotNil(t, a.SlowestQuestion)
	assert.Equal(t, "q3", a.SlowestQuestion.QuestionID)
	assert.Equal(t, "C+", a.Grade)
	assert.Equal(t, 50.0, a.AccuracyRate)
	assert.Equal(t, domain.AnswerBreakdown{Correct: 2, Incorrect: 2, PartialCredit: 1}, a.Breakdown)
	// three answers under the mean, one above 1.5x the mean
	assert.Equal(t, []string{"Quick problem solving"}, a.Strengths)
	assert.Empty(t, a.ImprovementAreas)
}

func TestGeneratePerformanceAnalyticsTiesKeepFirst(t *testing.T) {
	result := domain.TestGradingResult{
		Answers: []domain.GradedAnswer{
			{QuestionID: "a", TimeTaken: 5},
			{QuestionID: "b", TimeTaken: 5},
		},
	}

	a := GeneratePerformanceAnalytics(result)

	assert.Equal(t, "a", a.FastestQuestion.QuestionID)
	assert.Equal(t, "a", a.SlowestQuestion.QuestionID)
	assert.Empty(t, a.Strengths)
	assert.Empty(t, a.ImprovementAreas)
}

func TestGeneratePerformanceAnalyticsSpeedHeuristic(t *testing.T) {
	tests := []struct {
		name         string
		times        []float64
		strengths    []string
		improvements []string
	}{
		// mean 6: two answers under it, three above 9
		{name: "slow answers dominate", times: []float64{0, 0, 10, 10, 10}, strengths: []string{}, improvements: []string{"Time management"}},
		// mean 52.5: two answers under it, two above 78.75
		{name: "balanced", times: []float64{0, 100, 100, 10}, strengths: []string{}, improvements: []string{}},
		// mean 25: three answers under it, one above 37.5
		{name: "fast answers dominate", times: []float64{10, 10, 80, 0}, strengths: []string{"Quick problem solving"}, improvements: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var result domain.TestGradingResult
			for i, secs := range tc.times {
				result.Answers = append(result.Answers, domain.GradedAnswer{QuestionID: string(rune('a' + i)), TimeTaken: secs})
			}

			a := GeneratePerformanceAnalytics(result)

			assert.Equal(t, tc.strengths, a.Strengths)
			assert.Equal(t, tc.improvements, a.ImprovementAreas)
		})
	}
}

func TestGeneratePerformanceAnalyticsEmpty(t *testing.T) {
	a := GeneratePerformanceAnalytics(domain.TestGradingResult{})

	assert.Zero(t, a.AverageTimePerQuestion)
	assert.Zero(t, a.AccuracyRate)
	assert.Nil(t, a.FastestQuestion)
	assert.Nil(t, a.SlowestQuestion)
	assert.Equal(t, "F", a.Grade)
}
