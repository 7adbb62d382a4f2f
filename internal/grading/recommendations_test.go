package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-grading-service/internal/domain"
)

func TestGenerateStudyRecommendations(t *testing.T) {
	questions := []domain.Question{
		{ID: "q1", Topic: "algebra"},
		{ID: "q2", Topic: "algebra"},
		{ID: "q3", Topic: "geometry"},
		{ID: "q4", Topic: "geometry"},
		{ID: "q5"},
	}
	result := domain.TestGradingResult{
		Answers: []domain.GradedAnswer{
			{QuestionID: "q1", TimeTaken: 20},
			{QuestionID: "q2", TimeTaken: 301},
			{QuestionID: "q3", TimeTaken: 20, IsCorrect: true},
			{QuestionID: "q4", TimeTaken: 20},
			{QuestionID: "q5", TimeTaken: 20},
		},
	}

	recs := GenerateStudyRecommendations(result, questions)

	require.Len(t, recs, 3)
	assert.Equal(t, domain.RecommendationOverallReview, recs[0].Type)
	assert.Equal(t, domain.PriorityHigh, recs[0].Priority)
	assert.Equal(t, domain.RecommendationTimeManagement, recs[1].Type)
	assert.Equal(t, domain.PriorityMedium, recs[1].Priority)
	assert.Equal(t, domain.RecommendationTopicReview, recs[2].Type)
	assert.Equal(t, "algebra", recs[2].Topic)
	assert.Equal(t, domain.PriorityHigh, recs[2].Priority)
}

func TestGenerateStudyRecommendationsHalfIncorrectIsNotOverall(t *testing.T) {
	result := domain.TestGradingResult{
		Answers: []domain.GradedAnswer{
			{QuestionID: "q1", IsCorrect: true, TimeTaken: 300},
			{QuestionID: "q2", TimeTaken: 10},
		},
	}

	recs := GenerateStudyRecommendations(result, nil)

	assert.Empty(t, recs)
}

func TestGenerateStudyRecommendationsOneTopicPerGroup(t *testing.T) {
	questions := []domain.Question{
		{ID: "q1", Topic: "loops"},
		{ID: "q2", Topic: "loops"},
		{ID: "q3", Topic: "loops"},
		{ID: "q4", Topic: "maps"},
		{ID: "q5", Topic: "maps"},
		{ID: "q6", Topic: "maps"},
	}
	result := domain.TestGradingResult{
		Answers: []domain.GradedAnswer{
			{QuestionID: "q4"},
			{QuestionID: "q1"},
			{QuestionID: "q5"},
			{QuestionID: "q2"},
			{QuestionID: "q3", IsCorrect: true},
			{QuestionID: "q6", IsCorrect: true},
		},
	}

	recs := GenerateStudyRecommendations(result, questions)

	require.Len(t, recs, 3)
	assert.Equal(t, domain.RecommendationOverallReview, recs[0].Type)
	assert.Equal(t, "maps", recs[1].Topic)
	assert.Equal(t, "loops", recs[2].Topic)
}

func TestGenerateStudyRecommendationsEmpty(t *testing.T) {
	recs := GenerateStudyRecommendations(domain.TestGradingResult{}, nil)

	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
