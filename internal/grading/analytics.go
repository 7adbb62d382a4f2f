package grading

import "lms-grading-service/internal/domain"

const (
	strengthQuickSolving  = "Quick problem solving"
	improvementTimeManage = "Time management"

	// Answers slower than this multiple of the mean count as hard.
	slowAnswerFactor = 1.5
)

var gradeThresholds = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
	{45, "D"},
}

// LetterGrade maps a percentage to a letter grade. Lower bounds are inclusive.
func LetterGrade(percentage float64) string {
	for _, t := range gradeThresholds {
		if percentage >= t.min {
			return t.grade
		}
	}
	return "F"
}

// GeneratePerformanceAnalytics derives timing, grade and outcome statistics
// from a grading result.
func GeneratePerformanceAnalytics(result domain.TestGradingResult) domain.PerformanceAnalytics {
	analytics := domain.PerformanceAnalytics{
		Grade:            LetterGrade(result.Percentage),
		Strengths:        []string{},
		ImprovementAreas: []string{},
	}

	answers := result.Answers
	if len(answers) == 0 {
		return analytics
	}

	var total float64
	fastest, slowest := answers[0], answers[0]
	for _, a := range answers {
		total += a.TimeTaken
		if a.TimeTaken < fastest.TimeTaken {
			fastest = a
		}
		if a.TimeTaken > slowest.TimeTaken {
			slowest = a
		}

		switch {
		case a.IsCorrect:
			analytics.Breakdown.Correct++
		case a.MarksEarned > 0:
			analytics.Breakdown.PartialCredit++
			analytics.Breakdown.Incorrect++
		default:
			analytics.Breakdown.Incorrect++
		}
	}

	mean := total / float64(len(answers))
	analytics.AverageTimePerQuestion = mean
	analytics.FastestQuestion = &domain.QuestionTiming{QuestionID: fastest.QuestionID, TimeTaken: fastest.TimeTaken}
	analytics.SlowestQuestion = &domain.QuestionTiming{QuestionID: slowest.QuestionID, TimeTaken: slowest.TimeTaken}
	analytics.AccuracyRate = float64(analytics.Breakdown.Correct) / float64(len(answers)) * 100

	easy, hard := 0, 0
	for _, a := range answers {
		if a.TimeTaken < mean {
			easy++
		}
		if a.TimeTaken > mean*slowAnswerFactor {
			hard++
		}
	}
	switch {
	case easy > hard:
		analytics.Strengths = append(analytics.Strengths, strengthQuickSolving)
	case hard > easy:
		analytics.ImprovementAreas = append(analytics.ImprovementAreas, improvementTimeManage)
	}

	return analytics
}
