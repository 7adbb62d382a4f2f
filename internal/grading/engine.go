// Package grading scores test attempts. Every function is pure: no I/O beyond
// diagnostic logging and no shared state, so attempts can be graded concurrently.
package grading

import (
	"log"

	"lms-grading-service/internal/domain"
)

// QuestionScore is the outcome of grading one question.
type QuestionScore struct {
	IsCorrect   bool
	MarksEarned float64
}

// GradeQuestion applies the question-type rule to a selection.
//
// Single-choice (and true-false) is all or nothing. Multiple-choice awards full
// marks for the exact correct set, proportional credit for a non-empty subset
// of the correct options, and nothing once any wrong option is picked.
// Questions without a correct option never award marks.
func GradeQuestion(q domain.Question, selected []int) QuestionScore {
	correct := q.CorrectOptions()
	if len(correct) == 0 {
		return QuestionScore{}
	}

	switch q.Type {
	case domain.SingleChoice, domain.TrueFalse:
		if len(selected) == 1 && contains(correct, selected[0]) {
			return QuestionScore{IsCorrect: true, MarksEarned: q.Marks}
		}
		return QuestionScore{}
	case domain.MultipleChoice:
		return gradeMultipleChoice(q, correct, selected)
	default:
		return QuestionScore{}
	}
}

func gradeMultipleChoice(q domain.Question, correct, selected []int) QuestionScore {
	correctSet := toSet(correct)
	selectedSet := toSet(selected)

	hits, misses := 0, 0
	for idx := range selectedSet {
		if _, ok := correctSet[idx]; ok {
			hits++
		} else {
			misses++
		}
	}

	if misses == 0 && hits == len(correctSet) {
		return QuestionScore{IsCorrect: true, MarksEarned: q.Marks}
	}
	if hits > 0 && misses == 0 {
		return QuestionScore{MarksEarned: float64(hits) / float64(len(correctSet)) * q.Marks}
	}
	return QuestionScore{}
}

// GradeTestAttempt grades validated answers against a question set.
// Answers referencing unknown questions are skipped. The graded list keeps
// the order of answers.
func GradeTestAttempt(questions []domain.Question, answers []domain.SubmittedAnswer) domain.TestGradingResult {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := domain.TestGradingResult{
		Answers: make([]domain.GradedAnswer, 0, len(answers)),
	}
	for _, answer := range answers {
		q, ok := byID[answer.QuestionID]
		if !ok {
			log.Printf("[grading] skipping answer for unknown question %q", answer.QuestionID)
			continue
		}

		score := GradeQuestion(q, answer.SelectedOptions)
		result.Answers = append(result.Answers, domain.GradedAnswer{
			QuestionID:      answer.QuestionID,
			SelectedOptions: append([]int(nil), answer.SelectedOptions...),
			TimeTaken:       answer.TimeTaken,
			IsCorrect:       score.IsCorrect,
			MarksEarned:     score.MarksEarned,
			CorrectOptions:  q.CorrectOptions(),
			Explanation:     q.Explanation,
		})

		result.TotalMarksEarned += score.MarksEarned
		result.TotalMarks += q.Marks
		result.TotalTimeTaken += answer.TimeTaken
		if score.IsCorrect {
			result.CorrectAnswers++
		}
	}

	if result.TotalMarks > 0 {
		result.Percentage = result.TotalMarksEarned / result.TotalMarks * 100
	}
	result.IncorrectAnswers = len(result.Answers) - result.CorrectAnswers
	return result
}

// Passed reports whether a result meets the pass threshold (inclusive).
func Passed(result domain.TestGradingResult, passingPercentage float64) bool {
	return result.Percentage >= passingPercentage
}

func toSet(values []int) map[int]struct{} {
	m := make(map[int]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
