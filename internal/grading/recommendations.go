package grading

import (
	"fmt"

	"lms-grading-service/internal/domain"
)

// LongAnswerSeconds is the per-answer time above which time management is recommended.
const LongAnswerSeconds = 300

// minTopicMisses is how many incorrect answers in one topic trigger a topic review.
const minTopicMisses = 2

// GenerateStudyRecommendations turns a grading result into study hints.
// Topics come from the questions the answers were graded against.
func GenerateStudyRecommendations(result domain.TestGradingResult, questions []domain.Question) []domain.Recommendation {
	recs := []domain.Recommendation{}
	answers := result.Answers
	if len(answers) == 0 {
		return recs
	}

	incorrect := 0
	for _, a := range answers {
		if !a.IsCorrect {
			incorrect++
		}
	}
	if float64(incorrect) > float64(len(answers))*0.5 {
		recs = append(recs, domain.Recommendation{
			Type:        domain.RecommendationOverallReview,
			Priority:    domain.PriorityHigh,
			Title:       "Review the course material",
			Description: fmt.Sprintf("You answered %d of %d questions incorrectly. Revisit the material before your next attempt.", incorrect, len(answers)),
		})
	}

	for _, a := range answers {
		if a.TimeTaken > LongAnswerSeconds {
			recs = append(recs, domain.Recommendation{
				Type:        domain.RecommendationTimeManagement,
				Priority:    domain.PriorityMedium,
				Title:       "Work on time management",
				Description: "Some questions took more than 5 minutes. Practice answering under time pressure.",
			})
			break
		}
	}

	topics := make(map[string]string, len(questions))
	for _, q := range questions {
		if q.Topic != "" {
			topics[q.ID] = q.Topic
		}
	}
	misses := make(map[string]int)
	var order []string
	for _, a := range answers {
		if a.IsCorrect {
			continue
		}
		topic, ok := topics[a.QuestionID]
		if !ok {
			continue
		}
		if misses[topic] == 0 {
			order = append(order, topic)
		}
		misses[topic]++
	}
	for _, topic := range order {
		if misses[topic] < minTopicMisses {
			continue
		}
		recs = append(recs, domain.Recommendation{
			Type:        domain.RecommendationTopicReview,
			Priority:    domain.PriorityHigh,
			Title:       "Review " + topic,
			Description: fmt.Sprintf("You missed %d questions on %s. Focus your revision on this topic.", misses[topic], topic),
			Topic:       topic,
		})
	}

	return recs
}
