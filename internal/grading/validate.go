package grading

import (
	"encoding/json"
	"math"

	"lms-grading-service/internal/domain"
)

// Validation messages returned to clients.
const (
	MsgQuestionIDRequired  = "Question ID is required"
	MsgSelectedNotArray    = "Selected options must be an array"
	MsgSelectedNotIndices  = "Selected options must be non-negative numbers"
	MsgTimeTakenNotNumeric = "Time taken must be a non-negative number"
)

// ValidationResult is the outcome of ValidateAnswer. Answer is only set when Valid.
type ValidationResult struct {
	Valid  bool
	Error  string
	Answer domain.SubmittedAnswer
}

func invalid(msg string) ValidationResult {
	return ValidationResult{Error: msg}
}

// ValidateAnswer checks a raw answer and converts it into a typed submission.
// Checks short-circuit on the first failure.
func ValidateAnswer(raw domain.RawAnswer) ValidationResult {
	questionID := raw.QuestionID
	if questionID == "" {
		return invalid(MsgQuestionIDRequired)
	}

	items, ok := toList(raw.SelectedOptions)
	if !ok {
		return invalid(MsgSelectedNotArray)
	}
	selected := make([]int, 0, len(items))
	for _, item := range items {
		idx, ok := toIndex(item)
		if !ok {
			return invalid(MsgSelectedNotIndices)
		}
		selected = append(selected, idx)
	}

	timeTaken, ok := toNumber(raw.TimeTaken)
	if !ok || timeTaken < 0 {
		return invalid(MsgTimeTakenNotNumeric)
	}

	return ValidationResult{
		Valid: true,
		Answer: domain.SubmittedAnswer{
			QuestionID:      questionID,
			SelectedOptions: selected,
			TimeTaken:       timeTaken,
		},
	}
}

func toList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []int:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

func toIndex(v any) (int, bool) {
	n, ok := toNumber(v)
	if !ok || n < 0 || n != math.Trunc(n) {
		return 0, false
	}
	// Indices past any option list only ever count as wrong picks.
	if n >= float64(math.MaxInt) {
		return math.MaxInt, true
	}
	return int(n), true
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
