package tutor

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/ib-tutor/backend/internal/models"
)

const fallbackFeedback = "Unable to evaluate at this time."

// DefaultEvaluation is the documented degraded result: not correct, zero
// score, generic feedback, no suggestions.
func DefaultEvaluation() models.Evaluation {
	return models.Evaluation{
		IsCorrect:   false,
		Score:       0,
		Feedback:    fallbackFeedback,
		Suggestions: []string{},
	}
}

// ParseEvaluation decodes raw backend text into an Evaluation. It is total:
// it never fails, and every field the backend omitted, mangled, or pushed
// out of range is replaced by its default, field by field.
func ParseEvaluation(raw string) models.Evaluation {
	ev := DefaultEvaluation()

	var decoded struct {
		IsCorrect   *bool     `json:"isCorrect"`
		Score       *float64  `json:"score"`
		Feedback    *string   `json:"feedback"`
		Suggestions *[]string `json:"suggestions"`
	}

	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &decoded); err != nil {
		return ev
	}

	if decoded.IsCorrect != nil {
		ev.IsCorrect = *decoded.IsCorrect
	}
	if decoded.Score != nil {
		score := int(math.Round(*decoded.Score))
		if score >= 0 && score <= 100 {
			ev.Score = score
		}
	}
	if decoded.Feedback != nil && *decoded.Feedback != "" {
		ev.Feedback = *decoded.Feedback
	}
	if decoded.Suggestions != nil && *decoded.Suggestions != nil {
		ev.Suggestions = *decoded.Suggestions
	}

	return ev
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
