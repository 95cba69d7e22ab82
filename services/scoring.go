package services

import (
	"math"
	"strconv"

	"github.com/aulavivo/lms-api/model"
)

// Round2 rounds to two decimal places, the precision stored for both
// submission scores and enrollment progress
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// coerceChoiceID reads a submitted answer value as a choice id. Payloads
// arrive as JSON, so numbers decode as float64, but clients also send ids
// as strings. Anything else, and any falsy value, is not a selection.
func coerceChoiceID(v interface{}) (uint, bool) {
	switch val := v.(type) {
	case float64:
		if val <= 0 || val != math.Trunc(val) {
			return 0, false
		}
		return uint(val), true
	case int:
		if val <= 0 {
			return 0, false
		}
		return uint(val), true
	case string:
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}

// ScoreAnswers grades a submission against the quiz's questions. Answers are
// keyed by question id; a question with no answer, a falsy answer, or an
// answer naming a choice outside the question counts as wrong. Keys naming
// unknown questions are ignored. Returns the 0..100 score rounded to two
// decimals.
func ScoreAnswers(questions []model.Question, answers map[string]interface{}) float64 {
	if len(questions) == 0 {
		return 0
	}

	correct := 0
	for _, q := range questions {
		raw, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]
		if !ok {
			continue
		}
		choiceID, ok := coerceChoiceID(raw)
		if !ok {
			continue
		}
		for _, c := range q.Choices {
			if c.ID == choiceID {
				if c.Correcta {
					correct++
				}
				break
			}
		}
	}

	return Round2(100 * float64(correct) / float64(len(questions)))
}
