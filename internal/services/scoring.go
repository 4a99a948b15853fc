package services

import (
	"github.com/surveyforge/survey-service/internal/models"
)

// SectionScore is one entry of the per-section score breakdown.
type SectionScore struct {
	Identifier string  `json:"identifier"`
	Score      float64 `json:"score"`
}

// ScoreBySection groups the attempt's answers by their question's section and
// sums answer values. Sections appear in the order they are first encountered
// among the answers; a section with no answers does not appear at all.
func ScoreBySection(nav *Navigator, answers []*models.Answer) []SectionScore {
	var order []string
	sums := make(map[string]float64)

	for _, ans := range answers {
		q := nav.Question(ans.QuestionID)
		if q == nil {
			continue
		}
		sec := nav.Section(q.SectionID)
		if sec == nil {
			continue
		}
		if _, seen := sums[sec.Identifier]; !seen {
			order = append(order, sec.Identifier)
		}
		sums[sec.Identifier] += ans.Value
	}

	result := make([]SectionScore, 0, len(order))
	for _, id := range order {
		result = append(result, SectionScore{Identifier: id, Score: sums[id]})
	}
	return result
}

// ComputeScore computes the attempt's total score.
//
// Without multi-select questions the total is simply the sum of all answer
// values. With multi-select questions each one contributes partial credit:
// the answered fraction of the correct options' weight, with one exact-full
// answer penalized by 1/len(options) per extra incorrect selection. A
// multi-select question with zero correct selections stops all further
// multi-select processing for the attempt.
func ComputeScore(nav *Navigator, answers []*models.Answer) float64 {
	if !nav.Survey().HasMultiSelectQuestions() {
		var total float64
		for _, ans := range answers {
			total += ans.Value
		}
		return total
	}

	byQuestion := make(map[uint][]*models.Answer)
	for _, ans := range answers {
		byQuestion[ans.QuestionID] = append(byQuestion[ans.QuestionID], ans)
	}

	var total float64
	for _, ans := range answers {
		q := nav.Question(ans.QuestionID)
		if q == nil || q.IsMultiSelect() {
			continue
		}
		total += ans.Value
	}

	for _, q := range nav.Questions() {
		if !q.IsMultiSelect() {
			continue
		}

		var correctSum float64
		var incorrectCount int
		for _, ans := range byQuestion[q.ID] {
			if ans.Correct {
				correctSum += ans.Value
			} else {
				incorrectCount++
			}
		}

		hasCorrect := false
		for _, ans := range byQuestion[q.ID] {
			if ans.Correct {
				hasCorrect = true
				break
			}
		}
		if !hasCorrect {
			// No correct selections on a multi-select question ends the
			// partial-credit pass for the whole attempt.
			break
		}

		var correctOptionsWeight float64
		for _, o := range q.Options {
			if o.Correct {
				correctOptionsWeight += o.Weight
			}
		}
		if correctOptionsWeight == 0 {
			// Zero weight on every correct option contributes nothing but
			// does not end the pass.
			continue
		}

		correctPercentage := correctSum / correctOptionsWeight
		total += correctPercentage

		if correctPercentage == 1 && len(q.Options) > 0 {
			penaltyUnit := 1 / float64(len(q.Options))
			total -= penaltyUnit * float64(incorrectCount)
		}
	}

	return total
}
