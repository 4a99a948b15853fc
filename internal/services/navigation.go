package services

import (
	"sort"

	"github.com/surveyforge/survey-service/internal/models"
)

// Navigator answers all positional questions about an attempt against a fully
// loaded survey structure. Ordering is always the composite key
// (section.position, question.position); never insertion order, never row id,
// because authors reorder sections and questions independently.
//
// Branch edges (next_question, skip_to_question) are followed one at a time
// per call and never transitively, so a branch graph with cycles is harmless.
type Navigator struct {
	survey          *models.Survey
	ordered         []*models.Question
	orderedSections []*models.Section
	sections        map[uint]*models.Section
	questions       map[uint]*models.Question
	orderIndex      map[uint]int
}

// NewNavigator builds the global question order for a survey. The survey must
// have its sections, questions and options loaded.
func NewNavigator(survey *models.Survey) *Navigator {
	n := &Navigator{
		survey:     survey,
		sections:   make(map[uint]*models.Section),
		questions:  make(map[uint]*models.Question),
		orderIndex: make(map[uint]int),
	}

	secs := make([]*models.Section, 0, len(survey.Sections))
	for i := range survey.Sections {
		secs = append(secs, &survey.Sections[i])
	}
	sort.SliceStable(secs, func(i, j int) bool { return secs[i].Position < secs[j].Position })

	n.orderedSections = secs
	for _, sec := range secs {
		n.sections[sec.ID] = sec
		qs := make([]*models.Question, 0, len(sec.Questions))
		for i := range sec.Questions {
			qs = append(qs, &sec.Questions[i])
		}
		sort.SliceStable(qs, func(i, j int) bool { return qs[i].Position < qs[j].Position })
		for _, q := range qs {
			if q.Section == nil {
				q.Section = sec
			}
			n.orderIndex[q.ID] = len(n.ordered)
			n.ordered = append(n.ordered, q)
			n.questions[q.ID] = q
		}
	}

	return n
}

func (n *Navigator) Survey() *models.Survey { return n.survey }

// Question returns the question by id, or nil when the survey has no such
// question.
func (n *Navigator) Question(id uint) *models.Question {
	return n.questions[id]
}

func (n *Navigator) Section(id uint) *models.Section {
	return n.sections[id]
}

// Sections returns every section of the survey in position order.
func (n *Navigator) Sections() []*models.Section {
	return n.orderedSections
}

// Questions returns every question of the survey in global order.
func (n *Navigator) Questions() []*models.Question {
	return n.ordered
}

// QuestionsInScope returns the survey questions, restricted to one section
// when sectionID is set, in global order.
func (n *Navigator) QuestionsInScope(sectionID *uint) []*models.Question {
	if sectionID == nil {
		return n.ordered
	}
	var result []*models.Question
	for _, q := range n.ordered {
		if q.SectionID == *sectionID {
			result = append(result, q)
		}
	}
	return result
}

// FirstQuestion returns the survey's overall first question, or nil for an
// empty survey.
func (n *Navigator) FirstQuestion() *models.Question {
	if len(n.ordered) == 0 {
		return nil
	}
	return n.ordered[0]
}

func (n *Navigator) FirstQuestionInScope(sectionID *uint) *models.Question {
	scoped := n.QuestionsInScope(sectionID)
	if len(scoped) == 0 {
		return nil
	}
	return scoped[0]
}

func (n *Navigator) LastQuestionInScope(sectionID *uint) *models.Question {
	scoped := n.QuestionsInScope(sectionID)
	if len(scoped) == 0 {
		return nil
	}
	return scoped[len(scoped)-1]
}

// IsFirstQuestion reports whether the attempt sits at the first question of
// its scope. A nil current question (past the end) also reports true.
func (n *Navigator) IsFirstQuestion(attempt *models.Attempt) bool {
	if attempt.CurrentQuestionID == nil {
		return true
	}
	first := n.FirstQuestionInScope(attempt.CurrentSectionID)
	return first != nil && first.ID == *attempt.CurrentQuestionID
}

// IsLastQuestion reports whether the attempt sits at the last question of its
// scope. A nil current question (past the end) also reports true.
func (n *Navigator) IsLastQuestion(attempt *models.Attempt) bool {
	if attempt.CurrentQuestionID == nil {
		return true
	}
	last := n.LastQuestionInScope(attempt.CurrentSectionID)
	return last != nil && last.ID == *attempt.CurrentQuestionID
}

// RemainingQuestions returns every survey question strictly after the current
// one in global order. Section scope deliberately does not constrain this
// query: discard-forward on backtracking must reach answers in later sections
// too. A nil current question has nothing remaining.
func (n *Navigator) RemainingQuestions(attempt *models.Attempt) []*models.Question {
	if attempt.CurrentQuestionID == nil {
		return nil
	}
	idx, ok := n.orderIndex[*attempt.CurrentQuestionID]
	if !ok {
		return nil
	}
	return n.ordered[idx+1:]
}

// PreviousAnsweredQuestions returns the questions before the current position
// (in scope, when a section scope is set) that have an answer in this
// attempt, ascending. With a nil current question every answered question in
// scope qualifies.
func (n *Navigator) PreviousAnsweredQuestions(attempt *models.Attempt, answers []*models.Answer) []*models.Question {
	answered := make(map[uint]bool, len(answers))
	for _, ans := range answers {
		answered[ans.QuestionID] = true
	}

	limit := len(n.ordered)
	if attempt.CurrentQuestionID != nil {
		if idx, ok := n.orderIndex[*attempt.CurrentQuestionID]; ok {
			limit = idx
		}
	}

	var result []*models.Question
	for _, q := range n.ordered[:limit] {
		if !answered[q.ID] {
			continue
		}
		if attempt.CurrentSectionID != nil && q.SectionID != *attempt.CurrentSectionID {
			continue
		}
		result = append(result, q)
	}
	return result
}

// ResolveTarget maps a branch target to the attempt's next current question
// id. An absent target means past the end. A target outside the active
// section scope also means past the end: branching never silently leaves the
// scoped section.
func (n *Navigator) ResolveTarget(attempt *models.Attempt, targetQuestionID *uint) *uint {
	if targetQuestionID == nil {
		return nil
	}
	target, ok := n.questions[*targetQuestionID]
	if !ok {
		return nil
	}
	if attempt.CurrentSectionID != nil && target.SectionID != *attempt.CurrentSectionID {
		return nil
	}
	id := target.ID
	return &id
}
