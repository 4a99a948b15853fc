package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/survey-service/internal/models"
)

func questionIDs(questions []*models.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestNavigator_GlobalOrder(t *testing.T) {
	nav := testNavigator()

	assert.Equal(t, []uint{101, 102, 201, 202}, questionIDs(nav.Questions()))

	require.NotNil(t, nav.FirstQuestion())
	assert.Equal(t, uint(101), nav.FirstQuestion().ID)
}

func TestNavigator_OrderFollowsPositionsNotInsertion(t *testing.T) {
	survey := testSurvey()
	// Authors reorder: the second section now sorts first and its questions
	// swap places.
	survey.Sections[1].Position = 0
	survey.Sections[1].Questions[0].Position = 5

	nav := NewNavigator(survey)

	assert.Equal(t, []uint{202, 201, 101, 102}, questionIDs(nav.Questions()))
	assert.Equal(t, uint(202), nav.FirstQuestion().ID)
}

func TestNavigator_QuestionsInScope(t *testing.T) {
	nav := testNavigator()

	assert.Equal(t, []uint{201, 202}, questionIDs(nav.QuestionsInScope(uintPtr(20))))
	assert.Equal(t, []uint{101, 102, 201, 202}, questionIDs(nav.QuestionsInScope(nil)))
}

func TestNavigator_IsFirstAndLastQuestion(t *testing.T) {
	nav := testNavigator()

	attempt := &models.Attempt{CurrentQuestionID: uintPtr(101)}
	assert.True(t, nav.IsFirstQuestion(attempt))
	assert.False(t, nav.IsLastQuestion(attempt))

	attempt.CurrentQuestionID = uintPtr(202)
	assert.False(t, nav.IsFirstQuestion(attempt))
	assert.True(t, nav.IsLastQuestion(attempt))

	// Past the end counts as both first and last.
	attempt.CurrentQuestionID = nil
	assert.True(t, nav.IsFirstQuestion(attempt))
	assert.True(t, nav.IsLastQuestion(attempt))
}

func TestNavigator_IsFirstAndLastQuestion_SectionScope(t *testing.T) {
	nav := testNavigator()

	// 201 is in the middle globally but first within its section.
	attempt := &models.Attempt{
		CurrentQuestionID: uintPtr(201),
		CurrentSectionID:  uintPtr(20),
	}
	assert.True(t, nav.IsFirstQuestion(attempt))
	assert.False(t, nav.IsLastQuestion(attempt))

	attempt.CurrentQuestionID = uintPtr(202)
	assert.False(t, nav.IsFirstQuestion(attempt))
	assert.True(t, nav.IsLastQuestion(attempt))
}

func TestNavigator_RemainingQuestions(t *testing.T) {
	nav := testNavigator()

	attempt := &models.Attempt{CurrentQuestionID: uintPtr(102)}
	assert.Equal(t, []uint{201, 202}, questionIDs(nav.RemainingQuestions(attempt)))

	// Section scope must not shrink the remainder: discarding forward answers
	// after backtracking has to reach later sections too.
	attempt.CurrentSectionID = uintPtr(10)
	assert.Equal(t, []uint{201, 202}, questionIDs(nav.RemainingQuestions(attempt)))

	attempt = &models.Attempt{CurrentQuestionID: nil}
	assert.Empty(t, nav.RemainingQuestions(attempt))

	attempt = &models.Attempt{CurrentQuestionID: uintPtr(202)}
	assert.Empty(t, nav.RemainingQuestions(attempt))
}

func TestNavigator_PreviousAnsweredQuestions(t *testing.T) {
	nav := testNavigator()
	answers := []*models.Answer{
		{QuestionID: 101},
		{QuestionID: 201},
	}

	attempt := &models.Attempt{CurrentQuestionID: uintPtr(202)}
	assert.Equal(t, []uint{101, 201}, questionIDs(nav.PreviousAnsweredQuestions(attempt, answers)))

	// Scoped to the second section only its own answered questions count.
	attempt.CurrentSectionID = uintPtr(20)
	assert.Equal(t, []uint{201}, questionIDs(nav.PreviousAnsweredQuestions(attempt, answers)))

	// Past the end every answered question in scope qualifies.
	attempt = &models.Attempt{CurrentQuestionID: nil}
	assert.Equal(t, []uint{101, 201}, questionIDs(nav.PreviousAnsweredQuestions(attempt, answers)))
}

func TestNavigator_ResolveTarget(t *testing.T) {
	nav := testNavigator()
	attempt := &models.Attempt{}

	assert.Nil(t, nav.ResolveTarget(attempt, nil))
	assert.Nil(t, nav.ResolveTarget(attempt, uintPtr(999)))

	target := nav.ResolveTarget(attempt, uintPtr(201))
	require.NotNil(t, target)
	assert.Equal(t, uint(201), *target)
}

func TestNavigator_ResolveTarget_ScopeExit(t *testing.T) {
	nav := testNavigator()

	// A branch edge leaving the scoped section ends the scoped run instead of
	// silently switching sections.
	attempt := &models.Attempt{CurrentSectionID: uintPtr(10)}
	assert.Nil(t, nav.ResolveTarget(attempt, uintPtr(201)))

	target := nav.ResolveTarget(attempt, uintPtr(102))
	require.NotNil(t, target)
	assert.Equal(t, uint(102), *target)
}

func TestNavigator_BackwardTargetDoesNotLoop(t *testing.T) {
	nav := testNavigator()
	attempt := &models.Attempt{CurrentQuestionID: uintPtr(202)}

	// Branch edges are followed one at a time; a backward pointer just moves
	// the position backward once.
	target := nav.ResolveTarget(attempt, uintPtr(101))
	require.NotNil(t, target)
	assert.Equal(t, uint(101), *target)
}

func TestNavigator_EmptySurvey(t *testing.T) {
	nav := NewNavigator(&models.Survey{ID: 9, Identifier: "empty"})

	assert.Nil(t, nav.FirstQuestion())
	assert.Empty(t, nav.Questions())
	assert.True(t, nav.IsFirstQuestion(&models.Attempt{}))
	assert.True(t, nav.IsLastQuestion(&models.Attempt{}))
}
