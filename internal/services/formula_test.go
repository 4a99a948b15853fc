package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/survey-service/internal/models"
)

func TestEvaluateAnswerValue_StaticWeight(t *testing.T) {
	option := &models.Option{ID: 1, Weight: 2.5}

	value, err := EvaluateAnswerValue(option, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, value, 1e-9)
}

func TestEvaluateAnswerValue_FormulaWithInput(t *testing.T) {
	option := &models.Option{
		ID:            2,
		Type:          models.OptionNumber,
		WeightFormula: strPtr("n * 2"),
	}

	value, err := EvaluateAnswerValue(option, floatPtr(5))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, value, 1e-9)
}

func TestEvaluateAnswerValue_FormulaSeesWeight(t *testing.T) {
	option := &models.Option{
		ID:            3,
		Weight:        4,
		WeightFormula: strPtr("weight + n / 2"),
	}

	value, err := EvaluateAnswerValue(option, floatPtr(6))
	require.NoError(t, err)
	assert.InDelta(t, 7.0, value, 1e-9)
}

func TestEvaluateAnswerValue_MissingInputDefaultsToZero(t *testing.T) {
	option := &models.Option{
		ID:            4,
		WeightFormula: strPtr("n * 3"),
	}

	value, err := EvaluateAnswerValue(option, nil)
	require.NoError(t, err)
	assert.Zero(t, value)
}

func TestEvaluateAnswerValue_InvalidFormula(t *testing.T) {
	option := &models.Option{
		ID:            5,
		WeightFormula: strPtr("n **"),
	}

	_, err := EvaluateAnswerValue(option, floatPtr(1))
	assert.Error(t, err)
}

func TestEvaluateAnswerValue_UnknownIdentifierRejected(t *testing.T) {
	// Formulas only see the participant input and the option weight; stored
	// text can never reach anything else.
	option := &models.Option{
		ID:            6,
		WeightFormula: strPtr("db.drop()"),
	}

	_, err := EvaluateAnswerValue(option, floatPtr(1))
	assert.Error(t, err)
}
