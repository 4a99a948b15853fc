package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/surveyforge/survey-service/internal/models"
)

// weightFormulaEnv is the whole world a weight formula can see: the
// participant's numeric input and the option's static weight. Formulas are
// plain arithmetic expressions compiled by a sandboxed evaluator; stored text
// is never executed as code.
type weightFormulaEnv struct {
	N      float64 `expr:"n"`
	Weight float64 `expr:"weight"`
}

// EvaluateAnswerValue computes the numeric contribution of choosing an
// option. Options without a formula contribute their static weight; options
// with a formula contribute the formula applied to the numeric custom input.
func EvaluateAnswerValue(option *models.Option, optionNumber *float64) (float64, error) {
	if !option.HasFormula() {
		return option.Weight, nil
	}

	env := weightFormulaEnv{Weight: option.Weight}
	if optionNumber != nil {
		env.N = *optionNumber
	}

	program, err := expr.Compile(*option.WeightFormula, expr.Env(weightFormulaEnv{}), expr.AsFloat64())
	if err != nil {
		return 0, fmt.Errorf("invalid weight formula for option %d: %w", option.ID, err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("weight formula for option %d failed: %w", option.ID, err)
	}

	value, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("weight formula for option %d did not produce a number", option.ID)
	}
	return value, nil
}
