package repositories

import (
	"context"

	"github.com/surveyforge/survey-service/internal/models"
)

// SurveyRepository reads the survey content model. The attempt core never
// writes surveys; authoring is an external collaborator.
type SurveyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Survey, error)

	// GetByIDWithStructure loads the survey with sections, questions and
	// options preloaded in (position, position) order.
	GetByIDWithStructure(ctx context.Context, id uint) (*models.Survey, error)

	// GetActiveByIdentifier resolves the active survey for a public
	// identifier.
	GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Survey, error)

	GetSectionByID(ctx context.Context, id uint) (*models.Section, error)
	GetQuestionByID(ctx context.Context, id uint) (*models.Question, error)
	GetOptionByID(ctx context.Context, id uint) (*models.Option, error)
	GetOptionsByIDs(ctx context.Context, ids []uint) ([]*models.Option, error)
}
