package repositories

import (
	"context"

	"github.com/surveyforge/survey-service/internal/models"
)

// AttemptRepository persists survey attempts.
type AttemptRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.Attempt, error)
	Update(ctx context.Context, attempt *models.Attempt) error

	// Status management
	UpdateStatus(ctx context.Context, id uint, status models.AttemptStatus) error

	// Participant-scoped queries
	GetInProgressByParticipant(ctx context.Context, participant models.Participant) ([]*models.Attempt, error)
	GetConfirmedByParticipantAndSurvey(ctx context.Context, participant models.Participant, surveyID uint) ([]*models.Attempt, error)
	CountByParticipantAndSurvey(ctx context.Context, participant models.Participant, surveyID uint) (int64, error)

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetConfirmedBySurvey(ctx context.Context, surveyID uint) ([]*models.Attempt, error)
}

// AnswerRepository persists the answer ledger of an attempt.
type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error

	// GetByAttempt returns the attempt's answers ordered by creation.
	GetByAttempt(ctx context.Context, attemptID uint) ([]*models.Answer, error)
	GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) ([]*models.Answer, error)

	// DeleteByAttemptAndQuestion enforces the at-most-one-answer-per-question
	// invariant (delete-before-insert).
	DeleteByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) error

	// DeleteByAttemptAndQuestions is the bulk discard used when the
	// participant backtracks past previously answered questions.
	DeleteByAttemptAndQuestions(ctx context.Context, attemptID uint, questionIDs []uint) error

	CountByAttempt(ctx context.Context, attemptID uint) (int64, error)
}
