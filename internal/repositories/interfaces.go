package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/surveyforge/survey-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories. A Repository obtained
// from TransactionRepository.Begin is bound to that transaction.
type Repository interface {
	Survey() SurveyRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository
}

// TransactionRepository is implemented by the root (non-transactional)
// repository. BeginSerializable exists for the attempt-creation workflow,
// where two racing creates must not both observe "no in-progress attempt".
type TransactionRepository interface {
	Repository
	Begin(ctx context.Context) (Repository, error)
	BeginSerializable(ctx context.Context) (Repository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// IsNotFoundError checks if the error is a record-not-found from the
// persistence layer.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	Status          *models.AttemptStatus `json:"status"`
	SurveyID        *uint                 `json:"survey_id"`
	ParticipantKind *string               `json:"participant_kind"`
	ParticipantID   *string               `json:"participant_id"`
	DateFrom        *time.Time            `json:"date_from"`
	DateTo          *time.Time            `json:"date_to"`
	Limit           int                   `json:"limit"`
	Offset          int                   `json:"offset"`
	SortBy          string                `json:"sort_by"`    // "created_at", "score"
	SortOrder       string                `json:"sort_order"` // "asc", "desc"
}
