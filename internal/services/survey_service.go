package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surveyforge/survey-service/internal/cache"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

const surveyStructureTTL = 10 * time.Minute

// SurveyService is the read side of the content model: the attempt core only
// ever queries survey structure, never writes it.
type SurveyService interface {
	FindActiveByIdentifier(ctx context.Context, identifier string) (*models.Survey, error)

	// GetStructure returns the survey with its ordered sections, questions
	// and options, cached between content changes.
	GetStructure(ctx context.Context, surveyID uint) (*models.Survey, error)

	// InvalidateStructure drops the cached structure after the authoring
	// side reports a content change.
	InvalidateStructure(ctx context.Context, surveyID uint) error
}

type surveyService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger utils.Logger
}

func NewSurveyService(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger) SurveyService {
	return &surveyService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *surveyService) FindActiveByIdentifier(ctx context.Context, identifier string) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetActiveByIdentifier(ctx, identifier)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to resolve survey %q: %w", identifier, err)
	}
	return survey, nil
}

func (s *surveyService) GetStructure(ctx context.Context, surveyID uint) (*models.Survey, error) {
	key := structureCacheKey(surveyID)

	if s.cache != nil {
		var cached models.Survey
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("survey structure cache read failed", "survey_id", surveyID, "error", err)
		}
	}

	survey, err := s.repo.Survey().GetByIDWithStructure(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to load survey structure %d: %w", surveyID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, survey, surveyStructureTTL); err != nil {
			s.logger.Warn("survey structure cache write failed", "survey_id", surveyID, "error", err)
		}
	}

	return survey, nil
}

func (s *surveyService) InvalidateStructure(ctx context.Context, surveyID uint) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, structureCacheKey(surveyID))
}

func structureCacheKey(surveyID uint) string {
	return fmt.Sprintf("survey:structure:%d", surveyID)
}
