package postgres

import (
	"context"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

func (s SurveyPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.WithContext(ctx).First(&survey, id).Error; err != nil {
		return nil, err
	}

	return &survey, nil
}

func (s SurveyPostgreSQL) GetByIDWithStructure(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("survey_sections.position ASC")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("survey_questions.position ASC")
		}).
		Preload("Sections.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("survey_options.position ASC")
		}).
		First(&survey, id).Error; err != nil {
		return nil, err
	}

	return &survey, nil
}

func (s SurveyPostgreSQL) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.WithContext(ctx).
		Where("identifier = ? AND active = ?", identifier, true).
		First(&survey).Error; err != nil {
		return nil, err
	}

	return &survey, nil
}

func (s SurveyPostgreSQL) GetSectionByID(ctx context.Context, id uint) (*models.Section, error) {
	var section models.Section
	if err := s.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, err
	}

	return &section, nil
}

func (s SurveyPostgreSQL) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("survey_options.position ASC")
		}).
		First(&question, id).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

func (s SurveyPostgreSQL) GetOptionByID(ctx context.Context, id uint) (*models.Option, error) {
	var option models.Option
	if err := s.db.WithContext(ctx).First(&option, id).Error; err != nil {
		return nil, err
	}

	return &option, nil
}

func (s SurveyPostgreSQL) GetOptionsByIDs(ctx context.Context, ids []uint) ([]*models.Option, error) {
	var options []*models.Option
	if err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("position ASC").
		Find(&options).Error; err != nil {
		return nil, err
	}

	return options, nil
}
