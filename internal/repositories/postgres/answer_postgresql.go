package postgres

import (
	"context"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a AnswerPostgreSQL) Create(ctx context.Context, answer *models.Answer) error {
	return a.db.WithContext(ctx).Create(answer).Error
}

func (a AnswerPostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (a AnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (a AnswerPostgreSQL) DeleteByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) error {
	return a.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Delete(&models.Answer{}).Error
}

func (a AnswerPostgreSQL) DeleteByAttemptAndQuestions(ctx context.Context, attemptID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id IN ?", attemptID, questionIDs).
		Delete(&models.Answer{}).Error
}

func (a AnswerPostgreSQL) CountByAttempt(ctx context.Context, attemptID uint) (int64, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("attempt_id = ?", attemptID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
