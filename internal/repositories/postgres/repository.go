package postgres

import (
	"context"
	"database/sql"

	"github.com/surveyforge/survey-service/internal/repositories"
	"gorm.io/gorm"
)

// GormRepository is the root repository aggregate. Begin returns a new
// aggregate bound to a transaction; Commit/Rollback only make sense on such
// a bound aggregate.
type GormRepository struct {
	db      *gorm.DB
	survey  repositories.SurveyRepository
	attempt repositories.AttemptRepository
	answer  repositories.AnswerRepository
	inTx    bool
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return newGormRepository(db, false)
}

func newGormRepository(db *gorm.DB, inTx bool) *GormRepository {
	return &GormRepository{
		db:      db,
		survey:  NewSurveyPostgreSQL(db),
		attempt: NewAttemptPostgreSQL(db),
		answer:  NewAnswerPostgreSQL(db),
		inTx:    inTx,
	}
}

func (r *GormRepository) Survey() repositories.SurveyRepository   { return r.survey }
func (r *GormRepository) Attempt() repositories.AttemptRepository { return r.attempt }
func (r *GormRepository) Answer() repositories.AnswerRepository   { return r.answer }

func (r *GormRepository) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return newGormRepository(tx, true), nil
}

func (r *GormRepository) BeginSerializable(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return nil, tx.Error
	}
	return newGormRepository(tx, true), nil
}

func (r *GormRepository) Commit(ctx context.Context) error {
	if !r.inTx {
		return gorm.ErrInvalidTransaction
	}
	return r.db.WithContext(ctx).Commit().Error
}

func (r *GormRepository) Rollback(ctx context.Context) error {
	if !r.inTx {
		return gorm.ErrInvalidTransaction
	}
	return r.db.WithContext(ctx).Rollback().Error
}
