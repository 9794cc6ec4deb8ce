package postgres

import (
	"context"

	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TextQuestion, error) {
	var question models.TextQuestion
	if err := q.db.WithContext(ctx).
		Preload("Options").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) GetRandomByKind(ctx context.Context, kind models.QuestionKind) (*models.TextQuestion, error) {
	var question models.TextQuestion
	if err := q.db.WithContext(ctx).
		Preload("Options").
		Where("kind = ? AND active = ?", kind, true).
		Order("RANDOM()").
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.TextQuestion, int64, error) {
	var questions []*models.TextQuestion
	var total int64

	query := q.db.WithContext(ctx).Model(&models.TextQuestion{})
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	if err := query.Preload("Options").Order("id").Find(&questions).Error; err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.TextQuestion) error {
	return q.db.WithContext(ctx).Create(question).Error
}
