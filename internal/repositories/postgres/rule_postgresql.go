package postgres

import (
	"context"

	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"gorm.io/gorm"
)

type RulePostgreSQL struct {
	db *gorm.DB
}

func NewRulePostgreSQL(db *gorm.DB) repositories.RuleRepository {
	return &RulePostgreSQL{db: db}
}

func (r RulePostgreSQL) GetByID(ctx context.Context, id string) (*models.Rule, error) {
	var rule models.Rule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r RulePostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Rule, error) {
	var rules []*models.Rule
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r RulePostgreSQL) List(ctx context.Context) ([]*models.Rule, error) {
	var rules []*models.Rule
	if err := r.db.WithContext(ctx).Order("id").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r RulePostgreSQL) Create(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r RulePostgreSQL) Update(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}
