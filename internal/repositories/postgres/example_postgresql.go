package postgres

import (
	"context"

	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamplePostgreSQL struct {
	db *gorm.DB
}

func NewExamplePostgreSQL(db *gorm.DB) repositories.ExampleRepository {
	return &ExamplePostgreSQL{db: db}
}

func (e ExamplePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Example, error) {
	var example models.Example
	if err := e.db.WithContext(ctx).First(&example, id).Error; err != nil {
		return nil, err
	}
	return &example, nil
}

func (e ExamplePostgreSQL) List(ctx context.Context, filters repositories.ExampleFilters) ([]*models.Example, int64, error) {
	var examples []*models.Example
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Example{})
	query = e.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := sortBy
	if filters.SortOrder == "desc" {
		order += " DESC"
	}
	if err := query.Order(order).Find(&examples).Error; err != nil {
		return nil, 0, err
	}
	return examples, total, nil
}

// GetForDrill loads every active item of the given rules. Filtering by
// grade and ownership happens in memory, the pools are small.
func (e ExamplePostgreSQL) GetForDrill(ctx context.Context, ruleIDs []string) ([]*models.Example, error) {
	var examples []*models.Example
	if err := e.db.WithContext(ctx).
		Where("rule_id IN ? AND active = ?", ruleIDs, true).
		Find(&examples).Error; err != nil {
		return nil, err
	}
	return examples, nil
}

func (e ExamplePostgreSQL) GetRandomQuizExample(ctx context.Context) (*models.Example, error) {
	var example models.Example
	if err := e.db.WithContext(ctx).
		Where("active = ? AND incorrect_variant <> ''", true).
		Order("RANDOM()").
		First(&example).Error; err != nil {
		return nil, err
	}
	return &example, nil
}

func (e ExamplePostgreSQL) Create(ctx context.Context, example *models.Example) error {
	return e.db.WithContext(ctx).Create(example).Error
}

func (e ExamplePostgreSQL) CreateBatch(ctx context.Context, examples []*models.Example) error {
	if len(examples) == 0 {
		return nil
	}
	return e.db.WithContext(ctx).CreateInBatches(examples, 100).Error
}

func (e ExamplePostgreSQL) Update(ctx context.Context, example *models.Example) error {
	return e.db.WithContext(ctx).Save(example).Error
}

func (e ExamplePostgreSQL) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Delete(&models.Example{}, id).Error
}

func (e ExamplePostgreSQL) ReplaceUserBatch(ctx context.Context, userID, ruleID string, examples []*models.Example) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("created_by = ? AND rule_id = ? AND source = ?", userID, ruleID, models.SourceUser).
			Delete(&models.Example{}).Error; err != nil {
			return err
		}
		for _, ex := range examples {
			ex.RuleID = ruleID
			ex.Source = models.SourceUser
			ex.CreatedBy = userID
		}
		if len(examples) == 0 {
			return nil
		}
		return tx.CreateInBatches(examples, 100).Error
	})
}

func (e ExamplePostgreSQL) applyFilters(query *gorm.DB, filters repositories.ExampleFilters) *gorm.DB {
	if len(filters.RuleIDs) > 0 {
		query = query.Where("rule_id IN ?", filters.RuleIDs)
	}
	if filters.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.HasError != nil {
		query = query.Where("has_error = ?", *filters.HasError)
	}
	if filters.ErrorType != nil {
		query = query.Where("error_type = ?", *filters.ErrorType)
	}
	return query
}
