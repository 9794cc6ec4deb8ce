package postgres

import (
	"context"

	"github.com/neurostat/exercise-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db       *gorm.DB
	rule     repositories.RuleRepository
	example  repositories.ExampleRepository
	question repositories.QuestionRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		rule:     NewRulePostgreSQL(db),
		example:  NewExamplePostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
	}
}

func (r *Repository) Rule() repositories.RuleRepository         { return r.rule }
func (r *Repository) Example() repositories.ExampleRepository   { return r.example }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
