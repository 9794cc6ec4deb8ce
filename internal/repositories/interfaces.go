package repositories

import (
	"context"

	"github.com/neurostat/exercise-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ExampleFilters struct {
	RuleIDs    []string              `json:"rule_ids"`
	ActiveOnly bool                  `json:"active_only"`
	Source     *models.ExampleSource `json:"source"`
	CreatedBy  *string               `json:"created_by"`
	HasError   *bool                 `json:"has_error"`
	ErrorType  *string               `json:"error_type"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	SortBy     string                `json:"sort_by"`    // "created_at", "rule_id"
	SortOrder  string                `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Kind       *models.QuestionKind `json:"kind"`
	ActiveOnly bool                 `json:"active_only"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type RuleRepository interface {
	GetByID(ctx context.Context, id string) (*models.Rule, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Rule, error)
	List(ctx context.Context) ([]*models.Rule, error)
	Create(ctx context.Context, rule *models.Rule) error
	Update(ctx context.Context, rule *models.Rule) error
}

type ExampleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Example, error)
	List(ctx context.Context, filters ExampleFilters) ([]*models.Example, int64, error)
	GetForDrill(ctx context.Context, ruleIDs []string) ([]*models.Example, error)
	GetRandomQuizExample(ctx context.Context) (*models.Example, error)
	Create(ctx context.Context, example *models.Example) error
	CreateBatch(ctx context.Context, examples []*models.Example) error
	Update(ctx context.Context, example *models.Example) error
	Delete(ctx context.Context, id uint) error

	// ReplaceUserBatch swaps a learner's personal items for a rule in one
	// transaction.
	ReplaceUserBatch(ctx context.Context, userID, ruleID string, examples []*models.Example) error
}

type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.TextQuestion, error)
	GetRandomByKind(ctx context.Context, kind models.QuestionKind) (*models.TextQuestion, error)
	List(ctx context.Context, filters QuestionFilters) ([]*models.TextQuestion, int64, error)
	Create(ctx context.Context, question *models.TextQuestion) error
}

// Repository aggregates the data access layer behind a single handle.
type Repository interface {
	Rule() RuleRepository
	Example() ExampleRepository
	Question() QuestionRepository

	Ping(ctx context.Context) error
	Close() error
}
