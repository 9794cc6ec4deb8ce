package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/neurostat/exercise-service/internal/events"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"github.com/neurostat/exercise-service/internal/selector"
	"github.com/neurostat/exercise-service/internal/session"
	"github.com/neurostat/exercise-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockRuleRepository is a mock implementation of RuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id string) (*models.Rule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Rule, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) List(ctx context.Context) ([]*models.Rule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

// MockExampleRepository is a mock implementation of ExampleRepository
type MockExampleRepository struct {
	mock.Mock
}

func (m *MockExampleRepository) GetByID(ctx context.Context, id uint) (*models.Example, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Example), args.Error(1)
}

func (m *MockExampleRepository) List(ctx context.Context, filters repositories.ExampleFilters) ([]*models.Example, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Example), args.Get(1).(int64), args.Error(2)
}

func (m *MockExampleRepository) GetForDrill(ctx context.Context, ruleIDs []string) ([]*models.Example, error) {
	args := m.Called(ctx, ruleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Example), args.Error(1)
}

func (m *MockExampleRepository) GetRandomQuizExample(ctx context.Context) (*models.Example, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Example), args.Error(1)
}

func (m *MockExampleRepository) Create(ctx context.Context, example *models.Example) error {
	args := m.Called(ctx, example)
	return args.Error(0)
}

func (m *MockExampleRepository) CreateBatch(ctx context.Context, examples []*models.Example) error {
	args := m.Called(ctx, examples)
	return args.Error(0)
}

func (m *MockExampleRepository) Update(ctx context.Context, example *models.Example) error {
	args := m.Called(ctx, example)
	return args.Error(0)
}

func (m *MockExampleRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExampleRepository) ReplaceUserBatch(ctx context.Context, userID, ruleID string, examples []*models.Example) error {
	args := m.Called(ctx, userID, ruleID, examples)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.TextQuestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TextQuestion), args.Error(1)
}

func (m *MockQuestionRepository) GetRandomByKind(ctx context.Context, kind models.QuestionKind) (*models.TextQuestion, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TextQuestion), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.TextQuestion, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.TextQuestion), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.TextQuestion) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

// MockRepository aggregates the repository mocks behind the Repository interface
type MockRepository struct {
	RuleRepo     *MockRuleRepository
	ExampleRepo  *MockExampleRepository
	QuestionRepo *MockQuestionRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		RuleRepo:     &MockRuleRepository{},
		ExampleRepo:  &MockExampleRepository{},
		QuestionRepo: &MockQuestionRepository{},
	}
}

func (m *MockRepository) Rule() repositories.RuleRepository         { return m.RuleRepo }
func (m *MockRepository) Example() repositories.ExampleRepository   { return m.ExampleRepo }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.QuestionRepo }
func (m *MockRepository) Ping(ctx context.Context) error            { return nil }
func (m *MockRepository) Close() error                              { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExerciseService(repo *MockRepository, store session.Store, pub events.EventPublisher) ExerciseService {
	return NewExerciseService(repo, store, pub, nil, testLogger(), validator.New(), selector.DefaultConfig())
}

func drillExample(id uint, ruleID, text, masked string) *models.Example {
	return &models.Example{
		ID:         id,
		RuleID:     ruleID,
		Text:       text,
		MaskedText: masked,
		Active:     true,
		Source:     models.SourceSystem,
	}
}

func TestExerciseService_Generate_FillBlank(t *testing.T) {
	repo := NewMockRepository()
	store := session.NewMemoryStore()
	pub := events.NewMockEventPublisher(testLogger())
	service := newTestExerciseService(repo, store, pub)

	rule := &models.Rule{ID: "661", Name: "Безударные гласные в корне", Letters: "а, о"}
	examples := []*models.Example{
		drillExample(1, "661", "вода", "в*661*да"),
		drillExample(2, "661", "трава", "тр*661*ва"),
		drillExample(3, "661", "гора", "г*661*ра"),
		drillExample(4, "661", "сова", "с*661*ва"),
		drillExample(5, "661", "нора", "н*661*ра"),
		drillExample(6, "661", "коса", "к*661*са"),
	}
	repo.RuleRepo.On("GetByIDs", mock.Anything, []string{"661"}).Return([]*models.Rule{rule}, nil)
	repo.ExampleRepo.On("GetForDrill", mock.Anything, []string{"661"}).Return(examples, nil)

	resp, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:       "fill_blank",
		RuleIDs:    []string{"661"},
		SessionKey: "sess-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "fill_blank", resp.Kind)
	assert.Equal(t, "fill_blank", resp.Slot)
	assert.Len(t, resp.Lines, 5)
	for i, line := range resp.Lines {
		assert.Contains(t, line, fmt.Sprintf("*dynamic_fill_blank-%d*", i+1))
	}
	assert.Equal(t, []string{"а", "о"}, resp.SubgroupLetters["661"])

	rec, err := store.Load(context.Background(), session.Key("sess-1", "fill_blank"))
	assert.NoError(t, err)
	assert.Equal(t, "fill_blank", rec.Kind)
	assert.Equal(t, "dynamic_fill_blank", rec.Prefix)
	assert.Len(t, rec.Expected, 5)
	for _, want := range rec.Expected {
		assert.Contains(t, []string{"а", "о"}, want)
	}
	assert.Len(t, rec.ExampleIDs, 5)

	assert.Len(t, pub.Events, 1)
	assert.Equal(t, events.EventExerciseGenerated, pub.Events[0].Type)

	repo.RuleRepo.AssertExpectations(t)
	repo.ExampleRepo.AssertExpectations(t)
}

func TestExerciseService_Generate_UniformLettersAutoResolved(t *testing.T) {
	repo := NewMockRepository()
	store := session.NewMemoryStore()
	pub := events.NewMockEventPublisher(testLogger())
	service := newTestExerciseService(repo, store, pub)

	rule := &models.Rule{ID: "10", Name: "Правописание приставок", Letters: "с, з, д, т, а, о"}

	// Ten words per vowel so uniform lines are always satisfiable.
	suffixes := []string{"ра", "ло", "га", "да", "ма", "на", "па", "ся", "тя", "ва"}
	var examples []*models.Example
	id := uint(1)
	for _, letter := range []string{"а", "о"} {
		for _, suf := range suffixes {
			examples = append(examples, drillExample(id, "10", "м"+letter+suf, "м*10*"+suf))
			id++
		}
	}
	repo.RuleRepo.On("GetByIDs", mock.Anything, []string{"10"}).Return([]*models.Rule{rule}, nil)
	repo.ExampleRepo.On("GetForDrill", mock.Anything, []string{"10"}).Return(examples, nil)

	// No explicit kind: an all-inflectional rule set resolves to the
	// uniform-lines drill.
	resp, err := service.Generate(context.Background(), &models.GenerateRequest{
		RuleIDs:    []string{"10"},
		SessionKey: "sess-2",
	})

	assert.NoError(t, err)
	assert.Equal(t, "uniform_letters", resp.Kind)
	assert.Len(t, resp.Lines, 5)
	for _, line := range resp.Lines {
		assert.Equal(t, 3, strings.Count(line, "*dynamic_uniform_letters-"))
	}
	assert.Equal(t, []string{"а", "о"}, resp.SubgroupLetters["10-vowel"])

	rec, err := store.Load(context.Background(), session.Key("sess-2", "uniform_letters"))
	assert.NoError(t, err)
	assert.Len(t, rec.Expected, 15)
	for _, key := range rec.LetterGroups {
		assert.Equal(t, "10-vowel", key)
	}
}

// A multi-marker mask served through a single-blank kind would render more
// blanks than stored answers and shift every blank after it. Such items must
// be dropped from the pool, never partially extracted.
func TestExerciseService_Generate_SkipsMultiBlankMasks(t *testing.T) {
	repo := NewMockRepository()
	store := session.NewMemoryStore()
	pub := events.NewMockEventPublisher(testLogger())
	service := newTestExerciseService(repo, store, pub)

	rule := &models.Rule{ID: "661", Name: "Безударные гласные в корне", Letters: "а, о"}
	examples := []*models.Example{
		drillExample(1, "661", "вода", "в*661*да"),
		drillExample(2, "661", "трава", "тр*661*ва"),
		drillExample(3, "661", "гора", "г*661*ра"),
		drillExample(4, "661", "сова", "с*661*ва"),
		drillExample(5, "661", "нора", "н*661*ра"),
		drillExample(6, "661", "вода и гора", "в*661*да и г*661*ра"),
	}
	repo.RuleRepo.On("GetByIDs", mock.Anything, []string{"661"}).Return([]*models.Rule{rule}, nil)
	repo.ExampleRepo.On("GetForDrill", mock.Anything, []string{"661"}).Return(examples, nil)

	resp, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:       "fill_blank",
		RuleIDs:    []string{"661"},
		SessionKey: "sess-7",
	})

	require.NoError(t, err)

	rec, err := store.Load(context.Background(), session.Key("sess-7", "fill_blank"))
	require.NoError(t, err)

	rendered := 0
	for _, line := range resp.Lines {
		rendered += strings.Count(line, "*dynamic_fill_blank-")
	}
	assert.Equal(t, len(rec.Expected), rendered, "every rendered blank needs a stored answer")
	assert.Len(t, rec.Expected, 5)
	assert.NotContains(t, rec.ExampleIDs, uint(6), "the multi-blank item must not be served")
}

func TestExerciseService_Generate_InsufficientContent(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	rule := &models.Rule{ID: "661", Name: "Безударные гласные в корне", Letters: "а, о"}
	examples := []*models.Example{
		drillExample(1, "661", "вода", "в*661*да"),
		drillExample(2, "661", "трава", "тр*661*ва"),
	}
	repo.RuleRepo.On("GetByIDs", mock.Anything, []string{"661"}).Return([]*models.Rule{rule}, nil)
	repo.ExampleRepo.On("GetForDrill", mock.Anything, []string{"661"}).Return(examples, nil)

	_, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:       "fill_blank",
		RuleIDs:    []string{"661"},
		SessionKey: "sess-3",
	})

	assert.ErrorIs(t, err, ErrInsufficientContent)
}

func TestExerciseService_Generate_UnknownRule(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	repo.RuleRepo.On("GetByIDs", mock.Anything, []string{"9999"}).Return([]*models.Rule{}, nil)

	_, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:       "fill_blank",
		RuleIDs:    []string{"9999"},
		SessionKey: "sess-4",
	})

	assert.ErrorIs(t, err, ErrUnsupportedRuleSet)
}

func TestExerciseService_Generate_ValidationFailed(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	_, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:    "fill_blank",
		RuleIDs: []string{"661"},
	})

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestExerciseService_Generate_MultiSelect(t *testing.T) {
	repo := NewMockRepository()
	store := session.NewMemoryStore()
	service := newTestExerciseService(repo, store, events.NewMockEventPublisher(testLogger()))

	question := &models.TextQuestion{
		ID:            7,
		Kind:          models.QuestionMultipleChoice,
		Text:          "Укажите номера верных утверждений.",
		CorrectAnswer: "13",
		Active:        true,
		Options: []models.QuestionOption{
			{Number: 1, Text: "первое"},
			{Number: 2, Text: "второе"},
			{Number: 3, Text: "третье"},
		},
	}
	repo.QuestionRepo.On("GetRandomByKind", mock.Anything, models.QuestionMultipleChoice).Return(question, nil)

	resp, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:       "multi_select",
		SessionKey: "sess-5",
	})

	assert.NoError(t, err)
	assert.Equal(t, question.Text, resp.Prompt)
	assert.Len(t, resp.Options, 3)

	rec, err := store.Load(context.Background(), session.Key("sess-5", "multi_select"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, rec.ExpectedSet)
}

func TestExerciseService_Generate_MultiSelectNoQuestions(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	repo.QuestionRepo.On("GetRandomByKind", mock.Anything, models.QuestionMultipleChoice).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Generate(context.Background(), &models.GenerateRequest{
		Kind:       "multi_select",
		SessionKey: "sess-6",
	})

	assert.ErrorIs(t, err, ErrInsufficientContent)
}

func TestExerciseService_RuleLetters(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	rule := &models.Rule{ID: "661", Name: "Безударные гласные в корне", Letters: "а, о, е"}
	repo.RuleRepo.On("GetByID", mock.Anything, "661").Return(rule, nil)

	resp, err := service.RuleLetters(context.Background(), "661")

	assert.NoError(t, err)
	assert.Equal(t, "661", resp.RuleID)
	assert.Equal(t, []string{"а", "о", "е"}, resp.Letters)
}

func TestExerciseService_RuleLetters_NotFound(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	repo.RuleRepo.On("GetByID", mock.Anything, "404").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.RuleLetters(context.Background(), "404")

	assert.True(t, errors.Is(err, ErrRuleNotFound))
}

func TestExerciseService_DailyQuiz(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	example := &models.Example{
		ID:               3,
		RuleID:           "661",
		Text:             "винегрет",
		IncorrectVariant: "венигрет",
	}
	repo.ExampleRepo.On("GetRandomQuizExample", mock.Anything).Return(example, nil)

	resp, err := service.DailyQuiz(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, uint(3), resp.ExampleID)
	assert.Equal(t, "661", resp.RuleID)
	assert.Len(t, resp.Options, 2)
	assert.Contains(t, resp.Options, "винегрет")
	assert.Contains(t, resp.Options, "венигрет")
}

func TestExerciseService_DailyQuiz_ShufflesOptions(t *testing.T) {
	repo := NewMockRepository()
	service := newTestExerciseService(repo, session.NewMemoryStore(), events.NewMockEventPublisher(testLogger()))

	example := &models.Example{
		ID:               3,
		RuleID:           "661",
		Text:             "винегрет",
		IncorrectVariant: "венигрет",
	}
	repo.ExampleRepo.On("GetRandomQuizExample", mock.Anything).Return(example, nil)

	firsts := make(map[string]bool)
	for i := 0; i < 100; i++ {
		resp, err := service.DailyQuiz(context.Background())
		require.NoError(t, err)
		firsts[resp.Options[0]] = true
	}
	assert.Len(t, firsts, 2, "both option orders must occur")
}
