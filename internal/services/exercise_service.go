package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/neurostat/exercise-service/internal/cache"
	"github.com/neurostat/exercise-service/internal/events"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"github.com/neurostat/exercise-service/internal/selector"
	"github.com/neurostat/exercise-service/internal/session"
	"github.com/neurostat/exercise-service/internal/validator"
)

// ExerciseService builds exercises from the content bank and records their
// expected answers in the caller's session slot.
type ExerciseService interface {
	Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
	RuleLetters(ctx context.Context, ruleID string) (*models.RuleLettersResponse, error)
	DailyQuiz(ctx context.Context) (*models.DailyQuizResponse, error)
}

type exerciseService struct {
	repo      repositories.Repository
	store     session.Store
	publisher events.EventPublisher
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
	selCfg    selector.Config
}

// ruleLettersTTL bounds how long a rule's alphabet stays cached. Imports
// invalidate the whole prefix anyway.
const ruleLettersTTL = time.Hour

func NewExerciseService(
	repo repositories.Repository,
	store session.Store,
	publisher events.EventPublisher,
	ruleCache cache.CacheService,
	logger *slog.Logger,
	v *validator.Validator,
	selCfg selector.Config,
) ExerciseService {
	return &exerciseService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		cache:     ruleCache,
		logger:    logger,
		validator: v,
		selCfg:    selCfg,
	}
}

func (s *exerciseService) Generate(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	kind, ok := models.ResolveKind(req.Kind, req.RuleIDs)
	if !ok {
		return nil, fmt.Errorf("%w: kind %q rules %v", ErrUnsupportedRuleSet, req.Kind, req.RuleIDs)
	}

	slot := req.Slot
	if slot == "" {
		slot = kind.Name()
	}
	prefix := "dynamic_" + slot

	s.logger.Info("Generating exercise",
		"kind", kind.Name(),
		"rules", req.RuleIDs,
		"session", req.SessionKey,
		"slot", slot)

	sel := selector.New(s.selCfg, nil)

	var (
		resp *models.GenerateResponse
		rec  *session.Record
		err  error
	)
	switch k := kind.(type) {
	case models.FillBlank:
		resp, rec, err = s.buildFillBlank(ctx, req, sel, prefix, k.Count)
	case models.UniformLetters:
		resp, rec, err = s.buildUniformLetters(ctx, req, sel, prefix, k)
	case models.BinaryChoice:
		resp, rec, err = s.buildBinaryChoice(ctx, req, sel, prefix, k.Count)
	case models.SentenceSet:
		resp, rec, err = s.buildSentenceSet(ctx, req, sel, prefix, k.Count)
	case models.Punctuation:
		resp, rec, err = s.buildPunctuation(ctx, req, sel, prefix, k.Count)
	case models.MatchFive:
		resp, rec, err = s.buildMatchFive(ctx, req, sel)
	case models.MultiSelect:
		resp, rec, err = s.buildMultiSelect(ctx)
	case models.FreeText:
		resp, rec, err = s.buildFreeText(ctx)
	case models.ErrorHunt:
		resp, rec, err = s.buildErrorHunt(ctx, req, sel, k.Total)
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedRuleSet, kind.Name())
	}
	if err != nil {
		return nil, err
	}

	resp.Slot = slot
	resp.Kind = kind.Name()
	rec.Kind = kind.Name()
	rec.Prefix = prefix
	rec.RuleIDs = req.RuleIDs
	rec.CreatedAt = time.Now()

	key := session.Key(req.SessionKey, slot)
	if err := s.store.Save(ctx, key, rec); err != nil {
		return nil, fmt.Errorf("save exercise state: %w", err)
	}

	blanks := len(rec.Expected)
	if blanks == 0 {
		blanks = len(rec.ExpectedSet) + len(rec.ExpectedMap) + len(rec.Variants)
	}
	event := events.NewExerciseGeneratedEvent(req.SessionKey, slot, req.UserID, kind.Name(), req.RuleIDs, blanks)
	if err := s.publisher.PublishExerciseEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish generated event", "error", err)
	}

	return resp, nil
}

func (s *exerciseService) RuleLetters(ctx context.Context, ruleID string) (*models.RuleLettersResponse, error) {
	cacheKey := "rule:letters:" + ruleID
	if s.cache != nil {
		var cached models.RuleLettersResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	rule, err := s.repo.Rule().GetByID(ctx, ruleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get rule %s: %w", ruleID, err)
	}

	resp := &models.RuleLettersResponse{RuleID: rule.ID, Letters: rule.LetterList()}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, ruleLettersTTL); err != nil {
			s.logger.Warn("Failed to cache rule letters", "rule_id", ruleID, "error", err)
		}
	}
	return resp, nil
}

// DailyQuiz picks a random two-option question from an item that has a
// recorded common misspelling. Option order is randomized.
func (s *exerciseService) DailyQuiz(ctx context.Context) (*models.DailyQuizResponse, error) {
	example, err := s.repo.Example().GetRandomQuizExample(ctx)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExampleNotFound
		}
		return nil, fmt.Errorf("get quiz example: %w", err)
	}

	options := []string{example.Text, example.IncorrectVariant}
	if rand.Intn(2) == 0 {
		options[0], options[1] = options[1], options[0]
	}
	return &models.DailyQuizResponse{
		ExampleID: example.ID,
		RuleID:    example.RuleID,
		Options:   options,
	}, nil
}
