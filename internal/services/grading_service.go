package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/neurostat/exercise-service/internal/events"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/scoring"
	"github.com/neurostat/exercise-service/internal/session"
	"github.com/neurostat/exercise-service/internal/validator"
)

// GradingService checks a submission against the exercise stored in the
// caller's session slot.
type GradingService interface {
	Check(ctx context.Context, sub *models.Submission) (*models.CheckResponse, error)
}

type gradingService struct {
	store     session.Store
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGradingService(
	store session.Store,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) GradingService {
	return &gradingService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *gradingService) Check(ctx context.Context, sub *models.Submission) (*models.CheckResponse, error) {
	if err := s.validator.Validate(sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := session.Key(sub.SessionKey, sub.Slot)
	rec, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrNoActiveExercise
		}
		return nil, fmt.Errorf("load exercise state: %w", err)
	}

	kind, ok := models.KindByName(rec.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: stored kind %q", ErrInternalError, rec.Kind)
	}

	var resp *models.CheckResponse
	switch kind.Policy() {
	case models.PolicyAllOrNothing:
		resp, err = s.checkBlanks(rec, sub)
	case models.PolicyThreshold:
		resp, err = s.checkMatching(rec, sub)
	case models.PolicySetEquality:
		resp, err = s.checkSelection(rec, sub)
	case models.PolicyVariantSet:
		resp, err = s.checkFreeText(rec, sub)
	default:
		return nil, fmt.Errorf("%w: policy %q", ErrInternalError, kind.Policy())
	}
	if err != nil {
		return nil, err
	}

	resp.Slot = sub.Slot
	resp.Kind = rec.Kind

	s.logger.Info("Checked exercise",
		"session", sub.SessionKey,
		"slot", sub.Slot,
		"kind", rec.Kind,
		"correct", resp.CorrectCount,
		"total", resp.Total,
		"score", resp.Score)

	event := events.NewExerciseCheckedEvent(sub.SessionKey, sub.Slot, sub.UserID, rec.Kind, rec.RuleIDs,
		resp.CorrectCount, resp.Total, resp.Score, resp.MaxScore)
	if err := s.publisher.PublishExerciseEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish checked event", "error", err)
	}

	return resp, nil
}

// checkBlanks grades flat or sentence-nested blank answers all-or-nothing.
func (s *gradingService) checkBlanks(rec *session.Record, sub *models.Submission) (*models.CheckResponse, error) {
	if sub.Answers == nil {
		return nil, fmt.Errorf("%w: kind %q expects answers list", ErrMalformedSubmission, rec.Kind)
	}

	var (
		verdicts []bool
		correct  int
	)
	if len(rec.ExpectedNested) > 0 {
		verdicts, correct = scoring.GradeNested(rec.ExpectedNested, sub.Answers, rec.CaseSensitive)
	} else {
		verdicts, correct = scoring.GradeFlat(rec.Expected, sub.Answers, rec.CaseSensitive)
	}
	if len(sub.Answers) != len(verdicts) {
		s.logger.Warn("Submission length mismatch, grading common prefix",
			"slot", sub.Slot,
			"submitted", len(sub.Answers),
			"expected", len(verdicts))
	}

	out := make([]models.BlankVerdict, len(verdicts))
	for i, ok := range verdicts {
		out[i] = models.BlankVerdict{
			ID:      fmt.Sprintf("%s-%d", rec.Prefix, i+1),
			Correct: ok,
		}
	}
	return &models.CheckResponse{
		Verdicts:     out,
		CorrectCount: correct,
		Total:        len(verdicts),
		Score:        scoring.AllOrNothing(correct, len(verdicts)),
		MaxScore:     1,
	}, nil
}

// checkMatching grades the А-Д columns on the graded 0/1/2 scale.
func (s *gradingService) checkMatching(rec *session.Record, sub *models.Submission) (*models.CheckResponse, error) {
	if sub.AnswerMap == nil {
		return nil, fmt.Errorf("%w: kind %q expects an answer map", ErrMalformedSubmission, rec.Kind)
	}

	verdicts, correct := scoring.GradeMap(rec.ExpectedMap, sub.AnswerMap)

	letters := make([]string, 0, len(verdicts))
	for letter := range verdicts {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	out := make([]models.BlankVerdict, len(letters))
	for i, letter := range letters {
		out[i] = models.BlankVerdict{ID: letter, Correct: verdicts[letter]}
	}
	return &models.CheckResponse{
		Verdicts:     out,
		CorrectCount: correct,
		Total:        len(rec.ExpectedMap),
		Score:        scoring.Threshold(correct, len(rec.ExpectedMap)),
		MaxScore:     2,
	}, nil
}

// checkSelection grades multi-select picks by strict set equality.
func (s *gradingService) checkSelection(rec *session.Record, sub *models.Submission) (*models.CheckResponse, error) {
	if sub.Selected == nil {
		return nil, fmt.Errorf("%w: kind %q expects selected options", ErrMalformedSubmission, rec.Kind)
	}

	score := scoring.SetEquality(rec.ExpectedSet, sub.Selected)

	want := make(map[string]bool, len(rec.ExpectedSet))
	for _, e := range rec.ExpectedSet {
		want[scoring.Normalize(e)] = true
	}
	correct := 0
	for _, pick := range sub.Selected {
		if want[scoring.Normalize(pick)] {
			correct++
		}
	}
	return &models.CheckResponse{
		CorrectCount: correct,
		Total:        len(rec.ExpectedSet),
		Score:        score,
		MaxScore:     1,
	}, nil
}

// checkFreeText accepts any of the recorded answer forms.
func (s *gradingService) checkFreeText(rec *session.Record, sub *models.Submission) (*models.CheckResponse, error) {
	if sub.Text == "" {
		return nil, fmt.Errorf("%w: kind %q expects a text answer", ErrMalformedSubmission, rec.Kind)
	}

	score := 0
	if scoring.MatchVariant(rec.Variants, sub.Text) {
		score = 1
	}
	return &models.CheckResponse{
		CorrectCount: score,
		Total:        1,
		Score:        score,
		MaxScore:     1,
	}, nil
}
