package services

import (
	"context"
	"testing"

	"github.com/neurostat/exercise-service/internal/events"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/session"
	"github.com/neurostat/exercise-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGradingService(store session.Store) (GradingService, *events.MockEventPublisher) {
	pub := events.NewMockEventPublisher(testLogger())
	return NewGradingService(store, pub, testLogger(), validator.New()), pub
}

func seedRecord(t *testing.T, store session.Store, sessionKey, slot string, rec *session.Record) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), session.Key(sessionKey, slot), rec))
}

func TestGradingService_Check_FillBlankAllCorrect(t *testing.T) {
	store := session.NewMemoryStore()
	service, pub := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "1", &session.Record{
		Kind:     "fill_blank",
		Prefix:   "dynamic_1",
		Expected: []string{"о", "а", "е"},
	})

	resp, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "1",
		Answers:    []string{"о", "а", "е"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.CorrectCount)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 1, resp.MaxScore)
	require.Len(t, resp.Verdicts, 3)
	assert.Equal(t, "dynamic_1-1", resp.Verdicts[0].ID)
	assert.True(t, resp.Verdicts[0].Correct)

	require.Len(t, pub.Events, 1)
	assert.Equal(t, events.EventExerciseChecked, pub.Events[0].Type)
}

func TestGradingService_Check_FillBlankOneWrong(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "1", &session.Record{
		Kind:     "fill_blank",
		Prefix:   "dynamic_1",
		Expected: []string{"о", "а"},
	})

	resp, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "1",
		Answers:    []string{"а", "а"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CorrectCount)
	assert.Equal(t, 0, resp.Score)
	assert.False(t, resp.Verdicts[0].Correct)
	assert.True(t, resp.Verdicts[1].Correct)
}

func TestGradingService_Check_SentenceSetNested(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "15", &session.Record{
		Kind:           "sentence_set",
		Prefix:         "dynamic_15",
		ExpectedNested: [][]string{{"!", "?"}, {"!"}},
	})

	resp, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "15",
		// Client keyboard marks normalize to the stored glyphs.
		Answers: []string{",", "х", ","},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.CorrectCount)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Score)
}

func TestGradingService_Check_MatchingThreshold(t *testing.T) {
	expected := map[string]string{"А": "1", "Б": "2", "В": "3", "Г": "4", "Д": "5"}
	tests := []struct {
		name      string
		submitted map[string]string
		correct   int
		score     int
	}{
		{
			name:      "all five correct",
			submitted: map[string]string{"А": "1", "Б": "2", "В": "3", "Г": "4", "Д": "5"},
			correct:   5,
			score:     2,
		},
		{
			name:      "four correct",
			submitted: map[string]string{"А": "1", "Б": "2", "В": "3", "Г": "4", "Д": "7"},
			correct:   4,
			score:     1,
		},
		{
			name:      "three correct",
			submitted: map[string]string{"А": "1", "Б": "2", "В": "3", "Г": "9", "Д": "7"},
			correct:   3,
			score:     1,
		},
		{
			name:      "two correct",
			submitted: map[string]string{"А": "1", "Б": "2", "В": "9", "Г": "9", "Д": "7"},
			correct:   2,
			score:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			service, _ := newTestGradingService(store)
			seedRecord(t, store, "sess-1", "8", &session.Record{
				Kind:          "match_five",
				ExpectedMap:   expected,
				CaseSensitive: true,
			})

			resp, err := service.Check(context.Background(), &models.Submission{
				SessionKey: "sess-1",
				Slot:       "8",
				AnswerMap:  tt.submitted,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.correct, resp.CorrectCount)
			assert.Equal(t, tt.score, resp.Score)
			assert.Equal(t, 2, resp.MaxScore)
		})
	}
}

func TestGradingService_Check_MultiSelectSetEquality(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "q", &session.Record{
		Kind:        "multi_select",
		ExpectedSet: []string{"1", "3"},
	})

	resp, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "q",
		Selected:   []string{"3", "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)

	// An extra pick disqualifies even though both expected options are in.
	resp, err = service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "q",
		Selected:   []string{"1", "2", "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, 2, resp.CorrectCount)
}

func TestGradingService_Check_FreeTextVariants(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "w", &session.Record{
		Kind:     "free_text",
		Variants: []string{"поражает", "удивляет"},
	})

	resp, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "w",
		Text:       "Удивляет",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Score)

	resp, err = service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "w",
		Text:       "восхищает",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
}

func TestGradingService_Check_MalformedSubmission(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "1", &session.Record{
		Kind:     "fill_blank",
		Prefix:   "dynamic_1",
		Expected: []string{"о"},
	})

	_, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "1",
		Text:       "о",
	})

	assert.ErrorIs(t, err, ErrMalformedSubmission)
}

func TestGradingService_Check_NoActiveExercise(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	_, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "1",
		Answers:    []string{"о"},
	})

	assert.ErrorIs(t, err, ErrNoActiveExercise)
}

func TestGradingService_Check_ShortSubmissionCountsMissingWrong(t *testing.T) {
	store := session.NewMemoryStore()
	service, _ := newTestGradingService(store)

	seedRecord(t, store, "sess-1", "1", &session.Record{
		Kind:     "fill_blank",
		Prefix:   "dynamic_1",
		Expected: []string{"о", "а", "е"},
	})

	resp, err := service.Check(context.Background(), &models.Submission{
		SessionKey: "sess-1",
		Slot:       "1",
		Answers:    []string{"о"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.CorrectCount)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 0, resp.Score)
}
