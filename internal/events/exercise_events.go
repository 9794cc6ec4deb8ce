package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of progress events
type EventType string

const (
	EventExerciseGenerated EventType = "exercise.generated"
	EventExerciseChecked   EventType = "exercise.checked"
	EventContentImported   EventType = "content.imported"
)

// ExerciseEvent is the base event structure published to the progress
// analytics topic. Weekly report and reminder consumers read it downstream.
type ExerciseEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ExerciseGeneratedEvent struct {
	SessionKey string   `json:"session_key"`
	Slot       string   `json:"slot"`
	UserID     string   `json:"user_id,omitempty"`
	Kind       string   `json:"kind"`
	RuleIDs    []string `json:"rule_ids,omitempty"`
	BlankCount int      `json:"blank_count"`
}

type ExerciseCheckedEvent struct {
	SessionKey   string   `json:"session_key"`
	Slot         string   `json:"slot"`
	UserID       string   `json:"user_id,omitempty"`
	Kind         string   `json:"kind"`
	RuleIDs      []string `json:"rule_ids,omitempty"`
	CorrectCount int      `json:"correct_count"`
	Total        int      `json:"total"`
	Score        int      `json:"score"`
	MaxScore     int      `json:"max_score"`
}

type ContentImportedEvent struct {
	JobID        string `json:"job_id"`
	FileName     string `json:"file_name"`
	SuccessCount int    `json:"success_count"`
	ErrorCount   int    `json:"error_count"`
}

// Event factory functions

func NewExerciseGeneratedEvent(sessionKey, slot, userID, kind string, ruleIDs []string, blankCount int) *ExerciseEvent {
	return &ExerciseEvent{
		ID:        GenerateEventID(),
		Type:      EventExerciseGenerated,
		Timestamp: time.Now(),
		Source:    "exercise-service",
		Version:   "1.0",
		Data: ExerciseGeneratedEvent{
			SessionKey: sessionKey,
			Slot:       slot,
			UserID:     userID,
			Kind:       kind,
			RuleIDs:    ruleIDs,
			BlankCount: blankCount,
		},
	}
}

func NewExerciseCheckedEvent(sessionKey, slot, userID, kind string, ruleIDs []string, correct, total, score, maxScore int) *ExerciseEvent {
	return &ExerciseEvent{
		ID:        GenerateEventID(),
		Type:      EventExerciseChecked,
		Timestamp: time.Now(),
		Source:    "exercise-service",
		Version:   "1.0",
		Data: ExerciseCheckedEvent{
			SessionKey:   sessionKey,
			Slot:         slot,
			UserID:       userID,
			Kind:         kind,
			RuleIDs:      ruleIDs,
			CorrectCount: correct,
			Total:        total,
			Score:        score,
			MaxScore:     maxScore,
		},
	}
}

func NewContentImportedEvent(jobID, fileName string, successCount, errorCount int) *ExerciseEvent {
	return &ExerciseEvent{
		ID:        GenerateEventID(),
		Type:      EventContentImported,
		Timestamp: time.Now(),
		Source:    "exercise-service",
		Version:   "1.0",
		Data: ContentImportedEvent{
			JobID:        jobID,
			FileName:     fileName,
			SuccessCount: successCount,
			ErrorCount:   errorCount,
		},
	}
}

// GenerateEventID returns a unique id for a new event.
func GenerateEventID() string {
	return uuid.NewString()
}
