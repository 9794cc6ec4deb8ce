package models

import "time"

type GenerateRequest struct {
	Kind       string   `json:"kind" validate:"omitempty,exercise_kind"`
	RuleIDs    []string `json:"rule_ids" validate:"omitempty,dive,required"`
	Grade      string   `json:"grade" validate:"omitempty,max=8"`
	UserID     string   `json:"user_id" validate:"omitempty,max=64"`
	SessionKey string   `json:"session_key" validate:"required,max=128"`

	// Slot distinguishes concurrent exercises within one session, e.g. the
	// task number on a worksheet page. Defaults to the resolved kind name.
	Slot string `json:"slot" validate:"omitempty,max=64"`
}

// MatchingColumn is one lettered error type in the five-way matching task.
type MatchingColumn struct {
	Letter string `json:"letter"`
	TypeID string `json:"type_id"`
	Title  string `json:"title"`
}

// NumberedSentence is one candidate sentence in matching and error-hunt
// tasks.
type NumberedSentence struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

type AnswerOption struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

type GenerateResponse struct {
	Slot string `json:"slot"`
	Kind string `json:"kind"`

	// Lines are the rendered masked lines for blank-filling kinds. Each
	// blank appears as *<prefix>-<n>*.
	Lines []string `json:"lines,omitempty"`

	// LetterGroups maps each blank id to its sub-alphabet key, and
	// SubgroupLetters maps each key to the letters the client should offer.
	LetterGroups    map[string]string   `json:"letter_groups,omitempty"`
	SubgroupLetters map[string][]string `json:"subgroup_letters,omitempty"`

	// Choice letters for kinds with a fixed keyboard (binary, punctuation).
	ChoiceLetters []string `json:"choice_letters,omitempty"`

	Columns   []MatchingColumn   `json:"columns,omitempty"`
	Sentences []NumberedSentence `json:"sentences,omitempty"`

	Prompt  string         `json:"prompt,omitempty"`
	Options []AnswerOption `json:"options,omitempty"`
}

// Submission is the answer payload for every exercise kind; exactly one of
// the shape fields must match the kind stored in the session record.
type Submission struct {
	SessionKey string `json:"session_key" validate:"required,max=128"`
	Slot       string `json:"slot" validate:"required,max=64"`
	UserID     string `json:"user_id" validate:"omitempty,max=64"`

	// Answers is the flat blank-order list for fill-in kinds; sentence sets
	// submit the same list in sentence-major order.
	Answers []string `json:"answers,omitempty"`

	// AnswerMap maps matching letters (А-Д) to chosen sentence numbers.
	AnswerMap map[string]string `json:"answer_map,omitempty"`

	// Selected holds chosen option numbers for multi-select tasks.
	Selected []string `json:"selected,omitempty"`

	// Text is the free-text answer.
	Text string `json:"text,omitempty"`
}

type BlankVerdict struct {
	ID      string `json:"id"`
	Correct bool   `json:"correct"`
}

type CheckResponse struct {
	Slot         string         `json:"slot"`
	Kind         string         `json:"kind"`
	Verdicts     []BlankVerdict `json:"verdicts,omitempty"`
	CorrectCount int            `json:"correct_count"`
	Total        int            `json:"total"`
	Score        int            `json:"score"`
	MaxScore     int            `json:"max_score"`
}

type RuleLettersResponse struct {
	RuleID  string   `json:"rule_id"`
	Letters []string `json:"letters"`
}

type DailyQuizResponse struct {
	ExampleID uint     `json:"example_id"`
	RuleID    string   `json:"rule_id"`
	Options   []string `json:"options"`
}

type ImportSummary struct {
	TotalRows       int           `json:"total_rows"`
	ProcessedRows   int           `json:"processed_rows"`
	SuccessCount    int           `json:"success_count"`
	ErrorCount      int           `json:"error_count"`
	CreatedExamples []uint        `json:"created_examples"`
	Errors          []ImportError `json:"errors"`
	ProcessingTime  time.Duration `json:"processing_time"`
}

type ImportError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

type ExportRequest struct {
	RuleIDs       []string `json:"rule_ids"`
	Format        string   `json:"format" validate:"omitempty,oneof=xlsx csv"`
	ActiveOnly    bool     `json:"active_only"`
	IncludeAnswer bool     `json:"include_answer"`
}
