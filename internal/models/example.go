package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExampleSource string

const (
	SourceSystem ExampleSource = "system"
	SourceUser   ExampleSource = "user"
)

// Example is one bank item for a rule: the ground-truth text plus the masked
// variant with *<rule-id>* markers. For punctuation and multi-blank sentence
// rules the expected marks live in Explanation (comma-separated, one per
// marker); for single-word items the answer is recovered from Text directly.
type Example struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	RuleID string `json:"rule_id" gorm:"not null;size:16;index" validate:"required"`

	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	MaskedText string `json:"masked_text" gorm:"type:text;not null" validate:"required"`

	// Explanation carries expected marks for sentence/punctuation items and
	// is free commentary elsewhere.
	Explanation string `json:"explanation" gorm:"type:text"`

	Active bool `json:"active" gorm:"default:true;index"`

	// Grades restricts the item to school grades, stored as a JSON string
	// array. Empty means the item applies to every grade.
	Grades datatypes.JSON `json:"grades" gorm:"type:jsonb"`

	// Error-hunt and five-way matching sentences. ErrorType is the grammar
	// error family code ("8100".."8700") when HasError is set.
	HasError  bool   `json:"has_error" gorm:"default:false"`
	ErrorType string `json:"error_type" gorm:"size:16;index"`

	// IncorrectVariant is a common misspelling of Text, used by the daily
	// quiz two-option question. Empty for ordinary drill items.
	IncorrectVariant string `json:"incorrect_variant" gorm:"size:200"`

	Source    ExampleSource `json:"source" gorm:"default:system;size:16;index"`
	CreatedBy string        `json:"created_by" gorm:"size:64;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Rule Rule `json:"-" gorm:"foreignKey:RuleID"`
}

func (Example) TableName() string {
	return "examples"
}

// GradeList decodes the stored grade restriction. A nil result means no
// restriction.
func (e *Example) GradeList() []string {
	if len(e.Grades) == 0 {
		return nil
	}
	var grades []string
	if err := json.Unmarshal(e.Grades, &grades); err != nil {
		return nil
	}
	return grades
}

// AppliesToGrade reports whether the item may be served to grade. An empty
// grade or an unrestricted item always matches.
func (e *Example) AppliesToGrade(grade string) bool {
	if grade == "" {
		return true
	}
	grades := e.GradeList()
	if len(grades) == 0 {
		return true
	}
	for _, g := range grades {
		if g == grade {
			return true
		}
	}
	return false
}

// IsUserContributed reports whether the item came from a learner's personal
// word list rather than the shared bank.
func (e *Example) IsUserContributed() bool {
	return e.Source == SourceUser && e.CreatedBy != ""
}
