package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionFreeText       QuestionKind = "free_text"
)

// TextQuestion is a standalone authored question: either a choose-all-correct
// checkbox task or a type-the-word free-text task.
type TextQuestion struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Kind QuestionKind `json:"kind" gorm:"not null;size:32;index" validate:"required,oneof=multiple_choice free_text"`
	Text string       `json:"text" gorm:"type:text;not null" validate:"required"`

	// CorrectAnswer encoding depends on Kind: for multiple_choice it is the
	// concatenated option numbers ("135"); for free_text it is the accepted
	// forms separated by "/" ("поражает/удивляет").
	CorrectAnswer string `json:"correct_answer" gorm:"size:200;not null" validate:"required"`

	Active bool `json:"active" gorm:"default:true;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID"`
}

type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Number     int    `json:"number" gorm:"not null"`
	Text       string `json:"text" gorm:"type:text;not null"`
}

func (TextQuestion) TableName() string {
	return "text_questions"
}

func (QuestionOption) TableName() string {
	return "text_question_options"
}

// CorrectOptionNumbers splits a multiple-choice answer key into single-digit
// option numbers: "135" -> ["1","3","5"].
func (q *TextQuestion) CorrectOptionNumbers() []string {
	if q.Kind != QuestionMultipleChoice {
		return nil
	}
	digits := strings.TrimSpace(q.CorrectAnswer)
	out := make([]string, 0, len(digits))
	for _, r := range digits {
		out = append(out, string(r))
	}
	return out
}

// AcceptedVariants splits a free-text answer key on "/", trimming each form.
func (q *TextQuestion) AcceptedVariants() []string {
	if q.Kind != QuestionFreeText {
		return nil
	}
	parts := strings.Split(q.CorrectAnswer, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
