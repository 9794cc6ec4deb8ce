package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Rule is a single orthographic, punctuation or grammar rule. The ID is the
// platform-wide rule code ("10", "661", "2100", ...), not an auto-increment.
type Rule struct {
	ID       string `json:"id" gorm:"primaryKey;size:16" validate:"required,max=16"`
	Name     string `json:"name" gorm:"not null;size:300" validate:"required,min=1,max=300"`
	RuleText string `json:"rule_text" gorm:"type:text"`

	// Letters is the comma-separated answer alphabet for the rule,
	// e.g. "а, о" or "!, ?, —, :". Order is presentation order.
	Letters string `json:"letters" gorm:"size:200"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Examples []Example `json:"-" gorm:"foreignKey:RuleID"`
}

func (Rule) TableName() string {
	return "rules"
}

// LetterList splits the stored alphabet into trimmed entries, dropping blanks.
func (r *Rule) LetterList() []string {
	if r.Letters == "" {
		return nil
	}
	parts := strings.Split(r.Letters, ",")
	letters := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			letters = append(letters, p)
		}
	}
	return letters
}

// HasLetter reports whether letter belongs to the rule's alphabet.
func (r *Rule) HasLetter(letter string) bool {
	for _, l := range r.LetterList() {
		if l == letter {
			return true
		}
	}
	return false
}
