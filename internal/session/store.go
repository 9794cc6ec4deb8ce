// Package session keeps the expected answers of generated exercises between
// the generate and check calls. State is always addressed by an explicit
// key built from the caller's session id and exercise slot; the engine holds
// no ambient session.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("session: record not found")

// Record is everything the checker needs to grade a submission. One record
// per (session, slot); regenerating overwrites it.
type Record struct {
	Kind   string `json:"kind"`
	Prefix string `json:"prefix"`

	RuleIDs    []string `json:"rule_ids,omitempty"`
	ExampleIDs []uint   `json:"example_ids,omitempty"`

	Expected       []string          `json:"expected,omitempty"`
	ExpectedNested [][]string        `json:"expected_nested,omitempty"`
	ExpectedSet    []string          `json:"expected_set,omitempty"`
	ExpectedMap    map[string]string `json:"expected_map,omitempty"`
	Variants       []string          `json:"variants,omitempty"`

	LetterGroups  map[string]string `json:"letter_groups,omitempty"`
	CaseSensitive bool              `json:"case_sensitive,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Store is the KV the engine reads and writes exercise state through.
// Implementations must treat Save as last-write-wins per key.
type Store interface {
	Save(ctx context.Context, key string, rec *Record) error
	Load(ctx context.Context, key string) (*Record, error)
	Delete(ctx context.Context, key string) error
}

// Key builds the store key for one exercise slot of one session.
func Key(sessionID, slot string) string {
	return fmt.Sprintf("exercise:%s:%s", sessionID, slot)
}
