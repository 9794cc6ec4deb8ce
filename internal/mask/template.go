// Package mask parses masked drill texts, recovers hidden answers from their
// ground-truth counterparts and renumbers rule markers into exercise-local
// blank ids. All offsets are rune offsets so Cyrillic text is handled
// correctly.
package mask

import (
	"fmt"
	"strings"
	"unicode"
)

// Marker is one *<rule-id>* placeholder inside a masked text.
type Marker struct {
	RuleID string
	Start  int // rune offset of the opening '*'
	End    int // rune offset just past the closing '*'
}

// Template is a validated masked text. Construct only via Parse; a Template
// in hand is guaranteed well-formed.
type Template struct {
	raw     string
	runes   []rune
	markers []Marker
}

// Parse validates a masked text: every '*' must open or close a marker,
// marker bodies must be non-empty and free of whitespace, and at least one
// marker must be present.
func Parse(masked string) (*Template, error) {
	runes := []rune(masked)
	var markers []Marker
	for i := 0; i < len(runes); i++ {
		if runes[i] != '*' {
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] != '*' {
			j++
		}
		if j >= len(runes) {
			return nil, fmt.Errorf("mask: unterminated marker at rune %d", i)
		}
		if j == i+1 {
			return nil, fmt.Errorf("mask: empty marker at rune %d", i)
		}
		body := string(runes[i+1 : j])
		if strings.IndexFunc(body, unicode.IsSpace) >= 0 {
			return nil, fmt.Errorf("mask: marker %q contains whitespace", body)
		}
		markers = append(markers, Marker{RuleID: body, Start: i, End: j + 1})
		i = j
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("mask: no markers in %q", masked)
	}
	return &Template{raw: masked, runes: runes, markers: markers}, nil
}

func (t *Template) Raw() string { return t.raw }

func (t *Template) Markers() []Marker {
	out := make([]Marker, len(t.markers))
	copy(out, t.markers)
	return out
}

func (t *Template) MarkerCount() int { return len(t.markers) }

// RuleIDs returns the distinct rule ids referenced, in first-seen order.
func (t *Template) RuleIDs() []string {
	seen := make(map[string]bool, len(t.markers))
	var out []string
	for _, m := range t.markers {
		if !seen[m.RuleID] {
			seen[m.RuleID] = true
			out = append(out, m.RuleID)
		}
	}
	return out
}

// render rebuilds the text with each marker span replaced by repl's output.
func (t *Template) render(repl func(i int, m Marker) string) string {
	var b strings.Builder
	prev := 0
	for i, m := range t.markers {
		b.WriteString(string(t.runes[prev:m.Start]))
		b.WriteString(repl(i, m))
		prev = m.End
	}
	b.WriteString(string(t.runes[prev:]))
	return b.String()
}
