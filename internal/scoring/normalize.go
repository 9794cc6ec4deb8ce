// Package scoring normalizes submitted answers and turns per-blank verdicts
// into scores under the policy fixed by the exercise kind.
package scoring

import "strings"

// The client keyboard reuses plain glyphs for punctuation marks: the comma
// key stands for "!" and "х" (Cyrillic or Latin) for "?". Aliases apply to
// the whole answer only, never inside a longer word.
var markAliases = map[string]string{
	",": "!",
	"х": "?",
	"x": "?",
}

// Normalize canonicalizes one submitted answer: trims surrounding space,
// rewrites `\` to the stored word-split marker "|" and resolves keyboard
// stand-ins for punctuation marks.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\`, "|")
	if alias, ok := markAliases[s]; ok {
		return alias
	}
	return s
}

// Equal compares a normalized submission against the expected answer.
// Spelling answers compare case-insensitively; grammar letter choices are
// exact.
func Equal(expected, submitted string, caseSensitive bool) bool {
	submitted = Normalize(submitted)
	if caseSensitive {
		return expected == submitted
	}
	return strings.EqualFold(expected, submitted)
}
