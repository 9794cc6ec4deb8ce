package mask

import (
	"fmt"
	"strings"
)

// canonical rewrites answer spellings to their stored canonical form.
// Authors write `\` for the word-split marker; the bank and the grader use
// `|` throughout.
func canonical(s string) string {
	return strings.ReplaceAll(s, `\`, "|")
}

// Extract recovers the answer hidden by the template's first marker from the
// ground-truth text. The literal between the first marker and the next one
// (or the end of the mask) anchors the answer's right edge; when the literal
// is empty or not found the answer is taken to be a single rune. The masked
// prefix before the marker must match the ground truth exactly.
func Extract(plain string, t *Template) (string, error) {
	m := t.markers[0]
	pr := []rune(plain)
	if m.Start >= len(pr) {
		return "", fmt.Errorf("mask: text %q shorter than marker offset %d", plain, m.Start)
	}
	if string(pr[:m.Start]) != string(t.runes[:m.Start]) {
		return "", fmt.Errorf("mask: text %q does not match masked prefix", plain)
	}

	tailEnd := len(t.runes)
	if len(t.markers) > 1 {
		tailEnd = t.markers[1].Start
	}
	tail := t.runes[m.End:tailEnd]
	if len(tail) > 0 {
		if idx := indexRunes(pr[m.Start:], tail); idx > 0 {
			return canonical(string(pr[m.Start : m.Start+idx])), nil
		}
	}
	return canonical(string(pr[m.Start])), nil
}

// ExtractSentence reads expected answers for every marker of a sentence
// template from its comma-separated explanation. A count mismatch rejects
// the item outright.
func ExtractSentence(t *Template, explanation string) ([]string, error) {
	var answers []string
	for _, p := range strings.Split(explanation, ",") {
		if p = strings.TrimSpace(p); p != "" {
			answers = append(answers, canonical(p))
		}
	}
	if len(answers) != len(t.markers) {
		return nil, fmt.Errorf("mask: explanation lists %d answers for %d blanks", len(answers), len(t.markers))
	}
	return answers, nil
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
