package models

// The inflectional rules share one drill format: lines of words whose blanks
// must (or must not) all resolve to the same letter. Their alphabets are
// partitioned into fixed sub-alphabets so a "uniform" line stays plausible;
// rule 10 splits consonant and vowel endings, the rest keep one bucket each.

type subgroup struct {
	Key     string
	Letters []string
}

var inflectionalSubgroups = map[string][]subgroup{
	"10": {
		{Key: "10-cons", Letters: []string{"с", "з", "д", "т"}},
		{Key: "10-vowel", Letters: []string{"а", "о"}},
	},
	"11": {{Key: "11", Letters: []string{"з", "с"}}},
	"28": {{Key: "28", Letters: []string{"и", "ы"}}},
	"29": {{Key: "29", Letters: []string{"е", "и"}}},
	"6":  {{Key: "6", Letters: []string{"ъ", "ь", "/"}}},
}

// InflectionalRuleIDs lists the rules drilled with the uniform-lines format.
func InflectionalRuleIDs() []string {
	return []string{"6", "10", "11", "28", "29"}
}

// IsInflectional reports whether ruleID belongs to the uniform-lines family.
func IsInflectional(ruleID string) bool {
	_, ok := inflectionalSubgroups[ruleID]
	return ok
}

// SubgroupFor resolves the sub-alphabet key a resolved letter falls into.
// Rules outside the inflectional family have no subgroups.
func SubgroupFor(ruleID, letter string) (string, bool) {
	for _, sg := range inflectionalSubgroups[ruleID] {
		for _, l := range sg.Letters {
			if l == letter {
				return sg.Key, true
			}
		}
	}
	return "", false
}

// SubgroupLetters returns the full letter set of a sub-alphabet key, in
// presentation order. Unknown keys return nil.
func SubgroupLetters(key string) []string {
	for _, sgs := range inflectionalSubgroups {
		for _, sg := range sgs {
			if sg.Key == key {
				out := make([]string, len(sg.Letters))
				copy(out, sg.Letters)
				return out
			}
		}
	}
	return nil
}

// PunctuationChoiceLetters is the two-glyph keyboard offered for punctuation
// drills. The client sends these; grading canonicalizes them to "!" and "?".
func PunctuationChoiceLetters() []string {
	return []string{",", "х"}
}
