package models

import "strings"

// ScoringPolicy selects how a submission for an exercise is turned into a
// score. Policies are fixed per exercise kind, never chosen globally.
type ScoringPolicy string

const (
	PolicyAllOrNothing ScoringPolicy = "all_or_nothing"
	PolicySetEquality  ScoringPolicy = "set_equality"
	PolicyThreshold    ScoringPolicy = "threshold"
	PolicyVariantSet   ScoringPolicy = "variant_set"
)

// ExerciseKind is a closed set of exercise behavior families. Each variant
// carries its own generation parameters; dispatch is by type switch.
type ExerciseKind interface {
	Name() string
	Policy() ScoringPolicy
	sealedKind()
}

// FillBlank is the standard drill: Count independent masked words.
type FillBlank struct {
	Count int
}

// UniformLetters is the inflectional-family drill: Lines rows of PerLine
// words each, with a quota of rows whose blanks share one letter.
type UniformLetters struct {
	Lines   int
	PerLine int
}

// BinaryChoice drills merged-versus-split writing with a 2:3 or 3:2 outcome
// mix across Count words.
type BinaryChoice struct {
	Count int
}

// SentenceSet serves Count multi-blank sentences with nested expected
// answers.
type SentenceSet struct {
	Count int
}

// Punctuation serves Count sentences whose blanks take punctuation marks.
type Punctuation struct {
	Count int
}

// MatchFive is the five-way А-Д error-type to sentence matching task.
type MatchFive struct{}

// MultiSelect is a choose-all-correct-options question.
type MultiSelect struct{}

// FreeText is a type-the-word question with several accepted forms.
type FreeText struct{}

// ErrorHunt asks to find the single erroneous sentence among Total.
type ErrorHunt struct {
	Total int
}

func (FillBlank) Name() string      { return "fill_blank" }
func (UniformLetters) Name() string { return "uniform_letters" }
func (BinaryChoice) Name() string   { return "binary_choice" }
func (SentenceSet) Name() string    { return "sentence_set" }
func (Punctuation) Name() string    { return "punctuation" }
func (MatchFive) Name() string      { return "match_five" }
func (MultiSelect) Name() string    { return "multi_select" }
func (FreeText) Name() string       { return "free_text" }
func (ErrorHunt) Name() string      { return "error_hunt" }

func (FillBlank) Policy() ScoringPolicy      { return PolicyAllOrNothing }
func (UniformLetters) Policy() ScoringPolicy { return PolicyAllOrNothing }
func (BinaryChoice) Policy() ScoringPolicy   { return PolicyAllOrNothing }
func (SentenceSet) Policy() ScoringPolicy    { return PolicyAllOrNothing }
func (Punctuation) Policy() ScoringPolicy    { return PolicyAllOrNothing }
func (MatchFive) Policy() ScoringPolicy      { return PolicyThreshold }
func (MultiSelect) Policy() ScoringPolicy    { return PolicySetEquality }
func (FreeText) Policy() ScoringPolicy       { return PolicyVariantSet }
func (ErrorHunt) Policy() ScoringPolicy      { return PolicyAllOrNothing }

func (FillBlank) sealedKind()      {}
func (UniformLetters) sealedKind() {}
func (BinaryChoice) sealedKind()   {}
func (SentenceSet) sealedKind()    {}
func (Punctuation) sealedKind()    {}
func (MatchFive) sealedKind()      {}
func (MultiSelect) sealedKind()    {}
func (FreeText) sealedKind()       {}
func (ErrorHunt) sealedKind()      {}

// Rule families that pin the exercise kind when the caller does not name one.
var (
	binaryChoiceRules = map[string]bool{
		"21": true, "32": true, "36": true, "46": true,
		"54": true, "56": true, "58": true, "581": true,
	}
	sentenceSetRules = map[string]bool{
		"1400": true, "1500": true,
	}
)

// GrammarErrorTypes lists the five-way matching error families in
// presentation order.
func GrammarErrorTypes() []string {
	return []string{"8100", "8200", "8300", "8400", "8500", "8600", "8700"}
}

func IsGrammarErrorType(ruleID string) bool {
	for _, t := range GrammarErrorTypes() {
		if t == ruleID {
			return true
		}
	}
	return false
}

func IsPunctuationRule(ruleID string) bool {
	return strings.HasPrefix(ruleID, "21") && len(ruleID) == 4
}

// KindByName maps a stored kind name back to its variant with default
// parameters. Used on the check side, where only the scoring policy matters.
func KindByName(name string) (ExerciseKind, bool) {
	switch name {
	case "fill_blank":
		return FillBlank{Count: 5}, true
	case "uniform_letters":
		return UniformLetters{Lines: 5, PerLine: 3}, true
	case "binary_choice":
		return BinaryChoice{Count: 5}, true
	case "sentence_set":
		return SentenceSet{Count: 3}, true
	case "punctuation":
		return Punctuation{Count: 5}, true
	case "match_five":
		return MatchFive{}, true
	case "multi_select":
		return MultiSelect{}, true
	case "free_text":
		return FreeText{}, true
	case "error_hunt":
		return ErrorHunt{Total: 5}, true
	}
	return nil, false
}

// ResolveKind picks the exercise kind for a rule set. An explicit tag wins;
// otherwise the rule family decides. Mixed or unknown families resolve to
// the standard drill only when every rule is a plain spelling rule.
func ResolveKind(tag string, ruleIDs []string) (ExerciseKind, bool) {
	if tag != "" {
		kind, ok := KindByName(tag)
		if !ok {
			return nil, false
		}
		if _, isUniform := kind.(UniformLetters); isUniform {
			for _, id := range ruleIDs {
				if !IsInflectional(id) {
					return nil, false
				}
			}
		}
		return kind, true
	}
	if len(ruleIDs) == 0 {
		return nil, false
	}

	allInflectional, allBinary, allSentence, allPunct, allGrammar := true, true, true, true, true
	for _, id := range ruleIDs {
		allInflectional = allInflectional && IsInflectional(id)
		allBinary = allBinary && binaryChoiceRules[id]
		allSentence = allSentence && sentenceSetRules[id]
		allPunct = allPunct && IsPunctuationRule(id)
		allGrammar = allGrammar && IsGrammarErrorType(id)
	}
	switch {
	case allInflectional:
		return UniformLetters{Lines: 5, PerLine: 3}, true
	case allBinary:
		return BinaryChoice{Count: 5}, true
	case allSentence:
		return SentenceSet{Count: 3}, true
	case allPunct:
		return Punctuation{Count: 5}, true
	case allGrammar:
		return ErrorHunt{Total: 5}, true
	}
	return FillBlank{Count: 5}, true
}
