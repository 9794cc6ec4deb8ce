package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/neurostat/exercise-service/internal/mask"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"github.com/neurostat/exercise-service/internal/selector"
	"github.com/neurostat/exercise-service/internal/session"
)

// matchLetters are the column labels of the five-way matching task, in
// fixed presentation order.
var matchLetters = []string{"А", "Б", "В", "Г", "Д"}

// drillItem is one bank item with its hidden answers already recovered.
type drillItem struct {
	example  *models.Example
	tmpl     *mask.Template
	answers  []string
	letter   string // first answer, the sampling key
	groupKey string // sub-alphabet key or owning rule id
	owned    bool
}

// ===== CANDIDATE LOADING =====

// rulesFor resolves and verifies the requested rule set. Any unknown id
// fails the whole request.
func (s *exerciseService) rulesFor(ctx context.Context, ruleIDs []string) (map[string]*models.Rule, error) {
	if len(ruleIDs) == 0 {
		return nil, fmt.Errorf("%w: empty rule set", ErrUnsupportedRuleSet)
	}
	rules, err := s.repo.Rule().GetByIDs(ctx, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("get rules %v: %w", ruleIDs, err)
	}
	byID := make(map[string]*models.Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	for _, id := range ruleIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: unknown rule %q", ErrUnsupportedRuleSet, id)
		}
	}
	return byID, nil
}

// loadDrillItems reads the active pool for the rule set and recovers each
// item's answers. Sentence kinds take their answers from the explanation
// column, word kinds from the ground-truth text. Items that fail parsing or
// extraction are dropped, not fatal. Another learner's personal items are
// never served.
func (s *exerciseService) loadDrillItems(ctx context.Context, req *models.GenerateRequest, sentence bool) ([]drillItem, error) {
	examples, err := s.repo.Example().GetForDrill(ctx, req.RuleIDs)
	if err != nil {
		return nil, fmt.Errorf("load examples for %v: %w", req.RuleIDs, err)
	}

	items := make([]drillItem, 0, len(examples))
	for _, e := range examples {
		if e.HasError {
			continue
		}
		if e.Source == models.SourceUser && e.CreatedBy != req.UserID {
			continue
		}
		if !e.AppliesToGrade(req.Grade) {
			continue
		}
		tmpl, err := mask.Parse(e.MaskedText)
		if err != nil {
			s.logger.Debug("Skipping malformed mask", "example_id", e.ID, "error", err)
			continue
		}
		var answers []string
		if sentence {
			answers, err = mask.ExtractSentence(tmpl, e.Explanation)
		} else {
			// Single-blank kinds must reject multi-marker masks, or the
			// rendered blanks would outnumber the stored answers.
			if tmpl.MarkerCount() != 1 {
				s.logger.Debug("Skipping multi-blank mask in single-blank drill",
					"example_id", e.ID,
					"markers", tmpl.MarkerCount())
				continue
			}
			var answer string
			answer, err = mask.Extract(e.Text, tmpl)
			answers = []string{answer}
		}
		if err != nil {
			s.logger.Debug("Skipping unextractable example", "example_id", e.ID, "error", err)
			continue
		}
		letter := answers[0]
		groupKey := e.RuleID
		if sg, ok := models.SubgroupFor(e.RuleID, letter); ok {
			groupKey = sg
		}
		items = append(items, drillItem{
			example:  e,
			tmpl:     tmpl,
			answers:  answers,
			letter:   letter,
			groupKey: groupKey,
			owned:    e.IsUserContributed() && e.CreatedBy == req.UserID,
		})
	}
	return items, nil
}

func toCandidates(items []drillItem) []selector.Candidate {
	cands := make([]selector.Candidate, len(items))
	for i, it := range items {
		cands[i] = selector.Candidate{
			Index:  i,
			Letter: it.letter,
			Owned:  it.owned,
		}
	}
	return cands
}

// assemble renumbers the picked items and builds the shared response and
// record skeletons.
func (s *exerciseService) assemble(items []drillItem, picked []selector.Candidate, prefix string, rules map[string]*models.Rule) (*models.GenerateResponse, *session.Record, mask.Numbered) {
	maskItems := make([]mask.Item, len(picked))
	exampleIDs := make([]uint, len(picked))
	for i, c := range picked {
		it := items[c.Index]
		groups := make([]string, it.tmpl.MarkerCount())
		for g := range groups {
			groups[g] = it.groupKey
		}
		maskItems[i] = mask.Item{Template: it.tmpl, Answers: it.answers, GroupKeys: groups}
		exampleIDs[i] = it.example.ID
	}
	num := mask.Renumber(maskItems, prefix)

	resp := &models.GenerateResponse{
		Lines:           num.Lines,
		LetterGroups:    num.LetterGroups,
		SubgroupLetters: s.groupLetters(num.LetterGroups, rules),
	}
	rec := &session.Record{
		ExampleIDs:   exampleIDs,
		Expected:     num.Expected,
		LetterGroups: num.LetterGroups,
	}
	return resp, rec, num
}

// groupLetters resolves each used group key to the letters the client
// should offer: the fixed sub-alphabet when the key names one, the owning
// rule's alphabet otherwise.
func (s *exerciseService) groupLetters(letterGroups map[string]string, rules map[string]*models.Rule) map[string][]string {
	out := make(map[string][]string)
	for _, key := range letterGroups {
		if _, done := out[key]; done {
			continue
		}
		if letters := models.SubgroupLetters(key); letters != nil {
			out[key] = letters
			continue
		}
		if rule, ok := rules[key]; ok {
			out[key] = rule.LetterList()
		}
	}
	return out
}

func insufficient(err error, ruleIDs []string, need, have int) error {
	if errors.Is(err, selector.ErrInsufficient) {
		return fmt.Errorf("%w: rules %v need %d items, have %d", ErrInsufficientContent, ruleIDs, need, have)
	}
	return err
}

// ===== KIND BUILDERS =====

func (s *exerciseService) buildFillBlank(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector, prefix string, count int) (*models.GenerateResponse, *session.Record, error) {
	rules, err := s.rulesFor(ctx, req.RuleIDs)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.loadDrillItems(ctx, req, false)
	if err != nil {
		return nil, nil, err
	}
	picked, err := sel.Pick(toCandidates(items), count)
	if err != nil {
		return nil, nil, insufficient(err, req.RuleIDs, count, len(items))
	}
	resp, rec, _ := s.assemble(items, picked, prefix, rules)
	return resp, rec, nil
}

func (s *exerciseService) buildUniformLetters(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector, prefix string, k models.UniformLetters) (*models.GenerateResponse, *session.Record, error) {
	rules, err := s.rulesFor(ctx, req.RuleIDs)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.loadDrillItems(ctx, req, false)
	if err != nil {
		return nil, nil, err
	}
	lines, err := sel.PickUniformLines(toCandidates(items), k.Lines, k.PerLine)
	if err != nil {
		return nil, nil, insufficient(err, req.RuleIDs, k.Lines*k.PerLine, len(items))
	}

	var picked []selector.Candidate
	for _, line := range lines {
		picked = append(picked, line...)
	}
	resp, rec, num := s.assemble(items, picked, prefix, rules)

	// One rendered row per drill line, words comma-separated.
	rendered := make([]string, 0, k.Lines)
	for i := 0; i < len(num.Lines); i += k.PerLine {
		end := i + k.PerLine
		if end > len(num.Lines) {
			end = len(num.Lines)
		}
		rendered = append(rendered, strings.Join(num.Lines[i:end], ", "))
	}
	resp.Lines = rendered
	return resp, rec, nil
}

func (s *exerciseService) buildBinaryChoice(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector, prefix string, count int) (*models.GenerateResponse, *session.Record, error) {
	rules, err := s.rulesFor(ctx, req.RuleIDs)
	if err != nil {
		return nil, nil, err
	}
	outcomes := unionLetters(req.RuleIDs, rules)
	if len(outcomes) < 2 {
		return nil, nil, fmt.Errorf("%w: rules %v offer %d outcomes, need 2", ErrUnsupportedRuleSet, req.RuleIDs, len(outcomes))
	}
	outcomes = outcomes[:2]

	items, err := s.loadDrillItems(ctx, req, false)
	if err != nil {
		return nil, nil, err
	}
	var a, b []selector.Candidate
	for i, it := range items {
		c := selector.Candidate{Index: i, Letter: it.letter, Owned: it.owned}
		switch it.letter {
		case outcomes[0]:
			a = append(a, c)
		case outcomes[1]:
			b = append(b, c)
		}
	}
	picked, err := sel.PickRatio(a, b, count)
	if err != nil {
		return nil, nil, insufficient(err, req.RuleIDs, count, len(a)+len(b))
	}
	resp, rec, _ := s.assemble(items, picked, prefix, rules)
	resp.ChoiceLetters = outcomes
	return resp, rec, nil
}

func (s *exerciseService) buildSentenceSet(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector, prefix string, count int) (*models.GenerateResponse, *session.Record, error) {
	rules, err := s.rulesFor(ctx, req.RuleIDs)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.loadDrillItems(ctx, req, true)
	if err != nil {
		return nil, nil, err
	}
	picked, err := sel.Pick(toCandidates(items), count)
	if err != nil {
		return nil, nil, insufficient(err, req.RuleIDs, count, len(items))
	}
	resp, rec, num := s.assemble(items, picked, prefix, rules)
	rec.ExpectedNested = num.ExpectedNested
	return resp, rec, nil
}

func (s *exerciseService) buildPunctuation(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector, prefix string, count int) (*models.GenerateResponse, *session.Record, error) {
	rules, err := s.rulesFor(ctx, req.RuleIDs)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.loadDrillItems(ctx, req, true)
	if err != nil {
		return nil, nil, err
	}
	picked, err := sel.Pick(toCandidates(items), count)
	if err != nil {
		return nil, nil, insufficient(err, req.RuleIDs, count, len(items))
	}
	resp, rec, _ := s.assemble(items, picked, prefix, rules)

	letters := unionLetters(req.RuleIDs, rules)
	if len(letters) == 0 {
		letters = models.PunctuationChoiceLetters()
	}
	resp.ChoiceLetters = letters
	return resp, rec, nil
}

func (s *exerciseService) buildMatchFive(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector) (*models.GenerateResponse, *session.Record, error) {
	typeIDs := req.RuleIDs
	if !allGrammarTypes(typeIDs) || len(typeIDs) < len(matchLetters) {
		typeIDs = models.GrammarErrorTypes()
	}
	rules, err := s.rulesFor(ctx, typeIDs)
	if err != nil {
		return nil, nil, err
	}
	examples, err := s.repo.Example().GetForDrill(ctx, typeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load grammar examples: %w", err)
	}

	wrongByType := make(map[string][]*models.Example)
	var clean []*models.Example
	for _, e := range examples {
		if e.HasError {
			wrongByType[e.ErrorType] = append(wrongByType[e.ErrorType], e)
		} else {
			clean = append(clean, e)
		}
	}

	var typeCands []selector.Candidate
	for i, id := range typeIDs {
		if len(wrongByType[id]) > 0 {
			typeCands = append(typeCands, selector.Candidate{Index: i, Letter: id})
		}
	}
	pickedTypes, err := sel.Pick(typeCands, len(matchLetters))
	if err != nil {
		return nil, nil, insufficient(err, typeIDs, len(matchLetters), len(typeCands))
	}

	columns := make([]models.MatchingColumn, len(pickedTypes))
	chosen := make([]*models.Example, len(pickedTypes))
	for i, tc := range pickedTypes {
		typeID := tc.Letter
		pool := wrongByType[typeID]
		pc, err := sel.Pick(candidateIndexes(len(pool)), 1)
		if err != nil {
			return nil, nil, insufficient(err, []string{typeID}, 1, len(pool))
		}
		chosen[i] = pool[pc[0].Index]
		columns[i] = models.MatchingColumn{
			Letter: matchLetters[i],
			TypeID: typeID,
			Title:  rules[typeID].Name,
		}
	}

	// Up to two error-free distractor sentences keep guessing honest.
	sentences := append([]*models.Example{}, chosen...)
	if len(clean) > 0 {
		n := 2
		if n > len(clean) {
			n = len(clean)
		}
		dc, err := sel.Pick(candidateIndexes(len(clean)), n)
		if err == nil {
			for _, c := range dc {
				sentences = append(sentences, clean[c.Index])
			}
		}
	}

	order, err := sel.Pick(candidateIndexes(len(sentences)), len(sentences))
	if err != nil {
		return nil, nil, err
	}
	numbered := make([]models.NumberedSentence, len(order))
	numberOf := make(map[uint]int, len(order))
	for i, c := range order {
		e := sentences[c.Index]
		numbered[i] = models.NumberedSentence{Number: i + 1, Text: e.Text}
		numberOf[e.ID] = i + 1
	}

	expected := make(map[string]string, len(columns))
	for i, col := range columns {
		expected[col.Letter] = strconv.Itoa(numberOf[chosen[i].ID])
	}

	resp := &models.GenerateResponse{Columns: columns, Sentences: numbered}
	rec := &session.Record{ExpectedMap: expected, CaseSensitive: true}
	return resp, rec, nil
}

func (s *exerciseService) buildErrorHunt(ctx context.Context, req *models.GenerateRequest, sel *selector.Selector, total int) (*models.GenerateResponse, *session.Record, error) {
	typeIDs := req.RuleIDs
	if !allGrammarTypes(typeIDs) {
		typeIDs = models.GrammarErrorTypes()
	}
	if _, err := s.rulesFor(ctx, typeIDs); err != nil {
		return nil, nil, err
	}
	examples, err := s.repo.Example().GetForDrill(ctx, typeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load grammar examples: %w", err)
	}

	var wrong, right []selector.Candidate
	for i, e := range examples {
		c := selector.Candidate{Index: i, Category: e.ErrorType}
		if e.HasError {
			wrong = append(wrong, c)
		} else {
			right = append(right, c)
		}
	}
	picked, at, err := sel.PickExclusion(wrong, right, total)
	if err != nil {
		return nil, nil, insufficient(err, typeIDs, total, len(wrong)+len(right))
	}

	numbered := make([]models.NumberedSentence, len(picked))
	exampleIDs := make([]uint, len(picked))
	for i, c := range picked {
		numbered[i] = models.NumberedSentence{Number: i + 1, Text: examples[c.Index].Text}
		exampleIDs[i] = examples[c.Index].ID
	}

	resp := &models.GenerateResponse{Sentences: numbered}
	rec := &session.Record{
		ExampleIDs: exampleIDs,
		Expected:   []string{strconv.Itoa(at + 1)},
	}
	return resp, rec, nil
}

func (s *exerciseService) buildMultiSelect(ctx context.Context) (*models.GenerateResponse, *session.Record, error) {
	q, err := s.repo.Question().GetRandomByKind(ctx, models.QuestionMultipleChoice)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, fmt.Errorf("%w: no multiple choice questions", ErrInsufficientContent)
		}
		return nil, nil, fmt.Errorf("get question: %w", err)
	}
	options := make([]models.AnswerOption, len(q.Options))
	for i, o := range q.Options {
		options[i] = models.AnswerOption{Number: o.Number, Text: o.Text}
	}
	resp := &models.GenerateResponse{Prompt: q.Text, Options: options}
	rec := &session.Record{ExpectedSet: q.CorrectOptionNumbers()}
	return resp, rec, nil
}

func (s *exerciseService) buildFreeText(ctx context.Context) (*models.GenerateResponse, *session.Record, error) {
	q, err := s.repo.Question().GetRandomByKind(ctx, models.QuestionFreeText)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, fmt.Errorf("%w: no free text questions", ErrInsufficientContent)
		}
		return nil, nil, fmt.Errorf("get question: %w", err)
	}
	resp := &models.GenerateResponse{Prompt: q.Text}
	rec := &session.Record{Variants: q.AcceptedVariants()}
	return resp, rec, nil
}

// ===== SMALL HELPERS =====

func unionLetters(ruleIDs []string, rules map[string]*models.Rule) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range ruleIDs {
		for _, l := range rules[id].LetterList() {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

func allGrammarTypes(ruleIDs []string) bool {
	if len(ruleIDs) == 0 {
		return false
	}
	for _, id := range ruleIDs {
		if !models.IsGrammarErrorType(id) {
			return false
		}
	}
	return true
}

func candidateIndexes(n int) []selector.Candidate {
	out := make([]selector.Candidate, n)
	for i := range out {
		out[i] = selector.Candidate{Index: i}
	}
	return out
}
