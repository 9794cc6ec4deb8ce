// Package selector draws bank items for an exercise under the constraint
// quotas of each exercise kind. Randomness comes from an injected source so
// the quotas are testable.
package selector

import (
	"errors"
	"math/rand"
	"time"
)

// ErrInsufficient is returned when the candidate pool cannot satisfy the
// requested count. Callers never serve a partial exercise.
var ErrInsufficient = errors.New("selector: not enough candidates")

// Config bounds the constraint-satisfaction retries. With
// FallbackUnconstrained set, exhausted retries degrade to an unconstrained
// draw instead of failing.
type Config struct {
	MaxRetries            int
	FallbackUnconstrained bool
}

func DefaultConfig() Config {
	return Config{MaxRetries: 24, FallbackUnconstrained: true}
}

// Candidate is one drawable bank item. Index points back into the caller's
// item slice; Letter is the sampling key (resolved letter or outcome),
// Category the exclusion family, Owned whether the requesting learner
// contributed the item.
type Candidate struct {
	Index    int
	Letter   string
	Category string
	Owned    bool
}

type Selector struct {
	cfg Config
	rng *rand.Rand
}

// New builds a Selector. A nil rng gets a time-seeded source.
func New(cfg Config, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	return &Selector{cfg: cfg, rng: rng}
}

func (s *Selector) shuffled(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Pick draws count candidates, exhausting the learner's own contributions
// before falling back to the shared bank.
func (s *Selector) Pick(cands []Candidate, count int) ([]Candidate, error) {
	if count <= 0 || len(cands) < count {
		return nil, ErrInsufficient
	}
	var owned, shared []Candidate
	for _, c := range cands {
		if c.Owned {
			owned = append(owned, c)
		} else {
			shared = append(shared, c)
		}
	}
	picked := s.shuffled(owned)
	if len(picked) > count {
		picked = picked[:count]
	}
	if missing := count - len(picked); missing > 0 {
		picked = append(picked, s.shuffled(shared)[:missing]...)
	}
	return s.shuffled(picked), nil
}

// PickUniformLines draws lines groups of perLine candidates. Between 2 and
// 4 of the lines are uniform (every candidate shares one letter); the rest
// must mix at least two distinct letters. Bounded retries; exhaustion
// degrades per Config.
func (s *Selector) PickUniformLines(cands []Candidate, lines, perLine int) ([][]Candidate, error) {
	if lines <= 0 || perLine <= 0 || len(cands) < lines*perLine {
		return nil, ErrInsufficient
	}

	uniformCount := 2 + s.rng.Intn(3)
	if uniformCount > lines {
		uniformCount = lines
	}
	uniform := make([]bool, lines)
	for _, i := range s.rng.Perm(lines)[:uniformCount] {
		uniform[i] = true
	}

	pool := s.shuffled(cands)
	out := make([][]Candidate, lines)
	for i := 0; i < lines; i++ {
		var (
			group []Candidate
			err   error
		)
		if uniform[i] {
			group, pool, err = s.takeUniform(pool, perLine)
		} else {
			group, pool, err = s.takeMixed(pool, perLine)
		}
		if err != nil {
			return nil, err
		}
		out[i] = group
	}
	return out, nil
}

// takeUniform removes perLine candidates sharing one letter from the pool.
func (s *Selector) takeUniform(pool []Candidate, perLine int) ([]Candidate, []Candidate, error) {
	buckets := make(map[string][]int)
	for i, c := range pool {
		buckets[c.Letter] = append(buckets[c.Letter], i)
	}
	var letters []string
	for letter, idxs := range buckets {
		if len(idxs) >= perLine {
			letters = append(letters, letter)
		}
	}
	if len(letters) == 0 {
		if !s.cfg.FallbackUnconstrained {
			return nil, nil, ErrInsufficient
		}
		return takeAt(pool, s.rng.Perm(len(pool))[:perLine])
	}
	letter := letters[s.rng.Intn(len(letters))]
	return takeAt(pool, buckets[letter][:perLine])
}

// takeMixed removes perLine candidates spanning at least two letters.
func (s *Selector) takeMixed(pool []Candidate, perLine int) ([]Candidate, []Candidate, error) {
	if len(pool) < perLine {
		return nil, nil, ErrInsufficient
	}
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		idxs := s.rng.Perm(len(pool))[:perLine]
		seen := make(map[string]bool, perLine)
		for _, i := range idxs {
			seen[pool[i].Letter] = true
		}
		if len(seen) >= 2 || perLine < 2 {
			return takeAt(pool, idxs)
		}
	}
	if !s.cfg.FallbackUnconstrained {
		return nil, nil, ErrInsufficient
	}
	return takeAt(pool, s.rng.Perm(len(pool))[:perLine])
}

// PickRatio draws total candidates split 2:3 or 3:2 (orientation random)
// across the two outcome buckets. A short bucket degrades the split before
// failing outright.
func (s *Selector) PickRatio(a, b []Candidate, total int) ([]Candidate, error) {
	if total <= 0 || len(a)+len(b) < total {
		return nil, ErrInsufficient
	}
	na := total / 2
	if s.rng.Intn(2) == 1 {
		na = total - total/2
	}
	if na > len(a) {
		na = len(a)
	}
	nb := total - na
	if nb > len(b) {
		nb = len(b)
		na = total - nb
	}
	if na > len(a) {
		return nil, ErrInsufficient
	}
	picked := append(s.shuffled(a)[:na], s.shuffled(b)[:nb]...)
	return s.shuffled(picked), nil
}

// PickExclusion draws one wrong candidate plus total-1 right candidates
// whose category differs from the wrong one's. Returns the picks and the
// index of the wrong candidate within them.
func (s *Selector) PickExclusion(wrong, right []Candidate, total int) ([]Candidate, int, error) {
	if total <= 0 || len(wrong) == 0 {
		return nil, 0, ErrInsufficient
	}
	w := wrong[s.rng.Intn(len(wrong))]
	var pool []Candidate
	for _, c := range right {
		if c.Category != w.Category {
			pool = append(pool, c)
		}
	}
	if len(pool) < total-1 {
		return nil, 0, ErrInsufficient
	}
	picked := s.shuffled(pool)[:total-1]
	at := s.rng.Intn(total)
	picked = append(picked, Candidate{})
	copy(picked[at+1:], picked[at:])
	picked[at] = w
	return picked, at, nil
}

func takeAt(pool []Candidate, idxs []int) ([]Candidate, []Candidate, error) {
	taken := make([]Candidate, 0, len(idxs))
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		taken = append(taken, pool[i])
		drop[i] = true
	}
	rest := make([]Candidate, 0, len(pool)-len(idxs))
	for i, c := range pool {
		if !drop[i] {
			rest = append(rest, c)
		}
	}
	return taken, rest, nil
}
