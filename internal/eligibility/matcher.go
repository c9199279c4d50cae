// internal/eligibility/matcher.go
package eligibility

import (
	"math"
	"sort"
)

// DefaultMinScore is the lowest score a program can have and still be returned.
const DefaultMinScore = 50

type Option func(*Matcher)

// WithMinScore raises the match threshold. Values below DefaultMinScore are ignored.
func WithMinScore(score int) Option {
	return func(m *Matcher) {
		m.minScore = max(score, DefaultMinScore)
	}
}

// WithLimit keeps only the n best matches. n <= 0 means no limit.
func WithLimit(n int) Option {
	return func(m *Matcher) {
		m.limit = n
	}
}

// Matcher scores profiles against a fixed program catalog. The catalog is
// copied on construction and never mutated, so a Matcher is safe for
// concurrent use.
type Matcher struct {
	catalog  []Program
	minScore int
	limit    int
}

func NewMatcher(catalog []Program, opts ...Option) *Matcher {
	m := &Matcher{
		catalog:  append([]Program(nil), catalog...),
		minScore: DefaultMinScore,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matcher) Catalog() []Program {
	return append([]Program(nil), m.catalog...)
}

// Match returns the programs profile qualifies for, best first. Ties keep
// catalog order.
func (m *Matcher) Match(profile Profile) []Match {
	matches := make([]Match, 0, len(m.catalog))
	for _, program := range m.catalog {
		eval := Evaluate(profile, program)
		if eval.Score < m.minScore {
			continue
		}
		matches = append(matches, Match{
			Program:          program,
			Score:            eval.Score,
			EligibilityNotes: Notes(profile, program, eval.Score),
			Criteria:         eval.Criteria,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if m.limit > 0 && len(matches) > m.limit {
		matches = matches[:m.limit]
	}
	return matches
}

// MatchProfileToPrograms matches profile against catalog with default options.
func MatchProfileToPrograms(profile Profile, catalog []Program) []Match {
	return NewMatcher(catalog).Match(profile)
}

// AverageTopScore is the rounded mean score of the n best matches, 0 when
// there are none. matches must already be sorted best first.
func AverageTopScore(matches []Match, n int) int {
	if n <= 0 || len(matches) == 0 {
		return 0
	}
	top := matches[:min(n, len(matches))]
	total := 0
	for _, m := range top {
		total += m.Score
	}
	return int(math.Round(float64(total) / float64(len(top))))
}
