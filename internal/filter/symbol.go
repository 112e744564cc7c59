package filter

import (
	"time"

	"github.com/mhoffs/typeahead/internal/fuzzy"
	"github.com/mhoffs/typeahead/internal/score"
)

// DefaultSymbolFreshnessCap bounds how much a symbol's file mtime can
// contribute. Symbol relevance is mostly about the name; a hot file
// should nudge, not dominate.
const DefaultSymbolFreshnessCap = 10

// SymbolOptions configures the code-symbol surface.
type SymbolOptions struct {
	// Recency rewards symbols the user recently jumped to. Defaults to
	// score.UsageRecency.
	Recency score.Decay
	// Freshness rewards symbols in recently modified files, capped at
	// FreshnessCap. Defaults to score.FileFreshness.
	Freshness score.Decay
	// FreshnessCap re-caps the freshness bonus at the call site.
	// Defaults to DefaultSymbolFreshnessCap.
	FreshnessCap int
}

// SymbolPolicy ranks code-symbol candidates. The camel-case bonus does
// the heavy lifting here ("mc" finding MyConfig); metadata only nudges.
type SymbolPolicy struct {
	recency      score.Decay
	freshness    score.Decay
	freshnessCap int
	tie          func(a, b Match) int
}

func NewSymbolPolicy(opts SymbolOptions) *SymbolPolicy {
	if opts.Recency == (score.Decay{}) {
		opts.Recency = score.UsageRecency
	}
	if opts.Freshness == (score.Decay{}) {
		opts.Freshness = score.FileFreshness
	}
	if opts.FreshnessCap <= 0 {
		opts.FreshnessCap = DefaultSymbolFreshnessCap
	}
	return &SymbolPolicy{
		recency:      opts.Recency,
		freshness:    opts.Freshness,
		freshnessCap: opts.FreshnessCap,
		tie: score.Chain(
			score.ByString[Match]("text", func(m Match) string { return m.Text }, score.Asc),
		),
	}
}

func (p *SymbolPolicy) Name() string { return "symbols" }

func (p *SymbolPolicy) Admit(Candidate) bool { return true }

func (p *SymbolPolicy) Score(c Candidate, q Query, now time.Time) (int, []int, bool) {
	s := fuzzy.Scorer{CaseFold: !q.CaseSensitive, WordBonus: true}
	m, ok := s.Score(c.Text, q.Norm)
	if !ok {
		return 0, nil, false
	}
	total := m.Score + p.recency.Bonus(c.LastUsed, now)
	total += min(p.freshness.Bonus(c.ModTime, now), p.freshnessCap)
	return total, m.Positions, true
}

func (p *SymbolPolicy) Tiebreak(a, b Match) int { return p.tie(a, b) }

// EmptyOrder keeps the provider's order; symbol sources emit in file
// order, which is what users expect from an unfiltered listing.
func (p *SymbolPolicy) EmptyOrder(a, b Match) int { return 0 }

var _ Policy = (*SymbolPolicy)(nil)
