package filter

import (
	"sort"
	"time"

	"github.com/mhoffs/typeahead/internal/fuzzy"
	"github.com/mhoffs/typeahead/internal/score"
)

// Per-keyword refinements for multi-word history queries. The
// whole-query band decides the big picture; keywords only shade it.
const (
	keywordExact    = 30
	keywordPrefix   = 20
	keywordContains = 10
)

// HistoryOptions configures the free-text history surface.
type HistoryOptions struct {
	// Recency rewards recently used entries. Defaults to
	// score.UsageRecency.
	Recency score.Decay
}

// HistoryPolicy ranks history lines. There is no fuzzy-subsequence
// band here: loose subsequences over long free-form lines match far
// too much. Single-word queries take the whole-query band
// (exact/prefix/contains); multi-word queries additionally require
// every keyword to match somewhere (AND), each adding a small
// refinement, so "install npm" still finds "npm install".
type HistoryPolicy struct {
	recency score.Decay
	tie     func(a, b Match) int
}

func NewHistoryPolicy(opts HistoryOptions) *HistoryPolicy {
	if opts.Recency == (score.Decay{}) {
		opts.Recency = score.UsageRecency
	}
	return &HistoryPolicy{
		recency: opts.Recency,
		tie: score.Chain(
			score.ByTime[Match]("last used", func(m Match) time.Time { return m.LastUsed }, score.Desc),
		),
	}
}

func (p *HistoryPolicy) Name() string { return "history" }

func (p *HistoryPolicy) Admit(Candidate) bool { return true }

func (p *HistoryPolicy) Score(c Candidate, q Query, now time.Time) (int, []int, bool) {
	s := fuzzy.Scorer{CaseFold: !q.CaseSensitive}

	whole := 0
	var wholePositions []int
	if m, ok := s.Score(c.Text, q.Norm); ok && m.Score >= fuzzy.ScoreContains {
		whole = m.Score
		wholePositions = m.Positions
	}

	if len(q.Keywords) <= 1 {
		if whole == 0 {
			return 0, nil, false
		}
		return whole + p.recency.Bonus(c.LastUsed, now), wholePositions, true
	}

	kwTotal := 0
	var positions []int
	for _, kw := range q.Keywords {
		m, ok := s.Score(c.Text, kw)
		if !ok || m.Score < fuzzy.ScoreContains {
			return 0, nil, false
		}
		switch {
		case m.Score >= fuzzy.ScoreExact:
			kwTotal += keywordExact
		case m.Score >= fuzzy.ScorePrefix:
			kwTotal += keywordPrefix
		default:
			kwTotal += keywordContains
		}
		positions = append(positions, m.Positions...)
	}

	total := whole + kwTotal + p.recency.Bonus(c.LastUsed, now)
	return total, dedupPositions(positions), true
}

// Tiebreak keeps equal scores in recency order; stores feed candidates
// newest-first, and the engine's index fallback preserves that too.
func (p *HistoryPolicy) Tiebreak(a, b Match) int { return p.tie(a, b) }

func (p *HistoryPolicy) EmptyOrder(a, b Match) int { return 0 }

var _ Policy = (*HistoryPolicy)(nil)

func dedupPositions(positions []int) []int {
	if len(positions) < 2 {
		return positions
	}
	sort.Ints(positions)
	out := positions[:1]
	for _, p := range positions[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
