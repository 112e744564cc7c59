package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mhoffs/typeahead/internal/fuzzy"
	"github.com/mhoffs/typeahead/internal/score"
)

// FileOptions configures the file completion surface.
type FileOptions struct {
	// Freshness rewards recently modified files. Defaults to
	// score.FileFreshness.
	Freshness score.Decay
	// IgnoreGlobs hides matching paths entirely (doublestar patterns,
	// e.g. "**/node_modules/**").
	IgnoreGlobs []string
}

// FilePolicy ranks file path candidates: fuzzy bands with word
// bonuses, plus pick-frequency and modification-time bonuses. Shallow
// paths win ties, then lexicographic order.
type FilePolicy struct {
	freshness score.Decay
	globs     []string
	tie       func(a, b Match) int
	empty     func(a, b Match) int
}

// NewFilePolicy validates the ignore globs and builds the policy.
func NewFilePolicy(opts FileOptions) (*FilePolicy, error) {
	for _, g := range opts.IgnoreGlobs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid ignore pattern %q", g)
		}
	}
	if opts.Freshness == (score.Decay{}) {
		opts.Freshness = score.FileFreshness
	}
	return &FilePolicy{
		freshness: opts.Freshness,
		globs:     opts.IgnoreGlobs,
		tie: score.Chain(
			score.ByInt[Match]("depth", func(m Match) int64 { return int64(pathDepth(m.Candidate)) }, score.Asc),
			score.ByString[Match]("text", func(m Match) string { return m.Text }, score.Asc),
		),
		empty: score.Chain(
			score.ByTime[Match]("mtime", func(m Match) time.Time { return m.ModTime }, score.Desc),
		),
	}, nil
}

func (p *FilePolicy) Name() string { return "files" }

// Admit hides candidates whose path matches an ignore glob.
func (p *FilePolicy) Admit(c Candidate) bool {
	path := c.Path
	if path == "" {
		path = c.Text
	}
	for _, g := range p.globs {
		if ok, _ := doublestar.Match(g, path); ok {
			return false
		}
	}
	return true
}

func (p *FilePolicy) Score(c Candidate, q Query, now time.Time) (int, []int, bool) {
	s := fuzzy.Scorer{CaseFold: !q.CaseSensitive, WordBonus: true}
	m, ok := s.Score(c.Text, q.Norm)
	if !ok {
		return 0, nil, false
	}
	total := m.Score + score.Frequency(c.UseCount) + p.freshness.Bonus(c.ModTime, now)
	return total, m.Positions, true
}

func (p *FilePolicy) Tiebreak(a, b Match) int { return p.tie(a, b) }

// EmptyOrder shows recently modified files first on the wildcard page.
func (p *FilePolicy) EmptyOrder(a, b Match) int { return p.empty(a, b) }

func pathDepth(c Candidate) int {
	path := c.Path
	if path == "" {
		path = c.Text
	}
	return strings.Count(path, "/")
}

var _ Policy = (*FilePolicy)(nil)
