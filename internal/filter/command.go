package filter

import (
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/mhoffs/typeahead/internal/fuzzy"
	"github.com/mhoffs/typeahead/internal/score"
)

// CommandOptions configures a command-palette surface. The same policy
// serves slash commands and agent candidates; they differ only in the
// surface name and whether the query carries an argument tail.
type CommandOptions struct {
	// Surface names the policy in logs. Defaults to "commands".
	Surface string
	// Recency rewards recently picked entries. Defaults to
	// score.UsageRecency.
	Recency score.Decay
	// MatchWordOnly matches only the first word of the query, so
	// "/model high effort" still finds /model. Slash palettes set it;
	// agent pickers leave it off.
	MatchWordOnly bool
}

// CommandPolicy ranks palette entries by name match, pick frequency
// and pick recency. Heavily used commands win ties.
type CommandPolicy struct {
	surface       string
	recency       score.Decay
	matchWordOnly bool
	tie           func(a, b Match) int
	empty         func(a, b Match) int
}

func NewCommandPolicy(opts CommandOptions) *CommandPolicy {
	if opts.Surface == "" {
		opts.Surface = "commands"
	}
	if opts.Recency == (score.Decay{}) {
		opts.Recency = score.UsageRecency
	}
	return &CommandPolicy{
		surface:       opts.Surface,
		recency:       opts.Recency,
		matchWordOnly: opts.MatchWordOnly,
		tie: score.Chain(
			score.ByInt[Match]("uses", func(m Match) int64 { return int64(m.UseCount) }, score.Desc),
			score.ByString[Match]("text", func(m Match) string { return m.Text }, score.Asc),
		),
		empty: score.Chain(
			score.ByTime[Match]("last used", func(m Match) time.Time { return m.LastUsed }, score.Desc),
			score.ByInt[Match]("uses", func(m Match) int64 { return int64(m.UseCount) }, score.Desc),
			score.ByString[Match]("text", func(m Match) string { return m.Text }, score.Asc),
		),
	}
}

func (p *CommandPolicy) Name() string { return p.surface }

func (p *CommandPolicy) Admit(Candidate) bool { return true }

func (p *CommandPolicy) Score(c Candidate, q Query, now time.Time) (int, []int, bool) {
	needle := q.Norm
	if p.matchWordOnly && len(q.Keywords) > 0 {
		needle = q.Keywords[0]
	}
	s := fuzzy.Scorer{CaseFold: !q.CaseSensitive, WordBonus: true}
	m, ok := s.Score(c.Text, needle)
	if !ok {
		return 0, nil, false
	}
	total := m.Score + score.Frequency(c.UseCount) + p.recency.Bonus(c.LastUsed, now)
	return total, m.Positions, true
}

func (p *CommandPolicy) Tiebreak(a, b Match) int { return p.tie(a, b) }

// EmptyOrder shows recently used commands first, then the heavily
// used, then alphabetical.
func (p *CommandPolicy) EmptyOrder(a, b Match) int { return p.empty(a, b) }

var _ Policy = (*CommandPolicy)(nil)

// SplitInput splits a palette input line into the command word and its
// argument tail, honoring shell-style quoting ("/model 'high effort'").
// Unbalanced quotes fall back to whitespace fields so a half-typed
// line still parses.
func SplitInput(input string) (word string, args []string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}
	parts, err := shlex.Split(trimmed)
	if err != nil || len(parts) == 0 {
		fields := strings.Fields(trimmed)
		return fields[0], fields[1:]
	}
	return parts[0], parts[1:]
}
