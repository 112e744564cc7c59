// Package fuzzy implements the shared match/score kernel used by every
// search surface: exact, prefix, substring and subsequence matching with
// disjoint score bands and word-boundary bonuses.
package fuzzy

import "unicode"

// Score bands. The bands are disjoint: a match in a higher band always
// outranks a match in a lower band, regardless of in-band bonuses.
const (
	ScoreExact    = 1000
	ScorePrefix   = 800
	ScoreContains = 600
	ScoreFuzzy    = 400
)

// In-band adjustments. boundaryBonus applies to a matched rune at the
// string start or after a separator; camelBonus applies to an uppercase
// rune matched right after a lowercase one, and outweighs it so "mc"
// prefers MyConfig over my-config. maxBonusTotal keeps the sum below
// the 200-point band gap.
const (
	boundaryBonus      = 20
	camelBonus         = 30
	maxBonusTotal      = 120
	containsStartBonus = 40
)

// Match is the outcome of scoring one candidate string.
// Positions are rune indices into the original text, suitable for
// highlighting. For exact matches they cover the whole text, for prefix
// and contains matches the contiguous matched range, and for fuzzy
// matches the greedy leftmost index of every query rune.
type Match struct {
	Score     int
	Positions []int
}

// Scorer holds the two knobs the surfaces vary on. The zero value is a
// case-sensitive scorer without word bonuses; New returns the common
// configuration.
type Scorer struct {
	// CaseFold lowercases both sides before matching. Bonus detection
	// always inspects the original runes.
	CaseFold bool
	// WordBonus enables the word-boundary / camel-case bonus for the
	// contains and fuzzy bands.
	WordBonus bool
}

// New returns a case-insensitive scorer with word bonuses enabled.
func New() Scorer {
	return Scorer{CaseFold: true, WordBonus: true}
}

// Score matches query against text. It reports false when the query is
// not a subsequence of the text. An empty query matches everything with
// score zero and no positions.
func (s Scorer) Score(text, query string) (Match, bool) {
	tr := []rune(text)
	qr := []rune(query)

	if len(qr) == 0 {
		return Match{}, true
	}
	if len(qr) > len(tr) {
		return Match{}, false
	}

	ft := s.fold(tr)
	fq := s.fold(qr)

	if len(ft) == len(fq) && runesEqual(ft, fq) {
		return Match{Score: ScoreExact, Positions: spanPositions(0, len(tr))}, true
	}
	if runesEqual(ft[:len(fq)], fq) {
		return Match{Score: ScorePrefix, Positions: spanPositions(0, len(fq))}, true
	}
	if start := indexRunes(ft, fq); start >= 0 {
		positions := spanPositions(start, len(fq))
		score := ScoreContains + s.wordBonus(tr, positions)
		if extra := containsStartBonus - start; extra > 0 {
			score += extra
		}
		return Match{Score: score, Positions: positions}, true
	}

	positions := make([]int, 0, len(fq))
	qi := 0
	for ti := 0; ti < len(ft) && qi < len(fq); ti++ {
		if ft[ti] == fq[qi] {
			positions = append(positions, ti)
			qi++
		}
	}
	if qi < len(fq) {
		return Match{}, false
	}
	return Match{Score: ScoreFuzzy + s.wordBonus(tr, positions), Positions: positions}, true
}

// wordBonus sums the per-rune boundary bonuses over the matched
// positions of the original (unfolded) text, capped at maxBonusTotal.
func (s Scorer) wordBonus(text []rune, positions []int) int {
	if !s.WordBonus {
		return 0
	}
	total := 0
	for _, p := range positions {
		if p == 0 {
			total += boundaryBonus
			continue
		}
		prev := text[p-1]
		switch {
		case unicode.IsUpper(text[p]) && unicode.IsLower(prev):
			total += camelBonus
		case isSeparator(prev):
			total += boundaryBonus
		}
	}
	if total > maxBonusTotal {
		total = maxBonusTotal
	}
	return total
}

func (s Scorer) fold(rs []rune) []rune {
	if !s.CaseFold {
		return rs
	}
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', '.', '/', ' ':
		return true
	}
	return false
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// indexRunes returns the rune index of the first occurrence of needle
// in haystack, or -1. Sizes here are small enough that the naive scan
// beats anything cleverer.
func indexRunes(haystack, needle []rune) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func spanPositions(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
