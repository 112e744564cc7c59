// Package typo suggests near-miss corrections for palette inputs that
// matched nothing, e.g. "/comit" -> "/commit".
package typo

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

const (
	// DefaultThreshold is the minimum Jaro-Winkler similarity for a
	// suggestion. Below this the names are just different words.
	DefaultThreshold = 0.8

	// DefaultMaxSuggestions bounds how many corrections are offered.
	DefaultMaxSuggestions = 3
)

// Suggestion is one "did you mean" candidate.
type Suggestion struct {
	// Input is the name that matched nothing.
	Input string
	// Suggested is the known name it resembles.
	Suggested string
	// Similarity is the Jaro-Winkler score (0-1).
	Similarity float32
}

// Options configures a Suggester. Out-of-range values fall back to the
// defaults.
type Options struct {
	Threshold      float32
	MaxSuggestions int
}

// Suggester compares a failed input against known names.
type Suggester struct {
	threshold      float32
	maxSuggestions int
}

func NewSuggester(opts Options) *Suggester {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	return &Suggester{
		threshold:      opts.Threshold,
		maxSuggestions: opts.MaxSuggestions,
	}
}

// Suggest returns the known names most similar to input, best first.
// Comparison is case-insensitive; an exact (folded) match is not a typo
// and yields nothing.
func (s *Suggester) Suggest(input string, known []string) []Suggestion {
	folded := strings.ToLower(strings.TrimSpace(input))
	if folded == "" {
		return nil
	}

	var out []Suggestion
	for _, name := range known {
		candidate := strings.ToLower(name)
		if candidate == folded {
			return nil
		}
		sim, err := edlib.StringsSimilarity(folded, candidate, edlib.JaroWinkler)
		if err != nil || sim < s.threshold {
			continue
		}
		out = append(out, Suggestion{
			Input:      input,
			Suggested:  name,
			Similarity: sim,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Suggested < out[j].Suggested
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}
