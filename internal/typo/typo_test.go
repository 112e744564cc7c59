package typo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paletteNames = []string{"/commit", "/compact", "/clear", "/model", "/help"}

func TestSuggest_FindsNearMiss(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{})
	got := s.Suggest("/comit", paletteNames)

	require.NotEmpty(t, got)
	assert.Equal(t, "/commit", got[0].Suggested)
	assert.Equal(t, "/comit", got[0].Input)
	assert.GreaterOrEqual(t, got[0].Similarity, float32(DefaultThreshold))
}

func TestSuggest_BestFirst(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{})
	got := s.Suggest("/comit", paletteNames)

	require.GreaterOrEqual(t, len(got), 2)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
}

func TestSuggest_DistantNamesExcluded(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{})
	got := s.Suggest("/comit", paletteNames)

	for _, sg := range got {
		assert.NotEqual(t, "/help", sg.Suggested)
		assert.NotEqual(t, "/model", sg.Suggested)
	}
}

func TestSuggest_ExactMatchIsNotATypo(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{})
	assert.Empty(t, s.Suggest("/commit", paletteNames))
	assert.Empty(t, s.Suggest("/COMMIT", paletteNames), "comparison is case-insensitive")
}

func TestSuggest_EmptyInput(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{})
	assert.Empty(t, s.Suggest("", paletteNames))
	assert.Empty(t, s.Suggest("   ", paletteNames))
}

func TestSuggest_NoKnownNames(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{})
	assert.Empty(t, s.Suggest("/comit", nil))
}

func TestSuggest_MaxSuggestions(t *testing.T) {
	t.Parallel()

	known := []string{"/release", "/releases", "/realise", "/relase", "/rebase"}
	s := NewSuggester(Options{})

	got := s.Suggest("/releas", known)
	assert.LessOrEqual(t, len(got), DefaultMaxSuggestions)

	one := NewSuggester(Options{MaxSuggestions: 1}).Suggest("/releas", known)
	assert.Len(t, one, 1)
}

func TestSuggest_ThresholdFiltersLooseMatches(t *testing.T) {
	t.Parallel()

	strict := NewSuggester(Options{Threshold: 0.99})
	assert.Empty(t, strict.Suggest("/comit", paletteNames))
}

func TestNewSuggester_ClampsOptions(t *testing.T) {
	t.Parallel()

	s := NewSuggester(Options{Threshold: -1, MaxSuggestions: -5})
	assert.InDelta(t, DefaultThreshold, float64(s.threshold), 1e-6)
	assert.Equal(t, DefaultMaxSuggestions, s.maxSuggestions)

	over := NewSuggester(Options{Threshold: 1.5})
	assert.InDelta(t, DefaultThreshold, float64(over.threshold), 1e-6)
}
