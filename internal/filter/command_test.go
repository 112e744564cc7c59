package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPolicy_WordOnlyMatchIgnoresArgumentTail(t *testing.T) {
	t.Parallel()
	cands := candidatesOf("/model", "/commit", "/help")

	palette := commandEngine(t, CommandOptions{MatchWordOnly: true})
	res := palette.Rank(cands, "/mod high effort", 0)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "/model", res.Items[0].Text)

	// Matching the whole input would find nothing.
	plain := commandEngine(t, CommandOptions{})
	assert.Zero(t, plain.Rank(cands, "/mod high effort", 0).Total)
}

func TestCommandPolicy_FrequentlyUsedWinsTie(t *testing.T) {
	t.Parallel()
	e := commandEngine(t, CommandOptions{})
	cands := []Candidate{
		{Text: "/stage", UseCount: 10},
		{Text: "/status", UseCount: 11},
	}

	res := e.Rank(cands, "/sta", 0)

	require.Equal(t, 2, res.Total)
	// 10 and 11 uses land in the same log bucket, so the scores tie and
	// the raw count decides.
	assert.Equal(t, res.Items[0].Score, res.Items[1].Score)
	assert.Equal(t, []string{"/status", "/stage"}, textsOf(res.Items))
}

func TestCommandPolicy_RecentPickWins(t *testing.T) {
	t.Parallel()
	e := commandEngine(t, CommandOptions{})
	cands := []Candidate{
		{Text: "/commit"},
		{Text: "/compact", LastUsed: testNow.Add(-time.Hour)},
	}

	res := e.Rank(cands, "/com", 0)

	require.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"/compact", "/commit"}, textsOf(res.Items))
	assert.Equal(t, 50, res.Items[0].Score-res.Items[1].Score)
}

func TestCommandPolicy_WildcardOrder(t *testing.T) {
	t.Parallel()
	e := commandEngine(t, CommandOptions{})
	cands := []Candidate{
		{Text: "/review"},
		{Text: "/commit", UseCount: 5},
		{Text: "/apply", LastUsed: testNow.Add(-24 * time.Hour)},
	}

	res := e.Rank(cands, "", 0)

	// Recently used, then heavily used, then alphabetical.
	assert.Equal(t, []string{"/apply", "/commit", "/review"}, textsOf(res.Items))
}

func TestCommandPolicy_SurfaceName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "commands", NewCommandPolicy(CommandOptions{}).Name())
	assert.Equal(t, "agents", NewCommandPolicy(CommandOptions{Surface: "agents"}).Name())
}

func TestSplitInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		word  string
		args  []string
	}{
		{name: "bare command", input: "/help", word: "/help"},
		{name: "command with args", input: "/model high effort", word: "/model", args: []string{"high", "effort"}},
		{name: "quoted arg", input: "/model 'high effort'", word: "/model", args: []string{"high effort"}},
		{name: "surrounding space", input: "  /help  ", word: "/help"},
		{name: "unbalanced quote falls back to fields", input: `/run "half`, word: "/run", args: []string{`"half`}},
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			word, args := SplitInput(tt.input)
			assert.Equal(t, tt.word, word)
			if len(tt.args) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
