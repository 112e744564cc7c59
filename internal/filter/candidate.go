// Package filter implements the per-domain ranking pipelines: a generic
// engine parameterized by a scoring policy, with debounced scheduling,
// incremental result-set caching and cross-domain merging. One engine
// instance serves one search surface inside one session.
package filter

import "time"

// Candidate is one entry of a search surface's source list. Only Text
// is required; the remaining fields are metadata supplied by the
// caller when known. Zero values mean "absent" and earn no bonus.
type Candidate struct {
	// Text is the string the query is matched against and the string
	// shown to the user (a relative path, a symbol name, a command
	// name, a history line).
	Text string
	// Path qualifies file-like candidates for ignore rules and depth
	// tiebreaks. Empty for non-file domains.
	Path string
	// ModTime is the backing file's modification time.
	ModTime time.Time
	// LastUsed is when the user last picked this candidate.
	LastUsed time.Time
	// UseCount is how often the user has picked this candidate.
	UseCount int
	// Kind distinguishes candidate flavors inside one surface
	// (symbol kind, "command" vs "agent").
	Kind string
	// Detail is an optional secondary display string (a command
	// description, a symbol's container).
	Detail string
}

// Match is one scored candidate: the effective score (band plus domain
// bonuses), the matched rune positions for highlighting, and the
// candidate's index in the scanned window (the final tiebreak).
type Match struct {
	Candidate
	Score     int
	Positions []int
	Index     int
}

// Result is one ranked page. Items is truncated to the display cap;
// Total counts every match found in the scanned window, so callers can
// render "12 of 431".
type Result struct {
	Items []Match
	Total int
}
