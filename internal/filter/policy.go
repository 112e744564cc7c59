package filter

import "time"

// Policy is the scoring strategy that turns the generic engine into a
// concrete search surface. Implementations are stateless with respect
// to ranking: Score must be a pure function of its arguments.
type Policy interface {
	// Name identifies the surface in logs.
	Name() string
	// Admit reports whether the candidate belongs in this surface at
	// all, independent of any query (ignore rules). Inadmissible
	// candidates are invisible even to the wildcard query.
	Admit(c Candidate) bool
	// Score computes the effective score (match band plus domain
	// bonuses) and the matched rune positions. ok is false when the
	// candidate does not match the query.
	Score(c Candidate, q Query, now time.Time) (sc int, positions []int, ok bool)
	// Tiebreak orders matches with equal scores. The engine applies
	// score (descending) before it and the window index after it, so
	// the overall order is always total.
	Tiebreak(a, b Match) int
	// EmptyOrder orders the wildcard page. Returning 0 keeps the
	// caller's candidate order.
	EmptyOrder(a, b Match) int
}
