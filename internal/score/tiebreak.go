package score

import (
	"strings"
	"time"
)

// Order is the direction of a tiebreak criterion.
type Order int

const (
	Asc Order = iota
	Desc
)

// Criterion is one named step of a tiebreak chain. Compare follows the
// usual contract: negative when a sorts before b.
type Criterion[T any] struct {
	Name    string
	Compare func(a, b T) int
}

// ByInt builds a criterion from an integer key.
func ByInt[T any](name string, key func(T) int64, order Order) Criterion[T] {
	return Criterion[T]{Name: name, Compare: func(a, b T) int {
		return direct(compareInt64(key(a), key(b)), order)
	}}
}

// ByString builds a criterion from a string key (lexicographic).
func ByString[T any](name string, key func(T) string, order Order) Criterion[T] {
	return Criterion[T]{Name: name, Compare: func(a, b T) int {
		return direct(strings.Compare(key(a), key(b)), order)
	}}
}

// ByTime builds a criterion from a timestamp key. Asc means earlier
// first; Desc means most recent first.
func ByTime[T any](name string, key func(T) time.Time, order Order) Criterion[T] {
	return Criterion[T]{Name: name, Compare: func(a, b T) int {
		ta, tb := key(a), key(b)
		switch {
		case ta.Before(tb):
			return direct(-1, order)
		case ta.After(tb):
			return direct(1, order)
		default:
			return 0
		}
	}}
}

// Chain composes criteria in priority order into a single comparator.
// The first criterion that distinguishes a and b decides; the result is
// zero only when every criterion ties.
func Chain[T any](criteria ...Criterion[T]) func(a, b T) int {
	return func(a, b T) int {
		for _, c := range criteria {
			if r := c.Compare(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// ChainNames lists the criteria of a chain for debug logging.
func ChainNames[T any](criteria ...Criterion[T]) []string {
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.Name
	}
	return names
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func direct(cmp int, order Order) int {
	if order == Desc {
		return -cmp
	}
	return cmp
}
