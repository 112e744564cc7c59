package filter

import "strings"

// Query is a normalized search input as seen by a policy. Norm is the
// trimmed (and, unless case-sensitive, lowercased) form; Keywords are
// its whitespace-separated fields. A Query with an empty Norm is the
// wildcard: every candidate matches.
type Query struct {
	Raw           string
	Norm          string
	Keywords      []string
	CaseSensitive bool
}

func newQuery(raw string, caseSensitive bool) Query {
	norm := strings.TrimSpace(raw)
	if !caseSensitive {
		norm = strings.ToLower(norm)
	}
	return Query{
		Raw:           raw,
		Norm:          norm,
		Keywords:      strings.Fields(norm),
		CaseSensitive: caseSensitive,
	}
}

// IsWildcard reports whether the query is empty after normalization.
func (q Query) IsWildcard() bool {
	return q.Norm == ""
}
