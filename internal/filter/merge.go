package filter

import "sort"

// MergeRanked folds already-ranked match lists from different surfaces
// into one page ordered by the shared score key (dropdowns that mix
// files and agents). Matching is never re-run here; the inputs carry
// their scores. Ties order by text, then by input list order. The
// union is truncated once, to limit (limit <= 0 keeps everything);
// Total sums the full input sizes.
func MergeRanked(limit int, lists ...[]Match) Result {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	merged := make([]Match, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Text < b.Text
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return Result{Items: merged, Total: total}
}
