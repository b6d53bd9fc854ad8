package engine

import (
	"slices"
	"sort"
	"time"
)

// sortLimit applies the shared ordering and truncation rules: stable sort
// ascending by start date, reverse for descending, then truncate to limit
// (limit <= 0 means unlimited). The stable ascending pass keeps original
// collection order for equal timestamps.
func sortLimit[T any](items []T, startOf func(T) time.Time, ascending bool, limit int) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return startOf(items[i]).Before(startOf(items[j]))
	})
	if !ascending {
		slices.Reverse(items)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
