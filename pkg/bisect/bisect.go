// Package bisect locates the enclosing segment of a query in a sorted array.
//
// Every lookup in this module that answers "which tempo segment / note /
// interval does this tick fall into" goes through these helpers so that the
// tie-break rule is the same everywhere: a query sitting exactly on a
// boundary belongs to the segment that STARTS at that boundary.
package bisect

import (
	"cmp"
	"sort"
)

// Floor returns the index of the last element of sorted that is <= x, or -1
// when x is smaller than every element. When several elements equal x the
// last of them is returned.
func Floor[T cmp.Ordered](sorted []T, x T) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x }) - 1
}

// FloorFunc is Floor over a slice of records ordered by key.
func FloorFunc[E any, K cmp.Ordered](sorted []E, x K, key func(E) K) int {
	return sort.Search(len(sorted), func(i int) bool { return key(sorted[i]) > x }) - 1
}

// Ceil returns the index of the first element of sorted that is >= x, or
// len(sorted) when every element is smaller.
func Ceil[T cmp.Ordered](sorted []T, x T) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] >= x })
}

// CeilFunc is Ceil over a slice of records ordered by key.
func CeilFunc[E any, K cmp.Ordered](sorted []E, x K, key func(E) K) int {
	return sort.Search(len(sorted), func(i int) bool { return key(sorted[i]) >= x })
}
