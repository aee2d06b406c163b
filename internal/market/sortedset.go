package market

import "sort"

// searchSorted locates v in a slice kept sorted under cmp. It returns the
// rank (the index where v is or would be inserted) and whether v is present.
// Mirrors binary_search semantics: found index on hit, insertion point on
// miss.
func searchSorted[T any](items []T, v T, cmp func(a, b T) int) (int, bool) {
	i := sort.Search(len(items), func(j int) bool {
		return cmp(items[j], v) >= 0
	})
	if i < len(items) && cmp(items[i], v) == 0 {
		return i, true
	}
	return i, false
}

// insertSorted inserts v at its rank, preserving order. The caller is
// responsible for rejecting duplicates first; set semantics forbid them.
func insertSorted[T any](items []T, rank int, v T) []T {
	items = append(items, v)
	copy(items[rank+1:], items[rank:])
	items[rank] = v
	return items
}

// removeAt removes the element at rank.
func removeAt[T any](items []T, rank int) []T {
	return append(items[:rank], items[rank+1:]...)
}
