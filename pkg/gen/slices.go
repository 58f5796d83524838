package gen

import "sort"

// SortedKeys returns the keys of a map in ascending order.
// Map iteration order is random, so anything that serializes a map
// must go through here to get deterministic output.
func SortedKeys[K Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// IndexOf returns the index of the first occurrence of v, or -1.
func IndexOf[T comparable](s []T, v T) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}
	return -1
}
