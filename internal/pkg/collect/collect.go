// Package collect turns slices into lookup maps.
package collect

// ToMap indexes items by key. Later items win on duplicate keys.
func ToMap[T any, K comparable](items []T, key func(T) K) map[K]T {
	out := make(map[K]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}

// ToMappedMap indexes value(item) by key(item). Later items win on
// duplicate keys.
func ToMappedMap[T any, K comparable, V any](items []T, key func(T) K, value func(T) V) map[K]V {
	out := make(map[K]V, len(items))
	for _, item := range items {
		out[key(item)] = value(item)
	}
	return out
}

// GroupBy buckets items by key, keeping input order within each bucket.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		out[k] = append(out[k], item)
	}
	return out
}
