// Package bulk groups flat query results into nested maps.
package bulk

// Group arranges rows into outer key -> inner key -> values. Values keep the
// order they appear in rows, and a value repeated within one group is kept
// only once, so callers should sort rows before grouping.
func Group[R any, K1, K2, V comparable](
	rows []R,
	outer func(R) K1,
	inner func(R) K2,
	value func(R) V,
) map[K1]map[K2][]V {
	grouped := make(map[K1]map[K2][]V)
	seen := make(map[groupKey[K1, K2]]map[V]struct{})

	for _, row := range rows {
		k1, k2, v := outer(row), inner(row), value(row)

		gk := groupKey[K1, K2]{k1, k2}
		if _, dup := seen[gk][v]; dup {
			continue
		}
		if seen[gk] == nil {
			seen[gk] = make(map[V]struct{})
		}
		seen[gk][v] = struct{}{}

		byInner, ok := grouped[k1]
		if !ok {
			byInner = make(map[K2][]V)
			grouped[k1] = byInner
		}
		byInner[k2] = append(byInner[k2], v)
	}
	return grouped
}

type groupKey[K1, K2 comparable] struct {
	outer K1
	inner K2
}
