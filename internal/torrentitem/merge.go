package torrentitem

// mergeKey identifies a TorrentItem across sources for merge purposes:
// (raw_title, size), per spec's result-model merge rule.
type mergeKey struct {
	rawTitle string
	size     int64
}

// Merge combines xs and ys keyed by (raw_title, size), keeping the entry
// with the higher seeders on collision. Idempotent, and associative and
// commutative as multisets modulo the seeders tiebreak: on a collision
// with equal seeders the entry seen first is kept, so argument order
// decides which of two tied entries survives.
func Merge(xs, ys []*TorrentItem) []*TorrentItem {
	best := make(map[mergeKey]*TorrentItem, len(xs)+len(ys))
	var order []mergeKey

	add := func(items []*TorrentItem) {
		for _, item := range items {
			k := mergeKey{item.RawTitle, item.Size}
			cur, ok := best[k]
			if !ok {
				best[k] = item
				order = append(order, k)
				continue
			}
			if item.Seeders > cur.Seeders {
				best[k] = item
			}
		}
	}
	add(xs)
	add(ys)

	merged := make([]*TorrentItem, 0, len(order))
	for _, k := range order {
		merged = append(merged, best[k])
	}
	return merged
}
