package torrentitem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeKeepsHigherSeedersOnCollision(t *testing.T) {
	cached := []*TorrentItem{{RawTitle: "Inception.2010.1080p", Size: 8_000_000_000, Seeders: 10}}
	fresh := []*TorrentItem{{RawTitle: "Inception.2010.1080p", Size: 8_000_000_000, Seeders: 42}}

	merged := Merge(cached, fresh)
	require.Len(t, merged, 1)
	require.Equal(t, 42, merged[0].Seeders)
}

func TestMergeUnionsDisjointEntries(t *testing.T) {
	cached := []*TorrentItem{{RawTitle: "A", Size: 1, Seeders: 5}}
	fresh := []*TorrentItem{{RawTitle: "B", Size: 2, Seeders: 6}}

	merged := Merge(cached, fresh)
	require.Len(t, merged, 2)
}

func TestMergeIsCommutativeAsMultiset(t *testing.T) {
	xs := []*TorrentItem{
		{RawTitle: "A", Size: 1, Seeders: 5},
		{RawTitle: "B", Size: 2, Seeders: 9},
	}
	ys := []*TorrentItem{
		{RawTitle: "A", Size: 1, Seeders: 11},
		{RawTitle: "C", Size: 3, Seeders: 7},
	}

	forward := Merge(xs, ys)
	backward := Merge(ys, xs)

	require.ElementsMatch(t, forward, backward)
}

func TestMergeIsIdempotent(t *testing.T) {
	xs := []*TorrentItem{{RawTitle: "A", Size: 1, Seeders: 5}}
	require.ElementsMatch(t, xs, Merge(xs, xs))
}

func TestMergeIsAssociative(t *testing.T) {
	xs := []*TorrentItem{{RawTitle: "A", Size: 1, Seeders: 5}}
	ys := []*TorrentItem{{RawTitle: "B", Size: 2, Seeders: 9}}
	zs := []*TorrentItem{{RawTitle: "A", Size: 1, Seeders: 12}}

	left := Merge(Merge(xs, ys), zs)
	right := Merge(xs, Merge(ys, zs))
	require.ElementsMatch(t, left, right)
}
