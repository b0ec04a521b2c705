// Package indexer defines the adapter contract shared by every torrent
// source (public cache, DMM/Zilean, Yggflix, Sharewood, Prowlarr) and hosts
// the concrete adapters. Every adapter returns RawResult rows; the post-
// processor (internal/indexer/torrentfile and internal/torrentitem) turns
// those into TorrentItems.
package indexer

import (
	"context"

	"github.com/streamfusion/streamfusion/internal/model"
)

// RawResult is what an indexer adapter hands back before post-processing:
// enough to either already be a playable TorrentItem (public cache entries
// carry hash+magnet already) or to be resolved by the post-processor.
type RawResult struct {
	RawTitle string
	Size     int64
	InfoHash string // set when known up front (public cache, DMM)
	Magnet   string
	Link     string // .torrent URL when InfoHash/Magnet are unknown
	Seeders  int
	Languages []string
	Indexer  string
	Privacy  string // "public" | "private"
	Kind     string // "movie" | "series"
	FromCache bool
}

// MinSeeders is the adapter-level low-seeder cutoff applied uniformly
// across every source (spec §4.D: "all adapters apply a low-seeder
// cutoff").
const MinSeeders = 5

// Adapter is the contract every indexer source implements.
type Adapter interface {
	Name() string
	Search(ctx context.Context, media model.Media) ([]RawResult, error)
}

// FilterLowSeeders drops results below MinSeeders, matching the shared
// adapter-level cutoff every concrete adapter applies to its raw rows
// before returning them.
func FilterLowSeeders(results []RawResult) []RawResult {
	out := make([]RawResult, 0, len(results))
	for _, r := range results {
		if r.Seeders >= MinSeeders {
			out = append(out, r)
		}
	}
	return out
}
