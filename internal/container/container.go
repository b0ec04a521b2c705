// Package container holds the "smart container": a deduplicated,
// info-hash-indexed view over a search's torrent results that debrid
// providers' bulk-availability responses get folded into, and that the
// search orchestrator queries for the final playable result set. Grounded
// on stream_fusion's utils/torrent/torrent_smart_container.py.
package container

import (
	"github.com/streamfusion/streamfusion/internal/indexer/torrentfile"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/parser"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"go.uber.org/zap"
)

// Container is the dedup'd, infohash-keyed item set for one search request.
// Insertion order is preserved alongside the map so that Items() and
// UnavailableHashes() return a stable first-seen order, which Go's map
// iteration doesn't. Premiumize's positional response is zipped against
// the hash list the caller queried with (see UpdatePremiumize), not
// against this order.
type Container struct {
	itemsByHash map[string]*torrentitem.TorrentItem
	order       []string
	media       model.Media
	log         *zap.SugaredLogger
}

// New builds a Container from a post-processed item list, deduplicating by
// ID() (info hash, or the synthetic fallback). First occurrence wins,
// matching __build_items_dict_by_infohash.
func New(items []*torrentitem.TorrentItem, media model.Media, log *zap.SugaredLogger) *Container {
	byHash := make(map[string]*torrentitem.TorrentItem, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		id := item.ID()
		if _, exists := byHash[id]; !exists {
			byHash[id] = item
			order = append(order, id)
		} else {
			log.Debugw("dropping duplicate item", "id", id, "title", item.RawTitle)
		}
	}
	return &Container{itemsByHash: byHash, order: order, media: media, log: log}
}

// Items returns every deduplicated item, in first-seen order.
func (c *Container) Items() []*torrentitem.TorrentItem {
	out := make([]*torrentitem.TorrentItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.itemsByHash[id])
	}
	return out
}

// Lookup returns the item keyed by id (info hash or synthetic id), if any.
func (c *Container) Lookup(id string) (*torrentitem.TorrentItem, bool) {
	item, ok := c.itemsByHash[id]
	return item, ok
}

// UnavailableHashes returns the info hashes of items with no known debrid
// availability yet, the set a bulk-availability check should be run
// against. Matches get_unaviable_hashes.
func (c *Container) UnavailableHashes() []string {
	var hashes []string
	for _, id := range c.order {
		if !c.itemsByHash[id].IsAvailable() {
			hashes = append(hashes, id)
		}
	}
	return hashes
}

// DirectTorrentable returns public-tracker items with a file already
// chosen, playable directly via their magnet/torrent without hitting a
// debrid provider. Matches get_direct_torrentable.
func (c *Container) DirectTorrentable() []*torrentitem.TorrentItem {
	var out []*torrentitem.TorrentItem
	for _, item := range c.Items() {
		if item.Privacy == torrentitem.PrivacyPublic && item.FileIndex > 0 {
			out = append(out, item)
		}
	}
	return out
}

// BestMatching returns the items that are ready to be offered as streams:
// items with a .torrent/magnet link already pointing at a specific file,
// plus multi-file items for which a season/episode-matching file could be
// found in their full candidate index. Matches get_best_matching.
func (c *Container) BestMatching() []*torrentitem.TorrentItem {
	var out []*torrentitem.TorrentItem
	for _, item := range c.Items() {
		if item.Link == "" {
			// No .torrent file was ever fetched for this item (a bare
			// magnet/hash row); offer it as-is without requiring a
			// resolved file index. Matches get_best_matching's
			// torrent_download-is-None branch.
			out = append(out, item)
			continue
		}
		if item.FileIndex > 0 {
			out = append(out, item)
			continue
		}
		if sel, ok := findMatchingFile(item.FullIndex, c.media.Season, c.media.Episode); ok {
			item.FileIndex = sel.Index
			item.FileName = sel.Name
			item.Size = sel.Size
			out = append(out, item)
		}
	}
	return out
}

func findMatchingFile(fullIndex []torrentitem.File, season, episode int) (torrentfile.SelectedFile, bool) {
	var best torrentfile.SelectedFile
	found := false
	for _, f := range fullIndex {
		parsed := parser.Parse(f.Name)
		if !containsInt(parsed.Seasons, season) || !containsInt(parsed.Episodes, episode) {
			continue
		}
		if !found || f.Size > best.Size {
			best = torrentfile.SelectedFile{Index: f.Index, Name: f.Name, Size: f.Size}
			found = true
		}
	}
	return best, found
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
