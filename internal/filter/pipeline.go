package filter

import (
	"sort"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
)

// qualityOrder ranks resolutions from best to worst for the "quality" and
// "qualitythensize" sort methods. Unranked/unknown resolutions sort last.
// Mirrors filter_results.py's quality_order table.
var qualityOrder = map[int]int{2160: 0, 1080: 1, 720: 2, 480: 3}

func qualityRank(item *torrentitem.TorrentItem) int {
	if item.ParsedData == nil {
		return len(qualityOrder)
	}
	if rank, ok := qualityOrder[item.ParsedData.Resolution]; ok {
		return rank
	}
	return len(qualityOrder)
}

// Apply runs the full filter pipeline: media match (year or season/episode)
// and fuzzy title match, then the five ordered configurable filters, in the
// same order as filter_items. A filter whose CanFilter() is false is
// skipped entirely rather than applied as a no-op, matching the reference
// pipeline's per-filter can_filter() gate.
func Apply(items []*torrentitem.TorrentItem, media model.Media, cfg Config, fromCache map[*torrentitem.TorrentItem]bool) []*torrentitem.TorrentItem {
	items = ApplyMediaMatch(items, media)

	if lf := NewLanguageFilter(cfg); lf.CanFilter() {
		items = lf.Apply(items, fromCache)
	}
	if sf := NewMaxSizeFilter(cfg, media.Kind); sf.CanFilter() {
		items = sf.Apply(items)
	}
	if tf := NewTitleExclusionFilter(cfg); tf.CanFilter() {
		items = tf.Apply(items)
	}
	if qf := NewQualityExclusionFilter(cfg); qf.CanFilter() {
		items = qf.Apply(items)
	}
	if rf := NewResultsPerQualityFilter(cfg); rf.CanFilter() {
		items = rf.Apply(items)
	}

	return items
}

// Sort orders items per cfg.Sort, matching items_sort/sort_items. An
// unrecognized or empty sort method leaves the input order untouched.
func Sort(items []*torrentitem.TorrentItem, cfg Config) []*torrentitem.TorrentItem {
	switch cfg.Sort {
	case "quality":
		sort.SliceStable(items, func(i, j int) bool {
			return qualityRank(items[i]) < qualityRank(items[j])
		})
	case "sizeasc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Size < items[j].Size })
	case "sizedesc":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Size > items[j].Size })
	case "qualitythensize":
		sort.SliceStable(items, func(i, j int) bool {
			ri, rj := qualityRank(items[i]), qualityRank(items[j])
			if ri != rj {
				return ri < rj
			}
			return items[i].Size > items[j].Size
		})
	}
	return items
}
