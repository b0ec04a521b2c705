package filter

import (
	"strings"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
)

// MaxSizeFilter drops movie results above a configured size ceiling.
// Mirrors max_size_filter.py, which only ever applies to movies.
type MaxSizeFilter struct {
	maxBytes int64
	kind     model.Kind
}

func NewMaxSizeFilter(cfg Config, kind model.Kind) *MaxSizeFilter {
	return &MaxSizeFilter{maxBytes: int64(cfg.MaxSizeGB) * 1024 * 1024 * 1024, kind: kind}
}

func (f *MaxSizeFilter) CanFilter() bool {
	return f.maxBytes > 0 && f.kind == model.KindMovie
}

func (f *MaxSizeFilter) Apply(items []*torrentitem.TorrentItem) []*torrentitem.TorrentItem {
	out := make([]*torrentitem.TorrentItem, 0, len(items))
	for _, item := range items {
		if item.Size <= f.maxBytes {
			out = append(out, item)
		}
	}
	return out
}

// TitleExclusionFilter drops items whose raw title contains a configured
// excluded keyword, case-insensitively. Mirrors title_exclusion_filter.py.
type TitleExclusionFilter struct {
	keywords []string
}

func NewTitleExclusionFilter(cfg Config) *TitleExclusionFilter {
	keywords := make([]string, len(cfg.ExclusionKeywords))
	for i, k := range cfg.ExclusionKeywords {
		keywords[i] = strings.ToUpper(k)
	}
	return &TitleExclusionFilter{keywords: keywords}
}

func (f *TitleExclusionFilter) CanFilter() bool { return len(f.keywords) > 0 }

func (f *TitleExclusionFilter) Apply(items []*torrentitem.TorrentItem) []*torrentitem.TorrentItem {
	out := make([]*torrentitem.TorrentItem, 0, len(items))
	for _, item := range items {
		upper := strings.ToUpper(item.RawTitle)
		excluded := false
		for _, kw := range f.keywords {
			if strings.Contains(upper, kw) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, item)
		}
	}
	return out
}

// ripQualities and camQualities are the "RIPS"/"CAM" group shorthands a
// caller can put in ExclusionQualities instead of listing every tag.
// Verbatim from quality_exclusion_filter.py's RIPS/CAMS sets.
var ripQualities = map[string]bool{
	"HDRIP": true, "BRRIP": true, "BDRIP": true, "WEBRIP": true, "TVRIP": true, "VODRIP": true,
}

var camQualities = map[string]bool{
	"CAM": true, "TS": true, "TC": true, "R5": true, "DVDSCR": true,
	"HDTV": true, "PDTV": true, "DSR": true, "WORKPRINT": true, "VHSRIP": true, "HDCAM": true,
}

// QualityExclusionFilter drops items matching an excluded quality tag, or
// (via the RIPS/CAM/HEVC shorthand groups) an entire category of release.
type QualityExclusionFilter struct {
	excluded    map[string]bool
	excludeRips bool
	excludeCams bool
	excludeHEVC bool
}

func NewQualityExclusionFilter(cfg Config) *QualityExclusionFilter {
	excluded := make(map[string]bool, len(cfg.ExclusionQualities))
	for _, q := range cfg.ExclusionQualities {
		excluded[strings.ToUpper(q)] = true
	}
	return &QualityExclusionFilter{
		excluded:    excluded,
		excludeRips: excluded["RIPS"],
		excludeCams: excluded["CAM"],
		excludeHEVC: excluded["HEVC"],
	}
}

func (f *QualityExclusionFilter) CanFilter() bool { return len(f.excluded) > 0 }

func (f *QualityExclusionFilter) Apply(items []*torrentitem.TorrentItem) []*torrentitem.TorrentItem {
	out := make([]*torrentitem.TorrentItem, 0, len(items))
	for _, item := range items {
		if f.isAllowed(item) {
			out = append(out, item)
		}
	}
	return out
}

func (f *QualityExclusionFilter) isAllowed(item *torrentitem.TorrentItem) bool {
	if item.ParsedData == nil {
		return true
	}
	pd := item.ParsedData

	if pd.Quality != "" {
		quality := strings.ToUpper(pd.Quality)
		if f.excluded[quality] {
			return false
		}
		if f.excludeRips && ripQualities[quality] {
			return false
		}
		if f.excludeCams && camQualities[quality] {
			return false
		}
	}

	if pd.Resolution > 0 && f.excluded[resolutionTag(pd.Resolution)] {
		return false
	}

	if pd.Codec != "" && f.excludeHEVC && strings.EqualFold(pd.Codec, "hevc") {
		return false
	}

	return true
}

func resolutionTag(resolution int) string {
	switch resolution {
	case 2160:
		return "2160P"
	case 1080:
		return "1080P"
	case 720:
		return "720P"
	case 480:
		return "480P"
	default:
		return ""
	}
}

// ResultsPerQualityFilter caps how many results survive per resolution
// bucket, preserving input order. Mirrors results_per_quality_filter.py.
type ResultsPerQualityFilter struct {
	max int
}

func NewResultsPerQualityFilter(cfg Config) *ResultsPerQualityFilter {
	max := cfg.ResultsPerQuality
	if max == 0 {
		max = 5
	}
	return &ResultsPerQualityFilter{max: max}
}

func (f *ResultsPerQualityFilter) CanFilter() bool { return f.max > 0 }

func (f *ResultsPerQualityFilter) Apply(items []*torrentitem.TorrentItem) []*torrentitem.TorrentItem {
	counts := map[int]int{}
	out := make([]*torrentitem.TorrentItem, 0, len(items))
	for _, item := range items {
		resolution := -1
		if item.ParsedData != nil {
			resolution = item.ParsedData.Resolution
		}
		if counts[resolution] < f.max {
			counts[resolution]++
			out = append(out, item)
		}
	}
	return out
}
