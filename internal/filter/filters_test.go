package filter

import (
	"testing"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/parser"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"github.com/stretchr/testify/require"
)

func TestMaxSizeFilterOnlyAppliesToMovies(t *testing.T) {
	cfg := Config{MaxSizeGB: 5}
	require.True(t, NewMaxSizeFilter(cfg, model.KindMovie).CanFilter())
	require.False(t, NewMaxSizeFilter(cfg, model.KindSeries).CanFilter())
	require.False(t, NewMaxSizeFilter(Config{}, model.KindMovie).CanFilter())
}

func TestMaxSizeFilterDropsOversized(t *testing.T) {
	f := NewMaxSizeFilter(Config{MaxSizeGB: 1}, model.KindMovie)
	small := &torrentitem.TorrentItem{Size: 500 * 1024 * 1024}
	big := &torrentitem.TorrentItem{Size: 2 * 1024 * 1024 * 1024}

	out := f.Apply([]*torrentitem.TorrentItem{small, big})
	require.Equal(t, []*torrentitem.TorrentItem{small}, out)
}

func TestTitleExclusionFilterIsCaseInsensitive(t *testing.T) {
	f := NewTitleExclusionFilter(Config{ExclusionKeywords: []string{"cam"}})
	keep := &torrentitem.TorrentItem{RawTitle: "Movie.Title.2020.BluRay"}
	drop := &torrentitem.TorrentItem{RawTitle: "Movie.Title.2020.CAMRip"}

	out := f.Apply([]*torrentitem.TorrentItem{keep, drop})
	require.Equal(t, []*torrentitem.TorrentItem{keep}, out)
}

func TestQualityExclusionFilterGroupShorthand(t *testing.T) {
	f := NewQualityExclusionFilter(Config{ExclusionQualities: []string{"RIPS"}})
	webrip := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Resolution: 0, Quality: "webrip"}}
	bluray := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Resolution: 1080}}

	require.False(t, f.isAllowed(webrip))
	require.True(t, f.isAllowed(bluray))
}

func TestQualityExclusionFilterHEVC(t *testing.T) {
	f := NewQualityExclusionFilter(Config{ExclusionQualities: []string{"HEVC"}})
	hevc := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Codec: "hevc"}}
	h264 := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Codec: "h264"}}

	require.False(t, f.isAllowed(hevc))
	require.True(t, f.isAllowed(h264))
}

func TestResultsPerQualityFilterCapsPerResolution(t *testing.T) {
	f := NewResultsPerQualityFilter(Config{ResultsPerQuality: 1})
	a := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Resolution: 1080}}
	b := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Resolution: 1080}}
	c := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Resolution: 720}}

	out := f.Apply([]*torrentitem.TorrentItem{a, b, c})
	require.Equal(t, []*torrentitem.TorrentItem{a, c}, out)
}

func TestSortQuality(t *testing.T) {
	p1080 := &torrentitem.TorrentItem{RawTitle: "1080p", ParsedData: &parser.ParsedData{Resolution: 1080}}
	p2160 := &torrentitem.TorrentItem{RawTitle: "2160p", ParsedData: &parser.ParsedData{Resolution: 2160}}
	p720 := &torrentitem.TorrentItem{RawTitle: "720p", ParsedData: &parser.ParsedData{Resolution: 720}}

	out := Sort([]*torrentitem.TorrentItem{p1080, p720, p2160}, Config{Sort: "quality"})
	require.Equal(t, []string{"2160p", "1080p", "720p"}, titles(out))
}

func TestSortSizeDesc(t *testing.T) {
	small := &torrentitem.TorrentItem{RawTitle: "small", Size: 100}
	big := &torrentitem.TorrentItem{RawTitle: "big", Size: 900}

	out := Sort([]*torrentitem.TorrentItem{small, big}, Config{Sort: "sizedesc"})
	require.Equal(t, []string{"big", "small"}, titles(out))
}

func titles(items []*torrentitem.TorrentItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.RawTitle
	}
	return out
}
