package container

import (
	"testing"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"github.com/stretchr/testify/require"
)

const hashA = "1111111111111111111111111111111111111111"
const hashB = "2222222222222222222222222222222222222222"

func TestUpdateRealDebridMovieCollectsAllVariantFiles(t *testing.T) {
	item := &torrentitem.TorrentItem{InfoHash: hashA}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindMovie}, testLogger())

	resp := RealDebridAvailability{
		hashA: {RD: []map[string]RealDebridFile{
			{"1": {Filename: "movie.1080p.mkv", Filesize: 2000}},
			{"1": {Filename: "movie.720p.mkv", Filesize: 900}},
		}},
	}
	c.UpdateRealDebrid(resp)

	require.Equal(t, ProviderRealDebrid, item.Availability)
	require.Equal(t, "movie.1080p.mkv", item.FileName)
	require.Equal(t, int64(2000), item.Size)
}

func TestUpdateRealDebridSeriesPicksMatchingVariant(t *testing.T) {
	item := &torrentitem.TorrentItem{InfoHash: hashA}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindSeries, Season: 1, Episode: 2}, testLogger())

	resp := RealDebridAvailability{
		hashA: {RD: []map[string]RealDebridFile{
			{"1": {Filename: "Show.S01E01.mkv", Filesize: 500}},
			{"1": {Filename: "Show.S01E02.mkv", Filesize: 700}, "2": {Filename: "Show.S01E03.mkv", Filesize: 800}},
		}},
	}
	c.UpdateRealDebrid(resp)

	require.Equal(t, ProviderRealDebrid, item.Availability)
	require.Equal(t, "Show.S01E03.mkv", item.FileName)
}

func TestUpdateRealDebridNeverDowngradesAvailability(t *testing.T) {
	item := &torrentitem.TorrentItem{InfoHash: hashA, Availability: ProviderAllDebrid, FileName: "already-set.mkv"}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindMovie}, testLogger())

	c.UpdateRealDebrid(RealDebridAvailability{
		hashA: {RD: []map[string]RealDebridFile{{"1": {Filename: "new.mkv", Filesize: 5000}}}},
	})

	require.Equal(t, ProviderAllDebrid, item.Availability)
}

func TestUpdateAllDebridSkipsNonInstant(t *testing.T) {
	item := &torrentitem.TorrentItem{InfoHash: hashA}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindMovie}, testLogger())

	var resp AllDebridAvailability
	resp.Data.Magnets = []AllDebridMagnet{{Hash: hashA, Instant: false, Files: []AllDebridFile{{Name: "x.mkv", Size: 100}}}}
	c.UpdateAllDebrid(resp)

	require.False(t, item.IsAvailable())
}

func TestUpdateAllDebridFlattensNestedFolders(t *testing.T) {
	item := &torrentitem.TorrentItem{InfoHash: hashA}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindMovie}, testLogger())

	var resp AllDebridAvailability
	resp.Data.Magnets = []AllDebridMagnet{{
		Hash:    hashA,
		Instant: true,
		Files: []AllDebridFile{
			{Name: "subs", Entries: []AllDebridFile{{Name: "en.srt", Size: 10}}},
			{Name: "movie.mkv", Size: 5000},
		},
	}}
	c.UpdateAllDebrid(resp)

	require.Equal(t, ProviderAllDebrid, item.Availability)
	require.Equal(t, "movie.mkv", item.FileName)
}

func TestUpdateAllDebridSeriesFiltersByEpisode(t *testing.T) {
	item := &torrentitem.TorrentItem{InfoHash: hashA}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindSeries, Season: 2, Episode: 5}, testLogger())

	var resp AllDebridAvailability
	resp.Data.Magnets = []AllDebridMagnet{{
		Hash:    hashA,
		Instant: true,
		Files: []AllDebridFile{
			{Name: "Show.S02E04.mkv", Size: 1000},
			{Name: "Show.S02E05.mkv", Size: 1200},
		},
	}}
	c.UpdateAllDebrid(resp)

	require.Equal(t, "Show.S02E05.mkv", item.FileName)
}

func TestUpdatePremiumizeIsPositional(t *testing.T) {
	first := &torrentitem.TorrentItem{InfoHash: hashA}
	second := &torrentitem.TorrentItem{InfoHash: hashB}
	c := New([]*torrentitem.TorrentItem{first, second}, model.Media{Kind: model.KindMovie}, testLogger())

	c.UpdatePremiumize([]string{hashA, hashB}, PremiumizeAvailability{Response: []bool{false, true}})

	require.False(t, first.IsAvailable())
	require.True(t, second.IsAvailable())
	require.Equal(t, ProviderPremiumize, second.Availability)
}

func TestUpdateTorboxMovieAndSeries(t *testing.T) {
	movie := &torrentitem.TorrentItem{InfoHash: hashA}
	c := New([]*torrentitem.TorrentItem{movie}, model.Media{Kind: model.KindMovie}, testLogger())

	c.UpdateTorbox(TorboxAvailability{
		hashA: {Hash: hashA, Files: []RealDebridFile{{Filename: "movie.mkv", Filesize: 3000}}},
	})

	require.Equal(t, ProviderTorbox, movie.Availability)
	require.Equal(t, int64(3000), movie.Size)
}
