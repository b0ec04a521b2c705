package filter

import (
	"testing"

	"github.com/streamfusion/streamfusion/internal/parser"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"github.com/stretchr/testify/require"
)

func TestMatchYear(t *testing.T) {
	item := &torrentitem.TorrentItem{RawTitle: "Movie.Title.2020.1080p.WEB-DL"}
	require.True(t, MatchYear(item, 2020))
	require.False(t, MatchYear(item, 2021))
	require.True(t, MatchYear(item, 0))
}

func TestMatchSeasonEpisodeExact(t *testing.T) {
	item := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Seasons: []int{1}, Episodes: []int{2}}}
	require.True(t, MatchSeasonEpisode(item, 1, 2))
	require.False(t, MatchSeasonEpisode(item, 1, 3))
}

func TestMatchSeasonEpisodeSeasonPack(t *testing.T) {
	item := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Seasons: []int{1}}}
	require.True(t, MatchSeasonEpisode(item, 1, 5))
	require.False(t, MatchSeasonEpisode(item, 2, 5))
}

func TestMatchSeasonEpisodeNoParsedData(t *testing.T) {
	require.False(t, MatchSeasonEpisode(&torrentitem.TorrentItem{}, 1, 1))
}

func TestTitleMatchesWithinDistance(t *testing.T) {
	item := &torrentitem.TorrentItem{ParsedData: &parser.ParsedData{Title: "The Great Movie"}}
	require.True(t, TitleMatches(item, []string{"The Great Movie"}))
	require.False(t, TitleMatches(item, []string{"A Completely Different Film"}))
}

func TestCleanTMDBTitleStripsSymbolsAndCollapsesSpaces(t *testing.T) {
	require.Equal(t, "Movie Title", CleanTMDBTitle("Movie:  Title™"))
}
