package cachekey

import (
	"testing"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/stretchr/testify/require"
)

func TestKeysAreSixteenHexChars(t *testing.T) {
	m := model.Media{Kind: model.KindMovie, Titles: []string{"Title"}, Year: 2020}
	require.Len(t, Metadata("tt123", model.KindMovie, "cinemeta"), 16)
	require.Len(t, UnfilteredSearch(m), 16)
	require.Len(t, FilteredStream("apikey", m), 16)
	require.Len(t, StreamLink("query", "1.2.3.4"), 16)
	require.Len(t, DownloadInProgress("query", "1.2.3.4"), 16)
	require.Len(t, Lock("apikey", "query", "1.2.3.4"), 16)
}

func TestKeysAreDeterministic(t *testing.T) {
	m := model.Media{Kind: model.KindMovie, Titles: []string{"Title"}, Year: 2020}
	require.Equal(t, UnfilteredSearch(m), UnfilteredSearch(m))
}

func TestSeriesKeyDiffersByEpisode(t *testing.T) {
	base := model.Media{Kind: model.KindSeries, Titles: []string{"Show"}, Season: 1, Episode: 1}
	other := base
	other.Episode = 2

	require.NotEqual(t, FilteredStream("apikey", base), FilteredStream("apikey", other))
	// The unfiltered-search tier only varies by season, not episode.
	require.Equal(t, UnfilteredSearch(base), UnfilteredSearch(other))
}

func TestMovieAndSeriesKeysDiffer(t *testing.T) {
	movie := model.Media{Kind: model.KindMovie, Titles: []string{"Same Title"}, Year: 1}
	series := model.Media{Kind: model.KindSeries, Titles: []string{"Same Title"}, Season: 1}
	require.NotEqual(t, UnfilteredSearch(movie), UnfilteredSearch(series))
}
