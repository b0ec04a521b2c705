package torrentfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectMovieFilePicksLargest(t *testing.T) {
	files := []File{
		{Index: 0, Path: "sample.mkv", Length: 50},
		{Index: 1, Path: "Movie.Title.2020.mkv", Length: 9_000_000},
		{Index: 2, Path: "subs.srt", Length: 10},
	}

	sel := SelectMovieFile(files)
	require.Equal(t, 1, sel.Index)
	require.Equal(t, "Movie.Title.2020.mkv", sel.Name)
}

func TestSelectEpisodeFileMatchesSeasonAndEpisode(t *testing.T) {
	files := []File{
		{Index: 0, Path: "Show.S01E01.mkv", Length: 1000},
		{Index: 1, Path: "Show.S01E02.mkv", Length: 1100},
		{Index: 2, Path: "sample.mkv", Length: 10},
	}

	sel, ok := SelectEpisodeFile(files, 1, 2)
	require.True(t, ok)
	require.Equal(t, 1, sel.Index)
	require.Equal(t, "Show.S01E02.mkv", sel.Name)
}

func TestSelectEpisodeFileNoMatch(t *testing.T) {
	files := []File{
		{Index: 0, Path: "Show.S01E01.mkv", Length: 1000},
	}

	_, ok := SelectEpisodeFile(files, 2, 5)
	require.False(t, ok)
}
