package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSeriesEpisode(t *testing.T) {
	p := Parse("The.Show.S03E07.1080p.WEB-DL.DDP5.1.H.264-SPARKS")
	require.Equal(t, []int{3}, p.Seasons)
	require.Equal(t, []int{7}, p.Episodes)
	require.Equal(t, 1080, p.Resolution)
	require.Equal(t, "web-dl", p.Quality)
	require.Equal(t, "SPARKS", p.Group)
}

func TestParseMultiSeasonRange(t *testing.T) {
	p := Parse("The.Show.S01-S03.1080p.BluRay.x265-GROUP")
	require.ElementsMatch(t, []int{1, 2, 3}, p.Seasons)
}

func TestParseFrenchLanguageAndDub(t *testing.T) {
	p := Parse("Movie.Title.2023.FRENCH.1080p.WEB-DL.x264-GROUP")
	require.Contains(t, p.Languages, "fr")
	require.NotEmpty(t, p.FrenchDub)
}

func TestParseDefaultsToEnglish(t *testing.T) {
	p := Parse("Movie.Title.2023.1080p.WEB-DL.x264")
	require.Equal(t, []string{"en"}, p.Languages)
}

func TestParseReleaseGroup(t *testing.T) {
	p := Parse("Movie.Title.2023.1080p.WEB-DL.x264-SPARKS")
	require.Equal(t, "SPARKS", p.Group)
}

func TestParseYear(t *testing.T) {
	p := Parse("Movie.Title.2023.1080p.WEB-DL.x264-GROUP")
	require.Equal(t, 2023, p.Year)
}

func TestParseThreeD(t *testing.T) {
	p := Parse("Movie.Title.2023.3D.1080p.BluRay.x264-GROUP")
	require.True(t, p.ThreeD)
}
