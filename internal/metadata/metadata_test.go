package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseStreamIDMovie(t *testing.T) {
	imdb, season, episode, err := ParseStreamID("tt1234567", model.KindMovie)
	require.NoError(t, err)
	require.Equal(t, "tt1234567", imdb)
	require.Zero(t, season)
	require.Zero(t, episode)
}

func TestParseStreamIDSeries(t *testing.T) {
	imdb, season, episode, err := ParseStreamID("tt1234567:2:5", model.KindSeries)
	require.NoError(t, err)
	require.Equal(t, "tt1234567", imdb)
	require.Equal(t, 2, season)
	require.Equal(t, 5, episode)
}

func TestParseStreamIDSeriesMissingParts(t *testing.T) {
	_, _, _, err := ParseStreamID("tt1234567", model.KindSeries)
	require.Error(t, err)
}

func TestCinemetaGetMetadataMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta": {"name": "Test Movie", "year": "2020", "imdb_id": "tt1234567"}}`))
	}))
	defer server.Close()

	c := NewCinemeta()
	c.client.SetBaseURL(server.URL)

	media, err := c.GetMetadata(context.Background(), "tt1234567", model.KindMovie, []string{"en"})
	require.NoError(t, err)
	require.Equal(t, "Test Movie", media.PrimaryTitle())
	require.Equal(t, 2020, media.Year)
}

func TestCinemetaGetMetadataSeriesYearRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta": {"name": "Test Show", "year": "2018–2021", "imdb_id": "tt1234567"}}`))
	}))
	defer server.Close()

	c := NewCinemeta()
	c.client.SetBaseURL(server.URL)

	media, err := c.GetMetadata(context.Background(), "tt1234567:1:3", model.KindSeries, []string{"en"})
	require.NoError(t, err)
	require.Equal(t, 1, media.Season)
	require.Equal(t, 3, media.Episode)
	require.Equal(t, 2018, media.Year)
}
