package search

import (
	"context"
	"testing"

	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/cachekey"
	"github.com/streamfusion/streamfusion/internal/container"
	"github.com/streamfusion/streamfusion/internal/debrid"
	"github.com/streamfusion/streamfusion/internal/filter"
	"github.com/streamfusion/streamfusion/internal/indexer"
	"github.com/streamfusion/streamfusion/internal/indexer/torrentfile"
	"github.com/streamfusion/streamfusion/internal/metadata"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeValidator struct{ fail bool }

func (f fakeValidator) Check(ctx context.Context, apiKey string) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	return nil
}

type fakeMetadataProvider struct{ media model.Media }

func (f fakeMetadataProvider) GetMetadata(ctx context.Context, streamID string, kind model.Kind, languages []string) (model.Media, error) {
	return f.media, nil
}

type fakeAdapter struct {
	name    string
	results []indexer.RawResult
}

func (f fakeAdapter) Name() string { return f.name }
func (f fakeAdapter) Search(ctx context.Context, media model.Media) ([]indexer.RawResult, error) {
	return f.results, nil
}

type fakeDebrid struct {
	name      string
	available map[string]bool
}

func (f fakeDebrid) Name() string { return f.name }
func (f fakeDebrid) CheckAvailability(ctx context.Context, cont *container.Container, infoHashes []string) error {
	for _, h := range infoHashes {
		if f.available[h] {
			if item, ok := cont.Lookup(h); ok {
				item.SetAvailability(f.name)
			}
		}
	}
	return nil
}
func (f fakeDebrid) GetStreamLink(ctx context.Context, query debrid.StreamQuery) (string, error) {
	return "https://example.test/download", nil
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestSearcher(adapters map[string]indexer.Adapter, validator APIKeyValidator) *Searcher {
	media := model.Media{Kind: model.KindMovie, IMDBID: "tt1234567", Titles: []string{"Example Movie"}, Year: 2020}
	providers := map[string]metadata.Provider{"cinemeta": fakeMetadataProvider{media: media}}
	return New(validator, cache.New(0), providers, adapters, torrentfile.NewResolver(testLogger()), testLogger())
}

func TestSearchRejectsInvalidAPIKey(t *testing.T) {
	s := newTestSearcher(nil, fakeValidator{fail: true})
	_, err := s.Search(context.Background(), Request{APIKey: "bad", MetadataProvider: "cinemeta"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSearchFullPipelineMarksAvailabilityAndFormatsRows(t *testing.T) {
	hash := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	adapters := map[string]indexer.Adapter{
		"cache": fakeAdapter{name: "Cache Public", results: []indexer.RawResult{
			{
				RawTitle: "Example.Movie.2020.1080p.BluRay.x264-GROUP",
				Size:     4 * 1024 * 1024 * 1024,
				InfoHash: hash,
				Magnet:   "magnet:?xt=urn:btih:" + hash,
				Seeders:  50,
				Indexer:  "Cache Public",
				Privacy:  "public",
				Kind:     "movie",
				Languages: []string{"en"},
			},
		}},
	}

	s := newTestSearcher(adapters, fakeValidator{})

	req := Request{
		APIKey:           "11111111-1111-1111-1111-111111111111",
		Kind:             model.KindMovie,
		StreamID:         "tt1234567",
		MetadataProvider: "cinemeta",
		Toggles:          AdapterToggles{Cache: true},
		Filter:           filter.Config{Sort: "quality"},
		MaxResults:       10,
		Debrids:          []debrid.Service{fakeDebrid{name: "RD", available: map[string]bool{hash: true}}},
		AddonHost:        "https://addon.example",
		ConfigBase64:     "Y29uZmln",
	}

	rows, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Contains(t, rows[0].Name, "⚡")
	require.Contains(t, rows[0].URL, "https://addon.example/playback/Y29uZmln/")
	require.Equal(t, "stremio-jackett-"+hash, rows[0].BehaviorHints.BingeGroup)
}

func TestSearchServesCachedFilteredStream(t *testing.T) {
	adapters := map[string]indexer.Adapter{}
	s := newTestSearcher(adapters, fakeValidator{})

	media := model.Media{Kind: model.KindMovie, IMDBID: "tt1234567", Titles: []string{"Example Movie"}, Year: 2020}
	cached := `[{"name":"cached","description":"d"}]`
	_ = s.cache.Set(cachekey.FilteredStream("apikey", media), cached, 60)

	req := Request{APIKey: "apikey", Kind: model.KindMovie, StreamID: "tt1234567", MetadataProvider: "cinemeta"}
	rows, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "cached", rows[0].Name)
}
