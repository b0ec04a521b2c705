package indexer

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/model"
	"go.uber.org/zap"
)

// PublicCacheAdapter reads from an external public-cache cacher (DMM's
// public hash-list mirror in the grounding source): every returned entry
// already carries a magnet and a 40-hex hash, so no post-processing fetch
// is needed for these rows.
type PublicCacheAdapter struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

func NewPublicCacheAdapter(baseURL string, log *zap.SugaredLogger) *PublicCacheAdapter {
	return &PublicCacheAdapter{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(publicCacheTimeout),
		log:    log,
	}
}

const publicCacheTimeout = 10 * time.Second

type publicCacheEntry struct {
	Hash     string `json:"hash"`
	Title    string `json:"title"`
	Magnet   string `json:"magnet"`
	Size     int64  `json:"size"`
	Seeders  int    `json:"seeders"`
	Language string `json:"language"`
}

func (a *PublicCacheAdapter) Name() string { return "Cache Public" }

func (a *PublicCacheAdapter) Search(ctx context.Context, media model.Media) ([]RawResult, error) {
	var entries []publicCacheEntry
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("query", media.PrimaryTitle()).
		SetQueryParam("imdb_id", media.IMDBID).
		SetResult(&entries).
		Get("/cache/search")
	if err != nil {
		a.log.Warnw("public cache search failed", "error", err)
		return nil, nil
	}
	if resp.IsError() {
		a.log.Warnw("public cache search error response", "status", resp.StatusCode())
		return nil, nil
	}

	results := make([]RawResult, 0, len(entries))
	for _, e := range entries {
		if len(e.Hash) != 40 {
			continue
		}
		languages := []string{}
		if e.Language != "" {
			languages = append(languages, e.Language)
		}
		results = append(results, RawResult{
			RawTitle:  e.Title,
			Size:      e.Size,
			InfoHash:  e.Hash,
			Magnet:    e.Magnet,
			Link:      e.Magnet,
			Seeders:   e.Seeders,
			Languages: languages,
			Indexer:   a.Name(),
			Privacy:   "public",
			Kind:      string(media.Kind),
			FromCache: true,
		})
	}

	return FilterLowSeeders(results), nil
}
