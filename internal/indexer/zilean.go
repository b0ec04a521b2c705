package indexer

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/pipe"
	"go.uber.org/zap"
)

// ZileanAdapter is the DMM (indexed-corpus) adapter: it runs a keyword
// search and an IMDb-ID search concurrently and deduplicates by infohash.
// Grounded on the shape implied by stream_fusion's ZileanResult/
// ZileanService usage in utils/torrent/torrent_service.py.
type ZileanAdapter struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

func NewZileanAdapter(baseURL string, log *zap.SugaredLogger) *ZileanAdapter {
	return &ZileanAdapter{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(15 * time.Second),
		log:    log,
	}
}

func (a *ZileanAdapter) Name() string { return "Zilean" }

type zileanResult struct {
	InfoHash string `json:"info_hash"`
	Title    string `json:"raw_title"`
	Size     int64  `json:"size"`
}

func (a *ZileanAdapter) Search(ctx context.Context, media model.Media) ([]RawResult, error) {
	type query struct {
		queryType string
		value     string
	}

	queries := []query{{"keyword", media.PrimaryTitle()}}
	if media.IMDBID != "" {
		queries = append(queries, query{"imdb", media.IMDBID})
	}

	batches, _ := pipe.ParallelMap(ctx, queries, 4, func(ctx context.Context, q query) ([]zileanResult, error) {
		var out []zileanResult
		req := a.client.R().SetContext(ctx).SetResult(&out)
		if q.queryType == "imdb" {
			req.SetQueryParam("imdb_id", q.value)
		} else {
			req.SetQueryParam("query", q.value)
		}
		if media.Kind == model.KindSeries {
			req.SetQueryParam("season", strconv.Itoa(media.Season))
			req.SetQueryParam("episode", strconv.Itoa(media.Episode))
		}
		resp, err := req.Get("/dmm/filtered")
		if err != nil || resp.IsError() {
			return nil, nil
		}
		return out, nil
	})

	seen := map[string]bool{}
	var results []RawResult
	for _, batch := range batches {
		for _, r := range batch {
			hash := r.InfoHash
			if len(hash) != 40 || seen[hash] {
				continue
			}
			seen[hash] = true
			results = append(results, RawResult{
				RawTitle: r.Title,
				Size:     r.Size,
				InfoHash: hash,
				Indexer:  a.Name(),
				Privacy:  "public",
				Kind:     string(media.Kind),
				Seeders:  MinSeeders, // DMM rows carry no seeder count; treat as meeting the cutoff
			})
		}
	}

	return results, nil
}
