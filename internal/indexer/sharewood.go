package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SharewoodAdapter is a single private tracker keyed off a 32-char passkey.
// Its API enforces roughly one request per second per account, so the
// adapter carries its own limiter rather than relying on a caller to pace
// it (spec §4.D: "adapter instances that front a rate-limited private API
// own their own limiter").
type SharewoodAdapter struct {
	client  *resty.Client
	limiter *rate.Limiter
	passkey string
	log     *zap.SugaredLogger
}

func NewSharewoodAdapter(baseURL, passkey string, log *zap.SugaredLogger) *SharewoodAdapter {
	return &SharewoodAdapter{
		client:  resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		passkey: passkey,
		log:     log,
	}
}

func (a *SharewoodAdapter) Name() string { return "Sharewood" }

const sharewoodCategoryMovieAndSeries = 1

type sharewoodTorrent struct {
	Name    string `json:"name"`
	Hash    string `json:"info_hash"`
	Size    int64  `json:"size"`
	Seeders int    `json:"seeders"`
	ID      int    `json:"id"`
}

type sharewoodResponse struct {
	Torrents []sharewoodTorrent `json:"torrents"`
}

func (a *SharewoodAdapter) Search(ctx context.Context, media model.Media) ([]RawResult, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, nil
	}

	var payload sharewoodResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("search", media.PrimaryTitle()).
		SetQueryParam("category", fmt.Sprintf("%d", sharewoodCategoryMovieAndSeries)).
		SetResult(&payload).
		Get("/torrents")
	if err != nil {
		a.log.Warnw("sharewood search failed", "error", err)
		return nil, nil
	}
	if resp.IsError() {
		a.log.Warnw("sharewood error response", "status", resp.StatusCode())
		return nil, nil
	}

	results := make([]RawResult, 0, len(payload.Torrents))
	for _, t := range payload.Torrents {
		results = append(results, RawResult{
			RawTitle: t.Name,
			Size:     t.Size,
			InfoHash: t.Hash,
			Link:     a.downloadURL(t.ID),
			Seeders:  t.Seeders,
			Indexer:  a.Name(),
			Privacy:  "private",
			Kind:     string(media.Kind),
		})
	}

	return FilterLowSeeders(results), nil
}

// downloadURL builds the passkey-authenticated .torrent fetch URL for a
// given release id; the post-processor resolves it when InfoHash is empty.
func (a *SharewoodAdapter) downloadURL(id int) string {
	return fmt.Sprintf("%s/download/%d?passkey=%s", a.client.BaseURL, id, a.passkey)
}
