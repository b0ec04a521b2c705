package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/model"
	"go.uber.org/zap"
)

// ErrTMDBRequired names the condition under which Yggflix cannot search: a
// media without a TMDB id (the adapter's endpoints are TMDB-ID-keyed).
// Search does not return it; it logs at debug level and returns an empty
// result instead.
var ErrTMDBRequired = errors.New("yggflix: requires metadataProvider=tmdb")

// YggflixAdapter hits TMDB-ID-based torrent listing endpoints. Requires the
// request's metadata to have come from TMDB (spec §4.D).
type YggflixAdapter struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

func NewYggflixAdapter(baseURL, passkey string, log *zap.SugaredLogger) *YggflixAdapter {
	return &YggflixAdapter{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second).
			SetQueryParam("passkey", passkey),
		log: log,
	}
}

func (a *YggflixAdapter) Name() string { return "Yggflix" }

type yggflixTorrent struct {
	Title    string `json:"title"`
	Hash     string `json:"hash"`
	Magnet   string `json:"magnet_url"`
	Size     int64  `json:"size"`
	Seeders  int    `json:"seeders"`
	Language string `json:"language"`
}

func (a *YggflixAdapter) Search(ctx context.Context, media model.Media) ([]RawResult, error) {
	if media.TMDBID == "" {
		a.log.Debugw("yggflix skipped, no tmdb id on media")
		return nil, nil
	}

	var path string
	switch media.Kind {
	case model.KindMovie:
		path = fmt.Sprintf("/movie/%s/torrents", media.TMDBID)
	case model.KindSeries:
		path = fmt.Sprintf("/tvshow/%s/torrents", media.TMDBID)
	default:
		return nil, nil
	}

	var torrents []yggflixTorrent
	resp, err := a.client.R().SetContext(ctx).SetResult(&torrents).Get(path)
	if err != nil {
		a.log.Warnw("yggflix request failed", "error", err)
		return nil, nil
	}
	// Yggflix returns 422 for "no torrents for this title"; tolerate it as
	// an empty result rather than an adapter failure.
	if resp.StatusCode() == 422 {
		return nil, nil
	}
	if resp.IsError() {
		a.log.Warnw("yggflix error response", "status", resp.StatusCode())
		return nil, nil
	}

	results := make([]RawResult, 0, len(torrents))
	for _, t := range torrents {
		languages := []string{}
		if t.Language != "" {
			languages = append(languages, t.Language)
		}
		results = append(results, RawResult{
			RawTitle:  t.Title,
			Size:      t.Size,
			InfoHash:  t.Hash,
			Magnet:    t.Magnet,
			Seeders:   t.Seeders,
			Languages: languages,
			Indexer:   a.Name(),
			Privacy:   "private",
			Kind:      string(media.Kind),
		})
	}

	return FilterLowSeeders(results), nil
}
