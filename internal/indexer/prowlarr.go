package indexer

import (
	"context"
	"fmt"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/prowlarr"
	"go.uber.org/zap"
)

// ProwlarrAdapter is the Jackett/Prowlarr-style general multi-indexer
// aggregator (spec §4.D), fanning a search out to every enabled indexer
// Prowlarr knows about and normalising its heterogeneous result rows.
// Grounded directly on the teacher's internal/prowlarr client.
type ProwlarrAdapter struct {
	client *prowlarr.Prowlarr
	log    *zap.SugaredLogger
}

func NewProwlarrAdapter(client *prowlarr.Prowlarr, log *zap.SugaredLogger) *ProwlarrAdapter {
	return &ProwlarrAdapter{client: client, log: log}
}

func (a *ProwlarrAdapter) Name() string { return "Jackett" }

func (a *ProwlarrAdapter) Search(ctx context.Context, media model.Media) ([]RawResult, error) {
	indexers, err := a.client.GetAllIndexers()
	if err != nil {
		return nil, fmt.Errorf("prowlarr: list indexers: %w", err)
	}

	var results []RawResult
	for _, idx := range indexers {
		if !idx.Enable {
			continue
		}

		var torrents []*prowlarr.Torrent
		var searchErr error
		switch media.Kind {
		case model.KindMovie:
			torrents, searchErr = a.client.SearchMovieTorrents(idx, media.PrimaryTitle())
		case model.KindSeries:
			torrents, searchErr = a.client.SearchSeriesTorrents(idx, media.PrimaryTitle())
		}
		if searchErr != nil {
			// An adapter failure yields an empty list and is logged; it
			// never aborts the aggregate search.
			a.log.Warnw("indexer search failed", "indexer", idx.Name, "error", searchErr)
			continue
		}

		for _, t := range torrents {
			results = append(results, RawResult{
				RawTitle:  t.Title,
				Size:      int64(t.Size),
				InfoHash:  t.InfoHash,
				Magnet:    t.MagnetUri,
				Link:      t.Link,
				Seeders:   int(t.Seeders),
				Languages: t.Languages,
				Indexer:   idx.Name,
				Privacy:   "public",
				Kind:      string(media.Kind),
			})
		}
	}

	return FilterLowSeeders(results), nil
}
