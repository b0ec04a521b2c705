// Package search implements the single public search entry point that ties
// api-key validation, metadata lookup, the indexer fan-out, post-
// processing, filtering, the smart container, and debrid availability
// together into player-ready stream rows. Grounded end-to-end on
// web/root/search/views.py's get_results/perform_search/
// get_and_filter_results/stream_processing pipeline.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/cachekey"
	"github.com/streamfusion/streamfusion/internal/container"
	"github.com/streamfusion/streamfusion/internal/debrid"
	"github.com/streamfusion/streamfusion/internal/filter"
	"github.com/streamfusion/streamfusion/internal/indexer"
	"github.com/streamfusion/streamfusion/internal/indexer/torrentfile"
	"github.com/streamfusion/streamfusion/internal/metadata"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/pipe"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// unfilteredSearchTTL bounds how long a shareable, apiKey-less raw-result
// list lives in cache. The spec names exact TTLs for the filtered-stream
// cache (<=20min), the DL-in-progress marker (10min), and the stream-link
// cache (1hr), but leaves this one unspecified; 30 minutes keeps results
// fresh across the handful of requests a single title sees in quick
// succession without risking staleness against new seeders/availability.
const unfilteredSearchTTL = 30 * 60

// filteredStreamTTL is the upper bound the spec sets on the per-user,
// fully ranked stream-row cache.
const filteredStreamTTL = 20 * 60

// resolveConcurrency bounds the post-processor's per-search fan-out
// (fetching/decoding .torrent files for raw rows that didn't already carry
// an info hash or magnet).
const resolveConcurrency = 8

// ErrUnauthorized is returned when the api-key validator rejects a request.
var ErrUnauthorized = errors.New("search: invalid or inactive api key")

// APIKeyValidator abstracts the persisted api_keys DAO (spec §6.E):
// checking validity and recording usage are the only operations the
// orchestrator needs.
type APIKeyValidator interface {
	Check(ctx context.Context, apiKey string) error
}

// AdapterToggles mirrors the per-request feature toggles of spec §6.A.
type AdapterToggles struct {
	Cache     bool
	Zilean    bool
	Yggflix   bool
	Sharewood bool
	Jackett   bool
}

// Request is everything one search call needs beyond what's wired into the
// Searcher at construction time.
type Request struct {
	APIKey           string
	Kind             model.Kind
	StreamID         string
	MetadataProvider string // "cinemeta" | "tmdb"
	Languages        []string
	ClientIP         string

	Filter           filter.Config
	MinCachedResults int
	MaxResults       int
	Torrenting       bool
	CacheResults     bool // spec's "if caching is enabled, fire cache_container_items"

	Toggles AdapterToggles
	Debrids []debrid.Service // configured order; first to mark an item wins

	// AdapterOverrides supplies per-request adapter instances (Yggflix/
	// Sharewood need the requester's own passkey, spec §6.A) that take
	// precedence over the Searcher's deployment-wide adapter of the same
	// name when present.
	AdapterOverrides map[string]indexer.Adapter

	AddonHost string
	// ConfigBase64 is the already-encoded (and %3D-escaped) config path
	// segment the addon layer built once for this request; stream rows
	// embed it verbatim in their playback URL.
	ConfigBase64 string
}

// Searcher owns every dependency the pipeline needs and is safe for
// concurrent use across requests.
type Searcher struct {
	apiKeys           APIKeyValidator
	cache             *cache.Cache
	metadataProviders map[string]metadata.Provider
	adapters          map[string]indexer.Adapter
	resolver          *torrentfile.Resolver
	log               *zap.SugaredLogger
}

func New(apiKeys APIKeyValidator, c *cache.Cache, metadataProviders map[string]metadata.Provider, adapters map[string]indexer.Adapter, resolver *torrentfile.Resolver, log *zap.SugaredLogger) *Searcher {
	return &Searcher{
		apiKeys:           apiKeys,
		cache:             c,
		metadataProviders: metadataProviders,
		adapters:          adapters,
		resolver:          resolver,
		log:               log,
	}
}

// Search runs the full pipeline described in spec §4.H and returns
// player-ready stream rows.
func (s *Searcher) Search(ctx context.Context, req Request) ([]StreamRow, error) {
	if err := s.apiKeys.Check(ctx, req.APIKey); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, err)
	}

	media, err := s.getMetadata(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: metadata lookup: %w", err)
	}

	filteredKey := cachekey.FilteredStream(req.APIKey, media)
	if cached, err := s.cache.Get(filteredKey); err == nil {
		var rows []StreamRow
		if json.Unmarshal([]byte(cached), &rows) == nil {
			return rows, nil
		}
	}

	items, err := s.unfilteredItems(ctx, media, req)
	if err != nil {
		return nil, fmt.Errorf("search: collecting results: %w", err)
	}

	fromCache := make(map[*torrentitem.TorrentItem]bool, len(items))
	for _, item := range items {
		if item.FromCache {
			fromCache[item] = true
		}
	}

	filtered := filter.Apply(items, media, req.Filter, fromCache)

	cont := container.New(filtered, media, s.log)
	for _, svc := range req.Debrids {
		hashes := cont.UnavailableHashes()
		if len(hashes) == 0 {
			break
		}
		if err := svc.CheckAvailability(ctx, cont, hashes); err != nil {
			s.log.Warnw("debrid availability check failed", "provider", svc.Name(), "error", err)
		}
	}

	if req.CacheResults {
		if err := s.cacheUnfilteredItems(cont.Items(), media); err != nil {
			s.log.Warnw("caching container items failed", "error", err)
		}
	}

	best := cont.BestMatching()
	best = filter.Sort(best, req.Filter)

	rows := BuildStreamRows(best, req, media)

	if data, err := json.Marshal(rows); err == nil {
		_ = s.cache.Set(filteredKey, string(data), filteredStreamTTL)
	}

	return rows, nil
}

func (s *Searcher) getMetadata(ctx context.Context, req Request) (model.Media, error) {
	providerName := req.MetadataProvider
	if providerName == "" {
		providerName = "cinemeta"
	}
	provider, ok := s.metadataProviders[providerName]
	if !ok {
		return model.Media{}, fmt.Errorf("unknown metadata provider %q", providerName)
	}

	key := cachekey.Metadata(req.StreamID, req.Kind, providerName)
	if cached, err := s.cache.Get(key); err == nil {
		var media model.Media
		if json.Unmarshal([]byte(cached), &media) == nil {
			return media, nil
		}
	}

	media, err := provider.GetMetadata(ctx, req.StreamID, req.Kind, req.Languages)
	if err != nil {
		return model.Media{}, err
	}
	if data, err := json.Marshal(media); err == nil {
		_ = s.cache.Set(key, string(data), unfilteredSearchTTL)
	}
	return media, nil
}

// unfilteredItems serves the shareable raw-result cache when present,
// otherwise runs the adapter fan-out and post-processor and stores the
// result. The write happens once fanOut returns, also when an adapter
// failed or was cancelled by the minCachedResults cut-off; because the
// write merges with the cached entry, rows missing from this run do not
// remove rows already cached.
func (s *Searcher) unfilteredItems(ctx context.Context, media model.Media, req Request) ([]*torrentitem.TorrentItem, error) {
	key := cachekey.UnfilteredSearch(media)
	if cached, err := s.cache.Get(key); err == nil {
		var items []*torrentitem.TorrentItem
		if json.Unmarshal([]byte(cached), &items) == nil {
			return items, nil
		}
	}

	raw := s.fanOut(ctx, media, req)
	items := s.resolveAll(ctx, media, raw)

	s.storeUnfilteredItems(key, items)

	return items, nil
}

// storeUnfilteredItems writes items into the unfiltered-search cache,
// merged with whatever is already there (spec §4.C). Concurrent searches
// on the same key race on this unlocked read-merge-write, and the last
// writer wins: its value is the union of its own items and the entry it
// read (higher seeders kept on collision), so items another writer stored
// between that read and this write are dropped (spec §4.H's single-flight
// note).
func (s *Searcher) storeUnfilteredItems(key string, items []*torrentitem.TorrentItem) {
	merged := s.mergeWithCached(key, items)
	if data, err := json.Marshal(merged); err == nil {
		_ = s.cache.Set(key, string(data), unfilteredSearchTTL)
	}
}

func (s *Searcher) mergeWithCached(key string, fresh []*torrentitem.TorrentItem) []*torrentitem.TorrentItem {
	cached, err := s.cache.Get(key)
	if err != nil {
		return fresh
	}
	var existing []*torrentitem.TorrentItem
	if json.Unmarshal([]byte(cached), &existing) != nil {
		return fresh
	}
	return torrentitem.Merge(existing, fresh)
}

// fanOut runs every enabled adapter concurrently, collecting results as
// they complete and cancelling the remaining in-flight calls once the
// running total reaches req.MinCachedResults. Mirrors perform_search's
// asyncio.gather, generalized to early-cancel per spec §4.H/§5.
func (s *Searcher) fanOut(ctx context.Context, media model.Media, req Request) []indexer.RawResult {
	type named struct {
		name    string
		adapter indexer.Adapter
	}

	var enabled []named
	for _, t := range []struct {
		on   bool
		name string
	}{
		{req.Toggles.Cache, "cache"},
		{req.Toggles.Zilean, "zilean"},
		{req.Toggles.Yggflix, "yggflix"},
		{req.Toggles.Sharewood, "sharewood"},
		{req.Toggles.Jackett, "jackett"},
	} {
		if !t.on {
			continue
		}
		if a, ok := req.AdapterOverrides[t.name]; ok {
			enabled = append(enabled, named{t.name, a})
			continue
		}
		if a, ok := s.adapters[t.name]; ok {
			enabled = append(enabled, named{t.name, a})
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultsCh := make(chan []indexer.RawResult, len(enabled))
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var combinedErr error
	for _, n := range enabled {
		wg.Add(1)
		go func(n named) {
			defer wg.Done()
			rows, err := n.adapter.Search(fanCtx, media)
			if err != nil {
				errMu.Lock()
				combinedErr = multierr.Append(combinedErr, fmt.Errorf("%s: %w", n.name, err))
				errMu.Unlock()
				return
			}
			resultsCh <- indexer.FilterLowSeeders(rows)
		}(n)
	}
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var all []indexer.RawResult
	total := 0
	for rows := range resultsCh {
		all = append(all, rows...)
		total += len(rows)
		if req.MinCachedResults > 0 && total >= req.MinCachedResults {
			cancel()
		}
	}
	if combinedErr != nil {
		s.log.Warnw("one or more indexer adapters failed", "errors", combinedErr)
	}
	return all
}

func (s *Searcher) resolveAll(ctx context.Context, media model.Media, raw []indexer.RawResult) []*torrentitem.TorrentItem {
	items, _ := pipe.ParallelMap(ctx, raw, resolveConcurrency, func(ctx context.Context, r indexer.RawResult) (*torrentitem.TorrentItem, error) {
		return s.resolver.Resolve(ctx, media, r), nil
	})
	return items
}

// cacheUnfilteredItems re-stores the unfiltered-search cache with the
// container's post-availability item set, merged against whatever is
// already cached (spec §4.C), so a later search on the same media key
// benefits from already-known availability without re-running
// bulk_availability. It uses the same unlocked read-merge-write as
// storeUnfilteredItems. Mirrors cache_container_items.
func (s *Searcher) cacheUnfilteredItems(items []*torrentitem.TorrentItem, media model.Media) error {
	key := cachekey.UnfilteredSearch(media)
	merged := s.mergeWithCached(key, items)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return s.cache.Set(key, string(data), unfilteredSearchTTL)
}
