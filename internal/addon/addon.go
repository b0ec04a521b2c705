// Package addon wires the HTTP surface exposed to the media player:
// manifest, stream search, playback, and the browser-facing configure
// page. Grounded on the teacher's fiber-based Addon, generalized from a
// single fixed RealDebrid/Prowlarr pairing to the full multi-indexer,
// multi-debrid, per-user-configured pipeline internal/search and
// internal/playback implement.
package addon

import (
	"fmt"

	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/debrid"
	"github.com/streamfusion/streamfusion/internal/indexer"
	"github.com/streamfusion/streamfusion/internal/indexer/torrentfile"
	"github.com/streamfusion/streamfusion/internal/metadata"
	"github.com/streamfusion/streamfusion/internal/playback"
	"github.com/streamfusion/streamfusion/internal/prowlarr"
	"github.com/streamfusion/streamfusion/internal/search"
	"github.com/streamfusion/streamfusion/internal/store"
	"go.uber.org/zap"
)

const defaultCacheSizeBytes = 64 * 1024 * 1024

// Addon owns every long-lived dependency the HTTP surface needs: the
// shared cache, the deployment-wide indexer/metadata adapters, the api
// key store, and the search/playback orchestrators built on top of them.
type Addon struct {
	id, name, version string

	prowlarrURL, prowlarrAPIKey string
	publicCacheURL              string
	zileanURL                   string
	yggflixURL                  string
	sharewoodURL                string
	tmdbAPIKey                  string
	defaultDownloadTag          string
	directLinkMode              bool
	cacheSizeBytes              int
	proxyURL                    string

	log      *zap.SugaredLogger
	cache    *cache.Cache
	apiKeys  store.APIKeyStore
	searcher *search.Searcher
	resolver *playback.Resolver
	proxy    *playback.Proxy

	baseAdapters map[string]indexer.Adapter
}

// New assembles an Addon from the given options, wiring the deployment-
// wide indexer/metadata adapters and constructing the search and playback
// orchestrators. Call Register to mount its routes onto a fiber app.
func New(opts ...Option) *Addon {
	a := &Addon{
		id:             "com.streamfusion.addon",
		name:           "StreamFusion",
		version:        "1.0.0",
		cacheSizeBytes: defaultCacheSizeBytes,
		log:            zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.cache = cache.New(a.cacheSizeBytes)
	a.apiKeys = store.NewMemoryAPIKeyStore()

	a.baseAdapters = make(map[string]indexer.Adapter)
	if a.publicCacheURL != "" {
		a.baseAdapters["cache"] = indexer.NewPublicCacheAdapter(a.publicCacheURL, a.log)
	}
	if a.zileanURL != "" {
		a.baseAdapters["zilean"] = indexer.NewZileanAdapter(a.zileanURL, a.log)
	}
	if a.prowlarrURL != "" && a.prowlarrAPIKey != "" {
		client := prowlarr.New(a.prowlarrURL, a.prowlarrAPIKey)
		a.baseAdapters["jackett"] = indexer.NewProwlarrAdapter(client, a.log)
	}

	metadataProviders := map[string]metadata.Provider{
		"cinemeta": metadata.NewCinemeta(),
	}
	if a.tmdbAPIKey != "" {
		metadataProviders["tmdb"] = metadata.NewTMDB(a.tmdbAPIKey)
	}

	resolver := torrentfile.NewResolver(a.log)
	a.searcher = search.New(a.apiKeys, a.cache, metadataProviders, a.baseAdapters, resolver, a.log)
	a.resolver = playback.NewResolver(a.cache, nil, nil, a.log)
	a.proxy = playback.NewProxy(a.proxyURL)

	return a
}

// perRequestAdapters builds the Yggflix/Sharewood overrides that need the
// requester's own passkey (spec §6.A), layered on top of the deployment-
// wide base adapters already held by the Searcher.
func (a *Addon) perRequestAdapters(cfg UserConfig) map[string]indexer.Adapter {
	overrides := make(map[string]indexer.Adapter)
	if cfg.Yggflix && cfg.YggPasskey != "" && a.yggflixURL != "" {
		overrides["yggflix"] = indexer.NewYggflixAdapter(a.yggflixURL, cfg.YggPasskey, a.log)
	}
	if cfg.Sharewood && cfg.SharewoodPasskey != "" && a.sharewoodURL != "" {
		overrides["sharewood"] = indexer.NewSharewoodAdapter(a.sharewoodURL, cfg.SharewoodPasskey, a.log)
	}
	return overrides
}

// perRequestDebrids builds one debrid.Service per configured token,
// keyed by provider tag, matching spec §6.A's RDToken/ADToken/TBToken/
// PMToken fields.
func (a *Addon) perRequestDebrids(cfg UserConfig) map[string]debrid.Service {
	services := make(map[string]debrid.Service)
	if cfg.RDClientID != "" && cfg.RDClientSecret != "" && cfg.RDRefreshToken != "" {
		services["RD"] = debrid.NewRealDebridOAuth(cfg.RDClientID, cfg.RDClientSecret, cfg.RDRefreshToken, a.cache, a.log)
	} else if cfg.RDToken != "" {
		services["RD"] = debrid.NewRealDebrid(cfg.RDToken, a.log)
	}
	if cfg.ADToken != "" {
		services["AD"] = debrid.NewAllDebrid(cfg.ADToken, a.id, a.log)
	}
	if cfg.TBToken != "" {
		services["TB"] = debrid.NewTorbox(cfg.TBToken, a.log)
	}
	if cfg.PMToken != "" {
		services["PM"] = debrid.NewPremiumize(cfg.PMToken, a.log)
	}
	return services
}

func (a *Addon) orderedDebrids(services map[string]debrid.Service) []debrid.Service {
	var ordered []debrid.Service
	for _, tag := range []string{"RD", "AD", "TB", "PM"} {
		if svc, ok := services[tag]; ok {
			ordered = append(ordered, svc)
		}
	}
	return ordered
}

func (a *Addon) defaultDownloadService(services map[string]debrid.Service) debrid.Service {
	if a.defaultDownloadTag != "" {
		if svc, ok := services[a.defaultDownloadTag]; ok {
			return svc
		}
	}
	for _, tag := range []string{"RD", "AD", "TB", "PM"} {
		if svc, ok := services[tag]; ok {
			return svc
		}
	}
	return nil
}

// DebridsForConfig implements playback.DebridsForConfig: it decodes the
// {config} path segment and builds the requester's own debrid services.
func (a *Addon) DebridsForConfig(configSegment string) (string, map[string]debrid.Service, error) {
	cfg, err := DecodeUserConfig(configSegment)
	if err != nil {
		return "", nil, fmt.Errorf("addon: invalid config: %w", err)
	}
	return cfg.APIKey, a.perRequestDebrids(cfg), nil
}

// PlaybackHandler builds the fiber handler for the /{config}/{query}
// routes, wired against this Addon's shared resolver/proxy.
func (a *Addon) PlaybackHandler() *playback.Handler {
	return playback.NewHandler(a.resolver, a.proxy, a.DebridsForConfig, a.directLinkMode, a.log)
}
