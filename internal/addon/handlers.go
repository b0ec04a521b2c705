package addon

import (
	"strings"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/search"
	"github.com/gofiber/fiber/v2"
)

// Register mounts every route onto router: manifest (bare and
// {config}-prefixed), stream search, and the configure page. Playback
// routes are mounted separately via PlaybackHandler, since they live
// under their own /{config}/playback/{query} prefix.
func (a *Addon) Register(router fiber.Router) {
	router.Get("/manifest.json", a.handleManifest)
	router.Get("/:config/manifest.json", a.handleManifest)

	router.Get("/stream/:type/:id", a.handleStream)
	router.Get("/:config/stream/:type/:id", a.handleStream)

	router.Get("/configure", a.handleConfigure)
	router.Get("/:config/configure", a.handleConfigure)
}

func (a *Addon) handleManifest(c *fiber.Ctx) error {
	configured := c.Params("config") != ""

	m := Manifest{
		ID:          a.id,
		Name:        a.name,
		Description: "Aggregates public and private torrent indexers, correlates results with debrid cloud caching, and resolves direct playable streams.",
		Version:     a.version,
		Types:       []ContentType{ContentTypeMovie, ContentTypeSeries},
		ResourceItems: []ResourceItem{
			{Name: ResourceStream, Types: []ContentType{ContentTypeMovie, ContentTypeSeries}, IDPrefixes: []string{"tt"}},
		},
		IDPrefixes: []string{"tt"},
		BehaviorHints: &BehaviorHints{
			Configurable:          true,
			ConfigurationRequired: !configured,
		},
	}
	return c.JSON(m)
}

func (a *Addon) handleConfigure(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/html; charset=utf-8")
	return c.SendString(configurePageHTML)
}

type streamsResponse struct {
	Streams []search.StreamRow `json:"streams"`
}

func (a *Addon) handleStream(c *fiber.Ctx) error {
	kind := model.KindMovie
	switch c.Params("type") {
	case "series":
		kind = model.KindSeries
	case "movie":
		kind = model.KindMovie
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unsupported stream type")
	}

	streamID := strings.TrimSuffix(c.Params("id"), ".json")

	cfg, err := DecodeUserConfig(c.Params("config"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	metadataProvider := cfg.MetadataProvider
	if metadataProvider == "" {
		metadataProvider = "cinemeta"
	}

	services := a.perRequestDebrids(cfg)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	minCachedResults := cfg.MinCachedResults
	if minCachedResults <= 0 {
		minCachedResults = 5
	}

	req := search.Request{
		APIKey:           cfg.APIKey,
		Kind:             kind,
		StreamID:         streamID,
		MetadataProvider: metadataProvider,
		Languages:        cfg.Languages,
		ClientIP:         c.IP(),
		Filter:           cfg.FilterConfig(),
		MinCachedResults: minCachedResults,
		MaxResults:       maxResults,
		Torrenting:       cfg.Torrenting,
		CacheResults:     cfg.Cache,
		Toggles: search.AdapterToggles{
			Cache:     cfg.Cache,
			Zilean:    cfg.Zilean,
			Yggflix:   cfg.Yggflix,
			Sharewood: cfg.Sharewood,
			Jackett:   cfg.Jackett,
		},
		Debrids:          a.orderedDebrids(services),
		AdapterOverrides: a.perRequestAdapters(cfg),
		AddonHost:        cfg.AddonHost,
		ConfigBase64:     c.Params("config"),
	}

	rows, err := a.searcher.Search(c.Context(), req)
	if err != nil {
		a.log.Warnw("search failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "search failed")
	}

	return c.JSON(streamsResponse{Streams: rows})
}
