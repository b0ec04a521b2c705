package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/cachekey"
	"github.com/streamfusion/streamfusion/internal/debrid"
	"go.uber.org/zap"
)

const (
	downloadMarkerTTL = 10 * 60
	streamLinkTTL      = 60 * 60
	lockTTL            = 60
	lockPollTimeout    = 30 * time.Second
	lockPollInterval   = time.Second

	// downloadServiceTag marks a playback query as a background-caching
	// request rather than an immediate-playback one, per spec §4.I step 2.
	downloadServiceTag = "DL"
)

// ErrNotReady is returned when a resolution could not be produced in time
// and the caller should answer the player with a 503.
var ErrNotReady = errors.New("playback: stream link not ready, try again")

// Resolver implements spec §4.I's resolution steps 2-3: it turns a decoded
// playback query into either the NO_CACHE_VIDEO_URL stub (download-request
// branch) or a resolved, directly playable URL (lock/provider/cache
// branch). Grounded on web/playback/stream/views.py's get_stream_link and
// get_playback.
type Resolver struct {
	cacheStore       *cache.Cache
	lock             *cache.Lock
	debrids          map[string]debrid.Service // keyed by provider tag ("RD","AD","TB","PM")
	defaultDownload  debrid.Service            // used for service=="DL" requests
	log              *zap.SugaredLogger
}

func NewResolver(c *cache.Cache, debrids map[string]debrid.Service, defaultDownload debrid.Service, log *zap.SugaredLogger) *Resolver {
	return &Resolver{
		cacheStore:      c,
		lock:            cache.NewLock(c),
		debrids:         debrids,
		defaultDownload: defaultDownload,
		log:             log,
	}
}

// Resolve implements §4.I steps 1-3 (decoding happens at the handler layer,
// which hands in the already-decoded query and its raw string form for
// cache-keying). overrides supplies per-request debrid instances built from
// the requester's own tokens (spec §6.A's RDToken/ADToken/TBToken), taking
// precedence over the Resolver's deployment-wide instance of the same
// provider tag; it may be nil. Resolve returns the resolved URL, or
// ErrNotReady if the caller should answer 503.
func (r *Resolver) Resolve(ctx context.Context, apiKey string, q Query, decodedQuery, clientIP string, overrides map[string]debrid.Service) (string, error) {
	if q.Service == downloadServiceTag {
		return r.startDownload(ctx, q, decodedQuery, clientIP, overrides)
	}

	svc, ok := overrides[q.Service]
	if !ok {
		svc, ok = r.debrids[q.Service]
	}
	if !ok {
		return "", fmt.Errorf("playback: unknown debrid service %q", q.Service)
	}

	linkKey := cachekey.StreamLink(decodedQuery, clientIP)
	lockKey := cachekey.Lock(apiKey, decodedQuery, clientIP)

	if r.lock.TryAcquire(lockKey, lockTTL) {
		defer r.lock.Release(lockKey)

		url, err := svc.GetStreamLink(ctx, debrid.StreamQuery{
			InfoHash:  q.Magnet,
			Magnet:    q.Magnet,
			Link:      q.TorrentDownload,
			Kind:      q.Type,
			FileIndex: q.FileIndex,
			Season:    q.Season,
			Episode:   q.Episode,
		})
		if err != nil {
			return "", fmt.Errorf("playback: resolve stream link: %w", err)
		}
		_ = r.cacheStore.Set(linkKey, url, streamLinkTTL)
		return url, nil
	}

	// Another request holds the lock; wait for its result instead of
	// duplicating the provider call (spec's single-flight guarantee).
	if url, ok := r.cacheStore.WaitFor(linkKey, lockPollTimeout, lockPollInterval); ok {
		return url, nil
	}
	return "", ErrNotReady
}

// startDownload implements the service=="DL" branch: it marks the
// (query,ip) tuple as downloading, kicks off caching on the default-
// download provider in the background, and returns the stub-video URL
// immediately so the player shows a placeholder while caching proceeds.
func (r *Resolver) startDownload(ctx context.Context, q Query, decodedQuery, clientIP string, overrides map[string]debrid.Service) (string, error) {
	svc := r.defaultDownload
	for _, tag := range []string{"RD", "AD", "TB", "PM"} {
		if override, ok := overrides[tag]; ok {
			svc = override
			break
		}
	}
	if svc == nil {
		return "", errors.New("playback: no default download service configured")
	}

	markerKey := cachekey.DownloadInProgress(decodedQuery, clientIP)
	_ = r.cacheStore.Set(markerKey, "1", downloadMarkerTTL)

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		url, err := svc.GetStreamLink(bgCtx, debrid.StreamQuery{
			InfoHash:  q.Magnet,
			Magnet:    q.Magnet,
			Link:      q.TorrentDownload,
			Kind:      q.Type,
			FileIndex: q.FileIndex,
			Season:    q.Season,
			Episode:   q.Episode,
		})
		if err != nil {
			r.log.Warnw("background download caching failed", "error", err)
			return
		}
		linkKey := cachekey.StreamLink(decodedQuery, clientIP)
		_ = r.cacheStore.Set(linkKey, url, streamLinkTTL)
	}()

	return cache.NoCacheVideoURL, nil
}

// Status implements the HEAD polling contract of spec §4.I: it reports
// whether a playable link is ready yet without triggering a new
// resolution.
type Status int

const (
	StatusReady Status = iota
	StatusInProgress
	StatusNotReady
)

func (r *Resolver) Status(q Query, decodedQuery, clientIP string) Status {
	linkKey := cachekey.StreamLink(decodedQuery, clientIP)
	if r.cacheStore.Exists(linkKey) {
		return StatusReady
	}

	if q.Service == downloadServiceTag {
		markerKey := cachekey.DownloadInProgress(decodedQuery, clientIP)
		if r.cacheStore.Exists(markerKey) {
			return StatusInProgress
		}
	}

	if url, ok := r.cacheStore.WaitFor(linkKey, lockPollTimeout, lockPollInterval); ok {
		_ = url
		return StatusReady
	}
	return StatusInProgress
}
