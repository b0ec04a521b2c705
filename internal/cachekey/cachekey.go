// Package cachekey builds the 16-hex cache keys shared by the metadata
// cache, the two-tier search cache, and the playback stream-link cache. The
// shape is fixed by spec §3: all keys are 16-hex truncations of
// sha256(domain | tuple), matching the grounding Python source's
// RedisCache.generate_key exactly.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/streamfusion/streamfusion/internal/model"
)

func hash(domain string, parts ...string) string {
	key := domain + ":" + strings.Join(parts, ":")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// Metadata keys the metadata-provider cache by (streamID, kind, provider).
func Metadata(streamID string, kind model.Kind, provider string) string {
	return hash("media", streamID, string(kind), provider)
}

// UnfilteredSearch keys the shareable, apiKey-less raw-search cache.
func UnfilteredSearch(m model.Media) string {
	yearOrSeason := fmt.Sprintf("%d", m.Year)
	if m.Kind == model.KindSeries {
		yearOrSeason = fmt.Sprintf("%d", m.Season)
	}
	return hash("media", string(m.Kind), m.PrimaryTitle(), yearOrSeason, m.PrimaryLanguage())
}

// FilteredStream keys the per-user, fully ranked stream-row cache.
func FilteredStream(apiKey string, m model.Media) string {
	yearOrSeasonEpisode := fmt.Sprintf("%d", m.Year)
	if m.Kind == model.KindSeries {
		yearOrSeasonEpisode = fmt.Sprintf("%d%d", m.Season, m.Episode)
	}
	return hash("stream", apiKey, string(m.Kind), m.PrimaryTitle(), yearOrSeasonEpisode, m.PrimaryLanguage())
}

// StreamLink keys the resolved, playable-URL cache for one playback request.
func StreamLink(decodedQuery, clientIP string) string {
	return hash("stream_link", decodedQuery, clientIP)
}

// DownloadInProgress keys the same tuple as StreamLink but as a sentinel
// marker written while a "DL" service request is caching in the background.
func DownloadInProgress(decodedQuery, clientIP string) string {
	return hash("dl_in_progress", decodedQuery, clientIP)
}

// Lock keys the distributed lock guarding one playback resolution.
func Lock(apiKey, decodedQuery, clientIP string) string {
	return hash("lock", apiKey, decodedQuery, clientIP)
}
