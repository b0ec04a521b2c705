// Package metadata resolves a Stremio stream id ("tt1234567" for a movie,
// "tt1234567:1:2" for season 1 episode 2 of a series) into the normalised
// model.Media every other component searches and filters against.
// Grounded on stream_fusion/utils/metdata/{cinemeta,tmdb}.py (via the
// teacher's internal/cinemeta client for the Cinemeta response shape) and
// the teacher's internal/model.MetaInfo reconstruction.
package metadata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/streamfusion/streamfusion/internal/model"
)

// Provider resolves a Stremio stream id into Media.
type Provider interface {
	GetMetadata(ctx context.Context, streamID string, kind model.Kind, languages []string) (model.Media, error)
}

// ParseStreamID splits a Stremio stream id into its IMDb id and, for
// series, season/episode numbers. Mirrors the `id.split(":")` parsing
// every Python metadata provider does before building its Movie/Series
// result.
func ParseStreamID(streamID string, kind model.Kind) (imdbID string, season, episode int, err error) {
	parts := strings.Split(streamID, ":")
	imdbID = parts[0]
	if kind != model.KindSeries {
		return imdbID, 0, 0, nil
	}
	if len(parts) < 3 {
		return "", 0, 0, fmt.Errorf("metadata: series stream id %q missing season/episode", streamID)
	}
	season, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("metadata: invalid season in %q: %w", streamID, err)
	}
	episode, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("metadata: invalid episode in %q: %w", streamID, err)
	}
	return imdbID, season, episode, nil
}
