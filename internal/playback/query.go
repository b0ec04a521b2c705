package playback

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Query is the per-playback-request object of spec §6.B: everything a
// provider needs to resolve one playable link, carried base64-JSON-encoded
// as the URL path segment after /playback/{config}/.
type Query struct {
	Magnet          string `json:"magnet"`
	Type            string `json:"type"` // "movie" | "series"
	FileIndex       int    `json:"file_index,omitempty"`
	Season          int    `json:"season,omitempty"`
	Episode         int    `json:"episode,omitempty"`
	TorrentDownload string `json:"torrent_download,omitempty"`
	Service         string `json:"service"` // provider tag, or "DL"
}

// DecodeQuery base64-decodes and unmarshals a playback query path segment,
// returning the parsed query and the raw decoded string (the latter is
// itself the cache-key material, matching decodeb64(query) in the
// grounding source). %3D survives router percent-decoding as a literal
// substring whenever a client double-encodes the segment, so it is
// restored to '=' before the base64 decode either way.
func DecodeQuery(segment string) (Query, string, error) {
	segment = strings.ReplaceAll(segment, "%3D", "=")

	raw, err := base64.StdEncoding.DecodeString(segment)
	if err != nil {
		return Query{}, "", fmt.Errorf("playback: decode query: %w", err)
	}

	var q Query
	if err := json.Unmarshal(raw, &q); err != nil {
		return Query{}, "", fmt.Errorf("playback: parse query: %w", err)
	}
	return q, string(raw), nil
}
