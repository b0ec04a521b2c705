// Package torrentitem defines the normalised TorrentItem entity that flows
// through the post-processor, the smart container, and the debrid adapters.
package torrentitem

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/streamfusion/streamfusion/internal/parser"
)

// Privacy tags whether a result came from a public or private indexer.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

var infoHashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// File describes one entry of a multi-file torrent.
type File struct {
	Index int    `json:"index"` // 1-based
	Name  string `json:"name"`
	Size  int64  `json:"size"`
}

// TorrentItem is the core entity produced by indexer adapters, enriched by
// the post-processor, and mutated by the smart container as debrid
// availability is discovered. The field list below is canonical: both
// persistence and cache encoding traverse exactly these fields, so adding a
// field here is the one place that needs to change to extend the schema.
type TorrentItem struct {
	InfoHash     string             `json:"info_hash"` // 40-hex lowercase, or "" if unknown
	RawTitle     string             `json:"raw_title"`
	Size         int64              `json:"size"`
	Magnet       string             `json:"magnet"`
	Link         string             `json:"link"`
	Seeders      int                `json:"seeders"`
	Languages    []string           `json:"languages"`
	Indexer      string             `json:"indexer"`
	Privacy      Privacy            `json:"privacy"`
	Kind         string             `json:"type"` // "movie" | "series"
	Trackers     []string           `json:"trackers"`
	Files        []File             `json:"files,omitempty"`
	FileIndex    int                `json:"file_index,omitempty"` // 1-based, chosen file; 0 means unset
	FileName     string             `json:"file_name,omitempty"`
	FullIndex    []File             `json:"full_index,omitempty"` // candidate video files when no definitive match was found
	Availability string             `json:"availability"`         // "" (false) | provider tag, e.g. "RD", "AD", "TB", "PM"
	ParsedData   *parser.ParsedData `json:"parsed_data,omitempty"`
	FromCache    bool               `json:"from_cache,omitempty"` // row originated from the public-cache adapter
}

// ID returns the item's canonical identity: its info hash when known, else a
// synthetic id derived from raw title, size, and indexer.
func (t *TorrentItem) ID() string {
	if t.InfoHash != "" {
		return t.InfoHash
	}
	return SyntheticID(t.RawTitle, t.Size, t.Indexer)
}

// SyntheticID builds the fallback identity for items with no known infohash:
// sha256(raw_title|size|indexer), truncated to the first 16 hex characters.
func SyntheticID(rawTitle string, size int64, indexer string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", rawTitle, size, indexer)))
	return hex.EncodeToString(sum[:])[:16]
}

// ValidInfoHash reports whether s is a well-formed 40-hex lowercase infohash.
func ValidInfoHash(s string) bool {
	return infoHashPattern.MatchString(s)
}

// IsAvailable reports whether some debrid provider has marked this item cached.
func (t *TorrentItem) IsAvailable() bool {
	return t.Availability != ""
}

// SetAvailability upgrades availability to provider, enforcing the
// monotonic false -> provider-tag transition: once a provider tag is set, a
// later call never clears it back to false and never silently swaps it for
// a different provider's tag (first provider to mark an item wins).
func (t *TorrentItem) SetAvailability(provider string) {
	if provider == "" {
		return
	}
	if t.Availability == "" {
		t.Availability = provider
	}
}

// Clone returns a shallow copy safe to mutate independently (slices are
// re-sliced, not deep-copied, matching the item's read-mostly usage after
// insertion into the smart container).
func (t *TorrentItem) Clone() *TorrentItem {
	c := *t
	return &c
}
