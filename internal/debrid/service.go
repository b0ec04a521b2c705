// Package debrid defines the debrid-provider contract and hosts the
// concrete RealDebrid/AllDebrid/Torbox/Premiumize adapters. Every adapter
// can bulk-check cache availability for the smart container and resolve a
// single playable download link for the playback proxy. Grounded on
// stream_fusion's utils/debrid/{base_debrid,realdebrid,alldebrid,torbox}.py.
package debrid

import (
	"context"
	"errors"

	"github.com/streamfusion/streamfusion/internal/container"
)

// ErrTorrentNotReady is returned by GetStreamLink when a just-added
// torrent/magnet has not finished caching within the adapter's wait
// budget. Mirrors the Python source falling back to a "not cached yet"
// placeholder URL rather than blocking indefinitely.
var ErrTorrentNotReady = errors.New("debrid: torrent is not ready yet")

// StreamQuery is everything a provider needs to resolve one playable link.
type StreamQuery struct {
	InfoHash  string
	Magnet    string
	Link      string // .torrent URL, used when no magnet is known
	Kind      string // "movie" | "series"
	FileIndex int    // 1-based, 0 if unknown
	Season    int
	Episode   int
}

// Service is the contract every debrid provider adapter implements.
type Service interface {
	// Name identifies the provider for logging and the availability tag
	// recorded on TorrentItem.Availability ("RD", "AD", "TB", "PM").
	Name() string

	// CheckAvailability bulk-checks cache status for a batch of info
	// hashes and folds the result directly into cont, tagging each
	// matched item's availability and recording the winning cached file's
	// name/size as the provider's own response dictates.
	CheckAvailability(ctx context.Context, cont *container.Container, infoHashes []string) error

	// GetStreamLink resolves a single direct, playable download URL,
	// adding the magnet/torrent to the account and waiting for it to
	// finish caching if necessary.
	GetStreamLink(ctx context.Context, query StreamQuery) (string, error)
}
