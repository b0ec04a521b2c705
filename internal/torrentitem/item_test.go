package torrentitem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDPrefersInfoHash(t *testing.T) {
	item := &TorrentItem{InfoHash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	require.Equal(t, item.InfoHash, item.ID())
}

func TestIDFallsBackToSyntheticID(t *testing.T) {
	item := &TorrentItem{RawTitle: "Some.Title", Size: 123, Indexer: "Jackett"}
	id := item.ID()
	require.Len(t, id, 16)
	require.Equal(t, SyntheticID("Some.Title", 123, "Jackett"), id)
}

func TestValidInfoHash(t *testing.T) {
	require.True(t, ValidInfoHash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.False(t, ValidInfoHash("not-a-hash"))
	require.False(t, ValidInfoHash("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"))
}

func TestSetAvailabilityIsUpgradeOnly(t *testing.T) {
	item := &TorrentItem{}
	require.False(t, item.IsAvailable())

	item.SetAvailability("RD")
	require.Equal(t, "RD", item.Availability)

	// A later, different provider never overwrites the first winner.
	item.SetAvailability("AD")
	require.Equal(t, "RD", item.Availability)

	// Calling with an empty tag is a no-op.
	item.SetAvailability("")
	require.Equal(t, "RD", item.Availability)
}

func TestCloneIsIndependent(t *testing.T) {
	item := &TorrentItem{RawTitle: "Original", Languages: []string{"en"}}
	clone := item.Clone()
	clone.RawTitle = "Changed"
	require.Equal(t, "Original", item.RawTitle)
	require.Equal(t, "Changed", clone.RawTitle)
}
