package container

import (
	"testing"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestNewDedupsByID(t *testing.T) {
	a := &torrentitem.TorrentItem{InfoHash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", RawTitle: "A"}
	dupe := &torrentitem.TorrentItem{InfoHash: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", RawTitle: "A dupe"}
	b := &torrentitem.TorrentItem{InfoHash: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", RawTitle: "B"}

	c := New([]*torrentitem.TorrentItem{a, dupe, b}, model.Media{}, testLogger())
	require.Len(t, c.Items(), 2)
	require.Equal(t, []string{"A", "B"}, titlesOf(c.Items()))
}

func TestItemsPreservesInsertionOrder(t *testing.T) {
	items := []*torrentitem.TorrentItem{
		{InfoHash: "1111111111111111111111111111111111111111", RawTitle: "first"},
		{InfoHash: "2222222222222222222222222222222222222222", RawTitle: "second"},
		{InfoHash: "3333333333333333333333333333333333333333", RawTitle: "third"},
	}
	c := New(items, model.Media{}, testLogger())
	require.Equal(t, []string{"first", "second", "third"}, titlesOf(c.Items()))
}

func TestUnavailableHashes(t *testing.T) {
	cached := &torrentitem.TorrentItem{InfoHash: "1111111111111111111111111111111111111111", Availability: "RD"}
	pending := &torrentitem.TorrentItem{InfoHash: "2222222222222222222222222222222222222222"}

	c := New([]*torrentitem.TorrentItem{cached, pending}, model.Media{}, testLogger())
	require.Equal(t, []string{"2222222222222222222222222222222222222222"}, c.UnavailableHashes())
}

func TestDirectTorrentableRequiresPublicAndFileIndex(t *testing.T) {
	ready := &torrentitem.TorrentItem{InfoHash: "1111111111111111111111111111111111111111", Privacy: torrentitem.PrivacyPublic, FileIndex: 1}
	noFile := &torrentitem.TorrentItem{InfoHash: "2222222222222222222222222222222222222222", Privacy: torrentitem.PrivacyPublic}
	private := &torrentitem.TorrentItem{InfoHash: "3333333333333333333333333333333333333333", Privacy: torrentitem.PrivacyPrivate, FileIndex: 1}

	c := New([]*torrentitem.TorrentItem{ready, noFile, private}, model.Media{}, testLogger())
	require.Equal(t, []*torrentitem.TorrentItem{ready}, c.DirectTorrentable())
}

func TestBestMatchingPassesThroughPureMagnets(t *testing.T) {
	magnetOnly := &torrentitem.TorrentItem{InfoHash: "1111111111111111111111111111111111111111"}
	c := New([]*torrentitem.TorrentItem{magnetOnly}, model.Media{}, testLogger())
	require.Equal(t, []*torrentitem.TorrentItem{magnetOnly}, c.BestMatching())
}

func TestBestMatchingResolvesFromFullIndex(t *testing.T) {
	item := &torrentitem.TorrentItem{
		InfoHash: "1111111111111111111111111111111111111111",
		Link:     "https://example.com/t.torrent",
		FullIndex: []torrentitem.File{
			{Index: 1, Name: "Show.S01E01.1080p.mkv", Size: 100},
			{Index: 2, Name: "Show.S01E02.1080p.mkv", Size: 200},
		},
	}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindSeries, Season: 1, Episode: 2}, testLogger())

	out := c.BestMatching()
	require.Len(t, out, 1)
	require.Equal(t, 2, out[0].FileIndex)
	require.Equal(t, int64(200), out[0].Size)
}

func TestBestMatchingDropsUnresolvableLinkItem(t *testing.T) {
	item := &torrentitem.TorrentItem{
		InfoHash:  "1111111111111111111111111111111111111111",
		Link:      "https://example.com/t.torrent",
		FullIndex: []torrentitem.File{{Index: 1, Name: "Show.S01E01.1080p.mkv", Size: 100}},
	}
	c := New([]*torrentitem.TorrentItem{item}, model.Media{Kind: model.KindSeries, Season: 9, Episode: 9}, testLogger())
	require.Empty(t, c.BestMatching())
}

func titlesOf(items []*torrentitem.TorrentItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.RawTitle
	}
	return out
}
