package store

import (
	"context"
	"sync"
	"time"

	"github.com/streamfusion/streamfusion/internal/torrentitem"
)

// TorrentRow mirrors the torrent_items table schema of spec §6.E: the
// persisted form of a torrentitem.TorrentItem plus row bookkeeping.
type TorrentRow struct {
	ID        string
	Item      torrentitem.TorrentItem
	CreatedTS int64
	UpdatedTS int64
}

// TorrentRowStore is the DAO contract for durable torrent-item storage,
// independent of the process-lifetime KV cache internal/cache backs
// search results with. Not exercised by the default in-memory KV-only
// search path, but kept as the schema's completeness boundary per spec
// §6.E.
type TorrentRowStore interface {
	Upsert(ctx context.Context, item torrentitem.TorrentItem) (TorrentRow, error)
	Get(ctx context.Context, id string) (TorrentRow, bool, error)
	ByInfoHash(ctx context.Context, infoHash string) (TorrentRow, bool, error)
}

// MemoryTorrentRowStore is an in-process TorrentRowStore keyed by the
// item's ID (its infohash when known); ByInfoHash is a Get on that same
// map, with no separate index.
type MemoryTorrentRowStore struct {
	mu   sync.Mutex
	rows map[string]*TorrentRow
	now  func() time.Time
}

func NewMemoryTorrentRowStore() *MemoryTorrentRowStore {
	return &MemoryTorrentRowStore{
		rows: make(map[string]*TorrentRow),
		now:  time.Now,
	}
}

func (s *MemoryTorrentRowStore) Upsert(ctx context.Context, item torrentitem.TorrentItem) (TorrentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := item.ID()
	now := s.now().Unix()
	existing, ok := s.rows[id]
	created := now
	if ok {
		created = existing.CreatedTS
	}
	row := &TorrentRow{ID: id, Item: item, CreatedTS: created, UpdatedTS: now}
	s.rows[id] = row
	return *row, nil
}

func (s *MemoryTorrentRowStore) Get(ctx context.Context, id string) (TorrentRow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return TorrentRow{}, false, nil
	}
	return *row, true, nil
}

func (s *MemoryTorrentRowStore) ByInfoHash(ctx context.Context, infoHash string) (TorrentRow, bool, error) {
	return s.Get(ctx, infoHash)
}
