// Package store defines the persisted-state DAO contracts (spec §6.E) and
// ships one in-memory implementation of each, used by default and by
// tests. A SQL-backed implementation is out of this module's build scope;
// the interfaces are the completeness boundary.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAPIKeyNotFound is returned when a lookup key has no matching row.
var ErrAPIKeyNotFound = errors.New("store: api key not found")

// APIKey mirrors the api_keys table schema of spec §6.E.
type APIKey struct {
	ID            string
	APIKey        uuid.UUID
	Active        bool
	NeverExpire   bool
	ExpirationTS  int64
	LatestQueryTS int64
	TotalQueries  int
	Name          string
}

func (k APIKey) expired(now time.Time) bool {
	if k.NeverExpire {
		return false
	}
	return k.ExpirationTS > 0 && now.Unix() > k.ExpirationTS
}

// APIKeyStore is the DAO contract internal/search's APIKeyValidator
// adapts onto: check validity, record usage, and run the expired-key
// sweep spec §6.E names ("scheduled maintenance task").
type APIKeyStore interface {
	// Check verifies apiKey is active and unexpired, and records the
	// query: updating latest_query_ts and incrementing total_queries in
	// one atomic step, matching the DAO's check_key contract (spec §5's
	// "counters are updated inside the same transaction as the validity
	// check").
	Check(ctx context.Context, apiKey string) error

	Create(ctx context.Context, name string, neverExpire bool, ttl time.Duration) (APIKey, error)
	Deactivate(ctx context.Context, apiKey string) error

	// PruneExpired deletes keys that expired more than idleFor ago and were
	// last queried more than idleFor ago, skipping never_expire keys, per
	// spec §6.E's maintenance task (expired more than 7 days, idle more
	// than 7 days). The Active flag is not considered.
	PruneExpired(ctx context.Context, idleFor time.Duration) (int, error)
}

// MemoryAPIKeyStore is an in-process, mutex-guarded APIKeyStore. It is the
// default implementation for development and the one used by tests.
type MemoryAPIKeyStore struct {
	mu   sync.Mutex
	keys map[string]*APIKey
	now  func() time.Time
}

func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{
		keys: make(map[string]*APIKey),
		now:  time.Now,
	}
}

func (s *MemoryAPIKeyStore) Check(ctx context.Context, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[apiKey]
	if !ok || !k.Active {
		return ErrAPIKeyNotFound
	}
	now := s.now()
	if k.expired(now) {
		return ErrAPIKeyNotFound
	}
	k.LatestQueryTS = now.Unix()
	k.TotalQueries++
	return nil
}

func (s *MemoryAPIKeyStore) Create(ctx context.Context, name string, neverExpire bool, ttl time.Duration) (APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	now := s.now()
	k := &APIKey{
		ID:           id.String(),
		APIKey:       id,
		Active:       true,
		NeverExpire:  neverExpire,
		ExpirationTS: now.Add(ttl).Unix(),
		Name:         name,
	}
	s.keys[id.String()] = k
	return *k, nil
}

func (s *MemoryAPIKeyStore) Deactivate(ctx context.Context, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[apiKey]
	if !ok {
		return ErrAPIKeyNotFound
	}
	k.Active = false
	return nil
}

func (s *MemoryAPIKeyStore) PruneExpired(ctx context.Context, idleFor time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pruned := 0
	for id, k := range s.keys {
		if k.NeverExpire {
			continue
		}
		expiredLongEnough := k.ExpirationTS > 0 && now.Sub(time.Unix(k.ExpirationTS, 0)) > idleFor
		idleLongEnough := now.Sub(time.Unix(k.LatestQueryTS, 0)) > idleFor
		if expiredLongEnough && idleLongEnough {
			delete(s.keys, id)
			pruned++
		}
	}
	return pruned, nil
}
