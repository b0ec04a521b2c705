// Package cache wraps coocood/freecache into the shared key-value cache
// abstraction the rest of the module depends on: get/set-with-ttl/delete/
// exists, plus a call-site get_or_set single-flight helper and a
// SETNX-style distributed lock. Grounded on the teacher's use of freecache
// in internal/addon/addon.go and on stream_fusion/utils/cache/local_redis.py
// for the get_or_set/lock shape.
package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/coocood/freecache"
)

// Sentinel values shared across the debrid and playback layers.
const (
	NoCacheVideoURL      = "NO_CACHE_VIDEO_URL"
	DownloadInProgress   = "DOWNLOAD_IN_PROGRESS"
	DefaultSize          = 64 * 1024 * 1024
)

var ErrNotFound = errors.New("cache: key not found")

// Cache is a process-wide TTL'd key-value store.
type Cache struct {
	store *freecache.Cache
}

func New(sizeBytes int) *Cache {
	if sizeBytes <= 0 {
		sizeBytes = DefaultSize
	}
	return &Cache{store: freecache.NewCache(sizeBytes)}
}

func (c *Cache) Get(key string) (string, error) {
	v, err := c.store.Get([]byte(key))
	if err != nil {
		return "", ErrNotFound
	}
	return string(v), nil
}

func (c *Cache) Set(key, value string, ttlSeconds int) error {
	return c.store.Set([]byte(key), []byte(value), ttlSeconds)
}

func (c *Cache) Exists(key string) bool {
	_, err := c.store.Get([]byte(key))
	return err == nil
}

func (c *Cache) Delete(key string) {
	c.store.Del([]byte(key))
}

func (c *Cache) TTL(key string) (int, error) {
	_, expiry, err := c.store.GetWithExpiration([]byte(key))
	if err != nil {
		return 0, ErrNotFound
	}
	return int(expiry), nil
}

// GetOrSet implements the call-site single-flight pattern: it serves a
// cached value when present, otherwise computes fn, caches it for ttl
// seconds, and returns it. Concurrent callers racing on the same key may
// each invoke fn once (last-writer-wins on the cache entry); this is
// intentional per spec §4.H's "single-flight is only required for the
// stream-link lookup" note — every other cache is a union-safe value.
func (c *Cache) GetOrSet(key string, ttlSeconds int, fn func() (string, error)) (string, error) {
	if v, err := c.Get(key); err == nil {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return "", err
	}
	_ = c.Set(key, v, ttlSeconds)
	return v, nil
}

// Lock is a SETNX-with-expiry distributed lock. freecache has no native
// conditional-set, so acquisition is guarded by the Lock value's mutex;
// this is sufficient for the single-process deployment this module targets
// and mirrors the call shape of stream_fusion's redis_client.lock(...).
type Lock struct {
	cache *Cache
	mu    sync.Mutex
}

func NewLock(c *Cache) *Lock {
	return &Lock{cache: c}
}

// TryAcquire attempts to set key with a ttlSeconds lease, non-blocking.
// Returns true if the lock was acquired.
func (l *Lock) TryAcquire(key string, ttlSeconds int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cache.Exists(key) {
		return false
	}
	_ = l.cache.Set(key, "1", ttlSeconds)
	return true
}

func (l *Lock) Release(key string) {
	l.cache.Delete(key)
}

// WaitFor polls the cache for key up to timeout, sleeping interval between
// attempts, and reports the value once found. Used for both the playback
// lock-wait fallback and the HEAD readiness probe (30 x 1s in both cases
// per spec).
func (c *Cache) WaitFor(key string, timeout, interval time.Duration) (string, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if v, err := c.Get(key); err == nil {
			return v, true
		}
		time.Sleep(interval)
	}
	return "", false
}
