package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/cachekey"
	"github.com/streamfusion/streamfusion/internal/container"
	"github.com/streamfusion/streamfusion/internal/debrid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDebridService struct {
	name      string
	calls     int32
	link      string
	delay     time.Duration
}

func (f *fakeDebridService) Name() string { return f.name }

func (f *fakeDebridService) CheckAvailability(ctx context.Context, cont *container.Container, infoHashes []string) error {
	return nil
}

func (f *fakeDebridService) GetStreamLink(ctx context.Context, query debrid.StreamQuery) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.link, nil
}

func testLog() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func TestResolveCallsProviderOnceAndCachesResult(t *testing.T) {
	svc := &fakeDebridService{name: "RD", link: "https://cdn.example/movie.mp4"}
	r := NewResolver(cache.New(0), map[string]debrid.Service{"RD": svc}, nil, testLog())

	q := Query{Magnet: "magnet:?xt=urn:btih:abc", Type: "movie", Service: "RD"}

	url, err := r.Resolve(context.Background(), "apikey", q, "decoded-query", "1.2.3.4", nil)
	require.NoError(t, err)
	require.Equal(t, svc.link, url)
	require.EqualValues(t, 1, svc.calls)
}

func TestResolveSecondCallerWaitsOnLockAndServesCache(t *testing.T) {
	svc := &fakeDebridService{name: "RD", link: "https://cdn.example/movie.mp4", delay: 200 * time.Millisecond}
	c := cache.New(0)
	r := NewResolver(c, map[string]debrid.Service{"RD": svc}, nil, testLog())

	q := Query{Magnet: "magnet:?xt=urn:btih:abc", Type: "movie", Service: "RD"}

	done := make(chan string, 1)
	go func() {
		url, err := r.Resolve(context.Background(), "apikey", q, "decoded-query", "1.2.3.4", nil)
		require.NoError(t, err)
		done <- url
	}()

	// give the first goroutine time to acquire the lock before the second
	// call races in behind it.
	time.Sleep(20 * time.Millisecond)

	url2, err := r.Resolve(context.Background(), "apikey", q, "decoded-query", "1.2.3.4", nil)
	require.NoError(t, err)
	require.Equal(t, svc.link, url2)

	url1 := <-done
	require.Equal(t, svc.link, url1)
	require.EqualValues(t, 1, svc.calls)
}

func TestResolveDownloadRequestReturnsStubAndCachesInBackground(t *testing.T) {
	// The delay keeps the background resolution from caching the link
	// before the StatusInProgress check below runs.
	svc := &fakeDebridService{name: "RD", link: "https://cdn.example/movie.mp4", delay: 100 * time.Millisecond}
	c := cache.New(0)
	r := NewResolver(c, map[string]debrid.Service{"RD": svc}, svc, testLog())

	q := Query{Magnet: "magnet:?xt=urn:btih:abc", Type: "movie", Service: "DL"}

	url, err := r.Resolve(context.Background(), "apikey", q, "decoded-query-dl", "1.2.3.4", nil)
	require.NoError(t, err)
	require.Equal(t, cache.NoCacheVideoURL, url)

	require.Equal(t, StatusInProgress, r.Status(q, "decoded-query-dl", "1.2.3.4"))

	cached, ok := c.WaitFor(cachekey.StreamLink("decoded-query-dl", "1.2.3.4"), 2*time.Second, 10*time.Millisecond)
	require.True(t, ok)
	require.Equal(t, svc.link, cached)
}
