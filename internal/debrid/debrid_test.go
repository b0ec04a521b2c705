package debrid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/container"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newTestContainer(hashes ...string) *container.Container {
	items := make([]*torrentitem.TorrentItem, len(hashes))
	for i, h := range hashes {
		items[i] = &torrentitem.TorrentItem{InfoHash: h}
	}
	return container.New(items, model.Media{Kind: model.KindMovie}, testLogger())
}

func TestRealDebridCheckAvailabilityFiltersEmptyVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"aaaa": {"rd": [{"1": {"filename": "movie.mkv", "filesize": 1000}}]}, "bbbb": {"rd": []}}`))
	}))
	defer server.Close()

	rd := NewRealDebrid("token", testLogger())
	rd.client.SetBaseURL(server.URL)

	cont := newTestContainer("aaaa", "bbbb")
	err := rd.CheckAvailability(context.Background(), cont, []string{"aaaa", "bbbb"})
	require.NoError(t, err)

	aaaa, _ := cont.Lookup("aaaa")
	bbbb, _ := cont.Lookup("bbbb")
	require.True(t, aaaa.IsAvailable())
	require.Equal(t, "movie.mkv", aaaa.FileName)
	require.False(t, bbbb.IsAvailable())
}

func TestRealDebridCheckAvailabilityEmptyInput(t *testing.T) {
	rd := NewRealDebrid("token", testLogger())
	cont := newTestContainer()
	err := rd.CheckAvailability(context.Background(), cont, nil)
	require.NoError(t, err)
}

func TestAllDebridCheckAvailabilityKeepsOnlyInstant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"magnets":[{"hash":"aaaa","instant":true,"files":[{"n":"movie.mkv","s":1000}]},{"hash":"bbbb","instant":false}]}}`))
	}))
	defer server.Close()

	ad := NewAllDebrid("token", "myapp", testLogger())
	ad.client.SetBaseURL(server.URL)

	cont := newTestContainer("aaaa", "bbbb")
	err := ad.CheckAvailability(context.Background(), cont, []string{"aaaa", "bbbb"})
	require.NoError(t, err)

	aaaa, _ := cont.Lookup("aaaa")
	bbbb, _ := cont.Lookup("bbbb")
	require.True(t, aaaa.IsAvailable())
	require.False(t, bbbb.IsAvailable())
}

func TestTorboxCheckAvailabilityChunksBatches(t *testing.T) {
	var requestCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"hash":{"hash":"hash","files":[{"filename":"movie.mkv","filesize":1000}]}}}`))
	}))
	defer server.Close()

	tb := NewTorbox("token", testLogger())
	tb.client.SetBaseURL(server.URL)

	hashes := make([]string, torboxAvailabilityBatch+10)
	for i := range hashes {
		hashes[i] = "hash"
	}

	cont := newTestContainer("hash")
	err := tb.CheckAvailability(context.Background(), cont, hashes)
	require.NoError(t, err)
	require.Equal(t, 2, requestCount)

	item, _ := cont.Lookup("hash")
	require.True(t, item.IsAvailable())
}

func TestPremiumizeCheckAvailabilityMapsPositionalResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","response":[false,true]}`))
	}))
	defer server.Close()

	pm := NewPremiumize("key", testLogger())
	pm.client.SetBaseURL(server.URL)

	cont := newTestContainer("aaaa", "bbbb")
	err := pm.CheckAvailability(context.Background(), cont, []string{"aaaa", "bbbb"})
	require.NoError(t, err)

	aaaa, _ := cont.Lookup("aaaa")
	bbbb, _ := cont.Lookup("bbbb")
	require.False(t, aaaa.IsAvailable())
	require.True(t, bbbb.IsAvailable())
}

func TestRealDebridOAuthRefreshesOnCacheMissThenReuses(t *testing.T) {
	var tokenHits int
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh-token","expires_in":3600}`))
	}))
	defer tokenServer.Close()

	var gotAuth []string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"aaaa": {"rd": []}}`))
	}))
	defer apiServer.Close()

	c := cache.New(1024 * 1024)
	rd := NewRealDebridOAuth("client-id", "client-secret", "refresh-token", c, testLogger())
	rd.client.SetBaseURL(apiServer.URL)
	rd.tokens.client.SetBaseURL(tokenServer.URL)

	cont := newTestContainer("aaaa")
	require.NoError(t, rd.CheckAvailability(context.Background(), cont, []string{"aaaa"}))
	require.NoError(t, rd.CheckAvailability(context.Background(), cont, []string{"aaaa"}))

	require.Equal(t, 1, tokenHits, "access token should be cached and reused across calls")
	require.Equal(t, []string{"Bearer fresh-token", "Bearer fresh-token"}, gotAuth)
}

func TestRealDebridOAuthTokenKeyIsStableForSameCredentials(t *testing.T) {
	c := cache.New(1024 * 1024)
	a := newRDTokenManager(c, "id", "secret", "refresh")
	b := newRDTokenManager(c, "id", "secret", "refresh")
	other := newRDTokenManager(c, "id", "secret", "different-refresh")

	require.Equal(t, a.key, b.key)
	require.NotEqual(t, a.key, other.key)
}

func TestBaseRetriesOn5xxThenSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	b := newBase(resty.New().SetBaseURL(server.URL), testLogger())
	resp, err := b.do(context.Background(), "ping", func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/ping")
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, http.StatusOK, resp.StatusCode())
}
