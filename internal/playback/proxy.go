package playback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	proxyBufferSize = 2 * 1024 * 1024
	proxyChunkSize  = 8 * 1024
	proxyMaxRetries = 3
)

// Proxy fetches bytes from a resolved upstream URL and re-streams them to
// the player, honouring Range requests and retrying the whole upstream
// connection on transient read failures. Grounded on web/playback/stream/
// views.py's proxy_stream/get_adaptive_chunk_size; no fiber v2 streaming
// precedent exists elsewhere in the retrieved corpus, so the handler side
// (fiber's SetBodyStreamWriter) is built directly against fiber's own
// documented API rather than an in-pack example.
type Proxy struct {
	client *resty.Client
}

// NewProxy builds a Proxy. When proxyURL is non-empty, outbound upstream
// requests are routed through it (spec §5's optional SOCKS/HTTP proxy for
// playback traffic only, kept separate from indexer/debrid API calls).
func NewProxy(proxyURL string) *Proxy {
	client := resty.New().SetTimeout(0)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &Proxy{client: client}
}

// UpstreamInfo is the subset of a HEAD response the handler needs to set
// response headers before streaming begins.
type UpstreamInfo struct {
	StatusCode    int
	ContentLength int64
	ContentRange  string
	AcceptsRanges bool
}

// Head issues an upstream HEAD to populate response headers ahead of
// streaming, per spec §4.I step 5.
func (p *Proxy) Head(ctx context.Context, url, rangeHeader string) (UpstreamInfo, error) {
	req := p.client.R().SetContext(ctx)
	if rangeHeader != "" {
		req.SetHeader("Range", rangeHeader)
	}
	resp, err := req.Head(url)
	if err != nil {
		return UpstreamInfo{}, fmt.Errorf("playback: upstream HEAD: %w", err)
	}
	info := UpstreamInfo{
		StatusCode:    resp.StatusCode(),
		ContentRange:  resp.Header().Get("Content-Range"),
		AcceptsRanges: resp.Header().Get("Accept-Ranges") == "bytes",
	}
	if cl := resp.Header().Get("Content-Length"); cl != "" {
		fmt.Sscanf(cl, "%d", &info.ContentLength)
	}
	return info, nil
}

// Stream opens the upstream GET (with the given Range header, possibly
// empty) and returns a reader that retries the whole connection up to
// proxyMaxRetries times, with exponential backoff, on transient read
// errors. The caller is responsible for closing the returned reader.
func (p *Proxy) Stream(ctx context.Context, url, rangeHeader string) (io.ReadCloser, *http.Response, error) {
	resp, err := p.open(ctx, url, rangeHeader)
	if err != nil {
		return nil, nil, err
	}
	rr := &retryingReader{
		ctx:         ctx,
		proxy:       p,
		url:         url,
		startOffset: parseRangeStart(rangeHeader),
		current:     resp.RawBody(),
	}
	return rr, resp.RawResponse, nil
}

func (p *Proxy) open(ctx context.Context, url, rangeHeader string) (*resty.Response, error) {
	req := p.client.R().SetContext(ctx).SetDoNotParseResponse(true)
	if rangeHeader != "" {
		req.SetHeader("Range", rangeHeader)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("playback: upstream GET: %w", err)
	}
	return resp, nil
}

// retryingReader wraps the upstream response body, reopening the whole
// connection (from the same byte offset forward, via an updated Range
// header) up to proxyMaxRetries times whenever a chunk read fails.
type retryingReader struct {
	ctx         context.Context
	proxy       *Proxy
	url         string
	startOffset int64
	bytesRead   int64
	current     io.ReadCloser
	attempt     int
}

// parseRangeStart extracts the starting byte offset from a "bytes=N-M"
// (or "bytes=N-") header, defaulting to 0 when absent or unparseable.
func parseRangeStart(rangeHeader string) int64 {
	spec, ok := strings.CutPrefix(rangeHeader, "bytes=")
	if !ok {
		return 0
	}
	start, _, _ := strings.Cut(spec, "-")
	n, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (r *retryingReader) Read(p []byte) (int, error) {
	for {
		n, err := r.current.Read(p)
		if err == nil || err == io.EOF {
			r.bytesRead += int64(n)
			return n, err
		}
		if r.attempt >= proxyMaxRetries {
			return n, err
		}
		r.attempt++
		backoff := time.Duration(1<<uint(r.attempt)) * 100 * time.Millisecond
		time.Sleep(backoff)

		_ = r.current.Close()
		resp, openErr := r.proxy.open(r.ctx, r.url, r.resumeRangeHeader())
		if openErr != nil {
			return n, openErr
		}
		r.current = resp.RawBody()
	}
}

func (r *retryingReader) resumeRangeHeader() string {
	return fmt.Sprintf("bytes=%d-", r.startOffset+r.bytesRead)
}

func (r *retryingReader) Close() error {
	return r.current.Close()
}
