package debrid

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// base is embedded by every concrete provider adapter. It carries the
// shared rate limiting (a global request budget plus a tighter one for
// torrent-subpath endpoints) and retry-with-backoff behaviour that
// base_debrid.py's _rate_limit/get_json_response apply uniformly across
// providers. The Go version widens the retry trigger from 429-only to
// 429 and 5xx, since a flaky upstream 502/503 is just as worth a retry as
// a rate limit and the spec calls for resilience against transient
// provider errors.
type base struct {
	client  *resty.Client
	global  *rate.Limiter
	torrent *rate.Limiter
	log     *zap.SugaredLogger
}

const maxAttempts = 5

func newBase(client *resty.Client, log *zap.SugaredLogger) base {
	return base{
		client:  client,
		global:  rate.NewLimiter(rate.Limit(250.0/60.0), 250),
		torrent: rate.NewLimiter(rate.Limit(1), 1),
		log:     log,
	}
}

// do executes build against a provider endpoint, pacing itself against the
// shared limiters and retrying on 429/5xx with exponential backoff
// (1+2^attempt seconds, matching base_debrid.py's wait_time), up to
// maxAttempts.
func (b base) do(ctx context.Context, path string, build func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	if err := b.global.Wait(ctx); err != nil {
		return nil, err
	}
	if strings.Contains(path, "torrents") {
		if err := b.torrent.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := build(b.client.R().SetContext(ctx))
		if err != nil {
			lastErr = err
			b.log.Warnw("debrid request failed", "path", path, "attempt", attempt+1, "error", err)
		} else if resp.StatusCode() == 429 || resp.StatusCode() >= 500 {
			lastErr = fmt.Errorf("debrid: %s returned status %d", path, resp.StatusCode())
			b.log.Warnw("debrid request rate limited or failed upstream", "path", path, "status", resp.StatusCode(), "attempt", attempt+1)
		} else {
			return resp, nil
		}

		if attempt == maxAttempts-1 {
			break
		}
		wait := time.Duration(1+math.Pow(2, float64(attempt))) * time.Second
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("debrid: %s: max attempts reached: %w", path, lastErr)
}
