package torrentfile

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/indexer"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/parser"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
	"go.uber.org/zap"
)

// fetch timeouts per source family (spec's redesigned "thread-per-URL
// fetcher replaced by a bounded worker pool", §9): the generic indexer path
// tolerates slow flaresolverr-fronted trackers, Yggflix is faster but still
// generous, Sharewood is fast and rate-limited upstream already.
const (
	genericFetchTimeout   = 40 * time.Second
	yggflixFetchTimeout   = 10 * time.Second
	sharewoodFetchTimeout = 5 * time.Second
)

// Resolver turns a RawResult into a fully resolved TorrentItem: if the row
// already carries a magnet or info hash it is used directly, otherwise the
// .torrent/redirect URL in Link is fetched and decoded.
type Resolver struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

func NewResolver(log *zap.SugaredLogger) *Resolver {
	client := resty.New().SetRedirectPolicy(resty.RedirectPolicyFunc(
		func(req *http.Request, via []*http.Request) error {
			if req.URL.Scheme == "magnet" {
				return http.ErrUseLastResponse
			}
			return nil
		},
	))
	return &Resolver{client: client, log: log}
}

// Resolve builds a TorrentItem from a raw adapter row, fetching and
// decoding a .torrent file when neither an info hash nor a magnet is known
// up front. Mirrors stream_fusion's TorrentService.convert_and_process:
// __process_magnet for magnet links, __process_web_url/__process_ygg_web_url
// for HTTP .torrent/redirect links.
func (r *Resolver) Resolve(ctx context.Context, media model.Media, raw indexer.RawResult) *torrentitem.TorrentItem {
	item := &torrentitem.TorrentItem{
		InfoHash:  strings.ToLower(raw.InfoHash),
		RawTitle:  raw.RawTitle,
		Size:      raw.Size,
		Magnet:    raw.Magnet,
		Link:      raw.Link,
		Seeders:   raw.Seeders,
		Languages: raw.Languages,
		Indexer:   raw.Indexer,
		Privacy:   torrentitem.Privacy(raw.Privacy),
		Kind:      raw.Kind,
		FromCache: raw.FromCache,
	}
	item.ParsedData = parser.Parse(raw.RawTitle)

	switch {
	case item.InfoHash != "" && torrentitem.ValidInfoHash(item.InfoHash):
		// Already resolved (public cache / DMM rows carry the hash directly).
	case item.Magnet != "":
		r.resolveMagnet(item)
	case item.Link != "":
		r.resolveLink(ctx, media, item)
	}

	return item
}

func (r *Resolver) resolveMagnet(item *torrentitem.TorrentItem) {
	m, err := ParseMagnetUri(item.Magnet)
	if err != nil {
		r.log.Debugw("unparseable magnet uri", "indexer", item.Indexer, "error", err)
		return
	}
	item.InfoHash = m.InfoHash
	item.Trackers = m.Trackers
}

func (r *Resolver) resolveLink(ctx context.Context, media model.Media, item *torrentitem.TorrentItem) {
	timeout := genericFetchTimeout
	tolerate422 := false
	if strings.Contains(item.Link, "yggflix") || item.Indexer == "Yggflix" {
		timeout = yggflixFetchTimeout
		tolerate422 = true
	} else if item.Indexer == "Sharewood" {
		timeout = sharewoodFetchTimeout
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := r.client.R().SetContext(fetchCtx).Get(item.Link)
	if err != nil {
		r.log.Warnw("fetch torrent link failed", "link", item.Link, "error", err)
		return
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
		r.decodeAndPopulate(media, item, resp.Body())
	case resp.StatusCode() == http.StatusFound:
		item.Magnet = resp.Header().Get("Location")
		r.resolveMagnet(item)
	case tolerate422 && resp.StatusCode() == 422:
		r.log.Debugw("yggflix reports no torrent for link", "link", item.Link)
	default:
		r.log.Warnw("unexpected status fetching torrent link", "link", item.Link, "status", resp.StatusCode())
	}
}

func (r *Resolver) decodeAndPopulate(media model.Media, item *torrentitem.TorrentItem, body []byte) {
	decoded, err := Decode(body)
	if err != nil {
		r.log.Warnw("invalid torrent file", "link", item.Link, "error", err)
		return
	}

	item.InfoHash = decoded.InfoHash
	item.Trackers = decoded.Trackers
	item.Magnet = decoded.BuildMagnet()

	if len(decoded.Files) == 0 {
		item.FileIndex = 1
		if decoded.Length > 0 {
			item.Size = decoded.Length
		}
		return
	}

	files := make([]torrentitem.File, len(decoded.Files))
	for i, f := range decoded.Files {
		files[i] = torrentitem.File{Index: f.Index + 1, Name: f.Path, Size: f.Length}
	}
	item.Files = files

	if item.Kind == string(model.KindSeries) {
		if sel, ok := SelectEpisodeFile(decoded.Files, media.Season, media.Episode); ok {
			item.FileIndex = sel.Index + 1
			item.FileName = sel.Name
			item.Size = sel.Size
			return
		}
		item.FullIndex = files
		return
	}

	sel := SelectMovieFile(decoded.Files)
	item.FileIndex = sel.Index + 1
	item.FileName = sel.Name
	item.Size = sel.Size
}
