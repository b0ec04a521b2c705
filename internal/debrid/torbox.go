package debrid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/container"
	"go.uber.org/zap"
)

// torboxAvailabilityBatch bounds how many hashes go into one
// checkcached?hash=... request. The Python source joins every hash into a
// single unbounded query string; a large search fanning across five
// indexers can easily produce several hundred candidates, which risks
// tripping a URL-length limit upstream, so the Go port chunks instead.
const torboxAvailabilityBatch = 50

// Torbox implements Service against api.torbox.app. Grounded on
// utils/debrid/torbox.py.
type Torbox struct {
	base
}

func NewTorbox(apiKey string, log *zap.SugaredLogger) *Torbox {
	client := resty.New().
		SetBaseURL("https://api.torbox.app/v1/api").
		SetAuthScheme("Bearer").
		SetAuthToken(apiKey)
	return &Torbox{base: newBase(client, log)}
}

func (t *Torbox) Name() string { return "TB" }

type torboxCheckCachedResponse struct {
	Data container.TorboxAvailability `json:"data"`
}

// CheckAvailability hits /torrents/checkcached?format=object in batches of
// torboxAvailabilityBatch hashes, folding each batch's response into cont.
// Mirrors get_availability_bulk.
func (t *Torbox) CheckAvailability(ctx context.Context, cont *container.Container, infoHashes []string) error {
	for start := 0; start < len(infoHashes); start += torboxAvailabilityBatch {
		end := start + torboxAvailabilityBatch
		if end > len(infoHashes) {
			end = len(infoHashes)
		}
		if err := t.checkBatch(ctx, cont, infoHashes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Torbox) checkBatch(ctx context.Context, cont *container.Container, batch []string) error {
	if len(batch) == 0 {
		return nil
	}

	var result torboxCheckCachedResponse
	_, err := t.do(ctx, "torrents/checkcached", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{"hash": strings.Join(batch, ","), "format": "object"}).
			SetResult(&result).
			Get("/torrents/checkcached")
	})
	if err != nil {
		return fmt.Errorf("torbox: check availability: %w", err)
	}

	cont.UpdateTorbox(result.Data)
	return nil
}

type torboxAddResponse struct {
	Data struct {
		TorrentID int `json:"torrent_id"`
	} `json:"data"`
}

type torboxFile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type torboxTorrentInfo struct {
	Data struct {
		DownloadState string       `json:"download_state"`
		Files         []torboxFile `json:"files"`
	} `json:"data"`
}

// GetStreamLink adds the magnet, polls until Torbox reports the torrent
// cached/completed/uploading, selects a file, and requests its direct
// download link. Mirrors get_stream_link/_wait_for_torrent_completion/
// _select_file/request_download_link.
func (t *Torbox) GetStreamLink(ctx context.Context, query StreamQuery) (string, error) {
	var addResp torboxAddResponse
	_, err := t.do(ctx, "torrents/createtorrent", func(req *resty.Request) (*resty.Response, error) {
		return req.SetFormData(map[string]string{"magnet": query.Magnet, "seed": "1", "allow_zip": "true"}).
			SetResult(&addResp).
			Post("/torrents/createtorrent")
	})
	if err != nil {
		return "", fmt.Errorf("torbox: add magnet: %w", err)
	}
	torrentID := addResp.Data.TorrentID

	info, ready := t.waitForCompletion(ctx, torrentID, 300*time.Second, 10*time.Second)
	if !ready {
		return "", ErrTorrentNotReady
	}

	fileID := t.selectFileID(info, query)
	if fileID == 0 {
		return "", fmt.Errorf("torbox: no matching file for S%02dE%02d", query.Season, query.Episode)
	}

	var dl struct {
		Data string `json:"data"`
	}
	_, err = t.do(ctx, "torrents/requestdl", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{"torrent_id": fmt.Sprint(torrentID), "file_id": fmt.Sprint(fileID), "zip_link": "false"}).
			SetResult(&dl).
			Get("/torrents/requestdl")
	})
	if err != nil {
		return "", fmt.Errorf("torbox: request download link: %w", err)
	}
	return dl.Data, nil
}

func (t *Torbox) waitForCompletion(ctx context.Context, torrentID int, timeout, interval time.Duration) (*torboxTorrentInfo, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		info, err := t.torrentInfo(ctx, torrentID)
		if err == nil {
			switch info.Data.DownloadState {
			case "uploading", "completed", "cached":
				return info, true
			}
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(interval):
		}
	}
	return nil, false
}

func (t *Torbox) torrentInfo(ctx context.Context, torrentID int) (*torboxTorrentInfo, error) {
	var info torboxTorrentInfo
	_, err := t.do(ctx, "torrents/mylist", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParam("id", fmt.Sprint(torrentID)).SetResult(&info).Get("/torrents/mylist")
	})
	if err != nil {
		return nil, fmt.Errorf("torbox: torrent info: %w", err)
	}
	return &info, nil
}

func (t *Torbox) selectFileID(info *torboxTorrentInfo, query StreamQuery) int {
	if query.FileIndex > 0 {
		return query.FileIndex
	}
	files := info.Data.Files
	if len(files) == 0 {
		return 0
	}

	var candidates []torboxFile
	if query.Kind == "series" {
		for _, f := range files {
			if seasonEpisodeInFilename(f.Name, query.Season, query.Episode) {
				candidates = append(candidates, f)
			}
		}
	} else {
		candidates = files
	}
	if len(candidates) == 0 {
		return 0
	}

	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.Size > best.Size {
			best = f
		}
	}
	return best.ID
}
