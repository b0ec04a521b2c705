package debrid

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/container"
	"github.com/streamfusion/streamfusion/internal/parser"
	"go.uber.org/zap"
)

// AllDebrid implements Service against api.alldebrid.com. Grounded on
// utils/debrid/alldebrid.py.
type AllDebrid struct {
	base
	agent string
}

func NewAllDebrid(apiToken, agent string, log *zap.SugaredLogger) *AllDebrid {
	client := resty.New().
		SetBaseURL("https://api.alldebrid.com/v4").
		SetAuthScheme("Bearer").
		SetAuthToken(apiToken)
	return &AllDebrid{base: newBase(client, log), agent: agent}
}

func (a *AllDebrid) Name() string { return "AD" }

// CheckAvailability hits magnet/instant with a batch of hashes and folds
// the response straight into cont. Mirrors get_availability_bulk /
// __update_availability_alldebrid.
func (a *AllDebrid) CheckAvailability(ctx context.Context, cont *container.Container, infoHashes []string) error {
	if len(infoHashes) == 0 {
		return nil
	}

	var result container.AllDebridAvailability
	_, err := a.do(ctx, "magnet/instant", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParam("agent", a.agent).
			SetFormData(map[string][]string{"magnets[]": infoHashes}).
			SetResult(&result).
			Post("/magnet/instant")
	})
	if err != nil {
		return fmt.Errorf("alldebrid: check availability: %w", err)
	}

	cont.UpdateAllDebrid(result)
	return nil
}

type adAddMagnetResponse struct {
	Status string `json:"status"`
	Data   struct {
		Magnets []struct {
			ID int `json:"id"`
		} `json:"magnets"`
	} `json:"data"`
}

type adMagnetStatusResponse struct {
	Data struct {
		Magnets struct {
			Status string       `json:"status"`
			Links  []adLinkInfo `json:"links"`
		} `json:"magnets"`
	} `json:"data"`
}

type adLinkInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Link     string `json:"link"`
}

// GetStreamLink adds the magnet, waits for AllDebrid to report it Ready,
// then picks the largest file (movie) or the largest season/episode
// matching file (series) and unrestricts its link. Mirrors
// get_stream_link/__add_magnet_or_torrent.
func (a *AllDebrid) GetStreamLink(ctx context.Context, query StreamQuery) (string, error) {
	var addResp adAddMagnetResponse
	_, err := a.do(ctx, "magnet/upload", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParam("agent", a.agent).
			SetFormData(map[string]string{"magnets[]": query.Magnet}).
			SetResult(&addResp).
			Post("/magnet/upload")
	})
	if err != nil || addResp.Status != "success" || len(addResp.Data.Magnets) == 0 {
		return "", fmt.Errorf("alldebrid: add magnet: %w", err)
	}
	torrentID := addResp.Data.Magnets[0].ID

	status, err := a.waitForReady(ctx, torrentID, 30*time.Second, 5*time.Second)
	if err != nil {
		return "", err
	}
	if status == nil {
		return "", ErrTorrentNotReady
	}

	var candidates []adLinkInfo
	if query.Kind == "series" {
		for _, f := range status.Data.Magnets.Links {
			parsed := parser.Parse(f.Filename)
			if containsInt(parsed.Seasons, query.Season) && containsInt(parsed.Episodes, query.Episode) {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			return "", fmt.Errorf("alldebrid: no matching files for S%02dE%02d", query.Season, query.Episode)
		}
	} else {
		candidates = status.Data.Magnets.Links
	}
	if len(candidates) == 0 {
		return "", ErrTorrentNotReady
	}

	best := candidates[0]
	for _, f := range candidates[1:] {
		if f.Size > best.Size {
			best = f
		}
	}

	return a.unrestrict(ctx, best.Link)
}

func (a *AllDebrid) waitForReady(ctx context.Context, torrentID int, timeout, interval time.Duration) (*adMagnetStatusResponse, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := a.magnetStatus(ctx, torrentID)
		if err != nil {
			return nil, err
		}
		if status.Data.Magnets.Status == "Ready" {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, nil
}

func (a *AllDebrid) magnetStatus(ctx context.Context, torrentID int) (*adMagnetStatusResponse, error) {
	var status adMagnetStatusResponse
	_, err := a.do(ctx, "magnet/status", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{"agent": a.agent, "id": fmt.Sprint(torrentID)}).
			SetResult(&status).
			Get("/magnet/status")
	})
	if err != nil {
		return nil, fmt.Errorf("alldebrid: magnet status: %w", err)
	}
	return &status, nil
}

func (a *AllDebrid) unrestrict(ctx context.Context, link string) (string, error) {
	var out struct {
		Data struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	_, err := a.do(ctx, "link/unlock", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{"agent": a.agent, "link": link}).
			SetResult(&out).
			Get("/link/unlock")
	})
	if err != nil {
		return "", fmt.Errorf("alldebrid: unrestrict link: %w", err)
	}
	return out.Data.Link, nil
}
