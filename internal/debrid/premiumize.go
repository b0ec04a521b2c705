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

// Premiumize implements Service against www.premiumize.me/api. There is no
// Python source file for this provider in the retrieved set; it is
// grounded on the shared BaseDebrid contract (rate limiting, retry,
// magnet-add-then-poll shape) plus Premiumize's own documented cache/check
// and transfer/create API, whose positional-list response shape is also
// what the smart container's UpdatePremiumize reducer expects.
type Premiumize struct {
	base
	apiKey string
}

func NewPremiumize(apiKey string, log *zap.SugaredLogger) *Premiumize {
	client := resty.New().SetBaseURL("https://www.premiumize.me/api")
	return &Premiumize{base: newBase(client, log), apiKey: apiKey}
}

func (p *Premiumize) Name() string { return "PM" }

type premiumizeCacheCheckResponse struct {
	Status string `json:"status"`
	container.PremiumizeAvailability
}

// CheckAvailability hits cache/check with a batch of magnet URIs (built
// from the bare info hashes) and folds the positional response into cont,
// zipped against infoHashes in the exact order the request was built from.
// Mirrors internal/container.UpdatePremiumize's contract.
func (p *Premiumize) CheckAvailability(ctx context.Context, cont *container.Container, infoHashes []string) error {
	if len(infoHashes) == 0 {
		return nil
	}

	items := make([]string, len(infoHashes))
	for i, hash := range infoHashes {
		items[i] = "magnet:?xt=urn:btih:" + hash
	}

	var result premiumizeCacheCheckResponse
	_, err := p.do(ctx, "cache/check", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParam("apikey", p.apiKey).
			SetFormData(map[string][]string{"items[]": items}).
			SetResult(&result).
			Post("/cache/check")
	})
	if err != nil {
		return fmt.Errorf("premiumize: check availability: %w", err)
	}
	if result.Status != "success" {
		p.log.Warnw("premiumize cache check returned non-success status", "status", result.Status)
		return nil
	}

	cont.UpdatePremiumize(infoHashes, result.PremiumizeAvailability)
	return nil
}

type premiumizeTransferCreateResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type premiumizeTransferListResponse struct {
	Transfers []struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		FolderID string `json:"folder_id"`
	} `json:"transfers"`
}

type premiumizeFolderListResponse struct {
	Content []struct {
		Name string `json:"name"`
		Link string `json:"link"`
		Size int64  `json:"size"`
		Type string `json:"type"`
	} `json:"content"`
}

// GetStreamLink creates a transfer from the magnet, polls until it
// finishes, and returns the largest (movie) or best season/episode
// matching (series) file link from the resulting folder.
func (p *Premiumize) GetStreamLink(ctx context.Context, query StreamQuery) (string, error) {
	var create premiumizeTransferCreateResponse
	_, err := p.do(ctx, "transfer/create", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParam("apikey", p.apiKey).
			SetFormData(map[string]string{"src": query.Magnet}).
			SetResult(&create).
			Post("/transfer/create")
	})
	if err != nil || create.Status != "success" {
		return "", fmt.Errorf("premiumize: create transfer: %w", err)
	}

	folderID, ready := p.waitForTransfer(ctx, create.ID)
	if !ready {
		return "", ErrTorrentNotReady
	}

	return p.bestFileLink(ctx, folderID, query)
}

func (p *Premiumize) waitForTransfer(ctx context.Context, transferID string) (string, bool) {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		var list premiumizeTransferListResponse
		_, err := p.do(ctx, "transfer/list", func(req *resty.Request) (*resty.Response, error) {
			return req.SetQueryParam("apikey", p.apiKey).SetResult(&list).Get("/transfer/list")
		})
		if err != nil {
			return "", false
		}
		for _, t := range list.Transfers {
			if t.ID == transferID && t.Status == "finished" {
				return t.FolderID, true
			}
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(5 * time.Second):
		}
	}
	return "", false
}

func (p *Premiumize) bestFileLink(ctx context.Context, folderID string, query StreamQuery) (string, error) {
	var folder premiumizeFolderListResponse
	_, err := p.do(ctx, "folder/list", func(req *resty.Request) (*resty.Response, error) {
		return req.SetQueryParams(map[string]string{"apikey": p.apiKey, "id": folderID}).SetResult(&folder).Get("/folder/list")
	})
	if err != nil {
		return "", fmt.Errorf("premiumize: folder list: %w", err)
	}

	best := ""
	var bestSize int64
	for _, f := range folder.Content {
		if f.Type != "file" || !strings.Contains(strings.ToLower(f.Link), "http") {
			continue
		}
		if query.Kind == "series" && !seasonEpisodeInFilename(f.Name, query.Season, query.Episode) {
			continue
		}
		if f.Size > bestSize {
			best, bestSize = f.Link, f.Size
		}
	}
	if best == "" {
		return "", fmt.Errorf("premiumize: no matching file found")
	}
	return best, nil
}
