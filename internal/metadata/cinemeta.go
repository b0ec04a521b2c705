package metadata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/model"
)

// Cinemeta is the default, keyless metadata provider: Stremio's own
// catalogue service. Generalized from the teacher's internal/cinemeta
// client, extended to carry languages/season/episode into the returned
// Media the way this module's rest of the pipeline needs.
type Cinemeta struct {
	client *resty.Client
}

func NewCinemeta() *Cinemeta {
	return &Cinemeta{client: resty.New().SetBaseURL("https://v3-cinemeta.strem.io")}
}

type cinemetaResponse struct {
	Meta struct {
		Name   string `json:"name"`
		Year   string `json:"year"`
		IMDBID string `json:"imdb_id"`
	} `json:"meta"`
}

func (c *Cinemeta) GetMetadata(ctx context.Context, streamID string, kind model.Kind, languages []string) (model.Media, error) {
	imdbID, season, episode, err := ParseStreamID(streamID, kind)
	if err != nil {
		return model.Media{}, err
	}

	path := fmt.Sprintf("/meta/%s/%s.json", kind, imdbID)
	var result cinemetaResponse
	resp, err := c.client.R().SetContext(ctx).SetResult(&result).Get(path)
	if err != nil {
		return model.Media{}, fmt.Errorf("cinemeta: fetch metadata: %w", err)
	}
	if resp.IsError() {
		return model.Media{}, fmt.Errorf("cinemeta: fetch metadata: status %d", resp.StatusCode())
	}

	media := model.Media{
		Kind:      kind,
		IMDBID:    imdbID,
		Titles:    []string{result.Meta.Name},
		Languages: languages,
		Season:    season,
		Episode:   episode,
	}

	if kind == model.KindSeries {
		from, _ := strconv.Atoi(strings.TrimSpace(strings.Split(result.Meta.Year, "–")[0]))
		media.Year = from
	} else {
		year, _ := strconv.Atoi(strings.TrimSpace(result.Meta.Year))
		media.Year = year
	}

	return media, nil
}
