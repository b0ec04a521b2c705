package metadata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/streamfusion/streamfusion/internal/filter"
	"github.com/streamfusion/streamfusion/internal/model"
)

// TMDB resolves metadata via The Movie Database's /find endpoint, fetching
// one title per configured language the way tmdb.py's get_metadata loop
// does, so the result's Titles carries a localized title per language.
type TMDB struct {
	client *resty.Client
	apiKey string
}

func NewTMDB(apiKey string) *TMDB {
	return &TMDB{
		client: resty.New().SetBaseURL("https://api.themoviedb.org/3"),
		apiKey: apiKey,
	}
}

type tmdbFindResponse struct {
	MovieResults []struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		ReleaseDate string `json:"release_date"`
	} `json:"movie_results"`
	TVResults []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"tv_results"`
}

func (t *TMDB) GetMetadata(ctx context.Context, streamID string, kind model.Kind, languages []string) (model.Media, error) {
	imdbID, season, episode, err := ParseStreamID(streamID, kind)
	if err != nil {
		return model.Media{}, err
	}
	if len(languages) == 0 {
		languages = []string{"en-US"}
	}

	media := model.Media{
		Kind:      kind,
		IMDBID:    imdbID,
		Languages: languages,
		Season:    season,
		Episode:   episode,
	}

	for _, lang := range languages {
		var result tmdbFindResponse
		resp, err := t.client.R().SetContext(ctx).
			SetQueryParams(map[string]string{
				"api_key":         t.apiKey,
				"external_source": "imdb_id",
				"language":        lang,
			}).
			SetResult(&result).
			Get("/find/" + imdbID)
		if err != nil {
			return model.Media{}, fmt.Errorf("tmdb: find %s: %w", imdbID, err)
		}
		if resp.IsError() {
			return model.Media{}, fmt.Errorf("tmdb: find %s: status %d", imdbID, resp.StatusCode())
		}

		if kind == model.KindMovie {
			if len(result.MovieResults) == 0 {
				return model.Media{}, fmt.Errorf("tmdb: no movie result for %s", imdbID)
			}
			media.Titles = append(media.Titles, filter.CleanTMDBTitle(result.MovieResults[0].Title))
			if media.TMDBID == "" {
				media.TMDBID = strconv.Itoa(result.MovieResults[0].ID)
			}
			if media.Year == 0 && len(result.MovieResults[0].ReleaseDate) >= 4 {
				media.Year, _ = strconv.Atoi(result.MovieResults[0].ReleaseDate[:4])
			}
		} else {
			if len(result.TVResults) == 0 {
				return model.Media{}, fmt.Errorf("tmdb: no tv result for %s", imdbID)
			}
			media.Titles = append(media.Titles, filter.CleanTMDBTitle(result.TVResults[0].Name))
			if media.TMDBID == "" {
				media.TMDBID = strconv.Itoa(result.TVResults[0].ID)
			}
		}
	}

	return media, nil
}
