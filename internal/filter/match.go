// Package filter narrows a raw torrent result set down to what a request
// actually asked for: year/season-episode matching, fuzzy title matching,
// then an ordered chain of configurable filters (language, max size, title
// exclusion, quality exclusion, results-per-quality cap). Grounded on
// stream_fusion's utils/filter_results.py and utils/filter/*.py, and on the
// teacher's own title-similarity check in internal/addon/addon.go.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adrg/strutil/metrics"
	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
)

var nonWordCharacter = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// maxTitleDistance is the Levenshtein-distance cutoff below which a
// torrent's raw title is considered a match for the requested title, once
// both are stripped of punctuation/whitespace. Matches the teacher's
// addon-level constant.
const maxTitleDistance = 5

// levenshtein mirrors the teacher's checkTitleSimilarity weighting.
var levenshtein = &metrics.Levenshtein{
	CaseSensitive: false,
	InsertCost:    2,
	DeleteCost:    3,
	ReplaceCost:   3,
}

func titleDistance(left, right string) int {
	left = nonWordCharacter.ReplaceAllString(left, "")
	right = nonWordCharacter.ReplaceAllString(right, "")
	return levenshtein.Distance(left, right)
}

// TitleMatches reports whether item's raw title is close enough to any of
// the candidate titles to be considered the same release.
func TitleMatches(item *torrentitem.TorrentItem, titles []string) bool {
	parsedTitle := item.RawTitle
	if item.ParsedData != nil && item.ParsedData.Title != "" {
		parsedTitle = item.ParsedData.Title
	}
	for _, candidate := range titles {
		if titleDistance(candidate, parsedTitle) < maxTitleDistance {
			return true
		}
	}
	return false
}

// MatchYear reports whether a movie result's raw title mentions the
// requested year as a standalone token. Matches filter_out_non_matching_movies.
func MatchYear(item *torrentitem.TorrentItem, year int) bool {
	if year == 0 {
		return true
	}
	pattern := regexp.MustCompile(`\b` + strconv.Itoa(year) + `\b`)
	return pattern.MatchString(item.RawTitle)
}

// MatchSeasonEpisode reports whether a series result's parsed season/episode
// line up with the request. An item with no season/episode parsed at all is
// rejected; an item naming the season but not a specific episode (season
// pack) matches any episode in that season. Mirrors
// filter_out_non_matching_series.
func MatchSeasonEpisode(item *torrentitem.TorrentItem, season, episode int) bool {
	if item.ParsedData == nil {
		return false
	}
	if len(item.ParsedData.Seasons) == 0 && len(item.ParsedData.Episodes) == 0 {
		return false
	}
	if len(item.ParsedData.Episodes) == 0 {
		return containsInt(item.ParsedData.Seasons, season)
	}
	return containsInt(item.ParsedData.Seasons, season) && containsInt(item.ParsedData.Episodes, episode)
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// ApplyMediaMatch runs the year (movie) or season/episode (series) match,
// then the fuzzy title match, in the order the reference pipeline applies
// them.
func ApplyMediaMatch(items []*torrentitem.TorrentItem, media model.Media) []*torrentitem.TorrentItem {
	out := make([]*torrentitem.TorrentItem, 0, len(items))
	for _, item := range items {
		switch media.Kind {
		case model.KindSeries:
			if !MatchSeasonEpisode(item, media.Season, media.Episode) {
				continue
			}
		case model.KindMovie:
			if !MatchYear(item, media.Year) {
				continue
			}
		}
		out = append(out, item)
	}

	titled := out[:0:0]
	for _, item := range out {
		if TitleMatches(item, media.Titles) {
			titled = append(titled, item)
		}
	}
	return titled
}

// CleanTMDBTitle strips characters the metadata provider's title can carry
// but a release title never renders usefully, matching clean_tmdb_title.
func CleanTMDBTitle(title string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range title {
		if strings.ContainsRune(`<>:"/\|?*™®©℠¡¿–—''""•…`, r) || r < 0x20 {
			r = ' '
		}
		if r == ' ' {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
		} else {
			lastWasSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
