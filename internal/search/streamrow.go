package search

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/streamfusion/streamfusion/internal/model"
	"github.com/streamfusion/streamfusion/internal/torrentitem"
)

// StreamRow is the player-facing row shape of spec §6.C.
type StreamRow struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	URL           string         `json:"url,omitempty"`
	InfoHash      string         `json:"infoHash,omitempty"`
	FileIdx       *int           `json:"fileIdx,omitempty"`
	BehaviorHints *behaviorHints `json:"behaviorHints,omitempty"`
}

type behaviorHints struct {
	BingeGroup string `json:"bingeGroup"`
	Filename   string `json:"filename"`
}

// languageEmoji mirrors stremio_parser.py's get_emoji table.
var languageEmoji = map[string]string{
	"fr":    "🇫🇷 FRENCH",
	"en":    "🇬🇧 ENGLISH",
	"es":    "🇪🇸 SPANISH",
	"de":    "🇩🇪 GERMAN",
	"it":    "🇮🇹 ITALIAN",
	"pt":    "🇵🇹 PORTUGUESE",
	"ru":    "🇷🇺 RUSSIAN",
	"in":    "🇮🇳 INDIAN",
	"nl":    "🇳🇱 DUTCH",
	"hu":    "🇭🇺 HUNGARIAN",
	"la":    "🇲🇽 LATINO",
	"multi": "🌍 MULTi",
}

func emojiFor(language string) string {
	if e, ok := languageEmoji[language]; ok {
		return e
	}
	return "🇬🇧"
}

// BuildStreamRows renders every item (already best_matching + sorted) into
// player-facing stream rows, capped at req.MaxResults, and appends a
// direct-torrent sibling row for public items when torrenting is enabled.
// Grounded on parse_to_stremio_streams/parse_to_debrid_stream.
func BuildStreamRows(items []*torrentitem.TorrentItem, req Request, media model.Media) []StreamRow {
	if req.MaxResults > 0 && len(items) > req.MaxResults {
		items = items[:req.MaxResults]
	}

	rows := make([]StreamRow, 0, len(items)*2)
	for _, item := range items {
		rows = append(rows, buildDebridRow(item, req, media, req.ConfigBase64))
		if req.Torrenting && item.Privacy == torrentitem.PrivacyPublic {
			rows = append(rows, buildDirectTorrentRow(item, media))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return directTorrentRank(rows[i]) < directTorrentRank(rows[j])
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return availabilityRank(rows[i]) < availabilityRank(rows[j])
	})

	return rows
}

func availabilityRank(r StreamRow) int {
	if strings.HasPrefix(r.Name, "⚡") {
		return 0
	}
	return 1
}

func directTorrentRank(r StreamRow) int {
	if strings.HasPrefix(r.Name, "🏴") {
		return 1
	}
	return 0
}

func buildDebridRow(item *torrentitem.TorrentItem, req Request, media model.Media, configB64 string) StreamRow {
	marker := "⬇️"
	if item.IsAvailable() {
		marker = "⚡"
	}

	resolution := "Unknown"
	if item.ParsedData != nil && item.ParsedData.Resolution > 0 {
		resolution = fmt.Sprintf("%dp", item.ParsedData.Resolution)
	}

	name := fmt.Sprintf("%s%s\n(%s)", marker, item.Availability, resolution)
	if item.Availability == "" {
		name = fmt.Sprintf("%s\n(%s)", marker, resolution)
	}

	description := buildDescription(item, media)

	query := buildStreamQuery(item, req, media)
	queryB64 := strings.ReplaceAll(base64.StdEncoding.EncodeToString(query), "=", "%3D")

	filename := item.FileName
	if filename == "" {
		filename = item.RawTitle
	}

	return StreamRow{
		Name:        name,
		Description: description,
		URL:         fmt.Sprintf("%s/playback/%s/%s", req.AddonHost, configB64, queryB64),
		BehaviorHints: &behaviorHints{
			BingeGroup: "stremio-jackett-" + item.InfoHash,
			Filename:   filename,
		},
	}
}

func buildDirectTorrentRow(item *torrentitem.TorrentItem, media model.Media) StreamRow {
	resolution := "Unknown"
	if item.ParsedData != nil && item.ParsedData.Resolution > 0 {
		resolution = fmt.Sprintf("%dp", item.ParsedData.Resolution)
	}

	filename := item.FileName
	if filename == "" {
		filename = item.RawTitle
	}

	var fileIdx *int
	if item.FileIndex > 0 {
		idx := item.FileIndex
		fileIdx = &idx
	}

	return StreamRow{
		Name:        fmt.Sprintf("🏴\n(%s)", resolution),
		Description: buildDescription(item, media),
		InfoHash:    item.InfoHash,
		FileIdx:     fileIdx,
		BehaviorHints: &behaviorHints{
			BingeGroup: "stremio-jackett-" + item.InfoHash,
			Filename:   filename,
		},
	}
}

// buildDescription renders the multi-line description: raw title, optional
// filename for series, language emojis, codec/quality/audio, indexer, size
// and seeders. Grounded on parse_to_debrid_stream's title-building block.
func buildDescription(item *torrentitem.TorrentItem, media model.Media) string {
	var b strings.Builder

	b.WriteString(item.RawTitle)
	b.WriteString("\n")

	if media.Kind == model.KindSeries && item.FileName != "" {
		b.WriteString(item.FileName)
		b.WriteString("\n")
	}

	sizeGB := float64(item.Size) / (1024 * 1024 * 1024)
	fmt.Fprintf(&b, "👥  %d   💾  %.2fGB   🔍  %s\n", item.Seeders, sizeGB, item.Indexer)

	if item.ParsedData != nil {
		if item.ParsedData.Codec != "" {
			fmt.Fprintf(&b, "🎥  %s", item.ParsedData.Codec)
			if item.ParsedData.Quality != "" {
				fmt.Fprintf(&b, "   %s", item.ParsedData.Quality)
			}
			b.WriteString("\n")
		} else if item.ParsedData.Quality != "" {
			fmt.Fprintf(&b, "🎥  %s\n", item.ParsedData.Quality)
		}

		if len(item.ParsedData.Audio) > 0 {
			fmt.Fprintf(&b, "🎧  %s\n", strings.Join(item.ParsedData.Audio, " | "))
		}
	}

	if len(item.Languages) > 0 {
		emojis := make([]string, len(item.Languages))
		for i, l := range item.Languages {
			emojis[i] = emojiFor(l)
		}
		b.WriteString(strings.Join(emojis, "/"))
	} else {
		b.WriteString("🌐")
	}

	return b.String()
}

// buildStreamQuery renders the per-playback-request query object of spec
// §6.B, JSON-encoded before base64 encoding.
func buildStreamQuery(item *torrentitem.TorrentItem, req Request, media model.Media) []byte {
	service := "DL"
	if len(req.Debrids) > 0 {
		service = req.Debrids[0].Name()
	}

	query := struct {
		Magnet          string `json:"magnet"`
		Type            string `json:"type"`
		FileIndex       int    `json:"file_index,omitempty"`
		Season          int    `json:"season,omitempty"`
		Episode         int    `json:"episode,omitempty"`
		TorrentDownload string `json:"torrent_download,omitempty"`
		Service         string `json:"service"`
	}{
		Magnet:          item.Magnet,
		Type:            item.Kind,
		FileIndex:       item.FileIndex,
		Season:          media.Season,
		Episode:         media.Episode,
		TorrentDownload: item.Link,
		Service:         service,
	}

	data, _ := json.Marshal(query)
	return data
}
