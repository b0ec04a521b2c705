package torrentitem

import "fmt"

// DebridQuery is a per-playback-request query object in the field layout
// of spec §6.B, with season and episode rendered as "S01"/"E02" strings.
// The stream URLs built by internal/search and the playback.Query decoded
// by internal/playback use their own structs with integer season and
// episode, not this type.
type DebridQuery struct {
	Magnet          string `json:"magnet"`
	Type            string `json:"type"` // "movie" | "series"
	FileIndex       *int   `json:"file_index,omitempty"`
	Season          string `json:"season,omitempty"`
	Episode         string `json:"episode,omitempty"`
	TorrentDownload string `json:"torrent_download,omitempty"`
	Service         string `json:"service"` // provider tag or "DL"
}

// ToDebridQuery builds the query object a debrid adapter's get_stream_link
// operation consumes, given the caller's requested (season, episode) pair
// and the default-download provider tag.
func (t *TorrentItem) ToDebridQuery(season, episode int, service string) DebridQuery {
	q := DebridQuery{
		Magnet:          t.Magnet,
		Type:            t.Kind,
		TorrentDownload: t.Link,
		Service:         service,
	}
	if t.FileIndex > 0 {
		idx := t.FileIndex
		q.FileIndex = &idx
	}
	if t.Kind == "series" {
		q.Season = fmt.Sprintf("S%02d", season)
		q.Episode = fmt.Sprintf("E%02d", episode)
	}
	return q
}
