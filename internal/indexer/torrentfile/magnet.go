// Package torrentfile turns an adapter's raw result row into a fully
// resolved TorrentItem: fetching a .torrent file or magnet link, decoding
// its bencode info dict, computing the info hash, and picking the file
// index a stream request should play. Grounded on the teacher's
// internal/prowlarr/metainfo.go decoder and stream_fusion's
// utils/torrent/torrent_service.py processing pipeline.
package torrentfile

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Magnet is a parsed/constructable magnet URI.
type Magnet struct {
	Name     string
	InfoHash string // lowercase hex, 40 chars
	Trackers []string
}

// String renders the magnet URI, matching stream_fusion's __build_magnet.
func (m Magnet) String() string {
	var b strings.Builder
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(m.InfoHash)
	if m.Name != "" {
		b.WriteString("&dn=")
		b.WriteString(url.QueryEscape(m.Name))
	}
	for _, tr := range m.Trackers {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tr))
	}
	return b.String()
}

var errNoInfoHash = errors.New("torrentfile: magnet uri has no btih info hash")

// ParseMagnetUri extracts the hash, display name, and tracker list from a
// magnet URI string.
func ParseMagnetUri(raw string) (*Magnet, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("torrentfile: parse magnet uri: %w", err)
	}
	if u.Scheme != "magnet" {
		return nil, fmt.Errorf("torrentfile: not a magnet uri: %q", raw)
	}

	q := u.Query()
	var hash string
	for _, xt := range q["xt"] {
		const prefix = "urn:btih:"
		if strings.HasPrefix(xt, prefix) {
			hash = strings.ToLower(strings.TrimPrefix(xt, prefix))
			break
		}
	}
	if hash == "" {
		return nil, errNoInfoHash
	}

	return &Magnet{
		Name:     q.Get("dn"),
		InfoHash: hash,
		Trackers: q["tr"],
	}, nil
}
