package torrentfile

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/multiformats/go-multihash"
	"github.com/zeebo/bencode"
)

// File is one entry of a multi-file torrent's file list.
type File struct {
	Index  int
	Path   string
	Length int64
}

// Decoded is a parsed .torrent file: enough to build a magnet URI and to
// pick a file index out of a multi-file release.
type Decoded struct {
	InfoHash string // lowercase hex, 40 chars
	Name     string
	Trackers []string
	Files    []File // empty for single-file torrents
	Length   int64  // only meaningful when Files is empty
}

type rawFile struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

type rawInfo struct {
	Name   string    `bencode:"name"`
	Length int64     `bencode:"length"`
	Files  []rawFile `bencode:"files"`
}

type rawMetaInfo struct {
	Info         bencode.RawMessage `bencode:"info"`
	Announce     string             `bencode:"announce"`
	AnnounceList [][]string         `bencode:"announce-list"`
}

// Decode parses a raw .torrent file's bytes, matching stream_fusion's
// __process_torrent / __convert_torrent_to_hash / __get_trackers_from_torrent.
func Decode(raw []byte) (*Decoded, error) {
	var mi rawMetaInfo
	if err := bencode.DecodeBytes(raw, &mi); err != nil {
		return nil, fmt.Errorf("torrentfile: decode metainfo: %w", err)
	}
	if len(mi.Info) == 0 {
		return nil, errors.New("torrentfile: no info dict")
	}

	var info rawInfo
	if err := bencode.DecodeBytes(mi.Info, &info); err != nil {
		return nil, fmt.Errorf("torrentfile: decode info dict: %w", err)
	}

	hash := sha1.Sum(mi.Info)
	infoHash, err := normalizeInfoHash(hex.EncodeToString(hash[:]))
	if err != nil {
		return nil, err
	}

	trackers := map[string]bool{}
	if mi.Announce != "" {
		trackers[mi.Announce] = true
	}
	for _, tier := range mi.AnnounceList {
		for _, tr := range tier {
			if tr != "" {
				trackers[tr] = true
			}
		}
	}
	trackerList := make([]string, 0, len(trackers))
	for tr := range trackers {
		trackerList = append(trackerList, tr)
	}

	d := &Decoded{
		InfoHash: infoHash,
		Name:     info.Name,
		Trackers: trackerList,
		Length:   info.Length,
	}

	for i, f := range info.Files {
		path := ""
		if len(f.Path) > 0 {
			joined := f.Path[0]
			for _, p := range f.Path[1:] {
				joined = joined + "/" + p
			}
			path = joined
		}
		d.Files = append(d.Files, File{Index: i, Path: path, Length: f.Length})
	}

	return d, nil
}

// normalizeInfoHash round-trips the SHA-1 info hash that Decode computes
// from the info dict through a go-multihash SHA-1 encode/decode and returns
// its digest as the lowercase 40-hex string the rest of the pipeline keys
// on. Its input is always raw hex; info hashes supplied by indexers do not
// pass through it.
func normalizeInfoHash(hexHash string) (string, error) {
	raw, err := hex.DecodeString(hexHash)
	if err != nil {
		return "", fmt.Errorf("torrentfile: invalid info hash %q: %w", hexHash, err)
	}

	mh, err := multihash.Encode(raw, multihash.SHA1)
	if err != nil {
		return "", fmt.Errorf("torrentfile: multihash encode: %w", err)
	}
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return "", fmt.Errorf("torrentfile: multihash decode: %w", err)
	}

	return hex.EncodeToString(decoded.Digest), nil
}

// BuildMagnet constructs a magnet URI from a decoded .torrent's fields.
func (d *Decoded) BuildMagnet() string {
	return Magnet{Name: d.Name, InfoHash: d.InfoHash, Trackers: d.Trackers}.String()
}
