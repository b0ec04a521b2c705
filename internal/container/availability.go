package container

import "github.com/streamfusion/streamfusion/internal/model"

// Provider tags recorded on TorrentItem.Availability.
const (
	ProviderRealDebrid = "RD"
	ProviderAllDebrid  = "AD"
	ProviderTorbox     = "TB"
	ProviderPremiumize = "PM"
)

// RealDebridFile is one entry of a cached variant's file listing, keyed by
// the provider's own file-index string in the wrapping map.
type RealDebridFile struct {
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
}

// RealDebridAvailability is /torrents/instantAvailability's response shape:
// info hash -> {"rd": [ {file_index: {filename, filesize}}, ... ]}, one
// entry per cached variant of that torrent.
type RealDebridAvailability map[string]struct {
	RD []map[string]RealDebridFile `json:"rd"`
}

// UpdateRealDebrid folds a bulk instant-availability response into the
// container, marking each info hash cached and recording the largest
// matching file. Mirrors __update_availability_realdebrid /
// __process_movie_files / __process_series_files / __update_file_details.
func (c *Container) UpdateRealDebrid(resp RealDebridAvailability) {
	for hash, entry := range resp {
		item, ok := c.itemsByHash[hash]
		if !ok || len(entry.RD) == 0 {
			continue
		}

		var candidates []RealDebridFile
		if c.media.Kind == model.KindSeries {
			candidates = seriesVariantFiles(entry.RD, c.media.Season, c.media.Episode)
		} else {
			for _, variant := range entry.RD {
				for _, f := range variant {
					candidates = append(candidates, f)
				}
			}
		}
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		for _, f := range candidates[1:] {
			if f.Filesize > best.Filesize {
				best = f
			}
		}
		item.FileName = best.Filename
		item.Size = best.Filesize
		item.SetAvailability(ProviderRealDebrid)
	}
}

// seriesVariantFiles returns the files of the first cached variant that has
// a file whose name carries the requested season/episode, stopping at the
// first match as the Python source does (it does not keep scanning for a
// "better" variant once one matches).
func seriesVariantFiles(variants []map[string]RealDebridFile, season, episode int) []RealDebridFile {
	for _, variant := range variants {
		matched := false
		for _, f := range variant {
			if seasonEpisodeInFilename(f.Filename, season, episode) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		files := make([]RealDebridFile, 0, len(variant))
		for _, f := range variant {
			files = append(files, f)
		}
		return files
	}
	return nil
}

// AllDebridFile is one node of the nested file/folder tree AllDebrid
// returns for a magnet: a leaf has Name+Size, a folder has Entries instead.
type AllDebridFile struct {
	Name    string          `json:"n"`
	Size    int64           `json:"s"`
	Entries []AllDebridFile `json:"e"`
}

// AllDebridMagnet is one magnet entry of an AllDebrid
// /magnet/instant response.
type AllDebridMagnet struct {
	Hash    string          `json:"hash"`
	Instant bool            `json:"instant"`
	Files   []AllDebridFile `json:"files"`
}

// AllDebridAvailability is AllDebrid's full /magnet/instant response body.
type AllDebridAvailability struct {
	Data struct {
		Magnets []AllDebridMagnet `json:"magnets"`
	} `json:"data"`
}

// UpdateAllDebrid folds an AllDebrid instant-availability response into the
// container. Only magnets AllDebrid reports as instantly playable are
// considered; their file tree is flattened and filtered the same way as
// RealDebrid's variant files. Mirrors __update_availability_alldebrid /
// __explore_folders.
func (c *Container) UpdateAllDebrid(resp AllDebridAvailability) {
	for _, magnet := range resp.Data.Magnets {
		if !magnet.Instant {
			continue
		}
		item, ok := c.itemsByHash[magnet.Hash]
		if !ok {
			continue
		}

		files := flattenAllDebridFiles(magnet.Files)
		var candidates []AllDebridFile
		if c.media.Kind == model.KindSeries {
			for _, f := range files {
				if seasonEpisodeInFilename(f.Name, c.media.Season, c.media.Episode) {
					candidates = append(candidates, f)
				}
			}
		} else {
			candidates = files
		}
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		for _, f := range candidates[1:] {
			if f.Size > best.Size {
				best = f
			}
		}
		item.FileName = best.Name
		item.Size = best.Size
		item.SetAvailability(ProviderAllDebrid)
	}
}

// flattenAllDebridFiles walks the nested folder tree depth-first and
// returns every leaf file, matching __explore_folders without needing to
// thread a running file_index through the recursion (the container only
// needs the leaves, not their position).
func flattenAllDebridFiles(nodes []AllDebridFile) []AllDebridFile {
	var out []AllDebridFile
	for _, n := range nodes {
		if len(n.Entries) > 0 {
			out = append(out, flattenAllDebridFiles(n.Entries)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// PremiumizeAvailability is Premiumize's /cache/check response: two
// strictly positional lists, matched index-for-index against the hash list
// the bulk-check request was built from.
type PremiumizeAvailability struct {
	Response   []bool   `json:"response"`
	Transcoded []string `json:"transcoded"`
}

// UpdatePremiumize folds a Premiumize bulk-check response into the
// container by position, zipping it against queriedHashes: the exact hash
// list the cache/check request was sent with. Mirrors
// __update_availability_premiumize, with one deliberate fix: the Python
// source zips resp.Response against get_items() (every item in the
// container) rather than against the hashes the request was actually built
// from, which silently misattributes availability whenever the query only
// covered get_unaviable_hashes()'s subset. Requiring the caller's own query
// slice here removes that foot-gun instead of reproducing it.
func (c *Container) UpdatePremiumize(queriedHashes []string, resp PremiumizeAvailability) {
	for i, hash := range queriedHashes {
		if i >= len(resp.Response) || !resp.Response[i] {
			continue
		}
		if item, ok := c.itemsByHash[hash]; ok {
			item.SetAvailability(ProviderPremiumize)
		}
	}
}

// TorboxAvailability is Torbox's /torrents/checkcached response in
// format=object mode: info hash -> cached entry, each carrying the file
// list of the cached torrent. There is no smart-container precedent for
// Torbox in the original source (its update_availability dispatch only
// handles RealDebrid/AllDebrid/Premiumize); this shape and reducer are
// built from the provider's own bulk-check endpoint and follow the same
// largest-matching-file pattern as the other three providers.
type TorboxAvailability map[string]struct {
	Hash  string           `json:"hash"`
	Files []RealDebridFile `json:"files"`
}

// UpdateTorbox folds a Torbox bulk-check response into the container.
func (c *Container) UpdateTorbox(resp TorboxAvailability) {
	for hash, entry := range resp {
		item, ok := c.itemsByHash[hash]
		if !ok || len(entry.Files) == 0 {
			continue
		}

		var candidates []RealDebridFile
		if c.media.Kind == model.KindSeries {
			for _, f := range entry.Files {
				if seasonEpisodeInFilename(f.Filename, c.media.Season, c.media.Episode) {
					candidates = append(candidates, f)
				}
			}
		} else {
			candidates = entry.Files
		}
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		for _, f := range candidates[1:] {
			if f.Filesize > best.Filesize {
				best = f
			}
		}
		item.FileName = best.Filename
		item.Size = best.Filesize
		item.SetAvailability(ProviderTorbox)
	}
}
