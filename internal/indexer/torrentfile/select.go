package torrentfile

import "github.com/streamfusion/streamfusion/internal/parser"

// SelectedFile is what file-selection settled on for a multi-file release.
type SelectedFile struct {
	Index int
	Name  string
	Size  int64
}

// SelectMovieFile returns the largest file in a movie release, matching
// stream_fusion's __find_movie_file.
func SelectMovieFile(files []File) SelectedFile {
	var best SelectedFile
	for _, f := range files {
		if f.Length > best.Size {
			best = SelectedFile{Index: f.Index, Name: f.Path, Size: f.Length}
		}
	}
	return best
}

// SelectEpisodeFile finds the file whose parsed title carries the
// requested season and episode, breaking ties by picking the largest
// candidate. Matches stream_fusion's __find_episode_file, generalized to
// run each file's name through the release-title parser instead of RTN.
func SelectEpisodeFile(files []File, season, episode int) (SelectedFile, bool) {
	var best SelectedFile
	found := false

	for _, f := range files {
		parsed := parser.Parse(f.Path)
		if !containsInt(parsed.Seasons, season) || !containsInt(parsed.Episodes, episode) {
			continue
		}
		if !found || f.Length > best.Size {
			best = SelectedFile{Index: f.Index, Name: f.Path, Size: f.Length}
			found = true
		}
	}

	return best, found
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
