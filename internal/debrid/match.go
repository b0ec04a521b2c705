package debrid

import "github.com/streamfusion/streamfusion/internal/parser"

// seasonEpisodeInFilename reports whether name parses as carrying the given
// season and episode, shared by the adapters' file-selection logic.
func seasonEpisodeInFilename(name string, season, episode int) bool {
	parsed := parser.Parse(name)
	return containsInt(parsed.Seasons, season) && containsInt(parsed.Episodes, episode)
}
