package container

import "github.com/streamfusion/streamfusion/internal/parser"

// seasonEpisodeInFilename reports whether name parses as carrying the given
// season and episode. Shared by every debrid provider's availability
// reducer, matching the common season_episode_in_filename helper the
// Python source's provider clients each call before picking a file.
func seasonEpisodeInFilename(name string, season, episode int) bool {
	parsed := parser.Parse(name)
	return containsInt(parsed.Seasons, season) && containsInt(parsed.Episodes, episode)
}
