// Package parser extracts structured release metadata from a torrent's raw
// title string. It follows the ordered-closure architecture: each detector
// is a closure that, given the raw title and the in-progress ParsedData,
// records a match and returns the start index of that match (or -1). The
// earliest surviving index across all detectors becomes the boundary of the
// cleaned title.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedData is the structured view of a release title.
type ParsedData struct {
	Title      string   `json:"parsed_title"`
	Seasons    []int    `json:"seasons"`
	Episodes   []int    `json:"episodes"`
	Resolution int      `json:"resolution"`
	Quality    string   `json:"quality"`
	Codec      string   `json:"codec"`
	Audio      []string `json:"audio"`
	Group      string   `json:"group"`
	Languages  []string `json:"languages"`
	FrenchDub  string   `json:"french_dub,omitempty"`
	Year       int      `json:"year"`
	ThreeD     bool     `json:"three_d,omitempty"`
}

type detector func(string, *ParsedData) int

var detectors = []detector{
	detectYear(`(?:\b((?:19[0-9]|20[0-9])[0-9])\b)|(?:\(((?:19[0-9]|20[0-9])[0-9])\))`),
	detectResolution(`(?i)([0-9]{3,4})[pi]`),
	matchSetResolution(`(?i)\b4k\b`, 2160),
	matchSetQuality(`(?i)\b(?:HD-?)?CAM(?:rip)?\b`, "cam"),
	matchSetQuality(`(?i)\b(?:HD-?)?T(?:ELE)?S(?:YNC)?\b`, "telesync"),
	matchSetQuality(`(?i)\bTS-?Rip\b`, "telesync"),
	detectQuality(`(?i)\bHD-?Rip\b`),
	detectQuality(`(?i)\bBRRip\b`),
	detectQuality(`(?i)\bBDRip\b`),
	detectQuality(`(?i)\bWEBRip\b`),
	detectQuality(`(?i)\bTVRip\b`),
	detectQuality(`(?i)\bVODRip\b`),
	matchSetQuality(`(?i)\bDVD(?:R[0-9])?\b`, "dvd"),
	detectQuality(`(?i)\bDVDscr\b`),
	detectQuality(`\bTC\b`),
	detectQuality(`(?i)\bPPVRip\b`),
	detectQuality(`(?i)\bR5\b`),
	detectQuality(`(?i)\bVHSRip\b`),
	detectQuality(`(?i)\bWORKPRINT\b`),
	detectQuality(`(?i)\bHDTV\b`),
	detectQuality(`(?i)\bPDTV\b`),
	detectQuality(`(?i)\bDSR\b`),
	matchSetQuality(`(?i)\bBlu-?ray(?:[\s.]|.+\b)Remux\b`, "bdremux"),
	matchSetQuality(`(?i)\bBlu-?ray\b`, "bluray"),
	detectQuality(`(?i)\bWEB-?DL\b`),
	detectCodec(`(?i)dvix|mpeg2|divx|xvid|[xh][-. ]?26[45]|avc|hevc`),
	detectAudioList(`MD|MP3|FLAC|Atmos|DTS(?:-HD)?|TrueHD|AC-?3|DD5[. ]?1|AAC`),
	detect3D(`(?i)\b(3D)\b`),
	detectSeasonEpisode(`(?i)S(\d{1,2})[ .]?E(\d{1,2})`),
	detectMultiSeason(`(?i)S(\d{1,2})\s*(?:to|-)?\s*S(\d{1,2})`),
	detectSingleSeason(`(?i)\bS(\d{1,2})\b`),
	detectSingleSeason(`(?i)\bseason[- ]?(\d{1,2})\b`),
	detectLanguages(),
	detectFrenchDub(),
	detectReleaseGroup(),
}

// Parse extracts a ParsedData from a raw release title. Total and
// deterministic: always returns a value, never an error.
func Parse(title string) *ParsedData {
	p := &ParsedData{}
	index := len(title)

	for _, d := range detectors {
		next := d(title, p)
		if next >= 0 && next < index {
			index = next
		}
	}

	p.Title = strings.TrimRight(title[:index], " .-_[(")
	if len(p.Languages) == 0 {
		p.Languages = []string{"en"}
	}
	return p
}

func findValue(value *string, title string, re *regexp.Regexp) int {
	if *value != "" {
		return -1
	}
	matches := re.FindAllStringIndex(title, -1)
	if len(matches) == 0 {
		return -1
	}
	loc := matches[len(matches)-1]
	*value = strings.ToLower(title[loc[0]:loc[1]])
	return loc[0]
}

func findSubValue(value *string, title string, re *regexp.Regexp) int {
	if *value != "" {
		return -1
	}
	matches := re.FindAllStringSubmatchIndex(title, -1)
	if len(matches) == 0 || len(matches[len(matches)-1]) < 4 {
		return -1
	}
	loc := matches[len(matches)-1]
	*value = strings.ToLower(title[loc[2]:loc[3]])
	return loc[0]
}

func findAndSet(value *string, title string, re *regexp.Regexp, target string) int {
	if *value != "" {
		return -1
	}
	matches := re.FindAllStringIndex(title, -1)
	if len(matches) == 0 {
		return -1
	}
	*value = target
	return matches[len(matches)-1][0]
}

func detectYear(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if p.Year > 0 {
			return -1
		}
		var year string
		idx := findValue(&year, title, re)
		if idx != -1 {
			p.Year, _ = strconv.Atoi(year)
		}
		return idx
	}
}

func detectResolution(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if p.Resolution > 0 {
			return -1
		}
		var res string
		idx := findSubValue(&res, title, re)
		if idx != -1 {
			p.Resolution, _ = strconv.Atoi(res)
		}
		return idx
	}
}

func matchSetResolution(pattern string, value int) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if p.Resolution > 0 {
			return -1
		}
		var marker string
		idx := findValue(&marker, title, re)
		if idx != -1 {
			p.Resolution = value
		}
		return idx
	}
}

func detectQuality(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		return findValue(&p.Quality, title, re)
	}
}

func matchSetQuality(pattern, value string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		return findAndSet(&p.Quality, title, re, value)
	}
}

func detectCodec(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		idx := findValue(&p.Codec, title, re)
		if idx != -1 {
			p.Codec = strings.NewReplacer(".", "", "-", "", " ", "").Replace(p.Codec)
		}
		return idx
	}
}

func detectAudioList(pattern string) detector {
	re := regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`)
	return func(title string, p *ParsedData) int {
		matches := re.FindAllString(title, -1)
		if len(matches) == 0 {
			return -1
		}
		seen := map[string]bool{}
		for _, m := range matches {
			tag := strings.ToLower(strings.NewReplacer(" ", "", ".", "").Replace(m))
			if !seen[tag] {
				seen[tag] = true
				p.Audio = append(p.Audio, tag)
			}
		}
		locs := re.FindAllStringIndex(title, -1)
		return locs[len(locs)-1][0]
	}
}

func detect3D(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if p.ThreeD {
			return -1
		}
		var marker string
		idx := findValue(&marker, title, re)
		p.ThreeD = idx != -1
		return idx
	}
}

func detectSeasonEpisode(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if len(p.Seasons) > 0 {
			return -1
		}
		matches := re.FindAllStringSubmatchIndex(title, -1)
		if len(matches) == 0 || len(matches[len(matches)-1]) < 6 {
			return -1
		}
		loc := matches[len(matches)-1]
		season, _ := strconv.Atoi(title[loc[2]:loc[3]])
		episode, _ := strconv.Atoi(title[loc[4]:loc[5]])
		p.Seasons = []int{season}
		p.Episodes = []int{episode}
		return loc[0]
	}
}

func detectMultiSeason(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if len(p.Seasons) > 0 {
			return -1
		}
		matches := re.FindAllStringSubmatchIndex(title, -1)
		if len(matches) == 0 || len(matches[len(matches)-1]) < 6 {
			return -1
		}
		loc := matches[len(matches)-1]
		from, _ := strconv.Atoi(title[loc[2]:loc[3]])
		to, _ := strconv.Atoi(title[loc[4]:loc[5]])
		for s := from; s <= to; s++ {
			p.Seasons = append(p.Seasons, s)
		}
		return loc[0]
	}
}

func detectSingleSeason(pattern string) detector {
	re := regexp.MustCompile(pattern)
	return func(title string, p *ParsedData) int {
		if len(p.Seasons) > 0 {
			return -1
		}
		matches := re.FindAllStringSubmatchIndex(title, -1)
		if len(matches) == 0 || len(matches[len(matches)-1]) < 4 {
			return -1
		}
		loc := matches[len(matches)-1]
		season, _ := strconv.Atoi(title[loc[2]:loc[3]])
		p.Seasons = []int{season}
		return loc[0]
	}
}

// languageTable is the ordered regex alternation over a fixed language list.
// Multiple matches may coexist; an empty match set defaults to [en] (applied
// by Parse, not here, so callers can tell "detected nothing" from "detected
// english").
var languageTable = []struct {
	code string
	re   *regexp.Regexp
}{
	{"fr", regexp.MustCompile(`(?i)\bFR(?:ENCH)?\b`)},
	{"en", regexp.MustCompile(`(?i)\bEN(?:GLISH)?\b`)},
	{"es", regexp.MustCompile(`(?i)\b(?:ES|SPANISH|CASTELLANO)\b`)},
	{"de", regexp.MustCompile(`(?i)\b(?:DE|GERMAN)\b`)},
	{"it", regexp.MustCompile(`(?i)\b(?:ITA|ITALIAN)\b`)},
	{"pt", regexp.MustCompile(`(?i)\b(?:PT|PTBR|PORTUGUESE)\b`)},
	{"ru", regexp.MustCompile(`(?i)\b(?:RUS|RUSSIAN)\b`)},
	{"nl", regexp.MustCompile(`(?i)\b(?:NL|DUTCH|FLEMISH)\b`)},
	{"hu", regexp.MustCompile(`(?i)\b(?:HU|HUNGARIAN)\b`)},
	{"la", regexp.MustCompile(`(?i)\bLATINO\b`)},
	{"in", regexp.MustCompile(`(?i)\b(?:HINDI|IND)\b`)},
	{"multi", regexp.MustCompile(`(?i)\bMULTi\b`)},
}

func detectLanguages() detector {
	return func(title string, p *ParsedData) int {
		index := -1
		for _, lang := range languageTable {
			loc := lang.re.FindStringIndex(title)
			if loc == nil {
				continue
			}
			p.Languages = append(p.Languages, lang.code)
			if index == -1 || loc[0] < index {
				index = loc[0]
			}
		}
		return index
	}
}

// frenchDubPattern covers VFF/VF2/VFQ/VFI/VOF/VOQ/VOSTFR/FRENCH sub-types;
// detectFrenchDub evaluates it only when the fr or multi language tag was
// already detected.
var frenchDubPattern = regexp.MustCompile(`(?i)\b(VFF|VF2|VFQ|VFI|VOF|VOQ|VOSTFR|FRENCH)\b`)

func detectFrenchDub() detector {
	return func(title string, p *ParsedData) int {
		hasFrench := false
		for _, l := range p.Languages {
			if l == "fr" || l == "multi" {
				hasFrench = true
				break
			}
		}
		if !hasFrench {
			return -1
		}
		return findValue(&p.FrenchDub, title, frenchDubPattern)
	}
}

// releaseGroupNames is a representative subset of well-known scene/P2P release
// group tags. Matched with an explicit boundary-character class instead of
// RE2-unsupported lookaround: the boundary characters are captured as
// submatch groups 1 and 3 and excluded from the reported span so the group
// name itself (submatch 2) is what gets recorded.
var releaseGroupNames = []string{
	"YIFY", "RARBG", "SPARKS", "GECKOS", "FGT", "EVO", "AMIABLE", "NTb",
	"FLUX", "CMRG", "DRONES", "SMURF", "ROVERS", "ETHEL", "playWEB",
	"ION10", "MZABI", "TFPDL", "FROGS", "QOQ", "XEBEC", "PCH", "HQMUX",
	"CiNEFiLE", "ZQ", "UTT", "EXTREME", "HiDt", "NAN0", "TERMiNAL",
}

var releaseGroupPattern = func() *regexp.Regexp {
	escaped := make([]string, len(releaseGroupNames))
	for i, g := range releaseGroupNames {
		escaped[i] = regexp.QuoteMeta(g)
	}
	return regexp.MustCompile(`(^|[.\s\-\[])(` + strings.Join(escaped, "|") + `)([.\s\-\]]|$)`)
}()

func detectReleaseGroup() detector {
	return func(title string, p *ParsedData) int {
		if p.Group != "" {
			return -1
		}
		matches := releaseGroupPattern.FindAllStringSubmatchIndex(title, -1)
		if len(matches) == 0 {
			return -1
		}
		loc := matches[len(matches)-1]
		p.Group = title[loc[4]:loc[5]]
		return loc[4]
	}
}
