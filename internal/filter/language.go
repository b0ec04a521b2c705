package filter

import (
	"regexp"
	"strings"

	"github.com/streamfusion/streamfusion/internal/torrentitem"
)

// frRipGroups lists the French-scene release groups whose rips are French
// even when the indexer's language tag is absent or says "multi". Grounded
// verbatim on language_filter.py's fr_regex_patterns group lists (one
// alternation instead of many, and RE2's lack of lookaround worked around
// with an explicit boundary-character class like internal/parser's
// release-group matcher).
var frRipGroups = []string{
	"BlackAngel", "Choco", "Sicario", "Tezcat74", "TyrellCorp", "Zapax",
	"FtLi", "Goldenyann", "MUSTANG", "Obi", "PEPiTE", "QUEBEC63", "QC63", "ROMKENT",
	"FLOP", "FRATERNiTY", "QTZ", "PopHD", "toto70300", "GHT", "EXTREME",
	"DUSTiN", "QUALiTY", "Tsundere-Raws", "LAZARUS", "ALFA", "SODAPOP",
	"BDHD", "MAX", "SowHD", "SN2P", "RG", "BTT", "KAF", "AwA", "MULTiViSiON", "FERVEX",
	"FUJiSAN", "HDForever", "MARBLECAKE", "MYSTERiON", "ONLY", "UTT",
	"BONBON", "FCK", "FW", "FoX", "FrIeNdS", "MOONLY", "MTDK", "PATOPESTO", "Psaro", "T3KASHi", "TFA",
	"ALLDAYiN", "ARK01", "HANAMi", "HeavyWeight", "NEO", "NoNe", "ONLYMOViE", "Slay3R", "TkHD",
	"4FR", "AiR3D", "AiRDOCS", "AiRFORCE", "AiRLiNE", "AiRTV", "AKLHD", "AMB3R",
	"CiNEMA", "CMBHD", "CoRa", "COUAC", "CRYPT0", "D4KiD", "DEAL", "DiEBEX", "DUPLI", "DUSS", "ENJOi", "EUBDS", "FHD", "FiDELiO", "FiDO", "ForceBleue",
	"HYBRiS", "HyDe", "JMT", "JoKeR", "JUSTICELEAGUE", "KAZETV", "L0SERNiGHT", "LaoZi", "LeON", "LOFiDEL", "LOST", "LOWIMDB", "LYPSG", "MAGiCAL",
	"SASHiMi", "SEiGHT", "SESKAPiLE", "SHEEEiT", "SHiNiGAMi", "SiGeRiS", "SILVIODANTE", "SLEEPINGFOREST", "S4LVE", "SPINE",
	"SPOiLER", "STRINGERBELL", "SUNRiSE", "tFR", "THENiGHTMAREiNHD", "THiNK", "THREESOME", "TiMELiNE", "TSuNaMi", "UKDHD", "UKDTV", "ULSHD", "Ulysse",
	"USUNSKiLLED", "URY", "VENUE", "VFC", "VoMiT", "Wednesday29th", "ZEST", "ZiRCON",
}

var frRipGroupPattern = func() *regexp.Regexp {
	escaped := make([]string, len(frRipGroups))
	for i, g := range frRipGroups {
		escaped[i] = regexp.QuoteMeta(g)
	}
	return regexp.MustCompile(`(^|[.\s\-\[])(` + strings.Join(escaped, "|") + `)([.\s\-\]]|$)`)
}()

// LanguageFilter keeps items whose (possibly corrected) language set
// intersects the requested languages, or that are tagged "multi".
type LanguageFilter struct {
	requested map[string]bool
}

func NewLanguageFilter(cfg Config) *LanguageFilter {
	req := make(map[string]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		req[strings.ToLower(l)] = true
	}
	return &LanguageFilter{requested: req}
}

func (f *LanguageFilter) CanFilter() bool { return len(f.requested) > 0 }

// Apply drops items with no language tag, demotes a cache-sourced item's
// fr/multi tag when its raw title carries no French release-group marker,
// then keeps anything tagged multi or matching one of the requested
// languages. Mirrors LanguageFilter.filter.
func (f *LanguageFilter) Apply(items []*torrentitem.TorrentItem, fromCache map[*torrentitem.TorrentItem]bool) []*torrentitem.TorrentItem {
	out := make([]*torrentitem.TorrentItem, 0, len(items))
	for _, item := range items {
		if len(item.Languages) == 0 {
			continue
		}

		languages := append([]string(nil), item.Languages...)
		if fromCache[item] {
			hasFrenchMarker := frRipGroupPattern.MatchString(item.RawTitle)
			languages = dropUnlessMarked(languages, "multi", hasFrenchMarker)
			languages = dropUnlessMarked(languages, "fr", hasFrenchMarker)
		}

		if contains(languages, "multi") || intersects(languages, f.requested) {
			item.Languages = languages
			out = append(out, item)
		}
	}
	return out
}

func dropUnlessMarked(languages []string, tag string, marked bool) []string {
	if marked || !contains(languages, tag) {
		return languages
	}
	out := make([]string, 0, len(languages))
	for _, l := range languages {
		if l != tag {
			out = append(out, l)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func intersects(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}
