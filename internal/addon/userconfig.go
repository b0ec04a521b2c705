package addon

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/streamfusion/streamfusion/internal/filter"
)

// UserConfig is the per-request configuration object of spec §6.A,
// carried base64-JSON-encoded as the {config} URL path segment ahead of
// every manifest/stream/playback route.
type UserConfig struct {
	APIKey string `json:"apiKey"`

	Languages          []string `json:"languages"`
	MaxSize            int      `json:"maxSize"`
	Exclusion          []string `json:"exclusion"`
	ExclusionKeywords  []string `json:"exclusionKeywords"`
	ResultsPerQuality  int      `json:"resultsPerQuality"`
	MaxResults         int      `json:"maxResults"`
	MinCachedResults   int      `json:"minCachedResults"`
	Sort               string   `json:"sort"`

	Cache      bool `json:"cache"`
	Zilean     bool `json:"zilean"`
	Yggflix    bool `json:"yggflix"`
	Sharewood  bool `json:"sharewood"`
	Jackett    bool `json:"jackett"`
	Debrid     bool `json:"debrid"`
	Torrenting bool `json:"torrenting"`

	Service          string `json:"service"`
	MetadataProvider string `json:"metadataProvider"`
	AddonHost        string `json:"addonHost"`

	RDToken          string `json:"RDToken"`
	RDClientID       string `json:"RDClientId"`
	RDClientSecret   string `json:"RDClientSecret"`
	RDRefreshToken   string `json:"RDRefreshToken"`
	ADToken          string `json:"ADToken"`
	TBToken          string `json:"TBToken"`
	PMToken          string `json:"PMToken"`
	YggPasskey       string `json:"yggPasskey"`
	SharewoodPasskey string `json:"sharewoodPasskey"`
}

// DecodeUserConfig mirrors playback.DecodeQuery's %3D-then-base64-then-JSON
// pipeline for the {config} path segment.
func DecodeUserConfig(segment string) (UserConfig, error) {
	segment = strings.ReplaceAll(segment, "%3D", "=")

	raw, err := base64.StdEncoding.DecodeString(segment)
	if err != nil {
		return UserConfig{}, fmt.Errorf("addon: decode config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return UserConfig{}, fmt.Errorf("addon: parse config: %w", err)
	}
	return cfg, nil
}

// Encode renders a UserConfig back into its %3D-escaped base64 URL segment,
// used by the configure page to build the player's manifest URL.
func (c UserConfig) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(base64.StdEncoding.EncodeToString(data), "=", "%3D"), nil
}

// FilterConfig projects the filtering-relevant fields into a filter.Config,
// applying spec defaults for anything left unset.
func (c UserConfig) FilterConfig() filter.Config {
	resultsPerQuality := c.ResultsPerQuality
	if resultsPerQuality <= 0 {
		resultsPerQuality = 5
	}
	sortMethod := c.Sort
	if sortMethod == "" {
		sortMethod = "quality"
	}
	maxSizeGB := c.MaxSize
	if maxSizeGB <= 0 {
		maxSizeGB = 30
	}
	return filter.Config{
		Languages:          c.Languages,
		MaxSizeGB:          maxSizeGB,
		ExclusionKeywords:  c.ExclusionKeywords,
		ExclusionQualities: c.Exclusion,
		ResultsPerQuality:  resultsPerQuality,
		Sort:               sortMethod,
	}
}
