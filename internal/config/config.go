// Package config loads the process-level configuration via struct tags,
// the way cmd/server/main.go did before this rework: caarlos0/env/v11 for
// parsing, joho/godotenv for local .env loading. It's extended here to
// cover every provider credential and feature default the addon's
// per-request config (spec §6.A) can otherwise carry, so a deployment can
// pin sane defaults without requiring every client to pass them.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the full process-level configuration surface.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	SSL  bool   `env:"SSL_ENABLED" envDefault:"false"`

	AddonID      string `env:"ADDON_ID" envDefault:"com.streamfusion.addon"`
	AddonName    string `env:"ADDON_NAME" envDefault:"StreamFusion"`
	AddonVersion string `env:"ADDON_VERSION" envDefault:"1.0.0"`

	// Indexers.
	ProwlarrURL        string `env:"PROWLARR_URL"`
	ProwlarrAPIKey     string `env:"PROWLARR_API_KEY"`
	PublicCacheURL     string `env:"PUBLIC_CACHE_URL" envDefault:"https://api.dmmcache.download"`
	ZileanURL          string `env:"ZILEAN_URL"`
	YggflixURL         string `env:"YGGFLIX_URL" envDefault:"https://yggflix.fr"`
	SharewoodURL       string `env:"SHAREWOOD_URL" envDefault:"https://www.sharewood.tv"`

	// Metadata providers.
	TMDBAPIKey string `env:"TMDB_API_KEY"`

	// Debrid provider keys. These are parsed from the environment but not
	// passed to the addon: debrid services are built only from the
	// per-request config's RDToken/ADToken/TBToken/PMToken fields.
	RealDebridAPIKey string `env:"REAL_DEBRID_API_KEY"`
	AllDebridAPIKey  string `env:"ALL_DEBRID_API_KEY"`
	TorboxAPIKey     string `env:"TORBOX_API_KEY"`
	PremiumizeAPIKey string `env:"PREMIUMIZE_API_KEY"`

	// Outbound playback proxy, used only for proxied byte streaming (spec
	// §5's "optionally wrapping a SOCKS or HTTP proxy for playback
	// traffic only").
	ProxyURL string `env:"PROXY_URL"`

	// DirectLinkMode skips the byte-streaming proxy entirely and 301s the
	// player straight at the resolved debrid URL.
	DirectLinkMode bool `env:"DIRECT_LINK_MODE" envDefault:"false"`

	CacheSizeBytes int `env:"CACHE_SIZE_BYTES" envDefault:"67108864"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses environment variables into a Config, applying the env
// struct's tag defaults for anything unset. Callers are expected to have
// already loaded a .env file via godotenv (see cmd/addon/main.go), the
// same two-step split the teacher used.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
