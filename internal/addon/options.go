package addon

// Option configures an Addon at construction time, mirroring the
// teacher's functional-option addon wiring (WithProwlarr/WithRealDebrid).
type Option func(*Addon)

func WithID(id string) Option {
	return func(a *Addon) { a.id = id }
}

func WithName(name string) Option {
	return func(a *Addon) { a.name = name }
}

func WithVersion(version string) Option {
	return func(a *Addon) { a.version = version }
}

// WithProwlarr enables the Jackett/Prowlarr indexer adapter for every
// request, using the deployment-wide Prowlarr instance (no per-user
// token, unlike Yggflix/Sharewood).
func WithProwlarr(url, apiKey string) Option {
	return func(a *Addon) { a.prowlarrURL, a.prowlarrAPIKey = url, apiKey }
}

func WithPublicCache(url string) Option {
	return func(a *Addon) { a.publicCacheURL = url }
}

func WithZilean(url string) Option {
	return func(a *Addon) { a.zileanURL = url }
}

func WithYggflixBaseURL(url string) Option {
	return func(a *Addon) { a.yggflixURL = url }
}

func WithSharewoodBaseURL(url string) Option {
	return func(a *Addon) { a.sharewoodURL = url }
}

func WithTMDB(apiKey string) Option {
	return func(a *Addon) { a.tmdbAPIKey = apiKey }
}

// WithDefaultDownload names the provider tag ("RD"|"AD"|"TB"|"PM") used
// for service=="DL" download-precaching requests when the requester has
// the matching token configured.
func WithDefaultDownload(providerTag string) Option {
	return func(a *Addon) { a.defaultDownloadTag = providerTag }
}

func WithDirectLinkMode(on bool) Option {
	return func(a *Addon) { a.directLinkMode = on }
}

func WithCacheSizeBytes(n int) Option {
	return func(a *Addon) { a.cacheSizeBytes = n }
}

// WithProxyURL routes outbound playback byte-streaming through the given
// SOCKS or HTTP proxy URL.
func WithProxyURL(url string) Option {
	return func(a *Addon) { a.proxyURL = url }
}
