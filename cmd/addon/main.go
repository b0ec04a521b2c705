package main

import (
	"os"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"

	"github.com/streamfusion/streamfusion/internal/addon"
	"github.com/streamfusion/streamfusion/internal/config"
)

var maskedPathPattern = regexp.MustCompile(`^/([\w%]+)/(?:configure|stream|playback|manifest)`)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts := []addon.Option{
		addon.WithID(cfg.AddonID),
		addon.WithName(cfg.AddonName),
		addon.WithVersion(cfg.AddonVersion),
		addon.WithPublicCache(cfg.PublicCacheURL),
		addon.WithZilean(cfg.ZileanURL),
		addon.WithYggflixBaseURL(cfg.YggflixURL),
		addon.WithSharewoodBaseURL(cfg.SharewoodURL),
		addon.WithDirectLinkMode(cfg.DirectLinkMode),
		addon.WithCacheSizeBytes(cfg.CacheSizeBytes),
		addon.WithProxyURL(cfg.ProxyURL),
	}
	if cfg.ProwlarrURL != "" && cfg.ProwlarrAPIKey != "" {
		opts = append(opts, addon.WithProwlarr(cfg.ProwlarrURL, cfg.ProwlarrAPIKey))
	}
	if cfg.TMDBAPIKey != "" {
		opts = append(opts, addon.WithTMDB(cfg.TMDBAPIKey))
	}

	add := addon.New(opts...)

	app := fiber.New()
	mountApp(app, add)

	if cfg.SSL {
		go func() {
			httpsApp := fiber.New(fiber.Config{AppName: cfg.AddonName + " SSL"})
			mountApp(httpsApp, add)

			certFile := "/etc/ssl/local-ip-co/server.pem"
			keyFile := "/etc/ssl/local-ip-co/server.key"

			log.Infof("starting HTTPS server on :7443")
			log.Fatal(httpsApp.ListenTLS(":7443", certFile, keyFile))
		}()
	}

	log.Infof("starting HTTP server on :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// mountApp wires every route onto app: manifest/stream/configure via
// addon.Register, and playback (bare and {config}-prefixed) via the
// addon's shared resolver/proxy.
func mountApp(app *fiber.App, add *addon.Addon) {
	app.Use(cors.New())
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(logger.New(logger.Config{
		CustomTags: map[string]logger.LogFunc{
			"maskedPath": func(output logger.Buffer, c *fiber.Ctx, data *logger.Data, extraParam string) (int, error) {
				urlPath := c.Path()
				loc := maskedPathPattern.FindStringSubmatchIndex(urlPath)
				if len(loc) > 3 {
					return output.WriteString(urlPath[:loc[2]] + "***" + urlPath[loc[3]:])
				}
				return output.WriteString(urlPath)
			},
		},
		Format:        "${time} | ${status} | ${latency} | ${ip} | ${method} | ${maskedPath} | ${error}\n",
		TimeFormat:    "15:04:05",
		TimeZone:      "Local",
		TimeInterval:  500 * time.Millisecond,
		Output:        os.Stdout,
		DisableColors: false,
	}))

	add.Register(app)

	playbackHandler := add.PlaybackHandler()
	playbackHandler.Register(app.Group("/playback"))
	playbackHandler.Register(app.Group("/:config/playback"))
}
