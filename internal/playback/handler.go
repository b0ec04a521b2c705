package playback

import (
	"bufio"
	"strconv"

	"github.com/streamfusion/streamfusion/internal/cache"
	"github.com/streamfusion/streamfusion/internal/debrid"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DebridsForConfig decodes the {config} URL segment and resolves the
// requester's api key plus their debrid service set (keyed by provider
// tag, built from their own tokens). internal/addon supplies this so the
// playback package never needs to know how configuration is encoded.
type DebridsForConfig func(configSegment string) (apiKey string, debrids map[string]debrid.Service, err error)

// Handler wires the /playback/{config}/{query} GET and HEAD routes to a
// Resolver and Proxy. Grounded on internal/addon's fiber handler style and
// on web/playback/stream/views.py's get_playback/head_playback.
type Handler struct {
	resolver       *Resolver
	proxy          *Proxy
	debridsFor     DebridsForConfig
	directLinkMode bool
	log            *zap.SugaredLogger
}

func NewHandler(resolver *Resolver, proxy *Proxy, debridsFor DebridsForConfig, directLinkMode bool, log *zap.SugaredLogger) *Handler {
	return &Handler{resolver: resolver, proxy: proxy, debridsFor: debridsFor, directLinkMode: directLinkMode, log: log}
}

// Register mounts the routes onto the given fiber router, nested under
// whatever prefix the caller already applies the {config} segment to.
func (h *Handler) Register(router fiber.Router) {
	router.Get("/:query", h.get)
	router.Head("/:query", h.head)
}

func (h *Handler) get(c *fiber.Ctx) error {
	q, decodedQuery, err := DecodeQuery(c.Params("query"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	clientIP := c.IP()

	apiKey, overrides, err := h.debridsFor(c.Params("config"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	url, err := h.resolver.Resolve(c.Context(), apiKey, q, decodedQuery, clientIP, overrides)
	if err != nil {
		if err == ErrNotReady {
			return fiber.NewError(fiber.StatusServiceUnavailable, "stream not ready, try again")
		}
		h.log.Warnw("playback resolution failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "could not resolve stream")
	}

	if url == cache.NoCacheVideoURL {
		return c.Redirect(url, fiber.StatusFound)
	}

	if h.directLinkMode {
		return c.Redirect(url, fiber.StatusMovedPermanently)
	}

	return h.stream(c, url)
}

func (h *Handler) stream(c *fiber.Ctx, url string) error {
	rangeHeader := c.Get("Range")

	info, err := h.proxy.Head(c.Context(), url, rangeHeader)
	if err != nil {
		h.log.Warnw("upstream HEAD failed", "error", err)
	}

	body, _, err := h.proxy.Stream(c.Context(), url, rangeHeader)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "could not reach upstream stream")
	}

	c.Set(fiber.HeaderContentType, "video/mp4")
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")

	status := fiber.StatusOK
	if rangeHeader != "" {
		status = fiber.StatusPartialContent
		if info.ContentRange != "" {
			c.Set(fiber.HeaderContentRange, info.ContentRange)
		}
	}
	if info.ContentLength > 0 {
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(info.ContentLength, 10))
	}
	c.Status(status)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer body.Close()
		buf := make([]byte, proxyChunkSize)
		for {
			n, readErr := body.Read(buf)
			if n > 0 {
				if _, writeErr := w.Write(buf[:n]); writeErr != nil {
					return
				}
				if flushErr := w.Flush(); flushErr != nil {
					return
				}
			}
			if readErr != nil {
				return
			}
		}
	})

	return nil
}

func (h *Handler) head(c *fiber.Ctx) error {
	q, decodedQuery, err := DecodeQuery(c.Params("query"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	clientIP := c.IP()
	if h.resolver.Status(q, decodedQuery, clientIP) == StatusReady {
		return c.SendStatus(fiber.StatusOK)
	}
	return c.SendStatus(fiber.StatusAccepted)
}
