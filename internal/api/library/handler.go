// Package library is the gateway entry point: it maps inbound URLs to
// image keys, classifies request intent, and branches between the raw
// image path and the lightbox document path.
package library

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/thecontrarian/image-gateway/pkg/cache"
	"github.com/thecontrarian/image-gateway/pkg/config"
	"github.com/thecontrarian/image-gateway/pkg/imagepath"
	"github.com/thecontrarian/image-gateway/pkg/intent"
	"github.com/thecontrarian/image-gateway/pkg/lightbox"
	"github.com/thecontrarian/image-gateway/pkg/logging"
	"github.com/thecontrarian/image-gateway/pkg/metadata"
	"github.com/thecontrarian/image-gateway/pkg/objstore"
	"github.com/thecontrarian/image-gateway/pkg/response"
)

// Handler handles all image-routing requests
type Handler struct {
	store      objstore.Store
	docCache   cache.Cache
	classifier *intent.Classifier
	aggregator *metadata.Aggregator
	builder    *lightbox.Builder

	cdnOrigin     string
	cdnHost       string
	storagePrefix string
	cacheTTL      time.Duration
	passthrough   *httputil.ReverseProxy
}

// NewHandler creates the gateway handler with its dependencies
func NewHandler(
	cfg *config.Config,
	store objstore.Store,
	docCache cache.Cache,
	classifier *intent.Classifier,
	aggregator *metadata.Aggregator,
	builder *lightbox.Builder,
) *Handler {
	h := &Handler{
		store:         store,
		docCache:      docCache,
		classifier:    classifier,
		aggregator:    aggregator,
		builder:       builder,
		cdnOrigin:     cfg.Site.CDNOrigin,
		cdnHost:       strings.ToLower(cfg.Site.CDNHost),
		storagePrefix: cfg.Storage.Prefix,
		cacheTTL:      cfg.CacheTTL(),
	}

	if cfg.Site.PassthroughOrigin != "" {
		if target, err := url.Parse(cfg.Site.PassthroughOrigin); err == nil {
			h.passthrough = httputil.NewSingleHostReverseProxy(target)
		}
	}

	return h
}

// Handle routes a request: resolve the image path, classify intent,
// then serve bytes or the lightbox document.
func (h *Handler) Handle(c echo.Context) error {
	req := c.Request()
	host := requestHost(req)

	// Resolve against the escaped path so validation performs exactly
	// one percent-decode of the original request path.
	rawPath, ok := h.routeImagePath(host, req.URL.EscapedPath())
	if !ok {
		return h.servePassthrough(c)
	}

	key, err := imagepath.Resolve(rawPath)
	if err != nil {
		logging.LogRejectedPath(rawPath, host, c.RealIP(), intent.Rejected.String())
		return response.InvalidPath(c)
	}

	switch h.classifier.Classify(req.Header) {
	case intent.RawImage:
		return h.serveRawImage(c, key)
	default:
		return h.serveLightbox(c, key)
	}
}

// routeImagePath extracts the candidate image path from the recognized
// inbound URL shapes. Requests for other hostnames fall through.
func (h *Handler) routeImagePath(host, path string) (string, bool) {
	switch {
	case strings.HasPrefix(path, "/library/originals/"):
		return path[len("/library/originals/"):], true
	case strings.HasPrefix(path, "/library/"):
		return path[len("/library/"):], true
	case host == h.cdnHost && strings.HasPrefix(path, "/originals/"):
		return path[len("/originals/"):], true
	case host == h.cdnHost:
		return strings.TrimPrefix(path, "/"), true
	default:
		return "", false
	}
}

// serveRawImage streams bytes from the object store. The store is the
// sole source of truth: no fallback fetch of the public URL, which
// routes back through this gateway and would recurse.
func (h *Handler) serveRawImage(c echo.Context, key imagepath.Key) error {
	storageKey := key.StorageKey(h.storagePrefix)

	obj, err := h.store.Get(c.Request().Context(), storageKey)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			// Expected outcome: keys may reference images never uploaded
			return response.ImageNotFound(c)
		}
		logging.Logger.Error("Object store lookup failed",
			zap.String("key", storageKey),
			zap.Error(err))
		return response.PlainError(c, http.StatusInternalServerError, "Storage error.")
	}

	return response.RawImage(c, obj, key.MIME())
}

// serveLightbox answers from the document cache when possible, else
// aggregates metadata, renders, responds, and caches in the background.
func (h *Handler) serveLightbox(c echo.Context, key imagepath.Key) error {
	req := c.Request()
	cacheKey := cache.LightboxKey(&url.URL{
		Scheme:   "https",
		Host:     requestHost(req),
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
	})

	if doc, err := h.docCache.Get(req.Context(), cacheKey); err == nil {
		return response.LightboxDocument(c, doc.HTML)
	}

	publicURL := key.PublicURL(h.cdnOrigin, h.storagePrefix)
	og := h.aggregator.Aggregate(req.Context(), publicURL)

	html, err := h.builder.Build(publicURL, string(key), og)
	if err != nil {
		logging.Logger.Error("Failed to build lightbox document",
			zap.String("key", string(key)),
			zap.Error(err))
		return response.PlainError(c, http.StatusInternalServerError, "Render error.")
	}

	// Cache in the background; the client never waits on or observes
	// the write.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		doc := &cache.Document{HTML: html, CreatedAt: time.Now()}
		if err := h.docCache.Set(ctx, cacheKey, doc, h.cacheTTL); err != nil {
			logging.Logger.Warn("Failed to cache lightbox document",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
	}()

	return response.LightboxDocument(c, html)
}

// servePassthrough forwards requests for unrecognized hostnames to the
// configured passthrough origin, untouched.
func (h *Handler) servePassthrough(c echo.Context) error {
	if h.passthrough == nil {
		return response.PlainError(c, http.StatusNotFound, "Not found.")
	}
	h.passthrough.ServeHTTP(c.Response(), c.Request())
	return nil
}

func requestHost(req *http.Request) string {
	host := req.Host
	if hostOnly, _, err := net.SplitHostPort(host); err == nil {
		host = hostOnly
	}
	return strings.ToLower(host)
}
