// Package response writes the gateway's three response shapes with
// their fixed header sets.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thecontrarian/image-gateway/pkg/objstore"
)

// RawImage streams object bytes with long-lived public caching. The
// Vary header matters: the same URL yields an HTML document for other
// fetch destinations, and shared caches must not mix the two.
func RawImage(c echo.Context, obj *objstore.Object, fallbackType string) error {
	// echo's Stream copies from the reader but does not close it; without
	// this every request leaks an open file or pooled HTTP connection.
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = fallbackType
	}

	h := c.Response().Header()
	h.Set("Cache-Control", "public, max-age=604800")
	h.Set("Vary", "Sec-Fetch-Dest")
	h.Set("X-Robots-Tag", "noindex")
	if obj.ETag != "" {
		h.Set("ETag", obj.ETag)
	}

	return c.Stream(http.StatusOK, contentType, obj.Body)
}

// LightboxDocument sends a rendered HTML document. Browsers are told
// not to cache it (provenance freshness matters to human viewers); the
// gateway's own document cache still serves repeat crawler hits.
func LightboxDocument(c echo.Context, html []byte) error {
	h := c.Response().Header()
	h.Set("Cache-Control", "private, no-store")
	h.Set("Vary", "Sec-Fetch-Dest")
	h.Set("X-Robots-Tag", "noindex, nofollow")

	return c.Blob(http.StatusOK, "text/html; charset=utf-8", html)
}

// PlainError sends a plain-text error body.
func PlainError(c echo.Context, code int, message string) error {
	return c.String(code, message)
}

// InvalidPath sends the 400 answer for unsafe or unrecognized paths.
func InvalidPath(c echo.Context) error {
	return PlainError(c, http.StatusBadRequest, "Invalid image path.")
}

// ImageNotFound sends the 404 answer for object-store misses.
func ImageNotFound(c echo.Context) error {
	return PlainError(c, http.StatusNotFound, "Image not found.")
}
