// Package cache stores rendered lightbox documents so repeated crawler
// hits for the same image are served instantly.
package cache

import (
	"context"
	"errors"
	"net/url"
	"time"
)

var (
	ErrCacheNotFound = errors.New("cache entry not found")
	ErrCacheExpired  = errors.New("cache entry expired")
)

// Document is a cached rendered lightbox response. It never contains
// raw image bytes.
type Document struct {
	HTML      []byte
	CreatedAt time.Time
}

// Cache defines the document cache operations
type Cache interface {
	Set(ctx context.Context, key string, doc *Document, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Document, error)
}

// viewParam is the reserved marker appended to the request URL to form
// the cache key. The marker keeps the document key disjoint from the
// URL an <img> tag uses for raw bytes — without it a cached HTML
// document could be handed to an image-consuming client. If the site
// ever needs a "_view" query parameter for another purpose this name
// must change first.
const (
	viewParam = "_view"
	viewValue = "lightbox"
)

// LightboxKey derives the cache key for a request URL by appending the
// disambiguating view marker. The input URL is not modified.
func LightboxKey(u *url.URL) string {
	keyed := *u
	q := keyed.Query()
	q.Set(viewParam, viewValue)
	keyed.RawQuery = q.Encode()
	return keyed.String()
}
