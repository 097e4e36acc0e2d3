// Package intent classifies what kind of response a request expects,
// using only request headers — the gateway carries no cookies or
// sessions, so header-based negotiation is the only available signal.
package intent

import (
	"net/http"
	"net/url"
	"strings"
)

// Intent is the gateway's per-request classification. It is computed
// fresh on every request and never persisted.
type Intent int

const (
	// RawImage means the caller wants image bytes (embeds, crawlbots
	// with image Accept headers, sub-resource fetches).
	RawImage Intent = iota
	// LightboxDocument means the caller gets the interactive HTML view
	// (top-level navigations, social crawlers, unknown clients).
	LightboxDocument
	// Rejected is the classification the gateway logs when path
	// validation fails; the classifier itself never returns it.
	Rejected
)

func (i Intent) String() string {
	switch i {
	case RawImage:
		return "raw"
	case LightboxDocument:
		return "lightbox"
	default:
		return "rejected"
	}
}

// Classifier decides between raw bytes and the lightbox document.
type Classifier struct {
	allowedReferers []string
	selfHost        string
	rules           []rule
}

// A rule pairs a predicate with its outcome. Rules are evaluated in
// order and the first match wins, which keeps the override semantics
// (document-dest beats same-origin Referer) auditable.
type rule struct {
	name    string
	matches func(h http.Header) bool
	intent  Intent
}

// NewClassifier builds the ordered decision table. allowedReferers are
// hostnames matched exactly or as a dot-suffix; selfHost covers the
// lightbox document's own <img> fetching the URL it was rendered from.
func NewClassifier(allowedReferers []string, selfHost string) *Classifier {
	c := &Classifier{
		selfHost: strings.ToLower(selfHost),
	}
	for _, r := range allowedReferers {
		c.allowedReferers = append(c.allowedReferers, strings.ToLower(r))
	}

	c.rules = []rule{
		// Top-level navigations always get the viewer, even when the
		// Referer is our own site ("Open Image in New Tab").
		{"document-navigation", func(h http.Header) bool {
			return secFetchDest(h) == "document"
		}, LightboxDocument},
		{"allowed-referer", func(h http.Header) bool {
			host := refererHost(h)
			return host != "" && c.refererAllowed(host)
		}, RawImage},
		{"self-referer", func(h http.Header) bool {
			return refererHost(h) == c.selfHost
		}, RawImage},
		{"image-fetch", func(h http.Header) bool {
			return secFetchDest(h) == "image"
		}, RawImage},
		{"image-accept", func(h http.Header) bool {
			return strings.HasPrefix(firstAccept(h), "image/")
		}, RawImage},
	}
	return c
}

// Classify runs the rule table; unmatched requests default to the
// lightbox document so unknown referrers and social crawlers get the
// rich preview.
func (c *Classifier) Classify(h http.Header) Intent {
	for _, r := range c.rules {
		if r.matches(h) {
			return r.intent
		}
	}
	return LightboxDocument
}

func (c *Classifier) refererAllowed(host string) bool {
	for _, allowed := range c.allowedReferers {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func secFetchDest(h http.Header) string {
	return strings.ToLower(h.Get("Sec-Fetch-Dest"))
}

func refererHost(h http.Header) string {
	referer := h.Get("Referer")
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func firstAccept(h http.Header) string {
	accept := h.Get("Accept")
	if i := strings.IndexByte(accept, ','); i >= 0 {
		accept = accept[:i]
	}
	return strings.TrimSpace(accept)
}
