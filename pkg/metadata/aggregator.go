// Package metadata aggregates the provenance and EXIF extraction
// services into best-effort Open Graph fields for the lightbox document.
// The aggregation is opportunistic: it exists only to populate fast,
// crawler-visible meta tags, and every upstream problem degrades to
// emptier fields rather than an error.
package metadata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thecontrarian/image-gateway/pkg/logging"
)

// OGMetadata holds aggregated social-preview fields. All fields are
// optional; partial population is expected and valid.
type OGMetadata struct {
	Title       string
	Description string
	Width       int
	Height      int
	Creator     string
	Source      string
	Date        string
}

// Aggregator fetches and merges the two metadata services.
type Aggregator struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewAggregator builds an aggregator against the metadata service base
// URL with the given per-call timeout.
func NewAggregator(baseURL string, timeout time.Duration) *Aggregator {
	return &Aggregator{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// provenanceSummary mirrors GET /api/c2pa_mini.
type provenanceSummary struct {
	Creator           string `json:"creator"`
	Source            string `json:"source"`
	DigitalSourceType string `json:"digital_source_type"`
	Date              string `json:"date"`
}

// exifRecord mirrors one value of the GET /api/exif_metadata response,
// which is an object keyed by filename.
type exifRecord struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	IPTC   struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"iptc"`
	Photography struct {
		Description string `json:"description"`
		Artist      string `json:"artist"`
	} `json:"photography"`
}

// Aggregate never fails: both upstream calls run concurrently, each
// under its own timeout, and a failure or timeout in either source
// yields empty values for that source's fields only. Calls run on
// contexts detached from the request so a client disconnect does not
// abandon work another waiter could still use.
func (a *Aggregator) Aggregate(ctx context.Context, publicImageURL string) OGMetadata {
	var (
		prov   *provenanceSummary
		exif   *exifRecord
		g      errgroup.Group
		encURI = url.QueryEscape(publicImageURL)
	)

	g.Go(func() error {
		prov = a.fetchProvenance(encURI)
		return nil
	})
	g.Go(func() error {
		exif = a.fetchEXIF(encURI)
		return nil
	})
	_ = g.Wait()

	return merge(prov, exif)
}

// merge applies the field priority rules: creator prefers the
// provenance value over the EXIF artist; title and description come
// from IPTC fields when present; source falls back from the explicit
// source to the digital source type.
func merge(prov *provenanceSummary, exif *exifRecord) OGMetadata {
	var og OGMetadata

	if prov != nil {
		og.Creator = prov.Creator
		og.Source = prov.Source
		if og.Source == "" {
			og.Source = prov.DigitalSourceType
		}
		og.Date = prov.Date
	}

	if exif != nil {
		og.Width = exif.Width
		og.Height = exif.Height
		og.Title = exif.IPTC.Title
		og.Description = exif.IPTC.Description
		if og.Description == "" {
			og.Description = exif.Photography.Description
		}
		if og.Creator == "" {
			og.Creator = exif.Photography.Artist
		}
	}

	return og
}

func (a *Aggregator) fetchProvenance(encURI string) *provenanceSummary {
	body, ok := a.get(a.baseURL + "/api/c2pa_mini?uri=" + encURI)
	if !ok {
		return nil
	}
	var summary provenanceSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		logging.Logger.Debug("Unparseable provenance response", zap.Error(err))
		return nil
	}
	return &summary
}

func (a *Aggregator) fetchEXIF(encURI string) *exifRecord {
	body, ok := a.get(a.baseURL + "/api/exif_metadata?uri=" + encURI)
	if !ok {
		return nil
	}
	// The response is keyed by filename with a single entry.
	var byName map[string]exifRecord
	if err := json.Unmarshal(body, &byName); err != nil {
		logging.Logger.Debug("Unparseable EXIF response", zap.Error(err))
		return nil
	}
	for _, record := range byName {
		return &record
	}
	return nil
}

// get issues one timeout-bounded GET. Any failure mode — transport
// error, timeout, non-2xx — is reported as absence, never retried.
func (a *Aggregator) get(rawURL string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false
	}

	resp, err := a.client.Do(req)
	if err != nil {
		logging.Logger.Debug("Metadata upstream unavailable",
			zap.String("url", rawURL),
			zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Logger.Debug("Metadata upstream returned non-2xx",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode))
		return nil, false
	}

	// Metadata payloads are small; the cap guards against a
	// misbehaving upstream streaming forever.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, false
	}
	return body, true
}

const maxResponseBytes = 1 << 20
