// Package lightbox renders the self-contained HTML document served to
// top-level navigations, social crawlers and unrecognized clients.
package lightbox

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/thecontrarian/image-gateway/pkg/metadata"
)

//go:embed templates/lightbox.html.tmpl
var templateFS embed.FS

var lightboxTmpl = template.Must(template.ParseFS(templateFS, "templates/lightbox.html.tmpl"))

// Builder renders lightbox documents for one site. Build is a pure
// function of its inputs: the same (url, alt, og) triple always yields
// byte-identical output.
type Builder struct {
	siteName    string
	siteURL     string
	metadataAPI string
}

// NewBuilder creates a document builder. metadataAPI is the base URL the
// embedded client script fetches full provenance/EXIF detail from — a
// second, richer fetch independent of the server-side aggregation, and
// allowed to fail without affecting the cached document.
func NewBuilder(siteName, siteURL, metadataAPI string) *Builder {
	return &Builder{
		siteName:    siteName,
		siteURL:     siteURL,
		metadataAPI: metadataAPI,
	}
}

// templateData carries precomputed fields into the template. All string
// interpolation happens inside html/template, which escapes per context,
// so neither the alt text (derived from the object key) nor any upstream
// metadata string can break out of its attribute or text-node position.
type templateData struct {
	ImageURL      string
	AltText       string
	OGTitle       string
	OGDescription string
	Width         int
	Height        int
	SiteName      string
	SiteURL       string
	MetadataAPI   string
}

// Build renders the complete document.
func (b *Builder) Build(publicImageURL, altText string, og metadata.OGMetadata) ([]byte, error) {
	filename := altText
	if i := strings.LastIndexByte(filename, '/'); i >= 0 {
		filename = filename[i+1:]
	}
	if filename == "" {
		filename = "Image"
	}

	title := og.Title
	if title == "" {
		if og.Creator != "" {
			title = og.Creator + " — " + filename
		} else {
			title = b.siteName + " — " + filename
		}
	}

	var descParts []string
	if og.Description != "" {
		descParts = append(descParts, og.Description)
	} else {
		descParts = append(descParts, fmt.Sprintf("From the %s archive.", b.siteName))
	}
	if og.Creator != "" && og.Title == "" {
		descParts = append(descParts, "By "+og.Creator)
	}
	if og.Source != "" {
		descParts = append(descParts, og.Source)
	}
	if og.Date != "" {
		descParts = append(descParts, og.Date)
	}

	data := templateData{
		ImageURL:      publicImageURL,
		AltText:       altText,
		OGTitle:       title,
		OGDescription: strings.Join(descParts, " · "),
		Width:         og.Width,
		Height:        og.Height,
		SiteName:      b.siteName,
		SiteURL:       b.siteURL,
		MetadataAPI:   b.metadataAPI,
	}

	var buf bytes.Buffer
	if err := lightboxTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render lightbox document: %w", err)
	}
	return buf.Bytes(), nil
}
