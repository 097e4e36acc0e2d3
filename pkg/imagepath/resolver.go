// Package imagepath validates raw request paths into object-storage keys.
package imagepath

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidPath signals a malformed, unsafe or unrecognized image path.
// Callers must answer 400 and must not touch storage.
var ErrInvalidPath = errors.New("invalid image path")

// Key is a validated, normalized storage key for an image. It never
// contains traversal segments, control characters or characters outside
// the allow-listed class, and always ends in a known image extension.
type Key string

var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"avif": "image/avif",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

var (
	allowedChars = regexp.MustCompile(`^[0-9A-Za-z._/\-]+$`)
	extPattern   = regexp.MustCompile(`\.([A-Za-z0-9]+)$`)
)

// Resolve validates a raw request path and returns the normalized key.
// The query string and fragment are stripped, the path is percent-decoded
// exactly once, and the decoded value is checked against the allow-list.
// Pure; no side effects.
func Resolve(raw string) (Key, error) {
	if raw == "" {
		return "", ErrInvalidPath
	}

	path := raw
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}

	decoded, err := url.PathUnescape(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	path = strings.TrimLeft(decoded, "/")
	if path == "" {
		return "", ErrInvalidPath
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	for i := 0; i < len(path); i++ {
		if path[i] < 0x20 || path[i] == 0x7F {
			return "", ErrInvalidPath
		}
	}
	if !allowedChars.MatchString(path) {
		return "", ErrInvalidPath
	}

	m := extPattern.FindStringSubmatch(path)
	if m == nil {
		return "", ErrInvalidPath
	}
	if _, ok := mimeByExt[strings.ToLower(m[1])]; !ok {
		return "", ErrInvalidPath
	}

	return Key(path), nil
}

// MIME returns the content type implied by the key's extension, falling
// back to application/octet-stream for keys built outside Resolve.
func (k Key) MIME() string {
	if m := extPattern.FindStringSubmatch(string(k)); m != nil {
		if mime, ok := mimeByExt[strings.ToLower(m[1])]; ok {
			return mime
		}
	}
	return "application/octet-stream"
}

// StorageKey prefixes the key with the storage namespace used for lookups.
func (k Key) StorageKey(prefix string) string {
	return prefix + string(k)
}

// PublicURL builds the publicly embeddable CDN URL for the key under the
// given storage prefix, percent-encoding each path segment independently.
func (k Key) PublicURL(origin, prefix string) string {
	full := k.StorageKey(prefix)
	segs := strings.Split(full, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(origin, "/") + "/" + strings.Join(segs, "/")
}

// Filename returns the final path segment, used as alt text and in
// fallback titles.
func (k Key) Filename() string {
	s := string(k)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// MIMEForExtension reports whether ext maps to a known image type.
func MIMEForExtension(ext string) (string, bool) {
	mime, ok := mimeByExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return mime, ok
}
