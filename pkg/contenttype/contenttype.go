// Package contenttype classifies response bodies. The console labels JSON
// replies as text/html, so the body itself is consulted before the header.
package contenttype

import (
	"bytes"
	"mime"
	"strings"
	"unicode/utf8"
)

// Category represents a broad content-type classification.
type Category string

const (
	JSON   Category = "json"
	HTML   Category = "html"
	XML    Category = "xml"
	Text   Category = "text"
	Binary Category = "binary"
)

// Classify returns the broad content category for a content-type header value.
// Returns Binary for empty content-type strings.
func Classify(contentType string) Category {
	if contentType == "" {
		return Binary
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case strings.Contains(mediaType, "json"):
		return JSON
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return HTML
	case strings.Contains(mediaType, "xml"):
		return XML
	case strings.HasPrefix(mediaType, "text/"), strings.Contains(mediaType, "javascript"):
		return Text
	default:
		return Binary
	}
}

// Detect classifies a body by its leading bytes and falls back to the header.
func Detect(contentType string, body []byte) Category {
	trimmed := bytes.TrimLeft(body, " \t\r\n\ufeff")
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '{', '[':
			return JSON
		case '<':
			lower := bytes.ToLower(trimmed[:min(len(trimmed), 64)])
			if bytes.HasPrefix(lower, []byte("<?xml")) {
				return XML
			}
			return HTML
		}
	}

	if cat := Classify(contentType); cat != Binary {
		return cat
	}
	if len(body) > 0 && utf8.Valid(body) {
		return Text
	}
	return Binary
}

// IsJSON returns true if the content type indicates JSON (case-insensitive).
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}
