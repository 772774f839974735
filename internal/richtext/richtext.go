// Package richtext inspects and rewrites article HTML before it is sent to
// the console. Images referenced by local path must be uploaded to the
// content CDN and their src replaced, or the published article shows broken
// images.
package richtext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LocalImages returns the distinct src values of <img> tags that point at
// local files, in document order. Remote (http, https, protocol-relative)
// and data: URLs are skipped.
func LocalImages(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var srcs []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || !IsLocal(src) || seen[src] {
			return
		}
		seen[src] = true
		srcs = append(srcs, src)
	})
	return srcs, nil
}

// IsLocal reports whether src refers to a file rather than a URL.
func IsLocal(src string) bool {
	lower := strings.ToLower(src)
	for _, prefix := range []string{"http://", "https://", "//", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	return true
}

// RewriteImages replaces <img> src values found in replacements and returns
// the body fragment. html is returned untouched when nothing matched.
func RewriteImages(html string, replacements map[string]string) (string, error) {
	if len(replacements) == 0 {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	changed := 0
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if to, ok := replacements[src]; ok {
			s.SetAttr("src", to)
			changed++
		}
	})
	if changed == 0 {
		return html, nil
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return out, nil
}
