// Package manifest loads article batch manifests: a YAML or JSON file
// listing the articles of one app message together with their covers and
// bodies.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xkong/wechatbackends/pkg/client"
)

// Format is the encoding of a manifest file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Manifest describes one article batch.
type Manifest struct {
	SiteDomain string  `json:"site_domain,omitempty" yaml:"site_domain,omitempty" jsonschema:"description=Domain used to make article URLs absolute"`
	Articles   []Entry `json:"articles" yaml:"articles" jsonschema:"minItems=1,maxItems=8"`
}

// Entry is one article. The body is given inline or as a path to an HTML
// file; the cover as a local image or the file id of an uploaded one.
type Entry struct {
	Title       string `json:"title" yaml:"title" jsonschema:"minLength=1,maxLength=64"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty" jsonschema:"maxLength=8"`
	Digest      string `json:"digest,omitempty" yaml:"digest,omitempty" jsonschema:"maxLength=120"`
	Content     string `json:"content,omitempty" yaml:"content,omitempty" jsonschema:"description=Inline article HTML"`
	ContentFile string `json:"content_file,omitempty" yaml:"content_file,omitempty" jsonschema:"description=Path to the article HTML relative to the manifest"`
	Cover       string `json:"cover,omitempty" yaml:"cover,omitempty" jsonschema:"description=Path to a local cover image"`
	CoverFileID string `json:"cover_file_id,omitempty" yaml:"cover_file_id,omitempty" jsonschema:"description=File id of an image already in the media library"`
	ShowCover   bool   `json:"show_cover,omitempty" yaml:"show_cover,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty" jsonschema:"description=Original article URL or a path on site_domain"`
}

// Load reads and validates a manifest, choosing the format from the file
// extension. Relative content files are not read; see ReadContent.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// FormatFromPath returns FormatJSON for .json files and FormatYAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and validates a manifest.
func Parse(data []byte, format Format) (*Manifest, error) {
	generic, err := decodeGeneric(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(generic); err != nil {
		return nil, err
	}

	var m Manifest
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	default:
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// decodeGeneric returns the document as plain JSON values so YAML and JSON
// manifests validate identically.
func decodeGeneric(data []byte, format Format) (any, error) {
	var raw []byte
	switch format {
	case FormatJSON:
		raw = data
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("converting YAML: %w", err)
		}
		raw = b
	default:
		return nil, fmt.Errorf("unknown manifest format: %s", format)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	return v, nil
}

// ReadContent loads every ContentFile relative to baseDir into Content.
func (m *Manifest) ReadContent(baseDir string) error {
	for i := range m.Articles {
		e := &m.Articles[i]
		if e.ContentFile == "" {
			continue
		}
		data, err := os.ReadFile(Resolve(baseDir, e.ContentFile))
		if err != nil {
			return fmt.Errorf("article %d: reading content: %w", i, err)
		}
		e.Content = string(data)
	}
	return nil
}

// Resolve joins a manifest-relative path with baseDir.
func Resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ErrNoContent is returned for an article whose body was never loaded.
var ErrNoContent = errors.New("article has no content")

// Post converts the entry into a client.Post. coverFileID overrides
// CoverFileID when the cover was uploaded from a local file.
func (e *Entry) Post(coverFileID string) (*client.Post, error) {
	if e.Content == "" {
		return nil, fmt.Errorf("%q: %w", e.Title, ErrNoContent)
	}
	if coverFileID == "" {
		coverFileID = e.CoverFileID
	}
	return &client.Post{
		PostTitle:   e.Title,
		PostContent: e.Content,
		PostDigest:  e.Digest,
		Author:      e.Author,
		CoverID:     coverFileID,
		Cover:       e.ShowCover,
		URL:         e.URL,
	}, nil
}
