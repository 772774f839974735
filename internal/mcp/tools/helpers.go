// Package tools contains the MCP tools that drive the admin console.
package tools

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/xkong/wechatbackends/internal/query"
	"github.com/xkong/wechatbackends/pkg/client"
)

// MIME type constant.
const MimeJSON = "application/json"

// ImageInput identifies an image by local path or inline base64 data.
type ImageInput struct {
	Path       string `json:"path,omitempty" jsonschema:"Local image file path"`
	DataBase64 string `json:"data_base64,omitempty" jsonschema:"Image bytes as standard base64, used when path is empty"`
}

// Read returns the image bytes.
func (in ImageInput) Read() ([]byte, error) {
	switch {
	case in.Path != "" && in.DataBase64 != "":
		return nil, ErrInvalidInput("give either path or data_base64, not both")
	case in.Path != "":
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return nil, ErrInvalidInput(fmt.Sprintf("reading image: %v", err))
		}
		return data, nil
	case in.DataBase64 != "":
		data, err := base64.StdEncoding.DecodeString(in.DataBase64)
		if err != nil {
			return nil, ErrInvalidInput(fmt.Sprintf("decoding data_base64: %v", err))
		}
		return data, nil
	default:
		return nil, ErrInvalidInput("path or data_base64 is required")
	}
}

// ResponseOutput carries a console response. When a select expression was
// given only the selected values are returned.
type ResponseOutput struct {
	Response map[string]any `json:"response,omitempty"`
	Selected []any          `json:"selected,omitzero"`
}

// respond builds a ResponseOutput for doc, applying the optional jq selector.
func (d *Deps) respond(doc client.Document, selector string) (ResponseOutput, error) {
	if selector == "" {
		return ResponseOutput{Response: doc}, nil
	}
	res, err := d.Query.Query(map[string]any(doc), selector, query.Options{})
	if err != nil {
		return ResponseOutput{}, ErrInvalidInput(err.Error())
	}
	return ResponseOutput{Selected: res.Values}, nil
}

// respondMany is respond for a list of responses; the selector runs on each.
func (d *Deps) respondMany(docs []client.Document, selector string) ([]ResponseOutput, error) {
	out := make([]ResponseOutput, 0, len(docs))
	for _, doc := range docs {
		r, err := d.respond(doc, selector)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
