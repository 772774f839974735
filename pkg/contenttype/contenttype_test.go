package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        Category
	}{
		{"application/json", "application/json", JSON},
		{"json with charset", "application/json; charset=utf-8", JSON},
		{"vendor json", "application/vnd.api+json", JSON},
		{"text/html", "text/html", HTML},
		{"html with charset", "text/html; charset=UTF-8", HTML},
		{"xhtml", "application/xhtml+xml", HTML},
		{"xml", "text/xml", XML},
		{"plain", "text/plain", Text},
		{"javascript", "application/javascript", Text},
		{"image", "image/jpeg", Binary},
		{"empty", "", Binary},
		{"upper case", "TEXT/HTML", HTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        Category
	}{
		{"json labelled html", "text/html; charset=UTF-8", `{"base_resp":{"ret":0}}`, JSON},
		{"json array", "", ` [1,2]`, JSON},
		{"login page", "text/html", "<!DOCTYPE html><html></html>", HTML},
		{"xml declaration", "", `<?xml version="1.0"?><a/>`, XML},
		{"plain text falls back to header", "text/plain", "ok", Text},
		{"unlabelled text", "", "ok", Text},
		{"binary", "", "\xff\xd8\xff\xe0", Binary},
		{"empty", "", "", Binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.contentType, []byte(tt.body)))
		})
	}
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON("Application/JSON"))
	assert.False(t, IsJSON("text/html"))
}
