// Package jsoncompact shrinks JSON bodies for log output by trimming long
// arrays and strings.
package jsoncompact

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Options controls JSON compaction behavior.
type Options struct {
	MaxArrayItems int // Trim arrays to N items (0 = no limit)
	MaxStringLen  int // Truncate strings longer than N bytes (0 = no limit)
	MaxDepth      int // Max recursion depth (0 = unlimited)
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 3
	DefaultMaxStringLen  = 120
	DefaultMaxDepth      = 6
)

// DefaultOptions returns the settings used for log previews.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Compact compresses JSON bytes by trimming arrays and strings.
// Returns error if input is not valid JSON. If opts is nil, DefaultOptions() is used.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return json.Marshal(compactValue(v, opts, 0))
}

// Preview renders a body for a log line of at most maxBytes. JSON bodies are
// compacted first; anything else (HTML login pages, script dumps) is cut.
func Preview(data []byte, maxBytes int) string {
	out := data
	if compacted, err := Compact(data, nil); err == nil {
		out = compacted
	}
	return truncate(string(out), maxBytes)
}

func compactValue(v any, opts *Options, depth int) any {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return "[max depth]"
	}

	switch val := v.(type) {
	case []any:
		limit := len(val)
		if opts.MaxArrayItems > 0 && limit > opts.MaxArrayItems {
			limit = opts.MaxArrayItems
		}
		out := make([]any, 0, limit+1)
		for _, item := range val[:limit] {
			out = append(out, compactValue(item, opts, depth+1))
		}
		if rest := len(val) - limit; rest > 0 {
			out = append(out, fmt.Sprintf("... (%d more items)", rest))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = compactValue(item, opts, depth+1)
		}
		return out
	case string:
		if opts.MaxStringLen <= 0 || len(val) <= opts.MaxStringLen {
			return val
		}
		cut := truncate(val, opts.MaxStringLen)
		return fmt.Sprintf("%s (%d more bytes)", cut, len(val)-len(cut)+3)
	default:
		return v
	}
}

// truncate cuts s to at most n bytes on a rune boundary, marking the cut
// with "...".
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
