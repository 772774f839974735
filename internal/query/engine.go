// Package query runs jq expressions against decoded console responses.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itchyny/gojq"
)

// DefaultCacheSize is the number of compiled expressions kept by the
// package-level engine.
const DefaultCacheSize = 128

// Engine executes jq expressions, keeping compiled code in an LRU cache so
// the same selector used across many responses is parsed once.
type Engine struct {
	compiled *lru.Cache[string, *gojq.Code]
}

// NewEngine creates an engine caching up to cacheSize compiled expressions.
func NewEngine(cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := lru.New[string, *gojq.Code](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{compiled: c}, nil
}

// Options controls result collection.
type Options struct {
	Deduplicate bool
	MaxResults  int // 0 = unlimited
}

// QueryResult contains the results of a jq query.
type QueryResult struct {
	Values   []any    `json:"values"`
	Errors   []string `json:"errors,omitempty"` // Runtime errors, e.g. type mismatch
	RawCount int      `json:"raw_count"`        // Count before deduplication
}

// Query runs expression against input. input must be made of JSON-like
// values (map[string]any, []any, float64, json.Number, string, bool, nil); use Normalize
// for anything else.
func (e *Engine) Query(input any, expression string, opts Options) (*QueryResult, error) {
	code, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Values: make([]any, 0)}
	seen := make(map[string]bool)
	iter := code.Run(input)

	for {
		if opts.MaxResults > 0 && len(result.Values) >= opts.MaxResults {
			break
		}
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			result.Errors = append(result.Errors, formatJQError(err))
			continue
		}
		if v == nil {
			continue
		}

		result.RawCount++
		if opts.Deduplicate {
			key := valueKey(v)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result.Values = append(result.Values, v)
	}

	return result, nil
}

// Validate checks that expression parses and compiles.
func (e *Engine) Validate(expression string) error {
	_, err := e.compile(expression)
	return err
}

func (e *Engine) compile(expression string) (*gojq.Code, error) {
	if code, ok := e.compiled.Get(expression); ok {
		return code, nil
	}

	parsed, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	e.compiled.Add(expression, code)
	return code, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the shared engine.
func Default() *Engine {
	defaultOnce.Do(func() {
		// NewEngine only fails for a non-positive size.
		defaultEngine, _ = NewEngine(DefaultCacheSize)
	})
	return defaultEngine
}

// Run evaluates expression with the shared engine and returns its values.
// If the expression produced nothing but runtime errors, the first one is
// returned as an error.
func Run(input any, expression string) ([]any, error) {
	res, err := Default().Query(input, expression, Options{})
	if err != nil {
		return nil, err
	}
	if len(res.Values) == 0 && len(res.Errors) > 0 {
		return nil, errors.New(res.Errors[0])
	}
	return res.Values, nil
}

// Normalize converts a typed value (structs, typed slices) into the generic
// form jq operates on by a JSON round trip.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding query input: %w", err)
	}
	return out, nil
}

// formatJQError adds a hint to the runtime errors users hit most often.
// gojq runtime errors carry no type, so the hints match on the message.
func formatJQError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	errStr := err.Error()
	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this response)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	}
	return errStr + hint
}

func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
