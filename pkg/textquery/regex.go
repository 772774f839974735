package textquery

import (
	"fmt"
	"regexp"
	"sync"
)

// compiled memoizes patterns; the same few are applied to every page.
var compiled sync.Map

func compile(expression string) (*regexp.Regexp, error) {
	if re, ok := compiled.Load(expression); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	compiled.Store(expression, re)
	return re, nil
}

// QueryRegex extracts matches from text using Go regular expressions.
// When the regex has capture groups, returns the first capture group per match.
// When it has no capture groups, returns the full match.
func QueryRegex(body []byte, expression string, maxResults int) (*QueryResult, error) {
	re, err := compile(expression)
	if err != nil {
		return nil, err
	}

	hasGroups := re.NumSubexp() > 0
	values := []string{}
	for _, match := range re.FindAllSubmatch(body, -1) {
		if maxResults > 0 && len(values) >= maxResults {
			break
		}
		if hasGroups {
			values = append(values, string(match[1]))
		} else {
			values = append(values, string(match[0]))
		}
	}

	return &QueryResult{
		Values: values,
		Count:  len(values),
		Mode:   ModeRegex,
	}, nil
}

// FirstMatch returns the first value QueryRegex would return.
// An invalid expression reports no match.
func FirstMatch(body []byte, expression string) (string, bool) {
	result, err := QueryRegex(body, expression, 1)
	if err != nil || result.Count == 0 {
		return "", false
	}
	return result.Values[0], true
}
