// Package textquery extracts values from text bodies that are not JSON,
// such as the script blocks of console HTML pages.
package textquery

// ModeRegex identifies regular expression extraction.
const ModeRegex = "regex"

// QueryResult holds extraction results from a single body.
type QueryResult struct {
	Values []string `json:"values"`
	Count  int      `json:"count"`
	Mode   string   `json:"mode"`
}
