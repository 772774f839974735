package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// JSONSchemaExtend requires a body on every article.
func (Entry) JSONSchemaExtend(s *jsonschema.Schema) {
	s.AnyOf = []*jsonschema.Schema{
		{Required: []string{"content"}},
		{Required: []string{"content_file"}},
	}
}

// Schema returns the JSON Schema (draft 2020-12) of a manifest.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	return r.Reflect(&Manifest{})
}

var (
	compileOnce sync.Once
	compiled    *santhosh.Schema
	compileErr  error
)

func compiledSchema() (*santhosh.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(Schema())
		if err != nil {
			compileErr = fmt.Errorf("marshaling schema: %w", err)
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compileErr = fmt.Errorf("unmarshaling schema: %w", err)
			return
		}

		compiler := santhosh.NewCompiler()
		if err := compiler.AddResource("manifest.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("manifest.json")
	})
	return compiled, compileErr
}

// ValidationError lists every problem found in a manifest.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid manifest: " + strings.Join(e.Problems, "; ")
}

// printer renders validation messages.
var printer = message.NewPrinter(language.English)

// Validate checks a decoded manifest (plain JSON values) against Schema.
// It returns a *ValidationError when the document does not conform.
func Validate(value any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	err = schema.Validate(value)
	if err == nil {
		return nil
	}
	var verr *santhosh.ValidationError
	if !errors.As(err, &verr) {
		return &ValidationError{Problems: []string{err.Error()}}
	}

	byPath := make(map[string][]string)
	collectErrors(verr, byPath)

	var problems []string
	for path, msgs := range byPath {
		seen := make(map[string]bool)
		for _, msg := range msgs {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				problems = append(problems, path+": "+msg)
			} else {
				problems = append(problems, msg)
			}
		}
	}
	sort.Strings(problems)
	if len(problems) == 0 {
		problems = []string{verr.Error()}
	}
	return &ValidationError{Problems: problems}
}

// collectErrors gathers leaf errors by instance path.
func collectErrors(err *santhosh.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}
