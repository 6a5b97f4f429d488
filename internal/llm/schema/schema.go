// Package schema checks normalized model payloads against embedded JSON Schemas.
package schema

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"smartcareer-backend/internal/llm"
)

// Names of the embedded schemas.
const (
	Analysis      = "analysis"
	CoverLetter   = "cover_letter"
	InterviewPrep = "interview_prep"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func load() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema)
		for _, name := range []string{Analysis, CoverLetter, InterviewPrep} {
			data, err := schemaFiles.ReadFile("schemas/" + name + ".json")
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// Validate checks doc against the named schema. doc may be a map or any value
// that marshals to JSON. A violation is reported as llm.ErrMalformedOutput.
func Validate(name string, doc any) error {
	schemas, err := load()
	if err != nil {
		return err
	}
	s, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", llm.ErrMalformedOutput, strings.Join(msgs, "; "))
}
