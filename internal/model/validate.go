package model

import (
	_ "embed"
	"fmt"
	"strings"

	"resume-builder/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(resumeSchema)

// ValidateDocument checks doc against the embedded resume schema. Nil slices
// marshal to null and are rejected, so callers normalise before saving.
func ValidateDocument(doc domain.ResumeDocument) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		path := strings.TrimPrefix(e.Field(), "(root).")
		if path == "(root)" {
			path = "content"
		}
		ve.Add(path, e.Description())
	}
	return ve
}
