// Package schemas provides JSON Schema validation for the structured inputs
// the pipeline accepts from the outside world.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/spa-builder/internal/types"
)

//go:embed build_spec.schema.json
var buildSpecSchema string

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidateBuildSpec validates raw JSON against the embedded BuildSpec schema.
func ValidateBuildSpec(jsonContent string) error {
	return validateAgainst(buildSpecSchema, "build_spec.schema.json", jsonContent)
}

// ParseBuildSpec validates raw JSON, unmarshals it into the typed structure
// and applies defaults for unset optional fields. This is the single
// ingestion point for build specifications; downstream code treats the
// result as read-only.
func ParseBuildSpec(jsonContent string) (*types.BuildSpec, error) {
	if err := ValidateBuildSpec(jsonContent); err != nil {
		return nil, err
	}

	var spec types.BuildSpec
	if err := json.Unmarshal([]byte(jsonContent), &spec); err != nil {
		return nil, fmt.Errorf("failed to parse build spec: %w", err)
	}
	spec.ApplyDefaults()
	return &spec, nil
}

func validateAgainst(schemaContent, schemaName, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaName,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
