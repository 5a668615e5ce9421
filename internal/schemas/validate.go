// Package schemas provides JSON Schema validation for AI provider responses.
// Any shape deviation is treated as failure, never partial acceptance: a
// response that fails its schema sends the caller down the deterministic
// fallback path.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// generationSchema describes the question-generation response: exactly six
// questions, each with non-empty text, a known difficulty, and a positive
// time limit.
const generationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 6,
      "maxItems": 6,
      "items": {
        "type": "object",
        "required": ["text", "difficulty", "timeLimit"],
        "properties": {
          "id": {"type": "string"},
          "text": {"type": "string", "minLength": 1},
          "difficulty": {"type": "string", "enum": ["Easy", "Medium", "Hard"]},
          "timeLimit": {"type": "integer", "minimum": 1},
          "category": {"type": "string"}
        }
      }
    }
  }
}`

// evaluationSchema describes the evaluation response: all five fields are
// required with the documented types.
const evaluationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["score", "summary", "strengths", "weaknesses", "recommendations"],
  "properties": {
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "summary": {"type": "string", "minLength": 1},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}}
  }
}`

// ValidationError represents a schema validation failure with field paths.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, fe := range ve.Errors {
		sb.WriteString(fmt.Sprintf("\n  %s: %s", fe.Field, fe.Message))
	}
	return sb.String()
}

// ValidateGeneration checks a question-generation response document.
func ValidateGeneration(document string) error {
	return validate(generationSchema, document)
}

// ValidateEvaluation checks an evaluation response document.
func ValidateEvaluation(document string) error {
	return validate(evaluationSchema, document)
}

func validate(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}
