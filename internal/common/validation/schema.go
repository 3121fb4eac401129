// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// taskSchema constrains task payloads before they reach any backend.
// Create requires a title; updates accept any subset of mutable fields.
var taskSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"id": map[string]interface{}{"type": "integer"},
		"title": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 200,
		},
		"description": map[string]interface{}{"type": "string"},
		"status": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"priority": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": 10,
		},
		"tags": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string", "minLength": 1},
		},
		"due_date": map[string]interface{}{
			"type":    "string",
			"pattern": `^\d{4}-\d{2}-\d{2}$`,
		},
		"assigned_to": map[string]interface{}{"type": "string"},
		"project":     map[string]interface{}{"type": "string"},
		"estimate":    map[string]interface{}{"type": "number", "minimum": 0},
	},
}

// ValidationResult reports schema violations field by field.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// ValidateCreate checks a create payload: the task schema plus a required
// title.
func ValidateCreate(payload map[string]interface{}) (*ValidationResult, error) {
	schema := cloneSchema()
	schema["required"] = []interface{}{"title"}
	return validateAgainst(schema, payload)
}

// ValidateUpdate checks a partial update payload: any subset of mutable
// fields, but at least one of them.
func ValidateUpdate(payload map[string]interface{}) (*ValidationResult, error) {
	if len(payload) == 0 {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: "at least one field must be set"}},
		}, nil
	}
	return validateAgainst(cloneSchema(), payload)
}

func validateAgainst(schema, payload map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}

func cloneSchema() map[string]interface{} {
	out := make(map[string]interface{}, len(taskSchema))
	for k, v := range taskSchema {
		out[k] = v
	}
	return out
}
