// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		valid   bool
	}{
		{
			name: "minimal valid task",
			payload: map[string]interface{}{
				"title":    "Complete report",
				"priority": 5,
			},
			valid: true,
		},
		{
			name: "full valid task",
			payload: map[string]interface{}{
				"title":       "Complete report",
				"description": "Quarterly numbers",
				"priority":    8,
				"tags":        []interface{}{"work", "urgent"},
				"due_date":    "2026-09-01",
				"assigned_to": "alice",
				"project":     "apollo",
				"estimate":    2.5,
			},
			valid: true,
		},
		{
			name:    "missing title",
			payload: map[string]interface{}{"priority": 5},
			valid:   false,
		},
		{
			name: "priority out of range",
			payload: map[string]interface{}{
				"title":    "x",
				"priority": 11,
			},
			valid: false,
		},
		{
			name: "bad due date format",
			payload: map[string]interface{}{
				"title":    "x",
				"due_date": "next tuesday",
			},
			valid: false,
		},
		{
			name: "tags must be strings",
			payload: map[string]interface{}{
				"title": "x",
				"tags":  []interface{}{"ok", 7},
			},
			valid: false,
		},
		{
			name: "unknown field rejected",
			payload: map[string]interface{}{
				"title":    "x",
				"sprocket": true,
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateCreate(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.GetErrorMessages())
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	result, err := ValidateUpdate(map[string]interface{}{"status": "done"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	// no title requirement on updates
	result, err = ValidateUpdate(map[string]interface{}{"priority": 3})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	// but an empty update is rejected
	result, err = ValidateUpdate(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, result.Valid)

	result, err = ValidateUpdate(map[string]interface{}{"priority": 0})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}
