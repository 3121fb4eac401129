// internal/query/scanner_test.go
package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanTokens_ClauseShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token
	}{
		{
			name:  "spaced symbolic operator",
			input: "priority >= 5",
			want:  []token{{field: "priority", op: ">=", value: "5"}},
		},
		{
			name:  "attached symbolic operator",
			input: "priority>=5",
			want:  []token{{field: "priority", op: ">=", value: "5"}},
		},
		{
			name:  "keyword operator",
			input: "tags in [a,b]",
			want:  []token{{field: "tags", op: "in", value: "[a,b]"}},
		},
		{
			name:  "two word keyword operator",
			input: "tags not in [a,b]",
			want:  []token{{field: "tags", op: "not in", value: "[a,b]"}},
		},
		{
			name:  "bracket list keeps interior spaces",
			input: "tags in [a, b c]",
			want:  []token{{field: "tags", op: "in", value: "[a, b c]"}},
		},
		{
			name:  "quoted value keeps interior spaces",
			input: `title == "hello world"`,
			want:  []token{{field: "title", op: "==", value: `"hello world"`}},
		},
		{
			name:  "unclosed bracket falls back to bare run",
			input: "tags in [a,b",
			want:  []token{{field: "tags", op: "in", value: "[a,b"}},
		},
		{
			name:  "empty bracket falls back to bare run",
			input: "tags in []",
			want:  []token{{field: "tags", op: "in", value: "[]"}},
		},
		{
			name:  "multiple clauses",
			input: "priority >= 7  status == active",
			want: []token{
				{field: "priority", op: ">=", value: "7"},
				{field: "status", op: "==", value: "active"},
			},
		},
		{
			name:  "keyword prefers longest spelling",
			input: "priority lte 5 created lt 9",
			want: []token{
				{field: "priority", op: "lte", value: "5"},
				{field: "created", op: "lt", value: "9"},
			},
		},
		{
			name:  "missing operator yields empty spelling",
			input: "priority 5",
			want:  []token{{field: "priority", op: "", value: "5"}},
		},
		{
			name:  "keyword at end of input is a value",
			input: "tags in",
			want:  []token{{field: "tags", op: "", value: "in"}},
		},
		{
			name:  "missing value yields empty value",
			input: "status ==",
			want:  []token{{field: "status", op: "==", value: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanTokens(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanTokens_UnconsumedInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		remainder string
	}{
		{"leading junk", "?? status == active", "?? status == active"},
		{"trailing junk", "status == active ???", "???"},
		{"bare punctuation", "(status)", "(status)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scanTokens(tt.input)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.remainder, perr.Remainder)
		})
	}
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, []OrderBy{
		{Field: "priority", Direction: DirDesc},
		{Field: "created", Direction: DirAsc},
	}, ParseOrder("priority-,created"))

	assert.Equal(t, []OrderBy{{Field: "due_date", Direction: DirAsc}}, ParseOrder("due_date+"))
	assert.Nil(t, ParseOrder(""))
}
