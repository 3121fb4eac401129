// internal/query/parser_test.go
package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtask/internal/common/logger"
)

func taskFieldContext() FieldContext {
	return FieldContext{
		Valid: map[string]bool{
			"id": true, "title": true, "description": true, "status": true,
			"priority": true, "tags": true, "created": true, "updated": true,
			"due_date": true, "assigned_to": true, "project": true, "estimate": true,
		},
		Aliases: map[string]string{
			"desc":     "description",
			"prio":     "priority",
			"assignee": "assigned_to",
		},
	}
}

func TestParse_SingleClause(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("status == active", nil)
	require.NoError(t, err)
	require.Len(t, f.Fields, 1)
	assert.Equal(t, Constraint{OpEq: "active"}, f.Fields["status"])
}

func TestParse_MultipleClauses(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("priority >= 7 status == active", nil)
	require.NoError(t, err)
	require.Len(t, f.Fields, 2)
	assert.Equal(t, Constraint{OpGte: "7"}, f.Fields["priority"])
	assert.Equal(t, Constraint{OpEq: "active"}, f.Fields["status"])
}

func TestParse_OperatorSpellings(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	tests := []struct {
		name  string
		input string
		field string
		op    Operator
	}{
		{"symbolic gte", "priority >= 5", "priority", OpGte},
		{"symbolic gt", "priority > 5", "priority", OpGt},
		{"symbolic lte", "priority <= 5", "priority", OpLte},
		{"symbolic lt", "priority < 5", "priority", OpLt},
		{"symbolic neq", "status != done", "status", OpNeq},
		{"double equals", "status == done", "status", OpEq},
		{"single equals", "status = done", "status", OpEq},
		{"attached symbolic", "priority>=5", "priority", OpGte},
		{"keyword eq", "status eq done", "status", OpEq},
		{"keyword neq", "status neq done", "status", OpNeq},
		{"keyword noteq", "status noteq done", "status", OpNeq},
		{"keyword not eq", "status not eq done", "status", OpNeq},
		{"keyword gt", "priority gt 5", "priority", OpGt},
		{"keyword gte", "priority gte 5", "priority", OpGte},
		{"keyword lt", "priority lt 5", "priority", OpLt},
		{"keyword lte", "priority lte 5", "priority", OpLte},
		{"keyword in", "tags in [a,b]", "tags", OpIn},
		{"keyword notin", "tags notin [a,b]", "tags", OpNotIn},
		{"keyword not in", "tags not in [a,b]", "tags", OpNotIn},
		{"keyword nin", "tags nin [a,b]", "tags", OpNotIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := p.Parse(tt.input, nil)
			require.NoError(t, err)
			require.Contains(t, f.Fields, tt.field)
			assert.Contains(t, f.Fields[tt.field], tt.op)
			assert.Len(t, f.Fields[tt.field], 1)
		})
	}
}

func TestParse_ListValues(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("tags in [work,urgent]", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "urgent"}, f.Fields["tags"][OpIn])
}

func TestParse_ListValueShaping(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"spaces around elements", "tags in [a, b , c]", []string{"a", "b", "c"}},
		{"underscores become spaces", "tags in [code_review,follow_up]", []string{"code review", "follow up"}},
		{"empty elements dropped", "tags in [a,,b,]", []string{"a", "b"}},
		{"single element", "tags in [solo]", []string{"solo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := p.Parse(tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Fields["tags"][OpIn])
		})
	}
}

func TestParse_QuotedAndUnderscoredScalars(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse(`title == "hello world"`, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", f.Fields["title"][OpEq])

	f, err = p.Parse("project == big_launch", nil)
	require.NoError(t, err)
	assert.Equal(t, "big launch", f.Fields["project"][OpEq])
}

func TestParse_Aliases(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("prio >= 5 assignee == alice", nil)
	require.NoError(t, err)
	assert.Contains(t, f.Fields, "priority")
	assert.Contains(t, f.Fields, "assigned_to")
	assert.NotContains(t, f.Fields, "prio")
	assert.NotContains(t, f.Fields, "assignee")
}

func TestParse_UnrecognizedFieldIsNotFatal(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("sprocket == 42", nil)
	require.NoError(t, err)
	assert.Equal(t, Constraint{OpEq: "42"}, f.Fields["sprocket"])
}

func TestParse_WildcardRemovesConstraint(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	base := NewFilter()
	base.Fields["status"] = Constraint{OpEq: "active"}
	base.Fields["priority"] = Constraint{OpGte: "5"}

	for _, wildcard := range []string{"?", "*", "any"} {
		f, err := p.Parse("status = "+wildcard, base)
		require.NoError(t, err)
		assert.NotContains(t, f.Fields, "status")
		assert.Contains(t, f.Fields, "priority")
	}

	// base is never mutated
	assert.Contains(t, base.Fields, "status")
}

func TestParse_WildcardRequiresEquality(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	_, err := p.Parse("status > any", nil)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "wildcard")
}

func TestParse_UnknownOperator(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	tests := []struct {
		name  string
		input string
	}{
		{"tilde operator", "status ~= invalid"},
		{"missing operator", "priority 5"},
		{"keyword at end of input", "tags in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.input, nil)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Error(), "unknown operator")
		})
	}
}

func TestParse_BlankValue(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	for _, input := range []string{`status == ""`, "status == []", "status == ,"} {
		_, err := p.Parse(input, nil)
		require.Error(t, err, "input %q", input)
		assert.Contains(t, err.Error(), "blank")
	}
}

func TestParse_UnconsumedRemainder(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	_, err := p.Parse("status == active ???", nil)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "???", perr.Remainder)
}

func TestParse_Multipliers(t *testing.T) {
	ctx := taskFieldContext()
	ctx.Multipliers = map[string]float64{"size": 1024}
	p := NewParser(ctx, logger.NewTestLogger(t))

	f, err := p.Parse("size >= 10", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(10240), f.Fields["size"][OpGte])

	// non-numeric values pass through unscaled
	f, err = p.Parse("size >= huge", nil)
	require.NoError(t, err)
	assert.Equal(t, "huge", f.Fields["size"][OpGte])
}

func TestParse_TypeCoercion(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	tests := []struct {
		input string
		field string
		want  interface{}
	}{
		{"done == true", "done", true},
		{"done == True", "done", true},
		{"done == false", "done", false},
		{"done == False", "done", false},
		{"assigned_to == None", "assigned_to", nil},
		{"assigned_to == null", "assigned_to", nil},
		{"status == truthy", "status", "truthy"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := p.Parse(tt.input, nil)
			require.NoError(t, err)
			v, ok := f.Fields[tt.field][OpEq]
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestParse_RangeOperatorsCoexist(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("created >= 2024-01-01 created < 2024-02-01", nil)
	require.NoError(t, err)
	require.Len(t, f.Fields["created"], 2)
	assert.Equal(t, "2024-01-01", f.Fields["created"][OpGte])
	assert.Equal(t, "2024-02-01", f.Fields["created"][OpLt])
}

func TestParse_LastWriteWins(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.Parse("priority == 1 priority == 2", nil)
	require.NoError(t, err)
	assert.Equal(t, Constraint{OpEq: "2"}, f.Fields["priority"])
}

func TestParse_MergesIntoBase(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	base := NewFilter()
	base.Fields["project"] = Constraint{OpEq: "apollo"}

	f, err := p.Parse("status == active", base)
	require.NoError(t, err)
	assert.Contains(t, f.Fields, "project")
	assert.Contains(t, f.Fields, "status")

	f, err = p.Parse("", base)
	require.NoError(t, err)
	assert.Equal(t, base.Fields, f.Fields)
}

func TestParseArgs_JoinsTokens(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	f, err := p.ParseArgs([]string{"priority", ">=", "7", "status", "==", "active"}, nil)
	require.NoError(t, err)
	assert.Contains(t, f.Fields, "priority")
	assert.Contains(t, f.Fields, "status")
}

func TestParse_ReserializationIsIdempotent(t *testing.T) {
	// multipliers are excluded: they rescale on every pass by design
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	inputs := []string{
		"status == active",
		"priority >= 7 status != done",
		"tags in [work,urgent] tags notin [later]",
		`title == "hello world" assigned_to == None done == true`,
		"created >= 2024-01-01 created < 2024-02-01",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := p.Parse(input, nil)
			require.NoError(t, err)

			second, err := p.Parse(first.String(), nil)
			require.NoError(t, err)
			assert.Equal(t, first.Fields, second.Fields)
		})
	}
}

func TestParseError_Is(t *testing.T) {
	p := NewParser(taskFieldContext(), logger.NewTestLogger(t))

	_, err := p.Parse("status ~= x", nil)
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*ParseError)))
}
