// internal/store/translate.go
package store

import (
	"strings"

	"cloudtask/internal/query"
)

// sqlOps maps scalar comparison operators to their SQL spelling.
var sqlOps = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpNeq: "!=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// Translate turns a filter into a QueryPlan for a SQL-shaped backend.
// Fields are visited in sorted order so the plan is deterministic. Every
// clause binds its values as parameters.
func Translate(f *query.Filter, c Contract) (*QueryPlan, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	plan := &QueryPlan{}
	for _, field := range f.FieldNames() {
		if len(c.Columns) > 0 && !c.Columns[field] {
			return nil, translationErrorf("unknown field %q", field)
		}
		cons := f.Fields[field]
		for _, op := range query.Operators() {
			value, ok := cons[op]
			if !ok {
				continue
			}
			clauses, err := translateConstraint(field, op, value, c.MultiValued[field])
			if err != nil {
				return nil, err
			}
			plan.Clauses = append(plan.Clauses, clauses...)
		}
	}

	plan.OrderBy = normalizeOrder(f.Order)
	if len(plan.OrderBy) == 0 {
		plan.OrderBy = normalizeOrder(c.DefaultOrder)
	}
	plan.Limit = f.Limit
	if plan.Limit <= 0 {
		plan.Limit = c.DefaultLimit
	}
	return plan, nil
}

func translateConstraint(field string, op query.Operator, value interface{}, multiValued bool) ([]Clause, error) {
	if multiValued {
		return translateMultiValued(field, op, value)
	}

	switch op {
	case query.OpIn, query.OpNotIn:
		elems, err := listElements(field, value)
		if err != nil {
			return nil, err
		}
		keyword := "IN"
		if op == query.OpNotIn {
			keyword = "NOT IN"
		}
		placeholders := strings.Repeat("?, ", len(elems))
		expr := field + " " + keyword + " (" + placeholders[:len(placeholders)-2] + ")"
		args := make([]interface{}, len(elems))
		for i, e := range elems {
			args[i] = e
		}
		return []Clause{{Expr: expr, Args: args}}, nil

	case query.OpEq:
		if value == nil {
			return []Clause{{Expr: field + " IS NULL"}}, nil
		}
	case query.OpNeq:
		if value == nil {
			return []Clause{{Expr: field + " IS NOT NULL"}}, nil
		}
	}

	return []Clause{{
		Expr: field + " " + sqlOps[op] + " ?",
		Args: []interface{}{value},
	}}, nil
}

// translateMultiValued handles attributes stored as JSON-encoded lists.
// Only membership is expressible: each requested element becomes its own
// LIKE clause matching the element as a quoted substring of the encoding,
// and the clauses are AND-conjoined. Asking for [a,b] therefore matches
// rows containing BOTH a and b. That mirrors the established behavior of
// the query surface and is kept deliberately; see DESIGN.md.
func translateMultiValued(field string, op query.Operator, value interface{}) ([]Clause, error) {
	if op != query.OpIn {
		return nil, translationErrorf("operator %q not supported on multi-valued field %q", op, field)
	}
	elems, err := listElements(field, value)
	if err != nil {
		return nil, err
	}
	clauses := make([]Clause, len(elems))
	for i, e := range elems {
		clauses[i] = Clause{
			Expr: field + " LIKE ?",
			Args: []interface{}{`%"` + escapeLike(e) + `"%`},
		}
	}
	return clauses, nil
}

func listElements(field string, value interface{}) ([]string, error) {
	elems, ok := value.([]string)
	if !ok {
		return nil, translationErrorf("field %q requires a list value", field)
	}
	if len(elems) == 0 {
		return nil, translationErrorf("field %q has an empty list value", field)
	}
	return elems, nil
}

// escapeLike neutralizes LIKE metacharacters in user values so elements
// only ever match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func normalizeOrder(order []query.OrderBy) []query.OrderBy {
	if len(order) == 0 {
		return nil
	}
	out := make([]query.OrderBy, len(order))
	for i, o := range order {
		dir := "ASC"
		if strings.EqualFold(o.Direction, query.DirDesc) {
			dir = "DESC"
		}
		out[i] = query.OrderBy{Field: o.Field, Direction: dir}
	}
	return out
}
