// internal/store/predicate.go
package store

import (
	"strconv"
	"strings"

	"cloudtask/internal/query"
)

// Predicate compiles a filter into an in-memory row matcher with the same
// semantics as the SQL translation: conjunction across all constraints,
// numeric-aware comparison, and AND-of-elements containment when a list
// constraint meets a list-valued row attribute.
func Predicate(f *query.Filter) (func(map[string]interface{}) bool, error) {
	type check struct {
		field string
		op    query.Operator
		value interface{}
	}

	var checks []check
	for _, field := range f.FieldNames() {
		cons := f.Fields[field]
		for _, op := range query.Operators() {
			value, ok := cons[op]
			if !ok {
				continue
			}
			if op == query.OpIn || op == query.OpNotIn {
				if _, err := listElements(field, value); err != nil {
					return nil, err
				}
			}
			checks = append(checks, check{field: field, op: op, value: value})
		}
	}

	return func(row map[string]interface{}) bool {
		for _, ch := range checks {
			if !matches(row[ch.field], ch.op, ch.value) {
				return false
			}
		}
		return true
	}, nil
}

func matches(rowValue interface{}, op query.Operator, want interface{}) bool {
	switch op {
	case query.OpEq:
		return valuesEqual(rowValue, want)
	case query.OpNeq:
		return !valuesEqual(rowValue, want)
	case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
		cmp, ok := compareValues(rowValue, want)
		if !ok {
			return false
		}
		switch op {
		case query.OpGt:
			return cmp > 0
		case query.OpGte:
			return cmp >= 0
		case query.OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case query.OpIn:
		return containsElements(rowValue, want.([]string), true)
	case query.OpNotIn:
		return !containsElements(rowValue, want.([]string), false)
	}
	return false
}

// containsElements evaluates membership. A list-valued row attribute must
// contain ALL requested elements for In (requireAll), matching the SQL
// per-element LIKE conjunction; NotIn excludes rows containing ANY element.
// A scalar row attribute matches when it equals any element.
func containsElements(rowValue interface{}, elems []string, requireAll bool) bool {
	switch rv := rowValue.(type) {
	case []string:
		return listContains(asInterfaces(rv), elems, requireAll)
	case []interface{}:
		return listContains(rv, elems, requireAll)
	default:
		for _, e := range elems {
			if valuesEqual(rowValue, e) {
				return true
			}
		}
		return false
	}
}

func listContains(members []interface{}, elems []string, requireAll bool) bool {
	for _, e := range elems {
		found := false
		for _, m := range members {
			if valuesEqual(m, e) {
				found = true
				break
			}
		}
		if requireAll && !found {
			return false
		}
		if !requireAll && found {
			return true
		}
	}
	return requireAll
}

func asInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// valuesEqual compares a row value against a filter value, tolerating the
// numeric type drift between JSON decoding (float64) and query text
// (strings, or floats after a multiplier).
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, aok := a.(bool); aok {
		bb, bok := b.(bool)
		return bok && ab == bb
	}
	if bb, bok := b.(bool); bok {
		ab, aok := a.(bool)
		return aok && ab == bb
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return toString(a) == toString(b)
}

// compareValues orders two values numerically when both parse as numbers,
// lexically when both are strings. Mixed or null operands do not compare.
func compareValues(a, b interface{}) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
