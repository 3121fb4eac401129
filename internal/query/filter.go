// internal/query/filter.go
package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Sort directions carried by a filter. The translator normalizes these to
// whatever the backend expects (e.g. ASC/DESC for SQL).
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// OrderBy is one sort key of a filter.
type OrderBy struct {
	Field     string
	Direction string
}

// Constraint holds the operator/value pairs applied to a single field.
// At most one value per operator: a repeated clause for the same
// field+operator overwrites the earlier one.
type Constraint map[Operator]interface{}

// Filter is the parsed, backend-agnostic representation of a query.
// Fields maps canonical field names to their constraints; Order and Limit
// are carried alongside and are never nested under a field.
type Filter struct {
	Fields map[string]Constraint
	Order  []OrderBy
	Limit  int
}

// NewFilter returns an empty filter ready to accept constraints.
func NewFilter() *Filter {
	return &Filter{Fields: make(map[string]Constraint)}
}

// Clone returns a deep copy. The parser mutates its own copy, so callers
// can safely reuse a base filter across invocations.
func (f *Filter) Clone() *Filter {
	out := NewFilter()
	if f == nil {
		return out
	}
	for field, cons := range f.Fields {
		c := make(Constraint, len(cons))
		for op, v := range cons {
			c[op] = v
		}
		out.Fields[field] = c
	}
	if len(f.Order) > 0 {
		out.Order = append([]OrderBy(nil), f.Order...)
	}
	out.Limit = f.Limit
	return out
}

// FieldNames returns the constrained field names in sorted order.
func (f *Filter) FieldNames() []string {
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String re-serializes the field constraints to the filter language.
// Spaces inside values are re-encoded as underscores, so the output parses
// back to an equal set of constraints. Order and Limit are directives set
// by flags, not clauses, and are not part of the textual form.
func (f *Filter) String() string {
	var parts []string
	for _, field := range f.FieldNames() {
		cons := f.Fields[field]
		for _, op := range operatorOrder {
			v, ok := cons[op]
			if !ok {
				continue
			}
			parts = append(parts, field+" "+string(op)+" "+encodeValue(v))
		}
	}
	return strings.Join(parts, " ")
}

func encodeValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case string:
		return strings.ReplaceAll(t, " ", "_")
	case []string:
		items := make([]string, len(t))
		for i, s := range t {
			items[i] = strings.ReplaceAll(s, " ", "_")
		}
		return "[" + strings.Join(items, ",") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// MarshalJSON emits the wire shape consumed by the remote search endpoint:
// {"field":{"op":value},...,"order":[["field","desc"]],"limit":N}.
func (f *Filter) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(f.Fields)+2)
	for field, cons := range f.Fields {
		doc[field] = cons
	}
	if len(f.Order) > 0 {
		order := make([][]string, len(f.Order))
		for i, o := range f.Order {
			order[i] = []string{o.Field, o.Direction}
		}
		doc["order"] = order
	}
	if f.Limit > 0 {
		doc["limit"] = f.Limit
	}
	return json.Marshal(doc)
}

// ParseOrder converts a comma-separated order flag ("priority-,created")
// into sort keys. A trailing '-' selects descending, a trailing '+' (or
// nothing) ascending.
func ParseOrder(spec string) []OrderBy {
	var order []OrderBy
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := DirAsc
		if strings.HasSuffix(part, "-") {
			dir = DirDesc
		}
		field := strings.TrimRight(part, "-+")
		if field == "" {
			continue
		}
		order = append(order, OrderBy{Field: field, Direction: dir})
	}
	return order
}

// ParseError reports query text that is malformed: unconsumed input, an
// unknown operator, a blank value, or a misused wildcard. It is terminal
// for the query being processed.
type ParseError struct {
	Msg       string
	Remainder string
}

func (e *ParseError) Error() string {
	if e.Remainder != "" {
		return fmt.Sprintf("failed to parse query, unconsumed text: %q (did you forget to quote your query?)", e.Remainder)
	}
	return e.Msg
}
