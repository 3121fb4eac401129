// internal/query/operator.go
package query

// Operator identifies one comparison kind in the filter language.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpIn    Operator = "in"
	OpNotIn Operator = "notin"
)

// operatorSpellings maps every accepted textual spelling to its Operator.
// Spellings are matched case-sensitively, exactly as typed. This table is
// part of the stable end-user query surface and must not drift between
// backends.
var operatorSpellings = map[string]Operator{
	">=": OpGte, ">": OpGt, "gt": OpGt, "gte": OpGte,
	"<=": OpLte, "<": OpLt, "lt": OpLt, "lte": OpLte,
	"!=": OpNeq, "==": OpEq, "=": OpEq, "eq": OpEq, "neq": OpNeq,
	"noteq": OpNeq, "not eq": OpNeq,
	"notin": OpNotIn, "not in": OpNotIn, "nin": OpNotIn,
	"in": OpIn,
}

// operatorOrder fixes a deterministic iteration order over a constraint's
// operators, used when re-serializing filters and building query plans.
var operatorOrder = []Operator{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn}

// Operators returns every operator in canonical order. Consumers iterate
// this instead of ranging over constraint maps when they need deterministic
// output.
func Operators() []Operator {
	return append([]Operator(nil), operatorOrder...)
}

// LookupOperator resolves a textual spelling to its Operator.
func LookupOperator(spelling string) (Operator, bool) {
	op, ok := operatorSpellings[spelling]
	return op, ok
}
