// internal/store/contract.go
package store

import (
	"fmt"

	"cloudtask/internal/query"
)

// Contract describes what a storage backend can express. Columns is the set
// of queryable attributes (empty means "accept anything"). MultiValued marks
// attributes stored as an encoded list (JSON text in a scalar column), which
// need substring matching instead of native comparison. DefaultOrder and
// DefaultLimit apply when the filter carries no directives; both are
// mandatory, unbounded or unordered queries are disallowed.
type Contract struct {
	Columns      map[string]bool
	MultiValued  map[string]bool
	DefaultOrder []query.OrderBy
	DefaultLimit int
}

func (c Contract) validate() error {
	if c.DefaultLimit <= 0 {
		return &TranslationError{Msg: "storage contract requires a positive default limit"}
	}
	if len(c.DefaultOrder) == 0 {
		return &TranslationError{Msg: "storage contract requires a default order"}
	}
	return nil
}

// Clause is one parameterized predicate fragment. Expr uses ? placeholders;
// values travel in Args, never interpolated into Expr.
type Clause struct {
	Expr string
	Args []interface{}
}

// QueryPlan is the backend-ready form of a filter: AND-conjoined predicate
// clauses, a sort order with normalized ASC/DESC directions, and a finite
// limit.
type QueryPlan struct {
	Clauses []Clause
	OrderBy []query.OrderBy
	Limit   int
}

// Args flattens the bound parameters of every clause in order.
func (p *QueryPlan) Args() []interface{} {
	var args []interface{}
	for _, cl := range p.Clauses {
		args = append(args, cl.Args...)
	}
	return args
}

// TranslationError reports a structurally valid filter that the target
// storage cannot express. It is terminal for the query being processed.
type TranslationError struct {
	Msg string
}

func (e *TranslationError) Error() string {
	return e.Msg
}

func translationErrorf(format string, args ...interface{}) *TranslationError {
	return &TranslationError{Msg: fmt.Sprintf(format, args...)}
}
