// internal/query/parser.go
package query

import (
	"fmt"
	"strconv"
	"strings"

	"cloudtask/internal/common/logger"
)

// FieldContext supplies field knowledge owned by the caller. Valid is used
// only for a non-fatal warning on unrecognized fields; Aliases rewrites
// shorthand names to canonical ones before validation; Multipliers scales
// numeric values of a field (unit conversion on entry).
type FieldContext struct {
	Valid       map[string]bool
	Aliases     map[string]string
	Multipliers map[string]float64
}

// Parser turns query text into a Filter. It holds no mutable state between
// calls; every Parse is independent and safe to run concurrently.
type Parser struct {
	fields FieldContext
	log    logger.Logger
}

func NewParser(fields FieldContext, log logger.Logger) *Parser {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Parser{fields: fields, log: log}
}

// ParseArgs joins pre-tokenized arguments with single spaces and parses the
// result. Shells split unquoted queries into argv; this re-joins them.
func (p *Parser) ParseArgs(args []string, base *Filter) (*Filter, error) {
	return p.Parse(strings.Join(args, " "), base)
}

// Parse scans text into clauses and applies each one to a copy of base.
// Empty input returns the base unchanged (still copied).
func (p *Parser) Parse(text string, base *Filter) (*Filter, error) {
	out := base.Clone()
	text = strings.TrimSpace(text)
	if text == "" {
		return out, nil
	}
	toks, err := scanTokens(text)
	if err != nil {
		return nil, err
	}
	for _, tok := range toks {
		if err := p.apply(out, tok); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// apply processes one clause: strip value decoration, resolve aliases, warn
// on unknown fields, resolve the operator, then shape, scale and coerce the
// value before inserting it. Last write wins per field+operator.
func (p *Parser) apply(f *Filter, tok token) error {
	value := strings.Trim(tok.value, ",[]\"")

	field := tok.field
	if canonical, ok := p.fields.Aliases[field]; ok {
		field = canonical
	}
	if len(p.fields.Valid) > 0 && !p.fields.Valid[field] {
		p.log.Warn("unrecognized field in query", map[string]interface{}{
			"field": field,
		})
	}

	op, ok := LookupOperator(tok.op)
	if !ok {
		return &ParseError{Msg: fmt.Sprintf("unknown operator: %q", tok.op)}
	}
	if value == "" {
		return &ParseError{Msg: fmt.Sprintf("value cannot be blank for field %q", field)}
	}

	// Wildcard clears any constraint on the field instead of adding one.
	if value == "?" || value == "*" || value == "any" {
		if op != OpEq {
			return &ParseError{Msg: "wildcard only valid with '=' operator"}
		}
		delete(f.Fields, field)
		return nil
	}

	var shaped interface{}
	if op == OpIn || op == OpNotIn {
		items := []string{}
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			items = append(items, strings.ReplaceAll(part, "_", " "))
		}
		shaped = items
	} else {
		shaped = strings.ReplaceAll(value, "_", " ")
	}

	// Unit multiplier: only applies when the value parses as a number.
	// Non-numeric values pass through untouched.
	if mult, ok := p.fields.Multipliers[field]; ok {
		if s, isStr := shaped.(string); isStr {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				shaped = n * mult
			}
		}
	}

	if s, isStr := shaped.(string); isStr {
		switch s {
		case "true", "True":
			shaped = true
		case "false", "False":
			shaped = false
		case "None", "null":
			shaped = nil
		}
	}

	if _, ok := f.Fields[field]; !ok {
		f.Fields[field] = make(Constraint)
	}
	f.Fields[field][op] = shaped
	return nil
}
