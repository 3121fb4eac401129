// internal/query/scanner.go
package query

import "strings"

// token is one raw clause lifted from the input text. The value carries its
// surrounding brackets or quotes; stripping happens during processing.
type token struct {
	field string
	op    string
	value string
}

// keywordOperators lists the space-delimited operator spellings, longest
// first so that a prefix spelling never shadows a longer one ("lt" vs "lte").
// A keyword operator requires at least one leading space and exactly one
// trailing space to count as an operator; otherwise the text is a value.
var keywordOperators = []string{
	"not eq", "not in", "noteq", "notin",
	"gte", "lte", "neq", "nin",
	"gt", "lt", "eq", "in",
}

// scanner walks the input with an explicit position cursor. Only the literal
// space character separates tokens; any other byte belongs to a token.
type scanner struct {
	input string
	pos   int
}

// scanTokens splits query text into clause tokens, enforcing the
// full-consumption contract: every byte of the input must belong to some
// clause, or the scan fails naming the unconsumed remainder.
func scanTokens(input string) ([]token, error) {
	s := &scanner{input: input}
	var toks []token
	for s.pos < len(s.input) {
		tok, err := s.scanClause()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// scanClause reads one field/operator/value group plus the whitespace that
// follows it. A clause must start with a field character; anything else is
// unparseable text.
func (s *scanner) scanClause() (token, error) {
	field := s.scanFieldRun()
	if field == "" {
		return token{}, &ParseError{Remainder: s.input[s.pos:]}
	}
	op := s.scanOperator()
	s.skipSpaces()
	value := s.scanValue()
	s.skipSpaces()
	return token{field: field, op: op, value: value}, nil
}

// scanFieldRun consumes a maximal run of alphanumerics and underscore.
func (s *scanner) scanFieldRun() string {
	start := s.pos
	for s.pos < len(s.input) && isFieldChar(s.input[s.pos]) {
		s.pos++
	}
	return s.input[start:s.pos]
}

// scanOperator tries a symbolic operator first (optional spaces, then a run
// of comparison characters), then a keyword operator (one or more spaces,
// the keyword, a trailing space). When neither matches it consumes nothing
// and returns the empty spelling, which fails operator resolution later.
func (s *scanner) scanOperator() string {
	mark := s.pos
	s.skipSpaces()
	symStart := s.pos
	for s.pos < len(s.input) && isOperatorChar(s.input[s.pos]) {
		s.pos++
	}
	if s.pos > symStart {
		return s.input[symStart:s.pos]
	}
	s.pos = mark

	if s.pos >= len(s.input) || s.input[s.pos] != ' ' {
		return ""
	}
	p := s.pos
	for p < len(s.input) && s.input[p] == ' ' {
		p++
	}
	rest := s.input[p:]
	for _, kw := range keywordOperators {
		if strings.HasPrefix(rest, kw+" ") {
			s.pos = p + len(kw) + 1
			return kw
		}
	}
	return ""
}

// scanValue reads the value token with the fixed priority: bracketed list,
// then double-quoted string, then a bare run of non-space characters.
// Brackets and quotes must enclose at least one character to count;
// otherwise the text falls through to the bare-run rule.
func (s *scanner) scanValue() string {
	if s.pos >= len(s.input) {
		return ""
	}
	if s.input[s.pos] == '[' {
		if end := strings.IndexByte(s.input[s.pos+1:], ']'); end > 0 {
			v := s.input[s.pos : s.pos+end+2]
			s.pos += end + 2
			return v
		}
	}
	if s.input[s.pos] == '"' {
		if end := strings.IndexByte(s.input[s.pos+1:], '"'); end > 0 {
			v := s.input[s.pos : s.pos+end+2]
			s.pos += end + 2
			return v
		}
	}
	start := s.pos
	for s.pos < len(s.input) && s.input[s.pos] != ' ' {
		s.pos++
	}
	return s.input[start:s.pos]
}

func (s *scanner) skipSpaces() {
	for s.pos < len(s.input) && s.input[s.pos] == ' ' {
		s.pos++
	}
}

func isFieldChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isOperatorChar(c byte) bool {
	return c == '=' || c == '>' || c == '<' || c == '!'
}
