package visibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse compiles the shorthand syntax into a Condition tree.
//
// Supported forms:
//   - truthiness: `enabled`, `!enabled`
//   - comparisons: `field == "value"`, `count != 3`, `flag == true`, `x == null`
//   - membership: `skills contains "others"`, `status in ["a", "b"]`
//   - emptiness: `notes is empty`, `notes is not empty`
//   - composition: `a && (b || !c)`
//
// Bare words on the right-hand side are read as strings.
func Parse(expr string) (Condition, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Condition{}, errors.New("visibility: empty expression")
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return Condition{}, err
	}

	stream := &tokenStream{tokens: tokens}
	cond, err := parseOr(stream)
	if err != nil {
		return Condition{}, err
	}
	if stream.pos < len(stream.tokens) {
		return Condition{}, fmt.Errorf("visibility: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return cond, nil
}

// MustParse is Parse for statically authored conditions; it panics on error.
func MustParse(expr string) Condition {
	cond, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return cond
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', ',', '!', '=', '&', '|':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	for i < len(input) {
		ch := input[i]
		switch ch {
		case ' ', '\t', '\n', '\r':
			i++
		case '(':
			i++
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
		case ')':
			i++
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
		case '[':
			i++
			tokens = append(tokens, token{kind: tokenLBracket, raw: "["})
		case ']':
			i++
			tokens = append(tokens, token{kind: tokenRBracket, raw: "]"})
		case ',':
			i++
			tokens = append(tokens, token{kind: tokenComma, raw: ","})
		case '!':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
		case '=':
			i++
			if peek() != '=' {
				return nil, errors.New("visibility: unexpected '='; use '=='")
			}
			i++
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
		case '&':
			i++
			if peek() != '&' {
				return nil, errors.New("visibility: unexpected '&'; use '&&'")
			}
			i++
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
		case '|':
			i++
			if peek() != '|' {
				return nil, errors.New("visibility: unexpected '|'; use '||'")
			}
			i++
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
		case '"', '\'':
			value, next, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			i = next
			tokens = append(tokens, token{kind: tokenString, raw: value})
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

// readString scans a quoted literal starting at input[start] and returns the
// unquoted value plus the index after the closing quote.
func readString(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[start+1 : i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("visibility: invalid string literal: %w", err)
		}
		return value, i + 1, nil
	}
	return "", 0, errors.New("visibility: unterminated string literal")
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (Condition, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return Condition{}, err
	}
	if stream.peek(tokenOr) {
		children := []Condition{left}
		for stream.match(tokenOr) {
			right, err := parseAnd(stream)
			if err != nil {
				return Condition{}, err
			}
			children = append(children, right)
		}
		return Or(children...), nil
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (Condition, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return Condition{}, err
	}
	if stream.peek(tokenAnd) {
		children := []Condition{left}
		for stream.match(tokenAnd) {
			right, err := parseUnary(stream)
			if err != nil {
				return Condition{}, err
			}
			children = append(children, right)
		}
		return And(children...), nil
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (Condition, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return Condition{}, err
		}
		return Not(inner), nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (Condition, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return Condition{}, err
		}
		if !stream.match(tokenRParen) {
			return Condition{}, errors.New("visibility: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return Condition{}, errors.New("visibility: unexpected end of expression")
		}
		return Condition{}, fmt.Errorf("visibility: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}

	switch {
	case stream.match(tokenEq):
		lit, err := stream.consumeLiteral()
		if err != nil {
			return Condition{}, err
		}
		return Eq(ident.raw, lit), nil
	case stream.match(tokenNeq):
		lit, err := stream.consumeLiteral()
		if err != nil {
			return Condition{}, err
		}
		return Neq(ident.raw, lit), nil
	case stream.matchKeyword("contains"):
		lit, err := stream.consumeLiteral()
		if err != nil {
			return Condition{}, err
		}
		return Contains(ident.raw, lit), nil
	case stream.matchKeyword("in"):
		list, err := stream.consumeList()
		if err != nil {
			return Condition{}, err
		}
		return In(ident.raw, list...), nil
	case stream.matchKeyword("is"):
		negated := stream.matchKeyword("not")
		if !stream.matchKeyword("empty") {
			return Condition{}, fmt.Errorf("visibility: expected 'empty' after %s is", ident.raw)
		}
		if negated {
			return NotEmpty(ident.raw), nil
		}
		return Empty(ident.raw), nil
	}

	return Truthy(ident.raw), nil
}

func (s *tokenStream) peek(kind tokenKind) bool {
	return s.pos < len(s.tokens) && s.tokens[s.pos].kind == kind
}

func (s *tokenStream) match(kind tokenKind) bool {
	if !s.peek(kind) {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) matchKeyword(word string) bool {
	if !s.peek(tokenIdentifier) || !strings.EqualFold(s.tokens[s.pos].raw, word) {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if !s.peek(kind) {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (any, error) {
	if s.pos >= len(s.tokens) {
		return nil, errors.New("visibility: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		return tok.raw, nil
	case tokenNumber:
		n, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("visibility: invalid number literal %q", tok.raw)
		}
		return n, nil
	case tokenBool:
		return tok.raw == "true", nil
	case tokenNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("visibility: expected literal, got %q", tok.raw)
	}
}

func (s *tokenStream) consumeList() ([]any, error) {
	if !s.match(tokenLBracket) {
		return nil, errors.New("visibility: expected '[' after in")
	}
	var out []any
	if s.match(tokenRBracket) {
		return nil, errors.New("visibility: empty list")
	}
	for {
		lit, err := s.consumeLiteral()
		if err != nil {
			return nil, err
		}
		out = append(out, lit)
		if s.match(tokenComma) {
			continue
		}
		if s.match(tokenRBracket) {
			return out, nil
		}
		return nil, errors.New("visibility: expected ',' or ']' in list")
	}
}
