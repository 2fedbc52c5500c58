package formula

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Expr is a parsed arithmetic expression over named variables. The grammar is
// intentionally minimal: + - * /, parentheses, unary minus, number literals
// and identifiers. Nothing else.
type Expr struct {
	source string
	root   node
}

// Source returns the original expression text.
func (e *Expr) Source() string {
	return e.source
}

// Idents returns every identifier referenced by the expression, deduplicated,
// in first-appearance order.
func (e *Expr) Idents() []string {
	seen := make(map[string]bool)
	var out []string
	collectIdents(e.root, seen, &out)
	return out
}

func collectIdents(n node, seen map[string]bool, out *[]string) {
	switch t := n.(type) {
	case identNode:
		if !seen[string(t)] {
			seen[string(t)] = true
			*out = append(*out, string(t))
		}
	case unaryNode:
		collectIdents(t.operand, seen, out)
	case binaryNode:
		collectIdents(t.left, seen, out)
		collectIdents(t.right, seen, out)
	}
}

type node interface{}

type numberNode struct {
	value decimal.Decimal
}

type identNode string

type unaryNode struct {
	operand node
}

type binaryNode struct {
	op    byte
	left  node
	right node
}

// Parse compiles an expression string, reporting syntax errors with position.
func Parse(source string) (*Expr, error) {
	p := &parser{input: source}
	p.next()
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, fmt.Errorf("formula: unexpected %q at position %d", p.tok.text, p.tok.pos)
	}
	return &Expr{source: source, root: root}, nil
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
	tokenInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input string
	pos   int
	tok   token
}

func (p *parser) next() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokenEOF, pos: start}
		return
	}

	c := p.input[p.pos]
	switch {
	case c == '(':
		p.pos++
		p.tok = token{kind: tokenLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokenRParen, text: ")", pos: start}
	case c == '+' || c == '-' || c == '*' || c == '/':
		p.pos++
		p.tok = token{kind: tokenOp, text: string(c), pos: start}
	case c >= '0' && c <= '9' || c == '.':
		for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
			p.pos++
		}
		p.tok = token{kind: tokenNumber, text: p.input[start:p.pos], pos: start}
	case isIdentStart(c):
		for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokenIdent, text: p.input[start:p.pos], pos: start}
	default:
		p.pos++
		p.tok = token{kind: tokenInvalid, text: string(c), pos: start}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// parseExpr handles + and -.
func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (node, error) {
	switch p.tok.kind {
	case tokenNumber:
		value, err := decimal.NewFromString(p.tok.text)
		if err != nil {
			return nil, fmt.Errorf("formula: bad number %q at position %d", p.tok.text, p.tok.pos)
		}
		p.next()
		return numberNode{value: value}, nil
	case tokenIdent:
		name := p.tok.text
		p.next()
		return identNode(name), nil
	case tokenLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokenRParen {
			return nil, fmt.Errorf("formula: missing closing parenthesis at position %d", p.tok.pos)
		}
		p.next()
		return inner, nil
	case tokenOp:
		if p.tok.text == "-" {
			p.next()
			operand, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return unaryNode{operand: operand}, nil
		}
		return nil, fmt.Errorf("formula: unexpected operator %q at position %d", p.tok.text, p.tok.pos)
	case tokenInvalid:
		return nil, fmt.Errorf("formula: invalid character %q at position %d", p.tok.text, p.tok.pos)
	default:
		if strings.TrimSpace(p.input) == "" {
			return nil, fmt.Errorf("formula: empty expression")
		}
		return nil, fmt.Errorf("formula: unexpected end of expression at position %d", p.tok.pos)
	}
}
