package parser

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
)

// Arithmetic expression parsing for $((...)) bodies. Precedence
// climbing over a tiny token stream. Constructs outside the supported
// operator set (ternaries, assignments, comma) yield a nil tree; the
// raw text is always preserved on the Arithmetic node, so failure here
// is never a parse error.

type arithLexer struct {
	input string
	pos   int
}

type arithToken struct {
	text string
	leaf bool
}

func (l *arithLexer) next() (arithToken, bool) {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return arithToken{}, false
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c >= '0' && c <= '9':
		for l.pos < len(l.input) && isArithNamePart(l.input[l.pos]) {
			l.pos++
		}
		return arithToken{text: l.input[start:l.pos], leaf: true}, true

	case c == '$' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		l.pos++
		for l.pos < len(l.input) && isArithNamePart(l.input[l.pos]) {
			l.pos++
		}
		return arithToken{text: l.input[start:l.pos], leaf: true}, true
	}

	for _, op := range []string{"==", "!=", "<=", ">=", "&&", "||", "+", "-", "*", "/", "%", "<", ">", "!", "(", ")"} {
		if strings.HasPrefix(l.input[l.pos:], op) {
			l.pos += len(op)
			return arithToken{text: op}, true
		}
	}

	// unsupported construct: bail out
	return arithToken{text: string(c)}, true
}

func isArithNamePart(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

var arithBinOps = map[string]struct {
	op   ast.ArithOp
	prec int
}{
	"||": {ast.ArithOr, 1},
	"&&": {ast.ArithAnd, 2},
	"==": {ast.ArithEq, 3},
	"!=": {ast.ArithNe, 3},
	"<":  {ast.ArithLt, 4},
	"<=": {ast.ArithLe, 4},
	">":  {ast.ArithGt, 4},
	">=": {ast.ArithGe, 4},
	"+":  {ast.ArithAdd, 5},
	"-":  {ast.ArithSub, 5},
	"*":  {ast.ArithMul, 6},
	"/":  {ast.ArithDiv, 6},
	"%":  {ast.ArithMod, 6},
}

type arithParser struct {
	tokens []arithToken
	pos    int
	failed bool
}

// parseArith parses inner arithmetic text into an operator tree,
// returning nil when the text uses anything beyond the supported
// grammar.
func parseArith(inner string) *ast.ArithNode {
	lx := &arithLexer{input: inner}
	var tokens []arithToken
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil
	}

	p := &arithParser{tokens: tokens}
	node := p.parseBinary(1)
	if p.failed || p.pos != len(p.tokens) {
		return nil
	}
	return node
}

func (p *arithParser) cur() (arithToken, bool) {
	if p.pos >= len(p.tokens) {
		return arithToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *arithParser) parseBinary(minPrec int) *ast.ArithNode {
	left := p.parseUnary()
	if p.failed {
		return nil
	}
	for {
		tok, ok := p.cur()
		if !ok {
			return left
		}
		info, isOp := arithBinOps[tok.text]
		if !isOp || tok.leaf || info.prec < minPrec {
			return left
		}
		p.pos++
		right := p.parseBinary(info.prec + 1)
		if p.failed {
			return nil
		}
		left = &ast.ArithNode{Op: info.op, Left: left, Right: right}
	}
}

func (p *arithParser) parseUnary() *ast.ArithNode {
	tok, ok := p.cur()
	if !ok {
		p.failed = true
		return nil
	}

	switch {
	case tok.leaf:
		p.pos++
		return &ast.ArithNode{Op: ast.ArithLeaf, Value: tok.text}
	case tok.text == "-":
		p.pos++
		return &ast.ArithNode{Op: ast.ArithNeg, Left: p.parseUnary()}
	case tok.text == "!":
		p.pos++
		return &ast.ArithNode{Op: ast.ArithNot, Left: p.parseUnary()}
	case tok.text == "(":
		p.pos++
		node := p.parseBinary(1)
		if next, ok := p.cur(); !ok || next.text != ")" {
			p.failed = true
			return nil
		}
		p.pos++
		return node
	}
	p.failed = true
	return nil
}
