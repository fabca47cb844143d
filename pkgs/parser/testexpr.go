package parser

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/lexer"
)

// Test-expression parsing for [ ... ] and [[ ... ]] commands.

// unary test operators: file tests plus string emptiness
var testUnaryOps = map[string]bool{
	"-a": true, "-b": true, "-c": true, "-d": true, "-e": true, "-f": true,
	"-g": true, "-h": true, "-k": true, "-p": true, "-r": true, "-s": true,
	"-t": true, "-u": true, "-w": true, "-x": true, "-G": true, "-L": true,
	"-N": true, "-O": true, "-S": true, "-z": true, "-n": true, "-v": true,
}

// binary comparison operators for strings and integers
var testBinaryOps = map[string]bool{
	"=": true, "==": true, "!=": true, "<": true, ">": true, "=~": true,
	"-eq": true, "-ne": true, "-lt": true, "-le": true, "-gt": true, "-ge": true,
	"-nt": true, "-ot": true, "-ef": true,
}

// testExprFromWords converts the argument words of a [ or [[ command
// into a TestExpr. The word list includes the opening bracket; it must
// end with the matching closer. Anything unparseable degrades to false
// so the command keeps its plain argument form.
func (p *Parser) testExprFromWords(name string, words []lexer.Token) (ast.Expression, bool) {
	closer := "]"
	if name == "[[" {
		closer = "]]"
	}
	if len(words) < 2 || words[len(words)-1].Value != closer {
		return nil, false
	}

	operands := make([]string, 0, len(words)-2)
	for _, w := range words[1 : len(words)-1] {
		operands = append(operands, w.Value)
	}

	tp := &testParser{words: operands, extended: name == "[["}
	node := tp.parseOr()
	if tp.failed || tp.pos != len(tp.words) {
		return nil, false
	}

	span := spanBetween(spanOf(words[0]), spanOf(words[len(words)-1]))
	return &ast.TestExpr{
		Raw:      strings.Join(operands, " "),
		Extended: name == "[[",
		Expr:     node,
		Span:     span,
	}, true
}

type testParser struct {
	words    []string
	pos      int
	extended bool
	failed   bool
}

func (t *testParser) cur() (string, bool) {
	if t.pos >= len(t.words) {
		return "", false
	}
	return t.words[t.pos], true
}

// parseOr handles -o and || combinators
func (t *testParser) parseOr() *ast.TestNode {
	left := t.parseAnd()
	for {
		w, ok := t.cur()
		if !ok || t.failed {
			return left
		}
		if w == "-o" || (t.extended && w == "||") {
			t.pos++
			right := t.parseAnd()
			left = &ast.TestNode{Kind: ast.TestOr, Left: left, Right: right}
			continue
		}
		return left
	}
}

// parseAnd handles -a and && combinators
func (t *testParser) parseAnd() *ast.TestNode {
	left := t.parsePrimary()
	for {
		w, ok := t.cur()
		if !ok || t.failed {
			return left
		}
		if w == "-a" && t.pos+1 < len(t.words) || (t.extended && w == "&&") {
			// -a is also the file-exists unary; treat it as a
			// combinator only between operands
			if w == "-a" && t.pos == 0 {
				return left
			}
			t.pos++
			right := t.parsePrimary()
			left = &ast.TestNode{Kind: ast.TestAnd, Left: left, Right: right}
			continue
		}
		return left
	}
}

func (t *testParser) parsePrimary() *ast.TestNode {
	w, ok := t.cur()
	if !ok {
		t.failed = true
		return nil
	}

	if w == "!" {
		t.pos++
		return &ast.TestNode{Kind: ast.TestNot, Left: t.parsePrimary()}
	}

	if testUnaryOps[w] && t.pos+1 < len(t.words) {
		next := t.words[t.pos+1]
		// unary only when the operand is not itself an operator
		if !testBinaryOps[next] {
			t.pos += 2
			return &ast.TestNode{
				Kind: ast.TestUnary,
				Op:   w,
				Left: &ast.TestNode{Kind: ast.TestWord, Word: next},
			}
		}
	}

	// word [binop word]
	operand := &ast.TestNode{Kind: ast.TestWord, Word: w}
	t.pos++
	if op, ok := t.cur(); ok && testBinaryOps[op] {
		t.pos++
		rhs, ok := t.cur()
		if !ok {
			t.failed = true
			return nil
		}
		t.pos++
		return &ast.TestNode{
			Kind:  ast.TestBinary,
			Op:    op,
			Left:  operand,
			Right: &ast.TestNode{Kind: ast.TestWord, Word: rhs},
		}
	}
	return operand
}
