package parser

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/lexer"
)

// wordExpr classifies one word token into its expression variant.
// Classification is structural: the whole word must be the construct,
// otherwise it stays a literal (with expansion metadata preserved).
func (p *Parser) wordExpr(tok lexer.Token) ast.Expression {
	raw := tok.Value
	span := spanOf(tok)

	switch {
	case strings.HasPrefix(raw, "$((") && strings.HasSuffix(raw, "))") && balancedWhole(raw, 3, 2):
		inner := raw[3 : len(raw)-2]
		return &ast.Arithmetic{Raw: inner, Expr: parseArith(inner), Span: span}

	case strings.HasPrefix(raw, "$(") && strings.HasSuffix(raw, ")") && balancedWhole(raw, 2, 1):
		inner := raw[2 : len(raw)-1]
		return &ast.CommandSub{Raw: inner, Body: p.parseSub(inner), Span: span}

	case len(raw) >= 2 && raw[0] == '`' && raw[len(raw)-1] == '`':
		inner := raw[1 : len(raw)-1]
		return &ast.CommandSub{Raw: inner, Backtick: true, Body: p.parseSub(inner), Span: span}

	case isVarRefWord(raw):
		name, braced := varRefName(raw)
		return &ast.VarRef{Name: name, Raw: raw, Braced: braced, Span: span}

	case hasUnquotedGlob(raw):
		return &ast.Glob{Raw: raw, Span: span}
	}

	return &ast.Literal{
		Raw:          raw,
		Quote:        quoteKindOf(raw),
		HasExpansion: tok.HasExpansion,
		Span:         span,
	}
}

// parseSub parses command-substitution bodies recursively, bounded by
// maxSubstitutionDepth. A body that does not parse yields a nil Script;
// the raw text is still carried on the node.
func (p *Parser) parseSub(inner string) *ast.Script {
	if p.depth >= maxSubstitutionDepth {
		return nil
	}
	sub := newParser(inner, p.name)
	sub.depth = p.depth + 1

	stmts, err := sub.parseList(nil)
	if err != nil || sub.cur().Type != lexer.EOF {
		return nil
	}
	return &ast.Script{
		Name:       p.name,
		Dialect:    ast.Shell,
		Statements: stmts,
		LineCount:  len(sub.lines),
	}
}

// balancedWhole reports whether the bracketed construct starting at
// openLen spans the entire word, so a$(b) is not mistaken for a
// substitution.
func balancedWhole(raw string, openLen, closeLen int) bool {
	depth := 1
	i := openLen
	for i < len(raw) {
		switch raw[i] {
		case '\\':
			i++
		case '\'':
			for i++; i < len(raw) && raw[i] != '\''; i++ {
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i >= len(raw)-closeLen
			}
		}
		i++
	}
	return false
}

// isVarRefWord reports whether raw is exactly one variable reference
func isVarRefWord(raw string) bool {
	if len(raw) < 2 || raw[0] != '$' {
		return false
	}
	if raw[1] == '{' {
		return raw[len(raw)-1] == '}' && strings.IndexByte(raw[2:len(raw)-1], '{') < 0
	}
	rest := raw[1:]
	if len(rest) == 1 && strings.ContainsAny(rest, "?#$!@*-0123456789") {
		return true
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// varRefName extracts the variable name from $NAME or ${NAME...},
// stripping parameter-expansion modifiers.
func varRefName(raw string) (name string, braced bool) {
	if strings.HasPrefix(raw, "${") {
		inner := raw[2 : len(raw)-1]
		for i := 0; i < len(inner); i++ {
			c := inner[i]
			if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
				return inner[:i], true
			}
		}
		return inner, true
	}
	return raw[1:], false
}

// hasUnquotedGlob reports whether raw contains glob characters outside
// quotes
func hasUnquotedGlob(raw string) bool {
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '\\':
			i++
		case '\'':
			for i++; i < len(raw) && raw[i] != '\''; i++ {
			}
		case '"':
			for i++; i < len(raw) && raw[i] != '"'; i++ {
				if raw[i] == '\\' {
					i++
				}
			}
		case '*', '?':
			return true
		case '[':
			// a [ needs a matching ] to glob
			if strings.IndexByte(raw[i+1:], ']') >= 0 {
				return true
			}
		}
		i++
	}
	return false
}

// quoteKindOf classifies how a whole word was quoted
func quoteKindOf(raw string) ast.QuoteKind {
	switch {
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		return ast.SingleQuoted
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return ast.DoubleQuoted
	case len(raw) >= 3 && strings.HasPrefix(raw, "$'") && raw[len(raw)-1] == '\'':
		return ast.AnsiQuoted
	}
	return ast.Unquoted
}
