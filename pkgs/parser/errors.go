package parser

import (
	"fmt"

	"github.com/shellpure/shellpure/pkgs/errors"
	"github.com/shellpure/shellpure/pkgs/lexer"
)

// ParseError is the shared dialect-independent syntax error type.
type ParseError = errors.ParseError

// newParseError creates a ParseError at the given token, pulling the
// offending source line for context.
func (p *Parser) newParseError(tok lexer.Token, format string, args ...interface{}) *ParseError {
	var context string
	if tok.Pos.Line > 0 && tok.Pos.Line <= len(p.lines) {
		context = p.lines[tok.Pos.Line-1]
	}
	return &ParseError{
		File:    p.name,
		Line:    tok.Pos.Line,
		Column:  tok.Pos.Column,
		Context: context,
		Message: fmt.Sprintf(format, args...),
	}
}

// expectedError reports an unexpected token in terms of what the
// grammar wanted.
func (p *Parser) expectedError(expected string, got lexer.Token) *ParseError {
	found := got.Type.String()
	if got.Type == lexer.WORD || got.Type == lexer.ASSIGNMENT {
		found = fmt.Sprintf("%q", got.Value)
	} else if got.Type == lexer.EOF {
		found = "end of input"
	}
	return p.newParseError(got, "expected %s, got %s", expected, found)
}
