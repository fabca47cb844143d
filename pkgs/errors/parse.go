package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a syntax error in any supported dialect. A
// parse error is fatal for its input: purification never proceeds on a
// tree that could not be built.
type ParseError struct {
	File    string // source name, empty for stdin/string input
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // what grammar expectation went unmet
	Context string // the offending source line
}

// Error formats the parse error with visual context
func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	if e.Context == "" {
		return fmt.Sprintf("%s: %s", loc, e.Message)
	}

	// arrow pointing at the error position
	col := e.Column - 1
	if col < 0 {
		col = 0
	}
	pointer := strings.Repeat(" ", col) + "^"

	return fmt.Sprintf("%s: %s\n%s\n%s", loc, e.Message, e.Context, pointer)
}
