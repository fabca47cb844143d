// Package purifier turns analyzer findings into tree edits. Safe
// transformations preserve the script's success-path behavior; the
// rest become annotated manual fixes in the report.
package purifier

import (
	"github.com/shellpure/shellpure/pkgs/ast"
)

// Kind enumerates the edit shapes the rewriter knows how to apply
type Kind int

const (
	// InsertFlag adds a short option to a command's argument list
	InsertFlag Kind = iota
	// WrapFunction wraps a Makefile function call in another call
	WrapFunction
	// ReplaceWord swaps one word of a command or recipe for another
	ReplaceWord
	// InsertStatement prepends a statement to the script
	InsertStatement
	// AnnotateOnly records a manual fix without touching the tree
	AnnotateOnly
)

var kindNames = [...]string{
	InsertFlag:      "insert-flag",
	WrapFunction:    "wrap-function",
	ReplaceWord:     "replace-word",
	InsertStatement: "insert-statement",
	AnnotateOnly:    "annotate-only",
}

func (k Kind) String() string { return kindNames[k] }

// Transformation is one planned edit, anchored to the issue's span.
// The zero-value fields that a Kind does not use stay empty.
type Transformation struct {
	Rule string
	Kind Kind
	Span ast.Span

	Flag    string // InsertFlag: option to add, e.g. "-p"
	Target  string // WrapFunction: inner call name; ReplaceWord: word to replace
	Wrapper string // WrapFunction: wrapping call name
	NewWord string // ReplaceWord: replacement
	Text    string // InsertStatement: raw statement text

	// Safe transformations apply automatically. Unsafe ones are
	// reported as manual fixes and never touch the tree.
	Safe        bool
	Description string

	// Applied is set by the rewriter once the edit has landed
	Applied bool
}
