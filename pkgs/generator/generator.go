// Package generator renders purified trees back to source text. The
// output is normalized rather than byte-preserving: indentation, line
// breaks and statement separators follow house style, while words keep
// their original spelling.
package generator

import (
	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

// Options controls rendering
type Options struct {
	// Indent is the unit of indentation inside shell constructs
	Indent string

	// MaxLineLength wraps longer command lines with backslash
	// continuations at argument boundaries. Zero disables wrapping.
	MaxLineLength int

	// CollapseBlankLines reduces runs of blank lines to one
	CollapseBlankLines bool

	// ConsolidateStatements merges consecutive shell-form RUN
	// instructions in Dockerfiles into one layer
	ConsolidateStatements bool

	// PreserveFormatting keeps backtick substitutions and blank-line
	// runs exactly as written
	PreserveFormatting bool
}

// DefaultOptions match the documented defaults
func DefaultOptions() Options {
	return Options{
		Indent:             "    ",
		CollapseBlankLines: true,
	}
}

// Render produces source text for the script's dialect. The returned
// text always ends with a newline.
func Render(script *ast.Script, opts Options) (string, error) {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	switch script.Dialect {
	case ast.Shell:
		return renderShell(script, opts)
	case ast.Makefile:
		return renderMakefile(script, opts)
	case ast.Dockerfile:
		return renderDockerfile(script, opts)
	}
	return "", errors.Newf(errors.ErrGeneration, "unknown dialect %v", script.Dialect)
}
