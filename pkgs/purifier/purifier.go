package purifier

import (
	"path/filepath"
	"strings"

	"github.com/shellpure/shellpure/pkgs/analyzer"
	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/dockerfile"
	"github.com/shellpure/shellpure/pkgs/errors"
	"github.com/shellpure/shellpure/pkgs/generator"
	"github.com/shellpure/shellpure/pkgs/makefile"
	"github.com/shellpure/shellpure/pkgs/parser"
)

// Config bundles the knobs of the full pipeline
type Config struct {
	Analyzer analyzer.Config
	Plan     Options
	Generate generator.Options
}

// DefaultConfig runs every detection and applies only safe edits
func DefaultConfig() Config {
	return Config{
		Analyzer: analyzer.DefaultConfig(),
		Generate: generator.DefaultOptions(),
	}
}

// Result is the outcome of one purification run
type Result struct {
	Name    string
	Dialect ast.Dialect

	Original *ast.Script
	Purified *ast.Script
	Output   string // rendered purified source

	Issues []analyzer.Issue
	Plans  []Transformation

	Applied int // safe edits that landed
	Manual  int // findings left for a human
}

// Changed reports whether any edit landed
func (r *Result) Changed() bool { return r.Applied > 0 }

// DetectDialect guesses the dialect from a file name
func DetectDialect(name string) ast.Dialect {
	base := filepath.Base(name)
	switch {
	case base == "Makefile" || base == "makefile" || base == "GNUmakefile" ||
		strings.HasSuffix(base, ".mk"):
		return ast.Makefile
	case base == "Dockerfile" || base == "Containerfile" ||
		strings.HasPrefix(base, "Dockerfile."):
		return ast.Dockerfile
	}
	return ast.Shell
}

func parseDialect(source, name string, dialect ast.Dialect) (*ast.Script, error) {
	switch dialect {
	case ast.Makefile:
		return makefile.Parse(source, name)
	case ast.Dockerfile:
		return dockerfile.Parse(source, name)
	case ast.Shell:
		return parser.Parse(source, name)
	}
	return nil, errors.Newf(errors.ErrUnknownDialect, "unknown dialect %v", dialect)
}

// Purify runs the full pipeline over one source file: parse, analyze,
// plan, apply safe edits to a clone, render. The input tree is never
// mutated, so Original and Purified can be diffed.
func Purify(source, name string, dialect ast.Dialect, cfg Config) (*Result, error) {
	script, err := parseDialect(source, name, dialect)
	if err != nil {
		return nil, err
	}

	issues := analyzer.Analyze(script, cfg.Analyzer)
	plans := Plan(issues, cfg.Plan)

	purified := script.Clone()
	applied := apply(purified, plans)

	out, err := generator.Render(purified, cfg.Generate)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGeneration, "rendering purified output", err)
	}

	manual := 0
	for _, p := range plans {
		if !p.Applied {
			manual++
		}
	}

	return &Result{
		Name:     name,
		Dialect:  dialect,
		Original: script,
		Purified: purified,
		Output:   out,
		Issues:   issues,
		Plans:    plans,
		Applied:  applied,
		Manual:   manual,
	}, nil
}
