package generator

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

func renderMakefile(script *ast.Script, opts Options) (string, error) {
	var sb strings.Builder
	if err := makeStmts(&sb, script.Statements, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func makeStmts(sb *strings.Builder, stmts []ast.Statement, opts Options) error {
	for _, s := range stmts {
		if err := makeStmt(sb, s, opts); err != nil {
			return err
		}
	}
	return nil
}

func makeStmt(sb *strings.Builder, s ast.Statement, opts Options) error {
	switch n := s.(type) {
	case *ast.Comment:
		sb.WriteString("#" + n.Text + "\n")
	case *ast.Blank:
		count := n.Count
		if opts.CollapseBlankLines && !opts.PreserveFormatting && count > 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			sb.WriteByte('\n')
		}
	case *ast.MakeAssign:
		if n.Export {
			sb.WriteString("export ")
		}
		sb.WriteString(n.Name + " " + n.Op.String() + " " + n.Value + "\n")
	case *ast.Rule:
		writeRule(sb, n)
	case *ast.Include:
		kw := "include"
		if n.Optional {
			kw = "-include"
		}
		sb.WriteString(kw + " " + strings.Join(n.Paths, " ") + "\n")
	case *ast.MakeConditional:
		return writeCond(sb, n, opts)
	case *ast.Directive:
		writeDirective(sb, n)
	default:
		return errors.Newf(errors.ErrGeneration, "cannot render %T in a Makefile", s)
	}
	return nil
}

// Recipes keep their tab prefix; that is syntax, not formatting.
func writeRule(sb *strings.Builder, r *ast.Rule) {
	sep := ":"
	if r.DoubleColon {
		sep = "::"
	}
	sb.WriteString(strings.Join(r.Targets, " ") + sep)
	if len(r.Prereqs) > 0 {
		sb.WriteString(" " + strings.Join(r.Prereqs, " "))
	}
	if len(r.OrderOnly) > 0 {
		sb.WriteString(" | " + strings.Join(r.OrderOnly, " "))
	}
	sb.WriteByte('\n')
	for _, line := range r.Recipe {
		sb.WriteByte('\t')
		if line.Silent {
			sb.WriteByte('@')
		}
		if line.IgnoreError {
			sb.WriteByte('-')
		}
		sb.WriteString(line.Text + "\n")
	}
}

func writeCond(sb *strings.Builder, c *ast.MakeConditional, opts Options) error {
	switch c.Kind {
	case ast.CondIfdef, ast.CondIfndef:
		sb.WriteString(c.Kind.String() + " " + c.Arg1 + "\n")
	default:
		sb.WriteString(c.Kind.String() + " (" + c.Arg1 + "," + c.Arg2 + ")\n")
	}
	if err := makeStmts(sb, c.Then, opts); err != nil {
		return err
	}
	if len(c.Else) > 0 {
		sb.WriteString("else\n")
		if err := makeStmts(sb, c.Else, opts); err != nil {
			return err
		}
	}
	sb.WriteString("endif\n")
	return nil
}

func writeDirective(sb *strings.Builder, d *ast.Directive) {
	sb.WriteString(d.Name)
	if len(d.Args) > 0 {
		sb.WriteString(" " + strings.Join(d.Args, " "))
	}
	sb.WriteByte('\n')
	if d.Name == "define" {
		for _, line := range d.Body {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("endef\n")
	}
}
