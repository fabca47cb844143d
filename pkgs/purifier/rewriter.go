package purifier

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
)

// apply lands every safe transformation on the script, which must be a
// clone the caller owns. Plans are updated in place: Applied marks the
// ones that found their node.
func apply(script *ast.Script, plans []Transformation) int {
	applied := 0
	for i := range plans {
		t := &plans[i]
		if !t.Safe || t.Kind == AnnotateOnly {
			continue
		}
		if applyOne(script, t) {
			t.Applied = true
			applied++
		}
	}
	return applied
}

func applyOne(script *ast.Script, t *Transformation) bool {
	if t.Kind == InsertStatement {
		script.Statements = append([]ast.Statement{guardStatement(t)}, script.Statements...)
		return true
	}
	return rewriteStmts(script.Statements, t)
}

// guardStatement builds the prepended statement as a tree node, so the
// generator renders it like any other command.
func guardStatement(t *Transformation) ast.Statement {
	fields := strings.Fields(t.Text)
	cmd := &ast.SimpleCommand{Span: ast.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}}
	if len(fields) > 0 {
		cmd.Name = &ast.Literal{Raw: fields[0]}
		for _, f := range fields[1:] {
			cmd.Args = append(cmd.Args, &ast.Literal{Raw: f})
		}
	}
	return cmd
}

func rewriteStmts(stmts []ast.Statement, t *Transformation) bool {
	for _, s := range stmts {
		if rewriteStmt(s, t) {
			return true
		}
	}
	return false
}

func rewriteStmt(s ast.Statement, t *Transformation) bool {
	switch n := s.(type) {
	case *ast.SimpleCommand:
		if n.Span == t.Span && editCommand(n, t) {
			return true
		}
		return rewriteExprs(n.Args, t)
	case *ast.Pipeline:
		return rewriteStmts(n.Commands, t)
	case *ast.AndOr:
		return rewriteStmt(n.Left, t) || rewriteStmt(n.Right, t)
	case *ast.If:
		if rewriteStmts(n.Cond, t) || rewriteStmts(n.Then, t) || rewriteStmts(n.Else, t) {
			return true
		}
		for i := range n.Elifs {
			if rewriteStmts(n.Elifs[i].Cond, t) || rewriteStmts(n.Elifs[i].Body, t) {
				return true
			}
		}
		return false
	case *ast.While:
		return rewriteStmts(n.Cond, t) || rewriteStmts(n.Body, t)
	case *ast.For:
		return rewriteStmts(n.Body, t)
	case *ast.CStyleFor:
		return rewriteStmts(n.Body, t)
	case *ast.Case:
		for i := range n.Arms {
			if rewriteStmts(n.Arms[i].Body, t) {
				return true
			}
		}
		return false
	case *ast.Select:
		return rewriteStmts(n.Body, t)
	case *ast.FunctionDef:
		return rewriteStmt(n.Body, t)
	case *ast.Group:
		return rewriteStmts(n.Body, t)
	case *ast.Negated:
		return rewriteStmt(n.Cmd, t)
	case *ast.Coproc:
		return rewriteStmt(n.Cmd, t)
	case *ast.Assignment:
		if n.Value != nil {
			return rewriteExprs([]ast.Expression{n.Value}, t)
		}
		return false

	case *ast.MakeAssign:
		if n.Span == t.Span && t.Kind == WrapFunction {
			wrapped := wrapUnsorted(n.Value, t.Target, t.Wrapper)
			if wrapped != n.Value {
				n.Value = wrapped
				return true
			}
		}
		return false
	case *ast.Rule:
		if n.Span == t.Span && t.Kind == WrapFunction {
			changed := false
			for i, p := range n.Prereqs {
				if w := wrapUnsorted(p, t.Target, t.Wrapper); w != p {
					n.Prereqs[i] = w
					changed = true
				}
			}
			if changed {
				return true
			}
		}
		for _, line := range n.Recipe {
			if line.Span == t.Span && editRecipeLine(line, t) {
				return true
			}
		}
		return false
	case *ast.MakeConditional:
		return rewriteStmts(n.Then, t) || rewriteStmts(n.Else, t)

	case *ast.DockerInstruction:
		if n.Shell != nil && rewriteStmts(n.Shell.Statements, t) {
			// shell-form RUN renders from the parsed body
			n.Args = ""
			return true
		}
		return false
	}
	return false
}

func rewriteExprs(exprs []ast.Expression, t *Transformation) bool {
	for _, e := range exprs {
		if sub, ok := e.(*ast.CommandSub); ok && sub.Body != nil {
			if rewriteStmts(sub.Body.Statements, t) {
				sub.Raw = "" // rebuilt from the body at render time
				return true
			}
		}
	}
	return false
}

func editCommand(cmd *ast.SimpleCommand, t *Transformation) bool {
	switch t.Kind {
	case InsertFlag:
		// extend an existing short-option cluster (ln -s to ln -sf)
		// before falling back to a new leading argument; a cluster
		// holding an option that consumes the next word stays alone,
		// so mkdir -m 700 never becomes mkdir -mp 700
		if len(t.Flag) == 2 && t.Flag[0] == '-' {
			for _, a := range cmd.Args {
				lit, ok := a.(*ast.Literal)
				if !ok {
					continue
				}
				if lit.Raw == "--" {
					break
				}
				if len(lit.Raw) > 1 && lit.Raw[0] == '-' && lit.Raw[1] != '-' && bareFlagCluster(lit.Raw) {
					lit.Raw += t.Flag[1:]
					return true
				}
			}
		}
		args := make([]ast.Expression, 0, len(cmd.Args)+1)
		args = append(args, &ast.Literal{Raw: t.Flag, Span: t.Span})
		args = append(args, cmd.Args...)
		cmd.Args = args
		return true
	case ReplaceWord:
		if cmd.NameText() != t.Target {
			return false
		}
		cmd.Name = &ast.Literal{Raw: t.NewWord, Span: cmd.Name.GetSpan()}
		return true
	}
	return false
}

// flagsWithoutArg lists the short options of the commands we insert
// flags into that never consume the following word
var flagsWithoutArg = map[byte]bool{
	'f': true, 'i': true, 'n': true, 'p': true, 'r': true, 'R': true,
	's': true, 'T': true, 'v': true,
}

func bareFlagCluster(raw string) bool {
	for i := 1; i < len(raw); i++ {
		if !flagsWithoutArg[raw[i]] {
			return false
		}
	}
	return true
}

func editRecipeLine(line *ast.RecipeLine, t *Transformation) bool {
	fields := strings.Fields(line.Text)
	if len(fields) == 0 {
		return false
	}
	switch t.Kind {
	case InsertFlag:
		rest := strings.TrimSpace(strings.TrimPrefix(line.Text, fields[0]))
		line.Text = fields[0] + " " + t.Flag
		if rest != "" {
			line.Text += " " + rest
		}
		return true
	case ReplaceWord:
		if fields[0] != t.Target {
			return false
		}
		line.Text = t.NewWord + strings.TrimPrefix(line.Text, fields[0])
		return true
	}
	return false
}

// wrapUnsorted wraps every $(target ...) call that has no enclosing
// $(wrapper ...) in Makefile text. Unchanged text means nothing matched.
func wrapUnsorted(text, target, wrapper string) string {
	for {
		start, end, ok := findUnwrapped(text, target, wrapper)
		if !ok {
			return text
		}
		text = text[:start] + "$(" + wrapper + " " + text[start:end] + ")" + text[end:]
	}
}

// findUnwrapped locates the first $(target ...) call not already inside
// a $(wrapper ...) call and returns its byte span.
func findUnwrapped(text, target, wrapper string) (start, end int, ok bool) {
	var stack []string
	i := 0
	for i < len(text) {
		switch {
		case text[i] == '$' && i+1 < len(text) && text[i+1] == '(':
			j := i + 2
			for j < len(text) && isFuncNameChar(text[j]) {
				j++
			}
			name := text[i+2 : j]
			if name == target && !stackHas(stack, wrapper) {
				if stop := matchParen(text, j); stop > 0 {
					return i, stop, true
				}
			}
			stack = append(stack, name)
			i = j
		case text[i] == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			i++
		default:
			i++
		}
	}
	return 0, 0, false
}

// matchParen returns the index one past the ) matching the $( whose
// name ends at from, or 0 when unbalanced
func matchParen(text string, from int) int {
	depth := 1
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return 0
}

func isFuncNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '_'
}

func stackHas(stack []string, want string) bool {
	for _, s := range stack {
		if s == want {
			return true
		}
	}
	return false
}
