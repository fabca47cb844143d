package generator

import (
	"strings"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

type shellWriter struct {
	sb       strings.Builder
	opts     Options
	depth    int
	heredocs []*ast.Redirect
}

func renderShell(script *ast.Script, opts Options) (string, error) {
	w := &shellWriter{opts: opts}
	if err := w.stmts(script.Statements); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}

func (w *shellWriter) line(text string) {
	for i := 0; i < w.depth; i++ {
		w.sb.WriteString(w.opts.Indent)
	}
	w.sb.WriteString(w.wrap(text))
	w.sb.WriteByte('\n')
	w.flushHeredocs()
}

// wrap breaks a long command line at argument boundaries. Only plain
// space-separated tails are wrapped; anything subtler stays on one line.
func (w *shellWriter) wrap(text string) string {
	max := w.opts.MaxLineLength
	indentWidth := w.depth * len(w.opts.Indent)
	if max <= 0 || indentWidth+len(text) <= max || strings.ContainsAny(text, "'\"`#") {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return text
	}
	var out strings.Builder
	lineLen := indentWidth
	for i, f := range fields {
		if i == 0 {
			out.WriteString(f)
			lineLen += len(f)
			continue
		}
		if lineLen+1+len(f)+2 > max {
			out.WriteString(" \\\n")
			out.WriteString(w.opts.Indent)
			lineLen = len(w.opts.Indent)
		} else {
			out.WriteByte(' ')
			lineLen++
		}
		out.WriteString(f)
		lineLen += len(f)
	}
	return out.String()
}

func (w *shellWriter) flushHeredocs() {
	for _, r := range w.heredocs {
		w.sb.WriteString(r.HeredocBody)
		if r.HeredocBody != "" && !strings.HasSuffix(r.HeredocBody, "\n") {
			w.sb.WriteByte('\n')
		}
		w.sb.WriteString(stripDelimQuotes(word(r.Target, w.opts)))
		w.sb.WriteByte('\n')
	}
	w.heredocs = w.heredocs[:0]
}

func stripDelimQuotes(delim string) string {
	if len(delim) >= 2 {
		if c := delim[0]; (c == '\'' || c == '"') && delim[len(delim)-1] == c {
			return delim[1 : len(delim)-1]
		}
	}
	return delim
}

func (w *shellWriter) stmts(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := w.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *shellWriter) stmt(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.Comment:
		w.line("#" + n.Text)
	case *ast.Blank:
		count := n.Count
		if w.opts.CollapseBlankLines && !w.opts.PreserveFormatting && count > 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			w.sb.WriteByte('\n')
		}
	case *ast.If:
		return w.ifStmt(n)
	case *ast.While:
		return w.whileStmt(n)
	case *ast.For:
		w.line("for " + n.Var + " in " + argWords(n.Items, w.opts) + "; do")
		if err := w.block(n.Body); err != nil {
			return err
		}
		w.line("done")
	case *ast.CStyleFor:
		w.line("for ((" + n.Init + "; " + n.Cond + "; " + n.Incr + ")); do")
		if err := w.block(n.Body); err != nil {
			return err
		}
		w.line("done")
	case *ast.Case:
		return w.caseStmt(n)
	case *ast.Select:
		return w.selectStmt(n)
	case *ast.FunctionDef:
		return w.funcDef(n)
	case *ast.Group:
		opener, closer := "{", "}"
		if n.Subshell {
			opener, closer = "(", ")"
		}
		w.line(opener)
		if err := w.block(n.Body); err != nil {
			return err
		}
		w.line(closer)
	default:
		text, err := w.inline(s)
		if err != nil {
			return err
		}
		w.line(text)
	}
	return nil
}

func (w *shellWriter) block(stmts []ast.Statement) error {
	w.depth++
	err := w.stmts(stmts)
	w.depth--
	return err
}

func (w *shellWriter) ifStmt(n *ast.If) error {
	cond, err := w.inlineList(n.Cond)
	if err != nil {
		return err
	}
	w.line("if " + cond + "; then")
	if err := w.block(n.Then); err != nil {
		return err
	}
	for _, elif := range n.Elifs {
		cond, err = w.inlineList(elif.Cond)
		if err != nil {
			return err
		}
		w.line("elif " + cond + "; then")
		if err := w.block(elif.Body); err != nil {
			return err
		}
	}
	if len(n.Else) > 0 {
		w.line("else")
		if err := w.block(n.Else); err != nil {
			return err
		}
	}
	w.line("fi")
	return nil
}

func (w *shellWriter) whileStmt(n *ast.While) error {
	kw := "while"
	if n.Until {
		kw = "until"
	}
	cond, err := w.inlineList(n.Cond)
	if err != nil {
		return err
	}
	w.line(kw + " " + cond + "; do")
	if err := w.block(n.Body); err != nil {
		return err
	}
	w.line("done")
	return nil
}

func (w *shellWriter) caseStmt(n *ast.Case) error {
	w.line("case " + word(n.Word, w.opts) + " in")
	w.depth++
	for _, arm := range n.Arms {
		patterns := make([]string, len(arm.Patterns))
		for i, p := range arm.Patterns {
			patterns[i] = argWord(p, w.opts)
		}
		w.line(strings.Join(patterns, "|") + ")")
		if err := w.block(arm.Body); err != nil {
			return err
		}
		w.depth++
		w.line(arm.Terminator.String())
		w.depth--
	}
	w.depth--
	w.line("esac")
	return nil
}

// selectStmt lowers select to an explicit menu loop. The interactive
// builtin depends on PS3 and REPLY state that the rest of the pipeline
// cannot reason about, so the loop is spelled out.
func (w *shellWriter) selectStmt(n *ast.Select) error {
	w.line("while true; do")
	w.depth++
	w.line("printf '%s\\n' " + argWords(n.Items, w.opts))
	w.line("read -r " + n.Var + " || break")
	err := w.stmts(n.Body)
	w.depth--
	if err != nil {
		return err
	}
	w.line("done")
	return nil
}

func (w *shellWriter) funcDef(n *ast.FunctionDef) error {
	if g, ok := n.Body.(*ast.Group); ok && !g.Subshell {
		w.line(n.Name + "() {")
		if err := w.block(g.Body); err != nil {
			return err
		}
		w.line("}")
		return nil
	}
	body, err := w.inline(n.Body)
	if err != nil {
		return err
	}
	w.line(n.Name + "() " + body)
	return nil
}

// inlineList renders a statement list on one line, joined by ;
func (w *shellWriter) inlineList(stmts []ast.Statement) (string, error) {
	parts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if _, ok := s.(*ast.Blank); ok {
			continue
		}
		text, err := w.inline(s)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "; "), nil
}

// inline renders one flat statement as text. Compound statements reach
// here only from condition positions and render in their short form.
func (w *shellWriter) inline(s ast.Statement) (string, error) {
	switch n := s.(type) {
	case *ast.SimpleCommand:
		return w.command(n), nil
	case *ast.Pipeline:
		parts := make([]string, len(n.Commands))
		for i, c := range n.Commands {
			text, err := w.inline(c)
			if err != nil {
				return "", err
			}
			parts[i] = text
		}
		return strings.Join(parts, " | "), nil
	case *ast.AndOr:
		left, err := w.inline(n.Left)
		if err != nil {
			return "", err
		}
		right, err := w.inline(n.Right)
		if err != nil {
			return "", err
		}
		return left + " " + n.Op + " " + right, nil
	case *ast.Negated:
		inner, err := w.inline(n.Cmd)
		if err != nil {
			return "", err
		}
		return "! " + inner, nil
	case *ast.Assignment:
		return assignText(n, w.opts), nil
	case *ast.Return:
		if n.Code == nil {
			return "return", nil
		}
		return "return " + word(n.Code, w.opts), nil
	case *ast.Exit:
		if n.Code == nil {
			return "exit", nil
		}
		return "exit " + word(n.Code, w.opts), nil
	case *ast.Coproc:
		inner, err := w.inline(n.Cmd)
		if err != nil {
			return "", err
		}
		if n.Name != "" {
			return "coproc " + n.Name + " " + inner, nil
		}
		return "coproc " + inner, nil
	case *ast.Group:
		body, err := w.inlineList(n.Body)
		if err != nil {
			return "", err
		}
		if n.Subshell {
			return "(" + body + ")", nil
		}
		return "{ " + body + "; }", nil
	}
	return "", errors.Newf(errors.ErrGeneration, "cannot render %T inline", s)
}

func (w *shellWriter) command(c *ast.SimpleCommand) string {
	parts := make([]string, 0, len(c.Args)+len(c.Prefix)+2)
	for _, a := range c.Prefix {
		parts = append(parts, assignText(a, w.opts))
	}
	if c.Name != nil {
		name := word(c.Name, w.opts)
		// [ cond ] carries the brackets on the test expression
		if len(c.Args) == 1 {
			if t, ok := c.Args[0].(*ast.TestExpr); ok && (name == "[" || name == "[[") {
				return t.String()
			}
		}
		parts = append(parts, name)
	}
	for _, a := range c.Args {
		parts = append(parts, argWord(a, w.opts))
	}
	for _, r := range c.Redirects {
		parts = append(parts, w.redirect(r))
	}
	return strings.Join(parts, " ")
}

func (w *shellWriter) redirect(r *ast.Redirect) string {
	target := word(r.Target, w.opts)
	switch r.Op {
	case ast.RedirHeredoc, ast.RedirHeredocStrip:
		w.heredocs = append(w.heredocs, r)
		return r.FD + r.Op.String() + target
	case ast.RedirDupOut, ast.RedirDupIn:
		return r.FD + r.Op.String() + target
	}
	if r.FD != "" {
		return r.FD + r.Op.String() + target
	}
	return r.Op.String() + " " + target
}

func assignText(a *ast.Assignment, opts Options) string {
	var sb strings.Builder
	if a.Exported {
		sb.WriteString("export ")
	}
	sb.WriteString(a.Name)
	if a.Index != "" {
		sb.WriteString("[" + a.Index + "]")
	}
	if a.Append {
		sb.WriteByte('+')
	}
	sb.WriteByte('=')
	if a.Value != nil {
		sb.WriteString(word(a.Value, opts))
	}
	return sb.String()
}

func words(exprs []ast.Expression, opts Options) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = word(e, opts)
	}
	return strings.Join(parts, " ")
}

// reservedWords would change the parse if they reappeared bare in
// argument position
var reservedWords = map[string]bool{
	"if": true, "then": true, "elif": true, "else": true, "fi": true,
	"for": true, "while": true, "until": true, "do": true, "done": true,
	"case": true, "esac": true, "in": true, "select": true,
	"function": true, "coproc": true,
}

// argWord renders an expression in argument position; bare reserved
// words come out quoted so the text re-parses to the same tree
func argWord(e ast.Expression, opts Options) string {
	if lit, ok := e.(*ast.Literal); ok && reservedWords[lit.Raw] {
		return "'" + lit.Raw + "'"
	}
	return word(e, opts)
}

func argWords(exprs []ast.Expression, opts Options) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = argWord(e, opts)
	}
	return strings.Join(parts, " ")
}

// word renders one expression. Empty literals come out as "" so the
// argument survives re-parsing.
func word(e ast.Expression, opts Options) string {
	switch n := e.(type) {
	case *ast.Literal:
		if n.Raw == "" {
			return `""`
		}
		return n.Raw
	case *ast.VarRef:
		return n.Raw
	case *ast.Glob:
		return n.Raw
	case *ast.Arithmetic:
		return "$((" + n.Raw + "))"
	case *ast.CommandSub:
		return commandSub(n, opts)
	case *ast.TestExpr:
		return n.String()
	case *ast.ArrayLiteral:
		return "(" + words(n.Elements, opts) + ")"
	}
	return ""
}

func commandSub(n *ast.CommandSub, opts Options) string {
	inner := n.Raw
	if inner == "" && n.Body != nil {
		// the body was rewritten; rebuild the inner text from it
		sub := &shellWriter{opts: opts}
		if text, err := sub.inlineList(n.Body.Statements); err == nil {
			inner = text
		}
	}
	if n.Backtick && opts.PreserveFormatting {
		return "`" + inner + "`"
	}
	return "$(" + inner + ")"
}
