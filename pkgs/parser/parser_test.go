package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/shellpure/shellpure/pkgs/ast"
)

// parseOne parses source and returns the single top-level statement.
func parseOne(t *testing.T, source string) ast.Statement {
	t.Helper()
	script, err := Parse(source, "test.sh")
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	var stmts []ast.Statement
	for _, s := range script.Statements {
		switch s.(type) {
		case *ast.Comment, *ast.Blank:
		default:
			stmts = append(stmts, s)
		}
	}
	if len(stmts) != 1 {
		t.Fatalf("Parse(%q): expected 1 statement, got %d", source, len(stmts))
	}
	return stmts[0]
}

func TestSimpleCommandParsing(t *testing.T) {
	cmd, ok := parseOne(t, "gcc -o app main.c\n").(*ast.SimpleCommand)
	if !ok {
		t.Fatal("expected SimpleCommand")
	}
	if cmd.NameText() != "gcc" {
		t.Errorf("name = %q", cmd.NameText())
	}
	if len(cmd.Args) != 3 {
		t.Fatalf("args = %d", len(cmd.Args))
	}
	if cmd.Args[0].String() != "-o" || cmd.Args[2].String() != "main.c" {
		t.Errorf("args = %v", cmd.Args)
	}
}

func TestAssignmentPrefix(t *testing.T) {
	cmd, ok := parseOne(t, "CC=clang CFLAGS=-O2 make all").(*ast.SimpleCommand)
	if !ok {
		t.Fatal("expected SimpleCommand")
	}
	if len(cmd.Prefix) != 2 {
		t.Fatalf("prefix count = %d", len(cmd.Prefix))
	}
	if cmd.Prefix[0].Name != "CC" || cmd.Prefix[1].Name != "CFLAGS" {
		t.Errorf("prefix = %v, %v", cmd.Prefix[0], cmd.Prefix[1])
	}
	if cmd.NameText() != "make" {
		t.Errorf("name = %q", cmd.NameText())
	}
}

func TestStandaloneAssignment(t *testing.T) {
	a, ok := parseOne(t, "TARGET=release").(*ast.Assignment)
	if !ok {
		t.Fatal("expected Assignment")
	}
	if a.Name != "TARGET" || a.Value.String() != "release" {
		t.Errorf("assignment = %v", a)
	}

	app, ok := parseOne(t, "FLAGS+=-g").(*ast.Assignment)
	if !ok {
		t.Fatal("expected Assignment")
	}
	if !app.Append {
		t.Error("expected Append")
	}

	exp, ok := parseOne(t, "export PATH=/usr/bin").(*ast.Assignment)
	if !ok {
		t.Fatal("expected Assignment for export")
	}
	if !exp.Exported {
		t.Error("expected Exported")
	}
}

func TestRedirectFDAdjacency(t *testing.T) {
	// 2> with no space binds the descriptor to the redirect
	cmd := parseOne(t, "cmd arg 2>err").(*ast.SimpleCommand)
	if len(cmd.Args) != 1 || cmd.Args[0].String() != "arg" {
		t.Errorf("args = %v", cmd.Args)
	}
	if len(cmd.Redirects) != 1 || cmd.Redirects[0].FD != "2" {
		t.Fatalf("redirects = %v", cmd.Redirects)
	}
	if cmd.Redirects[0].Op != ast.RedirOut {
		t.Errorf("op = %v", cmd.Redirects[0].Op)
	}

	// with a space the 2 is an ordinary argument
	spaced := parseOne(t, "cmd 2 > err").(*ast.SimpleCommand)
	if len(spaced.Args) != 1 || spaced.Args[0].String() != "2" {
		t.Errorf("args = %v", spaced.Args)
	}
	if spaced.Redirects[0].FD != "" {
		t.Errorf("FD = %q", spaced.Redirects[0].FD)
	}
}

func TestRedirectOperators(t *testing.T) {
	cmd := parseOne(t, "cmd < in >> log 2>&1").(*ast.SimpleCommand)
	if len(cmd.Redirects) != 3 {
		t.Fatalf("redirect count = %d", len(cmd.Redirects))
	}
	ops := []ast.RedirOp{ast.RedirIn, ast.RedirAppend, ast.RedirDupOut}
	for i, want := range ops {
		if cmd.Redirects[i].Op != want {
			t.Errorf("redirect[%d] op = %v, want %v", i, cmd.Redirects[i].Op, want)
		}
	}
	if cmd.Redirects[2].FD != "2" || cmd.Redirects[2].Target.String() != "1" {
		t.Errorf("dup redirect = %v", cmd.Redirects[2])
	}
}

func TestHeredocAttachment(t *testing.T) {
	cmd := parseOne(t, "cat <<EOF\nline one\nline two\nEOF\n").(*ast.SimpleCommand)
	if len(cmd.Redirects) != 1 {
		t.Fatalf("redirect count = %d", len(cmd.Redirects))
	}
	r := cmd.Redirects[0]
	if r.Op != ast.RedirHeredoc {
		t.Errorf("op = %v", r.Op)
	}
	if r.HeredocBody != "line one\nline two\n" {
		t.Errorf("body = %q", r.HeredocBody)
	}
	if r.QuotedDelim {
		t.Error("delimiter was not quoted")
	}
}

func TestHeredocQuotedDelimiter(t *testing.T) {
	cmd := parseOne(t, "cat <<'EOF'\n$HOME stays literal\nEOF\n").(*ast.SimpleCommand)
	r := cmd.Redirects[0]
	if !r.QuotedDelim {
		t.Error("expected QuotedDelim")
	}
	if r.HeredocBody != "$HOME stays literal\n" {
		t.Errorf("body = %q", r.HeredocBody)
	}
}

func TestAndOrChainsLeftAssociative(t *testing.T) {
	outer, ok := parseOne(t, "a && b || c").(*ast.AndOr)
	if !ok {
		t.Fatal("expected AndOr")
	}
	if outer.Op != "||" {
		t.Errorf("outer op = %q", outer.Op)
	}
	inner, ok := outer.Left.(*ast.AndOr)
	if !ok {
		t.Fatal("expected nested AndOr on the left")
	}
	if inner.Op != "&&" {
		t.Errorf("inner op = %q", inner.Op)
	}
}

func TestPipeline(t *testing.T) {
	pipe, ok := parseOne(t, "cat f | grep x | wc -l").(*ast.Pipeline)
	if !ok {
		t.Fatal("expected Pipeline")
	}
	if len(pipe.Commands) != 3 {
		t.Fatalf("command count = %d", len(pipe.Commands))
	}
	last := pipe.Commands[2].(*ast.SimpleCommand)
	if last.NameText() != "wc" {
		t.Errorf("last command = %q", last.NameText())
	}
}

func TestNegatedPipeline(t *testing.T) {
	neg, ok := parseOne(t, "! grep -q x f | sort").(*ast.Negated)
	if !ok {
		t.Fatal("expected Negated")
	}
	if _, ok := neg.Cmd.(*ast.Pipeline); !ok {
		t.Errorf("negated body = %T", neg.Cmd)
	}
}

func TestIfElifElse(t *testing.T) {
	src := "if [ -f a ]; then\n  echo a\nelif [ -f b ]; then\n  echo b\nelse\n  echo none\nfi\n"
	node, ok := parseOne(t, src).(*ast.If)
	if !ok {
		t.Fatal("expected If")
	}
	if len(node.Cond) != 1 || len(node.Then) != 1 {
		t.Errorf("cond/then = %d/%d", len(node.Cond), len(node.Then))
	}
	if len(node.Elifs) != 1 {
		t.Fatalf("elif count = %d", len(node.Elifs))
	}
	if len(node.Else) != 1 {
		t.Errorf("else count = %d", len(node.Else))
	}
}

func TestWhileAndUntil(t *testing.T) {
	w := parseOne(t, "while read -r line; do echo \"$line\"; done").(*ast.While)
	if w.Until {
		t.Error("while parsed as until")
	}
	u := parseOne(t, "until ping -c1 host; do sleep 1; done").(*ast.While)
	if !u.Until {
		t.Error("until lost its flag")
	}
}

func TestForInLoop(t *testing.T) {
	f, ok := parseOne(t, "for src in a.c b.c c.c; do cc -c \"$src\"; done").(*ast.For)
	if !ok {
		t.Fatal("expected For")
	}
	if f.Var != "src" {
		t.Errorf("var = %q", f.Var)
	}
	if len(f.Items) != 3 {
		t.Fatalf("item count = %d", len(f.Items))
	}
	if len(f.Body) != 1 {
		t.Errorf("body count = %d", len(f.Body))
	}
}

func TestCStyleFor(t *testing.T) {
	f, ok := parseOne(t, "for ((i=0; i<10; i++)); do echo $i; done").(*ast.CStyleFor)
	if !ok {
		t.Fatal("expected CStyleFor")
	}
	if f.Init != "i=0" || f.Cond != "i<10" || f.Incr != "i++" {
		t.Errorf("clauses = %q %q %q", f.Init, f.Cond, f.Incr)
	}
}

func TestCaseStatement(t *testing.T) {
	src := "case $1 in\n  start) run ;;\n  stop|halt) halt ;&\n  *) usage ;;&\nesac\n"
	node, ok := parseOne(t, src).(*ast.Case)
	if !ok {
		t.Fatal("expected Case")
	}
	if len(node.Arms) != 3 {
		t.Fatalf("arm count = %d", len(node.Arms))
	}
	if len(node.Arms[1].Patterns) != 2 {
		t.Errorf("second arm pattern count = %d", len(node.Arms[1].Patterns))
	}
	terms := []ast.CaseTerminator{ast.Break, ast.FallThrough, ast.Continue}
	for i, want := range terms {
		if node.Arms[i].Terminator != want {
			t.Errorf("arm %d terminator = %v, want %v", i, node.Arms[i].Terminator, want)
		}
	}
}

func TestFunctionDefinitions(t *testing.T) {
	paren, ok := parseOne(t, "build() { make all; }").(*ast.FunctionDef)
	if !ok {
		t.Fatal("expected FunctionDef")
	}
	if paren.Name != "build" {
		t.Errorf("name = %q", paren.Name)
	}
	if g, ok := paren.Body.(*ast.Group); !ok || g.Subshell {
		t.Errorf("body = %v", paren.Body)
	}

	kw, ok := parseOne(t, "function deploy { scp app host:; }").(*ast.FunctionDef)
	if !ok {
		t.Fatal("expected FunctionDef for keyword form")
	}
	if kw.Name != "deploy" {
		t.Errorf("name = %q", kw.Name)
	}
	if g, ok := kw.Body.(*ast.Group); !ok || g.Subshell {
		t.Errorf("keyword form body = %v", kw.Body)
	}
}

func TestSubshellAndBraceGroup(t *testing.T) {
	sub := parseOne(t, "(cd /tmp && ls)").(*ast.Group)
	if !sub.Subshell {
		t.Error("parens should mark Subshell")
	}
	grp := parseOne(t, "{ echo a; echo b; }").(*ast.Group)
	if grp.Subshell {
		t.Error("brace group is not a subshell")
	}
	if len(grp.Body) != 2 {
		t.Errorf("body count = %d", len(grp.Body))
	}
}

func TestTestExpressions(t *testing.T) {
	single := parseOne(t, "[ -f config.yml ]").(*ast.SimpleCommand)
	if len(single.Args) != 1 {
		t.Fatalf("args = %v", single.Args)
	}
	te, ok := single.Args[0].(*ast.TestExpr)
	if !ok {
		t.Fatal("expected TestExpr argument")
	}
	if te.Extended {
		t.Error("[ is not the extended form")
	}

	ext := parseOne(t, `[[ $name == admin ]]`).(*ast.SimpleCommand)
	te2 := ext.Args[0].(*ast.TestExpr)
	if !te2.Extended {
		t.Error("[[ should set Extended")
	}
}

func TestWordClassification(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, e ast.Expression)
	}{
		{"$HOME", func(t *testing.T, e ast.Expression) {
			v, ok := e.(*ast.VarRef)
			if !ok || v.Name != "HOME" || v.Braced {
				t.Errorf("got %#v", e)
			}
		}},
		{"${HOME}", func(t *testing.T, e ast.Expression) {
			v, ok := e.(*ast.VarRef)
			if !ok || v.Name != "HOME" || !v.Braced {
				t.Errorf("got %#v", e)
			}
		}},
		{"$(date +%s)", func(t *testing.T, e ast.Expression) {
			c, ok := e.(*ast.CommandSub)
			if !ok || c.Backtick || c.Raw != "date +%s" {
				t.Errorf("got %#v", e)
			}
		}},
		{"`id -u`", func(t *testing.T, e ast.Expression) {
			c, ok := e.(*ast.CommandSub)
			if !ok || !c.Backtick {
				t.Errorf("got %#v", e)
			}
		}},
		{"$((1 + 2))", func(t *testing.T, e ast.Expression) {
			if _, ok := e.(*ast.Arithmetic); !ok {
				t.Errorf("got %#v", e)
			}
		}},
		{"*.c", func(t *testing.T, e ast.Expression) {
			if _, ok := e.(*ast.Glob); !ok {
				t.Errorf("got %#v", e)
			}
		}},
		{"'quoted'", func(t *testing.T, e ast.Expression) {
			l, ok := e.(*ast.Literal)
			if !ok || l.Quote != ast.SingleQuoted {
				t.Errorf("got %#v", e)
			}
		}},
		{"pre$(fix)", func(t *testing.T, e ast.Expression) {
			l, ok := e.(*ast.Literal)
			if !ok || !l.HasExpansion {
				t.Errorf("got %#v", e)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := parseOne(t, "echo "+tt.input).(*ast.SimpleCommand)
			if len(cmd.Args) != 1 {
				t.Fatalf("args = %v", cmd.Args)
			}
			tt.check(t, cmd.Args[0])
		})
	}
}

func TestNestedCommandSubstitution(t *testing.T) {
	cmd := parseOne(t, "echo $(basename $(pwd))").(*ast.SimpleCommand)
	outer, ok := cmd.Args[0].(*ast.CommandSub)
	if !ok {
		t.Fatal("expected CommandSub")
	}
	if outer.Body == nil || len(outer.Body.Statements) != 1 {
		t.Fatal("outer body not parsed")
	}
	innerCmd := outer.Body.Statements[0].(*ast.SimpleCommand)
	if _, ok := innerCmd.Args[0].(*ast.CommandSub); !ok {
		t.Errorf("inner arg = %#v", innerCmd.Args[0])
	}
}

func TestCommentsAndBlankRuns(t *testing.T) {
	script, err := Parse("# header\necho a\n\n\n\necho b\n", "test.sh")
	if err != nil {
		t.Fatal(err)
	}
	var sawComment bool
	var blank *ast.Blank
	for _, s := range script.Statements {
		switch v := s.(type) {
		case *ast.Comment:
			sawComment = true
			if v.Text != " header" {
				t.Errorf("comment text = %q", v.Text)
			}
		case *ast.Blank:
			blank = v
		}
	}
	if !sawComment {
		t.Error("comment statement missing")
	}
	if blank == nil || blank.Count != 3 {
		t.Errorf("blank run = %v", blank)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"missing esac", "case $x in\n  a) echo a ;;\n", "esac"},
		{"missing fi", "if true; then echo ok\n", "fi"},
		{"missing done", "while true; do echo\n", "done"},
		{"unclosed subshell", "(echo a\n", "')'"},
		{"unterminated quote", "echo 'oops\n", "unterminated single-quoted string"},
		{"dangling pipe", "a |\n", "command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "bad.sh")
			if err == nil {
				t.Fatalf("Parse(%q) succeeded", tt.input)
			}
			var pe *ParseError
			if !stderrors.As(err, &pe) {
				t.Fatalf("error type = %T", err)
			}
			if pe.Line <= 0 {
				t.Errorf("line = %d", pe.Line)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSpansCoverStatements(t *testing.T) {
	script, err := Parse("echo one\nif true; then echo two; fi\n", "test.sh")
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Statements) != 2 {
		t.Fatalf("statement count = %d", len(script.Statements))
	}
	first := script.Statements[0].GetSpan()
	second := script.Statements[1].GetSpan()
	if first.StartLine != 1 || second.StartLine != 2 {
		t.Errorf("spans = %v, %v", first, second)
	}
	if !first.Before(second) {
		t.Error("source order not reflected in spans")
	}
}
