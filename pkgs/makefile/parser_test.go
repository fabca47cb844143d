package makefile

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

func mustParse(t *testing.T, source string) *ast.Script {
	t.Helper()
	script, err := Parse(source, "Makefile")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return script
}

func TestRuleWithRecipe(t *testing.T) {
	script := mustParse(t, "app: main.o util.o\n\tcc -o app main.o util.o\n")
	if len(script.Statements) != 1 {
		t.Fatalf("statement count = %d", len(script.Statements))
	}
	rule, ok := script.Statements[0].(*ast.Rule)
	if !ok {
		t.Fatal("expected Rule")
	}
	if len(rule.Targets) != 1 || rule.Targets[0] != "app" {
		t.Errorf("targets = %v", rule.Targets)
	}
	if len(rule.Prereqs) != 2 {
		t.Errorf("prereqs = %v", rule.Prereqs)
	}
	if len(rule.Recipe) != 1 || rule.Recipe[0].Text != "cc -o app main.o util.o" {
		t.Errorf("recipe = %v", rule.Recipe)
	}
}

func TestRecipePrefixes(t *testing.T) {
	script := mustParse(t, "clean:\n\t@-rm -rf build\n")
	rule := script.Statements[0].(*ast.Rule)
	rl := rule.Recipe[0]
	if !rl.Silent || !rl.IgnoreError {
		t.Errorf("prefixes = silent:%v ignore:%v", rl.Silent, rl.IgnoreError)
	}
	if rl.Text != "rm -rf build" {
		t.Errorf("text = %q", rl.Text)
	}
}

func TestAssignmentOperators(t *testing.T) {
	tests := []struct {
		line string
		name string
		op   ast.MakeAssignOp
		val  string
	}{
		{"CC = gcc", "CC", ast.AssignRecursive, "gcc"},
		{"CFLAGS := -O2 -Wall", "CFLAGS", ast.AssignSimple, "-O2 -Wall"},
		{"PREFIX ?= /usr/local", "PREFIX", ast.AssignCond, "/usr/local"},
		{"SRCS += extra.c", "SRCS", ast.AssignAppendOp, "extra.c"},
		{"REV != git rev-parse HEAD", "REV", ast.AssignShell, "git rev-parse HEAD"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			script := mustParse(t, tt.line+"\n")
			a, ok := script.Statements[0].(*ast.MakeAssign)
			if !ok {
				t.Fatalf("statement = %T", script.Statements[0])
			}
			if a.Name != tt.name || a.Op != tt.op || a.Value != tt.val {
				t.Errorf("got %s %s %q", a.Name, a.Op, a.Value)
			}
		})
	}
}

func TestExportedAssignment(t *testing.T) {
	script := mustParse(t, "export GOFLAGS := -mod=vendor\n")
	a := script.Statements[0].(*ast.MakeAssign)
	if !a.Export {
		t.Error("export prefix lost")
	}
}

func TestSubstitutionReferenceIsNotARule(t *testing.T) {
	// the colon inside $(SRCS:%.c=%.o) must not split a rule
	script := mustParse(t, "OBJS := $(SRCS:%.c=%.o)\n")
	a, ok := script.Statements[0].(*ast.MakeAssign)
	if !ok {
		t.Fatalf("statement = %T", script.Statements[0])
	}
	if a.Value != "$(SRCS:%.c=%.o)" {
		t.Errorf("value = %q", a.Value)
	}
}

func TestLineContinuations(t *testing.T) {
	script := mustParse(t, "SRCS = a.c \\\n       b.c \\\n       c.c\n")
	a := script.Statements[0].(*ast.MakeAssign)
	if len(strings.Fields(a.Value)) != 3 {
		t.Errorf("value = %q", a.Value)
	}
}

func TestOrderOnlyPrereqsAndDoubleColon(t *testing.T) {
	script := mustParse(t, "build/app: main.c | build\n\tcc -o $@ $<\n")
	rule := script.Statements[0].(*ast.Rule)
	if len(rule.Prereqs) != 1 || rule.Prereqs[0] != "main.c" {
		t.Errorf("prereqs = %v", rule.Prereqs)
	}
	if len(rule.OrderOnly) != 1 || rule.OrderOnly[0] != "build" {
		t.Errorf("order-only = %v", rule.OrderOnly)
	}

	dc := mustParse(t, "all:: first\n").Statements[0].(*ast.Rule)
	if !dc.DoubleColon {
		t.Error("double colon lost")
	}
}

func TestInlineRecipe(t *testing.T) {
	script := mustParse(t, "quick: ; echo fast\n")
	rule := script.Statements[0].(*ast.Rule)
	if len(rule.Recipe) != 1 || rule.Recipe[0].Text != "echo fast" {
		t.Errorf("recipe = %v", rule.Recipe)
	}
}

func TestConditionals(t *testing.T) {
	src := `ifeq ($(OS),Windows_NT)
EXT := .exe
else
EXT :=
endif
`
	script := mustParse(t, src)
	cond, ok := script.Statements[0].(*ast.MakeConditional)
	if !ok {
		t.Fatal("expected MakeConditional")
	}
	if cond.Kind != ast.CondIfeq || cond.Arg1 != "$(OS)" || cond.Arg2 != "Windows_NT" {
		t.Errorf("condition = %v %q %q", cond.Kind, cond.Arg1, cond.Arg2)
	}
	if len(cond.Then) != 1 || len(cond.Else) != 1 {
		t.Errorf("branches = %d/%d", len(cond.Then), len(cond.Else))
	}
}

func TestElseIfeqChains(t *testing.T) {
	src := `ifeq ($(CC),gcc)
FLAGS := -fgnu
else ifeq ($(CC),clang)
FLAGS := -fllvm
else
FLAGS :=
endif
`
	script := mustParse(t, src)
	outer := script.Statements[0].(*ast.MakeConditional)
	if len(outer.Else) != 1 {
		t.Fatalf("else branch = %d statements", len(outer.Else))
	}
	nested, ok := outer.Else[0].(*ast.MakeConditional)
	if !ok {
		t.Fatal("else ifeq did not nest")
	}
	if nested.Arg2 != "clang" {
		t.Errorf("nested arg2 = %q", nested.Arg2)
	}
}

func TestIfdef(t *testing.T) {
	script := mustParse(t, "ifdef DEBUG\nCFLAGS += -g\nendif\n")
	cond := script.Statements[0].(*ast.MakeConditional)
	if cond.Kind != ast.CondIfdef || cond.Arg1 != "DEBUG" {
		t.Errorf("condition = %v %q", cond.Kind, cond.Arg1)
	}
}

func TestDefineBlock(t *testing.T) {
	script := mustParse(t, "define HELP\nusage: make all\nsee docs\nendef\n")
	d, ok := script.Statements[0].(*ast.Directive)
	if !ok {
		t.Fatal("expected Directive")
	}
	if d.Name != "define" || d.Args[0] != "HELP" {
		t.Errorf("directive = %v", d)
	}
	if len(d.Body) != 2 {
		t.Errorf("body = %v", d.Body)
	}
}

func TestIncludes(t *testing.T) {
	script := mustParse(t, "include common.mk\n-include local.mk\n")
	inc := script.Statements[0].(*ast.Include)
	if inc.Optional || inc.Paths[0] != "common.mk" {
		t.Errorf("include = %v", inc)
	}
	opt := script.Statements[1].(*ast.Include)
	if !opt.Optional {
		t.Error("-include should be optional")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"orphan recipe", "\techo hi\n", "recipe commences before first target"},
		{"missing endif", "ifdef X\nY := 1\n", "missing closing endif"},
		{"missing endef", "define M\nbody\n", "missing closing endef"},
		{"stray endif", "endif\n", "without matching"},
		{"malformed ifeq", "ifeq ($(A) $(B))\nendif\n", "malformed ifeq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "Makefile")
			if err == nil {
				t.Fatalf("Parse(%q) succeeded", tt.input)
			}
			var pe *errors.ParseError
			if !stderrors.As(err, &pe) {
				t.Fatalf("error type = %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCommentsAndBlanks(t *testing.T) {
	script := mustParse(t, "# build settings\nCC := gcc\n\n\n\nall:\n\ttrue\n")
	c, ok := script.Statements[0].(*ast.Comment)
	if !ok || c.Text != " build settings" {
		t.Errorf("comment = %v", script.Statements[0])
	}
	var blank *ast.Blank
	for _, s := range script.Statements {
		if b, ok := s.(*ast.Blank); ok {
			blank = b
		}
	}
	if blank == nil || blank.Count != 2 {
		t.Errorf("blank = %v", blank)
	}
}
