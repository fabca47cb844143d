package generator

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/dockerfile"
	"github.com/shellpure/shellpure/pkgs/makefile"
	"github.com/shellpure/shellpure/pkgs/parser"
)

func renderSh(t *testing.T, src string) string {
	t.Helper()
	script, err := parser.Parse(src, "test.sh")
	require.NoError(t, err)
	out, err := Render(script, DefaultOptions())
	require.NoError(t, err)
	return out
}

func TestRenderShellConstructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "simple command",
			src:  "echo hello world\n",
			want: "echo hello world\n",
		},
		{
			name: "pipeline",
			src:  "cat file | sort | uniq -c\n",
			want: "cat file | sort | uniq -c\n",
		},
		{
			name: "and or chain",
			src:  "test -f config && cat config || true\n",
			want: "test -f config && cat config || true\n",
		},
		{
			name: "if statement",
			src:  "if [ -f config ]; then\ncat config\nfi\n",
			want: "if [ -f config ]; then\n    cat config\nfi\n",
		},
		{
			name: "while loop",
			src:  "while read -r line; do\necho \"$line\"\ndone\n",
			want: "while read -r line; do\n    echo \"$line\"\ndone\n",
		},
		{
			name: "for loop",
			src:  "for f in a.txt b.txt; do\nrm -f \"$f\"\ndone\n",
			want: "for f in a.txt b.txt; do\n    rm -f \"$f\"\ndone\n",
		},
		{
			name: "case statement",
			src:  "case $1 in\nstart|stop) svc $1 ;;\n*) usage ;;\nesac\n",
			want: "case $1 in\n    start|stop)\n        svc $1\n        ;;\n    *)\n        usage\n        ;;\nesac\n",
		},
		{
			name: "function definition",
			src:  "greet() {\necho hi\n}\n",
			want: "greet() {\n    echo hi\n}\n",
		},
		{
			name: "assignment and export",
			src:  "NAME=value\nexport PATH=/usr/bin\n",
			want: "NAME=value\nexport PATH=/usr/bin\n",
		},
		{
			name: "negated command",
			src:  "! grep -q error log\n",
			want: "! grep -q error log\n",
		},
		{
			name: "subshell group",
			src:  "(\ncd /tmp\nls\n)\n",
			want: "(\n    cd /tmp\n    ls\n)\n",
		},
		{
			name: "comment",
			src:  "# build step\nmake all\n",
			want: "# build step\nmake all\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSh(t, tt.src)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderHeredoc(t *testing.T) {
	src := "cat <<EOF\nhello\nworld\nEOF\n"
	got := renderSh(t, src)
	assert.Contains(t, got, "cat <<EOF\n")
	assert.Contains(t, got, "hello\nworld\nEOF\n")
}

func TestSelectLowersToLoop(t *testing.T) {
	src := "select opt in build test clean; do\necho \"$opt\"\ndone\n"
	got := renderSh(t, src)
	assert.NotContains(t, got, "select")
	assert.Contains(t, got, "while true; do")
	assert.Contains(t, got, "read -r opt || break")
	assert.Contains(t, got, "printf '%s\\n' build test clean")
}

func TestEmptyLiteralRendersQuoted(t *testing.T) {
	script := &ast.Script{
		Dialect: ast.Shell,
		Statements: []ast.Statement{
			&ast.SimpleCommand{
				Name: &ast.Literal{Raw: "grep"},
				Args: []ast.Expression{&ast.Literal{Raw: ""}, &ast.Literal{Raw: "file"}},
			},
		},
	}
	out, err := Render(script, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "grep \"\" file\n", out)
}

func TestKeywordArgumentsQuoted(t *testing.T) {
	got := renderSh(t, "echo done in fi\n")
	assert.Equal(t, "echo 'done' 'in' 'fi'\n", got)

	// quoting keeps the text stable across a reparse
	assert.Equal(t, got, renderSh(t, got))
}

func TestKeywordForItemsQuoted(t *testing.T) {
	script := &ast.Script{
		Dialect: ast.Shell,
		Statements: []ast.Statement{
			&ast.For{
				Var:   "w",
				Items: []ast.Expression{&ast.Literal{Raw: "do"}, &ast.Literal{Raw: "ok"}},
				Body: []ast.Statement{
					&ast.SimpleCommand{
						Name: &ast.Literal{Raw: "echo"},
						Args: []ast.Expression{&ast.VarRef{Name: "w", Raw: "$w"}},
					},
				},
			},
		},
	}
	out, err := Render(script, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "for w in 'do' ok; do")
}

// render is a fixpoint: rendering, reparsing and rendering again
// yields the same text
func TestRenderRoundTrip(t *testing.T) {
	sources := []string{
		"set -euo pipefail\nmkdir -p out\ncp src/a out/\n",
		"if [ -d build ]; then\nrm -rf build\nfi\nmkdir -p build\n",
		"for f in *.txt; do\nwc -l \"$f\"\ndone\n",
		"case $STAGE in\ndev)\nmake dev\n;;\nprod)\nmake release\n;;\nesac\n",
		"count=0\nwhile [ $count -lt 5 ]; do\ncount=$((count+1))\ndone\n",
		"build() {\ngo build ./...\n}\nbuild\n",
	}
	for _, src := range sources {
		first := renderSh(t, src)
		second := renderSh(t, first)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("round trip of %q not stable (-first +second):\n%s", src, diff)
		}
	}
}

func TestBlankLineCollapse(t *testing.T) {
	src := "echo one\n\n\n\necho two\n"
	got := renderSh(t, src)
	assert.Equal(t, "echo one\n\necho two\n", got)

	script, err := parser.Parse(src, "test.sh")
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.PreserveFormatting = true
	kept, err := Render(script, opts)
	require.NoError(t, err)
	assert.Equal(t, "echo one\n\n\n\necho two\n", kept)
}

func TestMaxLineLengthWrapsArguments(t *testing.T) {
	script, err := parser.Parse("cc -o app alpha.c bravo.c charlie.c delta.c echofile.c foxtrot.c\n", "test.sh")
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.MaxLineLength = 40
	out, err := Render(script, opts)
	require.NoError(t, err)
	assert.Contains(t, out, " \\\n")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 40, "line too long: %q", line)
	}
}

func TestRenderMakefile(t *testing.T) {
	src := "CC := gcc\n\nall: main.o util.o\n\t$(CC) -o app main.o util.o\n\t@echo done\n\nclean:\n\t-rm -f *.o\n"
	script, err := makefile.Parse(src, "Makefile")
	require.NoError(t, err)
	out, err := Render(script, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, out, "CC := gcc\n")
	assert.Contains(t, out, "all: main.o util.o\n")
	assert.Contains(t, out, "\t$(CC) -o app main.o util.o\n")
	assert.Contains(t, out, "\t@echo done\n")
	assert.Contains(t, out, "\t-rm -f *.o\n")
}

func TestMakefileRoundTrip(t *testing.T) {
	src := "SRCS = $(sort $(wildcard *.c))\n\nall: $(SRCS)\n\tcc -o app $(SRCS)\n"
	script, err := makefile.Parse(src, "Makefile")
	require.NoError(t, err)
	first, err := Render(script, DefaultOptions())
	require.NoError(t, err)

	again, err := makefile.Parse(first, "Makefile")
	require.NoError(t, err)
	second, err := Render(again, DefaultOptions())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("makefile round trip not stable (-first +second):\n%s", diff)
	}
}

func TestRenderDockerfile(t *testing.T) {
	src := "FROM golang:1.24 AS build\nWORKDIR /src\nCOPY . .\nRUN go build -o /app ./cmd\n"
	script, err := dockerfile.Parse(src, "Dockerfile")
	require.NoError(t, err)
	out, err := Render(script, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, out, "FROM golang:1.24 AS build\n")
	assert.Contains(t, out, "WORKDIR /src\n")
	assert.Contains(t, out, "RUN go build -o /app ./cmd\n")
}

func TestDockerfileRunConsolidation(t *testing.T) {
	src := "FROM debian:12\nRUN apt-get update\nRUN apt-get install -y curl\nCOPY . /app\n"
	script, err := dockerfile.Parse(src, "Dockerfile")
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.ConsolidateStatements = true
	out, err := Render(script, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "RUN "))
	assert.Contains(t, out, "RUN apt-get update && apt-get install -y curl\n")
}
