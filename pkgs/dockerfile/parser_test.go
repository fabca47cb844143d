package dockerfile

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/shellpure/shellpure/pkgs/ast"
	"github.com/shellpure/shellpure/pkgs/errors"
)

func mustParse(t *testing.T, source string) *ast.Script {
	t.Helper()
	script, err := Parse(source, "Dockerfile")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return script
}

func TestFromParsing(t *testing.T) {
	tests := []struct {
		line   string
		image  string
		tag    string
		digest string
		alias  string
	}{
		{"FROM alpine", "alpine", "", "", ""},
		{"FROM golang:1.24", "golang", "1.24", "", ""},
		{"FROM golang:1.24 AS builder", "golang", "1.24", "", "builder"},
		{"FROM alpine@sha256:abcd1234", "alpine", "", "sha256:abcd1234", ""},
		{"FROM registry.local:5000/team/app:v2", "registry.local:5000/team/app", "v2", "", ""},
		{"FROM --platform=linux/amd64 debian:bookworm", "debian", "bookworm", "", ""},
		{"FROM scratch", "scratch", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			script := mustParse(t, tt.line+"\n")
			from, ok := script.Statements[0].(*ast.DockerFrom)
			if !ok {
				t.Fatalf("statement = %T", script.Statements[0])
			}
			if from.Image != tt.image || from.Tag != tt.tag ||
				from.Digest != tt.digest || from.Alias != tt.alias {
				t.Errorf("got %+v", *from)
			}
		})
	}
}

func TestShellFormRunParsesBody(t *testing.T) {
	script := mustParse(t, "FROM alpine\nRUN apk add --no-cache curl\n")
	run, ok := script.Statements[1].(*ast.DockerInstruction)
	if !ok || run.Name != "RUN" {
		t.Fatalf("statement = %v", script.Statements[1])
	}
	if run.JSONForm {
		t.Error("shell form flagged as JSON")
	}
	if run.Shell == nil || len(run.Shell.Statements) != 1 {
		t.Fatal("shell body not parsed")
	}
	cmd := run.Shell.Statements[0].(*ast.SimpleCommand)
	if cmd.NameText() != "apk" {
		t.Errorf("command = %q", cmd.NameText())
	}
}

func TestJSONFormIsNotShellParsed(t *testing.T) {
	script := mustParse(t, "FROM alpine\nRUN [\"sh\", \"-c\", \"echo hi\"]\n")
	run := script.Statements[1].(*ast.DockerInstruction)
	if !run.JSONForm {
		t.Error("exec form not flagged")
	}
	if run.Shell != nil {
		t.Error("exec form should not carry a shell tree")
	}
}

func TestContinuationJoining(t *testing.T) {
	src := "FROM alpine\nRUN apk update && \\\n    apk add git\n"
	script := mustParse(t, src)
	run := script.Statements[1].(*ast.DockerInstruction)
	if strings.Contains(run.Args, "\\") {
		t.Errorf("continuation not joined: %q", run.Args)
	}
	if run.Shell == nil {
		t.Fatal("joined body not parsed")
	}
	if _, ok := run.Shell.Statements[0].(*ast.AndOr); !ok {
		t.Errorf("body = %T", run.Shell.Statements[0])
	}
	if run.Span.StartLine != 2 || run.Span.EndLine != 3 {
		t.Errorf("span = %v", run.Span)
	}
}

func TestInstructionCaseNormalized(t *testing.T) {
	script := mustParse(t, "from alpine\nworkdir /app\n")
	if _, ok := script.Statements[0].(*ast.DockerFrom); !ok {
		t.Errorf("lowercase from = %T", script.Statements[0])
	}
	wd := script.Statements[1].(*ast.DockerInstruction)
	if wd.Name != "WORKDIR" {
		t.Errorf("name = %q", wd.Name)
	}
}

func TestUnknownInstruction(t *testing.T) {
	_, err := Parse("FROM alpine\nINSTALL curl\n", "Dockerfile")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *errors.ParseError
	if !stderrors.As(err, &pe) {
		t.Fatalf("error type = %T", err)
	}
	if pe.Line != 2 {
		t.Errorf("line = %d", pe.Line)
	}
	if !strings.Contains(err.Error(), `unknown instruction "INSTALL"`) {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFromWithoutImage(t *testing.T) {
	_, err := Parse("FROM\n", "Dockerfile")
	if err == nil || !strings.Contains(err.Error(), "image reference") {
		t.Errorf("err = %v", err)
	}
}

func TestBadRunBodyKeepsRawForm(t *testing.T) {
	// an unparseable shell body must not reject the file
	script := mustParse(t, "FROM alpine\nRUN case $x in\n")
	run := script.Statements[1].(*ast.DockerInstruction)
	if run.Shell != nil {
		t.Error("broken body should stay raw")
	}
	if run.Args != "case $x in" {
		t.Errorf("args = %q", run.Args)
	}
}

func TestCommentsAndBlanks(t *testing.T) {
	src := "# syntax=docker/dockerfile:1\nFROM alpine\n\n\n\nCMD [\"app\"]\n"
	script := mustParse(t, src)
	c, ok := script.Statements[0].(*ast.Comment)
	if !ok || !strings.Contains(c.Text, "syntax=") {
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

func TestMultiStageBuild(t *testing.T) {
	src := `FROM golang:1.24 AS builder
WORKDIR /src
RUN go build -o /out/app .

FROM alpine:3.20
COPY --from=builder /out/app /usr/bin/app
ENTRYPOINT ["/usr/bin/app"]
`
	script := mustParse(t, src)
	var froms []*ast.DockerFrom
	for _, s := range script.Statements {
		if f, ok := s.(*ast.DockerFrom); ok {
			froms = append(froms, f)
		}
	}
	if len(froms) != 2 {
		t.Fatalf("FROM count = %d", len(froms))
	}
	if froms[0].Alias != "builder" || froms[1].Tag != "3.20" {
		t.Errorf("stages = %+v, %+v", *froms[0], *froms[1])
	}
}
