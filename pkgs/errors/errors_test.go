package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrConfigRead, "cannot open config")
	if plain.Error() != "CONFIG_READ_ERROR: cannot open config" {
		t.Errorf("got %q", plain.Error())
	}

	wrapped := Wrap(ErrGeneration, "render failed", stderrors.New("boom"))
	if !strings.Contains(wrapped.Error(), "caused by: boom") {
		t.Errorf("got %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrInputRead, "read failed", cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestIsType(t *testing.T) {
	err := Newf(ErrUnknownOption, "unknown option %q", "strict_mode")
	if !IsType(err, ErrUnknownOption) {
		t.Error("IsType missed matching type")
	}
	if IsType(err, ErrConfigRead) {
		t.Error("IsType matched wrong type")
	}
	if IsType(stderrors.New("plain"), ErrConfigRead) {
		t.Error("IsType matched a plain error")
	}
}

func TestWithContext(t *testing.T) {
	err := New(ErrTransformApply, "no matching node").
		WithContext("rule", "IDEM001").
		WithContext("line", 12)
	if err.Context["rule"] != "IDEM001" || err.Context["line"] != 12 {
		t.Errorf("context = %v", err.Context)
	}
}

func TestParseErrorPointer(t *testing.T) {
	err := &ParseError{
		File:    "deploy.sh",
		Line:    3,
		Column:  5,
		Message: "expected 'esac', got end of input",
		Context: "case $1 in",
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "deploy.sh:3:5:") {
		t.Errorf("location prefix missing: %q", msg)
	}
	lines := strings.Split(msg, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected context and pointer lines, got %q", msg)
	}
	if lines[2] != "    ^" {
		t.Errorf("pointer = %q", lines[2])
	}
}

func TestParseErrorWithoutContext(t *testing.T) {
	err := &ParseError{Line: 7, Message: "unexpected token"}
	if err.Error() != "line 7: unexpected token" {
		t.Errorf("got %q", err.Error())
	}
}
