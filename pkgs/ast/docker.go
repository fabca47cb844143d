package ast

import "strings"

// Dockerfile dialect nodes.

// DockerFrom is a FROM instruction
type DockerFrom struct {
	Image  string
	Tag    string // "" when absent
	Digest string // sha256 digest when pinned
	Alias  string // AS name
	Span   Span
}

func (f *DockerFrom) String() string {
	s := "FROM " + f.Image
	if f.Tag != "" {
		s += ":" + f.Tag
	}
	if f.Digest != "" {
		s += "@" + f.Digest
	}
	if f.Alias != "" {
		s += " AS " + f.Alias
	}
	return s
}
func (f *DockerFrom) GetSpan() Span { return f.Span }
func (f *DockerFrom) stmtNode()     {}

// Pinned reports whether the base image is pinned to a digest or a
// non-floating tag.
func (f *DockerFrom) Pinned() bool {
	if f.Digest != "" {
		return true
	}
	return f.Tag != "" && f.Tag != "latest"
}

// DockerInstruction is any non-FROM instruction. Shell-form RUN bodies
// carry the parsed shell script; everything else keeps raw args.
type DockerInstruction struct {
	Name     string  // uppercased instruction keyword
	Args     string  // raw argument text, continuations joined
	JSONForm bool    // exec form: RUN ["sh", "-c", ...]
	Shell    *Script // parsed shell body for shell-form RUN, nil otherwise
	Span     Span
}

func (d *DockerInstruction) String() string {
	return d.Name + " " + strings.TrimSpace(d.Args)
}
func (d *DockerInstruction) GetSpan() Span { return d.Span }
func (d *DockerInstruction) stmtNode()     {}
