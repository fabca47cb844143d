package ast

import (
	"fmt"
	"strings"
)

// Makefile dialect nodes. They satisfy the same Statement contract so
// the analyzer, rewriter and generator traverse every dialect the same
// way.

// MakeAssignOp enumerates Makefile assignment operators
type MakeAssignOp int

const (
	AssignRecursive MakeAssignOp = iota // =
	AssignSimple                        // :=
	AssignCond                          // ?=
	AssignAppendOp                      // +=
	AssignShell                         // !=
)

var makeAssignText = map[MakeAssignOp]string{
	AssignRecursive: "=",
	AssignSimple:    ":=",
	AssignCond:      "?=",
	AssignAppendOp:  "+=",
	AssignShell:     "!=",
}

func (o MakeAssignOp) String() string { return makeAssignText[o] }

// MakeAssign is a Makefile variable assignment
type MakeAssign struct {
	Name   string
	Op     MakeAssignOp
	Value  string // right-hand side as written, $(...) references intact
	Export bool
	Span   Span
}

func (m *MakeAssign) String() string {
	s := fmt.Sprintf("%s %s %s", m.Name, m.Op, m.Value)
	if m.Export {
		return "export " + s
	}
	return s
}
func (m *MakeAssign) GetSpan() Span { return m.Span }
func (m *MakeAssign) stmtNode()     {}

// RecipeLine is one command line of a rule's recipe
type RecipeLine struct {
	Text        string // after the tab, prefixes stripped
	Silent      bool   // @ prefix
	IgnoreError bool   // - prefix
	Span        Span
}

func (r *RecipeLine) String() string {
	prefix := ""
	if r.Silent {
		prefix += "@"
	}
	if r.IgnoreError {
		prefix += "-"
	}
	return prefix + r.Text
}

func (r *RecipeLine) clone() *RecipeLine {
	c := *r
	return &c
}

// Rule is a Makefile rule: targets, prerequisites and a recipe
type Rule struct {
	Targets     []string
	Prereqs     []string
	OrderOnly   []string // prerequisites after |
	Recipe      []*RecipeLine
	DoubleColon bool
	Span        Span
}

func (r *Rule) String() string {
	sep := ":"
	if r.DoubleColon {
		sep = "::"
	}
	return fmt.Sprintf("%s%s %s", strings.Join(r.Targets, " "), sep, strings.Join(r.Prereqs, " "))
}
func (r *Rule) GetSpan() Span { return r.Span }
func (r *Rule) stmtNode()     {}

// IsPhony reports whether the rule declares .PHONY style special targets
func (r *Rule) IsPhony() bool {
	return len(r.Targets) == 1 && strings.HasPrefix(r.Targets[0], ".")
}

// Include is an include directive
type Include struct {
	Paths    []string
	Optional bool // -include / sinclude
	Span     Span
}

func (i *Include) String() string {
	kw := "include"
	if i.Optional {
		kw = "-include"
	}
	return kw + " " + strings.Join(i.Paths, " ")
}
func (i *Include) GetSpan() Span { return i.Span }
func (i *Include) stmtNode()     {}

// MakeCondKind enumerates Makefile conditional directives
type MakeCondKind int

const (
	CondIfeq MakeCondKind = iota
	CondIfneq
	CondIfdef
	CondIfndef
)

var makeCondText = map[MakeCondKind]string{
	CondIfeq: "ifeq", CondIfneq: "ifneq", CondIfdef: "ifdef", CondIfndef: "ifndef",
}

func (k MakeCondKind) String() string { return makeCondText[k] }

// MakeConditional is an ifeq/ifneq/ifdef/ifndef block
type MakeConditional struct {
	Kind MakeCondKind
	Arg1 string
	Arg2 string // empty for ifdef/ifndef
	Then []Statement
	Else []Statement
	Span Span
}

func (c *MakeConditional) String() string {
	return fmt.Sprintf("%s (%s,%s) ... endif", c.Kind, c.Arg1, c.Arg2)
}
func (c *MakeConditional) GetSpan() Span { return c.Span }
func (c *MakeConditional) stmtNode()     {}

// Directive is any other top-level Makefile directive (.PHONY, .SUFFIXES,
// define blocks, vpath, export lines without assignment).
type Directive struct {
	Name string
	Args []string
	Body []string // define block body lines
	Span Span
}

func (d *Directive) String() string {
	return d.Name + " " + strings.Join(d.Args, " ")
}
func (d *Directive) GetSpan() Span { return d.Span }
func (d *Directive) stmtNode()     {}
