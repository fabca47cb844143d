package ast

import (
	"fmt"
	"strings"
	"time"
)

// Dialect identifies the source language of a Script
type Dialect int

const (
	Shell Dialect = iota
	Makefile
	Dockerfile
)

func (d Dialect) String() string {
	switch d {
	case Shell:
		return "shell"
	case Makefile:
		return "makefile"
	case Dockerfile:
		return "dockerfile"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// Span represents a source-location range attached to every node.
// Lines and columns are 1-based.
type Span struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.StartLine, s.StartCol)
}

// Before reports whether s starts before o in source order.
func (s Span) Before(o Span) bool {
	if s.StartLine != o.StartLine {
		return s.StartLine < o.StartLine
	}
	return s.StartCol < o.StartCol
}

// Node represents any node in the syntax tree
type Node interface {
	String() string
	GetSpan() Span
}

// Statement is a closed set of statement variants. Consumers
// type-switch over the concrete kinds; adding a kind means updating
// every switch, which is the point.
type Statement interface {
	Node
	CloneStmt() Statement
	stmtNode()
}

// Expression is a closed set of expression variants
type Expression interface {
	Node
	CloneExpr() Expression
	exprNode()
}

// Script is the root of a parsed source file
type Script struct {
	Name       string // source file identity ("" for stdin/string input)
	Dialect    Dialect
	Statements []Statement
	LineCount  int
	ParseTime  time.Duration
}

func (s *Script) String() string {
	parts := make([]string, 0, len(s.Statements))
	for _, st := range s.Statements {
		parts = append(parts, st.String())
	}
	return strings.Join(parts, "\n")
}

// StatementCount returns the number of top-level statements, exposed as
// a read-only view for external quality scorers.
func (s *Script) StatementCount() int {
	return len(s.Statements)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// QuoteKind classifies how a literal was quoted in source
type QuoteKind int

const (
	Unquoted QuoteKind = iota
	SingleQuoted
	DoubleQuoted
	AnsiQuoted
)

// Literal is a word as written, quotes included in Raw.
type Literal struct {
	Raw          string
	Quote        QuoteKind
	HasExpansion bool // active $… or backtick expansion inside
	Span         Span
}

func (l *Literal) String() string { return l.Raw }
func (l *Literal) GetSpan() Span  { return l.Span }
func (l *Literal) exprNode()      {}

// VarRef is a bare variable reference: $NAME or ${NAME...}
type VarRef struct {
	Name   string // NAME without the dollar or braces
	Raw    string // as written
	Braced bool
	Span   Span
}

func (v *VarRef) String() string { return v.Raw }
func (v *VarRef) GetSpan() Span  { return v.Span }
func (v *VarRef) exprNode()      {}

// ArrayLiteral is a bash array initializer: (a b c)
type ArrayLiteral struct {
	Elements []Expression
	Span     Span
}

func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
func (a *ArrayLiteral) GetSpan() Span { return a.Span }
func (a *ArrayLiteral) exprNode()     {}

// Glob is a word containing unquoted glob characters
type Glob struct {
	Raw  string
	Span Span
}

func (g *Glob) String() string { return g.Raw }
func (g *Glob) GetSpan() Span  { return g.Span }
func (g *Glob) exprNode()      {}

// ArithOp enumerates arithmetic operators
type ArithOp int

const (
	ArithLeaf ArithOp = iota // Value holds a number or variable name
	ArithAdd
	ArithSub
	ArithMul
	ArithDiv
	ArithMod
	ArithEq
	ArithNe
	ArithLt
	ArithLe
	ArithGt
	ArithGe
	ArithAnd
	ArithOr
	ArithNeg // unary minus
	ArithNot // unary !
)

var arithOpText = map[ArithOp]string{
	ArithAdd: "+", ArithSub: "-", ArithMul: "*", ArithDiv: "/", ArithMod: "%",
	ArithEq: "==", ArithNe: "!=", ArithLt: "<", ArithLe: "<=", ArithGt: ">", ArithGe: ">=",
	ArithAnd: "&&", ArithOr: "||", ArithNeg: "-", ArithNot: "!",
}

// ArithNode is one node of a parsed arithmetic expression
type ArithNode struct {
	Op    ArithOp
	Value string // leaf value (number or identifier)
	Left  *ArithNode
	Right *ArithNode
}

func (n *ArithNode) String() string {
	switch {
	case n == nil:
		return ""
	case n.Op == ArithLeaf:
		return n.Value
	case n.Right == nil:
		return arithOpText[n.Op] + n.Left.String()
	default:
		return fmt.Sprintf("%s %s %s", n.Left.String(), arithOpText[n.Op], n.Right.String())
	}
}

// Arithmetic is an arithmetic expansion: $((...))
type Arithmetic struct {
	Raw  string     // inner text as written
	Expr *ArithNode // parsed form, nil when the dialect grammar defeated us
	Span Span
}

func (a *Arithmetic) String() string { return "$((" + a.Raw + "))" }
func (a *Arithmetic) GetSpan() Span  { return a.Span }
func (a *Arithmetic) exprNode()      {}

// CommandSub is a command substitution: $(...) or `...`
type CommandSub struct {
	Raw      string  // inner command text
	Backtick bool    // written with backticks
	Body     *Script // parsed inner script, nil if it did not parse
	Span     Span
}

func (c *CommandSub) String() string {
	if c.Backtick {
		return "`" + c.Raw + "`"
	}
	return "$(" + c.Raw + ")"
}
func (c *CommandSub) GetSpan() Span { return c.Span }
func (c *CommandSub) exprNode()     {}

// TestKind enumerates test-expression node kinds
type TestKind int

const (
	TestWord   TestKind = iota // bare word operand
	TestUnary                  // -f path, -z str, ...
	TestBinary                 // a = b, x -eq y, ...
	TestAnd
	TestOr
	TestNot
)

// TestNode is one node of a parsed test expression
type TestNode struct {
	Kind  TestKind
	Op    string // operator text: -f, =, -eq, ...
	Word  string // operand for TestWord
	Left  *TestNode
	Right *TestNode
}

func (t *TestNode) String() string {
	switch t.Kind {
	case TestWord:
		return t.Word
	case TestUnary:
		return t.Op + " " + t.Left.String()
	case TestBinary:
		return fmt.Sprintf("%s %s %s", t.Left.String(), t.Op, t.Right.String())
	case TestAnd:
		return t.Left.String() + " && " + t.Right.String()
	case TestOr:
		return t.Left.String() + " || " + t.Right.String()
	case TestNot:
		return "! " + t.Left.String()
	}
	return ""
}

// TestExpr is a test expression: [ ... ] or [[ ... ]]
type TestExpr struct {
	Raw      string // inner text as written
	Extended bool   // [[ ]] form
	Expr     *TestNode
	Span     Span
}

func (t *TestExpr) String() string {
	if t.Extended {
		return "[[ " + t.Raw + " ]]"
	}
	return "[ " + t.Raw + " ]"
}
func (t *TestExpr) GetSpan() Span { return t.Span }
func (t *TestExpr) exprNode()     {}

// ---------------------------------------------------------------------------
// Shell statements
// ---------------------------------------------------------------------------

// RedirOp enumerates redirection operators
type RedirOp int

const (
	RedirIn        RedirOp = iota // <
	RedirOut                      // >
	RedirAppend                   // >>
	RedirInOut                    // <>
	RedirHeredoc                  // <<
	RedirHeredocStrip             // <<-
	RedirHerestring               // <<<
	RedirDupOut                   // >&
	RedirDupIn                    // <&
	RedirAll                      // &>
	RedirAllAppend                // &>>
	RedirClobber                  // >|
)

var redirOpText = map[RedirOp]string{
	RedirIn: "<", RedirOut: ">", RedirAppend: ">>", RedirInOut: "<>",
	RedirHeredoc: "<<", RedirHeredocStrip: "<<-", RedirHerestring: "<<<",
	RedirDupOut: ">&", RedirDupIn: "<&", RedirAll: "&>", RedirAllAppend: "&>>",
	RedirClobber: ">|",
}

func (o RedirOp) String() string { return redirOpText[o] }

// Redirect is one redirection attached to a command
type Redirect struct {
	Op     RedirOp
	FD     string // optional file descriptor prefix: 2>, 1>&2
	Target Expression
	Span   Span

	// Here-document payload (RedirHeredoc / RedirHeredocStrip)
	HeredocBody string
	QuotedDelim bool // quoted delimiter disables expansion in the body
}

func (r *Redirect) String() string {
	return r.FD + r.Op.String() + r.Target.String()
}

func (r *Redirect) clone() *Redirect {
	c := *r
	c.Target = r.Target.CloneExpr()
	return &c
}

// SimpleCommand is a command name with ordered arguments and redirects
type SimpleCommand struct {
	Name      Expression
	Args      []Expression
	Redirects []*Redirect
	// Assignment prefixes: FOO=bar cmd ...
	Prefix []*Assignment
	Span   Span
}

func (c *SimpleCommand) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Prefix {
		parts = append(parts, a.String())
	}
	// prefix-only and redirect-only commands have no name
	if c.Name != nil {
		parts = append(parts, c.Name.String())
	}
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	for _, r := range c.Redirects {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}
func (c *SimpleCommand) GetSpan() Span { return c.Span }
func (c *SimpleCommand) stmtNode()     {}

// NameText returns the command name as plain text, quotes stripped.
func (c *SimpleCommand) NameText() string {
	if c.Name == nil {
		return ""
	}
	return unquote(c.Name.String())
}

// Pipeline is an ordered sequence of commands joined by | or |&
type Pipeline struct {
	Commands []Statement
	Span     Span
}

func (p *Pipeline) String() string {
	parts := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}
func (p *Pipeline) GetSpan() Span { return p.Span }
func (p *Pipeline) stmtNode()     {}

// AndOr chains two statements with && or ||
type AndOr struct {
	Op    string // "&&" or "||"
	Left  Statement
	Right Statement
	Span  Span
}

func (a *AndOr) String() string {
	return a.Left.String() + " " + a.Op + " " + a.Right.String()
}
func (a *AndOr) GetSpan() Span { return a.Span }
func (a *AndOr) stmtNode()     {}

// ElifClause is one elif branch of an If
type ElifClause struct {
	Cond []Statement
	Body []Statement
	Span Span
}

// If is a conditional with optional elif chain and else branch
type If struct {
	Cond  []Statement
	Then  []Statement
	Elifs []ElifClause
	Else  []Statement
	Span  Span
}

func (i *If) String() string {
	return fmt.Sprintf("if %s; then ...; fi", stmtsString(i.Cond))
}
func (i *If) GetSpan() Span { return i.Span }
func (i *If) stmtNode()     {}

// While is a while (or until, when Until is set) loop
type While struct {
	Until bool
	Cond  []Statement
	Body  []Statement
	Span  Span
}

func (w *While) String() string {
	kw := "while"
	if w.Until {
		kw = "until"
	}
	return fmt.Sprintf("%s %s; do ...; done", kw, stmtsString(w.Cond))
}
func (w *While) GetSpan() Span { return w.Span }
func (w *While) stmtNode()     {}

// For is a for-in loop. Empty Items means iterating "$@".
type For struct {
	Var   string
	Items []Expression
	Body  []Statement
	Span  Span
}

func (f *For) String() string {
	return fmt.Sprintf("for %s in ...; do ...; done", f.Var)
}
func (f *For) GetSpan() Span { return f.Span }
func (f *For) stmtNode()     {}

// CStyleFor is for ((init; cond; incr)). The three clauses are raw
// arithmetic-ish text because shell arithmetic grammar is dialect
// specific.
type CStyleFor struct {
	Init string
	Cond string
	Incr string
	Body []Statement
	Span Span
}

func (f *CStyleFor) String() string {
	return fmt.Sprintf("for ((%s; %s; %s)); do ...; done", f.Init, f.Cond, f.Incr)
}
func (f *CStyleFor) GetSpan() Span { return f.Span }
func (f *CStyleFor) stmtNode()     {}

// CaseTerminator distinguishes ;; from ;& and ;;&
type CaseTerminator int

const (
	Break       CaseTerminator = iota // ;;
	FallThrough                       // ;&
	Continue                          // ;;&
)

func (t CaseTerminator) String() string {
	switch t {
	case FallThrough:
		return ";&"
	case Continue:
		return ";;&"
	}
	return ";;"
}

// CaseArm is one pattern arm of a case statement
type CaseArm struct {
	Patterns   []Expression
	Body       []Statement
	Terminator CaseTerminator
	Span       Span
}

// Case is a case statement: word plus ordered arms
type Case struct {
	Word Expression
	Arms []CaseArm
	Span Span
}

func (c *Case) String() string {
	return fmt.Sprintf("case %s in ... esac", c.Word.String())
}
func (c *Case) GetSpan() Span { return c.Span }
func (c *Case) stmtNode()     {}

// Select is an interactive menu loop (bash extension)
type Select struct {
	Var   string
	Items []Expression
	Body  []Statement
	Span  Span
}

func (s *Select) String() string {
	return fmt.Sprintf("select %s in ...; do ...; done", s.Var)
}
func (s *Select) GetSpan() Span { return s.Span }
func (s *Select) stmtNode()     {}

// FunctionDef is a function definition
type FunctionDef struct {
	Name string
	Body Statement // usually a Group
	Span Span
}

func (f *FunctionDef) String() string {
	return f.Name + "() " + f.Body.String()
}
func (f *FunctionDef) GetSpan() Span { return f.Span }
func (f *FunctionDef) stmtNode()     {}

// Group is a brace group or, when Subshell is set, a subshell.
//
// A single boolean rather than an execution-context stack is enough for
// the dialects in scope; revisit if nested subshell redirection scoping
// ever matters.
type Group struct {
	Body     []Statement
	Subshell bool
	Span     Span
}

func (g *Group) String() string {
	if g.Subshell {
		return "( ... )"
	}
	return "{ ...; }"
}
func (g *Group) GetSpan() Span { return g.Span }
func (g *Group) stmtNode()     {}

// Negated is a ! prefixed command
type Negated struct {
	Cmd  Statement
	Span Span
}

func (n *Negated) String() string { return "! " + n.Cmd.String() }
func (n *Negated) GetSpan() Span  { return n.Span }
func (n *Negated) stmtNode()      {}

// Coproc is a bash co-process
type Coproc struct {
	Name string
	Cmd  Statement
	Span Span
}

func (c *Coproc) String() string { return "coproc " + c.Cmd.String() }
func (c *Coproc) GetSpan() Span  { return c.Span }
func (c *Coproc) stmtNode()      {}

// Assignment is a variable assignment, possibly exported
type Assignment struct {
	Name     string
	Index    string // optional array index text, "" when absent
	Append   bool   // += form
	Value    Expression
	Exported bool
	Span     Span
}

func (a *Assignment) String() string {
	op := "="
	if a.Append {
		op = "+="
	}
	name := a.Name
	if a.Index != "" {
		name += "[" + a.Index + "]"
	}
	val := ""
	if a.Value != nil {
		val = a.Value.String()
	}
	if a.Exported {
		return "export " + name + op + val
	}
	return name + op + val
}
func (a *Assignment) GetSpan() Span { return a.Span }
func (a *Assignment) stmtNode()     {}

// Return exits a function with an optional status
type Return struct {
	Code Expression // nil when absent
	Span Span
}

func (r *Return) String() string {
	if r.Code == nil {
		return "return"
	}
	return "return " + r.Code.String()
}
func (r *Return) GetSpan() Span { return r.Span }
func (r *Return) stmtNode()     {}

// Exit terminates the script with an optional status
type Exit struct {
	Code Expression // nil when absent
	Span Span
}

func (e *Exit) String() string {
	if e.Code == nil {
		return "exit"
	}
	return "exit " + e.Code.String()
}
func (e *Exit) GetSpan() Span { return e.Span }
func (e *Exit) stmtNode()     {}

// Comment is a standalone comment line. The rewriter inserts these for
// advisory annotations.
type Comment struct {
	Text string // without the leading #
	Span Span
}

func (c *Comment) String() string { return "#" + c.Text }
func (c *Comment) GetSpan() Span  { return c.Span }
func (c *Comment) stmtNode()      {}

// Blank is a run of blank lines, kept so formatting options can decide
// whether to collapse them.
type Blank struct {
	Count int
	Span  Span
}

func (b *Blank) String() string { return "" }
func (b *Blank) GetSpan() Span  { return b.Span }
func (b *Blank) stmtNode()      {}

func stmtsString(stmts []Statement) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
