package analyzer

import (
	"github.com/shellpure/shellpure/pkgs/ast"
)

// walkInfo is the pre-collected view of a script the rules run
// against. Collection order is source order, which makes the issue
// list deterministic for a given tree.
type walkInfo struct {
	script *ast.Script

	commands    []commandRef      // every simple command, nesting included
	pipelines   []*ast.Pipeline
	assignments []*ast.Assignment
	varRefs     []varRefUse

	// Makefile dialect
	makeRules   []*ast.Rule
	makeAssigns []*ast.MakeAssign

	// Dockerfile dialect
	dockerFroms []*ast.DockerFrom
	dockerInsts []*ast.DockerInstruction

	funcDepth int // collection-time nesting inside function bodies
}

// commandRef pairs a command with context the rules care about
type commandRef struct {
	cmd      *ast.SimpleCommand
	inSubst  bool // inside a command substitution
	fallback bool // part of an AndOr chain providing a fallback
	inFunc   bool // inside a function body
}

// varRefUse is a variable reference at its point of use
type varRefUse struct {
	ref      *ast.VarRef
	bareArg  bool // the reference is an entire unquoted argument
	inAssign bool
}

func collect(script *ast.Script) *walkInfo {
	w := &walkInfo{script: script}
	w.stmts(script.Statements, false, false)
	return w
}

func (w *walkInfo) stmts(stmts []ast.Statement, inSubst, fallback bool) {
	for _, s := range stmts {
		w.stmt(s, inSubst, fallback)
	}
}

func (w *walkInfo) stmt(s ast.Statement, inSubst, fallback bool) {
	switch n := s.(type) {
	case *ast.SimpleCommand:
		w.commands = append(w.commands, commandRef{cmd: n, inSubst: inSubst, fallback: fallback, inFunc: w.funcDepth > 0})
		for _, p := range n.Prefix {
			w.stmt(p, inSubst, fallback)
		}
		if n.Name != nil {
			w.expr(n.Name, false, inSubst)
		}
		for _, a := range n.Args {
			w.exprArg(a, inSubst)
		}
		for _, r := range n.Redirects {
			w.expr(r.Target, false, inSubst)
		}
	case *ast.Pipeline:
		w.pipelines = append(w.pipelines, n)
		w.stmts(n.Commands, inSubst, fallback)
	case *ast.AndOr:
		w.stmt(n.Left, inSubst, n.Op == "||" || fallback)
		w.stmt(n.Right, inSubst, fallback)
	case *ast.If:
		w.stmts(n.Cond, inSubst, fallback)
		w.stmts(n.Then, inSubst, fallback)
		for _, e := range n.Elifs {
			w.stmts(e.Cond, inSubst, fallback)
			w.stmts(e.Body, inSubst, fallback)
		}
		w.stmts(n.Else, inSubst, fallback)
	case *ast.While:
		w.stmts(n.Cond, inSubst, fallback)
		w.stmts(n.Body, inSubst, fallback)
	case *ast.For:
		for _, item := range n.Items {
			w.expr(item, false, inSubst)
		}
		w.stmts(n.Body, inSubst, fallback)
	case *ast.CStyleFor:
		w.stmts(n.Body, inSubst, fallback)
	case *ast.Case:
		w.expr(n.Word, false, inSubst)
		for _, arm := range n.Arms {
			w.stmts(arm.Body, inSubst, fallback)
		}
	case *ast.Select:
		for _, item := range n.Items {
			w.expr(item, false, inSubst)
		}
		w.stmts(n.Body, inSubst, fallback)
	case *ast.FunctionDef:
		w.funcDepth++
		w.stmt(n.Body, inSubst, fallback)
		w.funcDepth--
	case *ast.Group:
		w.stmts(n.Body, inSubst, fallback)
	case *ast.Negated:
		w.stmt(n.Cmd, inSubst, fallback)
	case *ast.Coproc:
		w.stmt(n.Cmd, inSubst, fallback)
	case *ast.Assignment:
		w.assignments = append(w.assignments, n)
		if n.Value != nil {
			w.exprIn(n.Value, inSubst)
		}
	case *ast.Return:
		if n.Code != nil {
			w.expr(n.Code, false, inSubst)
		}
	case *ast.Exit:
		if n.Code != nil {
			w.expr(n.Code, false, inSubst)
		}

	case *ast.Rule:
		w.makeRules = append(w.makeRules, n)
	case *ast.MakeAssign:
		w.makeAssigns = append(w.makeAssigns, n)
	case *ast.MakeConditional:
		w.stmts(n.Then, inSubst, fallback)
		w.stmts(n.Else, inSubst, fallback)

	case *ast.DockerFrom:
		w.dockerFroms = append(w.dockerFroms, n)
	case *ast.DockerInstruction:
		w.dockerInsts = append(w.dockerInsts, n)
		if n.Shell != nil {
			w.stmts(n.Shell.Statements, inSubst, fallback)
		}
	}
}

// exprArg records expressions appearing as whole command arguments
func (w *walkInfo) exprArg(e ast.Expression, inSubst bool) {
	w.expr(e, true, inSubst)
}

func (w *walkInfo) exprIn(e ast.Expression, inSubst bool) {
	if v, ok := e.(*ast.VarRef); ok {
		w.varRefs = append(w.varRefs, varRefUse{ref: v, inAssign: true})
		return
	}
	w.expr(e, false, inSubst)
}

func (w *walkInfo) expr(e ast.Expression, bareArg, inSubst bool) {
	switch n := e.(type) {
	case *ast.VarRef:
		w.varRefs = append(w.varRefs, varRefUse{ref: n, bareArg: bareArg})
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			w.expr(el, false, inSubst)
		}
	case *ast.CommandSub:
		if n.Body != nil {
			w.stmts(n.Body.Statements, true, false)
		}
	case *ast.TestExpr:
		// operands are plain words; nothing structural to record
	case *ast.Arithmetic, *ast.Literal, *ast.Glob:
	}
}
