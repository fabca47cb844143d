package ast

// Deep cloning. The rewriter only ever mutates clones, so the tree held
// by the caller is never aliased. Every variant clones its children;
// spans are value types and copy for free.

// Clone returns a deep copy of the script.
func (s *Script) Clone() *Script {
	c := *s
	c.Statements = cloneStmts(s.Statements)
	return &c
}

func cloneStmts(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = s.CloneStmt()
	}
	return out
}

func cloneExprs(exprs []Expression) []Expression {
	if exprs == nil {
		return nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = e.CloneExpr()
	}
	return out
}

func cloneRedirects(rs []*Redirect) []*Redirect {
	if rs == nil {
		return nil
	}
	out := make([]*Redirect, len(rs))
	for i, r := range rs {
		out[i] = r.clone()
	}
	return out
}

// --- expressions ---

func (l *Literal) CloneExpr() Expression {
	c := *l
	return &c
}

func (v *VarRef) CloneExpr() Expression {
	c := *v
	return &c
}

func (a *ArrayLiteral) CloneExpr() Expression {
	c := *a
	c.Elements = cloneExprs(a.Elements)
	return &c
}

func (g *Glob) CloneExpr() Expression {
	c := *g
	return &c
}

func (n *ArithNode) clone() *ArithNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Left = n.Left.clone()
	c.Right = n.Right.clone()
	return &c
}

func (a *Arithmetic) CloneExpr() Expression {
	c := *a
	c.Expr = a.Expr.clone()
	return &c
}

func (cs *CommandSub) CloneExpr() Expression {
	c := *cs
	if cs.Body != nil {
		c.Body = cs.Body.Clone()
	}
	return &c
}

func (n *TestNode) clone() *TestNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Left = n.Left.clone()
	c.Right = n.Right.clone()
	return &c
}

func (t *TestExpr) CloneExpr() Expression {
	c := *t
	c.Expr = t.Expr.clone()
	return &c
}

// --- shell statements ---

func (s *SimpleCommand) CloneStmt() Statement {
	c := *s
	if s.Name != nil {
		c.Name = s.Name.CloneExpr()
	}
	c.Args = cloneExprs(s.Args)
	c.Redirects = cloneRedirects(s.Redirects)
	if s.Prefix != nil {
		c.Prefix = make([]*Assignment, len(s.Prefix))
		for i, a := range s.Prefix {
			c.Prefix[i] = a.CloneStmt().(*Assignment)
		}
	}
	return &c
}

func (p *Pipeline) CloneStmt() Statement {
	c := *p
	c.Commands = cloneStmts(p.Commands)
	return &c
}

func (a *AndOr) CloneStmt() Statement {
	c := *a
	c.Left = a.Left.CloneStmt()
	c.Right = a.Right.CloneStmt()
	return &c
}

func (i *If) CloneStmt() Statement {
	c := *i
	c.Cond = cloneStmts(i.Cond)
	c.Then = cloneStmts(i.Then)
	if i.Elifs != nil {
		c.Elifs = make([]ElifClause, len(i.Elifs))
		for j, e := range i.Elifs {
			c.Elifs[j] = ElifClause{
				Cond: cloneStmts(e.Cond),
				Body: cloneStmts(e.Body),
				Span: e.Span,
			}
		}
	}
	c.Else = cloneStmts(i.Else)
	return &c
}

func (w *While) CloneStmt() Statement {
	c := *w
	c.Cond = cloneStmts(w.Cond)
	c.Body = cloneStmts(w.Body)
	return &c
}

func (f *For) CloneStmt() Statement {
	c := *f
	c.Items = cloneExprs(f.Items)
	c.Body = cloneStmts(f.Body)
	return &c
}

func (f *CStyleFor) CloneStmt() Statement {
	c := *f
	c.Body = cloneStmts(f.Body)
	return &c
}

func (cs *Case) CloneStmt() Statement {
	c := *cs
	if cs.Word != nil {
		c.Word = cs.Word.CloneExpr()
	}
	if cs.Arms != nil {
		c.Arms = make([]CaseArm, len(cs.Arms))
		for i, arm := range cs.Arms {
			c.Arms[i] = CaseArm{
				Patterns:   cloneExprs(arm.Patterns),
				Body:       cloneStmts(arm.Body),
				Terminator: arm.Terminator,
				Span:       arm.Span,
			}
		}
	}
	return &c
}

func (s *Select) CloneStmt() Statement {
	c := *s
	c.Items = cloneExprs(s.Items)
	c.Body = cloneStmts(s.Body)
	return &c
}

func (f *FunctionDef) CloneStmt() Statement {
	c := *f
	c.Body = f.Body.CloneStmt()
	return &c
}

func (g *Group) CloneStmt() Statement {
	c := *g
	c.Body = cloneStmts(g.Body)
	return &c
}

func (n *Negated) CloneStmt() Statement {
	c := *n
	c.Cmd = n.Cmd.CloneStmt()
	return &c
}

func (cp *Coproc) CloneStmt() Statement {
	c := *cp
	c.Cmd = cp.Cmd.CloneStmt()
	return &c
}

func (a *Assignment) CloneStmt() Statement {
	c := *a
	if a.Value != nil {
		c.Value = a.Value.CloneExpr()
	}
	return &c
}

func (r *Return) CloneStmt() Statement {
	c := *r
	if r.Code != nil {
		c.Code = r.Code.CloneExpr()
	}
	return &c
}

func (e *Exit) CloneStmt() Statement {
	c := *e
	if e.Code != nil {
		c.Code = e.Code.CloneExpr()
	}
	return &c
}

func (cm *Comment) CloneStmt() Statement {
	c := *cm
	return &c
}

func (b *Blank) CloneStmt() Statement {
	c := *b
	return &c
}

// --- Makefile statements ---

func (m *MakeAssign) CloneStmt() Statement {
	c := *m
	return &c
}

func (r *Rule) CloneStmt() Statement {
	c := *r
	c.Targets = append([]string(nil), r.Targets...)
	c.Prereqs = append([]string(nil), r.Prereqs...)
	c.OrderOnly = append([]string(nil), r.OrderOnly...)
	if r.Recipe != nil {
		c.Recipe = make([]*RecipeLine, len(r.Recipe))
		for i, line := range r.Recipe {
			c.Recipe[i] = line.clone()
		}
	}
	return &c
}

func (i *Include) CloneStmt() Statement {
	c := *i
	c.Paths = append([]string(nil), i.Paths...)
	return &c
}

func (mc *MakeConditional) CloneStmt() Statement {
	c := *mc
	c.Then = cloneStmts(mc.Then)
	c.Else = cloneStmts(mc.Else)
	return &c
}

func (d *Directive) CloneStmt() Statement {
	c := *d
	c.Args = append([]string(nil), d.Args...)
	c.Body = append([]string(nil), d.Body...)
	return &c
}

// --- Dockerfile statements ---

func (f *DockerFrom) CloneStmt() Statement {
	c := *f
	return &c
}

func (d *DockerInstruction) CloneStmt() Statement {
	c := *d
	if d.Shell != nil {
		c.Shell = d.Shell.Clone()
	}
	return &c
}
