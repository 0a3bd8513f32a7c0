package ast

// Context carries the state a rule needs to know "where it is" in the tree
// without re-scanning ancestors, mirroring spec.md §4.D: function/loop/case
// depth accumulated as Walk descends.
type Context struct {
	FuncDepth int
	LoopDepth int
	CaseDepth int
}

func (c Context) inFunction() bool { return c.FuncDepth > 0 }
func (c Context) inLoop() bool     { return c.LoopDepth > 0 }

// InFunction reports whether the walk is currently inside a Function body.
func (c Context) InFunction() bool { return c.inFunction() }

// InLoop reports whether the walk is currently inside a For/CFor/While/Until
// body.
func (c Context) InLoop() bool { return c.inLoop() }

// Visitor is invoked pre-order for every statement and expression Walk
// reaches. Either callback may be nil. Returning false from VisitStmt skips
// that subtree's children (used by rules that only care about top-level
// shape).
type Visitor struct {
	VisitStmt func(s Stmt, ctx Context) bool
	VisitExpr func(e Expr, ctx Context)
}

// Walk performs a pre-order traversal of stmts, calling v's callbacks and
// threading Context depth updates the way spec.md §4.D requires so rules
// like "break/continue only inside a loop" or "local only inside a
// function" need no separate tree scan.
func Walk(stmts []Stmt, ctx Context, v Visitor) {
	for _, s := range stmts {
		walkStmt(s, ctx, v)
	}
}

func walkStmt(s Stmt, ctx Context, v Visitor) {
	if s == nil {
		return
	}
	descend := true
	if v.VisitStmt != nil {
		descend = v.VisitStmt(s, ctx)
	}
	if !descend {
		return
	}

	switch n := s.(type) {
	case *Assignment:
		walkExpr(n.Value, ctx, v)
	case *Command:
		walkExpr(n.Name, ctx, v)
		for _, a := range n.Args {
			walkExpr(a, ctx, v)
		}
		for _, r := range n.Redirects {
			walkExpr(r.Target, ctx, v)
		}
	case *Pipeline:
		for _, st := range n.Stages {
			walkStmt(st, ctx, v)
		}
	case *AndList:
		walkStmt(n.Left, ctx, v)
		walkStmt(n.Right, ctx, v)
	case *OrList:
		walkStmt(n.Left, ctx, v)
		walkStmt(n.Right, ctx, v)
	case *If:
		walkStmt(n.Cond, ctx, v)
		Walk(n.Then, ctx, v)
		for _, arm := range n.ElifArms {
			walkStmt(arm.Cond, ctx, v)
			Walk(arm.Body, ctx, v)
		}
		Walk(n.Else, ctx, v)
	case *For:
		for _, w := range n.Words {
			walkExpr(w, ctx, v)
		}
		loopCtx := ctx
		loopCtx.LoopDepth++
		Walk(n.Body, loopCtx, v)
	case *CFor:
		loopCtx := ctx
		loopCtx.LoopDepth++
		Walk(n.Body, loopCtx, v)
	case *While:
		walkStmt(n.Cond, ctx, v)
		loopCtx := ctx
		loopCtx.LoopDepth++
		Walk(n.Body, loopCtx, v)
	case *Until:
		walkStmt(n.Cond, ctx, v)
		loopCtx := ctx
		loopCtx.LoopDepth++
		Walk(n.Body, loopCtx, v)
	case *Case:
		walkExpr(n.Word, ctx, v)
		caseCtx := ctx
		caseCtx.CaseDepth++
		for _, arm := range n.Arms {
			for _, p := range arm.Patterns {
				walkExpr(p, caseCtx, v)
			}
			Walk(arm.Body, caseCtx, v)
		}
	case *Function:
		funcCtx := ctx
		funcCtx.FuncDepth++
		Walk(n.Body, funcCtx, v)
	case *BraceGroup:
		Walk(n.Body, ctx, v)
	case *Subshell:
		Walk(n.Body, ctx, v)
	case *Return:
		walkExpr(n.Value, ctx, v)
	}
}

func walkExpr(e Expr, ctx Context, v Visitor) {
	if e == nil {
		return
	}
	if v.VisitExpr != nil {
		v.VisitExpr(e, ctx)
	}
	switch n := e.(type) {
	case *CommandSubstitution:
		walkStmt(n.Body, ctx, v)
	case *ProcessSubstitution:
		walkStmt(n.Body, ctx, v)
	case *Concatenation:
		for _, p := range n.Parts {
			walkExpr(p, ctx, v)
		}
	case *StringDouble:
		for _, seg := range n.Segments {
			if seg.Expr != nil {
				walkExpr(seg.Expr, ctx, v)
			}
		}
	case *Array:
		for _, el := range n.Elements {
			walkExpr(el, ctx, v)
		}
	case *TestExpr:
		for _, o := range n.Operands {
			walkExpr(o, ctx, v)
		}
	}
}

// Folder rebuilds a statement list, applying FoldStmt/FoldExpr bottom-up —
// the transformation trait the purifier uses (spec.md §4.D: "a companion
// folder trait for transformations that build a new AST"). A nil callback
// leaves that node unchanged.
type Folder struct {
	FoldStmt func(s Stmt) Stmt
	FoldExpr func(e Expr) Expr
}

// FoldStmts rewrites every statement in stmts bottom-up: children are
// folded first, then the (possibly rebuilt) node is passed to f.FoldStmt.
func FoldStmts(stmts []Stmt, f Folder) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, foldStmt(s, f))
	}
	return out
}

func foldStmt(s Stmt, f Folder) Stmt {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *Assignment:
		cp := *n
		cp.Value = foldExpr(n.Value, f)
		s = &cp
	case *Command:
		cp := *n
		cp.Name = foldExpr(n.Name, f)
		cp.Args = foldExprs(n.Args, f)
		cp.Redirects = foldRedirects(n.Redirects, f)
		s = &cp
	case *Pipeline:
		cp := *n
		cp.Stages = FoldStmts(n.Stages, f)
		s = &cp
	case *AndList:
		cp := *n
		cp.Left = foldStmt(n.Left, f)
		cp.Right = foldStmt(n.Right, f)
		s = &cp
	case *OrList:
		cp := *n
		cp.Left = foldStmt(n.Left, f)
		cp.Right = foldStmt(n.Right, f)
		s = &cp
	case *If:
		cp := *n
		cp.Cond = foldStmt(n.Cond, f)
		cp.Then = FoldStmts(n.Then, f)
		elifs := make([]ElifArm, len(n.ElifArms))
		for i, arm := range n.ElifArms {
			elifs[i] = ElifArm{Cond: foldStmt(arm.Cond, f), Body: FoldStmts(arm.Body, f)}
		}
		cp.ElifArms = elifs
		cp.Else = FoldStmts(n.Else, f)
		s = &cp
	case *For:
		cp := *n
		cp.Words = foldExprs(n.Words, f)
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *CFor:
		cp := *n
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *While:
		cp := *n
		cp.Cond = foldStmt(n.Cond, f)
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *Until:
		cp := *n
		cp.Cond = foldStmt(n.Cond, f)
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *Case:
		cp := *n
		cp.Word = foldExpr(n.Word, f)
		arms := make([]CaseArm, len(n.Arms))
		for i, arm := range n.Arms {
			arms[i] = CaseArm{Patterns: foldExprs(arm.Patterns, f), Body: FoldStmts(arm.Body, f), Terminator: arm.Terminator}
		}
		cp.Arms = arms
		s = &cp
	case *Function:
		cp := *n
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *BraceGroup:
		cp := *n
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *Subshell:
		cp := *n
		cp.Body = FoldStmts(n.Body, f)
		s = &cp
	case *Return:
		cp := *n
		cp.Value = foldExpr(n.Value, f)
		s = &cp
	}
	if f.FoldStmt != nil {
		return f.FoldStmt(s)
	}
	return s
}

func foldExprs(exprs []Expr, f Folder) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = foldExpr(e, f)
	}
	return out
}

func foldRedirects(rs []Redirect, f Folder) []Redirect {
	out := make([]Redirect, len(rs))
	for i, r := range rs {
		cp := r
		cp.Target = foldExpr(r.Target, f)
		out[i] = cp
	}
	return out
}

func foldExpr(e Expr, f Folder) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *CommandSubstitution:
		cp := *n
		cp.Body = foldStmt(n.Body, f)
		e = &cp
	case *ProcessSubstitution:
		cp := *n
		cp.Body = foldStmt(n.Body, f)
		e = &cp
	case *Concatenation:
		cp := *n
		cp.Parts = foldExprs(n.Parts, f)
		e = &cp
	case *StringDouble:
		cp := *n
		segs := make([]StringSegment, len(n.Segments))
		for i, seg := range n.Segments {
			if seg.Expr != nil {
				seg.Expr = foldExpr(seg.Expr, f)
			}
			segs[i] = seg
		}
		cp.Segments = segs
		e = &cp
	case *Array:
		cp := *n
		cp.Elements = foldExprs(n.Elements, f)
		e = &cp
	case *TestExpr:
		cp := *n
		cp.Operands = foldExprs(n.Operands, f)
		e = &cp
	}
	if f.FoldExpr != nil {
		return f.FoldExpr(e)
	}
	return e
}
