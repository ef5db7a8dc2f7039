package ast

// VisitIdentifiers calls fn once for every identifier occurrence reachable
// from e, in a stable left-to-right, outer-to-inner order. The renamer
// (internal/renamer) uses it to rewrite a node's own declaration body in
// place by mutating each *EIdentifier through fn; internal/refextract does
// its own scope-tracking walk instead.
func VisitIdentifiers(e Expr, fn func(*EIdentifier)) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *EIdentifier:
		fn(n)
	case *ENumber, *EString, *EBoolean, *ENull, *EUndefined, *EThis:
		// leaves
	case *EArray:
		for _, item := range n.Items {
			VisitIdentifiers(item, fn)
		}
	case *EObject:
		for _, p := range n.Properties {
			if p.Computed {
				VisitIdentifiers(p.KeyExpr, fn)
			}
			VisitIdentifiers(p.Value, fn)
		}
	case *EFunction:
		visitFn(n.Fn, fn)
	case *EArrow:
		visitFn(n.Fn, fn)
	case *ECall:
		VisitIdentifiers(n.Target, fn)
		for _, a := range n.Args {
			VisitIdentifiers(a, fn)
		}
	case *ENew:
		VisitIdentifiers(n.Target, fn)
		for _, a := range n.Args {
			VisitIdentifiers(a, fn)
		}
	case *EMember:
		VisitIdentifiers(n.Target, fn)
		if n.Computed {
			VisitIdentifiers(n.Index, fn)
		}
	case *EBinary:
		VisitIdentifiers(n.Left, fn)
		VisitIdentifiers(n.Right, fn)
	case *EUnary:
		VisitIdentifiers(n.Value, fn)
	case *ECond:
		VisitIdentifiers(n.Test, fn)
		VisitIdentifiers(n.Yes, fn)
		VisitIdentifiers(n.No, fn)
	case *EAssign:
		VisitIdentifiers(n.Target, fn)
		VisitIdentifiers(n.Value, fn)
	case *ESpread:
		VisitIdentifiers(n.Value, fn)
	case *ETemplate:
		for _, x := range n.Exprs {
			VisitIdentifiers(x, fn)
		}
	case *EAwait:
		VisitIdentifiers(n.Value, fn)
	}
}

func visitFn(f *Fn, fn func(*EIdentifier)) {
	if f == nil {
		return
	}
	if f.Body != nil {
		for _, s := range f.Body.Stmts {
			VisitIdentifiersInStmt(s, fn)
		}
	}
	if f.ExprBody != nil {
		VisitIdentifiers(f.ExprBody, fn)
	}
}

// VisitIdentifiersInStmt is VisitIdentifiers for the statement forms a
// Declaration body can contain (function/arrow bodies, var initializers).
func VisitIdentifiersInStmt(s Stmt, fn func(*EIdentifier)) {
	if s == nil {
		return
	}
	switch n := s.(type) {
	case *SExpr:
		VisitIdentifiers(n.Value, fn)
	case *SReturn:
		VisitIdentifiers(n.Value, fn)
	case *SBlock:
		for _, child := range n.Stmts {
			VisitIdentifiersInStmt(child, fn)
		}
	case *SIf:
		VisitIdentifiers(n.Test, fn)
		VisitIdentifiersInStmt(n.Yes, fn)
		VisitIdentifiersInStmt(n.No, fn)
	case *SVar:
		for _, d := range n.Decls {
			VisitIdentifiers(d.Init, fn)
		}
	case *SFunctionDecl:
		visitFn(n.Fn, fn)
	case *SExportDefaultExpr:
		VisitIdentifiers(n.Value, fn)
	case *SImport, *SExportNamed:
		// no expressions to visit
	}
}
