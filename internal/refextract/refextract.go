// Package refextract implements the Reference Extractor (component D,
// spec.md §4.D): given a declaration body, find the set of identifiers that
// are lexically *free* — not bound by any enclosing parameter, var/let/
// const, or function name within that same declaration.
//
// The teacher resolves this once, globally, at parse time via js_ast.Scope
// chains and a shared symbol table (every EIdentifier carries a Ref into
// it). funee's parser (internal/js_parser) does not build that scope chain
// — per original_source/src/execution_request/get_references_from_
// declaration.rs, the Rust prototype this module is distilled from re-walks
// each declaration's own subtree independently, tracking bound names in a
// plain set as it descends, and the renamer later substitutes by name, not
// symbol identity. This package follows the prototype: FreeInExpr and
// FreeInFn perform their own scope-tracking descent (entirely separate from ast.VisitIdentifiers,
// which has no notion of bindings) and, as a side effect of running,
// stamps ast.SymbolBound/SymbolUnbound onto each ast.EIdentifier it visits
// so a later pass (internal/renamer) can tell which occurrences are safe to
// rewrite without re-deriving scope from scratch.
package refextract

import "github.com/offloadmywork/funee/internal/ast"

// scope is a singly-linked set of names bound in the current lexical
// region, mirroring the teacher's js_ast.Scope chain but holding plain
// strings instead of symbol refs (see get_references_from_declaration.rs).
type scope struct {
	names  map[string]bool
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]bool), parent: parent}
}

func (s *scope) bind(name string) {
	if name != "" {
		s.names[name] = true
	}
}

func (s *scope) has(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}
	return false
}

// FreeInExpr returns the set of free identifier names reachable from e under
// the given initially-bound names (a function's own parameters, a
// FnDecl/FnExpr's own name for recursive calls). Matches spec.md §4.D's
// "operates on any of {FnDecl body, FnExpr, Expr, VarInit body, Macro
// body}" — the caller picks which AST root to pass in.
func FreeInExpr(e ast.Expr, initiallyBound ...string) map[string]bool {
	root := newScope(nil)
	for _, n := range initiallyBound {
		root.bind(n)
	}
	free := make(map[string]bool)
	walkExpr(e, root, free)
	return free
}

// FreeInFn is FreeInExpr for a function literal: its own parameters (and,
// for a named FnExpr/FnDecl, its own name, so recursive self-calls are not
// treated as free references) are bound in the function's top scope.
func FreeInFn(fn *ast.Fn, selfName string, initiallyBound ...string) map[string]bool {
	root := newScope(nil)
	for _, n := range initiallyBound {
		root.bind(n)
	}
	free := make(map[string]bool)
	walkFn(fn, selfName, root, free)
	return free
}

func walkFn(fn *ast.Fn, selfName string, parent *scope, free map[string]bool) {
	if fn == nil {
		return
	}
	s := newScope(parent)
	s.bind(selfName)
	for _, p := range fn.Params {
		s.bind(p.Name)
	}
	if fn.Body != nil {
		for _, stmt := range fn.Body.Stmts {
			walkStmt(stmt, s, free)
		}
	}
	if fn.ExprBody != nil {
		walkExpr(fn.ExprBody, s, free)
	}
}

func walkStmt(stmt ast.Stmt, s *scope, free map[string]bool) {
	switch n := stmt.(type) {
	case nil:
	case *ast.SExpr:
		walkExpr(n.Value, s, free)
	case *ast.SReturn:
		walkExpr(n.Value, s, free)
	case *ast.SBlock:
		inner := newScope(s)
		for _, child := range n.Stmts {
			walkStmt(child, inner, free)
		}
	case *ast.SIf:
		walkExpr(n.Test, s, free)
		walkStmt(n.Yes, s, free)
		walkStmt(n.No, s, free)
	case *ast.SVar:
		// "var a = a + 1;" sees its own prior bindings but not itself;
		// evaluate initializers before binding the declared name, matching
		// normal JS temporal-dead-zone-free "var"/hoisted semantics closely
		// enough for funee's purposes (declarations, not control flow).
		for _, d := range n.Decls {
			walkExpr(d.Init, s, free)
		}
		for _, d := range n.Decls {
			s.bind(d.Name)
		}
	case *ast.SFunctionDecl:
		s.bind(n.Name)
		walkFn(n.Fn, n.Name, s, free)
	case *ast.SExportDefaultExpr:
		walkExpr(n.Value, s, free)
	case *ast.SImport, *ast.SExportNamed:
		// handled at the module/declaration-extraction level, not here
	}
}

func walkExpr(e ast.Expr, s *scope, free map[string]bool) {
	switch n := e.(type) {
	case nil:
	case *ast.EIdentifier:
		if s.has(n.Name) {
			n.Kind = ast.SymbolBound
		} else {
			n.Kind = ast.SymbolUnbound
			free[n.Name] = true
		}
	case *ast.ENumber, *ast.EString, *ast.EBoolean, *ast.ENull, *ast.EUndefined, *ast.EThis:
	case *ast.EArray:
		for _, item := range n.Items {
			walkExpr(item, s, free)
		}
	case *ast.EObject:
		for _, p := range n.Properties {
			if p.Computed {
				walkExpr(p.KeyExpr, s, free)
			}
			walkExpr(p.Value, s, free)
		}
	case *ast.EFunction:
		walkFn(n.Fn, n.Name, s, free)
	case *ast.EArrow:
		walkFn(n.Fn, "", s, free)
	case *ast.ECall:
		walkExpr(n.Target, s, free)
		for _, a := range n.Args {
			walkExpr(a, s, free)
		}
	case *ast.ENew:
		walkExpr(n.Target, s, free)
		for _, a := range n.Args {
			walkExpr(a, s, free)
		}
	case *ast.EMember:
		walkExpr(n.Target, s, free)
		if n.Computed {
			walkExpr(n.Index, s, free)
		}
	case *ast.EBinary:
		walkExpr(n.Left, s, free)
		walkExpr(n.Right, s, free)
	case *ast.EUnary:
		walkExpr(n.Value, s, free)
	case *ast.ECond:
		walkExpr(n.Test, s, free)
		walkExpr(n.Yes, s, free)
		walkExpr(n.No, s, free)
	case *ast.EAssign:
		walkExpr(n.Target, s, free)
		walkExpr(n.Value, s, free)
	case *ast.ESpread:
		walkExpr(n.Value, s, free)
	case *ast.ETemplate:
		for _, x := range n.Exprs {
			walkExpr(x, s, free)
		}
	case *ast.EAwait:
		walkExpr(n.Value, s, free)
	}
}
