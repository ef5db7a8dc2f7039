// Package emitter implements the Emitter (component L, spec.md §4.L):
// walk the renamed source graph in post order from the root and print one
// JS statement per node, prefixed by a preamble object for every
// `host://` namespace a node referenced, and followed by an inline source
// map (internal/sourcemap). Grounded on
// original_source/src/execution_request/source_graph_to_js_execution_code.rs,
// whose per-variant match arms (FnDecl -> function statement, VarInit ->
// var statement, HostFn -> Deno.core.ops wrapper, HostModule -> preamble
// property access) this file follows one for one, adapted to print through
// internal/js_printer instead of building strings by hand.
package emitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/hostapi"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/js_printer"
	"github.com/offloadmywork/funee/internal/sourcegraph"
	"github.com/offloadmywork/funee/internal/sourcemap"
)

// Emit walks g in post order from g.Root (every out-edge target printed
// before the node that references it, spec.md §4.L's "dependencies before
// dependents" ordering) and renders the whole program: host preamble
// objects, then one statement per non-elided node, then an inline source
// map comment.
func Emit(g *sourcegraph.Graph, symbols map[identifier.ID]string) string {
	order := postOrder(g)

	namespaces := usedNamespaces(g, order)
	sm := sourcemap.NewBuilder()

	var b strings.Builder

	// Preamble lines are synthetic (not sourced from any input file) and
	// get no source map entry.
	for _, ns := range namespaces {
		table, _ := hostapi.Lookup(ns)
		fmt.Fprintf(&b, "var __host_%s = %s;\n", jsSafeNamespace(ns), hostapi.RenderObjectLiteral(table))
	}

	for _, key := range order {
		n := g.Nodes[key]
		if n.Decl.Kind == declaration.KindMacro || n.Decl.Kind == declaration.KindClosureValue {
			continue
		}
		stmtSrc := renderNode(key, n, symbols)
		if stmtSrc == "" {
			continue
		}
		sm.AddLine(countNewlines(b.String()), n.ResolvedURI)
		b.WriteString(stmtSrc)
	}

	b.WriteString(sm.InlineComment())
	return b.String()
}

// postOrder returns every node reachable from g.Root, dependencies before
// dependents, visiting g.Edges in a name-sorted order for determinism
// (map iteration order is not stable across runs).
func postOrder(g *sourcegraph.Graph) []identifier.ID {
	visited := make(map[identifier.ID]bool)
	var order []identifier.ID

	var visit func(key identifier.ID)
	visit = func(key identifier.ID) {
		if visited[key] {
			return
		}
		visited[key] = true
		edges := g.Edges[key]
		labels := make([]string, 0, len(edges))
		for l := range edges {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			visit(edges[l])
		}
		order = append(order, key)
	}
	visit(g.Root)

	// Any node Build/Expand created but that fell out of the live edge set
	// (shouldn't normally happen, but a stray macro-expansion artifact is
	// harmless to include) still gets emitted, in creation order, after
	// everything reachable from the root.
	for _, key := range g.Order {
		if !visited[key] {
			visited[key] = true
			order = append(order, key)
		}
	}
	return order
}

// usedNamespaces returns every distinct HostModule namespace referenced by
// any node in order, sorted, so the preamble is both complete and
// deterministic.
func usedNamespaces(g *sourcegraph.Graph, order []identifier.ID) []string {
	seen := make(map[string]bool)
	for _, key := range order {
		if n := g.Nodes[key]; n.Decl.Kind == declaration.KindHostModule {
			seen[n.Decl.HostNamespace] = true
		}
	}
	names := make([]string, 0, len(seen))
	for ns := range seen {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

func jsSafeNamespace(ns string) string {
	return strings.ReplaceAll(ns, "/", "_")
}

// renderNode prints one node's statement per spec.md §4.L's variant table.
func renderNode(key identifier.ID, n *sourcegraph.Node, symbols map[identifier.ID]string) string {
	symbol := symbols[key]

	switch n.Decl.Kind {
	case declaration.KindFnDecl, declaration.KindFnExpr:
		stmt := &ast.SFunctionDecl{Name: symbol, Fn: n.Decl.Fn}
		return js_printer.PrintModule(&ast.Module{Stmts: []ast.Stmt{stmt}})

	case declaration.KindVarInit:
		init := n.Decl.Init
		if init == nil {
			init = &ast.EUndefined{}
		}
		stmt := &ast.SVar{Kind: "var", Decls: []ast.VarDecl{{Name: symbol, Init: init}}}
		return js_printer.PrintModule(&ast.Module{Stmts: []ast.Stmt{stmt}})

	case declaration.KindExpr:
		// The synthetic root expression (spec.md §8 scenario 1): emitted
		// as a bare expression statement, not bound to any symbol, since
		// nothing ever references the root node by name.
		stmt := &ast.SExpr{Value: n.Decl.Init}
		return js_printer.PrintModule(&ast.Module{Stmts: []ast.Stmt{stmt}})

	case declaration.KindHostFn:
		fn := &ast.Fn{
			Params:   []ast.Param{{Name: "args", Rest: true}},
			ExprBody: hostOpsCall(n.Decl.HostOpName),
		}
		stmt := &ast.SFunctionDecl{Name: symbol, Fn: fn}
		return js_printer.PrintModule(&ast.Module{Stmts: []ast.Stmt{stmt}})

	case declaration.KindHostModule:
		target := &ast.EMember{
			Target: &ast.EIdentifier{Name: "__host_" + jsSafeNamespace(n.Decl.HostNamespace), Kind: ast.SymbolUnbound},
			Name:   n.Decl.HostExportName,
		}
		stmt := &ast.SVar{Kind: "var", Decls: []ast.VarDecl{{Name: symbol, Init: target}}}
		return js_printer.PrintModule(&ast.Module{Stmts: []ast.Stmt{stmt}})

	default: // Macro, ClosureValue, FuneeIdentifier: never reach here.
		return ""
	}
}

// hostOpsCall builds "Deno.core.ops.op_<name>(...args)".
func hostOpsCall(opName string) ast.Expr {
	opsMember := &ast.EMember{
		Target: &ast.EMember{
			Target: &ast.EIdentifier{Name: "Deno", Kind: ast.SymbolUnbound},
			Name:   "core",
		},
		Name: "ops",
	}
	callee := &ast.EMember{Target: opsMember, Name: "op_" + opName}
	return &ast.ECall{
		Target: callee,
		Args:   []ast.Expr{&ast.ESpread{Value: &ast.EIdentifier{Name: "args", Kind: ast.SymbolBound}}},
	}
}

func countNewlines(s string) int {
	return strings.Count(s, "\n")
}
