// Package renamer implements the Renamer (component K, spec.md §4.K): for
// every graph node, allocate a globally unique `declaration_i` symbol, then
// rewrite that node's own declaration so every out-edge label maps to its
// target's allocated symbol, leaving lexically-local names and JS globals
// untouched. Grounded in the teacher's internal/renamer (the
// ComputeReservedNames / per-scope substitution shape) and, more directly,
// in original_source/src/execution_request/get_references_from_
// declaration.rs's pure name-substitution renamer: no symbol table, just a
// map[string]string applied to each node's own free identifiers.
package renamer

import (
	"fmt"
	"sort"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/sourcegraph"
)

// SymbolPrefix matches spec.md §4.K/§4.L's `declaration_<index>` scheme.
const SymbolPrefix = "declaration_"

// Rename allocates a declaration_i symbol for every node in g (in a stable
// order: the root first, then Order's creation order, so rebuilding the
// same graph twice yields the same names) and substitutes every node's
// out-edge labels with its target's allocated symbol inside that node's
// own declaration. Returns the allocated symbol table, keyed by node key,
// for internal/emitter to render each node under.
func Rename(g *sourcegraph.Graph) map[identifier.ID]string {
	symbols := allocateSymbols(g)

	for _, nKey := range g.Order {
		n := g.Nodes[nKey]
		if n.Decl.Kind == declaration.KindMacro || n.Decl.Kind == declaration.KindClosureValue {
			// Elided from emitted output (spec.md §3.2); no point renaming
			// a body that will never be printed.
			continue
		}
		substitution := buildSubstitution(g, nKey, symbols)
		renameDeclaration(&n.Decl, substitution)
	}

	return symbols
}

// allocateSymbols assigns declaration_0, declaration_1, ... in a
// deterministic order: the root node always gets declaration_0 (it has no
// incoming edges and nothing depends on its name), then every other node
// in Graph.Order.
func allocateSymbols(g *sourcegraph.Graph) map[identifier.ID]string {
	symbols := make(map[identifier.ID]string, len(g.Nodes))
	index := 0
	assign := func(key identifier.ID) {
		if _, done := symbols[key]; done {
			return
		}
		symbols[key] = fmt.Sprintf("%s%d", SymbolPrefix, index)
		index++
	}

	assign(g.Root)
	for _, key := range g.Order {
		assign(key)
	}
	return symbols
}

// buildSubstitution is N's out-edge-label -> target-symbol map, the map
// renameDeclaration uses. It is an unordered Go map; callers that print it
// (tests, debug logging) get a stable label order from SortedLabels.
func buildSubstitution(g *sourcegraph.Graph, nKey identifier.ID, symbols map[identifier.ID]string) map[string]string {
	edges := g.Edges[nKey]
	sub := make(map[string]string, len(edges))
	for label, target := range edges {
		sub[label] = symbols[target]
	}
	return sub
}

// SortedLabels is a small test/debug helper: substitution map keys in
// stable order.
func SortedLabels(sub map[string]string) []string {
	labels := make([]string, 0, len(sub))
	for l := range sub {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// renameDeclaration applies a node's substitution map to its own free
// identifiers only: ast.VisitIdentifiers/VisitIdentifiersInStmt walk every
// identifier occurrence, and we rewrite exactly the ones the reference
// extractor earlier marked SymbolUnbound (a lexically-local name, even if
// it happens to collide with an out-edge label in some other node, is
// never touched — see ast.SymbolKind's doc comment).
func renameDeclaration(d *declaration.Declaration, substitution map[string]string) {
	apply := func(id *ast.EIdentifier) {
		if id.Kind != ast.SymbolUnbound {
			return
		}
		if newName, ok := substitution[id.Name]; ok {
			id.Name = newName
		}
	}

	switch d.Kind {
	case declaration.KindFnDecl, declaration.KindFnExpr:
		renameFn(d.Fn, apply)
	case declaration.KindExpr, declaration.KindVarInit:
		ast.VisitIdentifiers(d.Init, apply)
	}
}

func renameFn(fn *ast.Fn, apply func(*ast.EIdentifier)) {
	if fn == nil {
		return
	}
	if fn.Body != nil {
		for _, stmt := range fn.Body.Stmts {
			ast.VisitIdentifiersInStmt(stmt, apply)
		}
	}
	if fn.ExprBody != nil {
		ast.VisitIdentifiers(fn.ExprBody, apply)
	}
}
