// Package macroexpand implements the Macro Expansion Pass (component J,
// spec.md §4.J), including the REDESIGN FLAG spec.md §9 calls for:
// reference wiring for a macro's returned expression is done by re-running
// component F's own fixed-point resolution (internal/sourcegraph.Driver),
// not by the original_source prototype's heuristic scan of existing edges
// for a matching local name. Grounded on
// original_source/src/execution_request/source_graph_to_js_execution_code.rs's
// expand_macros/execute_macro_call for the overall shape (capture each
// argument as a closure, invoke the runtime, splice the parsed result back
// in) while replacing its edge-search step with Driver.Drain.
package macroexpand

import (
	"fmt"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/closure"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/js_parser"
	"github.com/offloadmywork/funee/internal/js_printer"
	"github.com/offloadmywork/funee/internal/logger"
	"github.com/offloadmywork/funee/internal/macrodetect"
	"github.com/offloadmywork/funee/internal/macroruntime"
	"github.com/offloadmywork/funee/internal/sourcegraph"
)

// Expand runs component J over an already-built graph, mutating it in
// place: call sites are rewritten to their macro's result expression,
// ClosureValue argument nodes are added, and any newly-referenced
// declarations the result expression needs are resolved and added via the
// same Driver that built the graph.
func Expand(g *sourcegraph.Graph, driver *sourcegraph.Driver, log *logger.Log, maxIterations int) (int, error) {
	// Snapshot node keys up front: we mutate g.Nodes[...] declarations in
	// place but must not re-scan nodes created *during* this pass as new
	// call sites (spec.md §4.J's "ordering": one pass over all nodes).
	keys := make([]identifier.ID, len(g.Order))
	copy(keys, g.Order)

	auxiliary := collectAuxiliary(g)

	expanded := 0
	for _, nKey := range keys {
		n := g.Nodes[nKey]
		if n.Decl.Kind != declaration.KindVarInit || n.Decl.Init == nil {
			continue
		}
		call, ok := n.Decl.Init.(*ast.ECall)
		if !ok {
			continue
		}
		calleeName, args, ok := macrodetect.IsMacroCallSite(call)
		if !ok {
			continue
		}
		targetKey, hasEdge := g.Edges[nKey][calleeName]
		if !hasEdge || !g.MacroFunctions[targetKey] {
			continue
		}

		did, err := expandCallSite(g, driver, log, nKey, n, targetKey, calleeName, args, auxiliary, maxIterations)
		if err != nil {
			return expanded, err
		}
		if did {
			expanded++
		}
	}

	return expanded, nil
}

// expandCallSite implements spec.md §4.J steps 1-5 for a single node N.
func expandCallSite(
	g *sourcegraph.Graph,
	driver *sourcegraph.Driver,
	log *logger.Log,
	nKey identifier.ID,
	n *sourcegraph.Node,
	macroKey identifier.ID,
	macroLocalName string,
	args []ast.Expr,
	auxiliary []macroruntime.AuxMacro,
	maxIterations int,
) (bool, error) {
	// 1. Build current_scope_refs from N's out-edges, capture each
	// argument as a closure, and add it as a ClosureValue node.
	scopeRefs := make(map[string]string, len(g.Edges[nKey]))
	for label, target := range g.Edges[nKey] {
		scopeRefs[label] = target.String()
	}

	macroArgs := make([]macroruntime.MacroClosure, len(args))
	for i, a := range args {
		captured := closure.Capture(a, scopeRefs)

		argName := fmt.Sprintf("%s_arg%d", macroLocalName, i)
		argKey := identifier.ID{Name: argName, URI: n.ResolvedURI}
		g.Nodes[argKey] = &sourcegraph.Node{
			Key:         argKey,
			ResolvedURI: n.ResolvedURI,
			Decl: declaration.Declaration{
				Kind:        declaration.KindClosureValue,
				Init:        captured.Expr,
				ClosureRefs: captured.Refs,
			},
		}
		g.Order = append(g.Order, argKey)
		g.Edges[argKey] = make(map[string]identifier.ID)
		g.Edges[nKey][argName] = argKey

		// 2. Render the captured expression to source; substitute a bare
		// identifier's own *definition* text when it points at a local
		// VarInit/FnExpr, per spec.md §4.J step 2.
		source := renderArgumentSource(g, a, scopeRefs)
		refs := make(map[string]macroruntime.IdentRef, len(captured.Refs))
		for local, canonical := range captured.Refs {
			id := parseCanonical(canonical)
			refs[local] = macroruntime.IdentRef{URI: id.URI, Name: id.Name}
		}
		macroArgs[i] = macroruntime.MacroClosure{Source: source, Refs: refs}
	}

	// 3. auxiliary was precomputed for the whole pass; exclude the macro
	// being invoked from its own auxiliary list.
	callAuxiliary := make([]macroruntime.AuxMacro, 0, len(auxiliary))
	for _, a := range auxiliary {
		if a.Name != macroLocalName {
			callAuxiliary = append(callAuxiliary, a)
		}
	}

	macroNode := g.Nodes[macroKey]
	macroSource := js_printer.PrintExpr(&ast.EArrow{Fn: macroNode.Decl.Fn})

	// 4. Invoke the macro runtime.
	result, err := macroruntime.Invoke(macroSource, macroArgs, callAuxiliary, maxIterations)
	if err != nil {
		// 5. On failure, leave N untouched and surface the diagnostic.
		log.AddWarning(&logger.MsgLocation{URI: n.ResolvedURI, Name: macroLocalName}, err.Error())
		return false, nil
	}

	resultExpr, parseErr := js_parser.ParseExpr(result.Source)
	if parseErr != nil {
		log.AddWarning(&logger.MsgLocation{URI: n.ResolvedURI, Name: macroLocalName},
			fmt.Sprintf("macro result failed to parse: %s", parseErr))
		return false, nil
	}

	// Re-run the reference extractor's scope pass over the spliced
	// expression so its identifiers carry correct SymbolKind marks, then
	// wire every name the runtime reported as a new reference through the
	// SAME fixed-point resolution the builder uses (the REDESIGN FLAG of
	// spec.md §9), rather than searching existing edges for a match.
	sourcegraph.FreeReferences(declaration.Declaration{Kind: declaration.KindVarInit, Init: resultExpr})
	var seed []identifier.ID
	for local, ref := range result.Refs {
		candidate := identifier.ID{Name: ref.Name, URI: ref.URI}
		_, isNew, err := driver.ResolveCandidateAndAdd(g, nKey, candidate, local)
		if err != nil {
			return false, err
		}
		if isNew {
			seed = append(seed, g.Order[len(g.Order)-1])
		}
	}
	if len(seed) > 0 {
		if err := driver.Drain(g, seed); err != nil {
			return false, err
		}
	}

	n.Decl = declaration.Declaration{Kind: declaration.KindVarInit, Init: resultExpr}
	return true, nil
}

// renderArgumentSource implements spec.md §4.J step 2's substitution rule.
func renderArgumentSource(g *sourcegraph.Graph, arg ast.Expr, scopeRefs map[string]string) string {
	id, ok := arg.(*ast.EIdentifier)
	if !ok {
		return js_printer.PrintExpr(arg)
	}
	canonical, ok := scopeRefs[id.Name]
	if !ok {
		return js_printer.PrintExpr(arg)
	}
	target, ok := g.Nodes[parseCanonical(canonical)]
	if !ok {
		return js_printer.PrintExpr(arg)
	}
	switch target.Decl.Kind {
	case declaration.KindVarInit:
		return js_printer.PrintExpr(target.Decl.Init)
	case declaration.KindFnExpr:
		return js_printer.PrintExpr(&ast.EArrow{Fn: target.Decl.Fn})
	default:
		return js_printer.PrintExpr(arg)
	}
}

// collectAuxiliary renders every macro node's function source, for use as
// spec.md §4.I's "auxiliary" list.
func collectAuxiliary(g *sourcegraph.Graph) []macroruntime.AuxMacro {
	aux := macroruntime.WithBuiltins(nil)
	for key := range g.MacroFunctions {
		node, ok := g.Nodes[key]
		if !ok || node.Decl.Fn == nil {
			continue
		}
		aux = append(aux, macroruntime.AuxMacro{
			Name:   key.Name,
			Source: js_printer.PrintExpr(&ast.EArrow{Fn: node.Decl.Fn}),
		})
	}
	return aux
}

func parseCanonical(s string) identifier.ID {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '@' {
			return identifier.ID{Name: s[:i], URI: s[i+1:]}
		}
	}
	return identifier.ID{Name: s}
}
