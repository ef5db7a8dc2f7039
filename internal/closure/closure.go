// Package closure implements Closure Capture (component G, spec.md §3.3,
// §4.G): pairing an expression with the subset of the surrounding scope map
// it actually needs. Grounded in the same original_source prototype's
// closure-construction step inside source_graph.rs's macro-call handling
// (process_macro_calls), which builds one ClosureValue per macro argument
// keyed by the free names the argument expression actually references.
package closure

import (
	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/refextract"
)

// Closure is spec.md §3.3: an expression plus a references-map from the
// local name it appeared under to the canonical identifier (rendered as a
// "name@uri" string, matching identifier.ID.String()) that name resolves
// to in the capturing scope.
type Closure struct {
	Expr ast.Expr
	Refs map[string]string
}

// Capture implements component G exactly: it runs the reference extractor
// over e and keeps only the entries of scopeRefs whose keys are actually
// free in e, discarding anything in scopeRefs the expression never uses.
func Capture(e ast.Expr, scopeRefs map[string]string) Closure {
	free := refextract.FreeInExpr(e)
	refs := make(map[string]string, len(free))
	for name := range free {
		if target, ok := scopeRefs[name]; ok {
			refs[name] = target
		}
	}
	return Closure{Expr: e, Refs: refs}
}
