// Package macrodetect implements the Macro Detector (component H, spec.md
// §4.H), supplemented by original_source/src/execution_request/
// declaration.rs and tests.rs::test_macro_detection (see SPEC_FULL.md
// §4.H/§4.I): a declaration is a Macro iff its initializer is a call whose
// callee, resolved within its own declaring module's scope, is an import of
// the standard library's `createMacro` export. The function whose body
// *is* `createMacro` itself is never mistaken for a macro instance — it is
// an ordinary FnDecl (SPEC_FULL.md §8 scenario 7).
package macrodetect

import "github.com/offloadmywork/funee/internal/ast"

// MacroConstructorName is the canonical standard-library export that marks
// a variable initializer as a macro (funee-lib/core.ts's createMacro).
const MacroConstructorName = "createMacro"

// IsMacroConstructorCall reports whether init is a call of the form
// `createMacro(fn)` where the callee identifier is, in the declaring
// module's import bindings, bound to the standard library's createMacro
// export. importsFromStdlib maps a local name to true when that local name
// was imported from the "funee" specifier under MacroConstructorName — the
// caller (internal/declaration's Extract, driven by internal/sourcegraph)
// supplies this from the module's own SImport statements so this package
// never has to resolve URIs itself.
func IsMacroConstructorCall(init ast.Expr, importsFromStdlib func(localName string) bool) bool {
	call, ok := init.(*ast.ECall)
	if !ok {
		return false
	}
	id, ok := call.Target.(*ast.EIdentifier)
	if !ok {
		return false
	}
	if importsFromStdlib == nil {
		return false
	}
	return importsFromStdlib(id.Name)
}

// StdlibImportBindings scans a module's import statements for bindings of
// MacroConstructorName from the "funee" specifier, returning a lookup
// function suitable for IsMacroConstructorCall. "funee-lib" modules that
// re-export createMacro under another name are out of scope: spec.md §4.H
// requires the import be "under the canonical name".
func StdlibImportBindings(mod *ast.Module) func(localName string) bool {
	bound := make(map[string]bool)
	for _, stmt := range mod.Stmts {
		imp, ok := stmt.(*ast.SImport)
		if !ok || imp.Source != "funee" {
			continue
		}
		for _, spec := range imp.Specifiers {
			if spec.Imported == MacroConstructorName {
				bound[spec.Local] = true
			}
		}
	}
	return func(localName string) bool { return bound[localName] }
}

// IsMacroCallSite implements the call-site half of component H: once the
// graph is complete, a call `f(args...)` is a macro invocation iff f is a
// free identifier whose local name is a label of an out-edge pointing at a
// node already recorded in macro_functions. Resolving "f" to a target node
// is the caller's job (internal/sourcegraph owns the edge-label table);
// this function only recognizes the call shape.
func IsMacroCallSite(e ast.Expr) (callee string, args []ast.Expr, ok bool) {
	call, ok := e.(*ast.ECall)
	if !ok {
		return "", nil, false
	}
	id, ok := call.Target.(*ast.EIdentifier)
	if !ok {
		return "", nil, false
	}
	return id.Name, call.Args, true
}
