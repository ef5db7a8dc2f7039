// Package funeelib is funee's bundled standard library: the `funee`
// specifier (internal/uriresolve's bare "funee" rule) resolves to this
// source text rather than to a file on disk, the same way the teacher
// bundles internal/runtime's helper code as a Go string constant instead
// of shipping it as a loose .js file next to the binary. Grounded on
// SPEC_FULL.md §4.H's `createMacro<T, R>(fn: (closure: T) => R)` signature
// and §4.I's builtin-macro supplement (`quote`, `inline`), both distilled
// from original_source's prototype stdlib.
package funeelib

// Source is the canonical "funee" module's text. cmd/funee/pkg/bundler
// registers it in the module loader under config.Options.FuneeLibPath so
// internal/uriresolve.Resolve's bare "funee" rule has somewhere to point.
const Source = `
// createMacro marks its argument function as a compile-time macro: a call
// to the binding it returns is recognized by the macro detector (4.H) and
// expanded at build time rather than left as a runtime call.
export function createMacro(fn) {
	return fn;
}

// quote is the identity macro: it returns its argument closure unexpanded,
// useful for a macro author who wants to pass an unevaluated expression
// through to another macro.
export const quote = createMacro((closure) => closure);

// inline requires exactly one argument and splices that argument's body in
// place of the call site, rather than a call to it. A single-argument
// arrow closure's source looks like "(x) => <body>" or "(x) => { ... }";
// everything after the first "=>" is spliced in verbatim.
export const inline = createMacro((closure) => {
	const arrowBody = closure.source.slice(closure.source.indexOf("=>") + 2).trimStart();
	return makeClosure(arrowBody, closure.refs);
});
`

// FuneeInternalURI is the "funee:internal" URI spec.md §6.2 names as the
// non-importable home of preamble-only bindings (accessed by emitted
// preamble code only, never by user import).
const FuneeInternalURI = "funee:internal"
