// Package macroruntime implements the Macro Runtime (component I, spec.md
// §4.I): a sandboxed, deterministic, bounded evaluator for bundle-time
// macro execution. Grounded in github.com/dop251/goja's use as an
// embedded, isolated ECMAScript sandbox in both grafana-k6
// (js-modules-resolution.go's per-VM isolation pattern) and
// sentrie-sh-sentrie's runtime-executor.go (a fresh goja.Runtime per
// invocation, no shared state across calls — see its Executor interface);
// funee copies that "one Runtime, no reuse" discipline directly (spec.md
// §4.I's Isolation property, reiterated in SPEC_FULL.md §4.H/§4.I).
package macroruntime

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

// ErrMaxIterationsExceeded is spec.md §4.I's bounded-execution failure: a
// macro call chain (via callMacro/auxiliary) recursed past max_iterations.
var ErrMaxIterationsExceeded = errors.New("macroruntime: max_iterations exceeded")

// executionBudget is a wall-clock backstop against a macro body looping
// forever without ever recursing through an auxiliary macro (so the
// iteration counter alone would never catch it). grafana-k6 and similar
// embedders interrupt a goja.Runtime from a watchdog goroutine for the same
// reason; max_iterations bounds macro-calls-macro recursion, this bounds
// plain infinite loops within a single macro body.
const executionBudget = 2 * time.Second

// IdentRef is one entry of a MacroClosure's references-map: the canonical
// (uri, export-name) a locally-scoped name resolves to (spec.md §3.3).
type IdentRef struct {
	URI  string
	Name string
}

// MacroClosure is spec.md §4.I's (expression-source-string, references-map)
// pair — the wire format macro arguments and macro results both use.
type MacroClosure struct {
	Source string
	Refs   map[string]IdentRef
}

// AuxMacro is one entry of spec.md §4.I's "auxiliary" list: another macro
// in the build, available to be called from inside the macro being
// executed, by name.
type AuxMacro struct {
	Name   string
	Source string
}

// Invoke implements component I's contract. macroSource is the macro
// function's own textual source (e.g. "(closure) => closure" for the builtin
// `quote`, or a user's exported macro function body); args are the
// captured closures built by internal/closure for the call site's
// arguments; auxiliary is every other macro known to the build, including
// the two builtins registered by WithBuiltins.
func Invoke(macroSource string, args []MacroClosure, auxiliary []AuxMacro, maxIterations int) (MacroClosure, error) {
	// runID correlates this invocation's diagnostics across a build's log
	// output (jinterlante1206-AleutianLocal's short-uuid-suffix style);
	// it carries no execution semantics, only log identity.
	runID := uuid.NewString()[:8]
	vm := goja.New()

	timer := time.AfterFunc(executionBudget, func() {
		vm.Interrupt("macroruntime: execution budget exceeded")
	})
	defer timer.Stop()

	iterations := 0
	budget := func() error {
		iterations++
		if iterations > maxIterations {
			return ErrMaxIterationsExceeded
		}
		return nil
	}

	compiled := make(map[string]goja.Callable, len(auxiliary))
	for _, aux := range auxiliary {
		fn, err := compileFunction(vm, aux.Source)
		if err != nil {
			return MacroClosure{}, fmt.Errorf("macroruntime: compiling auxiliary %q: %w", aux.Name, err)
		}
		compiled[aux.Name] = fn
		name := aux.Name
		target := fn
		if err := vm.Set(name, func(call goja.FunctionCall) goja.Value {
			if err := budget(); err != nil {
				panic(vm.ToValue(err.Error()))
			}
			return callCompiled(vm, target, call.Arguments)
		}); err != nil {
			return MacroClosure{}, fmt.Errorf("macroruntime: binding auxiliary %q: %w", aux.Name, err)
		}
	}

	if err := vm.Set("callMacro", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.ToValue("callMacro: missing macro name"))
		}
		name := call.Arguments[0].String()
		fn, ok := compiled[name]
		if !ok {
			panic(vm.ToValue(fmt.Sprintf("callMacro: unknown auxiliary macro %q", name)))
		}
		if err := budget(); err != nil {
			panic(vm.ToValue(err.Error()))
		}
		return callCompiled(vm, fn, call.Arguments[1:])
	}); err != nil {
		return MacroClosure{}, fmt.Errorf("macroruntime: binding callMacro: %w", err)
	}

	if err := vm.Set("makeClosure", func(source string, refs map[string]IdentRef) goja.Value {
		return wrapClosure(vm, MacroClosure{Source: source, Refs: refs})
	}); err != nil {
		return MacroClosure{}, fmt.Errorf("macroruntime: binding makeClosure: %w", err)
	}

	mainFn, err := compileFunction(vm, macroSource)
	if err != nil {
		return MacroClosure{}, fmt.Errorf("macroruntime[%s]: compiling macro: %w", runID, err)
	}

	wrappedArgs := make([]goja.Value, len(args))
	for i, a := range args {
		wrappedArgs[i] = wrapClosure(vm, a)
	}

	result, err := mainFn(goja.Undefined(), wrappedArgs...)
	if err != nil {
		if ex, ok := err.(*goja.Exception); ok {
			return MacroClosure{}, fmt.Errorf("macroruntime[%s]: macro execution failed: %s", runID, ex.Value().String())
		}
		return MacroClosure{}, fmt.Errorf("macroruntime[%s]: macro execution failed: %w", runID, err)
	}

	return unwrapClosure(result)
}

func compileFunction(vm *goja.Runtime, source string) (goja.Callable, error) {
	val, err := vm.RunString("(" + source + ")")
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(val)
	if !ok {
		return nil, fmt.Errorf("source does not evaluate to a function: %s", source)
	}
	return fn, nil
}

func callCompiled(vm *goja.Runtime, fn goja.Callable, args []goja.Value) goja.Value {
	result, err := fn(goja.Undefined(), args...)
	if err != nil {
		panic(vm.ToValue(err.Error()))
	}
	return result
}

func wrapClosure(vm *goja.Runtime, c MacroClosure) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("source", c.Source)
	refs := make(map[string]interface{}, len(c.Refs))
	for name, ref := range c.Refs {
		refs[name] = map[string]interface{}{"uri": ref.URI, "name": ref.Name}
	}
	_ = obj.Set("refs", refs)
	_ = obj.Set("toString", func() string { return c.Source })
	return obj
}

func unwrapClosure(v goja.Value) (MacroClosure, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return MacroClosure{}, errors.New("macroruntime: macro returned no value")
	}
	if s, ok := v.Export().(string); ok {
		return MacroClosure{Source: s}, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return MacroClosure{}, fmt.Errorf("macroruntime: macro result is not a closure object or string (got %s)", v.ExportType())
	}

	sourceVal := obj.Get("source")
	if sourceVal == nil || goja.IsUndefined(sourceVal) {
		return MacroClosure{}, errors.New("macroruntime: macro result is missing a \"source\" field")
	}
	source := sourceVal.String()

	refs := make(map[string]IdentRef)
	if refsVal := obj.Get("refs"); refsVal != nil && !goja.IsUndefined(refsVal) {
		refsObj, ok := refsVal.(*goja.Object)
		if ok {
			for _, key := range refsObj.Keys() {
				entry := refsObj.Get(key)
				entryObj, ok := entry.(*goja.Object)
				if !ok {
					continue
				}
				refs[key] = IdentRef{
					URI:  entryObj.Get("uri").String(),
					Name: entryObj.Get("name").String(),
				}
			}
		}
	}

	return MacroClosure{Source: source, Refs: refs}, nil
}

// WithBuiltins prepends funee-lib/core.ts's two macro-adjacent builtins
// (SPEC_FULL.md §4.H/§4.I) to a build's auxiliary list: `quote`, the
// identity macro that returns its argument closure unexpanded, and
// `inline`, which splices a single-argument arrow's body rather than a
// re-expression of it. Both are plain JS here, not special-cased Go logic,
// so a user-authored macro can call them exactly like any other auxiliary.
func WithBuiltins(auxiliary []AuxMacro) []AuxMacro {
	builtins := []AuxMacro{
		{Name: "quote", Source: "(closure) => closure"},
		{
			Name: "inline",
			// A single-argument arrow closure's source looks like
			// "(x) => <body>" or "(x) => { <stmts> }"; splice whatever
			// follows the first "=>" verbatim rather than wrapping it in
			// another call, which is what distinguishes `inline` from
			// `quote` per SPEC_FULL.md's description.
			Source: `(closure) => {
				const arrowBody = closure.source.replace(/^[^=]*=>\s*/, "");
				return makeClosure(arrowBody, closure.refs);
			}`,
		},
	}
	out := make([]AuxMacro, 0, len(builtins)+len(auxiliary))
	out = append(out, builtins...)
	out = append(out, auxiliary...)
	return out
}
