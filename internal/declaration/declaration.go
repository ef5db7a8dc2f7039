// Package declaration implements the Declaration tagged union (spec.md
// §3.2) and the Declaration Extractor (component C, spec.md §4.C): turning
// a parsed module into a name → Declaration map keyed by top-level binding
// name. Grounded in the teacher's internal/js_ast symbol-kind tagging style
// (here a single struct tagged by a Kind field, standing in for a Rust enum)
// and in original_source/src/execution_request/declaration.rs, whose
// into_module_item match arms this package's Kind enum mirrors one for
// one.
package declaration

import "github.com/offloadmywork/funee/internal/ast"

// Kind tags which Declaration variant a value holds.
type Kind int

const (
	KindFnDecl Kind = iota
	KindFnExpr
	KindExpr
	KindVarInit
	KindMacro
	KindClosureValue
	KindFuneeIdentifier
	KindHostFn
	KindHostModule
)

func (k Kind) String() string {
	switch k {
	case KindFnDecl:
		return "FnDecl"
	case KindFnExpr:
		return "FnExpr"
	case KindExpr:
		return "Expr"
	case KindVarInit:
		return "VarInit"
	case KindMacro:
		return "Macro"
	case KindClosureValue:
		return "ClosureValue"
	case KindFuneeIdentifier:
		return "FuneeIdentifier"
	case KindHostFn:
		return "HostFn"
	case KindHostModule:
		return "HostModule"
	default:
		return "Unknown"
	}
}

// Declaration is the tagged union of spec.md §3.2. Exactly the fields
// relevant to Kind are populated; the rest are zero. A struct-of-optionals
// rather than an interface hierarchy, matching declaration.rs's single Rust
// enum more directly than a Go type-switch over concrete structs would.
type Declaration struct {
	Kind Kind

	// FnDecl, FnExpr, Macro: the function literal.
	Fn *ast.Fn
	// FnDecl: the declared name (informational; the emitter always renders
	// under the allocated declaration_i symbol regardless).
	Name string

	// Expr, VarInit: the initializer/root expression.
	Init ast.Expr

	// ClosureValue: the captured expression's references map (the
	// expression itself is in Init; local name -> canonical identifier
	// string, filled in by
	// internal/closure; stored here as opaque strings to avoid an import
	// cycle with internal/identifier's consumers).
	ClosureRefs map[string]string

	// FuneeIdentifier: the unresolved re-export pointer.
	ReexportName string
	ReexportURI  string

	// HostFn: the op-name the emitter renders as Deno.core.ops.op_<name>.
	HostOpName string

	// HostModule: the (namespace, export-name) pair.
	HostNamespace  string
	HostExportName string
}

// Map is a single module's extracted declarations, keyed by exported
// binding name (spec.md §4.C). Per the Declaration Extractor's resolved
// Open Question (see DESIGN.md), every top-level binding is indexed by
// name regardless of whether it carries the `export` keyword — the
// original_source test fixture `another.ts` imports a non-exported
// `function renameMe()` successfully, so visibility is not gate-kept here;
// it is a TypeScript-level concern the distilled spec's prose overstates.
type Map map[string]Declaration

// Extract implements component C: given a parsed module and the
// macro-constructor recognizer (component H, wired in by the caller to
// avoid a declaration<->macrodetect import cycle), produce a Map.
func Extract(mod *ast.Module, isMacroConstructorCall func(init ast.Expr) bool) Map {
	out := make(Map)

	for _, stmt := range mod.Stmts {
		switch s := stmt.(type) {
		case *ast.SFunctionDecl:
			name := s.Name
			if s.Default {
				name = "default"
			}
			out[name] = Declaration{Kind: KindFnDecl, Fn: s.Fn, Name: name}

		case *ast.SExportDefaultExpr:
			out["default"] = declarationForInit(s.Value, isMacroConstructorCall)

		case *ast.SVar:
			for _, d := range s.Decls {
				out[d.Name] = declarationForInit(d.Init, isMacroConstructorCall)
			}

		case *ast.SExportNamed:
			if s.Source != "" {
				for _, spec := range s.Specifiers {
					out[spec.Exported] = Declaration{
						Kind:         KindFuneeIdentifier,
						ReexportName: spec.Local,
						ReexportURI:  s.Source,
					}
				}
			}

		case *ast.SImport:
			if s.Source == "" {
				continue
			}
			for _, spec := range s.Specifiers {
				out[spec.Local] = Declaration{
					Kind:         KindFuneeIdentifier,
					ReexportName: spec.Imported,
					ReexportURI:  s.Source,
				}
			}
		}
	}

	return out
}

func declarationForInit(init ast.Expr, isMacroConstructorCall func(ast.Expr) bool) Declaration {
	if init == nil {
		return Declaration{Kind: KindVarInit}
	}
	if isMacroConstructorCall != nil && isMacroConstructorCall(init) {
		call := init.(*ast.ECall)
		var fn *ast.Fn
		if len(call.Args) > 0 {
			switch arg := call.Args[0].(type) {
			case *ast.EFunction:
				fn = arg.Fn
			case *ast.EArrow:
				fn = arg.Fn
			}
		}
		return Declaration{Kind: KindMacro, Fn: fn, Init: init}
	}
	if fn, ok := init.(*ast.EFunction); ok {
		return Declaration{Kind: KindFnExpr, Fn: fn.Fn, Name: fn.Name}
	}
	if arrow, ok := init.(*ast.EArrow); ok {
		return Declaration{Kind: KindFnExpr, Fn: arrow.Fn}
	}
	return Declaration{Kind: KindVarInit, Init: init}
}

// RootExpr builds the synthetic Expr declaration for the entry root call,
// e.g. `default()` (spec.md §3.2's "Expr (used for the root)").
func RootExpr(e ast.Expr) Declaration {
	return Declaration{Kind: KindExpr, Init: e}
}
