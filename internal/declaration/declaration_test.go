package declaration

import (
	"testing"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/js_parser"
)

func parseModule(t *testing.T, source string) *ast.Module {
	t.Helper()
	mod, err := js_parser.Parse(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return mod
}

func TestExtractFunctionDeclAndDefaultExport(t *testing.T) {
	mod := parseModule(t, `
		function add(a, b) {
			return a + b;
		}
		export default function () {
			return add(1, 2);
		}
	`)

	out := Extract(mod, nil)

	add, ok := out["add"]
	if !ok || add.Kind != KindFnDecl {
		t.Fatalf("expected add to be a FnDecl, got %+v (ok=%v)", add, ok)
	}

	def, ok := out["default"]
	if !ok || def.Kind != KindFnDecl {
		t.Fatalf("expected default to be a FnDecl, got %+v (ok=%v)", def, ok)
	}
}

func TestExtractImportIsFuneeIdentifier(t *testing.T) {
	mod := parseModule(t, `import { log } from "funee";`)

	out := Extract(mod, nil)

	logDecl, ok := out["log"]
	if !ok || logDecl.Kind != KindFuneeIdentifier {
		t.Fatalf("expected log to be a FuneeIdentifier, got %+v (ok=%v)", logDecl, ok)
	}
	if logDecl.ReexportName != "log" || logDecl.ReexportURI != "funee" {
		t.Fatalf("expected reexport (log, funee), got (%s, %s)", logDecl.ReexportName, logDecl.ReexportURI)
	}
}

func TestExtractReexportIsFuneeIdentifier(t *testing.T) {
	mod := parseModule(t, `export { helper as useHelper } from "./util.ts";`)

	out := Extract(mod, nil)

	decl, ok := out["useHelper"]
	if !ok || decl.Kind != KindFuneeIdentifier {
		t.Fatalf("expected useHelper to be a FuneeIdentifier, got %+v (ok=%v)", decl, ok)
	}
	if decl.ReexportName != "helper" || decl.ReexportURI != "./util.ts" {
		t.Fatalf("expected reexport (helper, ./util.ts), got (%s, %s)", decl.ReexportName, decl.ReexportURI)
	}
}

func TestExtractVarInitPlainExpression(t *testing.T) {
	mod := parseModule(t, `const x = 1 + 2;`)

	out := Extract(mod, nil)

	x, ok := out["x"]
	if !ok || x.Kind != KindVarInit {
		t.Fatalf("expected x to be a VarInit, got %+v (ok=%v)", x, ok)
	}
}

func TestExtractMacroConstructorCall(t *testing.T) {
	mod := parseModule(t, `const myMacro = createMacro((x) => x);`)

	isMacroCtor := func(init ast.Expr) bool {
		call, ok := init.(*ast.ECall)
		if !ok {
			return false
		}
		id, ok := call.Target.(*ast.EIdentifier)
		return ok && id.Name == "createMacro"
	}

	out := Extract(mod, isMacroCtor)

	m, ok := out["myMacro"]
	if !ok || m.Kind != KindMacro {
		t.Fatalf("expected myMacro to be a Macro, got %+v (ok=%v)", m, ok)
	}
	if m.Fn == nil {
		t.Fatalf("expected myMacro's Fn to be populated from its argument arrow")
	}
}

func TestExtractNonExportedBindingIsStillIndexed(t *testing.T) {
	// original_source's another.ts fixture imports a non-exported function
	// successfully: visibility is not gate-kept by the extractor.
	mod := parseModule(t, `
		function renameMe(a, b) {
			return a + b;
		}
	`)

	out := Extract(mod, nil)

	if _, ok := out["renameMe"]; !ok {
		t.Fatalf("expected renameMe to be indexed even though it is not exported")
	}
}

func TestRootExprWrapsCallExpression(t *testing.T) {
	call := &ast.ECall{Target: &ast.EIdentifier{Name: "default"}}
	decl := RootExpr(call)

	if decl.Kind != KindExpr {
		t.Fatalf("expected Kind Expr, got %v", decl.Kind)
	}
	if decl.Init != ast.Expr(call) {
		t.Fatalf("expected Init to be the given call expression")
	}
}
