package macroexpand

import (
	"strings"
	"testing"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/cache"
	"github.com/offloadmywork/funee/internal/config"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/fs"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/js_printer"
	"github.com/offloadmywork/funee/internal/logger"
	"github.com/offloadmywork/funee/internal/sourcegraph"
)

// buildGraph mirrors internal/sourcegraph's own TestBuildMacroDetection
// fixture: a funee-lib/core.ts provides createMacro, main.ts defines a
// macro that doubles whatever expression it is given, and calls it.
func buildGraph(t *testing.T, mainSource string) (*sourcegraph.Graph, *sourcegraph.Driver, *logger.Log) {
	t.Helper()
	mockFS := fs.NewMockFS(map[string]string{
		"/funee-lib/core.ts": `
			export function createMacro(fn) {
				return fn;
			}
		`,
		"/project/main.ts": mainSource,
	})
	loader := cache.NewLoader(mockFS)
	opts := config.Options{FuneeLibPath: "/funee-lib/core.ts"}.WithDefaults()
	log := logger.NewLog()

	rootID := identifier.ID{Name: "<root>", URI: "/project/main.ts"}
	rootExpr := &ast.ECall{Target: &ast.EIdentifier{Name: "default"}}
	rootDecl := declaration.RootExpr(rootExpr)

	driver := sourcegraph.NewDriver(opts, loader, log)
	g, err := driver.Build(rootID, rootDecl)
	if err != nil {
		t.Fatalf("Build failed: %v (log: %v)", err, log.Msgs())
	}
	return g, driver, log
}

func TestExpandRewritesMacroCallSite(t *testing.T) {
	g, driver, log := buildGraph(t, `
		import { createMacro } from "funee";
		const double = createMacro((x) => x.source + " * 2");
		const doubled = double(21);
		export default function () {
			return doubled;
		}
	`)

	expanded, err := Expand(g, driver, log, 10)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if expanded != 1 {
		t.Fatalf("expected exactly one expansion, got %d", expanded)
	}

	doubledID := identifier.ID{Name: "doubled", URI: "/project/main.ts"}
	doubledNode, ok := g.Nodes[doubledID]
	if !ok {
		t.Fatalf("expected a node for the call site %v", doubledID)
	}
	if doubledNode.Decl.Kind != declaration.KindVarInit {
		t.Fatalf("expected the call site to be a VarInit of the macro's result, got %s", doubledNode.Decl.Kind)
	}

	printed := js_printer.PrintExpr(doubledNode.Decl.Init)
	if strings.Contains(printed, "double(") {
		t.Fatalf("expected the call site to be replaced by the macro's result, still found double(...) in %q", printed)
	}
}

func TestExpandLeavesNonMacroCallsAlone(t *testing.T) {
	g, driver, log := buildGraph(t, `
		function plain(x) {
			return x + 1;
		}
		export default function () {
			return plain(41);
		}
	`)

	expanded, err := Expand(g, driver, log, 10)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if expanded != 0 {
		t.Fatalf("expected no expansions for a plain function call, got %d", expanded)
	}
}

func TestExpandReportsErrorOnUnparsableMacroResult(t *testing.T) {
	g, driver, log := buildGraph(t, `
		import { createMacro } from "funee";
		const broken = createMacro((x) => "not an expr;;;(");
		const result = broken(1);
		export default function () {
			return result;
		}
	`)

	expanded, err := Expand(g, driver, log, 10)
	if err != nil {
		t.Fatalf("Expand returned an error instead of logging a diagnostic: %v", err)
	}
	if expanded != 0 {
		t.Fatalf("expected the broken macro not to count as a successful expansion, got %d", expanded)
	}
	msgs := log.Msgs()
	if len(msgs) == 0 || msgs[0].Kind != logger.Warning {
		t.Fatalf("expected a logged warning for the unparsable macro result, got %v", msgs)
	}
}
