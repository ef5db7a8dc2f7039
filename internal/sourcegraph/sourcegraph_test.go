package sourcegraph

import (
	"testing"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/cache"
	"github.com/offloadmywork/funee/internal/config"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/fs"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/logger"
)

// TestBuildTwoFileChain grounds on original_source's it_works fixture: an
// entry module imports a non-exported function from a second file and
// calls it through the synthetic root expression.
func TestBuildTwoFileChain(t *testing.T) {
	mockFS := fs.NewMockFS(map[string]string{
		"/project/main.ts": `
			import { renameMe } from "./another.ts";
			export default function () {
				return renameMe(1, 2);
			}
		`,
		"/project/another.ts": `
			function renameMe(a, b) {
				return a + b;
			}
		`,
	})
	loader := cache.NewLoader(mockFS)
	opts := config.Options{}.WithDefaults()
	log := logger.NewLog()

	rootID := identifier.ID{Name: "<root>", URI: "/project/main.ts"}
	rootExpr := &ast.ECall{Target: &ast.EIdentifier{Name: "default"}}
	rootDecl := declaration.RootExpr(rootExpr)

	driver := NewDriver(opts, loader, log)
	g, err := driver.Build(rootID, rootDecl)
	if err != nil {
		t.Fatalf("Build failed: %v (log: %v)", err, log.Msgs())
	}

	defaultID := identifier.ID{Name: "default", URI: "/project/main.ts"}
	defNode, ok := g.Nodes[defaultID]
	if !ok {
		t.Fatalf("expected a node for default@/project/main.ts, got %v", g.Nodes)
	}
	if defNode.Decl.Kind != declaration.KindFnDecl {
		t.Fatalf("expected FnDecl, got %v", defNode.Decl.Kind)
	}

	renameMeID := identifier.ID{Name: "renameMe", URI: "/project/main.ts"}
	edges := g.Edges[defaultID]
	target, ok := edges["renameMe"]
	if !ok {
		t.Fatalf("expected an edge labeled renameMe from default, got %v", edges)
	}
	if target != renameMeID {
		t.Fatalf("expected edge target %v, got %v", renameMeID, target)
	}

	renameNode := g.Nodes[renameMeID]
	if renameNode.ResolvedURI != "/project/another.ts" {
		t.Fatalf("expected renameMe to resolve into another.ts, got %s", renameNode.ResolvedURI)
	}
	if renameNode.Decl.Kind != declaration.KindFnDecl {
		t.Fatalf("expected renameMe to be a FnDecl, got %v", renameNode.Decl.Kind)
	}
}

func TestBuildMacroDetection(t *testing.T) {
	mockFS := fs.NewMockFS(map[string]string{
		"/funee-lib/core.ts": `
			export function createMacro(fn) {
				return fn;
			}
		`,
		"/project/main.ts": `
			import { createMacro } from "funee";
			export const closure = createMacro(input => input);
			export default function () {
				return closure(1);
			}
		`,
	})
	loader := cache.NewLoader(mockFS)
	opts := config.Options{FuneeLibPath: "/funee-lib/core.ts"}.WithDefaults()
	log := logger.NewLog()

	rootID := identifier.ID{Name: "<root>", URI: "/project/main.ts"}
	rootExpr := &ast.ECall{Target: &ast.EIdentifier{Name: "default"}}
	rootDecl := declaration.RootExpr(rootExpr)

	driver := NewDriver(opts, loader, log)
	g, err := driver.Build(rootID, rootDecl)
	if err != nil {
		t.Fatalf("Build failed: %v (log: %v)", err, log.Msgs())
	}

	closureID := identifier.ID{Name: "closure", URI: "/project/main.ts"}
	closureNode, ok := g.Nodes[closureID]
	if !ok {
		t.Fatalf("expected a node for closure@/project/main.ts")
	}
	if closureNode.Decl.Kind != declaration.KindMacro {
		t.Fatalf("expected closure to be classified as Macro, got %v", closureNode.Decl.Kind)
	}
	if !g.MacroFunctions[closureID] {
		t.Fatalf("expected closure to be recorded in MacroFunctions")
	}

	createMacroID := identifier.ID{Name: "createMacro", URI: "/funee-lib/core.ts"}
	if createMacroNode, ok := g.Nodes[createMacroID]; ok && createMacroNode.Decl.Kind == declaration.KindMacro {
		t.Fatalf("createMacro itself must never be classified as Macro")
	}
}
