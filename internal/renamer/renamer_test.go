package renamer

import (
	"testing"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/cache"
	"github.com/offloadmywork/funee/internal/config"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/fs"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/logger"
	"github.com/offloadmywork/funee/internal/sourcegraph"
)

func buildTwoFileChain(t *testing.T) *sourcegraph.Graph {
	t.Helper()
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

	driver := sourcegraph.NewDriver(opts, loader, log)
	g, err := driver.Build(rootID, rootDecl)
	if err != nil {
		t.Fatalf("Build failed: %v (log: %v)", err, log.Msgs())
	}
	return g
}

func TestRenameAllocatesRootAsDeclarationZero(t *testing.T) {
	g := buildTwoFileChain(t)

	symbols := Rename(g)

	if got := symbols[g.Root]; got != "declaration_0" {
		t.Fatalf("expected root to be declaration_0, got %q", got)
	}
}

func TestRenameAllocatesDistinctSymbolsForEveryNode(t *testing.T) {
	g := buildTwoFileChain(t)

	symbols := Rename(g)

	if len(symbols) != len(g.Nodes) {
		t.Fatalf("expected one symbol per node: got %d symbols for %d nodes", len(symbols), len(g.Nodes))
	}
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if seen[sym] {
			t.Fatalf("expected every allocated symbol to be unique, found duplicate %q", sym)
		}
		seen[sym] = true
	}
}

func TestRenameSubstitutesOutEdgeReferences(t *testing.T) {
	g := buildTwoFileChain(t)

	symbols := Rename(g)

	defaultID := identifier.ID{Name: "default", URI: "/project/main.ts"}
	renameMeID := identifier.ID{Name: "renameMe", URI: "/project/main.ts"}

	defNode := g.Nodes[defaultID]
	renameMeSymbol := symbols[renameMeID]

	found := false
	ast.VisitIdentifiersInStmt(defNode.Decl.Fn.Body.Stmts[0], func(id *ast.EIdentifier) {
		if id.Name == renameMeSymbol {
			found = true
		}
	})
	if !found {
		t.Fatalf("expected default's body to reference renameMe's allocated symbol %q after renaming", renameMeSymbol)
	}
}

func TestRenameIsStableAcrossRepeatedBuilds(t *testing.T) {
	g1 := buildTwoFileChain(t)
	g2 := buildTwoFileChain(t)

	symbols1 := Rename(g1)
	symbols2 := Rename(g2)

	defaultID := identifier.ID{Name: "default", URI: "/project/main.ts"}
	if symbols1[defaultID] != symbols2[defaultID] {
		t.Fatalf("expected the same source graph to allocate the same symbol across builds, got %q and %q",
			symbols1[defaultID], symbols2[defaultID])
	}
}
