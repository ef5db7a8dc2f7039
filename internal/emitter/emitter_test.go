package emitter

import (
	"strings"
	"testing"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/cache"
	"github.com/offloadmywork/funee/internal/config"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/fs"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/logger"
	"github.com/offloadmywork/funee/internal/renamer"
	"github.com/offloadmywork/funee/internal/sourcegraph"
)

func buildTestGraph(t *testing.T) (*sourcegraph.Graph, map[identifier.ID]string) {
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
	symbols := renamer.Rename(g)
	return g, symbols
}

func TestEmitProducesFunctionsAndCallsSourceMap(t *testing.T) {
	g, symbols := buildTestGraph(t)
	out := Emit(g, symbols)

	if !strings.Contains(out, "function ") {
		t.Fatalf("expected at least one function declaration in output:\n%s", out)
	}
	if !strings.Contains(out, "//# sourceMappingURL=data:application/json;base64,") {
		t.Fatalf("expected inline source map comment in output:\n%s", out)
	}
	// The root's call expression must appear as a bare statement.
	if !strings.Contains(out, "()") {
		t.Fatalf("expected a call expression in output:\n%s", out)
	}
}

func TestEmitIncludesHostPreamble(t *testing.T) {
	mockFS := fs.NewMockFS(map[string]string{
		"/project/main.ts": `
			import { readFile } from "host://fs";
			export default function () {
				return readFile("a.txt");
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
	symbols := renamer.Rename(g)
	out := Emit(g, symbols)

	if !strings.Contains(out, "var __host_fs = {") {
		t.Fatalf("expected a __host_fs preamble object in output:\n%s", out)
	}
	if !strings.Contains(out, "Deno.core.ops.op_fsReadFile") {
		t.Fatalf("expected the fs.readFile op wrapper in output:\n%s", out)
	}
}
