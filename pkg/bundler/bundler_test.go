package bundler

import (
	"strings"
	"testing"

	"github.com/offloadmywork/funee/internal/fs"
)

func TestBuildTwoFileChainEmitsCode(t *testing.T) {
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

	result := Build(Options{EntryURI: "/project/main.ts", FS: mockFS})
	if len(result.Messages) != 0 {
		t.Fatalf("expected no messages, got %v", result.Messages)
	}
	if !strings.Contains(result.Code, "function ") {
		t.Fatalf("expected emitted code to contain a function declaration:\n%s", result.Code)
	}
	if !strings.Contains(result.Code, "sourceMappingURL") {
		t.Fatalf("expected emitted code to contain an inline source map:\n%s", result.Code)
	}

	found := false
	for _, uri := range result.VisitedURIs {
		if uri == "/project/another.ts" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected VisitedURIs to include /project/another.ts, got %v", result.VisitedURIs)
	}
}

func TestBuildHostFnLog(t *testing.T) {
	mockFS := fs.NewMockFS(map[string]string{
		"/project/main.ts": `
			import { log } from "funee";
			export default function () {
				log("hello");
			}
		`,
	})

	result := Build(Options{EntryURI: "/project/main.ts", FS: mockFS})
	if len(result.Messages) != 0 {
		t.Fatalf("expected no messages, got %v", result.Messages)
	}
	if !strings.Contains(result.Code, "Deno.core.ops.op_log") {
		t.Fatalf("expected a log HostFn wrapper in output:\n%s", result.Code)
	}
}

func TestBuildMissingDeclarationReportsMessage(t *testing.T) {
	mockFS := fs.NewMockFS(map[string]string{
		"/project/main.ts": `
			export default function () {
				return doesNotExist();
			}
		`,
	})

	result := Build(Options{EntryURI: "/project/main.ts", FS: mockFS})
	if len(result.Messages) == 0 {
		t.Fatalf("expected a diagnostic message for the unresolved reference")
	}
}
