package hostapi

import (
	"strings"
	"testing"
)

func TestLookupKnownNamespace(t *testing.T) {
	ns, ok := Lookup("fs")
	if !ok {
		t.Fatalf("expected fs namespace to be found")
	}
	if len(ns.Exports) == 0 {
		t.Fatalf("expected fs namespace to have exports")
	}
}

func TestLookupUnknownNamespace(t *testing.T) {
	if _, ok := Lookup("does-not-exist"); ok {
		t.Fatalf("expected unknown namespace to be absent")
	}
}

func TestRenderObjectLiteralOpWrapper(t *testing.T) {
	ns, _ := Lookup("fs")
	out := RenderObjectLiteral(ns)
	want := "readFile: (path) => Deno.core.ops.op_fsReadFile(path),"
	if !strings.Contains(out, want) {
		t.Fatalf("expected rendered fs namespace to contain %q, got:\n%s", want, out)
	}
}

func TestRenderObjectLiteralDefaultArg(t *testing.T) {
	ns, _ := Lookup("fs")
	out := RenderObjectLiteral(ns)
	want := "mkdir: (path, recursive) => Deno.core.ops.op_fsMkdir(path, recursive ?? false),"
	if !strings.Contains(out, want) {
		t.Fatalf("expected rendered fs namespace to contain %q, got:\n%s", want, out)
	}
}

func TestRenderObjectLiteralGlobalWrapper(t *testing.T) {
	ns, _ := Lookup("http")
	out := RenderObjectLiteral(ns)
	want := "fetch: globalThis.fetch,"
	if !strings.Contains(out, want) {
		t.Fatalf("expected rendered http namespace to contain %q, got:\n%s", want, out)
	}
}
