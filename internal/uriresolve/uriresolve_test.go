package uriresolve

import "testing"

func TestResolveFilesystemRelative(t *testing.T) {
	got, err := Resolve("./util.ts", "/project/src/main.ts", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/project/src/util.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFilesystemParentRelative(t *testing.T) {
	got, err := Resolve("../lib/util.ts", "/project/src/main.ts", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/project/lib/util.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFilesystemAbsolute(t *testing.T) {
	got, err := Resolve("/opt/util.ts", "/project/src/main.ts", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/opt/util.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFuneeStdlib(t *testing.T) {
	got, err := Resolve("funee", "/project/src/main.ts", "/funee-lib/core.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/funee-lib/core.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveFuneeMissingStdlib(t *testing.T) {
	_, err := Resolve("funee", "/project/src/main.ts", "")
	if err != ErrMissingStdlib {
		t.Fatalf("expected ErrMissingStdlib, got %v", err)
	}
}

func TestResolveHostUnchanged(t *testing.T) {
	got, err := Resolve("host://fs", "/project/src/main.ts", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "host://fs" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveHTTPRelative(t *testing.T) {
	got, err := Resolve("./util.ts", "https://cdn.example.com/pkg/main.ts", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://cdn.example.com/pkg/util.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveHTTPAbsolutePath(t *testing.T) {
	got, err := Resolve("/other/util.ts", "https://cdn.example.com/pkg/main.ts", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://cdn.example.com/other/util.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveMalformedBase(t *testing.T) {
	_, err := Resolve("./util.ts", "https://[::1", "")
	if err == nil {
		t.Fatalf("expected error")
	}
}
