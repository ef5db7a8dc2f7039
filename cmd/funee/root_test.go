package main

import (
	"path/filepath"
	"testing"
)

func TestExpandPathEmptyStringShortCircuits(t *testing.T) {
	got, err := expandPath("")
	if err != nil {
		t.Fatalf("expandPath(\"\"): %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty result for empty input, got %q", got)
	}
}

func TestExpandPathMakesRelativePathAbsolute(t *testing.T) {
	got, err := expandPath("main.ts")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected an absolute path, got %q", got)
	}
	if filepath.Base(got) != "main.ts" {
		t.Fatalf("expected the base name to be preserved, got %q", got)
	}
}

func TestExpandPathLeavesAbsolutePathAlone(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "project", "main.ts")
	got, err := expandPath(abs)
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != abs {
		t.Fatalf("expected %q to be left unchanged, got %q", abs, got)
	}
}
