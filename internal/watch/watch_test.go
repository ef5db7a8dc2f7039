package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(file, []byte("export default 1;"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	w, err := New(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	w.SetPaths([]string{file})

	if err := os.WriteFile(file, []byte("export default 2;"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case changed := <-w.Events():
		if len(changed) == 0 {
			t.Fatalf("expected at least one changed path")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a change event")
	}
}

func TestSessionIDStableAndNonEmpty(t *testing.T) {
	w, err := New(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	id := w.SessionID()
	if id == "" {
		t.Fatalf("expected a non-empty session id")
	}
	if w.SessionID() != id {
		t.Fatalf("expected SessionID to be stable across calls, got %q then %q", id, w.SessionID())
	}
}

func TestSetPathsSkipsNonFilesystemURIs(t *testing.T) {
	w, err := New(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	// Neither of these is a local path; SetPaths must not attempt to add
	// them to the underlying fsnotify watcher.
	w.SetPaths([]string{"host://fs", "https://example.com/mod.ts"})
	if len(w.watched) != 0 {
		t.Fatalf("expected no watched paths, got %v", w.watched)
	}
}
