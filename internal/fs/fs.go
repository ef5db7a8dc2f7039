// Package fs is the file system abstraction the module loader (internal/cache)
// reads filesystem-URI declarations through, mirroring the teacher's own
// internal/fs split between a real OS-backed implementation and an in-memory
// mock used by tests. funee needs far less than the teacher's fs.FS: no zip
// overlay, no per-OS ModKey staleness tracking (component F's declaration
// cache is process-lifetime only; long-running rebuilds are handled by
// internal/watch re-running a fresh build, not by patching a stale graph).
package fs

import "fmt"

// ErrNotExist is returned by FS.ReadFile when the path does not exist.
var ErrNotExist = fmt.Errorf("file does not exist")

// FS is everything internal/cache needs to load a filesystem-URI module.
type FS interface {
	ReadFile(path string) (contents string, err error)
	IsAbs(path string) bool
	Abs(path string) (string, error)
	Dir(path string) string
	Join(parts ...string) string
}
