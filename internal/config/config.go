// Package config holds the one typed place every compile-time knob for a
// funee build lives, mirroring the teacher's own internal/config.Options: a
// single struct threaded through the pipeline by value/pointer rather than
// package-level globals, so a host program can run more than one build
// (e.g. a watch-mode rebuild, see internal/watch) without them interfering.
package config

import (
	"github.com/offloadmywork/funee/internal/identifier"
)

// HostFunctionEntry is one row of the host-function registry (spec.md
// §6.2): a canonical identifier a module can import, bound to the op-name
// the emitter (component L) renders into a Deno.core.ops.op_<name> call.
type HostFunctionEntry struct {
	ID     identifier.ID
	OpName string
}

// Options is every knob internal/sourcegraph, internal/macroexpand, and
// internal/emitter need. cmd/funee builds one of these from cobra flags
// layered with an optional viper-loaded config file (SPEC_FULL.md §2.3).
type Options struct {
	// EntryURI is the canonical URI of the entry module (already resolved;
	// cmd/funee resolves a CLI-relative path before constructing Options).
	EntryURI string

	// EntryExportName is the export of the entry module the root expression
	// calls, e.g. "default" for `export default async function () {...}`
	// called as `default()` (spec.md §8 scenario 1). Defaults to "default".
	EntryExportName string

	// FuneeLibPath is the canonical URI the bare "funee" specifier resolves
	// to (spec.md §4.E). A build with no standard-library imports may leave
	// this empty; resolving "funee" then fails per spec.md §4.E.
	FuneeLibPath string

	// HostFunctions is the pre-wired-by-name host function registry
	// (spec.md §6.2): the source graph builder (component F) turns a
	// reference to one of these into a "HostFn" declaration.
	HostFunctions []HostFunctionEntry

	// MaxMacroIterations bounds macro execution (spec.md §4.I).
	MaxMacroIterations int
}

// DefaultMaxMacroIterations matches the funee prototype's own constant
// (source_graph_to_js_execution_code.rs: MAX_ITERATIONS).
const DefaultMaxMacroIterations = 100

// WithDefaults fills in the zero-value defaults SPEC_FULL.md §2.3 names.
func (o Options) WithDefaults() Options {
	if o.EntryExportName == "" {
		o.EntryExportName = "default"
	}
	if o.MaxMacroIterations == 0 {
		o.MaxMacroIterations = DefaultMaxMacroIterations
	}
	return o
}
