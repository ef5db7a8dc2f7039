// Package bundler exposes funee's one operation — building the source
// graph rooted at an entry module's export into a single emitted JS
// program — as a library API, the same role the teacher's pkg/api plays
// for esbuild: a small Options/Result pair and a single entry function,
// intended for both cmd/funee and any other Go program that wants to run
// funee without shelling out to a child process.
package bundler

import (
	"fmt"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/cache"
	"github.com/offloadmywork/funee/internal/config"
	"github.com/offloadmywork/funee/internal/declaration"
	"github.com/offloadmywork/funee/internal/emitter"
	"github.com/offloadmywork/funee/internal/fs"
	"github.com/offloadmywork/funee/internal/funeelib"
	"github.com/offloadmywork/funee/internal/identifier"
	"github.com/offloadmywork/funee/internal/js_parser"
	"github.com/offloadmywork/funee/internal/logger"
	"github.com/offloadmywork/funee/internal/macroexpand"
	"github.com/offloadmywork/funee/internal/renamer"
	"github.com/offloadmywork/funee/internal/sourcegraph"
)

// Message mirrors one collected diagnostic, the same flattened shape the
// teacher's pkg/api.Message exposes to callers who don't want internal/
// logger's richer Msg type in their import graph.
type Message struct {
	Text     string
	URI      string
	Referrer string
}

// Options is everything a single Build call needs. EntryURI must already
// be a canonical URI (a caller passing a relative CLI path resolves it
// against the working directory first — cmd/funee does this via
// filepath.Abs in expandPath before constructing Options).
type Options struct {
	EntryURI        string
	EntryExportName string // defaults to "default"
	MaxMacroIterations int // defaults to config.DefaultMaxMacroIterations

	// FS is the filesystem implementation module resolution reads
	// through; nil selects internal/fs.RealFS (the default for real
	// builds, overridden by tests with an internal/fs.MockFS).
	FS fs.FS
}

// Result is a single build's complete output: either emitted code or a
// non-empty Messages slice explaining why the build failed.
type Result struct {
	Code     string
	Messages []Message

	// VisitedURIs is every distinct URI a node of the build's source graph
	// resolved to, the entry module included and the in-memory standard
	// library left out. It may hold http(s):// and host:// URIs, which
	// internal/watch.Watcher.SetPaths skips; it is the set SetPaths gets
	// after every rebuild (spec.md §5's "re-run the whole pipeline on every
	// change").
	VisitedURIs []string

	// MacroExpansions is the number of macro call sites component J
	// actually rewrote; cmd/funee reports it in its build summary.
	MacroExpansions int
}

// funeeInternalLibURI is the canonical URI the bare "funee" specifier
// resolves to for every build; funeelib.Source is served from it without
// ever touching the real filesystem or cache.Loader's HTTP path.
const funeeInternalLibURI = "funee:///core.ts"

// libLoader wraps a cache.Loader so the one special URI funeelib.Source
// owns is served from memory, while everything else falls through to the
// real loader — the same "one exception, otherwise delegate" shape
// internal/fs.MockFS itself models for tests.
type libLoader struct {
	inner *cache.Loader
	mod   *ast.Module
}

func newLibLoader(inner *cache.Loader) (*libLoader, error) {
	mod, err := parseLib()
	if err != nil {
		return nil, err
	}
	return &libLoader{inner: inner, mod: mod}, nil
}

func (l *libLoader) ParseModule(uri string) (*ast.Module, error) {
	if uri == funeeInternalLibURI {
		return l.mod, nil
	}
	return l.inner.ParseModule(uri)
}

func parseLib() (*ast.Module, error) {
	return js_parser.Parse(funeelib.Source)
}

// defaultHostFunctions is spec.md §8 scenario 1's pre-wired host-function
// registry: importing `log` from the "funee" specifier is a HostFn bound
// to the `log` op, not a real export of funeelib.Source (spec.md §6.2's
// "uri is typically 'funee' (user-facing)").
func defaultHostFunctions() []config.HostFunctionEntry {
	return []config.HostFunctionEntry{
		{ID: identifier.ID{Name: "log", URI: "funee"}, OpName: "log"},
	}
}

// Build runs the whole pipeline: parse the entry module, build the source
// graph (component F), expand macros (component J), rename (component K),
// and emit JS with an inline source map (component L).
func Build(opts Options) Result {
	realFS := opts.FS
	if realFS == nil {
		realFS = fs.NewRealFS()
	}
	loader := cache.NewLoader(realFS)
	lib, err := newLibLoader(loader)
	if err != nil {
		return Result{Messages: []Message{{Text: fmt.Sprintf("internal error loading the funee standard library: %s", err)}}}
	}

	cfg := config.Options{
		EntryURI:           opts.EntryURI,
		EntryExportName:    opts.EntryExportName,
		FuneeLibPath:       funeeInternalLibURI,
		HostFunctions:      defaultHostFunctions(),
		MaxMacroIterations: opts.MaxMacroIterations,
	}.WithDefaults()

	log := logger.NewLog()
	driver := sourcegraph.NewDriver(cfg, lib, log)

	rootID := identifier.ID{Name: "<root>", URI: cfg.EntryURI}
	rootExpr := &ast.ECall{Target: &ast.EIdentifier{Name: cfg.EntryExportName, Kind: ast.SymbolUnbound}}
	rootDecl := declaration.RootExpr(rootExpr)

	g, err := driver.Build(rootID, rootDecl)
	if err != nil {
		return Result{Messages: toMessages(log)}
	}

	expansions, err := macroexpand.Expand(g, driver, log, cfg.MaxMacroIterations)
	if err != nil {
		return Result{Messages: toMessages(log)}
	}

	if log.HasErrors() {
		return Result{Messages: toMessages(log)}
	}

	symbols := renamer.Rename(g)
	code := emitter.Emit(g, symbols)

	return Result{
		Code:            code,
		Messages:        toMessages(log),
		VisitedURIs:     visitedURIs(g),
		MacroExpansions: expansions,
	}
}

func toMessages(log *logger.Log) []Message {
	msgs := log.SortedMsgs()
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		msg := Message{Text: m.Text}
		if m.Location != nil {
			msg.URI = m.Location.URI
			msg.Referrer = m.Location.Name
		}
		out = append(out, msg)
	}
	return out
}

func visitedURIs(g *sourcegraph.Graph) []string {
	seen := make(map[string]bool)
	var out []string
	for _, key := range g.Order {
		n := g.Nodes[key]
		if n.ResolvedURI == "" || n.ResolvedURI == funeeInternalLibURI {
			continue
		}
		if !seen[n.ResolvedURI] {
			seen[n.ResolvedURI] = true
			out = append(out, n.ResolvedURI)
		}
	}
	return out
}
