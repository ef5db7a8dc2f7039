// Package cache is the module loader: it turns a resolved URI (internal/
// uriresolve's output) into source text, and memoizes parsed modules so the
// Source Graph Builder's fixed-point walk (internal/sourcegraph) never
// re-lexes a declaration's file twice. Grounded in the teacher's internal/
// cache (cache.go/cache_ast.go split between a parse cache and its callers)
// and in bennypowers-cem's use of github.com/gregjones/httpcache to avoid
// re-fetching http(s) module URIs on every run.
package cache

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gregjones/httpcache"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/fs"
	"github.com/offloadmywork/funee/internal/js_parser"
)

// Loader reads and parses module source text, keyed by the resolved URI.
// pkg/bundler.Build creates a new Loader for every build, watch-mode
// rebuilds included.
type Loader struct {
	fs     fs.FS
	client *http.Client

	mu       sync.Mutex
	sources  map[string]string
	modules  map[string]*ast.Module
	parseErr map[string]error
}

func NewLoader(realFS fs.FS) *Loader {
	return &Loader{
		fs:       realFS,
		client:   &http.Client{Transport: httpcache.NewMemoryCacheTransport()},
		sources:  make(map[string]string),
		modules:  make(map[string]*ast.Module),
		parseErr: make(map[string]error),
	}
}

// ReadSource returns the raw source text for a resolved URI, fetching it
// over HTTP (cached by httpcache) or from the filesystem as appropriate.
func (l *Loader) ReadSource(uri string) (string, error) {
	l.mu.Lock()
	if src, ok := l.sources[uri]; ok {
		l.mu.Unlock()
		return src, nil
	}
	l.mu.Unlock()

	var src string
	var err error
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		src, err = l.fetchHTTP(uri)
	default:
		src, err = l.fs.ReadFile(uri)
	}
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.sources[uri] = src
	l.mu.Unlock()
	return src, nil
}

func (l *Loader) fetchHTTP(uri string) (string, error) {
	resp, err := l.client.Get(uri)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", uri, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", uri, err)
	}
	return string(body), nil
}

// ParseModule parses a resolved URI's source text into an AST, memoized so
// every declaration pulled from the same file shares one parse.
func (l *Loader) ParseModule(uri string) (*ast.Module, error) {
	l.mu.Lock()
	if mod, ok := l.modules[uri]; ok {
		l.mu.Unlock()
		return mod, nil
	}
	if err, ok := l.parseErr[uri]; ok {
		l.mu.Unlock()
		return nil, err
	}
	l.mu.Unlock()

	src, err := l.ReadSource(uri)
	if err != nil {
		return nil, err
	}
	mod, err := js_parser.Parse(src)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.parseErr[uri] = fmt.Errorf("parsing %s: %w", uri, err)
		return nil, l.parseErr[uri]
	}
	l.modules[uri] = mod
	return mod, nil
}

// Invalidate drops a URI's cached source and parse result. Nothing in this
// module calls it: watch mode gets a fresh Loader per rebuild instead.
func (l *Loader) Invalidate(uri string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sources, uri)
	delete(l.modules, uri)
	delete(l.parseErr, uri)
}
