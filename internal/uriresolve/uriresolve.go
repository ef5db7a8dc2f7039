// Package uriresolve implements component E (spec.md §4.E): given an import
// specifier and the importing module's canonical URI, produce the canonical
// URI the specifier resolves to. Grounded in the teacher's
// internal/resolver package for the overall "resolve a specifier against an
// importer" shape, adapted to funee's much smaller rule set (no
// node_modules, no package.json "exports" map, no tsconfig paths — just the
// four URI schemes identifier.ID.URI ever holds).
package uriresolve

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrMalformed is returned when a specifier or base URI cannot be parsed
// under any of the resolution rules below.
var ErrMalformed = errors.New("uriresolve: malformed specifier or base URI")

// ErrMissingStdlib is returned for the bare "funee" specifier when no
// standard-library path was configured (config.Options.FuneeLibPath == "").
var ErrMissingStdlib = errors.New("uriresolve: \"funee\" specifier used but no standard library path is configured")

func isHTTP(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func isHost(uri string) bool {
	return strings.HasPrefix(uri, "host://")
}

// Resolve implements spec.md §4.E's policy exactly: S is the specifier as it
// appears in an import/export statement, B is the canonical URI of the
// module that contains it, and L is the configured standard-library path
// (config.Options.FuneeLibPath), which may be empty.
func Resolve(specifier, base, stdlibPath string) (string, error) {
	switch {
	case specifier == "funee":
		if stdlibPath == "" {
			return "", ErrMissingStdlib
		}
		return stdlibPath, nil

	case isHost(specifier):
		return specifier, nil

	case isHTTP(specifier):
		return specifier, nil

	case strings.HasPrefix(specifier, "/"):
		if isHTTP(base) {
			return joinHTTPAbsolute(base, specifier)
		}
		return path.Clean(specifier), nil

	default:
		if isHTTP(base) {
			return joinHTTPRelative(base, specifier)
		}
		return joinFilesystemRelative(base, specifier)
	}
}

// joinHTTPAbsolute resolves an absolute-path specifier ("/foo/bar") against
// B's origin, per spec.md §4.E's "absolute-path semantics" rule.
func joinHTTPAbsolute(base, specifier string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, base)
	}
	resolved := &url.URL{
		Scheme: baseURL.Scheme,
		Host:   baseURL.Host,
		Path:   path.Clean(specifier),
	}
	return resolved.String(), nil
}

func joinHTTPRelative(base, specifier string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, base)
	}
	specURL, err := url.Parse(specifier)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, specifier)
	}
	resolved := baseURL.ResolveReference(specURL)
	return resolved.String(), nil
}

func joinFilesystemRelative(base, specifier string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("%w: empty base for relative specifier %q", ErrMalformed, specifier)
	}
	dir := path.Dir(base)
	joined := path.Join(dir, specifier)
	return path.Clean(joined), nil
}
