// Package identifier defines the bundler's graph key: a canonical
// (name, uri) pair naming one exported binding of one module (spec.md
// §3.1, component A). It is deliberately tiny and dependency-free so every
// other package — declaration, refextract, sourcegraph, closure,
// macrodetect, macroexpand, renamer — can import it without risk of an
// import cycle.
package identifier

// ID is a canonical identifier: the bundler's declaration-cache key.
//
// uri is one of: an absolute filesystem path, an http(s):// URL, the
// literal "funee" (the bare standard-library specifier, resolved away
// before it ever reaches a cache key), or a host://<namespace> URL.
type ID struct {
	Name string
	URI  string
}

func (id ID) String() string {
	return id.Name + "@" + id.URI
}
