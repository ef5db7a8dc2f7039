// Package hostapi is the `host://` namespace table (spec.md §6.4,
// SPEC_FULL.md §4.L/§6.4): for each namespace, the list of exports the
// emitter (internal/emitter) needs to render a `host://<namespace>`
// import's HostModule declaration and to build the preamble object that
// backs it. Deliberately inert — no filesystem, network, or process code
// lives here, only the strings the real host runtime's ops are named
// (spec.md §1's host-function *implementations* are out of scope; only
// the naming table is in scope). Every namespace and wrapper shape is
// grounded verbatim on original_source/src/execution_request/
// source_graph_to_js_execution_code.rs's get_host_module_code, including
// the op_log/op_debug -> console and op_randomBytes -> crypto consistency
// fold SPEC_FULL.md §4.L calls for.
package hostapi

import (
	"fmt"
	"strings"
)

// WrapperKind is how an export's preamble property value is built.
type WrapperKind int

const (
	// WrapperOp: (<Params>) => Deno.core.ops.op_<OpName>(<Params>)
	WrapperOp WrapperKind = iota
	// WrapperOpDefaultArg: (a, b) => Deno.core.ops.op_<OpName>(a, b ?? <Default>)
	WrapperOpDefaultArg
	// WrapperGlobal: <Name>: globalThis.<GlobalName>
	WrapperGlobal
	// WrapperCustom: <Name>: <CustomJS> verbatim (multi-statement wrappers
	// like crypto.randomBytes's hex-decode loop).
	WrapperCustom
)

// Export is one property of a host namespace's preamble object literal.
type Export struct {
	Name       string
	Kind       WrapperKind
	OpName     string   // WrapperOp / WrapperOpDefaultArg
	Params     []string // WrapperOp / WrapperOpDefaultArg: the arrow's parameter list
	DefaultArg string   // WrapperOpDefaultArg: the parameter that gets "?? <Default>"
	Default    string   // WrapperOpDefaultArg: the default literal, e.g. "false"
	GlobalName string   // WrapperGlobal
	CustomJS   string   // WrapperCustom
}

// Namespace is a `host://<name>` module's full export list.
type Namespace struct {
	Name    string
	Exports []Export
}

// Namespaces is the fixed table, one entry per host://<name> the emitter
// may encounter as a HostModule declaration's namespace.
var Namespaces = []Namespace{
	{
		Name: "fs",
		Exports: []Export{
			{Name: "readFile", Kind: WrapperOp, OpName: "fsReadFile", Params: []string{"path"}},
			{Name: "readFileBinary", Kind: WrapperOp, OpName: "fsReadFileBinary", Params: []string{"path"}},
			{Name: "writeFile", Kind: WrapperOp, OpName: "fsWriteFile", Params: []string{"path", "content"}},
			{Name: "writeFileBinary", Kind: WrapperOp, OpName: "fsWriteFileBinary", Params: []string{"path", "contentBase64"}},
			{Name: "isFile", Kind: WrapperOp, OpName: "fsIsFile", Params: []string{"path"}},
			{Name: "exists", Kind: WrapperOp, OpName: "fsExists", Params: []string{"path"}},
			{Name: "lstat", Kind: WrapperOp, OpName: "fsLstat", Params: []string{"path"}},
			{Name: "mkdir", Kind: WrapperOpDefaultArg, OpName: "fsMkdir", Params: []string{"path", "recursive"}, DefaultArg: "recursive", Default: "false"},
			{Name: "readdir", Kind: WrapperOp, OpName: "fsReaddir", Params: []string{"path"}},
			{Name: "tmpdir", Kind: WrapperOp, OpName: "tmpdir", Params: nil},
		},
	},
	{
		Name: "http",
		Exports: []Export{
			{Name: "fetch", Kind: WrapperGlobal, GlobalName: "fetch"},
		},
	},
	{
		Name: "http/server",
		Exports: []Export{
			{Name: "serve", Kind: WrapperGlobal, GlobalName: "serve"},
			{Name: "createResponse", Kind: WrapperCustom, CustomJS: "(body, init) => new Response(body, init)"},
			{Name: "createJsonResponse", Kind: WrapperCustom, CustomJS: "(data, init) => Response.json(data, init)"},
		},
	},
	{
		Name: "process",
		Exports: []Export{
			{Name: "spawn", Kind: WrapperGlobal, GlobalName: "spawn"},
		},
	},
	{
		Name: "time",
		Exports: []Export{
			{Name: "setTimeout", Kind: WrapperGlobal, GlobalName: "setTimeout"},
			{Name: "clearTimeout", Kind: WrapperGlobal, GlobalName: "clearTimeout"},
			{Name: "setInterval", Kind: WrapperGlobal, GlobalName: "setInterval"},
			{Name: "clearInterval", Kind: WrapperGlobal, GlobalName: "clearInterval"},
		},
	},
	{
		Name: "watch",
		Exports: []Export{
			{Name: "watchStart", Kind: WrapperOp, OpName: "watchStart", Params: []string{"path", "recursive"}},
			{Name: "watchPoll", Kind: WrapperOp, OpName: "watchPoll", Params: []string{"watcherId"}},
			{Name: "watchStop", Kind: WrapperOp, OpName: "watchStop", Params: []string{"watcherId"}},
		},
	},
	{
		Name: "crypto",
		Exports: []Export{
			{Name: "randomBytes", Kind: WrapperCustom, CustomJS: `(length) => {
        const hex = Deno.core.ops.op_randomBytes(length);
        const bytes = new Uint8Array(length);
        for (let i = 0; i < length; i++) {
            bytes[i] = parseInt(hex.substr(i * 2, 2), 16);
        }
        return bytes;
    }`},
		},
	},
	{
		// op_log/op_debug folded in here per SPEC_FULL.md §4.L: main.rs
		// registered them outside any namespace table; they belong with
		// the console namespace that already existed.
		Name: "console",
		Exports: []Export{
			{Name: "log", Kind: WrapperCustom, CustomJS: "(...args) => console.log(...args)"},
			{Name: "debug", Kind: WrapperCustom, CustomJS: "(...args) => console.debug(...args)"},
		},
	},
}

// Lookup returns a namespace's table by name, or (Namespace{}, false) for
// an unrecognized `host://` namespace, which the prototype still emits as
// an empty object literal (`({})`) rather than failing the build.
func Lookup(name string) (Namespace, bool) {
	for _, ns := range Namespaces {
		if ns.Name == name {
			return ns, true
		}
	}
	return Namespace{}, false
}

// RenderObjectLiteral renders a namespace's table as the JS object literal
// the emitter's preamble assigns to `__host_<namespace>` (internal/emitter),
// exactly the shape get_host_module_code builds by hand for each
// namespace. String assembly over the fixed table, not generated code.
func RenderObjectLiteral(ns Namespace) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, exp := range ns.Exports {
		fmt.Fprintf(&b, "    %s: %s,\n", exp.Name, renderExport(exp))
	}
	b.WriteString("}")
	return b.String()
}

func renderExport(exp Export) string {
	switch exp.Kind {
	case WrapperOp:
		params := strings.Join(exp.Params, ", ")
		args := strings.Join(exp.Params, ", ")
		return fmt.Sprintf("(%s) => Deno.core.ops.op_%s(%s)", params, exp.OpName, args)

	case WrapperOpDefaultArg:
		params := strings.Join(exp.Params, ", ")
		args := make([]string, len(exp.Params))
		for i, p := range exp.Params {
			if p == exp.DefaultArg {
				args[i] = fmt.Sprintf("%s ?? %s", p, exp.Default)
			} else {
				args[i] = p
			}
		}
		return fmt.Sprintf("(%s) => Deno.core.ops.op_%s(%s)", params, exp.OpName, strings.Join(args, ", "))

	case WrapperGlobal:
		return "globalThis." + exp.GlobalName

	case WrapperCustom:
		return exp.CustomJS

	default:
		return "undefined"
	}
}
