package sourcegraph

// JSGlobals is the fixed allow-list of spec.md §6.3: names considered
// provided by the host runtime and thus never treated as free references
// requiring resolution.
var JSGlobals = buildGlobalsSet()

func buildGlobalsSet() map[string]bool {
	names := []string{
		"Object", "Array", "Function", "Boolean", "Symbol", "BigInt",
		"Number", "String", "RegExp", "Date", "Promise", "Proxy", "Reflect",
		"Map", "Set", "WeakMap", "WeakSet",
		"ArrayBuffer", "SharedArrayBuffer", "DataView",
		"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array",
		"Uint16Array", "Int32Array", "Uint32Array", "Float32Array",
		"Float64Array", "BigInt64Array", "BigUint64Array",
		"Math", "JSON", "console", "globalThis",
		"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError",
		"EvalError", "URIError", "AggregateError",
		"setTimeout", "clearTimeout", "setInterval", "clearInterval",
		"queueMicrotask",
		"fetch", "Request", "Response", "Headers", "URL", "URLSearchParams",
		"TextEncoder", "TextDecoder",
		"AbortController", "AbortSignal",
		"crypto", "atob", "btoa", "structuredClone",
		"undefined", "NaN", "Infinity",
		"isNaN", "isFinite", "parseInt", "parseFloat", "encodeURIComponent",
		"decodeURIComponent", "encodeURI", "decodeURI",
		"WeakRef", "FinalizationRegistry", "Intl", "Atomics", "eval",
		"setImmediate", "clearImmediate",
		"FormData", "Blob", "File", "FileReader",
		"Event", "EventTarget", "CustomEvent",
		"Crypto", "CryptoKey", "SubtleCrypto",
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
