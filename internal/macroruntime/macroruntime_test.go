package macroruntime

import "testing"

func TestInvokeIdentity(t *testing.T) {
	result, err := Invoke("(closure) => closure", []MacroClosure{
		{Source: "1 + 2", Refs: map[string]IdentRef{}},
	}, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != "1 + 2" {
		t.Fatalf("got %q", result.Source)
	}
}

func TestInvokeBuiltinQuote(t *testing.T) {
	aux := WithBuiltins(nil)
	result, err := Invoke("(closure) => quote(closure)", []MacroClosure{
		{Source: "foo(1)"},
	}, aux, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != "foo(1)" {
		t.Fatalf("got %q", result.Source)
	}
}

func TestInvokeBuiltinInline(t *testing.T) {
	aux := WithBuiltins(nil)
	result, err := Invoke("(closure) => inline(closure)", []MacroClosure{
		{Source: "(x) => x + 1"},
	}, aux, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != "x + 1" {
		t.Fatalf("got %q", result.Source)
	}
}

func TestInvokeReturnsRefs(t *testing.T) {
	result, err := Invoke(
		`(closure) => makeClosure("helper(1)", {helper: {uri: "/lib.ts", name: "helper"}})`,
		[]MacroClosure{{Source: "1"}}, nil, 10,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != "helper(1)" {
		t.Fatalf("got %q", result.Source)
	}
	ref, ok := result.Refs["helper"]
	if !ok || ref.URI != "/lib.ts" || ref.Name != "helper" {
		t.Fatalf("got refs %v", result.Refs)
	}
}

func TestInvokeMaxIterationsExceeded(t *testing.T) {
	aux := []AuxMacro{
		{Name: "loopy", Source: "(c) => callMacro(\"loopy\", c)"},
	}
	_, err := Invoke("(closure) => callMacro(\"loopy\", closure)", []MacroClosure{
		{Source: "1"},
	}, aux, 3)
	if err == nil {
		t.Fatalf("expected an error from runaway recursion")
	}
}

func TestInvokeIsolatedNoGlobalLeakage(t *testing.T) {
	// A macro cannot reach anything resembling file/network access; only
	// what Invoke explicitly binds plus stock ECMAScript builtins exist.
	result, err := Invoke(`(closure) => makeClosure(String(typeof require), {})`, []MacroClosure{
		{Source: "1"},
	}, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != "undefined" {
		t.Fatalf("expected require to be undefined in the sandbox, got %q", result.Source)
	}
}
