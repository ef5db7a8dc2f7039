package refextract

import (
	"testing"

	"github.com/offloadmywork/funee/internal/ast"
)

func names(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

func has(set map[string]bool, name string) bool { return set[name] }

func TestFreeInFnSkipsParams(t *testing.T) {
	// (x) => x + y
	fn := &ast.Fn{
		Params:   []ast.Param{{Name: "x"}},
		ExprBody: &ast.EBinary{Op: "+", Left: &ast.EIdentifier{Name: "x"}, Right: &ast.EIdentifier{Name: "y"}},
	}
	free := FreeInFn(fn, "")
	if !has(free, "y") {
		t.Fatalf("expected y free, got %v", names(free))
	}
	if has(free, "x") {
		t.Fatalf("x should be bound, got %v", names(free))
	}
}

func TestFreeInFnRecursiveSelfNotFree(t *testing.T) {
	// function fact(n) { return n <= 1 ? 1 : n * fact(n - 1); }
	fn := &ast.Fn{
		Params: []ast.Param{{Name: "n"}},
		Body: &ast.FnBody{Stmts: []ast.Stmt{
			&ast.SReturn{Value: &ast.ECond{
				Test: &ast.EBinary{Op: "<=", Left: &ast.EIdentifier{Name: "n"}, Right: &ast.ENumber{Value: 1}},
				Yes:  &ast.ENumber{Value: 1},
				No: &ast.EBinary{Op: "*",
					Left: &ast.EIdentifier{Name: "n"},
					Right: &ast.ECall{
						Target: &ast.EIdentifier{Name: "fact"},
						Args:   []ast.Expr{&ast.EBinary{Op: "-", Left: &ast.EIdentifier{Name: "n"}, Right: &ast.ENumber{Value: 1}}},
					},
				},
			}},
		}},
	}
	free := FreeInFn(fn, "fact")
	if len(free) != 0 {
		t.Fatalf("expected no free names, got %v", names(free))
	}
}

func TestWalkStmtBlockDeclarationScoping(t *testing.T) {
	// { const a = outer; }  -- the initializer's "outer" is free, while the
	// declared name "a" is a binding, never a reference.
	stmt := &ast.SBlock{Stmts: []ast.Stmt{
		&ast.SVar{Kind: "const", Decls: []ast.VarDecl{{Name: "a", Init: &ast.EIdentifier{Name: "outer"}}}},
	}}
	free := make(map[string]bool)
	root := newScope(nil)
	walkStmt(stmt, root, free)
	if !has(free, "outer") {
		t.Fatalf("expected outer free, got %v", names(free))
	}
	if has(free, "a") {
		t.Fatalf("a should never appear as a reference here, got %v", names(free))
	}
}
