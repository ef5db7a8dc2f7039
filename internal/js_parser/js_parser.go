// Package js_parser turns source text into internal/ast trees. It mirrors
// the teacher's internal/js_parser in spirit (a single recursive-descent
// parser struct driving internal/js_lexer token-by-token, panicking on a
// syntax error and recovering at the outermost entry point) but covers only
// the module and expression grammar the bundler core needs: import/export
// declarations, function/arrow/var forms, and a conventional expression
// grammar with operator precedence. Full TypeScript type syntax, JSX,
// decorators, classes, generators-as-statements, and destructuring patterns
// are out of scope (spec.md §1's non-goals) and are not accepted.
package js_parser

import (
	"fmt"

	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/js_lexer"
)

// parsePanic is recovered by Parse/ParseExpr and turned into an error,
// matching the teacher's js_lexer.LexerPanic / parser panic convention.
type parsePanic struct{ msg string }

type Parser struct {
	lex *js_lexer.Lexer
}

func newParser(source string) *Parser {
	return &Parser{lex: js_lexer.NewLexer(source)}
}

func (p *Parser) fail(format string, args ...interface{}) {
	panic(parsePanic{msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) tok() js_lexer.T { return p.lex.Token.Kind }

func (p *Parser) expect(kind js_lexer.T, what string) {
	if p.tok() != kind {
		p.fail("expected %s but found %q", what, p.lex.Token.Raw)
	}
	p.lex.Next()
}

func (p *Parser) isIdent(name string) bool {
	return p.tok() == js_lexer.TIdentifier && p.lex.Token.Raw == name
}

// eatIdent consumes the current identifier token if it has exactly this
// name (used for contextual keywords: "from", "as", "async", "of", "default").
func (p *Parser) eatIdent(name string) bool {
	if p.isIdent(name) {
		p.lex.Next()
		return true
	}
	return false
}

func (p *Parser) expectIdentName() string {
	if p.tok() != js_lexer.TIdentifier {
		p.fail("expected identifier but found %q", p.lex.Token.Raw)
	}
	name := p.lex.Token.Raw
	p.lex.Next()
	return name
}

// Parse parses a whole module (source file): import/export declarations,
// top-level function/var declarations. Declaration privacy is not enforced
// — see DESIGN.md's internal/declaration entry — a top-level binding is visible by name whether
// or not it carries an "export" keyword, matching the funee prototype's own
// behavior (tests.rs imports a non-exported top-level function).
func Parse(source string) (mod *ast.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pp, ok := r.(parsePanic); ok {
				err = fmt.Errorf("parse error: %s", pp.msg)
				return
			}
			panic(r)
		}
	}()

	p := newParser(source)
	m := &ast.Module{}
	for p.tok() != js_lexer.TEndOfFile {
		m.Stmts = append(m.Stmts, p.parseModuleStmt())
	}
	return m, nil
}

// ParseExpr parses a single standalone expression, the form used to parse a
// macro's returned expression source and the arguments the closure-capture
// step renders back to text (spec.md §4.J/§4.I).
func ParseExpr(source string) (e ast.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pp, ok := r.(parsePanic); ok {
				err = fmt.Errorf("parse error: %s", pp.msg)
				return
			}
			panic(r)
		}
	}()
	p := newParser(source)
	e = p.parseExpr(lLowest)
	if p.tok() != js_lexer.TEndOfFile {
		p.fail("unexpected %q after expression", p.lex.Token.Raw)
	}
	return e, nil
}

func (p *Parser) parseModuleStmt() ast.Stmt {
	switch {
	case p.isIdent("import"):
		return p.parseImport()
	case p.isIdent("export"):
		return p.parseExport()
	case p.isIdent("function"):
		name, fn := p.parseFunctionRest(false)
		return &ast.SFunctionDecl{Name: name, Fn: fn}
	case p.isIdent("async") && p.peekIsFunctionAfterAsync():
		p.lex.Next() // async
		name, fn := p.parseFunctionRest(true)
		return &ast.SFunctionDecl{Name: name, Fn: fn}
	case p.isIdent("var") || p.isIdent("let") || p.isIdent("const"):
		return p.parseVarStmt(false)
	default:
		e := p.parseExpr(lLowest)
		p.eatSemi()
		return &ast.SExpr{Value: e}
	}
}

func (p *Parser) peekIsFunctionAfterAsync() bool {
	// Simple one-token lookahead is enough here since "async" is otherwise
	// only valid in front of "function" or an arrow parameter list at
	// statement position.
	save := *p.lex
	p.lex.Next()
	isFn := p.isIdent("function")
	*p.lex = save
	return isFn
}

func (p *Parser) eatSemi() {
	if p.tok() == js_lexer.TSemicolon {
		p.lex.Next()
	}
}

func (p *Parser) parseImport() ast.Stmt {
	p.lex.Next() // import
	p.expect(js_lexer.TOpenBrace, "{")
	var specs []ast.ImportSpecifier
	for p.tok() != js_lexer.TCloseBrace {
		imported := p.expectIdentName()
		local := imported
		if p.eatIdent("as") {
			local = p.expectIdentName()
		}
		specs = append(specs, ast.ImportSpecifier{Imported: imported, Local: local})
		if p.tok() == js_lexer.TComma {
			p.lex.Next()
		}
	}
	p.expect(js_lexer.TCloseBrace, "}")
	if !p.eatIdent("from") {
		p.fail("expected 'from' in import statement")
	}
	source := p.expectString()
	p.eatSemi()
	return &ast.SImport{Specifiers: specs, Source: source}
}

func (p *Parser) expectString() string {
	if p.tok() != js_lexer.TStringLiteral {
		p.fail("expected a string literal but found %q", p.lex.Token.Raw)
	}
	s := p.lex.Token.StringValue
	p.lex.Next()
	return s
}

func (p *Parser) parseExport() ast.Stmt {
	p.lex.Next() // export

	if p.eatIdent("default") {
		if p.isIdent("async") && p.peekIsFunctionAfterAsync() {
			p.lex.Next()
			name, fn := p.parseFunctionRest(true)
			return &ast.SFunctionDecl{Name: name, Fn: fn, Exported: true, Default: true}
		}
		if p.isIdent("function") {
			name, fn := p.parseFunctionRest(false)
			return &ast.SFunctionDecl{Name: name, Fn: fn, Exported: true, Default: true}
		}
		e := p.parseExpr(lLowest)
		p.eatSemi()
		return &ast.SExportDefaultExpr{Value: e}
	}

	if p.tok() == js_lexer.TOpenBrace {
		p.lex.Next()
		var specs []ast.ExportSpecifier
		for p.tok() != js_lexer.TCloseBrace {
			local := p.expectIdentName()
			exported := local
			if p.eatIdent("as") {
				exported = p.expectIdentName()
			}
			specs = append(specs, ast.ExportSpecifier{Local: local, Exported: exported})
			if p.tok() == js_lexer.TComma {
				p.lex.Next()
			}
		}
		p.expect(js_lexer.TCloseBrace, "}")
		source := ""
		if p.eatIdent("from") {
			source = p.expectString()
		}
		p.eatSemi()
		return &ast.SExportNamed{Specifiers: specs, Source: source}
	}

	if p.isIdent("async") && p.peekIsFunctionAfterAsync() {
		p.lex.Next()
		name, fn := p.parseFunctionRest(true)
		return &ast.SFunctionDecl{Name: name, Fn: fn, Exported: true}
	}
	if p.isIdent("function") {
		name, fn := p.parseFunctionRest(false)
		return &ast.SFunctionDecl{Name: name, Fn: fn, Exported: true}
	}
	if p.isIdent("var") || p.isIdent("let") || p.isIdent("const") {
		return p.parseVarStmt(true)
	}
	p.fail("unsupported export form")
	return nil
}

func (p *Parser) parseVarStmt(exported bool) ast.Stmt {
	kind := p.lex.Token.Raw
	p.lex.Next()
	var decls []ast.VarDecl
	for {
		name := p.expectIdentName()
		var init ast.Expr
		if p.tok() == js_lexer.TEquals {
			p.lex.Next()
			init = p.parseExpr(lComma + 1)
		}
		decls = append(decls, ast.VarDecl{Name: name, Init: init})
		if p.tok() == js_lexer.TComma {
			p.lex.Next()
			continue
		}
		break
	}
	p.eatSemi()
	return &ast.SVar{Kind: kind, Decls: decls, Exported: exported}
}

// parseFunctionRest parses "function name? (...) { ... }" after any
// "export"/"default"/"async" prefix has already been consumed.
func (p *Parser) parseFunctionRest(isAsync bool) (string, *ast.Fn) {
	if !p.isIdent("function") {
		p.fail("expected 'function' but found %q", p.lex.Token.Raw)
	}
	p.lex.Next() // function
	name := ""
	if p.tok() == js_lexer.TIdentifier {
		name = p.expectIdentName()
	}
	fn := p.parseFnTail(isAsync)
	return name, fn
}
