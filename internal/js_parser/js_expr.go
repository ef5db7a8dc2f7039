package js_parser

import (
	"github.com/offloadmywork/funee/internal/ast"
	"github.com/offloadmywork/funee/internal/js_lexer"
)

// Binding power levels, lowest to highest - the same "L" ladder idea the
// teacher's js_parser uses (an L enum), just sized for the operators funee
// actually parses.
type level int

const (
	lLowest level = iota
	lComma
	lAssign
	lConditional
	lNullishCoalescing
	lLogicalOr
	lLogicalAnd
	lBitwiseOr
	lBitwiseXor
	lBitwiseAnd
	lEquals
	lCompare
	lShift
	lAdd
	lMultiply
	lExponent
	lPrefix
	lPostfix
	lCall
)

var binaryPrecedence = map[string]level{
	"??": lNullishCoalescing,
	"||": lLogicalOr,
	"&&": lLogicalAnd,
	"|":  lBitwiseOr,
	"^":  lBitwiseXor,
	"&":  lBitwiseAnd,
	"==": lEquals, "!=": lEquals, "===": lEquals, "!==": lEquals,
	"<": lCompare, ">": lCompare, "<=": lCompare, ">=": lCompare,
	"+": lAdd, "-": lAdd,
	"*": lMultiply, "/": lMultiply, "%": lMultiply,
	"**": lExponent,
}

func binaryOpFor(kind js_lexer.T) (string, bool) {
	switch kind {
	case js_lexer.TQuestionQuestion:
		return "??", true
	case js_lexer.TBarBar:
		return "||", true
	case js_lexer.TAmpersandAmpersand:
		return "&&", true
	case js_lexer.TBar:
		return "|", true
	case js_lexer.TCaret:
		return "^", true
	case js_lexer.TAmpersand:
		return "&", true
	case js_lexer.TEqualsEquals:
		return "==", true
	case js_lexer.TExclamationEquals:
		return "!=", true
	case js_lexer.TEqualsEqualsEquals:
		return "===", true
	case js_lexer.TExclamationEqualsEquals:
		return "!==", true
	case js_lexer.TLessThan:
		return "<", true
	case js_lexer.TGreaterThan:
		return ">", true
	case js_lexer.TLessThanEquals:
		return "<=", true
	case js_lexer.TGreaterThanEquals:
		return ">=", true
	case js_lexer.TPlus:
		return "+", true
	case js_lexer.TMinus:
		return "-", true
	case js_lexer.TStar:
		return "*", true
	case js_lexer.TSlash:
		return "/", true
	case js_lexer.TPercent:
		return "%", true
	case js_lexer.TStarStar:
		return "**", true
	}
	return "", false
}

var assignOpFor = map[js_lexer.T]string{
	js_lexer.TEquals:      "=",
	js_lexer.TPlusEquals:  "+=",
	js_lexer.TMinusEquals: "-=",
	js_lexer.TStarEquals:  "*=",
	js_lexer.TSlashEquals: "/=",
}

// parseExpr is the Pratt-parser entry point: parse a prefix expression then
// absorb infix/postfix operators whose precedence is >= minLevel.
func (p *Parser) parseExpr(minLevel level) ast.Expr {
	left := p.parsePrefix()
	return p.parseSuffix(left, minLevel)
}

func (p *Parser) parseSuffix(left ast.Expr, minLevel level) ast.Expr {
	for {
		switch p.tok() {
		case js_lexer.TDot:
			p.lex.Next()
			name := p.expectIdentName()
			left = &ast.EMember{Target: left, Name: name}
			continue

		case js_lexer.TQuestionDot:
			p.lex.Next()
			if p.tok() == js_lexer.TOpenParen {
				args := p.parseArgs()
				left = &ast.ECall{Target: left, Args: args, Optional: true}
				continue
			}
			name := p.expectIdentName()
			left = &ast.EMember{Target: left, Name: name, Optional: true}
			continue

		case js_lexer.TOpenBracket:
			p.lex.Next()
			index := p.parseExpr(lLowest)
			p.expect(js_lexer.TCloseBracket, "]")
			left = &ast.EMember{Target: left, Index: index, Computed: true}
			continue

		case js_lexer.TOpenParen:
			if lCall < minLevel {
				return left
			}
			args := p.parseArgs()
			left = &ast.ECall{Target: left, Args: args}
			continue

		case js_lexer.TQuestion:
			if lConditional < minLevel {
				return left
			}
			p.lex.Next()
			yes := p.parseExpr(lAssign)
			p.expect(js_lexer.TColon, ":")
			no := p.parseExpr(lAssign)
			left = &ast.ECond{Test: left, Yes: yes, No: no}
			continue

		case js_lexer.TComma:
			if lComma < minLevel {
				return left
			}
			return left // sequence expressions are out of scope; caller handles ","

		default:
			if op, ok := assignOpFor[p.tok()]; ok {
				if lAssign < minLevel {
					return left
				}
				p.lex.Next()
				value := p.parseExpr(lAssign)
				left = &ast.EAssign{Op: op, Target: left, Value: value}
				continue
			}
			if op, ok := binaryOpFor(p.tok()); ok {
				opLevel := binaryPrecedence[op]
				if opLevel < minLevel {
					return left
				}
				p.lex.Next()
				nextMin := opLevel + 1
				if op == "**" {
					nextMin = opLevel // right-associative
				}
				right := p.parseExpr(nextMin)
				left = &ast.EBinary{Op: op, Left: left, Right: right}
				continue
			}
			return left
		}
	}
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(js_lexer.TOpenParen, "(")
	var args []ast.Expr
	for p.tok() != js_lexer.TCloseParen {
		if p.tok() == js_lexer.TDotDotDot {
			p.lex.Next()
			args = append(args, &ast.ESpread{Value: p.parseExpr(lAssign)})
		} else {
			args = append(args, p.parseExpr(lAssign))
		}
		if p.tok() == js_lexer.TComma {
			p.lex.Next()
		}
	}
	p.expect(js_lexer.TCloseParen, ")")
	return args
}

func (p *Parser) parsePrefix() ast.Expr {
	switch p.tok() {
	case js_lexer.TNumericLiteral:
		v := p.lex.Token.NumberValue
		p.lex.Next()
		return &ast.ENumber{Value: v}

	case js_lexer.TStringLiteral:
		v := p.lex.Token.StringValue
		p.lex.Next()
		return &ast.EString{Value: v}

	case js_lexer.TNoSubstitutionTemplateLiteral:
		v := p.lex.Token.StringValue
		p.lex.Next()
		return &ast.ETemplate{Quasis: []string{v}}

	case js_lexer.TTemplateHead:
		return p.parseTemplate()

	case js_lexer.TExclamation:
		p.lex.Next()
		return &ast.EUnary{Op: "!", Value: p.parseExpr(lPrefix), Prefix: true}

	case js_lexer.TMinus:
		p.lex.Next()
		return &ast.EUnary{Op: "-", Value: p.parseExpr(lPrefix), Prefix: true}

	case js_lexer.TPlus:
		p.lex.Next()
		return &ast.EUnary{Op: "+", Value: p.parseExpr(lPrefix), Prefix: true}

	case js_lexer.TTilde:
		p.lex.Next()
		return &ast.EUnary{Op: "~", Value: p.parseExpr(lPrefix), Prefix: true}

	case js_lexer.TDotDotDot:
		p.lex.Next()
		return &ast.ESpread{Value: p.parseExpr(lAssign)}

	case js_lexer.TOpenParen:
		return p.parseParenOrArrow()

	case js_lexer.TOpenBracket:
		return p.parseArrayLiteral()

	case js_lexer.TOpenBrace:
		return p.parseObjectLiteral()

	case js_lexer.TIdentifier:
		return p.parseIdentifierExpr()

	default:
		p.fail("unexpected token %q", p.lex.Token.Raw)
		return nil
	}
}

func (p *Parser) parseTemplate() ast.Expr {
	quasis := []string{p.lex.Token.StringValue}
	var exprs []ast.Expr
	for p.tok() == js_lexer.TTemplateHead || p.tok() == js_lexer.TTemplateMiddle {
		p.lex.Next() // moves past the head/middle and starts lexing the expr
		exprs = append(exprs, p.parseExpr(lLowest))
		if p.tok() != js_lexer.TCloseBrace {
			p.fail("expected '}' in template literal")
		}
		p.lex.ResumeTemplateAfterBrace()
		quasis = append(quasis, p.lex.Token.StringValue)
		if p.lex.Token.Kind == js_lexer.TTemplateTail {
			p.lex.Next()
			break
		}
	}
	return &ast.ETemplate{Quasis: quasis, Exprs: exprs}
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	p.lex.Next() // [
	var items []ast.Expr
	for p.tok() != js_lexer.TCloseBracket {
		if p.tok() == js_lexer.TDotDotDot {
			p.lex.Next()
			items = append(items, &ast.ESpread{Value: p.parseExpr(lAssign)})
		} else {
			items = append(items, p.parseExpr(lAssign))
		}
		if p.tok() == js_lexer.TComma {
			p.lex.Next()
		}
	}
	p.expect(js_lexer.TCloseBracket, "]")
	return &ast.EArray{Items: items}
}

func (p *Parser) parseObjectLiteral() ast.Expr {
	p.lex.Next() // {
	var props []ast.Property
	for p.tok() != js_lexer.TCloseBrace {
		if p.tok() == js_lexer.TDotDotDot {
			p.lex.Next()
			props = append(props, ast.Property{Spread: true, Value: p.parseExpr(lAssign)})
			if p.tok() == js_lexer.TComma {
				p.lex.Next()
			}
			continue
		}

		computed := false
		var keyExpr ast.Expr
		var key string
		if p.tok() == js_lexer.TOpenBracket {
			computed = true
			p.lex.Next()
			keyExpr = p.parseExpr(lLowest)
			p.expect(js_lexer.TCloseBracket, "]")
		} else if p.tok() == js_lexer.TStringLiteral {
			key = p.lex.Token.StringValue
			p.lex.Next()
		} else {
			key = p.expectIdentName()
		}

		if p.tok() == js_lexer.TColon {
			p.lex.Next()
			value := p.parseExpr(lAssign)
			props = append(props, ast.Property{Key: key, KeyExpr: keyExpr, Computed: computed, Value: value})
		} else if p.tok() == js_lexer.TOpenParen {
			// shorthand method: { foo(a, b) { ... } }
			fn := p.parseFnTail(false)
			props = append(props, ast.Property{Key: key, Value: &ast.EFunction{Fn: fn}})
		} else {
			props = append(props, ast.Property{Key: key, Value: &ast.EIdentifier{Name: key}, Shorthand: true})
		}
		if p.tok() == js_lexer.TComma {
			p.lex.Next()
		}
	}
	p.expect(js_lexer.TCloseBrace, "}")
	return &ast.EObject{Properties: props}
}

func (p *Parser) parseIdentifierExpr() ast.Expr {
	name := p.lex.Token.Raw
	switch name {
	case "true":
		p.lex.Next()
		return &ast.EBoolean{Value: true}
	case "false":
		p.lex.Next()
		return &ast.EBoolean{Value: false}
	case "null":
		p.lex.Next()
		return &ast.ENull{}
	case "undefined":
		p.lex.Next()
		return &ast.EUndefined{}
	case "this":
		p.lex.Next()
		return &ast.EThis{}
	case "new":
		p.lex.Next()
		target := p.parseExpr(lCall)
		if call, ok := target.(*ast.ECall); ok {
			return &ast.ENew{Target: call.Target, Args: call.Args}
		}
		return &ast.ENew{Target: target}
	case "typeof", "void", "delete":
		p.lex.Next()
		return &ast.EUnary{Op: name, Value: p.parseExpr(lPrefix), Prefix: true}
	case "await":
		p.lex.Next()
		return &ast.EAwait{Value: p.parseExpr(lPrefix)}
	case "async":
		if p.peekIsArrowAfterAsync() {
			p.lex.Next() // async
			return p.parseArrowFromIdentOrParens(true)
		}
		p.lex.Next()
		return &ast.EIdentifier{Name: name}
	case "function":
		_, fn := p.parseFunctionRest(false)
		return &ast.EFunction{Fn: fn}
	}

	// Either a plain identifier or the start of "x => x" single-param arrow.
	save := *p.lex
	p.lex.Next()
	if p.tok() == js_lexer.TArrow {
		p.lex.Next()
		return p.parseArrowBodyAfterParams([]ast.Param{{Name: name}}, false)
	}
	*p.lex = save
	p.lex.Next()
	return &ast.EIdentifier{Name: name}
}

func (p *Parser) peekIsArrowAfterAsync() bool {
	save := *p.lex
	p.lex.Next()
	ok := p.tok() == js_lexer.TIdentifier || p.tok() == js_lexer.TOpenParen
	*p.lex = save
	return ok
}

func (p *Parser) parseArrowFromIdentOrParens(isAsync bool) ast.Expr {
	if p.tok() == js_lexer.TOpenParen {
		params := p.parseParamList()
		p.expect(js_lexer.TArrow, "=>")
		return p.parseArrowBodyAfterParams(params, isAsync)
	}
	name := p.expectIdentName()
	p.expect(js_lexer.TArrow, "=>")
	return p.parseArrowBodyAfterParams([]ast.Param{{Name: name}}, isAsync)
}

// parseParenOrArrow disambiguates "(expr)" from "(params) => body" by
// speculatively parsing a parameter list and checking for "=>" after it,
// backtracking the lexer on failure - the same trick the teacher's parser
// uses (checkForArrowAfterTheCurrentToken).
func (p *Parser) parseParenOrArrow() ast.Expr {
	save := *p.lex
	params, ok := p.tryParseParamList()
	if ok && p.tok() == js_lexer.TArrow {
		p.lex.Next()
		return p.parseArrowBodyAfterParams(params, false)
	}
	*p.lex = save

	p.lex.Next() // (
	e := p.parseExpr(lLowest)
	p.expect(js_lexer.TCloseParen, ")")
	return e
}

func (p *Parser) tryParseParamList() (params []ast.Param, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isParse := r.(parsePanic); isParse {
				ok = false
				return
			}
			panic(r)
		}
	}()
	return p.parseParamList(), true
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(js_lexer.TOpenParen, "(")
	var params []ast.Param
	for p.tok() != js_lexer.TCloseParen {
		rest := false
		if p.tok() == js_lexer.TDotDotDot {
			rest = true
			p.lex.Next()
		}
		name := p.expectIdentName()
		if p.tok() == js_lexer.TEquals {
			// default value: parsed and discarded for identifier purposes,
			// consistent with funee not modeling destructuring defaults.
			p.lex.Next()
			p.parseExpr(lAssign)
		}
		params = append(params, ast.Param{Name: name, Rest: rest})
		if p.tok() == js_lexer.TComma {
			p.lex.Next()
			continue
		}
		break
	}
	p.expect(js_lexer.TCloseParen, ")")
	return params
}

func (p *Parser) parseArrowBodyAfterParams(params []ast.Param, isAsync bool) ast.Expr {
	fn := &ast.Fn{Params: params, IsAsync: isAsync}
	if p.tok() == js_lexer.TOpenBrace {
		fn.Body = p.parseBlock()
	} else {
		fn.ExprBody = p.parseExpr(lAssign)
	}
	return &ast.EArrow{Fn: fn}
}

// parseFnTail parses "(...) { ... }" once "function"/"function name" and
// any leading "async" have already been consumed.
func (p *Parser) parseFnTail(isAsync bool) *ast.Fn {
	params := p.parseParamList()
	body := p.parseBlock()
	return &ast.Fn{Params: params, Body: body, IsAsync: isAsync}
}

func (p *Parser) parseBlock() *ast.FnBody {
	p.expect(js_lexer.TOpenBrace, "{")
	body := &ast.FnBody{}
	for p.tok() != js_lexer.TCloseBrace {
		body.Stmts = append(body.Stmts, p.parseStmt())
	}
	p.expect(js_lexer.TCloseBrace, "}")
	return body
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.tok() == js_lexer.TOpenBrace:
		blk := p.parseBlock()
		return &ast.SBlock{Stmts: blk.Stmts}

	case p.isIdent("return"):
		p.lex.Next()
		if p.tok() == js_lexer.TSemicolon || p.tok() == js_lexer.TCloseBrace {
			p.eatSemi()
			return &ast.SReturn{}
		}
		v := p.parseExpr(lLowest)
		p.eatSemi()
		return &ast.SReturn{Value: v}

	case p.isIdent("if"):
		p.lex.Next()
		p.expect(js_lexer.TOpenParen, "(")
		test := p.parseExpr(lLowest)
		p.expect(js_lexer.TCloseParen, ")")
		yes := p.parseStmt()
		var no ast.Stmt
		if p.eatIdent("else") {
			no = p.parseStmt()
		}
		return &ast.SIf{Test: test, Yes: yes, No: no}

	case p.isIdent("var") || p.isIdent("let") || p.isIdent("const"):
		return p.parseVarStmt(false)

	case p.isIdent("function"):
		name, fn := p.parseFunctionRest(false)
		return &ast.SFunctionDecl{Name: name, Fn: fn}

	case p.tok() == js_lexer.TSemicolon:
		p.lex.Next()
		return &ast.SBlock{}

	default:
		e := p.parseExpr(lLowest)
		p.eatSemi()
		return &ast.SExpr{Value: e}
	}
}
