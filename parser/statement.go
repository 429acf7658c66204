package parser

import (
	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

// parseBlock parses a `{ ... }` statement block into a single AST_GLUE
// chain, pushing a new local scope for the block's declarations and
// popping it again before returning, per spec.md §4.3's scoping rule.
func (p *Parser) parseBlock() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.expect(token.LeftBrace); err != nil {
		return nil, err
	}

	p.symbols.Push()
	defer p.symbols.Pop()

	var body *ast.Node
	for p.cur.Kind != token.RightBrace {
		if p.cur.Kind == token.EOF {
			return nil, diagnostics.SyntaxError(p.loc, "unexpected EOF inside block, missing '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = ast.Glue(body, stmt)
	}
	if err := p.expect(token.RightBrace); err != nil {
		return nil, err
	}
	return body, nil
}

// parseStatement dispatches on the leading keyword, falling through to a
// bare expression statement (an assignment or a function call used for its
// side effect) for anything else.
func (p *Parser) parseStatement() (*ast.Node, *diagnostics.Diagnostic) {
	switch p.cur.Kind {
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.Print:
		return p.parsePrint()
	case token.Return:
		return p.parseReturn()
	case token.LeftBrace:
		return p.parseBlock()
	case token.Struct, token.Union, token.Enum, token.Void, token.Int, token.Char, token.Short, token.Long, token.Const:
		return p.parseLocalVarDeclaration()
	default:
		return p.parseExpressionStatement()
	}
}

// parsePrint parses `print EXPR ;`, always legal regardless of the
// expression's type: the generator's Print widens the value to i32 before
// calling printint.
func (p *Parser) parsePrint() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return ast.NewUnary(token.New(token.Print), expr), nil
}

// parseReturn parses `return [EXPR] ;`. The expression is optional only
// when the enclosing function returns void.
func (p *Parser) parseReturn() (*ast.Node, *diagnostics.Diagnostic) {
	loc := p.loc
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.Kind == token.Semicolon {
		if p.currentFunctionReturn != nil && p.currentFunctionReturn.Kind != types.Void {
			return nil, diagnostics.IdentifierError(loc, "missing return value in non-void function")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewUnary(token.New(token.Return), nil), nil
	}

	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return ast.NewUnary(token.New(token.Return), expr), nil
}

// parseIf parses `if (COND) BLOCK [else BLOCK]`.
func (p *Parser) parseIf() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LeftParenthesis); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !cond.Kind().IsComparison() {
		return nil, diagnostics.SyntaxError(p.loc, "if condition must be a comparison")
	}
	if err := p.expect(token.RightParenthesis); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var els *ast.Node
	if matched, err := p.match(token.Else); err != nil {
		return nil, err
	} else if matched {
		els, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return ast.New(token.New(token.If), cond, then, els), nil
}

// parseWhile parses `while (COND) BLOCK`.
func (p *Parser) parseWhile() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LeftParenthesis); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !cond.Kind().IsComparison() {
		return nil, diagnostics.SyntaxError(p.loc, "while condition must be a comparison")
	}
	if err := p.expect(token.RightParenthesis); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.New(token.New(token.While), cond, nil, body), nil
}

// parseFor parses `for (INIT; COND; POST) BLOCK`, desugaring it at parse
// time into INIT followed by a WHILE node whose body is BODY glued with
// POST - the same rewrite the original implementation's statement parser
// performs, so the generator never needs a dedicated FOR case.
func (p *Parser) parseFor() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(token.LeftParenthesis); err != nil {
		return nil, err
	}

	p.symbols.Push()
	defer p.symbols.Pop()

	init, err := p.parseForClause()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !cond.Kind().IsComparison() {
		return nil, diagnostics.SyntaxError(p.loc, "for condition must be a comparison")
	}
	if err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	post, err := p.parseForClause()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.RightParenthesis); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	loopBody := ast.Glue(body, post)
	loop := ast.New(token.New(token.While), cond, nil, loopBody)
	return ast.Glue(init, loop), nil
}

// parseForClause parses a for-loop's init or post clause: either a var
// declaration (init only) or a bare expression statement, without the
// trailing semicolon (the caller consumes it).
func (p *Parser) parseForClause() (*ast.Node, *diagnostics.Diagnostic) {
	if p.cur.Kind.IsType() || p.cur.Kind == token.Const {
		return p.parseVarDeclarator(false)
	}
	return p.ParseExpression()
}

// parseExpressionStatement parses a bare expression (an assignment or a
// function call invoked for its side effect) followed by a semicolon.
func (p *Parser) parseExpressionStatement() (*ast.Node, *diagnostics.Diagnostic) {
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return expr, nil
}
