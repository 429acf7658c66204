// Package parser implements ECCO's single-pass recursive-descent parser:
// a Pratt-style expression parser (expression.go), statement parser
// (statement.go), and declaration parser (declaration.go), all sharing the
// Parser state defined here. Structurally this keeps the teacher's
// Compiler-drives-Lexer shape (compiler/compiler.go in the teacher), but the
// parser now also builds a typed AST and threads a symbol-table stack,
// matching spec.md §4.4.
package parser

import (
	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/lexer"
	"github.com/ecco-lang/ecco/optimizer"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

// Parser turns a token stream into top-level AST nodes, one declaration or
// function at a time, maintaining the symbol-table stack across calls.
type Parser struct {
	lex     *lexer.Lexer
	symbols *symtab.Stack
	opt     optimizer.Level
	logger  *diagnostics.Logger

	cur token.Token
	loc diagnostics.Location

	// currentFunctionReturn holds the enclosing function's declared
	// return type while parsing its body (Kind == types.Void for a void
	// function), or nil at top level.
	currentFunctionReturn *types.Number
}

// New builds a Parser over source, sharing symbols with whatever else
// inspects declarations across multiple compilation units (ECCO compiles a
// single file, so in practice a fresh Stack every run).
func New(source string, symbols *symtab.Stack, opt optimizer.Level, logger *diagnostics.Logger) (*Parser, *diagnostics.Diagnostic) {
	p := &Parser{
		lex:     lexer.New(source),
		symbols: symbols,
		opt:     opt,
		logger:  logger,
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Symbols exposes the parser's symbol-table stack, for a generator that
// needs to register a predeclared builtin (printint) before parsing begins.
func (p *Parser) Symbols() *symtab.Stack { return p.symbols }

// advance scans the next token into p.cur, recording its location.
func (p *Parser) advance() *diagnostics.Diagnostic {
	tok, err := p.lex.Advance()
	if err != nil {
		return err
	}
	p.cur = tok
	p.loc = p.lex.Location()
	return nil
}

// at reports whether the current token has kind k.
func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

// expect consumes the current token if it has kind k, otherwise raises a
// SyntaxError. EOF is reported as a missing-semicolon diagnostic when k is
// SEMICOLON, matching spec.md §7's EOF_MISSING_SEMICOLON variant.
func (p *Parser) expect(k token.Kind) *diagnostics.Diagnostic {
	if p.cur.Kind == token.EOF && k == token.Semicolon {
		return diagnostics.EOFMissingSemicolon(p.loc)
	}
	if p.cur.Kind != k {
		return diagnostics.SyntaxError(p.loc, "expected %q but found %q", k, p.cur.Kind)
	}
	return p.advance()
}

// match consumes and reports whether the current token has kind k, without
// raising a diagnostic when it doesn't.
func (p *Parser) match(k token.Kind) (bool, *diagnostics.Diagnostic) {
	if p.cur.Kind != k {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	return true, nil
}

// AtEOF reports whether the parser has consumed the whole token stream.
func (p *Parser) AtEOF() bool { return p.cur.Kind == token.EOF }

// ParseTopLevel parses exactly one top-level construct: a function
// prototype/definition, a global variable declaration, a struct/union
// type declaration, or an enum declaration, per spec.md §4.4's top-level
// grammar. Struct/union declarations come back as a TypeDecl marker node
// (carrying the registered Descriptor in Type) so a caller that owns a LIR
// generator can emit the aggregate's type line; enum declarations return
// nil, nil (enum members are injected straight into the GST and never
// themselves need code generation).
func (p *Parser) ParseTopLevel() (*ast.Node, *diagnostics.Diagnostic) {
	switch p.cur.Kind {
	case token.Struct:
		return p.parseStructDeclaration()
	case token.Union:
		return p.parseUnionDeclaration()
	case token.Enum:
		return nil, p.parseEnumDeclaration()
	default:
		return p.parseFunctionOrGlobal()
	}
}
