package parser

import (
	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

// aggregateKey namespaces struct/union tags in the global table so a
// "struct Point" type name never collides with a variable, function, or
// enum member called Point.
func aggregateKey(isStruct bool, name string) string {
	if isStruct {
		return "struct " + name
	}
	return "union " + name
}

func primitiveKindFor(k token.Kind) types.PrimitiveKind {
	switch k {
	case token.Void:
		return types.Void
	case token.Char:
		return types.Char
	case token.Short:
		return types.Short
	case token.Long:
		return types.Long
	default:
		return types.Int
	}
}

// parseTypeSpecifier parses an optional `const`, a base type (a primitive
// keyword with zero or more trailing `*`, or `struct`/`union` NAME), and
// reports the descriptor plus whether it is writeable.
func (p *Parser) parseTypeSpecifier() (types.Descriptor, bool, *diagnostics.Diagnostic) {
	writeable := true
	if ok, err := p.match(token.Const); err != nil {
		return nil, false, err
	} else if ok {
		writeable = false
	}

	switch p.cur.Kind {
	case token.Struct, token.Union:
		isStruct := p.cur.Kind == token.Struct
		kindWord := "union"
		if isStruct {
			kindWord = "struct"
		}
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if p.cur.Kind != token.Identifier {
			return nil, false, diagnostics.SyntaxError(p.loc, "expected a %s name", kindWord)
		}
		name := p.cur.Value.Str
		loc := p.loc
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		entry := p.symbols.Global().Get(aggregateKey(isStruct, name))
		if entry == nil {
			return nil, false, diagnostics.IdentifierError(loc, "unknown %s %q", kindWord, name)
		}
		return entry.Type, writeable, nil

	case token.Void, token.Int, token.Char, token.Short, token.Long:
		kind := primitiveKindFor(p.cur.Kind)
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		depth := 0
		for p.cur.Kind == token.Star {
			depth++
			if err := p.advance(); err != nil {
				return nil, false, err
			}
		}
		return &types.Number{Kind: kind, PointerDepth: depth}, writeable, nil

	default:
		return nil, false, diagnostics.SyntaxError(p.loc, "expected a type but found %q", p.cur.Kind)
	}
}

// parseDeclaratorAfterName finishes a declarator once its base type and
// name have already been consumed: an optional `[N]` array suffix, an
// optional `= EXPR` initializer, and symbol-table registration in whatever
// scope is currently innermost (global at top level, the enclosing block
// otherwise).
func (p *Parser) parseDeclaratorAfterName(name string, loc diagnostics.Location, base types.Descriptor, writeable bool) (*ast.Node, *diagnostics.Diagnostic) {
	declType := base

	if p.cur.Kind == token.LeftBracket {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind != token.IntegerLiteral {
			return nil, diagnostics.ArrayError(p.loc, "array length must be a constant integer literal")
		}
		length := p.cur.Value.Int
		if length < 0 {
			return nil, diagnostics.ArrayError(p.loc, "array length must not be negative, got %d", length)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(token.RightBracket); err != nil {
			return nil, err
		}
		num, ok := base.(*types.Number)
		if !ok {
			return nil, diagnostics.ArrayError(p.loc, "array element type must be a primitive, not %s", base.LLVMRepr())
		}
		declType = &types.Array{Element: num, Length: length, Dimension: 1}
	}

	entry := &symtab.Entry{Name: name, Type: declType, Writeable: writeable}
	if ok := p.symbols.Declare(name, entry, true); !ok {
		return nil, diagnostics.IdentifierError(loc, "redeclaration of %q", name)
	}

	node := ast.NewLeaf(token.NewStr(token.VarDecl, name))
	node.Entry = entry
	node.Type = declType

	if ok, err := p.match(token.Assign); err != nil {
		return nil, err
	} else if ok {
		init, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		node.Left = init
	}

	return node, nil
}

// parseVarDeclarator parses a whole `TYPE name [= EXPR]` declaration,
// consuming the trailing semicolon unless consumeSemicolon is false (used
// by a for-loop's init clause, whose semicolon the caller consumes itself).
func (p *Parser) parseVarDeclarator(consumeSemicolon bool) (*ast.Node, *diagnostics.Diagnostic) {
	base, writeable, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Identifier {
		return nil, diagnostics.SyntaxError(p.loc, "expected a variable name")
	}
	name := p.cur.Value.Str
	loc := p.loc
	if err := p.advance(); err != nil {
		return nil, err
	}

	node, err := p.parseDeclaratorAfterName(name, loc, base, writeable)
	if err != nil {
		return nil, err
	}
	if consumeSemicolon {
		if err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// parseLocalVarDeclaration parses a variable declaration statement inside a
// function body or block.
func (p *Parser) parseLocalVarDeclaration() (*ast.Node, *diagnostics.Diagnostic) {
	return p.parseVarDeclarator(true)
}

// parseFunctionOrGlobal parses a top-level `TYPE name ...` construct: a
// function prototype, a function definition, or a global variable
// declaration, distinguished by whether `(` follows the name.
func (p *Parser) parseFunctionOrGlobal() (*ast.Node, *diagnostics.Diagnostic) {
	base, writeable, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Identifier {
		return nil, diagnostics.SyntaxError(p.loc, "expected a function or variable name at top level")
	}
	name := p.cur.Value.Str
	loc := p.loc
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.Kind == token.LeftParenthesis {
		num, ok := base.(*types.Number)
		if !ok {
			return nil, diagnostics.InternalTypeError(loc, "primitive return type", base.LLVMRepr(), "function declaration")
		}
		return p.parseFunction(name, loc, num)
	}

	node, err := p.parseDeclaratorAfterName(name, loc, base, writeable)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return node, nil
}

// parseFunction parses a parameter list followed by either a `;` (a
// prototype) or a `{ ... }` body (a definition), checking a prior
// prototype's signature matches and rejecting a second definition.
func (p *Parser) parseFunction(name string, loc diagnostics.Location, ret *types.Number) (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.expect(token.LeftParenthesis); err != nil {
		return nil, err
	}

	var params []types.Field
	if p.cur.Kind != token.RightParenthesis {
		for {
			ptype, _, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			if p.cur.Kind != token.Identifier {
				return nil, diagnostics.SyntaxError(p.loc, "expected a parameter name")
			}
			pname := p.cur.Value.Str
			if err := p.advance(); err != nil {
				return nil, err
			}
			params = append(params, types.Field{Name: pname, Type: ptype})

			if ok, err := p.match(token.Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
	}
	if err := p.expect(token.RightParenthesis); err != nil {
		return nil, err
	}

	isDefinition := p.cur.Kind == token.LeftBrace
	fnType := &types.Function{Return: ret, Args: params, IsPrototype: !isDefinition}

	if existing := p.symbols.Global().Get(name); existing != nil {
		existingFn, ok := existing.Type.(*types.Function)
		if !ok {
			return nil, diagnostics.IdentifierError(loc, "redeclaration of %q as a different kind of symbol", name)
		}
		if !signaturesMatch(existingFn, fnType) {
			return nil, diagnostics.IdentifierError(loc, "conflicting declaration of %q", name)
		}
		if !existingFn.IsPrototype && isDefinition {
			return nil, diagnostics.IdentifierError(loc, "redefinition of %q", name)
		}
	}

	entry := &symtab.Entry{Name: name, Type: fnType, Writeable: false}
	p.symbols.Global().Set(name, entry)

	node := ast.NewLeaf(token.NewStr(token.Function, name))
	node.Entry = entry
	node.Type = fnType

	if !isDefinition {
		if err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
		return node, nil
	}

	prevReturn := p.currentFunctionReturn
	p.currentFunctionReturn = ret

	p.symbols.Push()
	paramEntries := make([]*symtab.Entry, len(params))
	for i, param := range params {
		e := &symtab.Entry{Name: param.Name, Type: param.Type, Writeable: true}
		p.symbols.Declare(param.Name, e, false)
		paramEntries[i] = e
	}
	body, err := p.parseBlock()
	p.symbols.Pop()
	p.currentFunctionReturn = prevReturn
	if err != nil {
		return nil, err
	}

	node.Left = body
	node.Params = paramEntries
	return node, nil
}

// signaturesMatch compares return type and parameter types by their LIR
// spelling, which is cheap and sufficient since ECCO has no overloading.
func signaturesMatch(a, b *types.Function) bool {
	if a.Return.LLVMRepr() != b.Return.LLVMRepr() {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i].Type.LLVMRepr() != b.Args[i].Type.LLVMRepr() {
			return false
		}
	}
	return true
}

// parseStructDeclaration parses `struct NAME { TYPE field; ... };`.
func (p *Parser) parseStructDeclaration() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Identifier {
		return nil, diagnostics.SyntaxError(p.loc, "expected a struct name")
	}
	name := p.cur.Value.Str
	loc := p.loc
	if err := p.advance(); err != nil {
		return nil, err
	}

	fields, err := p.parseAggregateBody()
	if err != nil {
		return nil, err
	}

	key := aggregateKey(true, name)
	if p.symbols.Global().Get(key) != nil {
		return nil, diagnostics.IdentifierError(loc, "redeclaration of struct %q", name)
	}
	st := &types.Struct{Name: name, Fields: fields}
	p.symbols.Global().Set(key, &symtab.Entry{Name: key, Type: st, Writeable: false})

	node := ast.NewLeaf(token.New(token.TypeDecl))
	node.Type = st
	return node, nil
}

// parseUnionDeclaration parses `union NAME { TYPE field; ... };`.
func (p *Parser) parseUnionDeclaration() (*ast.Node, *diagnostics.Diagnostic) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind != token.Identifier {
		return nil, diagnostics.SyntaxError(p.loc, "expected a union name")
	}
	name := p.cur.Value.Str
	loc := p.loc
	if err := p.advance(); err != nil {
		return nil, err
	}

	fields, err := p.parseAggregateBody()
	if err != nil {
		return nil, err
	}

	key := aggregateKey(false, name)
	if p.symbols.Global().Get(key) != nil {
		return nil, diagnostics.IdentifierError(loc, "redeclaration of union %q", name)
	}
	un := &types.Union{Name: name, Fields: fields}
	p.symbols.Global().Set(key, &symtab.Entry{Name: key, Type: un, Writeable: false})

	node := ast.NewLeaf(token.New(token.TypeDecl))
	node.Type = un
	return node, nil
}

// parseAggregateBody parses the `{ TYPE field; ... }` shared by struct and
// union declarations, plus the trailing semicolon that closes either.
func (p *Parser) parseAggregateBody() ([]types.Field, *diagnostics.Diagnostic) {
	if err := p.expect(token.LeftBrace); err != nil {
		return nil, err
	}

	var fields []types.Field
	for p.cur.Kind != token.RightBrace {
		ftype, _, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != token.Identifier {
			return nil, diagnostics.SyntaxError(p.loc, "expected a field name")
		}
		fname := p.cur.Value.Str
		if err := p.advance(); err != nil {
			return nil, err
		}
		fields = append(fields, types.Field{Name: fname, Type: ftype})
		if err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RightBrace); err != nil {
		return nil, err
	}
	return fields, p.expect(token.Semicolon)
}

// parseEnumDeclaration parses `enum [TAG] { NAME [= INT], ... };`,
// injecting each member straight into the global table as an integer
// constant (spec.md §4.3); enum declarations never themselves need code
// generation, so ParseTopLevel reports them as (nil, nil).
func (p *Parser) parseEnumDeclaration() *diagnostics.Diagnostic {
	if err := p.advance(); err != nil {
		return err
	}
	name := "anonymous"
	if p.cur.Kind == token.Identifier {
		name = p.cur.Value.Str
		if err := p.advance(); err != nil {
			return err
		}
	}
	if err := p.expect(token.LeftBrace); err != nil {
		return err
	}

	var members []types.Field
	next := 0
	for p.cur.Kind != token.RightBrace {
		if p.cur.Kind != token.Identifier {
			return diagnostics.SyntaxError(p.loc, "expected an enum member name")
		}
		mname := p.cur.Value.Str
		if err := p.advance(); err != nil {
			return err
		}

		val := next
		if ok, err := p.match(token.Assign); err != nil {
			return err
		} else if ok {
			if p.cur.Kind != token.IntegerLiteral {
				return diagnostics.SyntaxError(p.loc, "enum value must be a constant integer literal")
			}
			val = p.cur.Value.Int
			if err := p.advance(); err != nil {
				return err
			}
		}
		members = append(members, types.Field{Name: mname, Type: &types.Number{Kind: types.Int, Value: val}})
		next = val + 1

		if ok, err := p.match(token.Comma); err != nil {
			return err
		} else if !ok {
			break
		}
	}
	if err := p.expect(token.RightBrace); err != nil {
		return err
	}
	if err := p.expect(token.Semicolon); err != nil {
		return err
	}

	p.symbols.DeclareEnum(&types.Enum{Name: name, Members: members})
	return nil
}
