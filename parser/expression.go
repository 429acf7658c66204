package parser

import (
	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

// precedence reports a binary operator's climbing precedence, matching
// spec.md §4.4's table: * / bind tightest, then + -, then the relational
// comparisons, then equality, then assignment (right-associative, bound
// loosest of all).
func precedence(k token.Kind) (int, bool) {
	switch k {
	case token.Star, token.Slash:
		return 13, true
	case token.Plus, token.Minus:
		return 12, true
	case token.Lt, token.Leq, token.Gt, token.Geq:
		return 11, true
	case token.Eq, token.Neq:
		return 10, true
	case token.Assign:
		return 1, true
	}
	return 0, false
}

// ParseExpression parses a full expression at the lowest precedence,
// exported for statement.go's print/return/condition productions.
func (p *Parser) ParseExpression() (*ast.Node, *diagnostics.Diagnostic) {
	return p.parseExpr(0)
}

// parseExpr implements precedence-climbing binary parsing: each call
// consumes operators whose precedence is at least minPrec, recursing for
// the right-hand operand at minPrec+1 (left-associative) or minPrec
// (right-associative, used only by assignment).
func (p *Parser) parseExpr(minPrec int) (*ast.Node, *diagnostics.Diagnostic) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		opKind := p.cur.Kind
		prec, ok := precedence(opKind)
		if !ok || prec < minPrec {
			return left, nil
		}

		nextMin := prec + 1
		if opKind == token.Assign {
			nextMin = prec
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}

		if opKind == token.Assign {
			left, right = right, left
			if right.Kind() == token.Identifier {
				right.Token.Kind = token.LeftvalueIdent
			}
			if right.Entry != nil && !right.Entry.Writeable {
				return nil, diagnostics.IdentifierError(p.loc, "cannot assign to const identifier %q", right.Token.Value.Str)
			}
			node := ast.New(token.New(opKind), left, nil, right)
			node.IsRvalue = true
			node.Type = right.Type
			left = node
			continue
		}

		node := ast.New(token.New(opKind), left, nil, right)
		node.IsRvalue = true
		if opKind.IsComparison() {
			node.Type = &types.Number{Kind: types.Bool}
		} else {
			node.Type = widenNumbers(left.Type, right.Type)
		}
		left = node
	}
}

// widenNumbers implements spec.md §4.3's implicit-widening rule: the result
// of a binary arithmetic op takes the wider operand's primitive kind, with
// pointer depth preserved from whichever side has one (pointer arithmetic).
func widenNumbers(a, b types.Descriptor) types.Descriptor {
	an, aok := a.(*types.Number)
	bn, bok := b.(*types.Number)
	if !aok || !bok {
		if aok {
			return an
		}
		return b
	}
	if an.PointerDepth > 0 {
		return an
	}
	if bn.PointerDepth > 0 {
		return bn
	}
	if bn.Kind.Wider(an.Kind) {
		return &types.Number{Kind: bn.Kind}
	}
	return &types.Number{Kind: an.Kind}
}

// parseUnary handles the prefix operators (&, *, unary -) before falling
// through to a primary expression with its postfix chain.
func (p *Parser) parseUnary() (*ast.Node, *diagnostics.Diagnostic) {
	switch p.cur.Kind {
	case token.Ampersand:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n, ok := operand.Type.(*types.Number)
		if !ok {
			return nil, diagnostics.InternalTypeError(p.loc, "addressable value", operand.Type.LLVMRepr(), "address-of")
		}
		node := ast.NewUnary(token.New(token.Ampersand), operand)
		node.Type = &types.Number{Kind: n.Kind, PointerDepth: n.PointerDepth + 1}
		return node, nil

	case token.Star:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n, ok := operand.Type.(*types.Number)
		if !ok || n.PointerDepth == 0 {
			return nil, diagnostics.InternalTypeError(p.loc, "pointer", "non-pointer", "dereference")
		}
		node := ast.NewUnary(token.New(token.Dereference), operand)
		node.IsRvalue = true
		node.Type = &types.Number{Kind: n.Kind, PointerDepth: n.PointerDepth - 1}
		return node, nil

	case token.Minus:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := ast.NewLeaf(token.NewInt(token.IntegerLiteral, 0))
		zero.Type = &types.Number{Kind: types.Int}
		node := ast.New(token.New(token.Minus), zero, nil, operand)
		node.IsRvalue = true
		node.Type = operand.Type
		return node, nil

	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses an integer literal, parenthesized expression, or
// identifier (plain variable, function call, or the start of an array
// access / field access postfix chain).
func (p *Parser) parsePrimary() (*ast.Node, *diagnostics.Diagnostic) {
	switch p.cur.Kind {
	case token.IntegerLiteral:
		node := ast.NewLeaf(p.cur)
		node.Type = &types.Number{Kind: types.Int, Value: p.cur.Value.Int}
		node.IsRvalue = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil

	case token.LeftParenthesis:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RightParenthesis); err != nil {
			return nil, err
		}
		return inner, nil

	case token.Identifier:
		name := p.cur.Value.Str
		loc := p.loc
		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.cur.Kind == token.LeftParenthesis {
			return p.parseCall(name, loc)
		}

		entry := p.symbols.Lookup(name)
		if entry == nil {
			return nil, diagnostics.IdentifierError(loc, "use of undeclared identifier %q", name)
		}

		node := ast.NewLeaf(token.NewStr(token.Identifier, name))
		node.Entry = entry
		node.Type = entry.Type
		node.IsRvalue = true
		return p.parsePostfix(node)

	default:
		return nil, diagnostics.SyntaxError(p.loc, "expected an expression but found %q", p.cur.Kind)
	}
}

// parseCall parses a function-call argument list, looking the callee up in
// the global table (ECCO has no function pointers or nested functions).
func (p *Parser) parseCall(name string, loc diagnostics.Location) (*ast.Node, *diagnostics.Diagnostic) {
	entry := p.symbols.Global().Get(name)
	if entry == nil {
		return nil, diagnostics.IdentifierError(loc, "call to undeclared function %q", name)
	}
	fn, ok := entry.Type.(*types.Function)
	if !ok {
		return nil, diagnostics.IdentifierError(loc, "%q is not a function", name)
	}

	if err := p.expect(token.LeftParenthesis); err != nil {
		return nil, err
	}

	var args []*ast.Node
	for p.cur.Kind != token.RightParenthesis {
		arg, err := p.parseExpr(precedenceAboveAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if ok, err := p.match(token.Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expect(token.RightParenthesis); err != nil {
		return nil, err
	}

	node := ast.NewCall(token.NewStr(token.FunctionCall, name), args)
	node.Entry = entry
	node.Type = fn.Return
	node.IsRvalue = true
	return node, nil
}

// precedenceAboveAssign is the minimum precedence used when parsing a call
// argument, so that a bare `f(a = b)` is rejected the same way the original
// grammar rejects assignment as a non-parenthesized argument expression:
// arguments bind at the comma-list level, one tick above assignment.
const precedenceAboveAssign = 2

// parsePostfix wraps node in a chain of ARRAY_ACCESS / FIELD_ACCESS nodes
// for each trailing `[...]` or `.name`, matching spec.md §4.4's postfix
// grammar.
func (p *Parser) parsePostfix(node *ast.Node) (*ast.Node, *diagnostics.Diagnostic) {
	for {
		switch p.cur.Kind {
		case token.LeftBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			index, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.RightBracket); err != nil {
				return nil, err
			}

			elemType, err := arrayElementType(node.Type, p.loc)
			if err != nil {
				return nil, err
			}
			access := ast.New(token.New(token.ArrayAccess), node, nil, index)
			access.Type = elemType
			access.IsRvalue = true
			access.Entry = node.Entry
			node = access

		case token.Access:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Kind != token.Identifier {
				return nil, diagnostics.SyntaxError(p.loc, "expected a field name after '.'")
			}
			field := p.cur.Value.Str
			loc := p.loc
			if err := p.advance(); err != nil {
				return nil, err
			}

			fieldType, err := fieldType(node.Type, field, loc)
			if err != nil {
				return nil, err
			}
			access := ast.NewUnary(token.NewStr(token.FieldAccess, field), node)
			access.Type = fieldType
			access.IsRvalue = true
			access.Entry = node.Entry
			node = access

		default:
			return node, nil
		}
	}
}

// arrayElementType reports the element type of an array-typed descriptor,
// or an InternalTypeError if t is not an array.
func arrayElementType(t types.Descriptor, loc diagnostics.Location) (*types.Number, *diagnostics.Diagnostic) {
	arr, ok := t.(*types.Array)
	if !ok {
		return nil, diagnostics.InternalTypeError(loc, "array", t.LLVMRepr(), "array access")
	}
	return arr.Element, nil
}

// fieldType resolves a struct/union field's type by name, or raises an
// IdentifierError if the field does not exist on t.
func fieldType(t types.Descriptor, field string, loc diagnostics.Location) (types.Descriptor, *diagnostics.Diagnostic) {
	switch agg := t.(type) {
	case *types.Struct:
		if ft := agg.FieldType(field); ft != nil {
			return ft, nil
		}
	case *types.Union:
		if ft := agg.FieldType(field); ft != nil {
			return ft, nil
		}
	default:
		return nil, diagnostics.InternalTypeError(loc, "struct or union", t.LLVMRepr(), "field access")
	}
	return nil, diagnostics.IdentifierError(loc, "no field %q on %s", field, t.LLVMRepr())
}
