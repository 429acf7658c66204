package lir

import (
	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/instructions"
	"github.com/ecco-lang/ecco/lirvalue"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

var arithmeticOps = map[token.Kind]instructions.Op{
	token.Plus:  instructions.Add,
	token.Minus: instructions.Sub,
	token.Star:  instructions.Mul,
	token.Slash: instructions.UDiv,
}

var comparisonPreds = map[token.Kind]instructions.Predicate{
	token.Eq:  instructions.PredEQ,
	token.Neq: instructions.PredNE,
	token.Lt:  instructions.PredSLT,
	token.Leq: instructions.PredSLE,
	token.Gt:  instructions.PredSGT,
	token.Geq: instructions.PredSGE,
}

// Generate lowers one AST node (and everything beneath it) into LIR,
// returning the value it evaluates to - NoValue for statements emitted
// purely for effect. This mirrors the original implementation's
// ast_to_llvm dispatch, one case per node kind.
func (g *Generator) Generate(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	if n == nil {
		return lirvalue.NoValue(), nil
	}

	switch n.Kind() {
	case token.IntegerLiteral:
		// Integer literals are returned as constants at every optimization
		// level; no stack slot is allocated for them.
		return lirvalue.NewConstant(n.Token.Value.Int, primKindOf(n.Type)), nil

	case token.ASTGlue:
		if _, err := g.Generate(n.Left); err != nil {
			return lirvalue.NoValue(), err
		}
		return g.Generate(n.Right)

	case token.Identifier:
		return g.loadIdentifier(n)

	case token.Assign:
		return g.generateAssign(n)

	case token.Ampersand:
		return g.generateAddressOf(n)

	case token.Dereference:
		operand, err := g.Generate(n.Left)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		return g.ensureLoaded(operand, 1), nil

	case token.ArrayAccess:
		ptr, err := g.generateArrayAddress(n)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		return g.ensureLoaded(ptr, 0), nil

	case token.FieldAccess:
		ptr, err := g.generateFieldAddress(n)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		return g.ensureLoaded(ptr, 0), nil

	case token.FunctionCall:
		return g.generateCall(n)

	case token.Print:
		v, err := g.Generate(n.Left)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		g.Print(v)
		return lirvalue.NoValue(), nil

	case token.Return:
		v, err := g.Generate(n.Left)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		g.Return(v, g.currentFunctionType)
		return lirvalue.NoValue(), nil

	case token.If:
		return lirvalue.NoValue(), g.generateIf(n)

	case token.While:
		return lirvalue.NoValue(), g.generateWhile(n)

	case token.VarDecl:
		return lirvalue.NoValue(), g.generateLocalVarDecl(n)

	default:
		if op, ok := arithmeticOps[n.Kind()]; ok {
			l, err := g.Generate(n.Left)
			if err != nil {
				return lirvalue.NoValue(), err
			}
			r, err := g.Generate(n.Right)
			if err != nil {
				return lirvalue.NoValue(), err
			}
			return g.Arithmetic(op, l, r), nil
		}
		if pred, ok := comparisonPreds[n.Kind()]; ok {
			l, err := g.Generate(n.Left)
			if err != nil {
				return lirvalue.NoValue(), err
			}
			r, err := g.Generate(n.Right)
			if err != nil {
				return lirvalue.NoValue(), err
			}
			return g.Comparison(pred, l, r), nil
		}
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "known AST node kind", string(n.Kind()), "lir.Generate")
	}
}

func primKindOf(d types.Descriptor) types.PrimitiveKind {
	if n, ok := d.(*types.Number); ok {
		return n.Kind
	}
	return types.Int
}

// loadIdentifier reads a variable's current value: a global is loaded
// through its "@name" symbol, a local/parameter through its tracked slot,
// and an enum member is returned as a bare constant.
func (g *Generator) loadIdentifier(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	entry := n.Entry
	num, ok := entry.Type.(*types.Number)
	if !ok {
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "Number", entry.Type.LLVMRepr(), "identifier load")
	}
	if entry.IsEnumValue {
		return lirvalue.NewConstant(num.Value, num.Kind), nil
	}
	if g.Symbols.Global().Get(entry.Name) == entry {
		return g.LoadGlobal(entry.Name, num), nil
	}
	return g.ensureLoaded(entry.LatestValue, 0), nil
}

// generateAssign evaluates the RHS (the swapped tree's left child), then
// stores it into whatever the LHS-of-source (the tree's right child)
// names: a plain identifier, a dereferenced pointer, an array element, or a
// struct/union field.
func (g *Generator) generateAssign(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	rhs, err := g.Generate(n.Left)
	if err != nil {
		return lirvalue.NoValue(), err
	}

	target := n.Right
	switch target.Kind() {
	case token.LeftvalueIdent:
		entry := target.Entry
		num := entry.Type.(*types.Number)
		if g.Symbols.Global().Get(entry.Name) == entry {
			g.StoreGlobal(entry.Name, num, rhs)
		} else {
			g.StoreLocal(entry.LatestValue, rhs)
		}
		return rhs, nil

	case token.Dereference:
		ptr, err := g.Generate(target.Left)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		ptr = g.ensureLoaded(ptr, 1)
		g.StoreThroughPointer(ptr, rhs)
		return rhs, nil

	case token.ArrayAccess:
		ptr, err := g.generateArrayAddress(target)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		g.StoreThroughPointer(ptr, rhs)
		return rhs, nil

	case token.FieldAccess:
		ptr, err := g.generateFieldAddress(target)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		g.StoreThroughPointer(ptr, rhs)
		return rhs, nil

	default:
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "an assignable target", string(target.Kind()), "assignment")
	}
}

// generateAddressOf computes &operand without emitting a load: a local's
// alloca'd slot already is its address, and a global is addressed by its
// "@name" symbol directly.
func (g *Generator) generateAddressOf(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	operand := n.Left
	if operand.Kind() != token.Identifier {
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "identifier", string(operand.Kind()), "address-of")
	}
	entry := operand.Entry
	num := entry.Type.(*types.Number)
	if g.Symbols.Global().Get(entry.Name) == entry {
		return lirvalue.NewGlobalPointer(entry.Name, num.Kind, num.PointerDepth+1), nil
	}
	return entry.LatestValue, nil
}

// generateArrayAddress computes a pointer to arr[index] without loading it,
// for use both as an rvalue (ArrayAccess) and as an assignment target.
func (g *Generator) generateArrayAddress(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	arrNode := n.Left
	entry := arrNode.Entry
	arr, ok := entry.Type.(*types.Array)
	if !ok {
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "array", entry.Type.LLVMRepr(), "array access")
	}

	var base lirvalue.Value
	if g.Symbols.Global().Get(entry.Name) == entry {
		base = lirvalue.NewGlobalPointer(entry.Name, arr.Element.Kind, 1)
	} else {
		base = entry.LatestValue
	}
	base.ArrayOf = arr

	index, err := g.Generate(n.Right)
	if err != nil {
		return lirvalue.NoValue(), err
	}
	return g.GEPArrayIndex(base, index), nil
}

// generateFieldAddress computes a pointer to a struct/union field without
// loading it.
func (g *Generator) generateFieldAddress(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	obj, err := g.addressableOperand(n.Left)
	if err != nil {
		return lirvalue.NoValue(), err
	}

	field := n.Token.Value.Str
	switch agg := n.Left.Type.(type) {
	case *types.Struct:
		idx := agg.FieldIndex(field)
		if idx < 0 {
			return lirvalue.NoValue(), diagnostics.IdentifierError(diagnostics.Location{}, "no field %q on struct %s", field, agg.Name)
		}
		return g.GEPField(obj, agg.Name, idx, primKindOf(agg.FieldType(field))), nil
	case *types.Union:
		// A union's single backing slot is always field index 0.
		return g.GEPField(obj, agg.Name, 0, primKindOf(agg.FieldType(field))), nil
	default:
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "struct or union", n.Left.Type.LLVMRepr(), "field access")
	}
}

// addressableOperand resolves the pointer to an identifier or nested
// array/field access, without performing a final load, for use as a GEP
// base operand.
func (g *Generator) addressableOperand(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	switch n.Kind() {
	case token.Identifier:
		entry := n.Entry
		if g.Symbols.Global().Get(entry.Name) == entry {
			return lirvalue.NewGlobalPointer(entry.Name, primKindOf(entry.Type), 1), nil
		}
		return entry.LatestValue, nil
	case token.ArrayAccess:
		return g.generateArrayAddress(n)
	case token.FieldAccess:
		return g.generateFieldAddress(n)
	default:
		return lirvalue.NoValue(), diagnostics.InternalTypeError(diagnostics.Location{}, "an addressable operand", string(n.Kind()), "field access")
	}
}

// generateCall evaluates each argument left to right, then emits the call.
func (g *Generator) generateCall(n *ast.Node) (lirvalue.Value, *diagnostics.Diagnostic) {
	fn := n.Entry.Type.(*types.Function)
	args := make([]lirvalue.Value, len(n.CallArgs))
	for i, a := range n.CallArgs {
		v, err := g.Generate(a)
		if err != nil {
			return lirvalue.NoValue(), err
		}
		args[i] = v
	}
	return g.Call(n.Token.Value.Str, fn, args), nil
}

// generateIf emits a condition, a conditional branch to a then/else/merge
// label triple, and both bodies.
func (g *Generator) generateIf(n *ast.Node) *diagnostics.Diagnostic {
	cond, err := g.Generate(n.Left)
	if err != nil {
		return err
	}
	cond = g.ensureLoaded(cond, 0)

	thenLabel := g.newLabel()
	mergeLabel := g.newLabel()
	elseLabel := mergeLabel
	if n.Right != nil {
		elseLabel = g.newLabel()
	}

	g.ConditionalJump(cond, thenLabel, elseLabel)

	g.Label(thenLabel)
	if _, err := g.Generate(n.Middle); err != nil {
		return err
	}
	g.Jump(mergeLabel)

	if n.Right != nil {
		g.Label(elseLabel)
		if _, err := g.Generate(n.Right); err != nil {
			return err
		}
		g.Jump(mergeLabel)
	}

	g.Label(mergeLabel)
	return nil
}

// generateWhile emits the classic condition/body/loop label triple.
func (g *Generator) generateWhile(n *ast.Node) *diagnostics.Diagnostic {
	condLabel := g.newLabel()
	bodyLabel := g.newLabel()
	endLabel := g.newLabel()

	g.Jump(condLabel)
	g.Label(condLabel)

	cond, err := g.Generate(n.Left)
	if err != nil {
		return err
	}
	cond = g.ensureLoaded(cond, 0)
	g.ConditionalJump(cond, bodyLabel, endLabel)

	g.Label(bodyLabel)
	if _, err := g.Generate(n.Right); err != nil {
		return err
	}
	g.Jump(condLabel)

	g.Label(endLabel)
	return nil
}

// generateLocalVarDecl allocates a stack slot for a local variable,
// records it as the entry's latest value, and stores an initializer if one
// was given.
func (g *Generator) generateLocalVarDecl(n *ast.Node) *diagnostics.Diagnostic {
	entry := n.Entry
	switch t := entry.Type.(type) {
	case *types.Number:
		slot := g.Alloca(entry.Name, lirvalue.NewConstant(0, t.Kind))
		entry.LatestValue = slot
		if n.Left != nil {
			init, err := g.Generate(n.Left)
			if err != nil {
				return err
			}
			g.StoreLocal(slot, init)
		} else if t.Value != 0 {
			g.StoreLocal(slot, lirvalue.NewConstant(t.Value, t.Kind))
		}
	case *types.Array:
		slot := g.Alloca(entry.Name, lirvalue.Value{ArrayOf: t, PrimKind: t.Element.Kind})
		slot.ArrayOf = t
		entry.LatestValue = slot
	case *types.Struct:
		slot := g.Alloca(entry.Name, lirvalue.Value{StructOf: t, PrimKind: types.Int})
		slot.StructOf = t
		entry.LatestValue = slot
	case *types.Union:
		slot := g.Alloca(entry.Name, lirvalue.Value{UnionOf: t, PrimKind: types.Int})
		slot.UnionOf = t
		entry.LatestValue = slot
	default:
		return diagnostics.InternalTypeError(diagnostics.Location{}, "Number, Array, Struct, or Union", entry.Type.LLVMRepr(), "local variable declaration")
	}
	return nil
}
