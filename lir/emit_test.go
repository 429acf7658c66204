package lir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/lirvalue"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

func intLit(v int) *ast.Node {
	n := ast.NewLeaf(token.NewInt(token.IntegerLiteral, v))
	n.Type = &types.Number{Kind: types.Int, Value: v}
	return n
}

func TestGenerateIntegerLiteralReturnsConstant(t *testing.T) {
	g := newGenerator()
	v, err := g.Generate(intLit(5))
	require.Nil(t, err)
	assert.Equal(t, lirvalue.Constant, v.Kind)
	assert.Equal(t, 5, v.NameInt)
}

func TestGenerateArithmeticEmitsInstruction(t *testing.T) {
	g := newGenerator()
	n := ast.New(token.New(token.Plus), intLit(1), nil, intLit(2))
	_, err := g.Generate(n)
	require.Nil(t, err)
	assert.True(t, strings.Contains(g.Output(), "= add nsw i32 1, 2"))
}

func TestGenerateLocalVarDeclAllocatesAndStores(t *testing.T) {
	g := newGenerator()
	entry := &symtab.Entry{Name: "x", Type: &types.Number{Kind: types.Int}}
	decl := ast.NewLeaf(token.NewStr(token.VarDecl, "x"))
	decl.Entry = entry
	decl.Type = entry.Type
	decl.Left = intLit(9)

	_, err := g.Generate(decl)
	require.Nil(t, err)

	out := g.Output()
	assert.True(t, strings.Contains(out, "%x = alloca i32"))
	assert.True(t, strings.Contains(out, "store i32 9, i32* %x"))
	assert.Equal(t, "x", entry.LatestValue.Name())
}

func TestGenerateIdentifierLoadsLocalSlot(t *testing.T) {
	g := newGenerator()
	entry := &symtab.Entry{Name: "x", Type: &types.Number{Kind: types.Int}}
	entry.LatestValue = g.Alloca("x", lirvalue.NewConstant(0, types.Int))

	id := ast.NewLeaf(token.NewStr(token.Identifier, "x"))
	id.Entry = entry
	id.Type = entry.Type

	v, err := g.Generate(id)
	require.Nil(t, err)
	assert.Equal(t, types.Int, v.PrimKind)
}

func TestGenerateGlobalIdentifierLoadsThroughSymbol(t *testing.T) {
	g := newGenerator()
	entry := &symtab.Entry{Name: "g", Type: &types.Number{Kind: types.Int}}
	g.Symbols.Global().Set("g", entry)

	id := ast.NewLeaf(token.NewStr(token.Identifier, "g"))
	id.Entry = entry
	id.Type = entry.Type

	_, err := g.Generate(id)
	require.Nil(t, err)
	assert.True(t, strings.Contains(g.Output(), "load i32, i32* @g"))
}

func TestGenerateAssignToLeftvalueIdentStoresLocal(t *testing.T) {
	g := newGenerator()
	entry := &symtab.Entry{Name: "x", Type: &types.Number{Kind: types.Int}, Writeable: true}
	entry.LatestValue = g.Alloca("x", lirvalue.NewConstant(0, types.Int))

	target := ast.NewLeaf(token.NewStr(token.LeftvalueIdent, "x"))
	target.Entry = entry
	target.Type = entry.Type

	assignNode := ast.New(token.New(token.Assign), intLit(42), nil, target)
	_, err := g.Generate(assignNode)
	require.Nil(t, err)
	assert.True(t, strings.Contains(g.Output(), "store i32 42, i32* %x"))
}

func TestGenerateLocalStructDeclAllocatesAggregateSlot(t *testing.T) {
	g := newGenerator()
	point := &types.Struct{Name: "point", Fields: []types.Field{
		{Name: "x", Type: &types.Number{Kind: types.Int}},
		{Name: "y", Type: &types.Number{Kind: types.Int}},
	}}
	entry := &symtab.Entry{Name: "p", Type: point}
	decl := ast.NewLeaf(token.NewStr(token.VarDecl, "p"))
	decl.Entry = entry
	decl.Type = point

	_, err := g.Generate(decl)
	require.Nil(t, err)

	assert.True(t, strings.Contains(g.Output(), "%p = alloca %point"))
	assert.Equal(t, lirvalue.VirtualRegister, entry.LatestValue.Kind)
	assert.Equal(t, point, entry.LatestValue.StructOf)

	fieldNode := ast.New(token.NewStr(token.FieldAccess, "x"), nil, nil, nil)
	idNode := ast.NewLeaf(token.NewStr(token.Identifier, "p"))
	idNode.Entry = entry
	idNode.Type = point
	fieldNode.Left = idNode

	_, err = g.generateFieldAddress(fieldNode)
	require.Nil(t, err)
	assert.True(t, strings.Contains(g.Output(), "getelementptr inbounds %point, %point* %p, i32 0, i32 0"))
}

func TestGenerateIfEmitsBothBranchesAndMerge(t *testing.T) {
	g := newGenerator()
	cond := ast.New(token.New(token.Lt), intLit(1), nil, intLit(2))
	cond.Type = &types.Number{Kind: types.Bool}
	thenBody := ast.NewUnary(token.New(token.Return), intLit(1))
	elseBody := ast.NewUnary(token.New(token.Return), intLit(0))

	g.FunctionPreamble("f", &types.Function{Return: &types.Number{Kind: types.Int}}, nil)
	ifNode := ast.New(token.New(token.If), cond, thenBody, elseBody)
	_, err := g.Generate(ifNode)
	require.Nil(t, err)

	out := g.Output()
	assert.True(t, strings.Contains(out, "br i1"))
	assert.True(t, strings.Contains(out, "L0:"))
	assert.True(t, strings.Contains(out, "L1:"))
	assert.True(t, strings.Contains(out, "L2:"))
}

func TestGenerateWhileEmitsLoopStructure(t *testing.T) {
	g := newGenerator()
	cond := ast.New(token.New(token.Lt), intLit(1), nil, intLit(2))
	cond.Type = &types.Number{Kind: types.Bool}
	body := ast.NewUnary(token.New(token.Print), intLit(1))

	whileNode := ast.New(token.New(token.While), cond, nil, body)
	err := g.generateWhile(whileNode)
	require.Nil(t, err)

	out := g.Output()
	assert.True(t, strings.Contains(out, "br label %L0"))
	assert.True(t, strings.Contains(out, "br i1"))
}
