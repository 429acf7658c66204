package lir

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/instructions"
	"github.com/ecco-lang/ecco/lirvalue"
	"github.com/ecco-lang/ecco/optimizer"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/types"
)

func newGenerator() *Generator {
	return New(symtab.New(), optimizer.LevelOff, diagnostics.NewLogger(diagnostics.LevelNone, os.Stdout))
}

func TestPreambleAndPostambleWrapOutput(t *testing.T) {
	g := newGenerator()
	g.Preamble("test")
	g.Postamble()
	out := g.Output()

	assert.True(t, strings.Contains(out, `target triple = "x86_64-pc-linux-gnu"`))
	assert.True(t, strings.Contains(out, "@printint"))
	assert.True(t, strings.Contains(out, "!llvm.module.flags"))
}

func TestGlobalsSpliceIntoPlaceholder(t *testing.T) {
	g := newGenerator()
	g.Preamble("test")
	g.DeclareGlobal("total", &types.Number{Kind: types.Int, Value: 7})
	g.Postamble()
	out := g.Output()

	assert.True(t, strings.Contains(out, "@total = global i32 7"))
	assert.False(t, strings.Contains(out, "GLOBALS PLACEHOLDER"))
}

func TestArithmeticWidensToWiderOperand(t *testing.T) {
	g := newGenerator()
	l := lirvalue.NewConstant(1, types.Int)
	r := lirvalue.NewConstant(2, types.Long)
	out := g.Arithmetic(instructions.Add, l, r)
	assert.Equal(t, types.Long, out.PrimKind)
}

func TestComparisonProducesBool(t *testing.T) {
	g := newGenerator()
	l := lirvalue.NewConstant(1, types.Int)
	r := lirvalue.NewConstant(2, types.Int)
	out := g.Comparison(instructions.PredSLT, l, r)
	assert.Equal(t, types.Bool, out.PrimKind)
}

func TestAllocaReturnsPointerDepthOneNamedRegister(t *testing.T) {
	g := newGenerator()
	slot := g.Alloca("x", lirvalue.NewConstant(0, types.Int))
	assert.Equal(t, "x", slot.Name())
	assert.Equal(t, 1, slot.PointerDepth)
}

func TestFunctionPreambleBindsParameterSlots(t *testing.T) {
	g := newGenerator()
	fn := &types.Function{
		Return: &types.Number{Kind: types.Int},
		Args:   []types.Field{{Name: "a", Type: &types.Number{Kind: types.Int}}},
	}
	entry := &symtab.Entry{Name: "a", Type: &types.Number{Kind: types.Int}}
	g.FunctionPreamble("f", fn, []*symtab.Entry{entry})
	g.FunctionPostamble(fn)

	require.NotNil(t, entry.LatestValue)
	assert.Equal(t, "a", entry.LatestValue.Name())
	assert.True(t, strings.Contains(g.Output(), "define dso_local i32 @f(i32 %0)"))
}

func TestFunctionPreambleResetsRegisterCounterPastParams(t *testing.T) {
	g := newGenerator()
	fn := &types.Function{
		Return: &types.Number{Kind: types.Int},
		Args:   []types.Field{{Name: "a", Type: &types.Number{Kind: types.Int}}},
	}
	g.FunctionPreamble("f", fn, []*symtab.Entry{{Name: "a", Type: &types.Number{Kind: types.Int}}})

	first := g.newRegister(types.Int, 0)
	assert.Equal(t, "1", first.Name())
}

func TestReturnVoidWhenFunctionIsVoid(t *testing.T) {
	g := newGenerator()
	fn := &types.Function{Return: &types.Number{Kind: types.Void}}
	g.Return(lirvalue.NoValue(), fn)
	assert.True(t, strings.Contains(g.Output(), "ret void"))
}
