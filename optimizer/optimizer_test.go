package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/token"
)

func lit(v int) *ast.Node { return intLeaf(v) }

func bin(k token.Kind, l, r *ast.Node) *ast.Node { return ast.New(token.New(k), l, nil, r) }

var here = diagnostics.Location{Line: 1, Column: 1}

func TestTwoLiteralFold(t *testing.T) {
	// (1+2)*(3+4)
	tree := bin(token.Star, bin(token.Plus, lit(1), lit(2)), bin(token.Plus, lit(3), lit(4)))
	out, err := Optimize(tree, LevelFixpoint, here)
	require.Nil(t, err)
	assert.Equal(t, token.IntegerLiteral, out.Kind())
	assert.Equal(t, 21, out.Token.Value.Int)
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	tree := bin(token.Slash, lit(1), lit(0))
	_, err := Optimize(tree, LevelFixpoint, here)
	require.NotNil(t, err)
	assert.Equal(t, 1, err.ExitCode())
}

func TestZeroIdentities(t *testing.T) {
	cases := []struct {
		name string
		tree *ast.Node
		want int
	}{
		{"x+0", bin(token.Plus, bin(token.Plus, lit(5), lit(0)), lit(0)), 5},
		{"0+x", bin(token.Plus, lit(0), lit(5)), 5},
		{"x*0", bin(token.Star, lit(5), lit(0)), 0},
		{"0*x", bin(token.Star, lit(0), lit(5)), 0},
		{"0/x", bin(token.Slash, lit(0), lit(5)), 0},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			out, err := Optimize(c.tree, LevelFixpoint, here)
			require.Nil(t, err)
			require.Equal(t, token.IntegerLiteral, out.Kind())
			assert.Equal(t, c.want, out.Token.Value.Int)
		})
	}
}

func TestOptimizeOffIsPassthrough(t *testing.T) {
	tree := bin(token.Plus, lit(1), lit(2))
	out, err := Optimize(tree, LevelOff, here)
	require.Nil(t, err)
	assert.Equal(t, token.Plus, out.Kind())
}

func TestIdempotentOnSecondPass(t *testing.T) {
	tree := bin(token.Star, bin(token.Plus, lit(1), lit(2)), bin(token.Plus, lit(3), lit(4)))
	once, err := Optimize(tree, LevelFixpoint, here)
	require.Nil(t, err)
	twice, err := Optimize(once, LevelFixpoint, here)
	require.Nil(t, err)
	assert.Equal(t, dump(once), dump(twice))
}

func TestIntegerDivisionTruncatesTowardZero(t *testing.T) {
	tree := bin(token.Slash, lit(-7), lit(2))
	out, err := Optimize(tree, LevelFixpoint, here)
	require.Nil(t, err)
	assert.Equal(t, -3, out.Token.Value.Int)
}
