package parser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/optimizer"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/token"
)

func newParser(t *testing.T, source string) *Parser {
	t.Helper()
	p, err := New(source, symtab.New(), optimizer.LevelOff, diagnostics.NewLogger(diagnostics.LevelNone, os.Stdout))
	require.Nil(t, err)
	return p
}

func TestParseGlobalIntDeclaration(t *testing.T) {
	p := newParser(t, "int x;")
	node, err := p.ParseTopLevel()
	require.Nil(t, err)
	require.NotNil(t, node)
	assert.Equal(t, token.VarDecl, node.Kind())
	assert.Equal(t, "x", node.Entry.Name)
	assert.True(t, p.AtEOF())
}

func TestParseFunctionDefinition(t *testing.T) {
	p := newParser(t, "int add(int a, int b) { return a + b; }")
	node, err := p.ParseTopLevel()
	require.Nil(t, err)
	require.NotNil(t, node)
	assert.Equal(t, token.Function, node.Kind())
	assert.Len(t, node.Params, 2)
	assert.NotNil(t, node.Left)
}

func TestParseFunctionPrototypeThenDefinition(t *testing.T) {
	p := newParser(t, "int square(int n); int square(int n) { return n * n; }")

	proto, err := p.ParseTopLevel()
	require.Nil(t, err)
	require.NotNil(t, proto)
	assert.Nil(t, proto.Left)

	def, err := p.ParseTopLevel()
	require.Nil(t, err)
	require.NotNil(t, def)
	assert.NotNil(t, def.Left)
}

func TestConflictingPrototypeIsIdentifierError(t *testing.T) {
	p := newParser(t, "int square(int n); int square(int n, int m) { return n; }")

	_, err := p.ParseTopLevel()
	require.Nil(t, err)

	_, err = p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeIdentifierError, err.Code)
}

func TestAssignmentToConstIsRejected(t *testing.T) {
	p := newParser(t, "int main() { const int x = 1; x = 2; return x; }")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeIdentifierError, err.Code)
}

func TestUndeclaredIdentifierIsIdentifierError(t *testing.T) {
	p := newParser(t, "int main() { return y; }")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeIdentifierError, err.Code)
}

func TestMissingSemicolonBeforeClosingBraceIsSyntaxError(t *testing.T) {
	p := newParser(t, "int main() { return 1 }")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeSyntaxError, err.Code)
}

func TestEOFMidExpressionIsEOFMissingSemicolon(t *testing.T) {
	p := newParser(t, "int main() { return 1")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeEOFMissingSemicolon, err.Code)
}

func TestStructDeclarationRegistersAggregateType(t *testing.T) {
	p := newParser(t, "struct point { int x; int y; };")
	node, err := p.ParseTopLevel()
	require.Nil(t, err)
	require.NotNil(t, node)
	assert.Equal(t, token.TypeDecl, node.Kind())

	entry := p.Symbols().Global().Get("struct point")
	require.NotNil(t, entry)
}

func TestEnumDeclarationReturnsNilNode(t *testing.T) {
	p := newParser(t, "enum color { RED, GREEN, BLUE };")
	node, err := p.ParseTopLevel()
	require.Nil(t, err)
	assert.Nil(t, node)

	entry := p.Symbols().Global().Get("GREEN")
	require.NotNil(t, entry)
	assert.True(t, entry.IsEnumValue)
}

func TestArrayDeclarationWithNegativeLengthIsArrayError(t *testing.T) {
	p := newParser(t, "int nums[-1];")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeArrayError, err.Code)
}

func TestIfConditionMustBeComparisonIsSyntaxError(t *testing.T) {
	p := newParser(t, "int main() { if (1) { return 1; } return 0; }")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeSyntaxError, err.Code)
}

func TestWhileConditionMustBeComparisonIsSyntaxError(t *testing.T) {
	p := newParser(t, "int main() { int i; i = 0; while (i) { i = i + 1; } return i; }")
	_, err := p.ParseTopLevel()
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CodeSyntaxError, err.Code)
}

func TestForLoopDesugarsToInitPlusWhile(t *testing.T) {
	p := newParser(t, "int main() { for (int i = 0; i < 3; i = i + 1) { print i; } return 0; }")
	node, err := p.ParseTopLevel()
	require.Nil(t, err)
	require.NotNil(t, node)

	// body: GLUE(GLUE(init, WHILE(cond, GLUE(body, post))), return)
	forLoop := node.Left.Left
	require.Equal(t, token.ASTGlue, forLoop.Kind())
	assert.Equal(t, token.VarDecl, forLoop.Left.Kind())
	require.Equal(t, token.While, forLoop.Right.Kind())
	assert.Equal(t, token.Lt, forLoop.Right.Left.Kind())
	assert.Equal(t, token.Assign, forLoop.Right.Right.Right.Kind())
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	p := newParser(t, "int main() { int a; int b; a = b = 1; return a; }")
	node, err := p.ParseTopLevel()
	require.Nil(t, err)

	// a = (b = 1): the outer assignment targets a and its value is the
	// inner assignment to b.
	outer := node.Left.Left.Right
	require.Equal(t, token.Assign, outer.Kind())
	assert.Equal(t, token.LeftvalueIdent, outer.Right.Kind())
	assert.Equal(t, "a", outer.Right.Token.Value.Str)
	require.Equal(t, token.Assign, outer.Left.Kind())
	assert.Equal(t, "b", outer.Left.Right.Token.Value.Str)
}
