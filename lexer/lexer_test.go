package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecco-lang/ecco/token"
)

func scanAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.Advance()
		require.Nil(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestSingleCharacterOperators(t *testing.T) {
	toks := scanAll(t, "+-*/;,(){}[]")
	want := []token.Kind{
		token.Plus, token.Minus, token.Star, token.Slash,
		token.Semicolon, token.Comma,
		token.LeftParenthesis, token.RightParenthesis,
		token.LeftBrace, token.RightBrace,
		token.LeftBracket, token.RightBracket,
		token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestTwoCharacterOperators(t *testing.T) {
	toks := scanAll(t, "== != <= >= < > =")
	want := []token.Kind{token.Eq, token.Neq, token.Leq, token.Geq, token.Lt, token.Gt, token.Assign, token.EOF}
	require.Len(t, toks, len(want))
	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestIntegerLiteral(t *testing.T) {
	toks := scanAll(t, "1234")
	require.Len(t, toks, 2)
	assert.Equal(t, token.IntegerLiteral, toks[0].Kind)
	assert.Equal(t, 1234, toks[0].Value.Int)
}

func TestIdentifierVsKeyword(t *testing.T) {
	toks := scanAll(t, "int x while foo_bar")
	require.Len(t, toks, 5)
	assert.Equal(t, token.Int, toks[0].Kind)
	assert.Equal(t, token.Identifier, toks[1].Kind)
	assert.Equal(t, "x", toks[1].Value.Str)
	assert.Equal(t, token.While, toks[2].Kind)
	assert.Equal(t, token.Identifier, toks[3].Kind)
	assert.Equal(t, "foo_bar", toks[3].Value.Str)
}

func TestLineComment(t *testing.T) {
	toks := scanAll(t, "1 // this is ignored\n2")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Value.Int)
	assert.Equal(t, 2, toks[1].Value.Int)
}

func TestUnknownCharacterIsSyntaxError(t *testing.T) {
	l := New("@")
	_, err := l.Advance()
	require.NotNil(t, err)
	assert.Equal(t, 4, err.ExitCode())
}

func TestIdentifierTooLongIsIdentifierError(t *testing.T) {
	long := ""
	for i := 0; i < 513; i++ {
		long += "a"
	}
	l := New(long)
	_, err := l.Advance()
	require.NotNil(t, err)
	assert.Equal(t, 6, err.ExitCode())
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("int\nx")
	_, err := l.Advance()
	require.Nil(t, err)
	_, err = l.Advance()
	require.Nil(t, err)
	assert.Equal(t, 2, l.line)
}
