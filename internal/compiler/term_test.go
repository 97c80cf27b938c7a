package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

func TestParseTermShapes(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.TermKind
		sig  ast.Signature
		str  string
	}{
		{"open", ast.Constant, ast.Signature{Name: "open"}, "open"},
		{"Person", ast.Variable, ast.Signature{Name: "Person"}, "Person"},
		{"_", ast.Variable, ast.Signature{Name: "_"}, "_"},
		{"42", ast.Constant, ast.Signature{Name: "42"}, "42"},
		{"-7", ast.Constant, ast.Signature{Name: "-7"}, "-7"},
		{"has(P, book)", ast.Compound, ast.Signature{Name: "has", Arity: 2}, "has(P, book)"},
		{"  pow( lend(P,B) ) ", ast.Compound, ast.Signature{Name: "pow", Arity: 1}, "pow(lend(P, B))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			term, err := ParseTerm(tt.src, ast.Position{})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, term.TermKind)
			assert.Equal(t, tt.sig, term.Signature())
			assert.Equal(t, tt.str, term.String())
		})
	}
}

func TestParseTermErrors(t *testing.T) {
	for _, src := range []string{"", "f(", "f()", "f(a b)", "f(a))", "(a)", "a b"} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseTerm(src, ast.Position{})
			require.Error(t, err)
			var se *SyntaxError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestParseTermNormalisesNames(t *testing.T) {
	// "café" written with a combining accent and precomposed.
	decomposed, err := ParseTerm("cafe\u0301(X)", ast.Position{})
	require.NoError(t, err)
	composed, err := ParseTerm("caf\u00e9(X)", ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, composed.Signature(), decomposed.Signature())
}

func TestParseCondition(t *testing.T) {
	lit, err := ParseCondition("has(P, B)", ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, ast.CondLiteral, lit.Op)
	assert.Equal(t, "has", lit.Term.Name)

	neg, err := ParseCondition("not onloan(B)", ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, ast.CondNot, neg.Op)
	require.Len(t, neg.Operands, 1)
	assert.Equal(t, "onloan", neg.Operands[0].Term.Name)

	cmp, err := ParseCondition("X != Y", ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, ast.CondCompare, cmp.Op)
	assert.True(t, cmp.Term.IsOperator())
	assert.Equal(t, "!=", cmp.Term.Name)
	assert.Empty(t, cmp.Literals())

	le, err := ParseCondition("N <= 3", ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, "<=", le.Term.Name)

	// An identifier that merely starts with "not" is a literal.
	notice, err := ParseCondition("notice(P)", ast.Position{})
	require.NoError(t, err)
	assert.Equal(t, ast.CondLiteral, notice.Op)
	assert.Equal(t, "notice", notice.Term.Name)
}
