package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/tiny-c-compiler/internal/ast"
	"github.com/skx/tiny-c-compiler/internal/parser"
	"github.com/skx/tiny-c-compiler/internal/token"
)

func parseOne(t *testing.T, src string) *ast.FunctionDecl {
	t.Helper()

	fns, err := parser.New(src).ParseFile()
	require.NoError(t, err)
	require.Len(t, fns, 1)
	return fns[0]
}

func TestParseEmptyVoidFunction(t *testing.T) {
	fn := parseOne(t, "void foo() { }")
	assert.Equal(t, "foo", fn.Name())
	assert.Empty(t, fn.Body.Statements)
}

func TestParseReturnLiteral(t *testing.T) {
	fn := parseOne(t, "int main() { return 3; }")
	require.Len(t, fn.Body.Statements, 1)

	ret, ok := fn.Body.Statements[0].(*ast.Return)
	require.True(t, ok)

	lit, ok := ret.Expression.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int32(3), lit.Value)
}

func TestParseDeclarationThenAssignmentThenReturn(t *testing.T) {
	fn := parseOne(t, "int main() { int x; x = 4; return x; }")
	require.Len(t, fn.Body.Statements, 3)

	decl, ok := fn.Body.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name())
	assert.Equal(t, token.INTTY, decl.TypeToken.Type)

	assign, ok := fn.Body.Statements[1].(*ast.Declaration)
	require.True(t, ok)
	variable, ok := assign.Target.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "x", variable.Name())
	lit, ok := assign.Expression.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int32(4), lit.Value)

	ret, ok := fn.Body.Statements[2].(*ast.Return)
	require.True(t, ok)
	retVar, ok := ret.Expression.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "x", retVar.Name())
}

func TestParseFunctionWithTwoParametersAndBinaryReturn(t *testing.T) {
	fn := parseOne(t, "int add(int a, int b) { return a+b; }")

	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "a", fn.Parameters[0].Name())
	assert.Equal(t, token.INTTY, fn.Parameters[0].TypeToken.Type)
	assert.Equal(t, "b", fn.Parameters[1].Name())
	assert.Equal(t, token.INTTY, fn.Parameters[1].TypeToken.Type)

	require.Len(t, fn.Body.Statements, 1)
	ret, ok := fn.Body.Statements[0].(*ast.Return)
	require.True(t, ok)

	bin, ok := ret.Expression.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, bin.Operator.Type)

	left, ok := bin.Left.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "a", left.Name())

	right, ok := bin.Right.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "b", right.Name())
}

// The if/else-if/else chain is parsed as peer Conditional nodes in the
// enclosing block, in source order, after the leading while and before
// the trailing return: the chain's ordering carries its own semantics
// rather than nesting the AST.
func TestParseWhileIfElseIfElseChain(t *testing.T) {
	fn := parseOne(t, "int main() { while (a) { } if (b) { } else if (c) { } else { } return 0; }")

	require.Len(t, fn.Body.Statements, 5)

	while, ok := fn.Body.Statements[0].(*ast.While)
	require.True(t, ok)
	condVar, ok := while.Condition.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "a", condVar.Name())

	ifNode, ok := fn.Body.Statements[1].(*ast.Conditional)
	require.True(t, ok)
	assert.Equal(t, ast.If, ifNode.Kind)

	elseIfNode, ok := fn.Body.Statements[2].(*ast.Conditional)
	require.True(t, ok)
	assert.Equal(t, ast.ElseIf, elseIfNode.Kind)

	elseNode, ok := fn.Body.Statements[3].(*ast.Conditional)
	require.True(t, ok)
	assert.Equal(t, ast.Else, elseNode.Kind)
	assert.Nil(t, elseNode.Condition)

	ret, ok := fn.Body.Statements[4].(*ast.Return)
	require.True(t, ok)
	lit, ok := ret.Expression.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int32(0), lit.Value)
}

func TestParseFileSkipsUnrecognisedTopLevelTokens(t *testing.T) {
	fns, err := parser.New("; int main() { return 0; }").ParseFile()
	require.NoError(t, err)
	require.Len(t, fns, 1)
	assert.Equal(t, "main", fns[0].Name())
}

func TestParseMissingClosingBraceIsAnError(t *testing.T) {
	_, err := parser.New("int main() { return 0;").ParseFile()
	assert.Error(t, err)
}
