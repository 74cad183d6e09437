package csv_test

import (
	"context"
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func TestReadAST(t *testing.T) {
	r := newReader(t, "name,age\nAlice,30\nBob,25\n", csv.DefaultOptions())
	node, err := csv.ReadAST(context.Background(), r)
	require.NoError(t, err)

	require.Equal(t, 3, node.Len())
	header, ok := node.Elements()[0].(*ast.ArrayDataNode)
	require.True(t, ok)
	lit, ok := header.Elements()[1].(*ast.LiteralNode)
	require.True(t, ok)
	assert.Equal(t, "age", lit.Value())

	rows, err := csv.RowsFromAST(node)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "age"}, {"Alice", "30"}, {"Bob", "25"}}, rows)
}

func TestReadAST_NoHeaders(t *testing.T) {
	node, err := csv.ReadAST(context.Background(), newReader(t, "1,2\n", noHeaders()))
	require.NoError(t, err)
	rows, err := csv.RowsFromAST(node)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, rows)
}

func TestRowsFromAST_Errors(t *testing.T) {
	lit := ast.NewLiteralNode("x", ast.ZeroPosition())
	_, err := csv.RowsFromAST(lit)
	assert.ErrorContains(t, err, "expected *ast.ArrayDataNode")

	flat := ast.NewArrayDataNode([]ast.SchemaNode{lit}, ast.ZeroPosition())
	_, err = csv.RowsFromAST(flat)
	assert.ErrorContains(t, err, "record 0")

	nonString := ast.NewArrayDataNode([]ast.SchemaNode{
		ast.NewArrayDataNode([]ast.SchemaNode{ast.NewLiteralNode(int64(1), ast.ZeroPosition())}, ast.ZeroPosition()),
	}, ast.ZeroPosition())
	_, err = csv.RowsFromAST(nonString)
	assert.ErrorContains(t, err, "expected string value")
}
