package csv

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
)

// ReadAST reads the remaining rows of r into a shape AST:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// The header, when present, is the first record.
func ReadAST(ctx context.Context, r *Reader) (*ast.ArrayDataNode, error) {
	header, err := r.Header(ctx)
	if err != nil {
		return nil, err
	}
	var records []ast.SchemaNode
	if header != nil {
		records = append(records, recordNode(header))
	}
	for {
		row, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, recordNode(row))
	}
	return ast.NewArrayDataNode(records, ast.ZeroPosition()), nil
}

func recordNode(fields []string) *ast.ArrayDataNode {
	nodes := make([]ast.SchemaNode, len(fields))
	for i, f := range fields {
		nodes[i] = ast.NewLiteralNode(f, ast.ZeroPosition())
	}
	return ast.NewArrayDataNode(nodes, ast.ZeroPosition())
}

// RowsFromAST converts a node built by ReadAST (or any array of arrays of
// string literals) back into rows.
func RowsFromAST(node ast.SchemaNode) ([][]string, error) {
	file, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("csv: expected *ast.ArrayDataNode, got %T", node)
	}

	rows := make([][]string, 0, file.Len())
	for i, elem := range file.Elements() {
		record, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("csv: record %d: expected *ast.ArrayDataNode, got %T", i, elem)
		}
		fields := make([]string, 0, record.Len())
		for j, f := range record.Elements() {
			lit, ok := f.(*ast.LiteralNode)
			if !ok {
				return nil, fmt.Errorf("csv: record %d field %d: expected *ast.LiteralNode, got %T", i, j, f)
			}
			s, ok := lit.Value().(string)
			if !ok {
				return nil, fmt.Errorf("csv: record %d field %d: expected string value, got %T", i, j, lit.Value())
			}
			fields = append(fields, s)
		}
		rows = append(rows, fields)
	}
	return rows, nil
}
