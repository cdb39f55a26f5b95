/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package memstore

import (
	"fmt"
	"strings"

	"github.com/pingcap/parser/ast"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// plan is a compiled statement. It is immutable and shared between executions.
// assignments are set for UPDATE and insert for INSERT.
type plan struct {
	stmt        *parser.Statement
	where       ast.ExprNode
	wildcard    bool
	fields      []*ast.SelectField
	orderBy     []*ast.ByItem
	limit       *ast.Limit
	assignments []*ast.Assignment
	insert      *ast.InsertStmt
}

func compile(text string) (*plan, error) {
	stmt, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	p := &plan{stmt: stmt}
	switch n := stmt.Node.(type) {
	case *ast.SelectStmt:
		if n.GroupBy != nil || n.Having != nil || n.Distinct {
			return nil, fmt.Errorf("GROUP BY, HAVING and DISTINCT are not supported")
		}
		p.where = n.Where
		p.limit = n.Limit
		if n.OrderBy != nil {
			p.orderBy = n.OrderBy.Items
		}
		if n.Fields != nil {
			for _, f := range n.Fields.Fields {
				if f.WildCard != nil {
					p.wildcard = true
					continue
				}
				if _, ok := f.Expr.(*ast.AggregateFuncExpr); ok {
					return nil, fmt.Errorf("aggregate functions are not supported")
				}
				p.fields = append(p.fields, f)
			}
		}
		if p.wildcard && len(p.fields) > 0 {
			return nil, fmt.Errorf("'*' can not be combined with other select fields")
		}
	case *ast.UpdateStmt:
		if n.Order != nil || n.Limit != nil {
			return nil, fmt.Errorf("ORDER BY and LIMIT are not supported in UPDATE")
		}
		p.where = n.Where
		p.assignments = n.List
	case *ast.DeleteStmt:
		if n.Order != nil || n.Limit != nil {
			return nil, fmt.Errorf("ORDER BY and LIMIT are not supported in DELETE")
		}
		p.where = n.Where
	case *ast.InsertStmt:
		if n.Select != nil {
			return nil, fmt.Errorf("INSERT ... SELECT is not supported")
		}
		if len(n.Setlist) == 0 && len(n.Columns) == 0 {
			return nil, fmt.Errorf("INSERT must name its columns")
		}
		p.insert = n
	}
	if err = checkFieldNames(stmt); err != nil {
		return nil, err
	}
	return p, nil
}

// checkFieldNames rejects nested field paths. A field may be qualified by the
// statement's own table only.
func checkFieldNames(stmt *parser.Statement) error {
	return parser.Walk(func(node ast.Node) (bool, error) {
		col, ok := node.(*ast.ColumnNameExpr)
		if !ok {
			return true, nil
		}
		n := col.Name
		if n.Schema.O != "" || (n.Table.O != "" && !strings.EqualFold(n.Table.O, stmt.Table)) {
			path := []string{n.Table.O, n.Name.O}
			if n.Schema.O != "" {
				path = append([]string{n.Schema.O}, path...)
			}
			return false, fmt.Errorf("nested field path %s is not supported", strings.Join(path, "."))
		}
		return true, nil
	}, stmt.Node)
}

func (p *plan) kind() parser.StatementKind { return p.stmt.Kind }

func (p *plan) table() string { return p.stmt.Table }

// params orders bindings as the statement's parameter markers.
func (p *plan) params(bindings map[string]types.Value) ([]types.Value, error) {
	params := make([]types.Value, len(p.stmt.ParamOrder))
	for i, name := range p.stmt.ParamOrder {
		v, ok := bindings[name]
		if !ok {
			return nil, fmt.Errorf("variable %s is not bound", name)
		}
		params[i] = v
	}
	return params, nil
}

// keyOrdered reports whether ORDER BY is absent or an ascending prefix of the
// primary key, so a key ordered scan yields the requested order.
func (p *plan) keyOrdered(t *table) bool {
	if len(p.orderBy) > len(t.key) {
		return false
	}
	for i, item := range p.orderBy {
		col, ok := item.Expr.(*ast.ColumnNameExpr)
		if !ok || item.Desc || col.Name.Name.O != t.key[i] {
			return false
		}
	}
	return true
}

// project builds the result row of a select.
func (p *plan) project(row *types.MapValue, e *env) (*types.MapValue, error) {
	if p.wildcard || len(p.fields) == 0 {
		return row.Clone(), nil
	}
	out := types.NewMapValue()
	for i, f := range p.fields {
		v, err := eval(f.Expr, e)
		if err != nil {
			return nil, err
		}
		out.Put(fieldName(f, i), v)
	}
	return out, nil
}

func fieldName(f *ast.SelectField, i int) string {
	if f.AsName.O != "" {
		return f.AsName.O
	}
	if col, ok := f.Expr.(*ast.ColumnNameExpr); ok {
		return col.Name.Name.O
	}
	return fmt.Sprintf("Column_%d", i+1)
}

// bounds evaluates the LIMIT clause. count is -1 without a limit.
func (p *plan) bounds(e *env) (count, offset int64, err error) {
	count = -1
	if p.limit == nil {
		return count, 0, nil
	}
	if p.limit.Count != nil {
		if count, err = evalInt(p.limit.Count, e); err != nil {
			return 0, 0, err
		}
		if count < 0 {
			return 0, 0, fmt.Errorf("LIMIT can not be negative")
		}
	}
	if p.limit.Offset != nil {
		if offset, err = evalInt(p.limit.Offset, e); err != nil {
			return 0, 0, err
		}
		if offset < 0 {
			return 0, 0, fmt.Errorf("OFFSET can not be negative")
		}
	}
	return count, offset, nil
}

func evalInt(node ast.ExprNode, e *env) (int64, error) {
	v, err := eval(node, e)
	if err != nil {
		return 0, err
	}
	if !isIntegral(v) {
		return 0, fmt.Errorf("expected an integer, got %v", v.Type())
	}
	return v.Int64()
}
