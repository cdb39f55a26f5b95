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

package parser

import (
	"fmt"
	"strings"

	"github.com/pingcap/parser/ast"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

type StatementKind int

const (
	KindSelect StatementKind = iota + 1
	KindInsert
	KindUpdate
	KindDelete
)

func (k StatementKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// IsWrite reports whether statements of this kind modify rows.
func (k StatementKind) IsWrite() bool {
	return k == KindInsert || k == KindUpdate || k == KindDelete
}

// Variable is an external variable of a statement. Type is types.Any when the
// variable is referenced without a declaration.
type Variable struct {
	Name     string
	Type     types.Type
	Declared bool
}

// Statement is the analyzed form of a query text.
type Statement struct {
	Text string
	// Body is the statement without its DECLARE section, every $variable replaced by '?'.
	Body string
	Kind StatementKind
	// Table is the single table the statement reads or writes.
	Table string
	// Variables lists declared variables first, then undeclared ones in order of first use.
	Variables []Variable
	// ParamOrder maps the n-th parameter marker of Body to its variable name.
	ParamOrder []string
	Node       ast.StmtNode
}

func (s *Statement) Variable(name string) (Variable, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// NormalizeVariableName returns name with a single leading '$'.
func NormalizeVariableName(name string) string {
	n := strings.TrimSpace(name)
	if strings.HasPrefix(n, "$") {
		return n
	}
	return "$" + n
}

// Parse analyzes a statement text of the form
//   [DECLARE $v TYPE; ...] SELECT|INSERT|UPDATE|DELETE ...
// External variables are written $name. Joins, multi statements and positional '?'
// markers are rejected.
func Parse(text string) (*Statement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("statement text can not be empty")
	}

	decls, body, err := splitDeclare(text)
	if err != nil {
		return nil, err
	}

	rewritten, order, err := rewriteVariables(body)
	if err != nil {
		return nil, err
	}

	node, err := ParseSQL(rewritten)
	if err != nil {
		return nil, fmt.Errorf("statement can not be parsed: %v", err)
	}

	count, err := numberParams(node)
	if err != nil {
		return nil, err
	}
	if count != len(order) {
		return nil, fmt.Errorf("positional '?' markers are not supported, use $name variables")
	}

	stmt := &Statement{
		Text:       text,
		Body:       rewritten,
		Node:       node,
		ParamOrder: order,
	}
	if stmt.Kind, stmt.Table, err = target(node); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(decls)+len(order))
	for _, d := range decls {
		stmt.Variables = append(stmt.Variables, d)
		seen[d.Name] = true
	}
	for _, name := range order {
		if !seen[name] {
			seen[name] = true
			stmt.Variables = append(stmt.Variables, Variable{Name: name, Type: types.Any})
		}
	}
	return stmt, nil
}

func target(node ast.StmtNode) (StatementKind, string, error) {
	var kind StatementKind
	var refs *ast.TableRefsClause
	switch n := node.(type) {
	case *ast.SelectStmt:
		kind, refs = KindSelect, n.From
	case *ast.InsertStmt:
		kind, refs = KindInsert, n.Table
	case *ast.UpdateStmt:
		kind, refs = KindUpdate, n.TableRefs
	case *ast.DeleteStmt:
		kind, refs = KindDelete, n.TableRefs
	default:
		return 0, "", fmt.Errorf("unsupported statement type %T", node)
	}

	if refs == nil || refs.TableRefs == nil {
		return 0, "", fmt.Errorf("%s statement must name a table", kind)
	}
	join := refs.TableRefs
	if join.Right != nil {
		return 0, "", fmt.Errorf("joins are not supported")
	}
	source, ok := join.Left.(*ast.TableSource)
	if !ok {
		return 0, "", fmt.Errorf("unsupported table reference %T", join.Left)
	}
	name, ok := source.Source.(*ast.TableName)
	if !ok {
		return 0, "", fmt.Errorf("sub queries are not supported as table references")
	}
	return kind, name.Name.O, nil
}
