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
	"testing"

	"github.com/pingcap/parser/ast"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func where(t *testing.T, cond string) ast.ExprNode {
	stmt, err := parser.Parse("SELECT * FROM t WHERE " + cond)
	require.NoError(t, err)
	return stmt.Node.(*ast.SelectStmt).Where
}

func TestMatches(t *testing.T) {
	row := types.NewRow("id", 3, "name", "carol", "score", 7.5, "tag", nil)
	cases := []struct {
		cond   string
		params []types.Value
		want   bool
	}{
		{"id = 3", nil, true},
		{"id = $x", []types.Value{types.NewLong(3)}, true},
		{"id <> 3", nil, false},
		{"id > 1 AND name = 'carol'", nil, true},
		{"id > 5 OR name = 'carol'", nil, true},
		{"NOT (id = 3)", nil, false},
		{"score >= 7", nil, true},
		{"id + 1 = 4", nil, true},
		{"id * 2 / 4 = 1.5", nil, true},
		{"id BETWEEN 1 AND 3", nil, true},
		{"id NOT BETWEEN 1 AND 3", nil, false},
		{"name IN ('bob', 'carol')", nil, true},
		{"name NOT IN ('bob')", nil, true},
		{"tag IS NULL", nil, true},
		{"missing IS NOT NULL", nil, false},
		{"tag = 1", nil, false},
		{"tag = 1 OR id = 3", nil, true},
		{"name > 1", nil, false},
	}
	for _, c := range cases {
		ok, err := matches(where(t, c.cond), &env{row: row, params: c.params})
		require.NoError(t, err, c.cond)
		assert.Equal(t, c.want, ok, c.cond)
	}
}

func TestUnsupportedExpression(t *testing.T) {
	row := types.NewRow("id", 1)
	_, err := matches(where(t, "name LIKE 'a%'"), &env{row: row})
	assert.Error(t, err)
	_, err = matches(where(t, "name + 1 = 2"), &env{row: types.NewRow("name", "x")})
	assert.Error(t, err)
}

func TestKeyOrdered(t *testing.T) {
	tbl := newTable("t", []string{"a", "b"})
	for text, want := range map[string]bool{
		"SELECT * FROM t":                  true,
		"SELECT * FROM t ORDER BY a":       true,
		"SELECT * FROM t ORDER BY a, b":    true,
		"SELECT * FROM t ORDER BY b":       false,
		"SELECT * FROM t ORDER BY a DESC":  false,
		"SELECT * FROM t ORDER BY a, b, c": false,
	} {
		p, err := compile(text)
		require.NoError(t, err)
		assert.Equal(t, want, p.keyOrdered(tbl), text)
	}
}

func TestFieldPaths(t *testing.T) {
	_, err := compile("SELECT * FROM users WHERE users.age > 1")
	assert.NoError(t, err)
	_, err = compile("SELECT * FROM users WHERE info.city = 'x'")
	assert.EqualError(t, err, "nested field path info.city is not supported")
	_, err = compile("UPDATE users SET age = 1 WHERE a.b.c = 2")
	assert.EqualError(t, err, "nested field path a.b.c is not supported")
}
