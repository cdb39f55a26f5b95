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

package testkit

import (
	"strings"
	"sync"
	"testing"

	"github.com/pingcap/parser"
	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/format"
	_ "github.com/pingcap/tidb/types/parser_driver"
	"github.com/stretchr/testify/assert"
)

var testParser = parser.New()
var testParserMutex sync.Mutex

// ParseForTest parses one SQL statement, failing the test on error.
func ParseForTest(t testing.TB, sql string) ast.StmtNode {
	testParserMutex.Lock()
	defer testParserMutex.Unlock()
	node, err := testParser.ParseOneStmt(sql, "", "")
	if err != nil {
		t.Fatalf("%s\nsql err: %v", sql, err)
	}
	return node
}

// NormalizeSQL restores sql from its syntax tree, so texts differing only in
// spacing or keyword case normalize to the same string.
func NormalizeSQL(t testing.TB, sql string) string {
	return writeNode(t, ParseForTest(t, sql))
}

func AssertEqualSQL(t testing.TB, expected string, actual string) bool {
	return assert.Equal(t, NormalizeSQL(t, expected), NormalizeSQL(t, actual))
}

func writeNode(t testing.TB, node ast.Node) string {
	sb := new(strings.Builder)
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags|format.RestoreSpacesAroundBinaryOperation, sb)
	assert.NoError(t, node.Restore(ctx))
	return sb.String()
}
