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

package parser_test

import (
	"testing"

	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/testkit"
	"github.com/stretchr/testify/require"
)

func TestBodyReplacesVariables(t *testing.T) {
	cases := map[string]string{
		"select * from users where id = $id":                              "SELECT * FROM users WHERE id = ?",
		"DECLARE $a INTEGER; UPDATE t SET v = $a + 1 WHERE k = '$notvar'": "UPDATE t SET v = ? + 1 WHERE k = '$notvar'",
		"delete from t where a between $lo and $hi":                       "DELETE FROM t WHERE a BETWEEN ? AND ?",
		"insert into t (id, v) values ($id, $v), ($id2, 'x')":             "INSERT INTO t (id, v) VALUES (?, ?), (?, 'x')",
	}
	for text, want := range cases {
		stmt, err := parser.Parse(text)
		require.NoError(t, err, text)
		testkit.AssertEqualSQL(t, want, stmt.Body)
	}
}
