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

package query

import (
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
)

// Statement is what an execution runs: a *PreparedStatement or a Text.
type Statement interface {
	newRequest() (*QueryRequest, statementInfo, error)
}

type statementInfo struct {
	table    string
	kind     parser.StatementKind
	compiled bool
}

// Text is a statement executed without preparing it first. The engine compiles
// it on the first call. It can not reference variables.
type Text string

func (t Text) newRequest() (*QueryRequest, statementInfo, error) {
	stmt, err := parser.Parse(string(t))
	if err != nil {
		return nil, statementInfo{}, nosqlerr.Argument("%v", err)
	}
	if len(stmt.Variables) > 0 {
		names := make([]string, len(stmt.Variables))
		for i, v := range stmt.Variables {
			names[i] = v.Name
		}
		return nil, statementInfo{}, nosqlerr.Argument("statement references variables %v, prepare it to bind them", names)
	}
	return &QueryRequest{Statement: string(t)}, statementInfo{table: stmt.Table, kind: stmt.Kind}, nil
}

func (ps *PreparedStatement) newRequest() (*QueryRequest, statementInfo, error) {
	if missing := ps.unbound(); len(missing) > 0 {
		return nil, statementInfo{}, nosqlerr.Argument("variables %v are not bound", missing)
	}
	req := &QueryRequest{
		Statement: ps.text,
		Prepared:  ps.Blob(),
		Bindings:  ps.Bindings(),
	}
	return req, statementInfo{table: ps.table, kind: ps.kind, compiled: true}, nil
}
