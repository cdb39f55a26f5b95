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
	"github.com/emirpasic/gods/utils"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// Assembler merges the row batches of an execution. With an expectation it
// checks every batch against the rows still expected and the merged set
// against the expected rows at completion.
type Assembler struct {
	exp *Expectation
}

func NewAssembler(exp *Expectation) *Assembler {
	return &Assembler{exp: exp}
}

// Append adds one call's rows. more tells whether the call returned a continuation key.
func (a *Assembler) Append(state *ExecutionState, rows []*types.MapValue, more bool) error {
	if a.exp.checksRows() {
		remaining := len(a.exp.Rows) - len(state.rows)
		if len(rows) > remaining {
			return nosqlerr.Fatal("call %d returned %d rows, only %d more rows expected", len(state.batches)+1, len(rows), remaining)
		}
	}
	state.rows = append(state.rows, rows...)
	state.batches = append(state.batches, len(rows))
	return nil
}

// Finalize verifies the merged rows and returns them.
func (a *Assembler) Finalize(state *ExecutionState) ([]*types.MapValue, error) {
	if !a.exp.checksRows() {
		return state.rows, nil
	}
	expected := a.exp.Rows
	if len(state.rows) != len(expected) {
		return nil, nosqlerr.Fatal("execution returned %d rows, expected %d", len(state.rows), len(expected))
	}

	actual := state.rows
	if a.exp.Ordering == Unordered && len(actual) > 1 {
		var err error
		if actual, err = sortByKey(actual, a.exp.PrimaryKey); err != nil {
			return nil, err
		}
		if expected, err = sortByKey(expected, a.exp.PrimaryKey); err != nil {
			return nil, err
		}
	}
	for i := range actual {
		if !actual[i].Equals(expected[i]) {
			return nil, nosqlerr.Fatal("row %d differs: got %v, expected %v", i, actual[i], expected[i])
		}
	}
	return state.rows, nil
}

// sortByKey returns a copy of rows sorted on the primary key fields.
func sortByKey(rows []*types.MapValue, key []string) ([]*types.MapValue, error) {
	if len(key) == 0 {
		return nil, nosqlerr.Argument("unordered rows can only be compared with a primary key")
	}
	values := make([]interface{}, len(rows))
	for i, r := range rows {
		for _, f := range key {
			if _, ok := r.Get(f); !ok {
				return nil, nosqlerr.Argument("row %v has no primary key field %s", r, f)
			}
		}
		values[i] = r
	}

	var cmpErr error
	utils.Sort(values, func(a, b interface{}) int {
		c, err := types.CompareRows(a.(*types.MapValue), b.(*types.MapValue), key)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c
	})
	if cmpErr != nil {
		return nil, nosqlerr.Argument("rows can not be ordered by primary key: %v", cmpErr)
	}

	sorted := make([]*types.MapValue, len(values))
	for i, v := range values {
		sorted[i] = v.(*types.MapValue)
	}
	return sorted, nil
}
