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
	"testing"

	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleWithoutExpectation(t *testing.T) {
	a := NewAssembler(nil)
	s := &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{row(1), row(2)}, true))
	require.NoError(t, a.Append(s, nil, true))
	require.NoError(t, a.Append(s, []*types.MapValue{row(3)}, false))
	rows, err := a.Finalize(s)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, []int{2, 0, 1}, s.Batches())
}

func TestAssembleOrdered(t *testing.T) {
	a := NewAssembler(ExpectRows(row(1), row(2)))
	s := &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{row(2)}, true))
	require.NoError(t, a.Append(s, []*types.MapValue{row(1)}, false))
	_, err := a.Finalize(s)
	assert.True(t, nosqlerr.IsFatal(err))
}

func TestAssembleUnordered(t *testing.T) {
	exp := ExpectRows(types.NewRow("id", 1, "v", "a"), types.NewRow("id", 2, "v", "b")).Unordered("id")
	a := NewAssembler(exp)
	s := &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{types.NewRow("id", 2, "v", "b")}, true))
	require.NoError(t, a.Append(s, []*types.MapValue{types.NewRow("id", 1, "v", "a")}, false))
	rows, err := a.Finalize(s)
	require.NoError(t, err)
	id, _ := rows[0].Get("id")
	assert.True(t, id.Equals(types.NewInteger(2)), "rows keep arrival order")

	s = &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{types.NewRow("id", 2, "v", "x"), types.NewRow("id", 1, "v", "a")}, false))
	_, err = a.Finalize(s)
	assert.True(t, nosqlerr.IsFatal(err))
}

func TestAssembleCounts(t *testing.T) {
	a := NewAssembler(ExpectRows(row(1), row(2)))
	s := &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{row(1)}, false))
	_, err := a.Finalize(s)
	assert.True(t, nosqlerr.IsFatal(err))

	s = &ExecutionState{}
	err = a.Append(s, []*types.MapValue{row(1), row(2), row(3)}, false)
	assert.True(t, nosqlerr.IsFatal(err))
}

func TestUnorderedNeedsPrimaryKey(t *testing.T) {
	a := NewAssembler(ExpectRows(row(1), row(2)).Unordered())
	s := &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{row(2), row(1)}, false))
	_, err := a.Finalize(s)
	assert.True(t, nosqlerr.IsArgument(err))

	a = NewAssembler(ExpectRows(row(1), types.NewRow("k", 2)).Unordered("id"))
	s = &ExecutionState{}
	require.NoError(t, a.Append(s, []*types.MapValue{row(2), row(1)}, false))
	_, err = a.Finalize(s)
	assert.True(t, nosqlerr.IsArgument(err))
}
