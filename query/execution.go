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
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// ExecutionState accumulates the rows and capacity of one execution. It is
// owned by a single Driver and never shared.
type ExecutionState struct {
	rows    []*types.MapValue
	total   Capacity
	calls   []Capacity
	batches []int
	token   []byte
}

func (s *ExecutionState) Rows() []*types.MapValue { return s.rows }

// Capacity is the aggregate over every call so far.
func (s *ExecutionState) Capacity() Capacity { return s.total }

// Calls returns the capacity consumed by each call, in call order.
func (s *ExecutionState) Calls() []Capacity { return s.calls }

// Batches returns the number of rows returned by each call, in call order.
func (s *ExecutionState) Batches() []int { return s.batches }

func (s *ExecutionState) NumCalls() int { return len(s.calls) }

// ContinuationKey is the token the next call resumes from.
func (s *ExecutionState) ContinuationKey() []byte { return s.token }

type Ordering int

const (
	Ordered Ordering = iota
	Unordered
)

// Expectation describes the outcome an execution must produce. Rows is checked
// when not nil, use an empty slice to expect no rows. RowsExamined defaults to
// len(Rows) for queries. PrimaryKey orders rows when Ordering is Unordered.
type Expectation struct {
	Rows         []*types.MapValue
	Ordering     Ordering
	PrimaryKey   []string
	RowsExamined int
	RowsWritten  int
}

// ExpectRows returns an ordered expectation of exactly rows.
func ExpectRows(rows ...*types.MapValue) *Expectation {
	return &Expectation{Rows: append([]*types.MapValue{}, rows...)}
}

// Unordered relaxes the row order, rows are compared after sorting on primaryKey.
func (e *Expectation) Unordered(primaryKey ...string) *Expectation {
	e.Ordering = Unordered
	e.PrimaryKey = primaryKey
	return e
}

func (e *Expectation) Examined(n int) *Expectation {
	e.RowsExamined = n
	return e
}

func (e *Expectation) Written(n int) *Expectation {
	e.RowsWritten = n
	return e
}

func (e *Expectation) checksRows() bool {
	return e != nil && e.Rows != nil
}

func (e *Expectation) examined(readOnly bool) int {
	if e.RowsExamined > 0 || !readOnly || e.Rows == nil {
		return e.RowsExamined
	}
	return len(e.Rows)
}
