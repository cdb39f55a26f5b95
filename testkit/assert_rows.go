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
	"fmt"
	"strings"

	"github.com/emirpasic/gods/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/sharonminer052/sql-node-sdk-database-develo/core"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/assert"
)

// ValueComparer makes cmp compare values by their contents.
var ValueComparer = cmp.Comparer(func(a, b types.Value) bool {
	return a.Equals(b)
})

// RowComparer makes cmp compare rows field by field, ignoring field order.
var RowComparer = cmp.Comparer(func(a, b *types.MapValue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
})

// MustMatch fails the test when want and got differ, rows and values compare by content.
func MustMatch(t assert.TestingT, want, got interface{}, msgAndArgs ...interface{}) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if diff := cmp.Diff(want, got, ValueComparer, RowComparer); diff != "" {
		return assert.Fail(t, fmt.Sprintf("(-want +got)\n%v", diff), msgAndArgs...)
	}
	return true
}

func rowsDifferent(expected, actual []*types.MapValue) string {
	sb := core.NewStringBuilder()
	sb.WriteLine("rows not same")
	sb.WriteLine("expected:", rowsText(expected))
	sb.WriteLine("actual:", rowsText(actual))
	return sb.String()
}

// rowsText prints rows sorted so that two unordered results read alike.
func rowsText(rows []*types.MapValue) string {
	if len(rows) == 0 {
		return "<no rows>"
	}
	text := make([]interface{}, len(rows))
	for i, r := range rows {
		text[i] = r.String()
	}
	utils.Sort(text, utils.StringComparator)
	parts := make([]string, len(text))
	for i, s := range text {
		parts[i] = s.(string)
	}
	return strings.Join(parts, ", ")
}

// AssertRowsInOrder checks that actual holds exactly the expected rows in order.
func AssertRowsInOrder(t assert.TestingT, expected, actual []*types.MapValue, msgAndArgs ...interface{}) bool {
	if len(expected) != len(actual) {
		return assert.Fail(t, rowsDifferent(expected, actual), msgAndArgs...)
	}
	for i := range expected {
		if !expected[i].Equals(actual[i]) {
			return assert.Fail(t, fmt.Sprintf("row %d differs\n%s", i, rowsDifferent(expected, actual)), msgAndArgs...)
		}
	}
	return true
}

// AssertRows checks that actual holds exactly the expected rows in any order.
func AssertRows(t assert.TestingT, expected, actual []*types.MapValue, msgAndArgs ...interface{}) bool {
	if len(expected) != len(actual) {
		return assert.Fail(t, rowsDifferent(expected, actual), msgAndArgs...)
	}
	used := make([]bool, len(actual))
	for _, e := range expected {
		found := false
		for i, a := range actual {
			if !used[i] && e.Equals(a) {
				used[i], found = true, true
				break
			}
		}
		if !found {
			return assert.Fail(t, rowsDifferent(expected, actual), msgAndArgs...)
		}
	}
	return true
}

// Field returns a field of row, failing the test when it is missing.
func Field(t assert.TestingT, row *types.MapValue, name string) types.Value {
	v, ok := row.Get(name)
	assert.True(t, ok, "row %v has no field %s", row, name)
	return v
}
