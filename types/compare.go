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

package types

import (
	"fmt"

	"github.com/sharonminer052/sql-node-sdk-database-develo/core/comparison"
)

// CompareValues orders two values. NULL sorts first, numbers compare across numeric
// types, arrays and maps are not ordered.
func CompareValues(a, b Value) (int, error) {
	if a.IsNull() || b.IsNull() {
		switch {
		case a.IsNull() && b.IsNull():
			return 0, nil
		case a.IsNull():
			return -1, nil
		}
		return 1, nil
	}
	if a.typ == Array || a.typ == Map || b.typ == Array || b.typ == Map {
		return 0, fmt.Errorf("%v and %v values are not ordered", a.typ, b.typ)
	}
	if (a.typ == Integer || a.typ == Long) && (b.typ == Integer || b.typ == Long) {
		x, err := a.Int64()
		if err != nil {
			return 0, err
		}
		y, err := b.Int64()
		if err != nil {
			return 0, err
		}
		return comparison.CompareInt64(x, y), nil
	}
	na, err := a.ToNative()
	if err != nil {
		return 0, err
	}
	nb, err := b.ToNative()
	if err != nil {
		return 0, err
	}
	return comparison.Compare(na, nb)
}

// CompareRows orders rows on the given fields, in turn.
func CompareRows(a, b *MapValue, fields []string) (int, error) {
	for _, f := range fields {
		av, _ := a.Get(f)
		bv, _ := b.Get(f)
		c, err := CompareValues(av, bv)
		if err != nil {
			return 0, fmt.Errorf("field %s: %v", f, err)
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}
