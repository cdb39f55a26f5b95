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
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

type record struct {
	row     *types.MapValue
	version uint64
}

// table keeps its rows ordered by primary key.
type table struct {
	name string
	key  []string
	rows *treemap.Map
}

func newTable(name string, key []string) *table {
	return &table{
		name: name,
		key:  key,
		rows: treemap.NewWith(compareKeys),
	}
}

// compareKeys orders primary key tuples. Key values are validated on write so
// an error can not occur for stored keys.
func compareKeys(a, b interface{}) int {
	ka, kb := a.([]types.Value), b.([]types.Value)
	for i := range ka {
		if i >= len(kb) {
			return 1
		}
		c, err := types.CompareValues(ka[i], kb[i])
		if err != nil {
			return 0
		}
		if c != 0 {
			return c
		}
	}
	if len(ka) < len(kb) {
		return -1
	}
	return 0
}

// keyOf extracts the primary key of row.
func (t *table) keyOf(row *types.MapValue) ([]types.Value, error) {
	key := make([]types.Value, len(t.key))
	for i, f := range t.key {
		v, ok := row.Get(f)
		if !ok || v.IsNull() {
			return nil, fmt.Errorf("primary key field %s of table %s is missing", f, t.name)
		}
		switch v.Type() {
		case types.Array, types.Map, types.Boolean:
			return nil, fmt.Errorf("primary key field %s can not be %v", f, v.Type())
		}
		key[i] = v
	}
	return key, nil
}

func (t *table) isKeyField(name string) bool {
	for _, f := range t.key {
		if f == name {
			return true
		}
	}
	return false
}

func (t *table) get(key []types.Value) (*record, bool) {
	v, ok := t.rows.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*record), true
}

func (t *table) put(key []types.Value, r *record) {
	t.rows.Put(key, r)
}

func (t *table) remove(key []types.Value) {
	t.rows.Remove(key)
}

// scan calls fn for every row after the key from, in key order. A nil from
// starts at the first row. fn returns false to stop.
func (t *table) scan(from []types.Value, fn func(key []types.Value, r *record) bool) {
	it := t.rows.Iterator()
	for it.Next() {
		key := it.Key().([]types.Value)
		if from != nil && compareKeys(key, from) <= 0 {
			continue
		}
		if !fn(key, it.Value().(*record)) {
			return
		}
	}
}
