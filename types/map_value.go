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
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// MapValue is an ordered collection of named values. A query result row is a MapValue.
// It is not safe for concurrent mutation.
type MapValue struct {
	m *linkedhashmap.Map
}

func NewMapValue() *MapValue {
	return &MapValue{m: linkedhashmap.New()}
}

// NewRow builds a MapValue from alternating name and value arguments, values go through
// FromInterface. It panics on a malformed argument list and is meant for fixtures.
func NewRow(pairs ...interface{}) *MapValue {
	if len(pairs)%2 != 0 {
		panic("NewRow requires name/value pairs")
	}
	mv := NewMapValue()
	for i := 0; i < len(pairs); i += 2 {
		v, err := FromInterface(pairs[i+1])
		if err != nil {
			panic(err)
		}
		mv.Put(pairs[i].(string), v)
	}
	return mv
}

// Put adds or replaces a field. Replacing keeps the original position.
func (mv *MapValue) Put(name string, v Value) *MapValue {
	mv.m.Put(name, v)
	return mv
}

func (mv *MapValue) Get(name string) (Value, bool) {
	v, ok := mv.m.Get(name)
	if !ok {
		return NULL, false
	}
	return v.(Value), true
}

func (mv *MapValue) Remove(name string) {
	mv.m.Remove(name)
}

func (mv *MapValue) Len() int {
	if mv == nil {
		return 0
	}
	return mv.m.Size()
}

func (mv *MapValue) Keys() []string {
	keys := make([]string, 0, mv.Len())
	mv.Each(func(name string, _ Value) {
		keys = append(keys, name)
	})
	return keys
}

// Each visits the fields in insertion order.
func (mv *MapValue) Each(fn func(name string, v Value)) {
	if mv == nil {
		return
	}
	it := mv.m.Iterator()
	for it.Next() {
		fn(it.Key().(string), it.Value().(Value))
	}
}

func (mv *MapValue) Clone() *MapValue {
	c := NewMapValue()
	mv.Each(func(name string, v Value) {
		c.Put(name, v.Clone())
	})
	return c
}

// Equals compares fields by name, field order is not significant.
func (mv *MapValue) Equals(o *MapValue) bool {
	if mv.Len() != o.Len() {
		return false
	}
	equal := true
	mv.Each(func(name string, v Value) {
		if !equal {
			return
		}
		ov, ok := o.Get(name)
		equal = ok && v.Equals(ov)
	})
	return equal
}

func (mv *MapValue) Size() int {
	n := 4
	mv.Each(func(name string, v Value) {
		n += len(name) + v.Size()
	})
	return n
}

func (mv *MapValue) ToNative() (map[string]interface{}, error) {
	out := make(map[string]interface{}, mv.Len())
	var err error
	mv.Each(func(name string, v Value) {
		if err != nil {
			return
		}
		out[name], err = v.ToNative()
	})
	return out, err
}

func (mv *MapValue) String() string {
	parts := make([]string, 0, mv.Len())
	mv.Each(func(name string, v Value) {
		parts = append(parts, strconv.Quote(name)+": "+v.String())
	})
	return "{" + strings.Join(parts, ", ") + "}"
}
