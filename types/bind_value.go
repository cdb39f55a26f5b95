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
	"math"
	"sort"
	"time"
)

// BuildBindValues builds a name to Value map from native Go values.
func BuildBindValues(in map[string]interface{}) (map[string]Value, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make(map[string]Value, len(in))
	for k, v := range in {
		bv, err := FromInterface(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", k, err)
		}
		out[k] = bv
	}
	return out, nil
}

// FromInterface converts a supported Go value to a Value. Functions, channels, structs
// and other values without a field representation are rejected.
func FromInterface(v interface{}) (Value, error) {
	switch v := v.(type) {
	case nil:
		return NULL, nil
	case Value:
		return v, nil
	case *Value:
		if v == nil {
			return NULL, nil
		}
		return *v, nil
	case *MapValue:
		if v == nil {
			return NULL, nil
		}
		return NewMap(v), nil
	case bool:
		return NewBoolean(v), nil
	case int:
		return fromInt64(int64(v)), nil
	case int8:
		return NewInteger(int32(v)), nil
	case int16:
		return NewInteger(int32(v)), nil
	case int32:
		return NewInteger(v), nil
	case int64:
		return NewLong(v), nil
	case uint8:
		return NewInteger(int32(v)), nil
	case uint16:
		return NewInteger(int32(v)), nil
	case uint32:
		return NewLong(int64(v)), nil
	case uint:
		return fromUint64(uint64(v))
	case uint64:
		return fromUint64(v)
	case float32:
		return NewDouble(float64(v)), nil
	case float64:
		return NewDouble(v), nil
	case string:
		return NewString(v), nil
	case []byte:
		return NewBinary(v), nil
	case time.Time:
		return NewTimestamp(v), nil
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			ev, err := FromInterface(e)
			if err != nil {
				return NULL, fmt.Errorf("element %d: %v", i, err)
			}
			elems[i] = ev
		}
		return NewArray(elems...), nil
	case []string:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = NewString(e)
		}
		return NewArray(elems...), nil
	case []int:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = fromInt64(int64(e))
		}
		return NewArray(elems...), nil
	case []int64:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = NewLong(e)
		}
		return NewArray(elems...), nil
	case []float64:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = NewDouble(e)
		}
		return NewArray(elems...), nil
	case []Value:
		return NewArray(v...), nil
	case map[string]interface{}:
		// go maps are unordered, fields are laid out by name
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		sort.Strings(names)
		mv := NewMapValue()
		for _, k := range names {
			fv, err := FromInterface(v[k])
			if err != nil {
				return NULL, fmt.Errorf("field %s: %v", k, err)
			}
			mv.Put(k, fv)
		}
		return NewMap(mv), nil
	}
	return NULL, fmt.Errorf("type %T not supported as field value", v)
}

func fromInt64(v int64) Value {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return NewInteger(int32(v))
	}
	return NewLong(v)
}

func fromUint64(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return NULL, fmt.Errorf("unsigned number overflows long value: %d", v)
	}
	return fromInt64(int64(v)), nil
}
