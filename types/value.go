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
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NULL is the NULL value.
var NULL = Value{}

// Value is a typed field value. Scalars keep a textual encoding in raw, arrays and
// maps keep their children. The zero value is NULL.
type Value struct {
	typ    Type
	raw    []byte
	elems  []Value
	fields *MapValue
}

// MakeTrusted makes a scalar Value without validating raw.
func MakeTrusted(typ Type, raw []byte) Value {
	if typ == Null {
		return NULL
	}
	return Value{typ: typ, raw: raw}
}

func NewBoolean(v bool) Value {
	return MakeTrusted(Boolean, strconv.AppendBool(nil, v))
}

func NewInteger(v int32) Value {
	return MakeTrusted(Integer, strconv.AppendInt(nil, int64(v), 10))
}

func NewLong(v int64) Value {
	return MakeTrusted(Long, strconv.AppendInt(nil, v, 10))
}

func NewDouble(v float64) Value {
	return MakeTrusted(Double, strconv.AppendFloat(nil, v, 'g', -1, 64))
}

// NewNumber validates that v is a decimal literal.
func NewNumber(v string) (Value, error) {
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return NULL, fmt.Errorf("invalid number %q: %v", v, err)
	}
	return MakeTrusted(Number, []byte(v)), nil
}

func NewString(v string) Value {
	return MakeTrusted(String, []byte(v))
}

func NewBinary(v []byte) Value {
	c := make([]byte, len(v))
	copy(c, v)
	return MakeTrusted(Binary, c)
}

func NewTimestamp(v time.Time) Value {
	return MakeTrusted(Timestamp, []byte(v.UTC().Format(time.RFC3339Nano)))
}

func NewArray(elems ...Value) Value {
	c := make([]Value, len(elems))
	copy(c, elems)
	return Value{typ: Array, elems: c}
}

func NewMap(m *MapValue) Value {
	if m == nil {
		m = NewMapValue()
	}
	return Value{typ: Map, fields: m}
}

// NewValue builds a scalar Value from its textual encoding, validating it.
func NewValue(typ Type, raw []byte) (Value, error) {
	switch typ {
	case Null:
		return NULL, nil
	case Boolean:
		if _, err := strconv.ParseBool(string(raw)); err != nil {
			return NULL, err
		}
	case Integer:
		if _, err := strconv.ParseInt(string(raw), 10, 32); err != nil {
			return NULL, err
		}
	case Long:
		if _, err := strconv.ParseInt(string(raw), 10, 64); err != nil {
			return NULL, err
		}
	case Double, Number:
		if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
			return NULL, err
		}
	case Timestamp:
		if _, err := time.Parse(time.RFC3339Nano, string(raw)); err != nil {
			return NULL, err
		}
	case String, Binary:
	default:
		return NULL, fmt.Errorf("%v is not a scalar type", typ)
	}
	return MakeTrusted(typ, raw), nil
}

func (v Value) Type() Type { return v.typ }

func (v Value) IsNull() bool { return v.typ == Null }

func (v Value) IsNumeric() bool { return IsNumeric(v.typ) }

// Raw returns the textual encoding of a scalar.
func (v Value) Raw() []byte { return v.raw }

func (v Value) Int64() (int64, error) {
	switch v.typ {
	case Integer, Long:
		return strconv.ParseInt(string(v.raw), 10, 64)
	case Double, Number:
		f, err := strconv.ParseFloat(string(v.raw), 64)
		if err != nil {
			return 0, err
		}
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("%v is not integral", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("cannot convert %v to int64", v.typ)
}

func (v Value) Float64() (float64, error) {
	if !v.IsNumeric() {
		return 0, fmt.Errorf("cannot convert %v to float64", v.typ)
	}
	return strconv.ParseFloat(string(v.raw), 64)
}

func (v Value) Bool() (bool, error) {
	if v.typ != Boolean {
		return false, fmt.Errorf("cannot convert %v to bool", v.typ)
	}
	return strconv.ParseBool(string(v.raw))
}

func (v Value) Time() (time.Time, error) {
	if v.typ != Timestamp && v.typ != String {
		return time.Time{}, fmt.Errorf("cannot convert %v to time", v.typ)
	}
	return time.Parse(time.RFC3339Nano, string(v.raw))
}

// Str returns the string content of STRING values and the textual form of other scalars.
func (v Value) Str() string { return string(v.raw) }

func (v Value) Elems() []Value { return v.elems }

func (v Value) Fields() *MapValue { return v.fields }

// ToNative converts the value into plain Go values: nil, bool, int32, int64, float64,
// string, []byte, time.Time, []interface{} or map[string]interface{}.
// NUMBER converts to float64.
func (v Value) ToNative() (interface{}, error) {
	switch v.typ {
	case Null:
		return nil, nil
	case Boolean:
		return v.Bool()
	case Integer:
		i, err := v.Int64()
		return int32(i), err
	case Long:
		return v.Int64()
	case Double, Number:
		return v.Float64()
	case String:
		return string(v.raw), nil
	case Binary:
		return v.raw, nil
	case Timestamp:
		return v.Time()
	case Array:
		out := make([]interface{}, len(v.elems))
		for i, e := range v.elems {
			n, err := e.ToNative()
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case Map:
		return v.fields.ToNative()
	}
	return nil, fmt.Errorf("unknown type %v", v.typ)
}

// Equals is structural equality. Numbers of different types are equal when their values are.
func (v Value) Equals(o Value) bool {
	if v.typ != o.typ {
		if v.IsNumeric() && o.IsNumeric() {
			c, err := CompareValues(v, o)
			return err == nil && c == 0
		}
		return false
	}
	switch v.typ {
	case Null:
		return true
	case Array:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equals(o.elems[i]) {
				return false
			}
		}
		return true
	case Map:
		return v.fields.Equals(o.fields)
	case Double, Number:
		c, err := CompareValues(v, o)
		return err == nil && c == 0
	}
	return bytes.Equal(v.raw, o.raw)
}

// Size estimates the serialized size of the value in bytes. It drives capacity metering.
func (v Value) Size() int {
	switch v.typ {
	case Null, Boolean:
		return 1
	case Integer:
		return 4
	case Long, Double:
		return 8
	case Timestamp:
		return 12
	case Array:
		n := 4
		for _, e := range v.elems {
			n += e.Size()
		}
		return n
	case Map:
		return v.fields.Size()
	}
	return len(v.raw) + 2
}

func (v Value) Clone() Value {
	switch v.typ {
	case Array:
		return NewArray(cloneAll(v.elems)...)
	case Map:
		return NewMap(v.fields.Clone())
	case Null:
		return NULL
	}
	raw := make([]byte, len(v.raw))
	copy(raw, v.raw)
	return MakeTrusted(v.typ, raw)
}

func cloneAll(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, e := range vs {
		out[i] = e.Clone()
	}
	return out
}

func (v Value) String() string {
	switch v.typ {
	case Null:
		return "NULL"
	case String, Timestamp:
		return strconv.Quote(string(v.raw))
	case Binary:
		return "b64:" + base64.StdEncoding.EncodeToString(v.raw)
	case Array:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		return v.fields.String()
	}
	return string(v.raw)
}
