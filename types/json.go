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
	"encoding/json"
	"fmt"
	"strconv"
)

type jsonValue struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v,omitempty"`
}

// MarshalJSON writes a type tagged form: {"t":"LONG","v":"42"}. Scalars keep their
// textual encoding, binary is base64, maps keep field order.
func (v Value) MarshalJSON() ([]byte, error) {
	jv := jsonValue{T: v.typ.String()}
	var err error
	switch v.typ {
	case Null:
	case Array:
		elems := v.elems
		if elems == nil {
			elems = []Value{}
		}
		jv.V, err = json.Marshal(elems)
	case Map:
		jv.V, err = v.fields.MarshalJSON()
	case Binary:
		jv.V, err = json.Marshal(base64.StdEncoding.EncodeToString(v.raw))
	default:
		jv.V, err = json.Marshal(string(v.raw))
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(jv)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	typ := Null
	for t, n := range TypeNames {
		if n == jv.T {
			typ = t
		}
	}
	if typ == Null && jv.T != "NULL" {
		return fmt.Errorf("unknown value type %q", jv.T)
	}
	switch typ {
	case Null:
		*v = NULL
	case Array:
		var elems []Value
		if err := json.Unmarshal(jv.V, &elems); err != nil {
			return err
		}
		*v = NewArray(elems...)
	case Map:
		mv := NewMapValue()
		if err := mv.UnmarshalJSON(jv.V); err != nil {
			return err
		}
		*v = NewMap(mv)
	default:
		var s string
		if err := json.Unmarshal(jv.V, &s); err != nil {
			return err
		}
		raw := []byte(s)
		if typ == Binary {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return err
			}
			raw = b
		}
		nv, err := NewValue(typ, raw)
		if err != nil {
			return err
		}
		*v = nv
	}
	return nil
}

func (mv *MapValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	mv.Each(func(name string, v Value) {
		if err != nil {
			return
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte(':')
		var b []byte
		if b, err = v.MarshalJSON(); err == nil {
			buf.Write(b)
		}
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the field order of the document.
func (mv *MapValue) UnmarshalJSON(data []byte) error {
	if mv.m == nil {
		*mv = *NewMapValue()
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected field name, got %v", tok)
		}
		var v Value
		if err = dec.Decode(&v); err != nil {
			return fmt.Errorf("field %s: %v", name, err)
		}
		mv.Put(name, v)
	}
	_, err = dec.Token()
	return err
}
