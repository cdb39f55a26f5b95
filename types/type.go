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
	"strings"
)

// Type defines the kinds of field values carried in rows and bind variables.
type Type int32

const (
	// Null specifies a NULL value.
	Null Type = iota
	// Boolean specifies a BOOLEAN value.
	Boolean
	// Integer specifies a 32 bit signed INTEGER value.
	Integer
	// Long specifies a 64 bit signed LONG value.
	Long
	// Double specifies a DOUBLE value.
	Double
	// Number specifies an arbitrary precision NUMBER, kept in its decimal text form.
	Number
	// String specifies a STRING value.
	String
	// Binary specifies a BINARY value.
	Binary
	// Timestamp specifies a TIMESTAMP value, kept as RFC3339 with nanoseconds.
	Timestamp
	// Array specifies an ordered list of values.
	Array
	// Map specifies an ordered set of named values. Rows are maps.
	Map
	// Any is only used in declarations: it accepts every value kind (JSON, ANY).
	Any Type = 100
)

var TypeNames = map[Type]string{
	Null:      "NULL",
	Boolean:   "BOOLEAN",
	Integer:   "INTEGER",
	Long:      "LONG",
	Double:    "DOUBLE",
	Number:    "NUMBER",
	String:    "STRING",
	Binary:    "BINARY",
	Timestamp: "TIMESTAMP",
	Array:     "ARRAY",
	Map:       "MAP",
	Any:       "ANY",
}

func (t Type) String() string {
	if n, ok := TypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("UnknownType(%d)", int32(t))
}

// ParseTypeName maps a declaration type such as "INTEGER" or "ARRAY(STRING)" to a Type.
func ParseTypeName(name string) (Type, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i > 0 {
		n = strings.TrimSpace(n[:i])
	}
	switch n {
	case "INTEGER", "INT":
		return Integer, nil
	case "LONG", "BIGINT":
		return Long, nil
	case "DOUBLE", "FLOAT":
		return Double, nil
	case "NUMBER":
		return Number, nil
	case "STRING", "ENUM":
		return String, nil
	case "BOOLEAN":
		return Boolean, nil
	case "BINARY":
		return Binary, nil
	case "TIMESTAMP":
		return Timestamp, nil
	case "ARRAY":
		return Array, nil
	case "MAP", "RECORD":
		return Map, nil
	case "JSON", "ANY", "ANYATOMIC":
		return Any, nil
	}
	return Null, fmt.Errorf("unknown type name: %s", name)
}

func IsNumeric(t Type) bool {
	return t == Integer || t == Long || t == Double || t == Number
}

// AssignableTo reports whether a value of type t may be bound to a variable declared as target.
// Numbers widen (INTEGER to LONG to DOUBLE to NUMBER), NULL goes anywhere.
func (t Type) AssignableTo(target Type) bool {
	if t == target || t == Null || target == Any {
		return true
	}
	switch target {
	case Long:
		return t == Integer
	case Double:
		return t == Integer || t == Long
	case Number:
		return IsNumeric(t)
	case Timestamp:
		return t == String
	}
	return false
}
