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

package comparison

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"
)

func CompareInt64(x, y int64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func CompareUInt64(x, y uint64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func CompareFloat64(x, y float64) int {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}
	return 1
}

func CompareBool(x, y bool) int {
	if x == y {
		return 0
	}
	if !x {
		return -1
	}
	return 1
}

type family int

const (
	unsupported family = iota
	signed
	unsigned
	float
	text
	boolean
	binary
	timestamp
)

func familyOf(v interface{}) family {
	switch v.(type) {
	case []byte:
		return binary
	case time.Time:
		return timestamp
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signed
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return unsigned
	case reflect.Float32, reflect.Float64:
		return float
	case reflect.String:
		return text
	case reflect.Bool:
		return boolean
	}
	return unsupported
}

func isNumeric(f family) bool {
	return f == signed || f == unsigned || f == float
}

func IsCompareSupported(value interface{}) bool {
	return value != nil && familyOf(value) != unsupported
}

// Compare orders two native values. Numbers of different widths or signedness are
// compared by value, other kinds must match.
func Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("nil is not comparable: %v, %v", a, b)
	}
	fa, fb := familyOf(a), familyOf(b)
	if fa == unsupported || fb == unsupported {
		return 0, fmt.Errorf("unsupported type for comparison: %T, %T", a, b)
	}
	if fa != fb && !(isNumeric(fa) && isNumeric(fb)) {
		return 0, fmt.Errorf("type mismatch for comparison: %T, %T", a, b)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case fa == signed && fb == signed:
		return CompareInt64(va.Int(), vb.Int()), nil
	case fa == unsigned && fb == unsigned:
		return CompareUInt64(va.Uint(), vb.Uint()), nil
	case fa == signed && fb == unsigned:
		if va.Int() < 0 {
			return -1, nil
		}
		return CompareUInt64(uint64(va.Int()), vb.Uint()), nil
	case fa == unsigned && fb == signed:
		if vb.Int() < 0 {
			return 1, nil
		}
		return CompareUInt64(va.Uint(), uint64(vb.Int())), nil
	case isNumeric(fa):
		return CompareFloat64(toFloat(va, fa), toFloat(vb, fb)), nil
	case fa == text:
		return strings.Compare(va.String(), vb.String()), nil
	case fa == boolean:
		return CompareBool(va.Bool(), vb.Bool()), nil
	case fa == binary:
		return bytes.Compare(a.([]byte), b.([]byte)), nil
	case fa == timestamp:
		ta, tb := a.(time.Time), b.(time.Time)
		switch {
		case ta.Before(tb):
			return -1, nil
		case ta.After(tb):
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported type for comparison: %T", a)
}

func toFloat(v reflect.Value, f family) float64 {
	switch f {
	case signed:
		return float64(v.Int())
	case unsigned:
		return float64(v.Uint())
	}
	return v.Float()
}

func Min(a, b interface{}) (interface{}, error) {
	c, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

func Max(a, b interface{}) (interface{}, error) {
	c, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}
