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
	"github.com/pingcap/tidb/types"
)

// FromDatum converts a literal produced by the SQL parser into a Value.
func FromDatum(d *types.Datum) (Value, bool) {
	switch d.Kind() {
	case types.KindNull:
		return NULL, true
	case types.KindInt64:
		return fromInt64(d.GetInt64()), true
	case types.KindUint64:
		v, err := fromUint64(d.GetUint64())
		return v, err == nil
	case types.KindFloat32:
		return NewDouble(float64(d.GetFloat32())), true
	case types.KindFloat64:
		return NewDouble(d.GetFloat64()), true
	case types.KindString, types.KindBinaryLiteral:
		return NewString(d.GetString()), true
	case types.KindBytes:
		return NewBinary(d.GetBytes()), true
	case types.KindMysqlDecimal:
		v, err := NewNumber(d.GetMysqlDecimal().String())
		return v, err == nil
	default:
		return NULL, false
	}
}
