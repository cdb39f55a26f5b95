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
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
)

const kb = 1024

// sizeKB rounds a size up to whole KB, every row costs at least 1 KB.
func sizeKB(size int) int {
	n := (size + kb - 1) / kb
	if n < 1 {
		return 1
	}
	return n
}

// meter accumulates the capacity charged by one call.
type meter struct {
	metered    bool
	unitKB     int
	multiplier int
	consumed   query.Capacity
}

func (m *meter) units(kbs int) int {
	return (kbs + m.unitKB - 1) / m.unitKB
}

func (m *meter) read(size int) int {
	return m.readKB(sizeKB(size))
}

// readKB charges n KB of a read, which may be part of a row.
func (m *meter) readKB(n int) int {
	if m.metered {
		m.consumed.ReadKB += n
		m.consumed.ReadUnits += m.units(n) * m.multiplier
	}
	return n
}

func (m *meter) write(size int) int {
	n := sizeKB(size)
	if m.metered {
		m.consumed.WriteKB += n
		m.consumed.WriteUnits += m.units(n)
	}
	return n
}

// compile charges the cost of compiling a statement.
func (m *meter) compile(costKB int) {
	if m.metered && costKB > 0 {
		m.consumed.ReadKB += costKB
		m.consumed.ReadUnits += m.units(costKB)
	}
}
